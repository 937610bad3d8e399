package services

import (
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"markan/pkg/access"
	"markan/pkg/config"
	"markan/pkg/errors"
	"markan/pkg/logging"
	"markan/pkg/storage"
)

// watchDelay collapses bursts of workspace events into one notification.
const watchDelay = 300 * time.Millisecond

// Core is the set of components shared by the desktop app and the headless
// server. Each Core owns one access session.
type Core struct {
	Config    *config.Config
	Authority *access.Authority
	Gateway   *storage.Gateway
	Workspace *WorkspaceService
	Opener    *FileOpener
	Autosaver *Autosaver
	AppPaths  *AppPaths

	watcher *storage.Watcher
	logger  *logging.Logger
}

// NewCore wires the components for cfg over fs. When onWorkspaceChange is
// non-nil the open workspace is watched and changes reported through it.
// The previously recorded workspace is restored if it still exists.
func NewCore(cfg *config.Config, fs afero.Fs, logger *logging.Logger, onWorkspaceChange func(dir string)) (*Core, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	if err := fs.MkdirAll(cfg.AppDataDir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeConfig, "APP_DATA_UNAVAILABLE", "failed to create app data directory").
			WithContext("path", cfg.AppDataDir)
	}

	authority, err := access.NewAuthority(cfg.AppDataDir, access.NewSession(), cfg.Matcher(), fs, logger)
	if err != nil {
		return nil, err
	}

	gateway := storage.NewGateway(fs, authority, logger,
		storage.WithNoteExtensions(cfg.NoteExtensions),
		storage.WithListConcurrency(cfg.ListConcurrency))

	c := &Core{
		Config:    cfg,
		Authority: authority,
		Gateway:   gateway,
		Opener:    NewFileOpener(authority, logger),
		Autosaver: NewAutosaver(gateway, time.Duration(cfg.AutosaveSeconds)*time.Second, logger),
		AppPaths:  NewAppPaths(authority.AppDataRoot()),
		logger:    logger,
	}

	var dirWatcher DirWatcher
	if onWorkspaceChange != nil {
		w, err := storage.NewWatcher(gateway.IsNoteFile, watchDelay, onWorkspaceChange, logger)
		if err != nil {
			logger.Warn("workspace watching disabled", zap.Error(err))
		} else {
			c.watcher = w
			dirWatcher = w
		}
	}

	c.Workspace = NewWorkspaceService(gateway, dirWatcher, cfg, logger)
	c.Workspace.Restore(cfg.WorkspacePath)

	logger.Info("core ready",
		zap.String("appData", authority.AppDataRoot()),
		zap.String("workspace", cfg.WorkspacePath),
		zap.String("config", cfg.Path()))
	return c, nil
}

// Close writes pending autosaves and stops watching.
func (c *Core) Close() error {
	if n := c.Autosaver.Flush(); n > 0 {
		c.logger.Info("flushed autosaves on shutdown", zap.Int("count", n))
	}
	c.Opener.MarkNotReady()
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}
