package services

import (
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"markan/pkg/access"
	"markan/pkg/errors"
	"markan/pkg/logging"
	"markan/pkg/models"
	"markan/pkg/paths"
	"markan/pkg/storage"
	"markan/pkg/utils"
)

// DirWatcher follows the open workspace for external changes.
type DirWatcher interface {
	Watch(dir string) error
}

// WorkspaceRecorder persists the last opened workspace.
type WorkspaceRecorder interface {
	SaveWorkspace(dir string) error
}

// WorkspaceService handles opening, closing and saving into a workspace.
// Workspace changes go through the Authority; file I/O goes through the
// Gateway.
type WorkspaceService struct {
	gateway   *storage.Gateway
	authority *access.Authority
	watcher   DirWatcher
	recorder  WorkspaceRecorder
	logger    *logging.Logger
}

// NewWorkspaceService creates a new workspace service. watcher and recorder
// may be nil.
func NewWorkspaceService(gateway *storage.Gateway, watcher DirWatcher, recorder WorkspaceRecorder, logger *logging.Logger) *WorkspaceService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &WorkspaceService{
		gateway:   gateway,
		authority: gateway.Authority(),
		watcher:   watcher,
		recorder:  recorder,
		logger:    logger.Named("workspace"),
	}
}

// SetWorkspacePath switches the workspace to path, or closes it when path is
// blank. It reports false when path is not an existing directory, in which
// case the current workspace stays open.
func (s *WorkspaceService) SetWorkspacePath(path string) bool {
	if strings.TrimSpace(path) == "" {
		s.Close()
		return true
	}

	if err := s.authority.SetWorkspaceDirectory(path); err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			appErr.Log(s.logger)
		} else {
			s.logger.Warn("workspace rejected", zap.Error(err))
		}
		return false
	}

	dir, _ := s.authority.WorkspaceDirectory()
	s.follow(dir)
	s.record(dir)
	return true
}

// Open makes path the workspace and returns its notes, newest first.
func (s *WorkspaceService) Open(ctx context.Context, path string) ([]models.NoteFile, error) {
	validator := errors.NewValidator()
	if result := validator.ValidatePath(path); !result.IsValid {
		return nil, result.GetFirstError()
	}

	if !s.SetWorkspacePath(path) {
		return nil, errors.ErrWorkspaceInvalid
	}

	dir, _ := s.authority.WorkspaceDirectory()
	notes := s.gateway.ListNotes(ctx, dir)
	s.logger.Info("workspace loaded", zap.String("dir", dir), zap.Int("notes", len(notes)))
	return notes, nil
}

// Close closes the workspace. The recorded workspace is cleared too.
func (s *WorkspaceService) Close() {
	s.authority.ClearWorkspaceDirectory()
	s.follow("")
	s.record("")
}

// Restore reopens a previously recorded workspace at startup. A workspace
// that no longer exists is ignored.
func (s *WorkspaceService) Restore(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	if err := s.authority.SetWorkspaceDirectory(path); err != nil {
		s.logger.Info("previous workspace not restored", zap.String("path", path), zap.Error(err))
		return false
	}
	dir, _ := s.authority.WorkspaceDirectory()
	s.follow(dir)
	return true
}

// Notes lists the open workspace.
func (s *WorkspaceService) Notes(ctx context.Context) ([]models.NoteFile, error) {
	dir, ok := s.authority.WorkspaceDirectory()
	if !ok {
		return nil, errors.ErrNoWorkspace
	}
	return s.gateway.ListNotes(ctx, dir), nil
}

// SaveNote writes content to filePath. Without a filePath a new markdown
// file named after title is created in the open workspace. The path written
// is returned.
func (s *WorkspaceService) SaveNote(ctx context.Context, filePath, title, content string) (string, error) {
	validator := errors.NewValidator()
	if result := validator.ValidateNoteContent(content); !result.IsValid {
		err := result.GetFirstError()
		err.Log(s.logger)
		return "", err
	}

	if strings.TrimSpace(filePath) == "" {
		dir, ok := s.authority.WorkspaceDirectory()
		if !ok {
			return "", errors.ErrNoWorkspace
		}
		// Every entry counts as taken, including files that cannot be read.
		names, ok := s.gateway.EntryNames(ctx, dir)
		if !ok {
			err := errors.ErrFileWriteFailed.WithContext("path", dir)
			err.Log(s.logger)
			return "", err
		}
		matcher := s.authority.Matcher()
		taken := make(map[string]struct{}, len(names))
		for _, name := range names {
			taken[matcher.Key(name)] = struct{}{}
		}
		filePath = filepath.Join(dir, utils.UniqueFileName(title, func(name string) bool {
			_, exists := taken[matcher.Key(name)]
			return exists
		}))
	}

	if !s.authority.IsAuthorized(paths.Normalize(filePath)) {
		return "", errors.ErrAccessDenied.WithContext("path", filePath)
	}

	retryHandler := errors.NewRetryHandler(3, s.logger)
	err := retryHandler.Execute(func() error {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), errors.ErrTypeApp, "CANCELLED", "save cancelled")
		}
		if !s.gateway.WriteFile(ctx, filePath, content) {
			return errors.ErrFileWriteFailed.WithRetryable(true)
		}
		return nil
	})
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			appErr.WithContext("path", filePath).Log(s.logger)
		}
		return "", err
	}

	s.logger.Debug("note saved", zap.String("path", filePath))
	return filePath, nil
}

func (s *WorkspaceService) follow(dir string) {
	if s.watcher == nil {
		return
	}
	if err := s.watcher.Watch(dir); err != nil {
		s.logger.Warn("could not watch workspace", zap.String("dir", dir), zap.Error(err))
	}
}

func (s *WorkspaceService) record(dir string) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.SaveWorkspace(dir); err != nil {
		errors.Wrap(err, errors.ErrTypeConfig, errors.ErrConfigSaveFailed.Code, "failed to record workspace").Log(s.logger)
	}
}
