package main

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"

	"markan/pkg/errors"
	"markan/pkg/logging"
	"markan/pkg/services"
	"markan/pkg/types"
)

// Events pushed to the frontend.
const (
	EventOpenFile         = "app:open-file"
	EventWorkspaceChanged = "workspace:changed"
)

// App struct
type App struct {
	core   *services.Core
	logger *logging.Logger

	mu   sync.RWMutex
	ctx  context.Context
	emit func(event string, data ...interface{})
}

// NewApp creates a new App application struct. The core is attached with
// attach before the window starts.
func NewApp(logger *logging.Logger) *App {
	if logger == nil {
		logger = logging.Nop()
	}
	return &App{logger: logger.Named("app")}
}

func (a *App) attach(core *services.Core) {
	a.core = core
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.mu.Lock()
	a.ctx = ctx
	a.emit = func(event string, data ...interface{}) {
		runtime.EventsEmit(ctx, event, data...)
	}
	a.mu.Unlock()
}

// domReady is called once the frontend has loaded. Files the OS asked us to
// open before this point are delivered now.
func (a *App) domReady(ctx context.Context) {
	a.core.Opener.MarkReady(func(path string) {
		a.send(EventOpenFile, path)
	})
}

// beforeClose flushes autosaves while the window is still alive.
func (a *App) beforeClose(ctx context.Context) bool {
	a.core.Autosaver.Flush()
	return false
}

func (a *App) shutdown(ctx context.Context) {
	if err := a.core.Close(); err != nil {
		a.logger.Warn("shutdown", zap.Error(err))
	}
}

// onSecondInstanceLaunch receives the arguments of a second launch, which is
// how Windows and Linux hand over files opened from the file manager.
func (a *App) onSecondInstanceLaunch(data options.SecondInstanceData) {
	for _, path := range fileArgs(data.Args, data.WorkingDirectory) {
		a.core.Opener.Open(path)
	}
	a.mu.RLock()
	ctx := a.ctx
	a.mu.RUnlock()
	if ctx != nil {
		runtime.WindowUnminimise(ctx)
		runtime.Show(ctx)
	}
}

// onFileOpen is the macOS open-document callback.
func (a *App) onFileOpen(path string) {
	a.core.Opener.Open(path)
}

// workspaceChanged is called by the watcher after files in the workspace
// changed on disk.
func (a *App) workspaceChanged(dir string) {
	a.send(EventWorkspaceChanged, dir)
}

func (a *App) send(event string, data ...interface{}) {
	a.mu.RLock()
	emit := a.emit
	a.mu.RUnlock()
	if emit == nil {
		a.logger.Debug("event dropped before startup", zap.String("event", event))
		return
	}
	emit(event, data...)
}

func (a *App) context() context.Context {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

// OpenFolder asks the user for a workspace folder and opens it. It returns
// the chosen folder, or "" when the dialog was cancelled or the folder could
// not be opened.
func (a *App) OpenFolder() string {
	dir, err := runtime.OpenDirectoryDialog(a.context(), runtime.OpenDialogOptions{
		Title:                "Open Folder",
		CanCreateDirectories: true,
	})
	if err != nil {
		a.logger.Warn("folder dialog failed", zap.Error(err))
		return ""
	}
	if dir == "" || !a.core.Workspace.SetWorkspacePath(dir) {
		return ""
	}
	ws, _ := a.core.Authority.WorkspaceDirectory()
	return ws
}

// ReadFolder lists the notes in dir, newest first. Denied or unreadable
// folders give an empty list.
func (a *App) ReadFolder(dir string) []types.FileDetail {
	return types.ConvertToFileDetails(a.core.Gateway.ListNotes(a.context(), dir))
}

// ReadFile returns the file content, or nil when it cannot be read.
func (a *App) ReadFile(path string) *string {
	content, ok := a.core.Gateway.ReadFile(a.context(), path)
	if !ok {
		return nil
	}
	return &content
}

func (a *App) WriteFile(path, content string) bool {
	return a.core.Gateway.WriteFile(a.context(), path, content)
}

func (a *App) DeleteFile(path string) bool {
	return a.core.Gateway.DeleteFile(a.context(), path)
}

func (a *App) Exists(path string) bool {
	return a.core.Gateway.Exists(a.context(), path)
}

// SetWorkspacePath switches the workspace. An empty path closes it.
func (a *App) SetWorkspacePath(path string) bool {
	return a.core.Workspace.SetWorkspacePath(path)
}

func (a *App) GetAppPath(name string) string {
	return a.core.AppPaths.Get(name)
}

// SaveNote saves a note and returns the path written, or "" on failure.
func (a *App) SaveNote(filePath, title, content string) string {
	path, err := a.core.Workspace.SaveNote(a.context(), filePath, title, content)
	if err != nil {
		a.logger.Warn("save note failed", zap.String("code", errors.ToFrontendError(err).Code))
		return ""
	}
	return path
}

// Autosave queues a copy of an unsaved note in the app data directory.
func (a *App) Autosave(noteID, title, content string) bool {
	return a.core.Autosaver.Schedule(noteID, title, content)
}

// GetSettings returns the settings the frontend displays.
func (a *App) GetSettings() map[string]interface{} {
	ws, _ := a.core.Authority.WorkspaceDirectory()
	return map[string]interface{}{
		"appDataDir":      a.core.Authority.AppDataRoot(),
		"workspacePath":   ws,
		"noteExtensions":  a.core.Config.NoteExtensions,
		"autosaveSeconds": a.core.Config.AutosaveSeconds,
		"configFile":      a.core.Config.Path(),
	}
}

// fileArgs picks the file paths out of command line arguments. Relative
// paths are resolved against dir.
func fileArgs(args []string, dir string) []string {
	var files []string
	for _, arg := range args {
		if arg == "" || strings.HasPrefix(arg, "-") {
			continue
		}
		if !filepath.IsAbs(arg) && dir != "" {
			arg = filepath.Join(dir, arg)
		}
		files = append(files, arg)
	}
	return files
}
