package services

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"markan/pkg/logging"
	"markan/pkg/performance"
	"markan/pkg/storage"
	"markan/pkg/utils"
)

// AutosaveDirName is the directory under the app data root that receives
// autosaved notes.
const AutosaveDirName = "autosave"

// Autosaver writes unsaved note content into the app data directory after
// the note has been idle for a while.
type Autosaver struct {
	gateway   *storage.Gateway
	dir       string
	debouncer *performance.Debouncer
	logger    *logging.Logger

	mu    sync.Mutex
	saved int
}

func NewAutosaver(gateway *storage.Gateway, delay time.Duration, logger *logging.Logger) *Autosaver {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Autosaver{
		gateway:   gateway,
		dir:       filepath.Join(gateway.Authority().AppDataRoot(), AutosaveDirName),
		debouncer: performance.NewDebouncer(delay),
		logger:    logger.Named("autosave"),
	}
}

// Dir returns the autosave directory.
func (a *Autosaver) Dir() string {
	return a.dir
}

// Schedule queues content for noteID. A newer call for the same note
// replaces the queued content.
func (a *Autosaver) Schedule(noteID, title, content string) bool {
	if strings.TrimSpace(noteID) == "" {
		return false
	}
	a.debouncer.Debounce(noteID, func() {
		a.write(noteID, title, content)
	})
	return true
}

// Flush writes everything queued right away and returns how many writes were
// attempted.
func (a *Autosaver) Flush() int {
	return a.debouncer.Flush()
}

// Pending returns the number of notes waiting to be written.
func (a *Autosaver) Pending() int {
	return a.debouncer.Pending()
}

// Saved returns the number of successful writes so far.
func (a *Autosaver) Saved() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saved
}

// Stop drops anything still queued.
func (a *Autosaver) Stop() {
	a.debouncer.Clear()
}

func (a *Autosaver) write(noteID, title, content string) {
	path := filepath.Join(a.dir, utils.AutosaveFileName(noteID, title))
	if !a.gateway.WriteFile(context.Background(), path, content) {
		a.logger.Warn("autosave failed", zap.String("note", noteID), zap.String("path", path))
		return
	}
	a.mu.Lock()
	a.saved++
	a.mu.Unlock()
	a.logger.Debug("autosaved", zap.String("note", noteID), zap.String("path", path))
}
