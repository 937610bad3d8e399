package services

import (
	"sync"

	"go.uber.org/zap"

	"markan/pkg/access"
	"markan/pkg/logging"
	"markan/pkg/paths"
)

// FileOpener admits files the OS asks the app to open and hands them to the
// window. Paths that arrive before the window is ready are queued and
// delivered in arrival order once it is.
type FileOpener struct {
	authority *access.Authority
	logger    *logging.Logger

	mu      sync.Mutex
	emit    func(path string)
	pending []string
}

func NewFileOpener(authority *access.Authority, logger *logging.Logger) *FileOpener {
	if logger == nil {
		logger = logging.Nop()
	}
	return &FileOpener{
		authority: authority,
		logger:    logger.Named("opener"),
	}
}

// Open admits path for access and delivers it to the window. Admission
// happens before delivery so the window can read the file as soon as it
// hears about it.
func (o *FileOpener) Open(path string) bool {
	if !o.authority.AdmitExternalFile(path) {
		o.logger.Warn("ignoring unresolvable open request", zap.String("path", path))
		return false
	}
	canonical := paths.Normalize(path)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.emit == nil {
		o.pending = append(o.pending, canonical)
		o.logger.Debug("queued open request", zap.String("path", canonical))
		return true
	}
	o.emit(canonical)
	return true
}

// MarkReady installs emit and flushes queued paths through it.
func (o *FileOpener) MarkReady(emit func(path string)) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.emit = emit
	if emit == nil {
		return
	}
	for _, path := range o.pending {
		emit(path)
	}
	if len(o.pending) > 0 {
		o.logger.Info("delivered queued open requests", zap.Int("count", len(o.pending)))
	}
	o.pending = nil
}

// MarkNotReady queues later requests until the next MarkReady, e.g. while the
// window reloads.
func (o *FileOpener) MarkNotReady() {
	o.mu.Lock()
	o.emit = nil
	o.mu.Unlock()
}

// Pending returns the queued paths.
func (o *FileOpener) Pending() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.pending...)
}
