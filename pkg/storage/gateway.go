package storage

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"markan/pkg/access"
	"markan/pkg/logging"
)

// DefaultNoteExtensions are the file types shown as notes.
var DefaultNoteExtensions = []string{".md", ".txt"}

// Gateway performs the file operations requested by the UI. Every operation
// normalizes its path once, asks the Authority, and only then touches the
// filesystem.
//
// A denied path and a failed I/O call produce the same result, so callers
// cannot test for directories they are not allowed to see.
type Gateway struct {
	fs          afero.Fs
	authority   *access.Authority
	logger      *logging.Logger
	extensions  map[string]struct{}
	concurrency int
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithNoteExtensions replaces the recognized note extensions. Matching is
// case-insensitive and the leading dot is optional.
func WithNoteExtensions(exts []string) Option {
	return func(g *Gateway) {
		g.extensions = extensionSet(exts)
	}
}

// WithListConcurrency bounds how many files ListNotes reads at once.
func WithListConcurrency(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// NewGateway creates a gateway over fs guarded by authority.
func NewGateway(fs afero.Fs, authority *access.Authority, logger *logging.Logger, opts ...Option) *Gateway {
	if logger == nil {
		logger = logging.Nop()
	}
	g := &Gateway{
		fs:          fs,
		authority:   authority,
		logger:      logger.Named("gateway"),
		extensions:  extensionSet(DefaultNoteExtensions),
		concurrency: 8,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authority returns the authority guarding this gateway.
func (g *Gateway) Authority() *access.Authority {
	return g.authority
}

// IsNoteFile reports whether name has a recognized note extension.
func (g *Gateway) IsNoteFile(name string) bool {
	_, ok := g.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// opList is the operation whose target is a directory to enumerate.
const opList = "list"

// resolve authorizes raw for op and logs denials. Directory listings are
// authorized by the root rules only.
func (g *Gateway) resolve(ctx context.Context, op, raw string) (string, bool) {
	if err := ctx.Err(); err != nil {
		g.logger.Debug("operation cancelled", zap.String("op", op), zap.Error(err))
		return "", false
	}
	var target string
	var ok bool
	if op == opList {
		target, ok = g.authority.ResolveDirectory(raw)
	} else {
		target, ok = g.authority.Resolve(raw)
	}
	if !ok {
		g.logger.Warn("access denied", zap.String("op", op), zap.String("path", raw))
		return "", false
	}
	return target, true
}

func (g *Gateway) ioFailed(op, path string, err error) {
	g.logger.Warn("file operation failed", zap.String("op", op), zap.String("path", path), zap.Error(err))
}

// ReadFile returns the content of path. The boolean is false when the path is
// denied or cannot be read.
func (g *Gateway) ReadFile(ctx context.Context, path string) (string, bool) {
	target, ok := g.resolve(ctx, "read", path)
	if !ok {
		return "", false
	}

	data, err := afero.ReadFile(g.fs, target)
	if err != nil {
		g.ioFailed("read", target, err)
		return "", false
	}
	return string(data), true
}

// WriteFile overwrites path with content, creating parent directories as
// needed. A denied path is rejected before any filesystem call.
func (g *Gateway) WriteFile(ctx context.Context, path, content string) bool {
	target, ok := g.resolve(ctx, "write", path)
	if !ok {
		return false
	}

	if err := g.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		g.ioFailed("write", target, err)
		return false
	}
	if err := afero.WriteFile(g.fs, target, []byte(content), 0o644); err != nil {
		g.ioFailed("write", target, err)
		return false
	}
	return true
}

// DeleteFile removes the regular file at path. Directories are never removed.
func (g *Gateway) DeleteFile(ctx context.Context, path string) bool {
	target, ok := g.resolve(ctx, "delete", path)
	if !ok {
		return false
	}

	info, err := g.fs.Stat(target)
	if err != nil {
		g.ioFailed("delete", target, err)
		return false
	}
	if info.IsDir() {
		g.logger.Warn("refusing to delete directory", zap.String("path", target))
		return false
	}
	if err := g.fs.Remove(target); err != nil {
		g.ioFailed("delete", target, err)
		return false
	}
	return true
}

// Exists reports whether path is allowed and present on disk.
func (g *Gateway) Exists(ctx context.Context, path string) bool {
	target, ok := g.resolve(ctx, "exists", path)
	if !ok {
		return false
	}
	_, err := g.fs.Stat(target)
	return err == nil
}

func extensionSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}
