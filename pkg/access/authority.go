// Package access decides which paths the UI may touch.
//
// A canonical path is authorized when it lies inside the application data
// directory, inside the open workspace, or is one of the files the OS asked
// the application to open. Everything else is denied.
package access

import (
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"markan/pkg/errors"
	"markan/pkg/logging"
	"markan/pkg/paths"
)

// Authority owns the allow-rules and the Session they read from.
type Authority struct {
	appDataRoot string
	session     *Session
	matcher     paths.Matcher
	fs          afero.Fs
	logger      *logging.Logger
}

// NewAuthority creates an authority rooted at appDataRoot. The root is
// normalized here and fixed for the lifetime of the authority.
func NewAuthority(appDataRoot string, session *Session, matcher paths.Matcher, fs afero.Fs, logger *logging.Logger) (*Authority, error) {
	root := paths.Normalize(appDataRoot)
	if root == "" {
		return nil, fmt.Errorf("app data root %q cannot be resolved", appDataRoot)
	}
	if session == nil {
		session = NewSession()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Authority{
		appDataRoot: root,
		session:     session,
		matcher:     matcher,
		fs:          fs,
		logger:      logger.Named("access"),
	}, nil
}

// AppDataRoot returns the canonical application data directory.
func (a *Authority) AppDataRoot() string {
	return a.appDataRoot
}

// WorkspaceDirectory returns the open workspace, if any.
func (a *Authority) WorkspaceDirectory() (string, bool) {
	return a.session.workspace()
}

// Matcher returns the path comparison rules in use.
func (a *Authority) Matcher() paths.Matcher {
	return a.matcher
}

// IsAuthorized reports whether the canonical path target may be touched.
// It has no side effects and denies the unresolvable path "".
func (a *Authority) IsAuthorized(target string) bool {
	if target == "" {
		return false
	}
	if a.withinRoots(target) {
		return true
	}
	return a.session.hasExternal(a.matcher.Key(target))
}

// withinRoots reports whether target lies in the app data root or the open
// workspace.
func (a *Authority) withinRoots(target string) bool {
	if a.matcher.IsInside(target, a.appDataRoot) {
		return true
	}
	ws, ok := a.session.workspace()
	return ok && a.matcher.IsInside(target, ws)
}

// Resolve normalizes raw and authorizes the result. The canonical path is
// returned only when access is allowed.
func (a *Authority) Resolve(raw string) (string, bool) {
	target := paths.Normalize(raw)
	if !a.IsAuthorized(target) {
		return "", false
	}
	return target, true
}

// ResolveDirectory normalizes raw and allows it only when it lies in the app
// data root or the workspace. Admitted external files grant access to
// themselves, never to a directory's children, so they do not count here.
func (a *Authority) ResolveDirectory(raw string) (string, bool) {
	target := paths.Normalize(raw)
	if target == "" || !a.withinRoots(target) {
		return "", false
	}
	return target, true
}

// SetWorkspaceDirectory makes dir the open workspace. dir must exist and be a
// directory; otherwise the previous workspace is kept and an error returned.
func (a *Authority) SetWorkspaceDirectory(dir string) error {
	target := paths.Normalize(dir)
	if target == "" {
		return errors.ErrWorkspaceInvalid.WithContext("path", dir)
	}

	info, err := a.fs.Stat(target)
	if err != nil {
		return errors.Wrap(err, errors.ErrTypeWorkspace, "WORKSPACE_NOT_FOUND", "workspace directory not accessible").
			WithUserMessage("The selected folder could not be opened").
			WithContext("path", target)
	}
	if !info.IsDir() {
		return errors.New(errors.ErrTypeWorkspace, "WORKSPACE_NOT_DIRECTORY", "workspace path is not a directory").
			WithUserMessage("Please choose a folder, not a file").
			WithContext("path", target)
	}

	a.session.setWorkspace(target)
	a.logger.Info("workspace opened", zap.String("path", target))
	return nil
}

// ClearWorkspaceDirectory closes the workspace. Access granted through it
// ends immediately.
func (a *Authority) ClearWorkspaceDirectory() {
	a.session.setWorkspace("")
	a.logger.Info("workspace closed")
}

// AdmitExternalFile grants access to exactly one file the OS handed over.
// The file does not need to exist. It returns false only when the path cannot
// be resolved.
func (a *Authority) AdmitExternalFile(path string) bool {
	target := paths.Normalize(path)
	if target == "" {
		return false
	}
	a.session.addExternal(a.matcher.Key(target))
	a.logger.Debug("external file admitted", zap.String("path", target))
	return true
}
