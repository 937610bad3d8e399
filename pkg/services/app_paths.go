package services

import (
	"os"
	"path/filepath"
)

// Names accepted by AppPaths.Get.
const (
	PathUserData  = "userData"
	PathAutosave  = "autosave"
	PathHome      = "home"
	PathDocuments = "documents"
	PathTemp      = "temp"
)

// AppPaths answers the well-known directory lookups the UI asks for.
type AppPaths struct {
	userData string
	home     string
}

// NewAppPaths creates lookups rooted at the app data directory. The home
// directory is read from the environment; when it cannot be determined home
// and documents resolve to "".
func NewAppPaths(userData string) *AppPaths {
	home, _ := os.UserHomeDir()
	return &AppPaths{userData: userData, home: home}
}

// Get returns the directory registered under name, or "" for unknown names.
func (p *AppPaths) Get(name string) string {
	switch name {
	case PathUserData:
		return p.userData
	case PathAutosave:
		return filepath.Join(p.userData, AutosaveDirName)
	case PathHome:
		return p.home
	case PathDocuments:
		if p.home == "" {
			return ""
		}
		return filepath.Join(p.home, "Documents")
	case PathTemp:
		return os.TempDir()
	default:
		return ""
	}
}
