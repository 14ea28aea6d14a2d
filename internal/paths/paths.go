package paths

import (
	"os"
	"os/user"
	"path/filepath"
	"strconv"
)

const appName = "multiping"

// HomeDir returns the invoking user's home directory. ping is sometimes run
// through sudo, and the history database and logs should stay in the same
// place either way.
func HomeDir() (string, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		if u, err := user.Lookup(sudoUser); err == nil {
			return u.HomeDir, nil
		}
	}
	return os.UserHomeDir()
}

// RealUser returns the UID and GID from SUDO_UID / SUDO_GID. ok is false
// when not running under sudo.
func RealUser() (uid, gid int, ok bool) {
	sudoUID := os.Getenv("SUDO_UID")
	if sudoUID == "" {
		return 0, 0, false
	}
	u, err := strconv.Atoi(sudoUID)
	if err != nil {
		return 0, 0, false
	}
	g, _ := strconv.Atoi(os.Getenv("SUDO_GID"))
	return u, g, true
}

// ChownToRealUser hands path back to the sudo caller. No-op otherwise.
func ChownToRealUser(path string) {
	if uid, gid, ok := RealUser(); ok {
		_ = os.Chown(path, uid, gid)
	}
}

// CacheDir returns ~/.cache/multiping, where logs go.
func CacheDir() (string, error) {
	return appDir(".cache")
}

// DataDir returns ~/.local/share/multiping, where the history database lives.
func DataDir() (string, error) {
	return appDir(".local", "share")
}

// ConfigDir returns ~/.config/multiping.
func ConfigDir() (string, error) {
	return appDir(".config")
}

func appDir(elem ...string) (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(append(append([]string{home}, elem...), appName)...)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ChownToRealUser(dir)
	return dir, nil
}
