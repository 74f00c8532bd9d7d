// Package storage provides platform-native directory resolution with XDG
// support.
package storage

import (
	"os"
	"path/filepath"
	"sync"
)

// Dirs holds the per-user directories the assistant writes to.
type Dirs struct {
	Config string // configuration (config.yaml, provider settings)
	Data   string // persistent data (dictionary, code library, history db)
	Cache  string // regenerable cache
	State  string // runtime state (logs)
}

var (
	globalDirs     *Dirs
	globalDirsOnce sync.Once
)

// ResolveDirs returns platform-appropriate directories, honoring XDG
// overrides. Results are cached after the first call.
func ResolveDirs() (*Dirs, error) {
	globalDirsOnce.Do(func() {
		globalDirs = &Dirs{
			Config: resolveDir("XDG_CONFIG_HOME", platformConfigDefault()),
			Data:   resolveDir("XDG_DATA_HOME", platformDataDefault()),
			Cache:  resolveDir("XDG_CACHE_HOME", platformCacheDefault()),
			State:  resolveDir("XDG_STATE_HOME", platformStateDefault()),
		}
	})
	return globalDirs, nil
}

func resolveDir(envVar, fallback string) string {
	if dir := os.Getenv(envVar); dir != "" {
		return filepath.Join(dir, "metra")
	}
	return fallback
}

// ConfigDir returns a path under the config directory.
func (d *Dirs) ConfigDir(subpath ...string) string {
	return filepath.Join(append([]string{d.Config}, subpath...)...)
}

// DataDir returns a path under the data directory.
func (d *Dirs) DataDir(subpath ...string) string {
	return filepath.Join(append([]string{d.Data}, subpath...)...)
}

// CacheDir returns a path under the cache directory.
func (d *Dirs) CacheDir(subpath ...string) string {
	return filepath.Join(append([]string{d.Cache}, subpath...)...)
}

// StateDir returns a path under the state directory.
func (d *Dirs) StateDir(subpath ...string) string {
	return filepath.Join(append([]string{d.State}, subpath...)...)
}

// ExportDir returns the directory for export artifacts.
func (d *Dirs) ExportDir() string {
	return d.DataDir("exports")
}

// LogDir returns the log directory.
func (d *Dirs) LogDir() string {
	return d.StateDir("logs")
}

// EnsureDir creates a directory if it does not exist.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = 0755
	}
	return os.MkdirAll(path, perm)
}

// EnsureAll creates the standard directory tree. Config is restricted to
// the user; everything else is standard.
func (d *Dirs) EnsureAll() error {
	if err := EnsureDir(d.Config, 0700); err != nil {
		return err
	}
	for _, dir := range []string{
		d.Data,
		d.ExportDir(),
		d.Cache,
		d.State,
		d.LogDir(),
	} {
		if err := EnsureDir(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
