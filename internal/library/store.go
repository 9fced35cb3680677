package library

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
	"gopkg.in/yaml.v3"
)

// snapshotVersion is written to every snapshot file.
const snapshotVersion = 1

// snapshot is the serializable representation of the catalog.
type snapshot struct {
	Version int    `yaml:"version"`
	Games   []Game `yaml:"games"`
}

// fileLock provides cross-process mutual exclusion on a snapshot using
// flock(2), so two gamedex processes never interleave a save and a load.
type fileLock struct {
	path string
	file *os.File
}

func newFileLock(snapshotPath string) *fileLock {
	return &fileLock{path: snapshotPath + ".lock"}
}

// lock acquires an exclusive lock, blocking until available.
func (fl *fileLock) lock() error {
	f, err := os.OpenFile(fl.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		_ = f.Close()
		return fmt.Errorf("flock: %w", err)
	}
	fl.file = f
	return nil
}

func (fl *fileLock) unlock() error {
	if fl.file == nil {
		return nil
	}
	defer func() { fl.file = nil }()
	if err := unix.Flock(int(fl.file.Fd()), unix.LOCK_UN); err != nil {
		_ = fl.file.Close()
		return fmt.Errorf("funlock: %w", err)
	}
	return fl.file.Close()
}

// writeSnapshot writes games to path atomically: data goes to a temporary
// file that is then renamed into place.
func writeSnapshot(path string, games []Game) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create library directory: %w", err)
	}

	fl := newFileLock(path)
	if err := fl.lock(); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer func() { _ = fl.unlock() }()

	data, err := yaml.Marshal(snapshot{Version: snapshotVersion, Games: games})
	if err != nil {
		return fmt.Errorf("marshal library: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// readSnapshot reads the games stored at path. A missing file is an empty
// catalog.
func readSnapshot(path string) ([]Game, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	fl := newFileLock(path)
	if err := fl.lock(); err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	defer func() { _ = fl.unlock() }()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read library: %w", err)
	}

	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse library %s: %w", path, err)
	}
	if snap.Version > snapshotVersion {
		return nil, fmt.Errorf("library %s has version %d, newest supported is %d", path, snap.Version, snapshotVersion)
	}
	return snap.Games, nil
}
