package internal

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
)

// Directory returns the sorted file names in a directory. If the
// given name refers to a plain file instead, its base name is
// returned as the only entry.
func Directory(file string) (files []string, err error) {
	info, err := os.Stat(file)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{filepath.Base(file)}, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer func() {
		nerr := f.Close()
		if err == nil {
			err = nerr
		}
	}()
	files, err = f.Readdirnames(0)
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// FullPathname makes a filename absolute against the current working
// directory.
func FullPathname(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		return filename, nil
	}
	wd, err := os.Getwd()
	return filepath.Join(wd, filename), err
}

// StagingDir creates a uniquely named scratch directory under parent.
// Callers are responsible for removing it when they are done.
func StagingDir(parent, prefix string) (string, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	dir := filepath.Join(parent, prefix+"-"+uuid.New().String())
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}
