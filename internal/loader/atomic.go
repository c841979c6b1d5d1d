package loader

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// BackupSuffix is appended to the previous version of a rewritten file.
const BackupSuffix = ".bak"

// WriteFileAtomic writes data to a temp file in the target directory,
// syncs it, copies any existing file to path+BackupSuffix and renames the
// temp file over path. Readers see either the old or the new document.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "syncing temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return errors.Wrap(err, "setting permissions")
	}

	if err := backup(path, perm); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "replacing %s", path)
	}
	return nil
}

// backup copies the current file to path+BackupSuffix. A missing file is
// not an error.
func backup(path string, perm os.FileMode) error {
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "reading file for backup")
	}
	if err := os.WriteFile(path+BackupSuffix, content, perm); err != nil {
		return errors.Wrapf(err, "writing %s", path+BackupSuffix)
	}
	return nil
}
