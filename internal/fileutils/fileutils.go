// Package fileutils provides the file operations behind database housekeeping.
package fileutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/models"
)

// FileExists checks if a file exists and is not a directory
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirectoryExists checks if a directory exists
func DirectoryExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDirectoryExists creates a directory if it doesn't exist
func EnsureDirectoryExists(dirPath string) error {
	if !DirectoryExists(dirPath) {
		if err := os.MkdirAll(dirPath, models.PermissionDirectory); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return nil
}

// BackupDirs names the directories a Backup moves files between.
type BackupDirs struct {
	DB     string // holds <name>.sqlite
	CSV    string // holds <name>.csv and the mirror files
	Ledger string // holds the ledger journals
	Backup string // receives db/, csv/ and ledger/
}

// Moved records one renamed file.
type Moved struct {
	From string
	To   string
}

// Backup moves a database and its derived files out of the way.
type Backup struct {
	dirs   BackupDirs
	now    func() time.Time
	logger logging.Logger
}

// NewBackup creates a Backup stamping files with the current time.
func NewBackup(dirs BackupDirs, logger logging.Logger) *Backup {
	return &Backup{dirs: dirs, now: time.Now, logger: logging.OrDefault(logger)}
}

// Run renames <DB>/<name>.sqlite and every file of CSV into Backup/db and
// Backup/csv, and every ledger file whose name does not contain "zero" into
// Backup/ledger. Each target gets a .<unix-millis> suffix. Missing files and
// directories are skipped.
func (b *Backup) Run(name string) ([]Moved, error) {
	suffix := "." + strconv.FormatInt(b.now().UnixMilli(), 10)
	var moved []Moved

	move := func(src, kind string) error {
		dst := filepath.Join(b.dirs.Backup, kind, filepath.Base(src)+suffix)
		ok, err := b.rename(src, dst)
		if err != nil {
			return err
		}
		if ok {
			moved = append(moved, Moved{From: src, To: dst})
		}
		return nil
	}

	if b.dirs.DB != "" {
		if err := move(filepath.Join(b.dirs.DB, name+".sqlite"), "db"); err != nil {
			return moved, err
		}
	}

	csvFiles, err := listFiles(b.dirs.CSV, nil)
	if err != nil {
		return moved, err
	}
	for _, f := range csvFiles {
		if err := move(f, "csv"); err != nil {
			return moved, err
		}
	}

	ledgerFiles, err := listFiles(b.dirs.Ledger, func(base string) bool {
		return !strings.Contains(base, "zero")
	})
	if err != nil {
		return moved, err
	}
	for _, f := range ledgerFiles {
		if err := move(f, "ledger"); err != nil {
			return moved, err
		}
	}

	b.logger.Info("Backed up database files",
		logging.F(logging.FieldCount, len(moved)),
		logging.F("backup_dir", b.dirs.Backup))
	return moved, nil
}

func (b *Backup) rename(src, dst string) (bool, error) {
	if !FileExists(src) {
		b.logger.Debug("Nothing to back up", logging.F(logging.FieldFile, src))
		return false, nil
	}
	if err := EnsureDirectoryExists(filepath.Dir(dst)); err != nil {
		return false, err
	}
	if err := os.Rename(src, dst); err != nil {
		return false, fmt.Errorf("failed to back up %s: %w", src, err)
	}
	b.logger.Debug("Backed up file",
		logging.F(logging.FieldFile, src),
		logging.F(logging.FieldOutputFile, dst))
	return true, nil
}

// listFiles returns the regular files directly inside dir, optionally filtered
// by base name. A missing or empty dir yields nothing.
func listFiles(dir string, keep func(base string) bool) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if keep != nil && !keep(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}
