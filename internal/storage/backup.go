package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BackupInfo describes a collection backup file.
type BackupInfo struct {
	Path     string
	Name     string
	Size     int64
	ModTime  time.Time
	Checksum string
}

// DefaultBackupDir returns the backups directory next to a database file.
func DefaultBackupDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "backups")
}

// BackupDir returns the default backup directory of db.
func (db *DB) BackupDir() string {
	return DefaultBackupDir(db.path)
}

// Backup writes a consistent copy of the collection to dir (BackupDir when
// empty) using VACUUM INTO, verifies it, and returns its path.
func (db *DB) Backup(ctx context.Context, dir string) (string, error) {
	if dir == "" {
		dir = db.BackupDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("collection_%s.db", time.Now().Format("20060102_150405.000")))
	quoted := "'" + strings.ReplaceAll(path, "'", "''") + "'"
	if _, err := db.conn.ExecContext(ctx, "VACUUM INTO "+quoted); err != nil {
		return "", fmt.Errorf("failed to back up database: %w", err)
	}

	if err := VerifyBackup(path); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("backup verification failed: %w", err)
	}
	return path, nil
}

// VerifyBackup checks that path is a readable SQLite database holding the
// collection schema.
func VerifyBackup(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("backup file: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open backup as database: %w", err)
	}
	defer func() { _ = conn.Close() }()

	var n int
	err = conn.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'collection'`).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to query backup database: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("backup has no collection table")
	}
	return nil
}

// ListBackups returns the backups in dir, newest first. A missing directory
// yields no backups.
func ListBackups(dir string) ([]BackupInfo, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".db" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		checksum, err := fileChecksum(path)
		if err != nil {
			checksum = "unknown"
		}

		backups = append(backups, BackupInfo{
			Path:     path,
			Name:     entry.Name(),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			Checksum: checksum,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ModTime.After(backups[j].ModTime)
	})
	return backups, nil
}

// RestoreBackup replaces the database file at dbPath with backupPath. The
// current file is kept as dbPath.old.<timestamp>. The database must be closed.
func RestoreBackup(backupPath, dbPath string) error {
	if err := VerifyBackup(backupPath); err != nil {
		return err
	}

	tmp := dbPath + ".restore.tmp"
	if err := copyFile(backupPath, tmp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to copy backup: %w", err)
	}

	if _, err := os.Stat(dbPath); err == nil {
		old := dbPath + ".old." + time.Now().Format("20060102_150405")
		if err := os.Rename(dbPath, old); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("failed to move current database aside: %w", err)
		}
	}

	if err := os.Rename(tmp, dbPath); err != nil {
		return fmt.Errorf("failed to replace database with backup: %w", err)
	}
	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
