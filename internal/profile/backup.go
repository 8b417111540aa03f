package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/bridle-dev/bridle/internal/messages"
)

// MaxExtraBackups is how many session-data archives are kept per harness.
const MaxExtraBackups = 5

const backupTimeLayout = "20060102_150405"

// NewBackupName returns YYYYMMDD_HHMMSS_mmm_pid. Names sort chronologically.
func NewBackupName(now time.Time, pid int) string {
	return fmt.Sprintf("%s_%03d_%d", now.Format(backupTimeLayout), now.Nanosecond()/int(time.Millisecond), pid)
}

// Backups creates timestamped backup directories and rotates old ones.
type Backups struct {
	mirror *Mirror
	now    func() time.Time
	pid    int
	log    zerolog.Logger
}

// NewBackups returns a Backups that names directories with now and pid.
func NewBackups(mirror *Mirror, now func() time.Time, pid int, log zerolog.Logger) *Backups {
	if now == nil {
		now = time.Now
	}
	return &Backups{mirror: mirror, now: now, pid: pid, log: log}
}

// create makes a fresh, uniquely named directory under root.
func (b *Backups) create(root string) (string, error) {
	sys := b.mirror.sys
	if err := sys.MkdirAll(root, dirPerm); err != nil {
		return "", fmt.Errorf(messages.ProfileCreateDirFmt, root, err)
	}
	base := NewBackupName(b.now(), b.pid)
	name := base
	for i := 1; ; i++ {
		path := filepath.Join(root, name)
		err := sys.Mkdir(path, dirPerm)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf(messages.ProfileCreateDirFmt, path, err)
		}
		name = base + "-" + strconv.Itoa(i)
	}
}

// BackupSessionData archives the session-data entries of configDir into a new
// subdirectory of extraDir and prunes the archive down to MaxExtraBackups.
// It returns the new archive path, or "" when configDir holds no session data.
func (b *Backups) BackupSessionData(configDir string, extraDir string) (string, error) {
	m := b.mirror
	entries, err := m.sys.ReadDir(configDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf(messages.ProfileReadDirFmt, configDir, err)
	}
	var session []string
	for _, entry := range entries {
		if m.policy.IsSessionData(entry.Name()) {
			session = append(session, entry.Name())
		}
	}
	if len(session) == 0 {
		return "", nil
	}

	dir, err := b.create(extraDir)
	if err != nil {
		return "", err
	}
	for _, name := range session {
		if err := m.copyEntry(filepath.Join(configDir, name), filepath.Join(dir, name), copyMode{}); err != nil {
			return dir, err
		}
	}
	if err := b.Prune(extraDir, MaxExtraBackups); err != nil {
		b.log.Warn().Err(err).Str("path", extraDir).Msg(messages.LogPruneFailed)
	}
	return dir, nil
}

// Prune removes the oldest timestamp-named subdirectories of dir beyond keep.
// Entries whose names do not start with a digit are never touched.
func (b *Backups) Prune(dir string, keep int) error {
	sys := b.mirror.sys
	entries, err := sys.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(messages.ProfileReadDirFmt, dir, err)
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() && name != "" && name[0] >= '0' && name[0] <= '9' {
			names = append(names, name)
		}
	}
	if len(names) <= keep {
		return nil
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names[:len(names)-keep] {
		path := filepath.Join(dir, name)
		if err := sys.RemoveAll(path); err != nil {
			errs = append(errs, fmt.Errorf(messages.ProfileRemoveFmt, path, err))
		}
	}
	return errors.Join(errs...)
}
