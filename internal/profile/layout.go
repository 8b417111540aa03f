package profile

import "path/filepath"

// Layout maps harness ids and profile names to on-disk paths. It does no I/O.
//
//	<root>/profiles/<harness>/<name>/
//	<root>/backups/<harness>/<timestamp>/
//	<root>/backups/<harness>/extra/<timestamp>/
//	<root>/backups/<harness>/no-profile/
type Layout struct {
	ProfilesRoot string
}

// HarnessDir holds every profile of one harness.
func (l Layout) HarnessDir(harnessID string) string {
	return filepath.Join(l.ProfilesRoot, harnessID)
}

// ProfilePath is the snapshot directory of one profile.
func (l Layout) ProfilePath(harnessID string, name Name) string {
	return filepath.Join(l.ProfilesRoot, harnessID, name.String())
}

// BackupsRoot is the sibling of the profiles root.
func (l Layout) BackupsRoot() string {
	return filepath.Join(filepath.Dir(filepath.Clean(l.ProfilesRoot)), "backups")
}

// HarnessBackupsDir holds per-switch and explicit backups of one harness.
func (l Layout) HarnessBackupsDir(harnessID string) string {
	return filepath.Join(l.BackupsRoot(), harnessID)
}

// ExtraBackupsDir holds the rotating session-data archive.
func (l Layout) ExtraBackupsDir(harnessID string) string {
	return filepath.Join(l.HarnessBackupsDir(harnessID), "extra")
}

// NoProfileBackupDir holds the live config found before the first switch.
func (l Layout) NoProfileBackupDir(harnessID string) string {
	return filepath.Join(l.HarnessBackupsDir(harnessID), "no-profile")
}
