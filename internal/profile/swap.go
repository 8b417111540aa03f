package profile

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/bridle-dev/bridle/internal/messages"
)

// SwapState is a step of the guarded live-directory replacement.
type SwapState int

const (
	SwapClean SwapState = iota
	SwapBackingUp
	SwapWiping
	SwapCopying
	SwapSuccess
	SwapRollingBack
	SwapRestored
	SwapUnrecoverable
)

func (s SwapState) String() string {
	switch s {
	case SwapClean:
		return "clean"
	case SwapBackingUp:
		return "backing-up"
	case SwapWiping:
		return "wiping"
	case SwapCopying:
		return "copying"
	case SwapSuccess:
		return "success"
	case SwapRollingBack:
		return "rolling-back"
	case SwapRestored:
		return "restored"
	case SwapUnrecoverable:
		return "unrecoverable"
	default:
		return "unknown"
	}
}

// Safe reports whether the live directory is in a consistent state:
// either fully on the new profile, fully restored, or never touched.
func (s SwapState) Safe() bool {
	switch s {
	case SwapRollingBack, SwapUnrecoverable, SwapWiping, SwapCopying:
		return false
	default:
		return true
	}
}

// SwapResult records how a guarded replacement ended.
type SwapResult struct {
	State SwapState
	// Trail lists every state entered, in order, starting with SwapClean.
	Trail []SwapState
	// BackupPath is the per-switch backup, empty when the live directory held
	// nothing to back up. It only still exists on disk after SwapUnrecoverable.
	BackupPath string
}

type swap struct {
	backups    *Backups
	mirror     *Mirror
	log        zerolog.Logger
	result     SwapResult
	hasBackup  bool
	liveDir    string
	backupRoot string
	// skip lists profile paths the copy into liveDir leaves out.
	skip []string
}

func (s *swap) enter(state SwapState) {
	s.result.State = state
	s.result.Trail = append(s.result.Trail, state)
	s.log.Debug().Stringer("state", state).Str("live", s.liveDir).Msg(messages.LogSwapTransition)
}

// SwitchConfigDirSafely replaces the contents of liveDir with those of profilePath.
//
// Non-session entries of liveDir are copied into a fresh directory under backupRoot
// before anything is deleted. Session-data entries stay in place throughout.
// If clearing or copying fails, the partial copy is cleared and the backup restored;
// the original error is returned with State SwapRestored. If the restore fails too,
// the backup is kept and a *RestoreError is returned with State SwapUnrecoverable.
// A failure before SwapWiping leaves liveDir untouched.
func SwitchConfigDirSafely(backups *Backups, profilePath string, liveDir string, backupRoot string) (SwapResult, error) {
	return switchConfigDir(backups, profilePath, liveDir, backupRoot, nil)
}

// switchConfigDir is SwitchConfigDirSafely with the profile paths in skip left
// out of the copy into liveDir.
func switchConfigDir(backups *Backups, profilePath string, liveDir string, backupRoot string, skip []string) (SwapResult, error) {
	s := &swap{
		backups:    backups,
		mirror:     backups.mirror,
		log:        backups.log,
		liveDir:    liveDir,
		backupRoot: backupRoot,
		skip:       skip,
	}
	s.enter(SwapClean)
	err := s.run(profilePath)
	return s.result, err
}

func (s *swap) run(profilePath string) error {
	sys := s.mirror.sys
	policy := s.mirror.policy

	info, err := sys.Stat(profilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf(messages.ProfileNotFoundFmt, ErrProfileNotFound, profilePath)
		}
		return fmt.Errorf(messages.ProfileStatFmt, profilePath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf(messages.ProfileNotFoundFmt, ErrProfileNotFound, profilePath)
	}

	s.enter(SwapBackingUp)
	nonEmpty, err := s.mirror.hasEntries(s.liveDir, policy.IsSessionData)
	if err != nil {
		return err
	}
	if nonEmpty {
		path, err := s.backups.create(s.backupRoot)
		if err != nil {
			return fmt.Errorf(messages.SwapBackupFmt, s.liveDir, s.backupRoot, err)
		}
		s.result.BackupPath = path
		if err := s.mirror.copyTreeExcept(s.liveDir, path, policy.IsSessionData); err != nil {
			s.discardBackup()
			s.result.BackupPath = ""
			return fmt.Errorf(messages.SwapBackupFmt, s.liveDir, path, err)
		}
		s.hasBackup = true
	}

	s.enter(SwapWiping)
	if err := s.mirror.clearDir(s.liveDir, policy.IsSessionData); err != nil {
		return s.rollback(fmt.Errorf(messages.SwapWipeFmt, s.liveDir, err))
	}

	s.enter(SwapCopying)
	if err := s.mirror.copyAllExcept(profilePath, s.liveDir, s.skip); err != nil {
		return s.rollback(fmt.Errorf(messages.SwapCopyFmt, profilePath, s.liveDir, err))
	}

	s.enter(SwapSuccess)
	s.discardBackup()
	return nil
}

func (s *swap) rollback(switchErr error) error {
	s.enter(SwapRollingBack)
	s.log.Warn().Err(switchErr).Str("backup", s.result.BackupPath).Msg(messages.LogRollbackStarted)

	restoreErr := s.mirror.clearDir(s.liveDir, s.mirror.policy.IsSessionData)
	if restoreErr == nil && s.hasBackup {
		restoreErr = s.mirror.CopyTree(s.result.BackupPath, s.liveDir)
	}
	if restoreErr != nil {
		s.enter(SwapUnrecoverable)
		return &RestoreError{SwitchErr: switchErr, RestoreErr: restoreErr, BackupPath: s.result.BackupPath}
	}

	s.enter(SwapRestored)
	s.log.Info().Str("live", s.liveDir).Msg(messages.LogRollbackDone)
	s.discardBackup()
	return switchErr
}

// discardBackup is best-effort; a leftover backup is harmless.
func (s *swap) discardBackup() {
	if s.result.BackupPath == "" {
		return
	}
	if err := s.mirror.sys.RemoveAll(s.result.BackupPath); err != nil {
		s.log.Warn().Err(err).Str("path", s.result.BackupPath).Msg(messages.LogBackupCleanup)
	}
}
