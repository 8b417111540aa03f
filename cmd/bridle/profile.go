package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bridle-dev/bridle/internal/config"
	"github.com/bridle-dev/bridle/internal/messages"
	"github.com/bridle-dev/bridle/internal/profile"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.ProfileUse,
		Short: messages.ProfileShort,
	}
	cmd.AddCommand(
		newProfileListCmd(),
		newProfileCreateCmd(),
		newProfileDeleteCmd(),
		newProfileSwitchCmd(),
		newProfileShowCmd(),
		newProfileEditCmd(),
		newProfileDiffCmd(),
	)
	return cmd
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.ProfileListUse,
		Short: messages.ProfileListShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			h, err := a.harness(argAt(args, 0))
			if err != nil {
				return err
			}
			names, err := a.manager.ListProfiles(h)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				_, _ = fmt.Fprintf(out, messages.ProfileListEmptyFmt, h.ID())
				return nil
			}
			cfg, err := a.store.Load()
			if err != nil {
				return err
			}
			active, _ := cfg.ActiveProfileFor(h.ID())
			_, _ = fmt.Fprintf(out, messages.ProfileListTitleFmt, h.ID())
			for _, name := range names {
				if name.String() == active {
					_, _ = fmt.Fprint(out, color.GreenString(messages.ProfileListActiveFmt, name))
					continue
				}
				_, _ = fmt.Fprintf(out, messages.ProfileListItemFmt, name)
			}
			return nil
		},
	}
}

func newProfileCreateCmd() *cobra.Command {
	var fromCurrent bool
	cmd := &cobra.Command{
		Use:   messages.ProfileCreateUse,
		Short: messages.ProfileCreateShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			h, err := a.harness(args[0])
			if err != nil {
				return err
			}
			name, err := parseName(args[1])
			if err != nil {
				return err
			}
			if fromCurrent {
				err = a.manager.CreateFromCurrent(h, name)
			} else {
				err = a.manager.CreateProfile(h, name)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.ProfileCreatedFmt, name, h.ID(), a.manager.Layout().ProfilePath(h.ID(), name))
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromCurrent, "from-current", false, messages.ProfileCreateFlagFromCurrent)
	return cmd
}

func newProfileDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   messages.ProfileDeleteUse,
		Short: messages.ProfileDeleteShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			h, err := a.harness(args[0])
			if err != nil {
				return err
			}
			name, err := parseName(args[1])
			if err != nil {
				return err
			}
			if !yes {
				ok, err := newConfirmer().Confirm(fmt.Sprintf(messages.ProfileDeletePromptFmt, name, h.ID()), false)
				if err != nil {
					return err
				}
				if !ok {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), messages.ProfileDeleteAborted)
					return nil
				}
			}
			if err := a.manager.DeleteProfile(h, name); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.ProfileDeletedFmt, name, h.ID())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, messages.ProfileDeleteFlagYes)
	return cmd
}

func newProfileSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.ProfileSwitchUse,
		Short: messages.ProfileSwitchShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			h, err := a.harness(args[0])
			if err != nil {
				return err
			}
			name, err := parseName(args[1])
			if err != nil {
				return err
			}
			result, err := a.manager.SwitchProfile(cmd.Context(), h, name)
			if err != nil {
				reportSwitchFailure(cmd.ErrOrStderr(), result.Swap.State)
				return err
			}
			out := cmd.OutOrStdout()
			if result.NoOp {
				_, _ = fmt.Fprintf(out, messages.ProfileAlreadyActiveFmt, name, h.ID())
				return nil
			}
			if result.Archived != "" {
				_, _ = fmt.Fprintf(out, messages.ProfileArchivedFmt, result.Archived)
			}
			_, _ = fmt.Fprintf(out, messages.ProfileSwitchedFmt, h.ID(), name)
			return nil
		},
	}
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.ProfileShowUse,
		Short: messages.ProfileShowShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			h, err := a.harness(args[0])
			if err != nil {
				return err
			}
			name, err := parseName(args[1])
			if err != nil {
				return err
			}
			info, err := a.manager.ShowProfile(h, name)
			if err != nil {
				return err
			}
			printInfo(cmd, info)
			return nil
		},
	}
}

func printInfo(cmd *cobra.Command, info profile.Info) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, messages.ProfileShowNameFmt, info.Name)
	_, _ = fmt.Fprintf(out, messages.ProfileShowHarnessFmt, info.Harness)
	_, _ = fmt.Fprintf(out, messages.ProfileShowActiveFmt, yesNo(info.Active))
	_, _ = fmt.Fprintf(out, messages.ProfileShowPathFmt, info.Path)

	if len(info.MCPServers) == 0 {
		_, _ = fmt.Fprintln(out, messages.ProfileShowMCPNone)
	} else {
		_, _ = fmt.Fprintln(out, messages.ProfileShowMCPTitle)
		for _, server := range info.MCPServers {
			suffix := ""
			if !server.Enabled {
				suffix = messages.ProfileShowMCPDisabled
			}
			_, _ = fmt.Fprintf(out, messages.ProfileShowMCPItemFmt, server.Name, suffix)
		}
	}

	for _, res := range info.Resources {
		items := messages.ProfileShowResourceNone
		if len(res.Items) > 0 {
			items = strings.Join(res.Items, ", ")
		}
		_, _ = fmt.Fprintf(out, messages.ProfileShowResourceFmt, res.Kind, items)
	}

	if len(info.Errors) > 0 {
		_, _ = fmt.Fprintln(out, color.YellowString(messages.ProfileShowErrorsTitle))
		for _, msg := range info.Errors {
			_, _ = fmt.Fprintf(out, messages.ProfileShowErrorItemFmt, msg)
		}
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func newProfileEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.ProfileEditUse,
		Short: messages.ProfileEditShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			h, err := a.harness(args[0])
			if err != nil {
				return err
			}
			name, err := parseName(args[1])
			if err != nil {
				return err
			}
			names, err := a.manager.ListProfiles(h)
			if err != nil {
				return err
			}
			if !containsName(names, name) {
				return fmt.Errorf(messages.ProfileNotFoundFmt, profile.ErrProfileNotFound, name)
			}
			cfg, err := a.store.Load()
			if err != nil {
				return err
			}
			editor, editorArgs := cfg.EditorCommand()
			path := a.manager.Layout().ProfilePath(h.ID(), name)
			if err := runEditor(editor, append(editorArgs, path)); err != nil {
				return fmt.Errorf(messages.ProfileEditFmt, editor, err)
			}
			return nil
		},
	}
}

func containsName(names []profile.Name, name profile.Name) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func newProfileDiffCmd() *cobra.Command {
	var maxLines int
	cmd := &cobra.Command{
		Use:   messages.ProfileDiffUse,
		Short: messages.ProfileDiffShort,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			h, err := a.harness(args[0])
			if err != nil {
				return err
			}
			name, err := diffTarget(a.store, h.ID(), argAt(args, 1))
			if err != nil {
				return err
			}
			diffs, err := a.manager.DiffProfile(h, name, maxLines)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(diffs) == 0 {
				_, _ = fmt.Fprintf(out, messages.ProfileDiffNoChangesFmt, name)
				return nil
			}
			for _, d := range diffs {
				_, _ = fmt.Fprint(out, color.CyanString(messages.ProfileDiffFileFmt, d.Path, d.Status))
				_, _ = fmt.Fprint(out, d.UnifiedDiff)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxLines, "lines", profile.DefaultDiffMaxLines, messages.ProfileDiffFlagLines)
	return cmd
}

// diffTarget returns the named profile, or the active one when raw is empty.
func diffTarget(store config.FileStore, harnessID string, raw string) (profile.Name, error) {
	if strings.TrimSpace(raw) != "" {
		return parseName(raw)
	}
	cfg, err := store.Load()
	if err != nil {
		return "", err
	}
	active, ok := cfg.ActiveProfileFor(harnessID)
	if !ok {
		return "", fmt.Errorf(messages.ProfileNoActiveFmt, profile.ErrNoActiveProfile, harnessID)
	}
	return parseName(active)
}

// reportSwitchFailure tells the user where a failed switch left the live directory.
func reportSwitchFailure(w io.Writer, state profile.SwapState) {
	switch {
	case !state.Safe():
		_, _ = fmt.Fprintln(w, color.RedString(messages.SwitchRestoreFailed))
	case state == profile.SwapRestored:
		_, _ = fmt.Fprintln(w, color.YellowString(messages.SwitchRestored))
	}
}
