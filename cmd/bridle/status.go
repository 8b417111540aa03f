package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bridle-dev/bridle/internal/harness"
	"github.com/bridle-dev/bridle/internal/messages"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.StatusUse,
		Short: messages.StatusShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			markers := false
			for _, h := range a.harnesses.All() {
				st, err := a.manager.Status(h)
				if err != nil {
					return err
				}
				markers = markers || st.MarkerEnabled
				active := messages.StatusNoProfile
				if st.HasActive {
					active = color.GreenString("%s", st.Active)
				}
				install := st.Install.String()
				if st.Install != harness.FullyInstalled {
					install = color.New(color.Faint).Sprint(install)
				}
				_, _ = fmt.Fprintf(out, messages.StatusLineFmt, st.Harness, install, active, fmt.Sprintf(messages.StatusProfilesFmt, st.Profiles))
			}
			if markers {
				_, _ = fmt.Fprint(out, messages.StatusMarkerOnFmt)
			}
			return nil
		},
	}
}

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.BackupUse,
		Short: messages.BackupShort,
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
			dir, err := a.manager.BackupCurrent(h)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.BackupDoneFmt, h.ID(), dir)
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.InitUse,
		Short: messages.InitShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, h := range a.harnesses.All() {
				created, err := a.manager.EnsureDefaultProfile(h)
				if err != nil {
					return err
				}
				if created {
					_, _ = fmt.Fprintf(out, messages.InitCreatedFmt, h.ID())
					continue
				}
				_, _ = fmt.Fprintf(out, messages.InitSkippedFmt, h.ID())
			}
			return nil
		},
	}
}
