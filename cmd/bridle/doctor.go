package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bridle-dev/bridle/internal/doctor"
	"github.com/bridle-dev/bridle/internal/messages"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.DoctorUse,
		Short: messages.DoctorShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, messages.DoctorHealthCheckFmt, a.paths.Root)

			harnesses := a.harnesses.All()
			results, cfg := doctor.CheckConfig(a.store)
			results = append(results, doctor.CheckHarnesses(harnesses)...)
			if cfg != nil {
				results = append(results, doctor.CheckActiveProfiles(cfg, a.manager.Layout(), a.harnesses)...)
			}
			results = append(results, doctor.CheckProfileDirs(a.manager.Layout(), harnesses)...)

			for _, r := range results {
				printResult(out, r)
			}
			if doctor.HasFailure(results) {
				_, _ = fmt.Fprintln(out, color.RedString(messages.DoctorFailureSummary))
				return &SilentExitError{Code: 1}
			}
			_, _ = fmt.Fprintln(out, color.GreenString(messages.DoctorSuccessSummary))
			return nil
		},
	}
}

func printResult(out io.Writer, r doctor.Result) {
	var status string
	switch r.Status {
	case doctor.StatusOK:
		status = color.GreenString(messages.DoctorStatusOKLabel)
	case doctor.StatusWarn:
		status = color.YellowString(messages.DoctorStatusWarnLabel)
	case doctor.StatusFail:
		status = color.RedString(messages.DoctorStatusFailLabel)
	}
	_, _ = fmt.Fprintf(out, messages.DoctorResultLineFmt, status, r.CheckName, r.Message)
	if r.Recommendation != "" {
		_, _ = fmt.Fprintf(out, "%s%s\n", messages.DoctorRecommendationPrefix, r.Recommendation)
	}
}
