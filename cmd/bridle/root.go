package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bridle-dev/bridle/internal/config"
	"github.com/bridle-dev/bridle/internal/harness"
	"github.com/bridle-dev/bridle/internal/logging"
	"github.com/bridle-dev/bridle/internal/messages"
	"github.com/bridle-dev/bridle/internal/profile"
	"github.com/bridle-dev/bridle/internal/prompt"
)

const flagVerbose = "verbose"

// Test seams.
var (
	lookupEnv    = os.LookupEnv
	harnessEnv   = harness.DefaultEnv
	newConfirmer = func() prompt.Confirmer { return prompt.NewHuhUI() }
	runEditor    = func(name string, args []string) error {
		cmd := exec.Command(name, args...)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().BoolP(flagVerbose, "v", false, messages.RootVerboseFlag)

	cmd.AddCommand(
		newProfileCmd(),
		newStatusCmd(),
		newBackupCmd(),
		newInitCmd(),
		newConfigCmd(),
		newDoctorCmd(),
	)
	return cmd
}

// app carries what every command needs. It is built per invocation.
type app struct {
	paths     config.Paths
	store     config.FileStore
	harnesses *harness.Registry
	manager   *profile.Manager
	log       zerolog.Logger
}

func newApp(cmd *cobra.Command) (*app, error) {
	verbose, _ := cmd.Flags().GetBool(flagVerbose)
	log := logging.New(cmd.ErrOrStderr(), logging.FromEnv(verbose, lookupEnv))

	root, err := config.ResolveRoot(lookupEnv)
	if err != nil {
		return nil, err
	}
	paths := config.DefaultPaths(root)
	env, err := harnessEnv()
	if err != nil {
		return nil, err
	}
	store := config.FileStore{Path: paths.ConfigPath}
	manager, err := profile.NewManager(profile.Options{
		ProfilesRoot: paths.ProfilesDir,
		Registry:     store,
		Logger:       log,
	})
	if err != nil {
		return nil, err
	}
	return &app{
		paths:     paths,
		store:     store,
		harnesses: harness.NewBuiltinRegistry(env),
		manager:   manager,
		log:       log,
	}, nil
}

// harness resolves an id or alias. An empty name falls back to default_harness.
func (a *app) harness(name string) (harness.Harness, error) {
	if strings.TrimSpace(name) == "" {
		cfg, err := a.store.Load()
		if err != nil {
			return nil, err
		}
		name = cfg.DefaultHarness
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New(messages.HarnessArgRequired)
	}
	return a.harnesses.Resolve(name)
}

func parseName(raw string) (profile.Name, error) {
	name, err := profile.NewName(raw)
	if err != nil {
		return "", fmt.Errorf(messages.ProfileNameInvalidFmt, raw, err)
	}
	return name, nil
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
