package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bridle-dev/bridle/internal/config"
	"github.com/bridle-dev/bridle/internal/messages"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.ConfigUse,
		Short: messages.ConfigShort,
	}
	cmd.AddCommand(newConfigGetCmd(), newConfigSetCmd())
	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.ConfigGetUse,
		Short: messages.ConfigGetShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			cfg, err := a.store.Load()
			if err != nil {
				return err
			}
			value, ok, err := config.Get(cfg, args[0])
			if err != nil {
				return err
			}
			if !ok {
				value = messages.ConfigUnsetValue
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.ConfigSetUse,
		Short: messages.ConfigSetShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			key, value := args[0], args[1]
			if key == config.KeyDefaultHarness && value != "" {
				h, err := a.harnesses.Resolve(value)
				if err != nil {
					return fmt.Errorf(messages.ConfigUnknownHarnessFmt, err)
				}
				value = h.ID()
			}
			cfg, err := a.store.Load()
			if err != nil {
				return err
			}
			if err := config.Set(cfg, key, value); err != nil {
				return err
			}
			if err := a.store.Save(cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.ConfigSetDoneFmt, key, value)
			return nil
		},
	}
}
