package main

import (
	"github.com/aretw0/assist/internal/cli"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and clear stored sign-ins",
	Long:  `Show, list and remove the sessions kept per profile in the configured store.`,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show who is signed in under the active profile",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *cli.App, _ []string) error {
		return a.ShowSession(cmd.Context())
	}),
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored profiles",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *cli.App, _ []string) error {
		return a.ListSessions(cmd.Context())
	}),
}

var sessionClearCmd = &cobra.Command{
	Use:     "clear",
	Aliases: []string{"logout"},
	Short:   "Sign the active profile out",
	Args:    cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *cli.App, _ []string) error {
		return a.ClearSession(cmd.Context())
	}),
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionClearCmd)
}
