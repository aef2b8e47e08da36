package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/assist/internal/cli"
	"github.com/aretw0/assist/internal/presentation/prompt"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "assist",
	Short: "Register, sign in and request help from assistance programs",
	Long: `assist drives the charity platform's forms from the terminal: accounts, program listings,
help requests and NGO profiles. Missing values are prompted for when running on a terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case cli.IsInterrupted(err):
		// Exit 0 for interruptions
		return 0
	case errors.Is(err, cli.ErrReported):
		return 1
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("dir", ".", "Project directory holding .assist/")
	pf.String("config", "", "Config file (default <dir>/.assist/config.yaml)")
	pf.String("profile", "", "Session profile to use")
	pf.String("base-url", "", "Remote API base URL")
	pf.Bool("debug", false, "Enable debug logging")
	pf.Bool("no-input", false, "Never prompt, fail on missing values")
	pf.String("metrics-textfile", "", "Write prometheus metrics to this file on exit")
}

// newApp builds the App from the persistent flags. Prompting needs both ends on a terminal.
func newApp(cmd *cobra.Command) (*cli.App, error) {
	flags := cmd.Flags()
	dir, _ := flags.GetString("dir")
	configPath, _ := flags.GetString("config")
	profile, _ := flags.GetString("profile")
	baseURL, _ := flags.GetString("base-url")
	debug, _ := flags.GetBool("debug")
	noInput, _ := flags.GetBool("no-input")
	metricsPath, _ := flags.GetString("metrics-textfile")

	opts := cli.Options{
		Dir:             dir,
		ConfigPath:      configPath,
		Profile:         profile,
		BaseURL:         baseURL,
		Debug:           debug,
		MetricsTextfile: metricsPath,
		Out:             cmd.OutOrStdout(),
		Plain:           !prompt.IsInteractive(os.Stdout),
	}
	if !noInput && prompt.IsInteractive(os.Stdin) && !opts.Plain {
		opts.Asker = prompt.NewSurveyAsker()
	}
	return cli.NewApp(opts)
}

// withApp opens an App for the duration of one command.
func withApp(fn func(cmd *cobra.Command, a *cli.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		err = fn(cmd, a, args)
		return errors.Join(err, a.Close())
	}
}
