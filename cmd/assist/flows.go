package main

import (
	"github.com/aretw0/assist/internal/cli"
	"github.com/spf13/cobra"
)

// fieldFlag binds a command line flag to a form field.
type fieldFlag struct {
	flag  string
	field string
	usage string
	file  bool
}

var (
	registrationFlags = []fieldFlag{
		{flag: "first-name", field: "firstName", usage: "First name"},
		{flag: "last-name", field: "lastName", usage: "Last name"},
		{flag: "email", field: "email", usage: "Email address"},
		{flag: "password", field: "password", usage: "Password (at least 6 characters)"},
		{flag: "confirm-password", field: "confirmPassword", usage: "Password confirmation (defaults to --password)"},
		{flag: "role", field: "role", usage: "help_seeker or help_creator"},
	}
	signInFlags = []fieldFlag{
		{flag: "email", field: "email", usage: "Email address"},
		{flag: "password", field: "password", usage: "Password"},
	}
	helpRequestFlags = []fieldFlag{
		{flag: "description", field: "needDescription", usage: "What you need, in detail"},
		{flag: "type", field: "helpType", usage: "Kind of help, e.g. \"Food Support\""},
		{flag: "location", field: "location", usage: "Where you are"},
		{flag: "document", field: "documents", usage: "Supporting document (PDF, JPEG or PNG, up to 5MB)", file: true},
	}
	creatorFlags = []fieldFlag{
		{flag: "first-name", field: "firstName", usage: "First name"},
		{flag: "last-name", field: "lastName", usage: "Last name"},
		{flag: "email", field: "email", usage: "Email address"},
		{flag: "phone", field: "phoneNumber", usage: "Phone number"},
		{flag: "password", field: "password", usage: "Password"},
		{flag: "address", field: "address", usage: "Postal address"},
		{flag: "profile-pic", field: "profilePic", usage: "Profile picture", file: true},
		{flag: "verify-document", field: "verifyDocuments", usage: "Identity document (image or PDF)", file: true},
	}
	ngoFlags = []fieldFlag{
		{flag: "title", field: "title", usage: "Program title"},
		{flag: "description", field: "description", usage: "Program description"},
		{flag: "image", field: "image", usage: "Program image", file: true},
		{flag: "created-by", field: "createdBy", usage: "Creator id returned by creator-profile"},
	}
)

func bindFields(cmd *cobra.Command, fields []fieldFlag) {
	for _, f := range fields {
		cmd.Flags().String(f.flag, "", f.usage)
	}
}

func readInput(cmd *cobra.Command, fields []fieldFlag) cli.Input {
	in := cli.Input{Values: map[string]string{}, Files: map[string]string{}}
	for _, f := range fields {
		v, _ := cmd.Flags().GetString(f.flag)
		if f.file {
			in.Files[f.field] = v
		} else {
			in.Values[f.field] = v
		}
	}
	return in
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *cli.App, _ []string) error {
		return a.Register(cmd.Context(), readInput(cmd, registrationFlags))
	}),
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session under the active profile",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *cli.App, _ []string) error {
		return a.Login(cmd.Context(), readInput(cmd, signInFlags))
	}),
}

var ngosCmd = &cobra.Command{
	Use:   "ngos",
	Short: "List assistance programs",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *cli.App, _ []string) error {
		return a.NGOs(cmd.Context())
	}),
}

var applyCmd = &cobra.Command{
	Use:   "apply <ngo-id>",
	Short: "Apply for help from a program",
	Long: `Apply opens the help request form for a program. Without a stored sign-in you are
sent to register or, on a terminal, asked to sign in first and then taken to the form.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *cli.App, args []string) error {
		return a.Apply(cmd.Context(), args[0], readInput(cmd, helpRequestFlags))
	}),
}

var helpRequestCmd = &cobra.Command{
	Use:   "help-request",
	Short: "Submit a help request as the signed-in user",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *cli.App, _ []string) error {
		return a.HelpRequest(cmd.Context(), readInput(cmd, helpRequestFlags), nil)
	}),
}

var creatorProfileCmd = &cobra.Command{
	Use:   "creator-profile",
	Short: "Create a help creator profile with identity documents",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *cli.App, _ []string) error {
		return a.CreatorProfile(cmd.Context(), readInput(cmd, creatorFlags))
	}),
}

var createNGOCmd = &cobra.Command{
	Use:   "create-ngo",
	Short: "Publish an assistance program",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *cli.App, _ []string) error {
		return a.CreateNGO(cmd.Context(), readInput(cmd, ngoFlags))
	}),
}

func init() {
	bindFields(registerCmd, registrationFlags)
	bindFields(loginCmd, signInFlags)
	bindFields(applyCmd, helpRequestFlags)
	bindFields(helpRequestCmd, helpRequestFlags)
	bindFields(creatorProfileCmd, creatorFlags)
	bindFields(createNGOCmd, ngoFlags)

	rootCmd.AddCommand(registerCmd, loginCmd, ngosCmd, applyCmd, helpRequestCmd, creatorProfileCmd, createNGOCmd)
}
