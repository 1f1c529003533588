package cmd

import (
	"github.com/bnema/gosocial-cli/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const annotationNoWire = "gs/no-wire"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	app := &app{}
	format := formatText

	rootCmd := &cobra.Command{
		Use:           "gs",
		Short:         "gosocial CLI (gs): read and post to a gosocial feed",
		Long:          "gs talks to a gosocial API from the terminal: sign in, browse and search the feed, read posts and comments, publish, and follow people.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if _, skip := cmd.Annotations[annotationNoWire]; skip {
				return nil
			}
			wired, err := wireApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			*app = *wired
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if _, skip := cmd.Annotations[annotationNoWire]; skip {
				return
			}
			app.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.Var(&format, "format", "Output format: text, json or yaml")
	flags.String("api-origin", "", "API origin, e.g. https://social.example.com")
	flags.String("api-base-url", "", "API base URL, absolute or a path under the origin")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	_ = v.BindPFlag(config.KeyAPIOrigin, flags.Lookup("api-origin"))
	_ = v.BindPFlag(config.KeyAPIBaseURL, flags.Lookup("api-base-url"))
	_ = v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))

	out := &output{format: &format}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app, out),
		newLogoutCmd(app),
		newWhoamiCmd(app, out),
		newRegisterCmd(app),
		newActivateCmd(app),
		newFeedCmd(app, out),
		newPostCmd(app, out),
		newUserCmd(app, out),
	)

	return rootCmd
}
