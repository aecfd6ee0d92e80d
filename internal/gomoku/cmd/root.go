package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jaminalder/codex-gomoku/internal/config"
)

// Root returns the gomoku command with its subcommands registered.
func Root() *cobra.Command {
	var conf config.Config

	root := &cobra.Command{
		Use:   "gomoku",
		Short: "Play five in a row on a 15x15 board",
		Long: heredoc.Doc(`gomoku is a two player game of five in a row on a 15x15
			board. Every move is recorded, and any earlier position can be
			viewed again; playing from an earlier position discards the
			moves that followed it.

			Play in the terminal with "gomoku play" or in a browser with
			"gomoku serve". Both players share the same screen.`),
		Args: cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			loaded, err := config.Load(path)
			if err != nil {
				return err
			}
			conf = *loaded

			lvl, _ := conf.Level()
			logrus.SetLevel(lvl)
			// If --trace flag is provided, set logging level to Trace.
			if cmd.Flag("trace").Changed {
				logrus.SetLevel(logrus.TraceLevel)
			}
			logrus.WithField("config", path).Trace("configuration loaded")
			return nil
		},
	}

	// global flags
	root.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolP("trace", "t", false, "Show Trace Information")

	versionStr := "v0.1.0\n"
	root.SetVersionTemplate(versionStr)
	root.Version = versionStr

	// Register the various commands.
	root.AddCommand(Serve(&conf))
	root.AddCommand(Play())

	return root
}
