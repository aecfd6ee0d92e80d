package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jaminalder/codex-gomoku/internal/tui"
)

// gomoku play
func Play() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a hot-seat game in the terminal",
		Args:  cobra.NoArgs,
		Long: heredoc.Doc(`play starts a game in the terminal. Players take turns
			typing the row and column of their move, X first.

			Type "moves" to list the recorded positions, "jump <k>" to
			view position k and "quit" to leave.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []tui.Option{tui.WithLogger(logrus.StandardLogger())}
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				opts = append(opts, tui.WithoutColor())
			}
			return tui.New(cmd.OutOrStdout(), opts...).Run(cmd.InOrStdin())
		},
	}
	cmd.Flags().Bool("no-color", false, "Draw the board without colour")
	return cmd
}
