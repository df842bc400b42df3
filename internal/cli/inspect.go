package cli

import (
	"github.com/spf13/cobra"

	"sim-epsp/internal/app"
)

var inspectRows int

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.atf>",
	Short: "Print the header and a summary of a stimulus file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Inspect(app.InspectOptions{Path: args[0], Rows: inspectRows})
	},
}

func init() {
	inspectCmd.Flags().IntVar(&inspectRows, "rows", 0, "Number of data rows to print")
}
