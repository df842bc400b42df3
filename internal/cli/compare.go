package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sim-epsp/internal/app"
)

var (
	comparePNGPath string
	compareWindow  float64
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Plot the fast- and slow-rising models side by side",
	RunE: func(cmd *cobra.Command, args []string) error {
		if compareWindow < 0 {
			return fmt.Errorf("--window cannot be negative")
		}
		return getApp().Compare(cmd.Context(), app.CompareOptions{
			PNGPath:  comparePNGPath,
			WindowMS: compareWindow,
		})
	},
}

func init() {
	compareCmd.Flags().StringVar(&comparePNGPath, "png", "", "Path to write the comparison PNG (defaults to <output-dir>/epsp_comparison.png)")
	compareCmd.Flags().Float64Var(&compareWindow, "window", 50, "Overlay window in ms")
}
