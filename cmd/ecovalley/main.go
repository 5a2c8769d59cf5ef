package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ecovalley/app"
)

var cfg app.Config

var rootCmd = &cobra.Command{
	Use:   "ecovalley",
	Short: "Sustainable material recommendations",
	Long:  "Scores materials on environmental impact and cost, ranks them against weighted preferences and narrates the trade-offs.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		return nil
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
