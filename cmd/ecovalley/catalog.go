package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ecovalley/app"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the materials in the configured catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := app.NewCatalog(cmd.Context(), cfg.Agent)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MATERIAL\tENERGY/KG\tCARBON/KG\tWATER/KG\tCOST/KG\tRECYCLABILITY\tBIODEGRADABILITY")
		for _, r := range cat.Records() {
			fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t%s\n",
				r.Name, r.EnergyPerKg, r.CarbonPerKg, r.WaterPerKg, r.CostPerKg, r.Recyclability, r.Biodegradability)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
