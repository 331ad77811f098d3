package main

import (
	"github.com/spf13/cobra"

	"github.com/canpog/realestate-app-sub000/internal/finance"
	"github.com/canpog/realestate-app-sub000/internal/observability"
)

var commissionCmd = &cobra.Command{
	Use:   "commission",
	Short: "Compute commission, VAT and title-deed fees for a sale",
	Example: `  crm_agent commission --price 10000000
  crm_agent commission --price 7500000 --rate 0.03 --split 0.6 --json`,
	RunE: runCommission,
}

var (
	commissionPrice int64
	commissionRate  float64
	commissionSplit float64
	commissionJSON  bool
)

func init() {
	commissionCmd.Flags().Int64Var(&commissionPrice, "price", 0, "Sale price in TL")
	commissionCmd.Flags().Float64Var(&commissionRate, "rate", 0, "Commission rate (default 0.02)")
	commissionCmd.Flags().Float64Var(&commissionSplit, "split", 0, "Agent share of the commission (default 0.5)")
	commissionCmd.Flags().BoolVar(&commissionJSON, "json", false, "Print the breakdown as JSON")

	_ = commissionCmd.MarkFlagRequired("price")

	rootCmd.AddCommand(commissionCmd)
}

func runCommission(cmd *cobra.Command, _ []string) error {
	b, err := finance.Calculate(commissionPrice, commissionRate, commissionSplit)
	if err != nil {
		return err
	}
	if commissionJSON {
		return writeJSON(cmd.OutOrStdout(), b)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintBreakdown(&b)
	return nil
}
