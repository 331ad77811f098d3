package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/canpog/realestate-app-sub000/internal/db"
	"github.com/canpog/realestate-app-sub000/internal/observability"
	"github.com/canpog/realestate-app-sub000/internal/schemas"
	"github.com/canpog/realestate-app-sub000/internal/types"
	"github.com/canpog/realestate-app-sub000/internal/valuation"
	bundled "github.com/canpog/realestate-app-sub000/schemas"
)

var valuateCmd = &cobra.Command{
	Use:   "valuate",
	Short: "Estimate the market value of a property",
	Long: `Reads valuation params (city, district, type, rooms, sqm, age, floor,
features) from a JSON file and prints the normalized valuation.

With --listing-id the stored listing fills any params left out:
  crm_agent valuate --in params.json --agent-id <uuid> --listing-id <uuid>`,
	RunE: runValuate,
}

var (
	valuateInput     string
	valuateAgentID   string
	valuateListingID string
)

func init() {
	valuateCmd.Flags().StringVarP(&valuateInput, "in", "i", "", "Path to a ValuationParams JSON file")
	valuateCmd.Flags().StringVar(&valuateAgentID, "agent-id", "", "Agent that owns the listing")
	valuateCmd.Flags().StringVar(&valuateListingID, "listing-id", "", "Stored listing to value")

	_ = valuateCmd.MarkFlagRequired("in")
	valuateCmd.MarkFlagsRequiredTogether("listing-id", "agent-id")

	rootCmd.AddCommand(valuateCmd)
}

func runValuate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	raw, err := os.ReadFile(valuateInput)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", valuateInput, err)
	}

	req := map[string]any{"params": json.RawMessage(raw)}
	if valuateListingID != "" {
		req["listing_id"] = valuateListingID
	}
	doc, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("invalid params in %s: %w", valuateInput, err)
	}
	if err := schemas.Validate(bundled.ValuationRequest, doc); err != nil {
		return err
	}

	var params types.ValuationParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return fmt.Errorf("failed to parse %s: %w", valuateInput, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cliLogger(cfg)

	var listing *types.Listing
	if valuateListingID != "" {
		agentID, err := uuid.Parse(valuateAgentID)
		if err != nil {
			return fmt.Errorf("invalid --agent-id: %w", err)
		}
		listingID, err := uuid.Parse(valuateListingID)
		if err != nil {
			return fmt.Errorf("invalid --listing-id: %w", err)
		}
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required with --listing-id")
		}
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()

		listing, err = database.GetListing(ctx, agentID, listingID)
		if err != nil {
			return err
		}
		if listing == nil {
			return fmt.Errorf("listing %s not found for agent %s", listingID, agentID)
		}
	}

	// Catch missing params before spending a model call.
	if err := valuation.ValidateParams(valuation.MergeListing(params, listing)); err != nil {
		return err
	}

	model, err := newModelClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer model.Close()

	result, err := valuation.NewValuator(model, logger, nil).Valuate(ctx, params, listing)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintValuation(&result)
		return nil
	}
	return writeJSON(cmd.OutOrStdout(), result)
}
