package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/canpog/realestate-app-sub000/internal/db"
	"github.com/canpog/realestate-app-sub000/internal/matching"
	"github.com/canpog/realestate-app-sub000/internal/observability"
	"github.com/canpog/realestate-app-sub000/internal/types"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank listings for a client",
	Long: `Asks the model to rank listings for a client and prints the result as JSON
(or a readable summary with --verbose).

Database mode reads the client, its notes and the agent's active listings:
  crm_agent match --agent-id <uuid> --client-id <uuid>

File mode reads a Client JSON object and a JSON array of Listings:
  crm_agent match --client-file client.json --listings-file listings.json`,
	RunE: runMatch,
}

var (
	matchAgentID      string
	matchClientID     string
	matchClientFile   string
	matchListingsFile string
	matchNotes        []string
)

func init() {
	matchCmd.Flags().StringVar(&matchAgentID, "agent-id", "", "Agent that owns the client (database mode)")
	matchCmd.Flags().StringVar(&matchClientID, "client-id", "", "Client to match (database mode)")
	matchCmd.Flags().StringVar(&matchClientFile, "client-file", "", "Path to a Client JSON file (file mode)")
	matchCmd.Flags().StringVar(&matchListingsFile, "listings-file", "", "Path to a JSON array of Listings (file mode)")
	matchCmd.Flags().StringArrayVar(&matchNotes, "note", nil, "Extra note about the client (repeatable)")

	matchCmd.MarkFlagsMutuallyExclusive("client-id", "client-file")
	matchCmd.MarkFlagsRequiredTogether("client-file", "listings-file")
	matchCmd.MarkFlagsRequiredTogether("client-id", "agent-id")
	matchCmd.MarkFlagsOneRequired("client-id", "client-file")

	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cliLogger(cfg)

	var (
		client   *types.Client
		listings []types.Listing
		notes    = append([]string{}, matchNotes...)
	)

	if matchClientID != "" {
		agentID, err := uuid.Parse(matchAgentID)
		if err != nil {
			return fmt.Errorf("invalid --agent-id: %w", err)
		}
		clientID, err := uuid.Parse(matchClientID)
		if err != nil {
			return fmt.Errorf("invalid --client-id: %w", err)
		}
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required with --client-id")
		}

		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()

		client, err = database.GetClient(ctx, agentID, clientID)
		if err != nil {
			return err
		}
		if client == nil {
			return fmt.Errorf("client %s not found for agent %s", clientID, agentID)
		}
		listings, err = database.ListListings(ctx, agentID, matching.CandidateQuery(client))
		if err != nil {
			return err
		}
		stored, err := database.ListNotes(ctx, agentID, clientID)
		if err != nil {
			return err
		}
		for _, n := range stored {
			notes = append(notes, n.Body)
		}
	} else {
		client = &types.Client{}
		if err := readJSONFile(matchClientFile, client); err != nil {
			return err
		}
		if err := readJSONFile(matchListingsFile, &listings); err != nil {
			return err
		}
		// File listings may come without ids; the model needs one per row.
		for i := range listings {
			if listings[i].ID == uuid.Nil {
				listings[i].ID = uuid.New()
			}
		}
	}
	client.NormalizeBudget()

	model, err := newModelClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer model.Close()

	resp := matching.NewMatcher(model, logger, nil).Match(ctx, client, listings, notes...)

	if cfg.Verbose {
		titles := make(map[string]string, len(listings))
		for _, l := range listings {
			titles[l.ID.String()] = l.Title
		}
		observability.NewPrinter(cmd.OutOrStdout()).PrintMatches(&resp, titles)
		return nil
	}
	return writeJSON(cmd.OutOrStdout(), resp)
}

func readJSONFile(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
