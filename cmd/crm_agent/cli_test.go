package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/canpog/realestate-app-sub000/internal/config"
	"github.com/canpog/realestate-app-sub000/internal/llm"
)

// execute runs the root command in-process with fresh flag state and returns
// what the command wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("VERBOSE", "false")
	t.Setenv("DATABASE_URL", "")

	resetFlags(rootCmd)
	matchNotes = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Value.Type() != "stringArray" {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// withModel replaces the model client factory for the duration of the test.
func withModel(t *testing.T, mock *llm.MockClient) *int {
	t.Helper()
	built := new(int)
	prev := newModelClient
	newModelClient = func(context.Context, config.Config, *slog.Logger) (llm.Client, error) {
		*built++
		return mock, nil
	}
	t.Cleanup(func() { newModelClient = prev })
	return built
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
