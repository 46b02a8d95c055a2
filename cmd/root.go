package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/bandup/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "bandup",
	Short: "AI IELTS tutor in your terminal",
	Long:  "BandUp — AI-native terminal app for IELTS preparation across reading, listening, writing, and speaking.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	// A .env next to the binary is a convenience for local API keys;
	// missing file is fine.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides BANDUP_DB env var)")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(vaultCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then BANDUP_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
