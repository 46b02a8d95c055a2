package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/bandup/internal/app"
	"github.com/abhisek/bandup/internal/audio"
	"github.com/abhisek/bandup/internal/llm"
	"github.com/abhisek/bandup/internal/modules"
	"github.com/abhisek/bandup/internal/placement"
	"github.com/abhisek/bandup/internal/store"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	cfg, err := llm.ConfigFromEnv()
	if err != nil {
		return err
	}
	if cfg.Validate() != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			fmt.Fprintln(os.Stderr, "No generation provider configured.")
			fmt.Fprintln(os.Stderr, "Set BANDUP_GEMINI_API_KEY (or GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY) and try again.")
			return fmt.Errorf("llm provider not configured")
		}
		cfg = discovered
	}

	provider, err := llm.NewProvider(ctx, cfg, st.Requests())
	if err != nil {
		return fmt.Errorf("build llm provider: %w", err)
	}

	opts := app.Options{
		Provider:  provider,
		Media:     llm.NewMedia(ctx, cfg),
		Profiles:  st.Profiles(),
		Placement: placement.NewService(provider),
		Catalog:   modules.NewCatalog(provider),
		Player:    audio.NewPlayer(),
	}
	if audio.Available() {
		opts.Recorder = audio.NewMicRecorder()
	}

	return app.Run(opts)
}
