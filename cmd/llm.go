package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/bandup/internal/llm"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Show the resolved generation provider configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := llm.ConfigFromEnv()
		if err != nil {
			return err
		}

		source := "environment"
		if cfg.Validate() != nil {
			discovered, ok := llm.DiscoverConfig()
			if !ok {
				fmt.Println("No generation provider configured.")
				fmt.Println("Set BANDUP_GEMINI_API_KEY (or GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY).")
				return nil
			}
			cfg = discovered
			source = "discovered key"
		}

		fmt.Printf("Provider:  %s (%s)\n", cfg.Provider, source)
		switch cfg.Provider {
		case "gemini":
			fmt.Printf("Model:     %s\n", cfg.Gemini.Model)
			fmt.Printf("Speech:    %s (voice %s)\n", cfg.Gemini.SpeechModel, cfg.Gemini.Voice)
			fmt.Printf("Image:     %s\n", cfg.Gemini.ImageModel)
		case "openai":
			fmt.Printf("Model:     %s\n", cfg.OpenAI.Model)
			if cfg.OpenAI.BaseURL != "" {
				fmt.Printf("Base URL:  %s\n", cfg.OpenAI.BaseURL)
			}
		case "anthropic":
			fmt.Printf("Model:     %s\n", cfg.Anthropic.Model)
		}
		fmt.Printf("Timeout:   %s\n", cfg.Timeout)
		fmt.Printf("Retries:   %d (wait %s, max %s)\n",
			cfg.Retry.MaxAttempts, cfg.Retry.InitialWait, cfg.Retry.MaxWait)

		if cfg.Provider != "gemini" && cfg.Gemini.APIKey != "" {
			fmt.Println("\nGemini key present: speech and visual aids enabled.")
		} else if cfg.Gemini.APIKey == "" {
			fmt.Println("\nNo Gemini key: speech and visual aids disabled.")
		}
		return nil
	},
}
