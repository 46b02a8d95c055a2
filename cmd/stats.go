package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/bandup/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show study progress and token usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}

		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx := context.Background()

		p, err := s.Profiles().Load(ctx)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		if p == nil {
			fmt.Println("No profile yet. Run `bandup` to get started.")
			return nil
		}

		fmt.Printf("Learner:      %s\n", p.Name)
		fmt.Printf("Track:        %s\n", p.Track)
		fmt.Printf("Target band:  %.1f\n", p.TargetBand)
		if p.EstimatedBand != nil {
			fmt.Printf("Current band: %.1f\n", *p.EstimatedBand)
		} else {
			fmt.Println("Current band: not assessed")
		}

		fmt.Println()
		fmt.Println("Skill Progress")
		fmt.Println(strings.Repeat("─", 60))
		fmt.Printf("%-12s  %9s  %12s  %11s\n", "Skill", "Sessions", "Vocab words", "Grammar pts")
		fmt.Println(strings.Repeat("─", 60))
		for _, sp := range p.Progress {
			fmt.Printf("%-12s  %9d  %12d  %11d\n",
				sp.Skill, sp.SessionsCompleted, len(sp.LearnedVocab), len(sp.LearnedGrammar))
		}

		mastered := 0
		for _, v := range p.VocabVault {
			if v.Mastered {
				mastered++
			}
		}
		fmt.Printf("\nVocabulary vault: %d words (%d mastered)\n", len(p.VocabVault), mastered)
		fmt.Printf("Activity log:     %d sessions\n", len(p.ActivityLog))

		usage, err := s.Requests().Stats(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if usage.Requests > 0 {
			fmt.Println()
			fmt.Println("Generation Usage")
			fmt.Println(strings.Repeat("─", 60))
			fmt.Printf("Requests:  %d (%d failed)\n", usage.Requests, usage.Failures)
			fmt.Printf("Tokens:    %d in / %d out\n", usage.InputTokens, usage.OutputTokens)
		}

		return nil
	},
}
