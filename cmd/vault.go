package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/bandup/internal/store"
)

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "List vocabulary vault entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		toggle, _ := cmd.Flags().GetString("toggle")

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

		if toggle != "" {
			updated := p.ToggleMastery(toggle)
			if err := s.Profiles().Save(ctx, &updated); err != nil {
				return fmt.Errorf("save profile: %w", err)
			}
			p = &updated
		}

		if len(p.VocabVault) == 0 {
			fmt.Println("Vault is empty. Complete a tutoring session to collect vocabulary.")
			return nil
		}

		fmt.Printf("%-3s  %-24s  %-10s  %-10s\n", "", "Word", "Skill", "Added")
		fmt.Println(strings.Repeat("─", 56))
		for _, item := range p.VocabVault {
			mark := "○"
			if item.Mastered {
				mark = "●"
			}
			fmt.Printf("%-3s  %-24s  %-10s  %-10s\n",
				mark, item.Word, item.SourceSkill, item.DateAdded.Format("2006-01-02"))
		}
		return nil
	},
}

func init() {
	vaultCmd.Flags().String("toggle", "", "Toggle mastered state for a word")
}
