package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/veritrail/veritrail/internal/model"
	"github.com/veritrail/veritrail/internal/store"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate statistics over processed claims",
	Long: `Stats reads the configured claim store and prints counts by claim
type, average confidence, and the evidence-plan priority distribution.
Requires a persistent store backend (sqlite).`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Store.Backend != "sqlite" {
		return fmt.Errorf("stats requires the sqlite store backend (configured: %q)", cfg.Store.Backend)
	}

	s, err := store.Open(cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = s.Close() }()

	stats, err := s.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("read stats: %w", err)
	}

	fmt.Printf("Total claims:       %d\n", stats.TotalClaims)
	fmt.Printf("Average confidence: %.3f\n", stats.AverageConfidence)

	fmt.Println("\nClaims by type:")
	types := make([]string, 0, len(stats.CountsByClaimType))
	for ct := range stats.CountsByClaimType {
		types = append(types, string(ct))
	}
	sort.Strings(types)
	for _, ct := range types {
		fmt.Printf("  %-16s %d\n", ct, stats.CountsByClaimType[model.ClaimType(ct)])
	}

	fmt.Println("\nPriority distribution:")
	for priority := 1; priority <= 5; priority++ {
		if n, ok := stats.PriorityDistribution[priority]; ok {
			fmt.Printf("  P%d: %d\n", priority, n)
		}
	}

	return nil
}
