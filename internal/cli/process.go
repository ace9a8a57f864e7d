package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/veritrail/veritrail/internal/model"
	"github.com/veritrail/veritrail/internal/pipeline"
)

var (
	processTimeout  time.Duration
	processMode     string
	processGateways []string
	processOracle   string
	processJSONOut  string
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process <content-id>...",
	Short: "Fetch and structure one or more content identifiers directly",
	Long: `Process runs the pipeline once for the given content identifiers,
bypassing ledger discovery. Useful for inspecting how a payload would be
structured before anchoring it.

Example:
  veritrail process QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG
  veritrail process QmYwAP... --mode best-effort --json out.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().DurationVar(&processTimeout, "timeout", 2*time.Minute, "overall processing timeout")
	processCmd.Flags().StringVar(&processMode, "mode", "", "fetch mode: strict or best-effort")
	processCmd.Flags().StringSliceVar(&processGateways, "gateway", nil, "content gateway base URL (repeatable, overrides config)")
	processCmd.Flags().StringVar(&processOracle, "oracle", "", "semantic oracle provider: openai or ollama")
	processCmd.Flags().StringVar(&processJSONOut, "json", "", "write results to this JSON file instead of stdout")
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if processMode != "" {
		cfg.Gateway.Mode = model.FetchMode(processMode)
	}
	if len(processGateways) > 0 {
		cfg.Gateway.URLs = processGateways
	}
	if processOracle != "" {
		cfg.Oracle.Provider = processOracle
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	// Direct processing has no anchoring transaction; ledger metadata
	// stays empty in the resulting plan's proof.
	records := make([]model.ContentRecord, len(args))
	for i, cid := range args {
		records[i] = model.ContentRecord{ContentID: cid}
	}

	results, err := p.ProcessBatch(ctx, records)
	if err != nil {
		return fmt.Errorf("process: %w", err)
	}

	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	if processJSONOut != "" {
		if err := os.WriteFile(processJSONOut, out, 0644); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote %d results to %s\n", len(results), processJSONOut)
		}
		return nil
	}

	fmt.Println(string(out))
	return nil
}
