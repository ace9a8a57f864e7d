package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/veritrail/veritrail/internal/model"
	"github.com/veritrail/veritrail/internal/pipeline"
)

var (
	watchMirror   string
	watchAccount  string
	watchInterval time.Duration
	watchGateways []string
	watchMode     string
	watchStore    string
	watchDBPath   string
	watchOracle   string
	watchModel    string
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the ledger index and process anchored claims continuously",
	Long: `Watch polls the ledger mirror index for new message-submission
transactions carrying a CID: memo tag, fetches each content payload from
the configured gateways, structures it into a claim, and prepares an
evidence-retrieval plan.

Example:
  veritrail watch --account 0.0.12345
  veritrail watch --account 0.0.12345 --interval 30s --store sqlite --db claims.db
  veritrail watch --account 0.0.12345 --oracle openai`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchMirror, "mirror", "", "mirror index base URL (default from config)")
	watchCmd.Flags().StringVar(&watchAccount, "account", "", "ledger account to watch (required)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "poll interval (default from config)")
	watchCmd.Flags().StringSliceVar(&watchGateways, "gateway", nil, "content gateway base URL (repeatable, overrides config)")
	watchCmd.Flags().StringVar(&watchMode, "mode", "", "fetch mode: strict or best-effort")
	watchCmd.Flags().StringVar(&watchStore, "store", "", "store backend: memory or sqlite")
	watchCmd.Flags().StringVar(&watchDBPath, "db", "", "sqlite database path")
	watchCmd.Flags().StringVar(&watchOracle, "oracle", "", "semantic oracle provider: openai or ollama")
	watchCmd.Flags().StringVar(&watchModel, "oracle-model", "", "semantic oracle model name")

	_ = watchCmd.MarkFlagRequired("account")
}

// loadConfig builds the effective configuration: defaults, then config file
// and environment via viper, then flag overrides applied by callers.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	// API keys come from the environment, never the config file.
	if cfg.Oracle.APIKey == "" {
		cfg.Oracle.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, nil
}

func applyWatchFlags(cfg *model.Config) {
	if watchMirror != "" {
		cfg.Ledger.MirrorBaseURL = watchMirror
	}
	if watchAccount != "" {
		cfg.Ledger.AccountID = watchAccount
	}
	if watchInterval > 0 {
		cfg.Ledger.PollInterval = watchInterval
	}
	if len(watchGateways) > 0 {
		cfg.Gateway.URLs = watchGateways
	}
	if watchMode != "" {
		cfg.Gateway.Mode = model.FetchMode(watchMode)
	}
	if watchStore != "" {
		cfg.Store.Backend = watchStore
	}
	if watchDBPath != "" {
		cfg.Store.Path = watchDBPath
	}
	if watchOracle != "" {
		cfg.Oracle.Provider = watchOracle
	}
	if watchModel != "" {
		cfg.Oracle.Model = watchModel
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyWatchFlags(cfg)

	if cfg.Ledger.AccountID == "" {
		return fmt.Errorf("ledger account is required")
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.Start(ctx); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Watching account %s every %v (Ctrl-C to stop)\n",
		cfg.Ledger.AccountID, cfg.Ledger.PollInterval)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Fprintln(os.Stderr, "Stopping...")
	p.Stop()

	stats, err := p.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("read stats: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Processed %d claims (avg confidence %.2f)\n",
		stats.TotalClaims, stats.AverageConfidence)

	return nil
}
