package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hostling/guestgate/internal/bruteforce"
	"github.com/hostling/guestgate/internal/config"
	"github.com/hostling/guestgate/internal/counter"
	"github.com/hostling/guestgate/internal/docstore"
	"github.com/hostling/guestgate/internal/fetchguard"
	"github.com/hostling/guestgate/internal/llm"
	"github.com/hostling/guestgate/internal/pipeline"
	"github.com/hostling/guestgate/internal/promptgate"
	"github.com/hostling/guestgate/internal/ratelimit"
	"github.com/hostling/guestgate/internal/server"
)

var serveConfig string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to config YAML")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the concierge API server",
	Long:  "Runs the HTTP API with the full security pipeline in front of guest chat, identity verification, and calendar sync.\nSupports hot-reload of the config file.",
	RunE:  runServe,
}

// buildCounters picks the shared counter tier: Redis when configured,
// otherwise the document store. Either way the authoritative state is
// shared across instances; the volatile map is never used for the
// enforced tiers.
func buildCounters(cfg *config.Config, store docstore.Store) (counter.Store, error) {
	if cfg.RedisURL != "" {
		return counter.NewRedis(cfg.RedisURL)
	}
	return counter.NewPersistent(store), nil
}

func buildGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	switch cfg.LLM.Provider {
	case "bedrock":
		return llm.NewBedrock(ctx, llm.BedrockConfig{
			ModelID: cfg.LLM.Model,
			Region:  cfg.LLM.Region,
		})
	default:
		return llm.NewOpenAI(llm.OpenAIConfig{
			APIURL: cfg.LLM.APIURL,
			APIKey: cfg.APIKey(),
			Model:  cfg.LLM.Model,
		}), nil
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfig)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := docstore.OpenSQLite(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	counters, err := buildCounters(cfg, store)
	if err != nil {
		return fmt.Errorf("failed to create counter store: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	generator, err := buildGenerator(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	limiter := ratelimit.New(cfg.Endpoints, counters)
	pipe := &pipeline.Pipeline{
		Limiter:     limiter,
		Gate:        promptgate.New(limiter),
		Guard:       bruteforce.New(store, cfg.BruteForce),
		Fetcher:     fetchguard.New(cfg.Fetch),
		Generator:   generator,
		Temperature: cfg.LLM.Temp,
	}

	srv := server.New(cfg, serveConfig, pipe, store)

	reloader, err := server.NewReloader(srv, []string{serveConfig})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: hot-reload disabled: %v\n", err)
	}
	if reloader != nil {
		go reloader.Run(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	return srv.Serve()
}
