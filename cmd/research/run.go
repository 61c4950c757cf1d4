package main

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/genkit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/antflydb/deepresearch/internal/collaborators/classify"
	"github.com/antflydb/deepresearch/internal/collaborators/fetch"
	"github.com/antflydb/deepresearch/internal/collaborators/lastmodified"
	llmadapter "github.com/antflydb/deepresearch/internal/collaborators/llm"
	"github.com/antflydb/deepresearch/internal/collaborators/sandbox"
	"github.com/antflydb/deepresearch/internal/collaborators/search"
	"github.com/antflydb/deepresearch/internal/config"
	"github.com/antflydb/deepresearch/internal/debugsink"
	"github.com/antflydb/deepresearch/internal/executors"
	"github.com/antflydb/deepresearch/internal/logging"
	"github.com/antflydb/deepresearch/internal/orchestrator"
)

var (
	configPath string
	debugDir   string
)

var runCmd = &cobra.Command{
	Use:   "run [question]",
	Short: "Run a research session against a question",
	Long: `Run a research session.

Examples:
  research run "what is the capital of France?"
  research run --config research.yaml "how has inflation affected tech hiring in 2025?"`,
	Args: cobra.ExactArgs(1),
	RunE: runResearch,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	runCmd.Flags().StringVar(&debugDir, "debug-dir", "", "optional directory to write per-step debug snapshots")
}

func runResearch(cmd *cobra.Command, args []string) error {
	question := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		cfg = loaded
	}

	logger := logging.NewLogger(&cfg.Logging)
	defer logger.Sync()

	g := genkit.Init(ctx)
	llm := llmadapter.New(g, cfg.Endpoints.LLMModel)

	// Embed, Rerank, and CherryPick need a concrete embeddings/reranking/
	// chunking backend plugin (e.g. a genkit embedder) configured for the
	// deployment; left nil here so dedup/rerank_boost/cherry-pick degrade
	// gracefully per §4.1/§4.3/§7 rather than fail the whole session.
	execs := executors.Collaborators{
		LLM:          llm,
		Search:       search.New(search.Config{Endpoint: cfg.Endpoints.SearchEndpoint, APIKey: cfg.Endpoints.SearchAPIKey}),
		Fetch:        fetch.New(nil, nil, nil, logger),
		ClassifySpam: classify.New(classify.Config{Endpoint: cfg.Endpoints.ClassifyEndpoint, APIKey: cfg.Endpoints.ClassifyAPIKey}),
		LastModified: lastmodified.New(nil),
		Sandbox:      sandbox.New(llm),
	}

	orch := orchestrator.New(execs)

	opts := orchestrator.Options{
		TokenBudget:        cfg.TokenBudget,
		MaxBadAttempts:     cfg.MaxBadAttempts,
		NoDirectAnswer:     cfg.NoDirectAnswer,
		BoostHostnames:     cfg.Hostnames.Boost,
		BadHostnames:       cfg.Hostnames.Bad,
		OnlyHostnames:      cfg.Hostnames.Only,
		RankCoefficients:   cfg.Ranking,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}
	if debugDir != "" {
		sink, err := debugsink.NewFileSink(debugDir)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		opts.DebugSink = sink
	}

	logger.Info("starting research session", zap.String("question", question))

	result, err := orch.Research(ctx, question, opts)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	fmt.Println(result.FinalAnswer)
	for _, ref := range result.References {
		fmt.Printf("- %s (%s)\n", ref.URL, ref.ExactQuote)
	}
	return nil
}
