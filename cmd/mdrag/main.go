// Package main provides the mdrag CLI: index a markdown documentation tree
// and answer questions against it.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bull/mdrag/internal/chat"
	"github.com/bull/mdrag/internal/config"
	"github.com/bull/mdrag/internal/docs"
	"github.com/bull/mdrag/internal/index"
	"github.com/bull/mdrag/internal/indexer"
	"github.com/bull/mdrag/internal/llm"
	"github.com/bull/mdrag/internal/markdown"
	"github.com/bull/mdrag/internal/rag"
	"github.com/bull/mdrag/internal/retriever"
)

var rootCmd = &cobra.Command{
	Use:   "mdrag",
	Short: "Retrieval-augmented search over a markdown documentation tree",
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector index from DOCS_DIRECTORY and persist it",
	Long: `Walks DOCS_DIRECTORY, splits every markdown file into header-aware
chunks, embeds them through the configured embedding model, and writes the
index atomically under DATABASE_DIRECTORY.

Environment variables:
  DOCS_DIRECTORY      documentation root (default ./docs)
  DATABASE_DIRECTORY  persisted index location (default ./db)
  EMBEDDING_MODEL     embedding model identifier (default nomic-embed-text)
  LLM_BASE_URL        OpenAI-compatible endpoint (default http://localhost:11434/v1)`,
	RunE: runIndex,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Answer questions interactively against the index",
	Long: `Starts the interactive query loop. With DATABASE_CREATION=true the
index is rebuilt from DOCS_DIRECTORY first; otherwise the persisted index is
loaded from DATABASE_DIRECTORY. With RAG_LLM=true answers come from LLM_MODEL
grounded in the retrieved passages; otherwise the ranked passages themselves
are printed.`,
	RunE: runChat,
}

var verbose bool

func init() {
	indexCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print per-document outlines while indexing")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(chatCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	client, err := newLLMClient(cfg)
	if err != nil {
		return err
	}

	ix, result, err := buildIndex(ctx, cfg, client)
	if err != nil {
		return err
	}

	if verbose {
		printOutlines(cfg.DocsDirectory)
	}

	fmt.Printf("Persisting index to %s...\n", cfg.IndexPath())
	if err := ix.Persist(cfg.IndexPath()); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}

	fmt.Println()
	fmt.Println("Index complete!")
	fmt.Printf("  Files:    %d\n", result.IndexedFiles)
	fmt.Printf("  Chunks:   %d\n", result.TotalChunks)
	fmt.Printf("  Duration: %s\n", result.Duration.Round(time.Millisecond))
	if len(result.Skipped) > 0 {
		fmt.Println()
		fmt.Println("Skipped files:")
		for _, skip := range result.Skipped {
			fmt.Printf("  - %s: %s\n", skip.Path, skip.Reason)
		}
	}
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	client, err := newLLMClient(cfg)
	if err != nil {
		return err
	}

	var ix *index.Index
	if cfg.DatabaseCreation {
		fmt.Println("Rebuilding index...")
		built, _, err := buildIndex(ctx, cfg, client)
		if err != nil {
			return err
		}
		if err := built.Persist(cfg.IndexPath()); err != nil {
			return fmt.Errorf("persist index: %w", err)
		}
		ix = built
	} else {
		loaded, err := index.Load(cfg.IndexPath())
		if err != nil {
			return fmt.Errorf("load index (set DATABASE_CREATION=true to rebuild): %w", err)
		}
		ix = loaded
	}
	fmt.Printf("Index ready: %d chunks, model %s\n", ix.Len(), ix.Model())

	engine := retriever.NewEngine(ix, client, cfg.TopK, cfg.ScoreThreshold)

	var answerer chat.Answerer
	if cfg.RAGLLM {
		answerer = rag.NewAnswerer(client)
	}

	loop := chat.NewLoop(engine, answerer, os.Stdin, os.Stdout)
	return loop.Run(ctx)
}

func newLLMClient(cfg *config.Config) (*llm.Client, error) {
	return llm.NewClient(llm.Config{
		BaseURL:        cfg.LLMBaseURL,
		APIKey:         cfg.LLMAPIKey,
		EmbeddingModel: cfg.EmbeddingModel,
		ChatModel:      cfg.LLMModel,
		BatchSize:      cfg.EmbedBatchSize,
		Timeout:        cfg.RequestTimeout,
	})
}

func buildIndex(ctx context.Context, cfg *config.Config, client *llm.Client) (*index.Index, *indexer.Result, error) {
	splitter := markdown.NewSplitter(cfg.ChunkMaxChars, cfg.ChunkOverlapChars)
	pipeline := indexer.NewPipeline(splitter, client, cfg.EmbeddingModel, slog.Default())

	fmt.Printf("Indexing documents from %s...\n", cfg.DocsDirectory)
	return pipeline.BuildIndex(ctx, cfg.DocsDirectory)
}

// printOutlines lists each document's heading structure, the same hierarchy
// the splitter uses for chunk paths.
func printOutlines(docsDir string) {
	documents, _, err := docs.Discover(docsDir)
	if err != nil {
		return
	}
	for _, doc := range documents {
		fmt.Printf("%s\n", doc.Path)
		items, err := markdown.Outline(doc.Raw)
		if err != nil {
			continue
		}
		printOutlineItems(items, 1)
	}
}

func printOutlineItems(items []markdown.OutlineItem, depth int) {
	for _, item := range items {
		for i := 0; i < depth; i++ {
			fmt.Print("  ")
		}
		fmt.Println(item.Title)
		printOutlineItems(item.Items, depth+1)
	}
}
