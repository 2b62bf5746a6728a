package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/heechang-soft/hcman-ai/internal/api"
	"github.com/heechang-soft/hcman-ai/internal/config"
	"github.com/heechang-soft/hcman-ai/internal/core"
	"github.com/heechang-soft/hcman-ai/internal/ingest"
	"github.com/heechang-soft/hcman-ai/internal/llm"
	"github.com/heechang-soft/hcman-ai/internal/store"
	"github.com/heechang-soft/hcman-ai/internal/vectorstore"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	ingestFlag := flag.Bool("ingest", false, "Ingest the schema guide into the vector index and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	llmClient, err := llm.New(ctx, llm.Options{
		Provider:       cfg.LLMProvider,
		APIKey:         cfg.GoogleAPIKey,
		Model:          cfg.GeminiModel,
		EmbeddingModel: cfg.EmbeddingModel,
	})
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}
	defer llmClient.Close()

	index, err := vectorstore.New(cfg.QdrantHost, cfg.QdrantPort, cfg.QdrantCollection)
	if err != nil {
		log.Fatalf("Failed to connect to Qdrant: %v", err)
	}
	defer index.Close()

	ingestor := ingest.NewIngestor(llmClient, index, cfg.EmbeddingVectorSize)

	if *ingestFlag {
		log.Printf("Starting schema guide ingestion from %s...", cfg.SchemaGuidePath)
		count, err := ingestor.IngestFromFile(ctx, cfg.SchemaGuidePath)
		if err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
		log.Printf("Ingestion complete. Ingested %d chunks. Exiting.", count)
		return
	}

	dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	retriever := core.NewSchemaRetriever(llmClient, index)
	classifier := core.NewQueryClassifier(llmClient)
	generator := core.NewSqlGenerator(llmClient)
	reports := core.NewReportBuilder(llmClient)
	orchestrator := core.NewOrchestrator(retriever, classifier, generator, reports, dbStore, cfg.TopKResults)

	apiHandler := api.NewAPIHandler(orchestrator, dbStore, ingestor, cfg.JWTSecret)
	router := api.NewRouter(apiHandler)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // report generation can take a while
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting gracefully")
}
