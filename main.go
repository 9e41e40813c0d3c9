package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xhzhu1024/docqa/config"
	"github.com/xhzhu1024/docqa/internal/docs"
	"github.com/xhzhu1024/docqa/internal/llm"
	"github.com/xhzhu1024/docqa/internal/prompt"
	"github.com/xhzhu1024/docqa/internal/retrieval"
	"github.com/xhzhu1024/docqa/internal/service"
	"github.com/xhzhu1024/docqa/internal/session"
	"github.com/xhzhu1024/docqa/internal/tools"
	handler "github.com/xhzhu1024/docqa/internal/transport/http"
	"github.com/xhzhu1024/docqa/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting QA backend...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Sessions: %s", cfg.SessionsDir)
	log.Printf("Index: %s", cfg.IndexPath)

	// Initialize session store
	sessions, err := session.NewFileStore(cfg.SessionsDir)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	log.Printf("Loaded %d existing sessions", sessions.Count())

	// Initialize local index
	var local retrieval.LocalRetriever
	var processor *docs.Processor
	index, err := retrieval.NewSQLiteIndex(cfg.IndexPath)
	if err != nil {
		log.Printf("WARN: local index unavailable, running without local retrieval: %v", err)
	} else {
		defer index.Close()
		local = index
		processor = docs.NewProcessor(index, cfg.ChunkSize, cfg.ChunkOverlap)
	}

	// Initialize web search
	var web retrieval.WebRetriever
	if cfg.EnableWebSearch && cfg.TavilyAPIKey != "" {
		web = retrieval.NewTavilyClient(cfg.TavilyAPIKey, cfg.SearchTimeout)
		log.Printf("Web search enabled")
	} else if cfg.EnableWebSearch {
		log.Printf("WARN: web search enabled but TAVILY_API_KEY is not set, disabling")
	}

	// Initialize completion client
	completer, err := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize completion client: %v", err)
	}

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Assemble tour-guide tools from the available capabilities
	var guideTools []tools.Tool
	if local != nil {
		guideTools = append(guideTools, tools.NewDestinationSearchTool(local, cfg.LocalK))
	}
	if web != nil {
		guideTools = append(guideTools, tools.NewWebSearchTool(web, cfg.WebMaxResults))
	}
	guideTools = append(guideTools, tools.NewTimezoneTool())
	if cfg.AmapAPIKey != "" {
		guideTools = append(guideTools, tools.NewGeocodeTool(cfg.AmapAPIKey, cfg.SearchTimeout))
	}

	// Initialize service
	prompts := prompt.NewAssembler(cfg.HistoryTokenBudget)
	svc := service.New(cfg, sessions, local, web, completer, policyEngine, prompts, guideTools)

	// Create HTTP server
	e := handler.NewServer(svc, processor)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("QA backend stopped")
}
