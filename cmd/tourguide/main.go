// Command tourguide runs the narrated website demo engine: it launches
// controllable browsers, drives AI-narrated tours through them, and
// serves the session operations over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrhq/tourguide/pkg/api"
	"github.com/entrhq/tourguide/pkg/browser"
	"github.com/entrhq/tourguide/pkg/config"
	"github.com/entrhq/tourguide/pkg/demo"
	"github.com/entrhq/tourguide/pkg/llm"
	"github.com/entrhq/tourguide/pkg/llm/openai"
	"github.com/entrhq/tourguide/pkg/logging"
	"github.com/entrhq/tourguide/pkg/narrator"
)

const version = "0.1.0"

// idleSweepInterval is how often abandoned sessions are checked for.
const idleSweepInterval = time.Minute

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.tourguide/config.yaml)")
	addr := flag.String("addr", "", "listen address (overrides config)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tourguide v%s\n", version)
		return
	}

	if err := run(*configPath, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logger, err := logging.NewLogger("tourguide")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	provider := buildProvider(cfg, logger)

	runtime := browser.NewRuntime(browser.Options{
		Headless:       cfg.Browser.Headless,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		Timeout:        cfg.Browser.TimeoutMs,
	})
	if err := runtime.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize browser runtime: %w", err)
	}
	defer runtime.Shutdown()

	orch := demo.NewOrchestrator(runtime, narrator.New(provider, logger), provider, logger)
	defer orch.CloseAll()

	sweepDone := make(chan struct{})
	go idleSweep(orch, sweepDone)
	defer close(sweepDone)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.NewServer(orch, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		fmt.Printf("tourguide v%s listening on %s (logs: %s)\n", version, cfg.Server.Addr, logger.LogPath())
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Infof("received %v, shutting down", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("server shutdown: %v", err)
	}
	return nil
}

// buildProvider creates the completion provider, or returns nil when no
// API key is configured. A nil provider is a supported mode: narration
// and command interpretation use deterministic fallbacks.
func buildProvider(cfg config.Config, logger *logging.Logger) llm.Provider {
	if cfg.LLM.APIKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
		logger.Infof("no API key configured, narration will use deterministic fallbacks")
		return nil
	}

	opts := []openai.ProviderOption{}
	if cfg.LLM.Model != "" {
		opts = append(opts, openai.WithModel(cfg.LLM.Model))
	}
	if cfg.LLM.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.LLM.BaseURL))
	}

	provider, err := openai.NewProvider(cfg.LLM.APIKey, opts...)
	if err != nil {
		logger.Warnf("failed to create provider, continuing with fallbacks: %v", err)
		return nil
	}

	logger.Infof("using model %s", provider.GetModel())
	return provider
}

func idleSweep(orch *demo.Orchestrator, done <-chan struct{}) {
	ticker := time.NewTicker(idleSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			orch.CleanupIdleSessions()
		case <-done:
			return
		}
	}
}
