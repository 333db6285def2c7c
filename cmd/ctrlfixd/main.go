// Command ctrlfixd runs the repair-intake HTTP service.
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

	"ctrlfix/pkg/config"
	"ctrlfix/pkg/flow"
	"ctrlfix/pkg/httpapi"
	"ctrlfix/pkg/intent"
	"ctrlfix/pkg/llm"
	"ctrlfix/pkg/logx"
	"ctrlfix/pkg/metrics"
	"ctrlfix/pkg/pricing"
	"ctrlfix/pkg/responder"
	"ctrlfix/pkg/session"
	"ctrlfix/pkg/ticket"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ctrlfixd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "config.yaml", "path to the YAML config file")
		listenAddr = flag.String("listen", "", "listen address (overrides config)")
	)
	flag.Parse()

	if err := config.Load(*configPath); err != nil {
		return err
	}
	cfg := config.GetConfig()
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
		if err := config.Set(cfg); err != nil {
			return err
		}
	}
	logger := logx.NewLogger("ctrlfixd")

	store, err := ticket.OpenSQLite(cfg.Store.SQLitePath)
	if err != nil {
		return err
	}
	defer store.Close()

	sinks := []ticket.Sink{store}
	if cfg.Store.TicketsFile != "" {
		sinks = append(sinks, ticket.NewFile(cfg.Store.TicketsFile))
	}

	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return err
	}
	if client == nil {
		logger.Info("LLM provider offline, running on deterministic heuristics")
	} else {
		logger.Info("LLM provider %s, model %s", cfg.LLM.Provider, client.ModelName())
	}

	var oracle pricing.Oracle
	if cfg.Pricing.SerpAPIKey != "" {
		oracle = pricing.NewResilient(pricing.NewSerpClient(
			cfg.Pricing.SerpAPIKey,
			cfg.Pricing.USDToHKD,
			time.Duration(cfg.Pricing.TimeoutSec)*time.Second,
		))
	} else {
		logger.Info("No SerpAPI key, using the static price table")
		oracle = pricing.NewStatic()
	}

	registry := session.NewRegistry()
	orch := flow.New(registry,
		buildClassifier(client),
		buildResponder(client, cfg.LLM.HistoryTokenBudget),
		oracle,
		ticket.NewMultiSink(sinks...),
	)

	api := httpapi.New(orch, registry, store)
	if cfg.Server.PrometheusURL != "" {
		stats, err := metrics.NewQueryService(cfg.Server.PrometheusURL)
		if err != nil {
			return err
		}
		api = api.WithStats(stats)
	}
	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildClassifier(client llm.Client) intent.Classifier {
	keyword := intent.NewKeywordClassifier()
	if client == nil {
		return keyword
	}
	return intent.NewResilient(intent.NewLLMClassifier(client), keyword)
}

func buildResponder(client llm.Client, historyBudget int) responder.Responder {
	heuristic := responder.NewHeuristic()
	if client == nil {
		return heuristic
	}
	return responder.NewResilient(responder.NewLLM(client, historyBudget), heuristic)
}
