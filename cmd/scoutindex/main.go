// Command scoutindex runs the search index server and its offline
// companion operations (one-shot search, incremental add, bulk build).
package main

// @title ScoutIndex API
// @version 1.0
// @description Domain-specialized full-text search engine over athlete profiles
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scoutindex/scoutindex/config"
	"github.com/scoutindex/scoutindex/pkg/api"
	"github.com/scoutindex/scoutindex/pkg/api/handlers"
	"github.com/scoutindex/scoutindex/pkg/engine"
	"github.com/scoutindex/scoutindex/pkg/logger"
	"github.com/scoutindex/scoutindex/pkg/metrics"
	"github.com/scoutindex/scoutindex/pkg/telemetry/tracing"
	"github.com/scoutindex/scoutindex/pkg/version"
)

const (
	exitOK          = 0
	exitInvalidJSON = 1
	exitIOError     = 2
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitInvalidJSON)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "search":
		runSearch(os.Args[2:])
	case "add":
		runAdd(os.Args[2:])
	case "build":
		runBuild(os.Args[2:])
	case "-version", "--version", "version":
		printVersion()
	case "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(exitInvalidJSON)
	}
}

func loadEngine(fs *flag.FlagSet, args []string) (*config.Config, logger.Logger, *engine.Engine, string) {
	configPath := fs.String("config", "", "Path to configuration file")
	dataRoot := fs.String("data-root", "", "Override data root directory")
	logLevel := fs.String("log-level", "", "Override log level")
	fs.Parse(args)

	overrides := map[string]interface{}{}
	if *dataRoot != "" {
		overrides["data.root"] = *dataRoot
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}

	cfg, err := config.Load(*configPath, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %s\n", err)
		os.Exit(exitIOError)
	}

	log := logger.New(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	logger.SetGlobal(log)

	eng, err := engine.New(cfg, log)
	if err != nil {
		log.Error("failed to create engine", "error", err)
		os.Exit(exitIOError)
	}
	if err := eng.Load(); err != nil {
		log.Error("failed to load index", "error", err)
		os.Exit(exitIOError)
	}

	return cfg, log, eng, *configPath
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg, log, eng, configPath := loadEngine(fs, args)

	log.Info("starting scoutindex",
		"version", version.Version,
		"app", cfg.App.Name,
		"environment", cfg.App.Environment,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.App.Name, version.Version)
	if err != nil {
		log.Error("failed to initialize tracing", "error", err)
		os.Exit(exitIOError)
	}

	// Hot-reload the log level when an explicit config file changes on
	// disk; index tunables and the data root stay fixed for the process
	// lifetime.
	if configPath != "" {
		watcher, err := config.NewWatcher(configPath, config.NewLoader())
		if err != nil {
			log.Warn("config watcher unavailable", "error", err)
		} else {
			watcher.OnChange(func(updated *config.Config) {
				logger.SetLevel(logger.ParseLevel(updated.Log.Level))
				log.Info("reloaded configuration", "log_level", updated.Log.Level)
			})
			go func() {
				if err := watcher.Watch(ctx); err != nil && err != context.Canceled {
					log.Warn("config watcher stopped", "error", err)
				}
			}()
			defer watcher.Stop()
		}
	}

	metricsManager := metrics.NewManager(metrics.Config{
		Enabled:                    cfg.Metrics.Enabled,
		Port:                       cfg.Metrics.Port,
		Path:                       cfg.Metrics.Path,
		QueryDurationBuckets:       metrics.DefaultConfig().QueryDurationBuckets,
		AddDocumentDurationBuckets: metrics.DefaultConfig().AddDocumentDurationBuckets,
		HTTPDurationBuckets:        metrics.DefaultConfig().HTTPDurationBuckets,
	})
	eng.SetMetrics(metricsManager)

	apiHandlers := &api.Handlers{
		Search:         handlers.NewSearchHandler(eng),
		Document:       handlers.NewDocumentHandler(eng),
		Health:         handlers.NewHealthHandler(eng),
		MetricsHandler: metricsManager.Handler(),
		Metrics:        metricsManager,
	}

	httpServer := api.NewHTTPServer(cfg, log, apiHandlers)

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
		if err := httpServer.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		log.Info("received shutdown signal", "signal", sig)
	case err := <-serverErrChan:
		log.Error("HTTP server error", "error", err)
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("error shutting down HTTP server", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("error shutting down tracing", "error", err)
	}
	log.Info("scoutindex stopped gracefully")
}

func runSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	topK := fs.Int("top-k", 20, "Maximum number of results")
	_, _, eng, _ := loadEngine(fs, args)

	query := fs.Arg(0)
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: scoutindex search [flags] <query>")
		os.Exit(exitInvalidJSON)
	}

	resp, err := eng.Search(query, *topK)
	if err != nil {
		fmt.Fprintf(os.Stderr, "search failed: %s\n", err)
		os.Exit(exitIOError)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode response: %s\n", err)
		os.Exit(exitIOError)
	}
	fmt.Println(string(out))
	os.Exit(exitOK)
}

func runAdd(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	file := fs.String("file", "", "Path to a JSON document payload")
	_, _, eng, _ := loadEngine(fs, args)

	var raw []byte
	var err error
	if *file != "" {
		raw, err = os.ReadFile(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read %s: %s\n", *file, err)
			os.Exit(exitIOError)
		}
	} else {
		fmt.Fprintln(os.Stderr, "usage: scoutindex add -file <path.json>")
		os.Exit(exitInvalidJSON)
	}

	var doc engine.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		fmt.Fprintf(os.Stderr, "invalid JSON document: %s\n", err)
		os.Exit(exitInvalidJSON)
	}

	stats, err := eng.AddDocument(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "add-document failed: %s\n", err)
		os.Exit(exitIOError)
	}

	out, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Println(string(out))
	os.Exit(exitOK)
}

func runBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	file := fs.String("file", "", "Path to a JSON array of document payloads")
	_, log, eng, _ := loadEngine(fs, args)

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: scoutindex build -file <documents.json>")
		os.Exit(exitInvalidJSON)
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %s\n", *file, err)
		os.Exit(exitIOError)
	}

	var docs []engine.Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		fmt.Fprintf(os.Stderr, "invalid JSON document array: %s\n", err)
		os.Exit(exitInvalidJSON)
	}

	start := time.Now()
	results, err := eng.BuildFromDocuments(docs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bulk build failed after %d documents: %s\n", len(results), err)
		os.Exit(exitIOError)
	}

	log.Info("bulk build complete", "documents", len(results), "elapsed", time.Since(start))
	fmt.Printf("indexed %d documents in %s\n", len(results), time.Since(start))
	os.Exit(exitOK)
}

func printVersion() {
	fmt.Printf("scoutindex - domain-specialized search engine\n")
	fmt.Printf("Version:    %s\n", version.Version)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Printf("Git Commit: %s\n", version.GitCommit)
	fmt.Printf("Go Version: %s\n", version.GoVersion)
}

func printUsage() {
	fmt.Printf("scoutindex - domain-specialized full-text search engine over athlete profiles\n\n")
	fmt.Printf("Usage: scoutindex <command> [flags]\n\n")
	fmt.Printf("Commands:\n")
	fmt.Printf("  serve   Run the HTTP API server\n")
	fmt.Printf("  search  Run a one-shot query against the index\n")
	fmt.Printf("  add     Incrementally index one document from a JSON file\n")
	fmt.Printf("  build   Bulk-ingest a JSON array of documents\n")
	fmt.Printf("  version Print version information\n\n")
	fmt.Printf("Exit codes: 0 success, 1 invalid input, 2 I/O or index error\n")
}
