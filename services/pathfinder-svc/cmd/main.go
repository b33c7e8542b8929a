// Package main is the entry point for pathfinder-svc.
//
// pathfinder-svc loads a road map from a dataset directory, runs an
// instrumented Dijkstra search between two cities and prints the route.
// The recorded step trace can be replayed to stdout frame by frame and
// exported as JSON, CSV, Excel, Markdown or PDF.
//
// # Configuration
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Command line flags
//  2. Environment variables (prefix: ROUTEVIZ_)
//  3. Config file (-config, CONFIG_PATH, config.yaml, /etc/routeviz/config.yaml)
//  4. Default values
//
// Key configuration options (environment variable format):
//
//	ROUTEVIZ_SEARCH_STRATEGY      - Vertex selection: linear, heap (default: linear)
//	ROUTEVIZ_SEARCH_TRACE         - Step trace: full, none (default: full)
//	ROUTEVIZ_SEARCH_MAX_VERTICES  - Graph size limit, 0 disables (default: 5000)
//	ROUTEVIZ_DATASET_DIR          - Directory with distances.csv (default: data)
//	ROUTEVIZ_REPLAY_STEP_DELAY    - Delay between replay frames (default: 300ms)
//	ROUTEVIZ_EXPORT_FORMAT        - json, csv, xlsx, markdown, pdf
//	ROUTEVIZ_CACHE_ENABLED        - Cache search results (default: false)
//	ROUTEVIZ_CACHE_DRIVER         - memory, redis (default: memory)
//	ROUTEVIZ_METRICS_ENABLED      - Serve Prometheus metrics (default: false)
//	ROUTEVIZ_TRACING_ENABLED      - Export OpenTelemetry spans (default: false)
//
// # Usage
//
//	pathfinder-svc -dataset ./data -from Москва -to Казань
//	pathfinder-svc -from A -to D -replay
//	pathfinder-svc -from A -to D -export xlsx -out route.xlsx
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"routeviz/pkg/cache"
	"routeviz/pkg/config"
	"routeviz/pkg/logger"
	"routeviz/pkg/metrics"
	"routeviz/pkg/telemetry"
	"routeviz/services/pathfinder-svc/internal/engine"
	"routeviz/services/pathfinder-svc/internal/export"
	"routeviz/services/pathfinder-svc/internal/format"
	"routeviz/services/pathfinder-svc/internal/loader"
	"routeviz/services/pathfinder-svc/internal/replay"
	"routeviz/services/pathfinder-svc/internal/service"
)

const serviceName = "pathfinder-svc"

type flags struct {
	configPath string
	datasetDir string
	from       string
	to         string
	exportFmt  string
	output     string
	replay     bool
	strategy   string
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "path to config.yaml")
	flag.StringVar(&f.datasetDir, "dataset", "", "dataset directory (overrides dataset.dir)")
	flag.StringVar(&f.from, "from", "", "source city")
	flag.StringVar(&f.to, "to", "", "target city")
	flag.StringVar(&f.exportFmt, "export", "", "export format: json, csv, xlsx, markdown, pdf")
	flag.StringVar(&f.output, "out", "", "export file path (default: route.<ext>)")
	flag.BoolVar(&f.replay, "replay", false, "replay the search trace to stdout")
	flag.StringVar(&f.strategy, "strategy", "", "vertex selection: linear, heap")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	cfg, err := config.LoadWithServiceDefaults(serviceName, config.WithConfigFile(f.configPath))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	applyFlags(cfg, f)

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, f, os.Stdout); err != nil {
		logger.Error("pathfinder failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config, f flags) {
	if f.datasetDir != "" {
		cfg.Dataset.Dir = f.datasetDir
	}
	if f.exportFmt != "" {
		cfg.Export.Format = f.exportFmt
	}
	if f.output != "" {
		cfg.Export.Output = f.output
	}
	if f.strategy != "" {
		cfg.Search.Strategy = f.strategy
	}
}

func run(ctx context.Context, cfg *config.Config, f flags, stdout io.Writer) error {
	tp, err := telemetry.Init(ctx, telemetry.FromConfig(cfg.App, cfg.Tracing))
	if err != nil {
		logger.Warn("failed to init telemetry", "error", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("failed to shutdown telemetry", "error", err)
			}
		}()
	}

	m := metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)

	g, ctx := errgroup.WithContext(ctx)
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		prometheus.MustRegister(metrics.NewRuntimeCollector(cfg.Metrics.Namespace, cfg.Metrics.Subsystem))
		metricsServer = metrics.NewMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path)
		g.Go(func() error {
			logger.Info("metrics server started", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	searchCache := newSearchCache(cfg)

	g.Go(func() error {
		defer shutdownMetrics(metricsServer, cfg.App.ShutdownTimeout)
		if searchCache != nil {
			defer searchCache.Close()
		}
		return pathfind(ctx, cfg, f, searchCache, stdout)
	})

	return g.Wait()
}

// closableSearchCache кэш поиска вместе с хранилищем, которое нужно закрыть
type closableSearchCache struct {
	*service.SearchCache
	backend cache.Cache
}

func (c *closableSearchCache) Close() {
	if err := c.backend.Close(); err != nil {
		logger.Warn("failed to close cache", "error", err)
	}
}

func newSearchCache(cfg *config.Config) *closableSearchCache {
	if !cfg.Cache.Enabled {
		return nil
	}

	backend, err := cache.New(cache.FromConfig(&cfg.Cache))
	if err != nil {
		logger.Warn("failed to create cache, continuing without cache", "error", err)
		return nil
	}

	logger.Info("search cache initialized", "driver", cfg.Cache.Driver, "ttl", cfg.Cache.DefaultTTL)
	return &closableSearchCache{
		SearchCache: service.NewSearchCache(backend, cfg.Cache.KeyPrefix, cfg.Cache.DefaultTTL),
		backend:     backend,
	}
}

func shutdownMetrics(srv *http.Server, timeout time.Duration) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("failed to shutdown metrics server", "error", err)
	}
}

func pathfind(ctx context.Context, cfg *config.Config, f flags, sc *closableSearchCache, stdout io.Writer) error {
	dataset, err := loader.LoadDataset(ctx, cfg.Dataset.Dir, loader.Options{
		DistancesFile: cfg.Dataset.DistancesFile,
		PositionsFile: cfg.Dataset.PositionsFile,
	})
	if err != nil {
		return err
	}

	graphs := service.NewGraphService(dataset.Graph)
	stats := graphs.Stats()
	logger.Info("graph ready", "cities", stats.VertexCount, "arcs", stats.ArcCount, "components", stats.ComponentCount)

	if f.from == "" || f.to == "" {
		fmt.Fprintf(stdout, "Города (%d): %s\n", len(graphs.ListCities()), strings.Join(graphs.ListCities(), ", "))
		return nil
	}

	searchCfg, err := searchConfig(cfg)
	if err != nil {
		return err
	}

	var resultCache *service.SearchCache
	if sc != nil {
		resultCache = sc.SearchCache
	}
	paths := service.NewPathService(graphs.Graph(), searchCfg, resultCache)

	result, ok, err := paths.FindShortestPath(ctx, f.from, f.to)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(stdout, "Путь не найден.")
		return nil
	}

	fmt.Fprintln(stdout, format.Summary(graphs.Graph(), result.Path, result.Total, result.ElapsedMs))

	if f.replay {
		if err := replayTrace(ctx, result.Result, f.from, f.to, cfg.Replay.StepDelay, stdout); err != nil {
			return err
		}
	}

	if cfg.Export.Format != "" {
		return exportResult(ctx, cfg, graphs, result, stdout)
	}
	return nil
}

func searchConfig(cfg *config.Config) (service.SearchConfig, error) {
	strategy, err := engine.ParseStrategy(cfg.Search.Strategy)
	if err != nil {
		return service.SearchConfig{}, err
	}
	trace, err := engine.ParseTraceMode(cfg.Search.Trace)
	if err != nil {
		return service.SearchConfig{}, err
	}
	return service.SearchConfig{
		Strategy:    strategy,
		Trace:       trace,
		MaxVertices: cfg.Search.MaxVertices,
	}, nil
}

func replayTrace(ctx context.Context, result *engine.Result, from, to string, delay time.Duration, stdout io.Writer) error {
	player := replay.NewPlayer(result, from, to)
	if player.Len() == 0 {
		fmt.Fprintln(stdout, "\nТрасса не записана.")
		return nil
	}

	fmt.Fprintln(stdout)
	for frame := range player.Play(ctx, delay) {
		fmt.Fprintln(stdout, describeFrame(frame))
	}
	return ctx.Err()
}

func describeFrame(frame replay.Frame) string {
	if frame.Final {
		return fmt.Sprintf("[%d/%d] готово", frame.Index, frame.Total)
	}

	step := frame.Step
	if step.IsTerminal() {
		return fmt.Sprintf("[%d/%d] %s: цель достигнута", frame.Index+1, frame.Total, step.Current)
	}
	if step.Improved() {
		return fmt.Sprintf("[%d/%d] %s%s%s: %s", frame.Index+1, frame.Total,
			step.Current, format.Arrow, step.Neighbor, format.FormatDistance(step.NewDistance))
	}
	return fmt.Sprintf("[%d/%d] %s%s%s: без улучшения", frame.Index+1, frame.Total,
		step.Current, format.Arrow, step.Neighbor)
}

func exportResult(ctx context.Context, cfg *config.Config, graphs *service.GraphService, result *service.SearchResult, stdout io.Writer) error {
	exporter, err := export.New(cfg.Export.Format)
	if err != nil {
		return err
	}

	data, err := export.Render(ctx, exporter, export.NewReport(graphs.Graph(), result, cfg.Export.Author))
	if err != nil {
		return err
	}

	out := cfg.Export.Output
	if out == "" {
		out = "route." + exporter.Format().Extension()
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	fmt.Fprintf(stdout, "\nЭкспорт: %s (%d байт)\n", out, len(data))
	return nil
}
