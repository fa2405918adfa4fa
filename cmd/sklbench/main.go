// Command sklbench drives a harness.Runner against a list.Locked
// instance and reports throughput, outcomes, and any divergence
// against a list.Fat oracle.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/skl-go/skiplist/harness"
	"github.com/skl-go/skiplist/lib/list"
	"github.com/skl-go/skiplist/metrics"
	"github.com/skl-go/skiplist/xlog"
)

func main() {
	if _, err := maxprocs.Set(); err != nil {
		fmt.Fprintf(os.Stderr, "sklbench: maxprocs.Set: %v\n", err)
	}

	var (
		maxLevel    = flag.Int("max-level", 16, "maximum skip list tower height")
		probability = flag.Float64("probability", 0.5, "level-sampling probability")
		workers     = flag.Int("workers", 8, "number of concurrent harness workers")
		keys        = flag.Int("keys", 100_000, "size of the key range exercised")
		workload    = flag.String("workload", "mixed", "insert|remove|mixed|oracle")
		mutexKind   = flag.String("mutex", "go", "go|spin: per-node mutex implementation")
		metricsAddr = flag.String("metrics-addr", "", "Prometheus /metrics listen address; empty uses a stdout exporter")
		logLevel    = flag.String("log-level", "info", "debug|info|warn|error")
	)
	flag.Parse()

	logger := xlog.NewXLogger(xlog.WithXLoggerLevel(xlog.ParseLogLevel(*logLevel)))
	defer logger.Sync()

	shutdown, err := installExporter(*metricsAddr)
	if err != nil {
		logger.Error(err, "failed to install metrics exporter")
		os.Exit(1)
	}
	defer shutdown(context.Background())

	recorder, err := metrics.NewRecorder(otel.Meter("github.com/skl-go/skiplist"))
	if err != nil {
		logger.Error(err, "failed to build recorder")
		os.Exit(1)
	}

	if *maxLevel <= 0 {
		logger.Error(list.ErrInvalidMaxLevel, "invalid -max-level", zap.Int("max-level", *maxLevel))
		os.Exit(1)
	}
	if *probability <= 0 || *probability >= 1 {
		logger.Error(list.ErrInvalidProbability, "invalid -probability", zap.Float64("probability", *probability))
		os.Exit(1)
	}

	opts := []list.Option[int, int]{
		list.WithMaxLevel[int, int](int32(*maxLevel)),
		list.WithProbability[int, int](*probability),
		list.WithRecorder[int, int](recorder),
	}
	if *mutexKind == "go" {
		opts = append(opts, list.WithNativeMutex[int, int]())
	}
	skl := list.NewLocked[int, int](opts...)

	r, err := harness.NewRunner(skl, *workers)
	if err != nil {
		logger.Error(err, "failed to build harness runner")
		os.Exit(1)
	}
	defer r.Release()

	logger.Info("sklbench starting",
		zap.Int("max-level", *maxLevel),
		zap.Float64("probability", *probability),
		zap.Int("workers", *workers),
		zap.Int("keys", *keys),
		zap.String("workload", *workload),
		zap.String("mutex", *mutexKind),
	)

	start := time.Now()
	var runErr error
	switch *workload {
	case "insert":
		runErr = r.DisjointInsert(0, *keys)
	case "remove":
		runErr = r.DisjointRemove(0, *keys)
	case "mixed":
		runErr = r.MixedWorkload(0, *keys, 1, 1, 1, (*keys)/(*workers))
	case "oracle":
		runErr = runOracleWorkload(skl, *keys)
	default:
		logger.Error(nil, "unknown workload", zap.String("workload", *workload))
		os.Exit(1)
	}
	elapsed := time.Since(start)

	if runErr != nil {
		logger.ErrorStack(runErr, "workload finished with errors")
	}
	logger.Info("sklbench finished",
		zap.Duration("elapsed", elapsed),
		zap.Int("final-length", skl.Len()),
	)
	fmt.Println(skl.Dump())
}

func runOracleWorkload(primary list.Map[int, int], keys int) error {
	fat := list.NewFat[int, int]()
	oracle := harness.NewOracle(primary, fat)
	ctx := context.Background()
	for k := 0; k < keys; k++ {
		if err := oracle.Insert(ctx, k, k); err != nil {
			return err
		}
	}
	return nil
}

func installExporter(metricsAddr string) (metrics.ShutdownFunc, error) {
	if metricsAddr == "" {
		return metrics.NewConsoleExporter(5*time.Second, 2*time.Second)
	}

	shutdown, err := metrics.NewPrometheusExporter()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		_ = server.ListenAndServe()
	}()

	return func(ctx context.Context) error {
		_ = server.Shutdown(ctx)
		return shutdown(ctx)
	}, nil
}
