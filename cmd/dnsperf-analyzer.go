package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/cloud-bulldozer/go-commons/indexers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	uid "github.com/satori/go.uuid"
	"github.com/spf13/pflag"

	"dnsperf-analyzer.io/pkg/benchmark"
	"dnsperf-analyzer.io/pkg/capture"
	"dnsperf-analyzer.io/pkg/charts"
	"dnsperf-analyzer.io/pkg/config"
	"dnsperf-analyzer.io/pkg/export"
	"dnsperf-analyzer.io/pkg/report"
)

const appName = "dnsperf-analyzer"

func main() {
	configFile := pflag.String("config", "", "YAML or JSON configuration file")
	outputDir := pflag.String("output-dir", "analyzer-results", "Output directory for charts and JSON reports")
	noPlot := pflag.Bool("no-plot", false, "Skip generating charts")
	noJSON := pflag.Bool("no-json", false, "Skip writing the JSON report")
	logLevel := pflag.String("log-level", "info", "Log level: trace, debug, info, warn or error")
	aggregate := pflag.Bool("aggregate", false, "Also report all captures merged into one result")
	concurrency := pflag.Int("concurrency", 0, "Captures read in parallel, 0 means all at once")
	uuid := pflag.String("uuid", uid.NewV4().String(), "Analysis uuid")
	esServers := pflag.StringSlice("es-server", nil, "Elasticsearch/OpenSearch endpoint")
	esIndex := pflag.String("es-index", appName, "Elasticsearch/OpenSearch index")
	indexerType := pflag.String("indexer", "", "Indexer type: elastic, opensearch or local")
	fromCluster := pflag.Bool("from-cluster", false, "Read captures from dnsperf pods instead of files")
	kubeconfig := pflag.String("kubeconfig", "", "Path to kubeconfig, defaults to $KUBECONFIG or ~/.kube/config")
	namespace := pflag.String("namespace", capture.DefaultNamespace, "Namespace of the dnsperf pods")
	selector := pflag.String("selector", capture.DefaultSelector, "Label selector of the dnsperf pods")
	container := pflag.String("container", capture.DefaultContainer, "Container running dnsperf")
	podFile := pflag.String("pod-file", "", "Capture file inside the container, container logs are used when empty")
	tailLines := pflag.Int64("tail-lines", 0, "Only read the last N log lines of each pod, 0 reads everything")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Analyze DNS performance test results\n\nUsage: %s [flags] <dnsperf output file>...\n\n", appName)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			log.Fatal().Msg(err.Error())
		}
	}
	changed := pflag.CommandLine.Changed
	if changed("output-dir") {
		cfg.OutputDir = *outputDir
	}
	if changed("no-plot") {
		cfg.NoPlot = *noPlot
	}
	if changed("no-json") {
		cfg.NoJSON = *noJSON
	}
	if changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if changed("aggregate") {
		cfg.Aggregate = *aggregate
	}
	if changed("concurrency") {
		cfg.Concurrency = *concurrency
	}
	if len(*esServers) > 0 {
		cfg.Indexer.Type = indexers.ElasticIndexer
		cfg.Indexer.Servers = *esServers
		cfg.Indexer.Index = *esIndex
	}
	if changed("indexer") {
		cfg.Indexer.Type = indexers.IndexerType(*indexerType)
	}
	if changed("from-cluster") {
		cfg.Cluster.Enabled = *fromCluster
	}
	for name, flag := range map[string]struct{ dst, val *string }{
		"kubeconfig": {&cfg.Cluster.Kubeconfig, kubeconfig},
		"namespace":  {&cfg.Cluster.Namespace, namespace},
		"selector":   {&cfg.Cluster.Selector, selector},
		"container":  {&cfg.Cluster.Container, container},
		"pod-file":   {&cfg.Cluster.File, podFile},
	} {
		if changed(name) {
			*flag.dst = *flag.val
		}
	}
	if changed("tail-lines") {
		cfg.Cluster.TailLines = *tailLines
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Msg(err.Error())
	}
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, cfg, *uuid, pflag.Args()); err != nil {
		log.Error().Msg(err.Error())
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, uuid string, paths []string) error {
	sources, err := captureSources(ctx, cfg, paths)
	if err != nil {
		return err
	}
	analyzer := benchmark.NewAnalyzer(uuid, cfg.Concurrency)
	results, err := analyzer.Run(ctx, sources)
	if err != nil {
		return err
	}
	if cfg.Aggregate && len(results) > 1 {
		results = append(results, analyzer.Aggregate(results))
	}
	if !cfg.NoPlot || !cfg.NoJSON {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	stamp := time.Now().Format("20060102_150405")
	for i, res := range results {
		if err := report.Print(os.Stdout, res, cfg.Assessment); err != nil {
			return err
		}
		suffix := stamp
		switch {
		case res.Source == benchmark.AggregateSource:
			suffix += "_" + benchmark.AggregateSource
		case len(results) > 1:
			suffix += fmt.Sprintf("_%d", i+1)
		}
		if !cfg.NoPlot {
			files, err := charts.Render(cfg.OutputDir, "dns_analysis_"+suffix, res.Metrics)
			if err != nil {
				return err
			}
			fmt.Printf("\n📊 Visualization saved: %s\n", files[0])
		}
		if !cfg.NoJSON {
			path, err := export.WriteJSON(cfg.OutputDir, "dns_metrics_"+suffix, res)
			if err != nil {
				return err
			}
			fmt.Printf("📄 JSON report saved: %s\n", path)
		}
	}
	if cfg.Indexer.Type != "" {
		indexer, err := export.NewIndexer(cfg.Indexer)
		if err != nil {
			return err
		}
		if err := indexer.Index(results); err != nil {
			return err
		}
	}
	fmt.Println("\n✅ Analysis complete!")
	return nil
}

func captureSources(ctx context.Context, cfg *config.Config, paths []string) ([]capture.Source, error) {
	if !cfg.Cluster.Enabled {
		if len(paths) == 0 {
			pflag.Usage()
			return nil, fmt.Errorf("at least one dnsperf output file is required")
		}
		return capture.Files(paths...), nil
	}
	cluster, err := capture.NewCluster(cfg.Cluster.Kubeconfig)
	if err != nil {
		return nil, err
	}
	return cluster.Sources(ctx, cfg.Cluster.PodOptions())
}
