package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cloud-bulldozer/go-commons/indexers"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"dnsperf-analyzer.io/pkg/capture"
	"dnsperf-analyzer.io/pkg/report"
)

// Config holds every setting of an analysis run. Flags override values loaded from file
type Config struct {
	OutputDir   string                 `yaml:"outputDir" json:"outputDir"`
	NoPlot      bool                   `yaml:"noPlot" json:"noPlot"`
	NoJSON      bool                   `yaml:"noJSON" json:"noJSON"`
	LogLevel    string                 `yaml:"logLevel" json:"logLevel"`
	Aggregate   bool                   `yaml:"aggregate" json:"aggregate"`
	Concurrency int                    `yaml:"concurrency" json:"concurrency"`
	Assessment  report.Thresholds      `yaml:"assessment" json:"assessment"`
	Indexer     indexers.IndexerConfig `yaml:"indexer" json:"indexer"`
	Cluster     Cluster                `yaml:"cluster" json:"cluster"`
}

// Cluster configures reading captures from dnsperf pods instead of files
type Cluster struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	Kubeconfig string `yaml:"kubeconfig" json:"kubeconfig"`
	Namespace  string `yaml:"namespace" json:"namespace"`
	Selector   string `yaml:"selector" json:"selector"`
	Container  string `yaml:"container" json:"container"`
	File       string `yaml:"file" json:"file"`
	TailLines  int64  `yaml:"tailLines" json:"tailLines"`
}

func (c Cluster) PodOptions() capture.PodOptions {
	return capture.PodOptions{
		Namespace: c.Namespace,
		Selector:  c.Selector,
		Container: c.Container,
		File:      c.File,
		TailLines: c.TailLines,
	}
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		OutputDir:  "analyzer-results",
		LogLevel:   zerolog.InfoLevel.String(),
		Assessment: report.DefaultThresholds,
		Cluster: Cluster{
			Namespace: capture.DefaultNamespace,
			Selector:  capture.DefaultSelector,
			Container: capture.DefaultContainer,
		},
	}
}

// Load reads a yaml or json file over the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	ext := filepath.Ext(path)
	if len(ext) > 0 {
		ext = ext[1:]
	}
	return LoadBytes(data, ext)
}

func LoadBytes(data []byte, format string) (*Config, error) {
	cfg := Default()
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse json config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q, use yaml, yml or json", format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("outputDir cannot be empty")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid logLevel: %w", err)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0, got %d", c.Concurrency)
	}
	if err := c.Assessment.Validate(); err != nil {
		return fmt.Errorf("invalid assessment thresholds: %w", err)
	}
	switch c.Indexer.Type {
	case "":
	case indexers.ElasticIndexer, indexers.OpenSearchIndexer:
		if len(c.Indexer.Servers) == 0 {
			return fmt.Errorf("indexer %s requires at least one server", c.Indexer.Type)
		}
		if c.Indexer.Index == "" {
			return fmt.Errorf("indexer %s requires an index", c.Indexer.Type)
		}
	case indexers.LocalIndexer:
		if c.Indexer.MetricsDirectory == "" {
			c.Indexer.MetricsDirectory = c.OutputDir
		}
	default:
		return fmt.Errorf("unknown indexer type %q", c.Indexer.Type)
	}
	if c.Cluster.Enabled {
		if c.Cluster.Namespace == "" || c.Cluster.Selector == "" {
			return fmt.Errorf("cluster captures require a namespace and a selector")
		}
		if c.Cluster.TailLines < 0 {
			return fmt.Errorf("tailLines must be >= 0, got %d", c.Cluster.TailLines)
		}
	}
	return nil
}
