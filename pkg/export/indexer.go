package export

import (
	"fmt"

	"github.com/cloud-bulldozer/go-commons/indexers"
	"github.com/rs/zerolog/log"

	"dnsperf-analyzer.io/pkg/benchmark"
)

// MetricName tags every document shipped by Indexer
const MetricName = "dnsperf-analysis"

// Indexer ships results to Elasticsearch, OpenSearch or a local directory
type Indexer struct {
	indexer indexers.Indexer
	kind    indexers.IndexerType
}

func NewIndexer(cfg indexers.IndexerConfig) (*Indexer, error) {
	indexer, err := indexers.NewIndexer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s indexer: %w", cfg.Type, err)
	}
	return &Indexer{indexer: *indexer, kind: cfg.Type}, nil
}

func (i *Indexer) Index(results []benchmark.Result) error {
	docs := make([]interface{}, 0, len(results))
	for _, res := range results {
		docs = append(docs, res)
	}
	msg, err := i.indexer.Index(docs, indexers.IndexingOpts{MetricName: MetricName})
	if err != nil {
		return fmt.Errorf("failed to index %d result(s): %w", len(docs), err)
	}
	log.Info().Msgf("Indexed %d result(s) with %s indexer: %s", len(docs), i.kind, msg)
	return nil
}
