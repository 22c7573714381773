// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"github.com/pdiddy/brief-engine/pkg/types"
)

// DefaultProducers assembles the full producer set: the feed catalog
// (built-in or overridden by cfg.SourcesFile), the two trending boards,
// and the official-site listings.
func DefaultProducers(cfg types.IngestConfig) ([]Producer, error) {
	feeds, err := LoadFeedSources(cfg.SourcesFile)
	if err != nil {
		return nil, err
	}

	var producers []Producer
	for _, source := range feeds {
		producers = append(producers, NewFeedProducer(source, cfg.HTTPConfig))
	}
	producers = append(producers,
		NewTrendingBoardProducer(cfg.HTTPConfig),
		NewHotBoardProducer(cfg.HTTPConfig),
	)
	for _, site := range builtinListings {
		producers = append(producers, NewListingProducer(site, cfg.HTTPConfig))
	}
	return producers, nil
}
