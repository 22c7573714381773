// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/brief-engine/pkg/types"
)

// FeedSource describes one RSS/Atom feed and how its items are tagged.
type FeedSource struct {
	// Platform is the source tag stored on every record from this feed.
	Platform string `yaml:"platform"`

	// Section is the feed's default section hint.
	Section string `yaml:"section"`

	// Name is a human label used in sweep output.
	Name string `yaml:"name"`

	// URL is the feed address.
	URL string `yaml:"url"`

	// Tags are default labels attached to every item.
	Tags []string `yaml:"tags,omitempty"`
}

// builtinFeeds is the default feed catalog. Feeds are the preferred
// source class: stable, no rendering, no scraping countermeasures.
var builtinFeeds = []FeedSource{
	{Platform: "xinhua", Section: "policy", Name: "Xinhua - Politics", URL: "https://feeds.bbci.co.uk/zhongwen/simp/china/rss.xml", Tags: []string{"politics"}},
	{Platform: "sina", Section: "market", Name: "Sina Finance - Macro", URL: "https://rss.sina.com.cn/news/global/finance.xml", Tags: []string{"finance"}},
	{Platform: "36kr", Section: "tech", Name: "36Kr - Tech", URL: "https://36kr.com/feed", Tags: []string{"startups"}},
	{Platform: "hackernews", Section: "tech", Name: "Hacker News Top", URL: "https://hnrss.org/frontpage", Tags: []string{"ai"}},
	{Platform: "caixin", Section: "economy", Name: "Caixin - Economy", URL: "https://www.caixin.com/rss/home.xml", Tags: []string{"economic-data"}},
	{Platform: "stcn", Section: "market", Name: "Securities Times", URL: "https://www.stcn.com/rss.xml", Tags: []string{"equities"}},
	{Platform: "reuters", Section: "global", Name: "Reuters - World", URL: "https://cn.reuters.com/rssFeed/CNTopNews", Tags: []string{"geopolitics"}},
}

// sourcesFile mirrors the YAML override format:
//
//	feeds:
//	  - platform: ...
//	    section: ...
//	    url: ...
type sourcesFile struct {
	Feeds []FeedSource `yaml:"feeds"`
}

// LoadFeedSources returns the feed catalog, reading the override file when
// path is non-empty.
func LoadFeedSources(path string) ([]FeedSource, error) {
	if path == "" {
		return builtinFeeds, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sources file: %w", err)
	}
	var sf sourcesFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing sources file: %w", err)
	}
	if len(sf.Feeds) == 0 {
		return nil, fmt.Errorf("sources file %s lists no feeds", path)
	}
	return sf.Feeds, nil
}

// maxExcerpt bounds the stored body snippet.
const maxExcerpt = 500

// FeedProducer ingests one RSS/Atom feed.
type FeedProducer struct {
	source FeedSource
	parser *gofeed.Parser
}

var _ Producer = (*FeedProducer)(nil)

// NewFeedProducer builds a producer for one feed source.
func NewFeedProducer(source FeedSource, cfg types.HTTPConfig) *FeedProducer {
	parser := gofeed.NewParser()
	if cfg.UserAgent != "" {
		parser.UserAgent = cfg.UserAgent
	}
	return &FeedProducer{source: source, parser: parser}
}

// Name identifies the producer in sweep output.
func (p *FeedProducer) Name() string {
	return "feed/" + p.source.Platform
}

// Produce fetches and parses the feed, mapping items to candidates. The
// feed's section is carried as a hint, never as a final classification.
func (p *FeedProducer) Produce(ctx context.Context) ([]types.CandidateRecord, error) {
	feed, err := p.parser.ParseURLWithContext(p.source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", p.source.URL, err)
	}

	var candidates []types.CandidateRecord
	for _, item := range feed.Items {
		if item == nil || item.Title == "" || item.Link == "" {
			continue
		}

		cand := types.CandidateRecord{
			Source:      p.source.Platform,
			Title:       item.Title,
			URL:         item.Link,
			Excerpt:     truncate(item.Description, maxExcerpt),
			Tags:        append([]string(nil), p.source.Tags...),
			HintSection: p.source.Section,
		}
		if item.PublishedParsed != nil {
			cand.AuthoredAt = *item.PublishedParsed
		}
		if len(item.Authors) > 0 && item.Authors[0] != nil {
			cand.Author = item.Authors[0].Name
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

// truncate caps s at max bytes, backing off to a rune boundary so a
// multibyte character is never split.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
