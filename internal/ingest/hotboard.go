// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/brief-engine/internal/httputil"
	"github.com/pdiddy/brief-engine/pkg/types"
)

// Trending boards reflect public mood and feed the consumer section. They
// carry a lot of pure-entertainment noise, so board producers filter on a
// keyword allowlist before emitting candidates.

// boardKeepKeywords marks a trending topic as worth keeping. A topic that
// matches none of these is dropped, not stored.
var boardKeepKeywords = []string{
	"economy", "stocks", "equities", "housing", "central bank", "rate",
	"AI", "artificial intelligence", "tech", "semiconductor", "chip",
	"jobs", "layoff", "hiring", "consumer", "price",
	"policy", "regulat", "government",
	"startup", "funding", "IPO", "listing",
	"energy", "EV", "battery",
}

func keepTopic(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range boardKeepKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// TrendingBoardProducer ingests a realtime trending-search endpoint
// (weibo-style JSON: data.realtime[].word).
type TrendingBoardProducer struct {
	endpoint  string
	searchURL string
	client    *http.Client
	userAgent string
}

var _ Producer = (*TrendingBoardProducer)(nil)

// NewTrendingBoardProducer builds the realtime trending producer.
func NewTrendingBoardProducer(cfg types.HTTPConfig) *TrendingBoardProducer {
	return &TrendingBoardProducer{
		endpoint:  "https://weibo.com/ajax/side/hotSearch",
		searchURL: "https://s.weibo.com/weibo?q=",
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
	}
}

// Name identifies the producer in sweep output.
func (p *TrendingBoardProducer) Name() string { return "board/weibo" }

// Produce fetches the trending list and keeps finance, tech, and policy
// topics. Topic search pages serve as the origin URL, so a topic that
// trends again on a later day is deduplicated by identity.
func (p *TrendingBoardProducer) Produce(ctx context.Context) ([]types.CandidateRecord, error) {
	var payload struct {
		Data struct {
			Realtime []struct {
				Word       string `json:"word"`
				Num        int64  `json:"num"`
				WordScheme string `json:"word_scheme"`
			} `json:"realtime"`
		} `json:"data"`
	}
	if err := p.fetchJSON(ctx, p.endpoint, &payload); err != nil {
		return nil, err
	}

	var candidates []types.CandidateRecord
	for _, entry := range payload.Data.Realtime {
		title := strings.TrimSpace(entry.Word)
		if title == "" || !keepTopic(title) {
			continue
		}
		scheme := entry.WordScheme
		if scheme == "" {
			scheme = "#" + title + "#"
		}
		candidates = append(candidates, types.CandidateRecord{
			Source:      "weibo",
			Title:       "[trending] " + title,
			URL:         p.searchURL + url.QueryEscape(scheme),
			Excerpt:     fmt.Sprintf("heat: %d, topic: %s", entry.Num, scheme),
			Tags:        []string{"trending", "sentiment"},
			HintSection: "consumer",
		})
		if len(candidates) >= 50 {
			break
		}
	}
	return candidates, nil
}

func (p *TrendingBoardProducer) fetchJSON(ctx context.Context, endpoint string, out any) error {
	return fetchJSON(ctx, p.client, p.userAgent, endpoint, out)
}

// HotBoardProducer ingests a ranked hot-topic board
// (baidu-style JSON: data.cards[0].content[].word).
type HotBoardProducer struct {
	endpoint  string
	client    *http.Client
	userAgent string
}

var _ Producer = (*HotBoardProducer)(nil)

// NewHotBoardProducer builds the ranked hot-board producer.
func NewHotBoardProducer(cfg types.HTTPConfig) *HotBoardProducer {
	return &HotBoardProducer{
		endpoint:  "https://top.baidu.com/api/board?platform=wise&tab=realtime",
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
	}
}

// Name identifies the producer in sweep output.
func (p *HotBoardProducer) Name() string { return "board/baidu" }

// Produce fetches the board and emits the top entries as candidates.
func (p *HotBoardProducer) Produce(ctx context.Context) ([]types.CandidateRecord, error) {
	var payload struct {
		Data struct {
			Cards []struct {
				Content []struct {
					Word     string `json:"word"`
					URL      string `json:"url"`
					Desc     string `json:"desc"`
					HotScore int64  `json:"hotScore"`
				} `json:"content"`
			} `json:"cards"`
		} `json:"data"`
	}
	if err := fetchJSON(ctx, p.client, p.userAgent, p.endpoint, &payload); err != nil {
		return nil, err
	}
	if len(payload.Data.Cards) == 0 {
		return nil, nil
	}

	var candidates []types.CandidateRecord
	for _, entry := range payload.Data.Cards[0].Content {
		title := strings.TrimSpace(entry.Word)
		if title == "" {
			continue
		}
		link := entry.URL
		if link == "" {
			link = "https://www.baidu.com/s?wd=" + url.QueryEscape(title)
		}
		excerpt := fmt.Sprintf("heat: %d", entry.HotScore)
		if entry.Desc != "" {
			excerpt = entry.Desc + " " + excerpt
		}
		candidates = append(candidates, types.CandidateRecord{
			Source:      "baidu",
			Title:       "[hot] " + title,
			URL:         link,
			Excerpt:     excerpt,
			Tags:        []string{"trending", "sentiment"},
			HintSection: "consumer",
		})
		if len(candidates) >= 30 {
			break
		}
	}
	return candidates, nil
}

func fetchJSON(ctx context.Context, client *http.Client, userAgent, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %s: unexpected status %s", endpoint, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", endpoint, err)
	}
	return nil
}
