// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/brief-engine/internal/httputil"
	"github.com/pdiddy/brief-engine/pkg/types"
)

// ListingSite describes an official-site article listing scraped with a
// CSS selector. These sites have no feeds, so the producer walks anchor
// tags and filters by title length.
type ListingSite struct {
	// Platform is the source tag (e.g. "gov", "ndrc", "stats").
	Platform string

	// Section is the listing's section hint.
	Section string

	// URL is the listing page.
	URL string

	// Selector narrows the scan; empty means every anchor on the page.
	Selector string

	// Tags are default labels attached to every item.
	Tags []string

	// MaxItems caps how many candidates one fetch emits.
	MaxItems int
}

// builtinListings covers the policy and economic-data authorities.
var builtinListings = []ListingSite{
	{Platform: "gov", Section: "policy", URL: "https://www.gov.cn/zhengce/zuixin/", Selector: "ul.news_box li a, .news-list li a", Tags: []string{"state-council"}, MaxItems: 20},
	{Platform: "ndrc", Section: "policy", URL: "https://www.ndrc.gov.cn/xwdt/xwfb/", Tags: []string{"industrial-policy"}, MaxItems: 15},
	{Platform: "stats", Section: "economy", URL: "https://www.stats.gov.cn/sj/zxfb/", Tags: []string{"official-statistics"}, MaxItems: 15},
}

// listingDatePattern extracts a publication date printed next to a link.
var listingDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// ListingProducer ingests one official-site article listing.
type ListingProducer struct {
	site      ListingSite
	client    *http.Client
	userAgent string
}

var _ Producer = (*ListingProducer)(nil)

// NewListingProducer builds a producer for one listing site.
func NewListingProducer(site ListingSite, cfg types.HTTPConfig) *ListingProducer {
	return &ListingProducer{
		site:      site,
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
	}
}

// Name identifies the producer in sweep output.
func (p *ListingProducer) Name() string {
	return "site/" + p.site.Platform
}

// Produce fetches the listing page and extracts article links. Titles
// shorter than 8 or longer than 100 runes are navigation noise, not
// articles, and are skipped.
func (p *ListingProducer) Produce(ctx context.Context) ([]types.CandidateRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.site.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, p.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", p.site.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", p.site.URL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", p.site.URL, err)
	}

	base, err := url.Parse(p.site.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing listing URL: %w", err)
	}

	selector := p.site.Selector
	if selector == "" {
		selector = "a[href]"
	}
	maxItems := p.site.MaxItems
	if maxItems <= 0 {
		maxItems = 15
	}

	var candidates []types.CandidateRecord
	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Text())
		href, _ := sel.Attr("href")
		if len([]rune(title)) < 8 || len([]rune(title)) > 100 {
			return true
		}
		if href == "" || strings.Contains(href, "javascript") || strings.Contains(href, "#") {
			return true
		}

		link := absolutize(base, href)
		if link == "" {
			return true
		}

		cand := types.CandidateRecord{
			Source:      p.site.Platform,
			Title:       title,
			URL:         link,
			Tags:        append([]string(nil), p.site.Tags...),
			HintSection: p.site.Section,
		}
		// A date printed alongside the link is the authored time; absent
		// that, the ingestor falls back to the sweep time.
		if m := listingDatePattern.FindString(sel.Parent().Text()); m != "" {
			if t, err := time.Parse("2006-01-02", m); err == nil {
				cand.AuthoredAt = t
			}
		}

		candidates = append(candidates, cand)
		return len(candidates) < maxItems
	})

	return candidates, nil
}

// absolutize resolves a possibly relative href against the listing page.
// Non-HTTP links resolve to "".
func absolutize(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
