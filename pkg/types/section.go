// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Section is one topic category of the daily briefing. The catalog is a
// fixed closed set: sections are configuration, not data, and are never
// persisted per run.
type Section struct {
	// Key is the stable identifier used in tags and classifier output.
	Key string `json:"key" yaml:"key"`

	// Label is the human heading used in rendered reports.
	Label string `json:"label" yaml:"label"`

	// Guidance describes the section for the classification oracle.
	Guidance string `json:"guidance" yaml:"guidance"`
}

// CatchAllSection receives records whose source has no table mapping in
// the fallback classification path.
const CatchAllSection = "global"

// Sections is the fixed catalog, in rendering order.
var Sections = []Section{
	{
		Key:      "policy",
		Label:    "Macro Policy",
		Guidance: "government documents, central bank monetary policy, regulatory moves, fiscal and tax reform",
	},
	{
		Key:      "global",
		Label:    "International Affairs",
		Guidance: "geopolitics, trade relations, imports and exports, currency moves",
	},
	{
		Key:      "market",
		Label:    "Capital Markets",
		Guidance: "equities across major exchanges, commodities, bonds, crypto assets",
	},
	{
		Key:      "tech",
		Label:    "AI & Deep Tech",
		Guidance: "artificial intelligence, semiconductors, new materials, quantum computing",
	},
	{
		Key:      "consumer",
		Label:    "Consumer & Sentiment",
		Guidance: "consumption trends, social hot topics, shifts in public mood",
	},
	{
		Key:      "industry",
		Label:    "Industry Tracks",
		Guidance: "new energy, biopharma, real estate, automotive",
	},
	{
		Key:      "vc",
		Label:    "Venture Ecosystem",
		Guidance: "fundraising and M&A, IPOs, unicorns, investor activity",
	},
	{
		Key:      "economy",
		Label:    "Economic Data",
		Guidance: "GDP, PMI, CPI, employment, foreign exchange reserves",
	},
}

// SectionByKey looks up a catalog entry by its stable key.
func SectionByKey(key string) (Section, bool) {
	for _, s := range Sections {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

// SectionKeys returns the catalog keys in rendering order.
func SectionKeys() []string {
	keys := make([]string, len(Sections))
	for i, s := range Sections {
		keys[i] = s.Key
	}
	return keys
}
