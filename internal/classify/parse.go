// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/brief-engine/pkg/types"
)

// parseAssignment extracts the JSON object from an oracle response and
// validates it against the section catalog and the submitted records.
// Unknown section keys and unknown identities are dropped silently; a
// response with no valid assignments at all is an error so the caller can
// switch to the fallback.
func parseAssignment(response string, records []types.Record) (Assignment, error) {
	payload := extractJSON(response)
	if payload == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var raw map[string][]string
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	known := make(map[string]bool, len(records))
	for _, r := range records {
		known[r.Identity] = true
	}

	assignment := make(Assignment)
	for key, ids := range raw {
		if _, ok := types.SectionByKey(key); !ok {
			continue
		}
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			id = strings.TrimSpace(id)
			if !known[id] || seen[id] {
				continue
			}
			seen[id] = true
			assignment[key] = append(assignment[key], id)
		}
	}

	if assignment.Total() == 0 {
		return nil, fmt.Errorf("response assigned no known records")
	}
	return assignment, nil
}

// extractJSON strips markdown fences and prose around the outermost JSON
// object. Oracles are asked for bare JSON but often wrap it anyway.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
