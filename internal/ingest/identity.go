// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"strings"
)

// CanonicalURL normalizes an origin URL so that producers that format the
// same link differently still collapse to one identity: scheme and host
// are lowercased, the fragment is dropped, a trailing slash is trimmed,
// and query parameters are sorted by key.
func CanonicalURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty URL")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing URL %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("URL %q is not absolute", raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	if u.RawQuery != "" {
		u.RawQuery = u.Query().Encode() // Encode sorts keys
	}

	return u.String(), nil
}

// Identity derives the stable record identity from a canonical URL: the
// first 16 hex characters of its SHA-256 digest.
func Identity(canonicalURL string) string {
	sum := sha256.Sum256([]byte(canonicalURL))
	return fmt.Sprintf("%x", sum)[:16]
}
