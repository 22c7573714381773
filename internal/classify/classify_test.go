// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/pdiddy/brief-engine/pkg/types"
)

type stubOracle struct {
	response string
	err      error
	lastUser string
}

func (o *stubOracle) Complete(_ context.Context, _, user string) (string, error) {
	o.lastUser = user
	return o.response, o.err
}

func testRecords() []types.Record {
	return []types.Record{
		{Identity: "aaa111", Source: "gov", Title: "State Council issues new fiscal guidance"},
		{Identity: "bbb222", Source: "hackernews", Title: "New open-weight model tops benchmarks"},
		{Identity: "ccc333", Source: "unknown-wire", Title: "Port congestion eases in Rotterdam"},
	}
}

func TestClassifyParsesOracleResponse(t *testing.T) {
	oracle := &stubOracle{response: `{"policy": ["aaa111"], "tech": ["bbb222"], "global": ["ccc333"]}`}

	got := Classify(context.Background(), oracle, testRecords(), &bytes.Buffer{})
	if got.Total() != 3 {
		t.Fatalf("Total() = %d, want 3", got.Total())
	}
	if !reflect.DeepEqual(got["policy"], []string{"aaa111"}) {
		t.Errorf("policy = %v, want [aaa111]", got["policy"])
	}
	if !strings.Contains(oracle.lastUser, "aaa111 | State Council issues new fiscal guidance") {
		t.Errorf("prompt missing record line:\n%s", oracle.lastUser)
	}
	for _, s := range types.Sections {
		if !strings.Contains(oracle.lastUser, s.Key+": ") {
			t.Errorf("prompt missing section %q", s.Key)
		}
	}
}

func TestClassifyToleratesFencedResponse(t *testing.T) {
	oracle := &stubOracle{response: "Here you go:\n```json\n{\"market\": [\"aaa111\", \"bbb222\"]}\n```"}

	got := Classify(context.Background(), oracle, testRecords(), &bytes.Buffer{})
	if !reflect.DeepEqual(got["market"], []string{"aaa111", "bbb222"}) {
		t.Fatalf("market = %v, want [aaa111 bbb222]", got["market"])
	}
}

func TestClassifyDropsUnknownKeysAndIdentities(t *testing.T) {
	oracle := &stubOracle{response: `{"policy": ["aaa111", "ghost99", "aaa111"], "weather": ["bbb222"]}`}

	got := Classify(context.Background(), oracle, testRecords(), &bytes.Buffer{})
	if !reflect.DeepEqual(got["policy"], []string{"aaa111"}) {
		t.Errorf("policy = %v, want [aaa111]", got["policy"])
	}
	if _, ok := got["weather"]; ok {
		t.Error("unknown section key survived parsing")
	}
}

func TestClassifySoftFailures(t *testing.T) {
	tests := []struct {
		name   string
		oracle *stubOracle
		warn   string
	}{
		{"oracle error", &stubOracle{err: fmt.Errorf("quota exhausted")}, "oracle failed"},
		{"no JSON", &stubOracle{response: "I cannot classify these items."}, "unusable"},
		{"invalid JSON", &stubOracle{response: `{"policy": [unquoted]}`}, "unusable"},
		{"nothing valid", &stubOracle{response: `{"policy": ["ghost99"]}`}, "unusable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			got := Classify(context.Background(), tt.oracle, testRecords(), &buf)
			if got.Total() != 0 {
				t.Errorf("Total() = %d, want 0", got.Total())
			}
			if !strings.Contains(buf.String(), tt.warn) {
				t.Errorf("output %q missing %q", buf.String(), tt.warn)
			}
		})
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	oracle := &stubOracle{response: `{}`}
	got := Classify(context.Background(), oracle, nil, &bytes.Buffer{})
	if got.Total() != 0 {
		t.Fatalf("Total() = %d, want 0", got.Total())
	}
	if oracle.lastUser != "" {
		t.Error("oracle was called with no records")
	}
}

func TestFallbackAssign(t *testing.T) {
	records := []types.Record{
		{Identity: "a", Source: "gov"},
		{Identity: "b", Source: "stats"},
		{Identity: "c", Source: "unknown-wire"},
		{Identity: "d", Source: "gov", Tags: []string{"economy"}},
		{Identity: "e", Source: "weibo"},
		{Identity: "f", Source: "gov"},
	}

	got := FallbackAssign(records)
	want := Assignment{
		"policy":   {"a", "f"},
		"economy":  {"b", "d"},
		"global":   {"c"},
		"consumer": {"e"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FallbackAssign = %v, want %v", got, want)
	}
}

func TestMergeTags(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		section  string
		want     []string
	}{
		{"empty history", nil, "tech", []string{"tech"}},
		{"prepends", []string{"market"}, "tech", []string{"tech", "market"}},
		{"dedups", []string{"tech", "market"}, "tech", []string{"tech", "market"}},
		{"moves repeat to front", []string{"market", "tech"}, "tech", []string{"tech", "market"}},
		{
			"truncates",
			[]string{"a", "b", "c", "d", "e"},
			"tech",
			[]string{"tech", "a", "b", "c", "d"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeTags(tt.existing, tt.section)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeTags(%v, %q) = %v, want %v", tt.existing, tt.section, got, tt.want)
			}
		})
	}
}

func TestWriteBack(t *testing.T) {
	records := []types.Record{
		{Identity: "a", Tags: []string{"finance"}},
		{Identity: "b"},
	}
	assignment := Assignment{
		"market": {"a"},
		"tech":   {"b", "ghost"},
	}

	got := WriteBack(assignment, records)
	if !reflect.DeepEqual(got["a"], []string{"market", "finance"}) {
		t.Errorf("a = %v, want [market finance]", got["a"])
	}
	if !reflect.DeepEqual(got["b"], []string{"tech"}) {
		t.Errorf("b = %v, want [tech]", got["b"])
	}
	if _, ok := got["ghost"]; ok {
		t.Error("unknown identity survived write-back")
	}
}
