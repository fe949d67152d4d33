package observability

import (
	"errors"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
)

func TestShouldSkipUptraceLog(t *testing.T) {
	if !shouldSkipUptraceLog("snapshot fetch request", []any{"name", "transfers.csv", "curl_preview", "curl -sSL https://snapshots.example.com/transfers.csv"}) {
		t.Fatalf("expected fetch preview log to be skipped")
	}
	if shouldSkipUptraceLog("snapshot fetched", []any{"name", "transfers.csv", "bytes", 2048}) {
		t.Fatalf("did not expect fetch completion log to be skipped")
	}
	if shouldSkipUptraceLog("clubelo request failed", []any{"curl_preview", "curl -sSL http://api.clubelo.com/Arsenal"}) {
		t.Fatalf("did not expect non-fetch event to be skipped")
	}
}

func TestBuildOTelLogAttributes(t *testing.T) {
	attrs := buildOTelLogAttributes([]any{"team", "brighton", "match_number", 3, "ratings"})
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "team" || attrs[0].Value.AsString() != "brighton" {
		t.Fatalf("unexpected team attribute")
	}
	if attrs[1].Key != "match_number" || attrs[1].Value.AsInt64() != 3 {
		t.Fatalf("unexpected match_number attribute")
	}
	if attrs[2].Key != "ratings" || attrs[2].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected ratings attribute")
	}
}

func TestDirectLogValue(t *testing.T) {
	if v, ok := directLogValue(90 * time.Minute); !ok || v.AsString() != "1h30m0s" {
		t.Fatalf("unexpected duration value: %v ok=%v", v, ok)
	}
	if v, ok := directLogValue(errors.New("feed offline")); !ok || v.AsString() != "feed offline" {
		t.Fatalf("unexpected error value: %v ok=%v", v, ok)
	}
	kickoff := time.Date(2024, 8, 17, 14, 0, 0, 0, time.UTC)
	if v, ok := directLogValue(kickoff); !ok || v.AsString() != "2024-08-17T14:00:00Z" {
		t.Fatalf("unexpected time value: %v ok=%v", v, ok)
	}
	if _, ok := directLogValue(struct{}{}); ok {
		t.Fatalf("expected struct to fall through to reflection")
	}
}

func TestToOTelLogValue_Map(t *testing.T) {
	v := toOTelLogValue(map[string]any{
		"goals":   2,
		"started": true,
	}, 0)
	if v.Kind() != otellog.KindMap {
		t.Fatalf("expected map value, got %s", v.Kind())
	}
	items := v.AsMap()
	if len(items) != 2 {
		t.Fatalf("expected 2 map items, got %d", len(items))
	}
}
