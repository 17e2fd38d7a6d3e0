package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"crclear/internal/metrics"
)

func TestWriteTextfile(t *testing.T) {
	r := metrics.New()
	r.ObserveBucket("renewed")
	r.ObserveBucket("renewed")
	r.ObserveBucket("foreign")
	r.ObserveAnomaly("possible_foreign")
	r.ObserveMalformed()
	r.SetRenewals(3, 7)
	r.AddCatalogRecords("accepted", 12)
	r.ObserveQuality(0.9)
	r.ObserveStage("classify", 1500*time.Millisecond)

	path := filepath.Join(t.TempDir(), "textfile", "crclear.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`crclear_registrations_total{bucket="renewed"} 2`,
		`crclear_registrations_total{bucket="foreign"} 1`,
		`crclear_anomalies_total{kind="possible_foreign"} 1`,
		`crclear_malformed_records_total 1`,
		`crclear_renewals{partition="unmatched"} 7`,
		`crclear_catalog_records_total{outcome="accepted"} 12`,
		`crclear_catalog_match_quality_count 1`,
		`crclear_stage_duration_seconds{stage="classify"} 1.5`,
		`crclear_last_run_timestamp_seconds`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *metrics.Recorder
	r.ObserveBucket("renewed")
	r.ObserveAnomaly("x")
	r.SetRenewals(1, 1)
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestEmptyPathSkipsWrite(t *testing.T) {
	if err := metrics.New().WriteTextfile(""); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
