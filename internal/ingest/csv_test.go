package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"firegate/internal/faults"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "incidents.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCSVSourceExtract(t *testing.T) {
	path := writeCSV(t, "fire_name,fire_year,acres\nCamp,2018,153336\nDixie,2021,963309\n,2020,\n")

	src := NewCSVSource("historical_csv", path, 0)
	defer src.Close()

	batch, err := src.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(batch) != 3 {
		t.Fatalf("len = %d, want 3", len(batch))
	}
	if batch[0]["fire_name"] != "Camp" {
		t.Errorf("fire_name = %v", batch[0]["fire_name"])
	}
	if got, ok := batch[1]["fire_year"].(float64); !ok || got != 2021 {
		t.Errorf("fire_year = %v, want numeric 2021", batch[1]["fire_year"])
	}
	if batch[2]["fire_name"] != nil || batch[2]["acres"] != nil {
		t.Errorf("empty cells should be nil: %+v", batch[2])
	}

	// Drained source yields an empty batch.
	again, err := src.Extract(context.Background())
	if err != nil || len(again) != 0 {
		t.Errorf("drained Extract = (%d, %v)", len(again), err)
	}
}

func TestCSVSourceBatching(t *testing.T) {
	path := writeCSV(t, "a\n1\n2\n3\n")
	src := NewCSVSource("s", path, 2)
	defer src.Close()

	first, _ := src.Extract(context.Background())
	second, _ := src.Extract(context.Background())
	if len(first) != 2 || len(second) != 1 {
		t.Errorf("batches = %d, %d, want 2, 1", len(first), len(second))
	}
}

func TestCSVSourceMissingFileIsConnectivityFault(t *testing.T) {
	src := NewCSVSource("s", "/nonexistent/file.csv", 0)
	_, err := src.Extract(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := faults.KindOf(err); kind != faults.KindConnectivity {
		t.Errorf("kind = %s, want connectivity", kind)
	}
}

func TestCSVSourceRaggedRowIsSchemaFault(t *testing.T) {
	path := writeCSV(t, "a,b\n1\n")
	src := NewCSVSource("s", path, 0)
	defer src.Close()

	_, err := src.Extract(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := faults.KindOf(err); kind != faults.KindSchema {
		t.Errorf("kind = %s, want schema", kind)
	}
}

func TestStreamSourceDeterministic(t *testing.T) {
	a := NewStreamSource("stream", 50, 0.2, 42)
	b := NewStreamSource("stream", 50, 0.2, 42)

	ba, _ := a.Extract(context.Background())
	bb, _ := b.Extract(context.Background())
	if len(ba) != 50 || len(bb) != 50 {
		t.Fatalf("batch sizes = %d, %d", len(ba), len(bb))
	}
	for i := range ba {
		if ba[i]["latitude"] != bb[i]["latitude"] || ba[i]["fire_name"] != bb[i]["fire_name"] {
			t.Fatalf("same seed diverged at record %d", i)
		}
	}
}

func TestStreamSourceCleanWhenDefectRateZero(t *testing.T) {
	src := NewStreamSource("stream", 200, 0, 1)
	batch, _ := src.Extract(context.Background())
	for i, rec := range batch {
		lat, _ := rec["latitude"].(float64)
		if rec["fire_name"] == nil || lat < 32.5 || lat > 42.0 {
			t.Fatalf("defect in clean stream at record %d: %+v", i, rec)
		}
	}
}
