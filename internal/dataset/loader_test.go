package dataset

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ecom-insights/internal/config"
	"ecom-insights/internal/models"
)

const csvHeader = "transaction_id,product_name,category,price,quantity,customer_age,customer_rating,revenue,purchase_date"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestLoader(t *testing.T, csvPath string, cacheEnabled bool) *Loader {
	t.Helper()
	return NewLoader(config.DatasetConfig{
		CSVFile:      csvPath,
		CacheDir:     filepath.Join(t.TempDir(), "cache"),
		CacheEnabled: cacheEnabled,
	}, testLogger())
}

func TestLoader_Load_ValidData(t *testing.T) {
	csv := csvHeader + `
T001,Laptop,Electronics,999.99,1,34,4.5,999.99,2024-01-15
T002,Mouse,Electronics,29.99,2,27,,59.98,2024-02-10
T003,Desk Chair,Furniture,79.99,1,52,3.0,79.99,2024-03-05`

	l := newTestLoader(t, createTempCSV(t, csv), false)
	snap, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() with valid data should not error, got: %v", err)
	}

	if len(snap.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(snap.Records))
	}
	if snap.Excluded != 0 {
		t.Errorf("excluded = %d, want 0", snap.Excluded)
	}
	if snap.ID == "" {
		t.Error("snapshot should have an id")
	}

	first := snap.Records[0]
	if first.TransactionID != "T001" || first.ProductName != "Laptop" || first.Category != "Electronics" {
		t.Errorf("unexpected first record: %+v", first)
	}
	if first.Price != 999.99 || first.Quantity != 1 || first.Revenue != 999.99 {
		t.Errorf("unexpected first record numbers: %+v", first)
	}
	if first.CustomerRating == nil || *first.CustomerRating != 4.5 {
		t.Errorf("first record rating = %v, want 4.5", first.CustomerRating)
	}
	if !first.PurchaseDate.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first record date = %v", first.PurchaseDate)
	}

	// A blank rating is an absence, not a malformed row.
	if snap.Records[1].CustomerRating != nil {
		t.Errorf("blank rating should parse as nil, got %v", *snap.Records[1].CustomerRating)
	}
}

func TestLoader_Load_MalformedRows(t *testing.T) {
	csv := csvHeader + `
T001,Laptop,Electronics,999.99,1,34,4.5,999.99,2024-01-15
T002,Lamp,Home,10.00,1,30,4.0,10.00,not-a-date
T003,Lamp,Home,free,1,30,4.0,10.00,2024-01-02
T004,Lamp,Home,10.00,-1,30,4.0,-10.00,2024-01-02
T005,Lamp,Home,10.00,1,15,4.0,10.00,2024-01-02
T006,Lamp,Home,10.00,1,30,6.0,10.00,2024-01-02
T007,Lamp,Home,10.00,2,30,4.0,10.00,2024-01-02
T008,Lamp,Home
T009,Mouse,Electronics,29.99,2,27,,59.98,2024-02-10`

	l := newTestLoader(t, createTempCSV(t, csv), false)
	snap, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() should not fail on malformed rows, got: %v", err)
	}

	if len(snap.Records) != 2 {
		t.Errorf("records = %d, want 2 (T001 and T009)", len(snap.Records))
	}
	if snap.Excluded != 7 {
		t.Errorf("excluded = %d, want 7", snap.Excluded)
	}
}

func TestLoader_Load_InvalidFiles(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty file", ""},
		{"wrong header", "a,b,c,d,e,f,g,h,i\nT001,Laptop,Electronics,999.99,1,34,4.5,999.99,2024-01-15"},
		{"too few header columns", "transaction_id,product_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLoader(t, createTempCSV(t, tt.csv), false)
			if _, err := l.Load(context.Background()); err == nil {
				t.Error("Load() should error")
			}
		})
	}
}

func TestLoader_Load_MissingFile(t *testing.T) {
	l := newTestLoader(t, filepath.Join(t.TempDir(), "nope.csv"), false)
	if _, err := l.Load(context.Background()); err == nil {
		t.Error("Load() should error for a missing file")
	}
}

func TestLoader_Load_HeaderOnly(t *testing.T) {
	l := newTestLoader(t, createTempCSV(t, csvHeader), false)
	snap, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() with header-only file should produce an empty snapshot, got: %v", err)
	}
	if len(snap.Records) != 0 || snap.Excluded != 0 {
		t.Errorf("empty dataset expected, got %d records, %d excluded", len(snap.Records), snap.Excluded)
	}
}

func TestLoader_Load_ManyRows(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(csvHeader)
	sb.WriteString("\n")
	// More rows than one batch to exercise the batched path.
	for i := 0; i < batchSize+50; i++ {
		sb.WriteString("T1,Widget,Gadgets,10.00,2,30,4.0,20.00,2024-01-15\n")
	}

	l := newTestLoader(t, createTempCSV(t, sb.String()), false)
	snap, err := l.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Records) != batchSize+50 {
		t.Errorf("records = %d, want %d", len(snap.Records), batchSize+50)
	}
}

func TestLoader_Cache(t *testing.T) {
	csv := csvHeader + `
T001,Laptop,Electronics,999.99,1,34,4.5,999.99,2024-01-15`

	path := createTempCSV(t, csv)
	cacheDir := filepath.Join(t.TempDir(), "cache")
	l := NewLoader(config.DatasetConfig{CSVFile: path, CacheDir: cacheDir, CacheEnabled: true}, testLogger())

	first, err := l.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(first.Records))
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	// Rewrite the file but restore its modtime: the loader must serve the
	// cached parse for an apparently unchanged source.
	extended := csv + "\nT002,Mouse,Electronics,29.99,2,27,,59.98,2024-02-10"
	if err := os.WriteFile(path, []byte(extended), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, info.ModTime(), info.ModTime()); err != nil {
		t.Fatal(err)
	}

	second, err := l.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Records) != 1 {
		t.Errorf("cache should serve the original parse, got %d records", len(second.Records))
	}

	// A touched file invalidates the cache.
	later := info.ModTime().Add(time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	third, err := l.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(third.Records) != 2 {
		t.Errorf("stale cache should reparse, got %d records", len(third.Records))
	}
}

func TestParseTransaction_RevenueMismatch(t *testing.T) {
	row := strings.Split("T001,Laptop,Electronics,100.00,3,34,4.5,300.00,2024-01-15", ",")
	if _, err := parseTransaction(row); err != nil {
		t.Errorf("exact revenue should parse, got: %v", err)
	}

	row = strings.Split("T001,Laptop,Electronics,100.00,3,34,4.5,300.005,2024-01-15", ",")
	if _, err := parseTransaction(row); err != nil {
		t.Errorf("revenue within tolerance should parse, got: %v", err)
	}

	row = strings.Split("T001,Laptop,Electronics,100.00,3,34,4.5,301.00,2024-01-15", ",")
	if _, err := parseTransaction(row); err == nil {
		t.Error("revenue off by a dollar should be rejected")
	}
}

func TestStore_PublishAndCurrent(t *testing.T) {
	s := NewStore()

	if _, ok := s.Current(); ok {
		t.Error("empty store should report no snapshot")
	}

	first := &Snapshot{ID: "one", LoadedAt: time.Now()}
	s.Publish(first)

	got, ok := s.Current()
	if !ok || got.ID != "one" {
		t.Errorf("Current() = %v, %v; want snapshot one", got, ok)
	}

	second := &Snapshot{ID: "two", LoadedAt: time.Now()}
	s.Publish(second)

	got, ok = s.Current()
	if !ok || got.ID != "two" {
		t.Errorf("Current() after swap = %v, %v; want snapshot two", got, ok)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()
	s.Publish(&Snapshot{ID: "initial"})

	done := make(chan bool, 20)
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- true }()
			for j := 0; j < 100; j++ {
				if snap, ok := s.Current(); !ok || snap == nil {
					t.Error("Current() should always see a snapshot once published")
					return
				}
			}
		}()
		go func() {
			defer func() { done <- true }()
			for j := 0; j < 100; j++ {
				s.Publish(&Snapshot{ID: "swap"})
			}
		}()
	}

	for i := 0; i < 20; i++ {
		<-done
	}
}

func TestSnapshot_LatestDate(t *testing.T) {
	empty := &Snapshot{}
	if _, ok := empty.LatestDate(); ok {
		t.Error("empty snapshot has no latest date")
	}

	snap := &Snapshot{Records: mustRecords(t, csvHeader+`
T001,Laptop,Electronics,999.99,1,34,4.5,999.99,2024-01-15
T002,Mouse,Electronics,29.99,2,27,,59.98,2024-03-10
T003,Desk Chair,Furniture,79.99,1,52,3.0,79.99,2024-02-05`)}

	latest, ok := snap.LatestDate()
	if !ok {
		t.Fatal("expected a latest date")
	}
	want := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	if !latest.Equal(want) {
		t.Errorf("latest = %v, want %v", latest, want)
	}
}

func mustRecords(t *testing.T, csv string) []models.Transaction {
	t.Helper()
	l := newTestLoader(t, createTempCSV(t, csv), false)
	snap, err := l.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return snap.Records
}

func BenchmarkParseTransaction(b *testing.B) {
	row := strings.Split("T001,Laptop,Electronics,999.99,1,34,4.5,999.99,2024-01-15", ",")

	b.ResetTimer()
	for b.Loop() {
		if _, err := parseTransaction(row); err != nil {
			b.Fatal(err)
		}
	}
}
