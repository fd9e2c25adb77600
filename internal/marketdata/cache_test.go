package marketdata

import (
	"context"
	"testing"
	"time"

	common "github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/config"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
	badgerstore "github.com/folioworks/folio/internal/storage/badger"
)

func testQuote(ticker string, price float64) models.Quote {
	return models.Quote{
		Ticker:       ticker,
		CurrentPrice: price,
		Change:       1.2,
		ChangePct:    0.8,
		Volume:       1000,
		Timestamp:    time.Now(),
	}
}

func newTestKV(t *testing.T, dir string) interfaces.KeyValueStorage {
	t.Helper()
	logger := common.NewSilentLogger()
	db, err := badgerstore.NewBadgerDB(logger, &config.BadgerConfig{Path: dir})
	if err != nil {
		t.Fatalf("failed to open badger: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return badgerstore.NewKVStorage(db, logger)
}

func TestQuoteCache_RoundTrip(t *testing.T) {
	c := NewQuoteCache(time.Minute, nil, common.NewSilentLogger())

	q := testQuote("AAPL", 150)
	c.Put("AAPL", q)

	got, ok := c.Get("AAPL")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.CurrentPrice != q.CurrentPrice || got.ChangePct != q.ChangePct || got.Volume != q.Volume {
		t.Errorf("cached quote differs from stored: %+v vs %+v", got, q)
	}
}

func TestQuoteCache_CaseInsensitiveTicker(t *testing.T) {
	c := NewQuoteCache(time.Minute, nil, common.NewSilentLogger())
	c.Put("aapl", testQuote("AAPL", 150))

	if _, ok := c.Get("AAPL"); !ok {
		t.Error("expected hit for uppercase lookup of lowercase put")
	}
}

func TestQuoteCache_TTLExpiry(t *testing.T) {
	c := NewQuoteCache(60*time.Millisecond, nil, common.NewSilentLogger())
	c.Put("AAPL", testQuote("AAPL", 150))

	if _, ok := c.Get("AAPL"); !ok {
		t.Fatal("expected hit before TTL")
	}

	time.Sleep(80 * time.Millisecond)

	if _, ok := c.Get("AAPL"); ok {
		t.Error("expected miss after TTL")
	}
	// Still available for last-resort fallback
	if _, ok := c.GetStale("AAPL"); !ok {
		t.Error("expected stale entry to remain")
	}
}

func TestQuoteCache_NeverCachesFailedQuotes(t *testing.T) {
	c := NewQuoteCache(time.Minute, nil, common.NewSilentLogger())

	c.Put("AAPL", models.Quote{Ticker: "AAPL", Error: "provider down", Timestamp: time.Now()})
	if _, ok := c.GetStale("AAPL"); ok {
		t.Error("error-flagged quote must not be cached")
	}

	c.Put("MSFT", models.Quote{Ticker: "MSFT", CurrentPrice: 0, Timestamp: time.Now()})
	if _, ok := c.GetStale("MSFT"); ok {
		t.Error("zero-priced quote must not be cached")
	}
}

func TestQuoteCache_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	logger := common.NewSilentLogger()

	kv := newTestKV(t, dir+"/db1")
	c := NewQuoteCache(time.Minute, kv, logger)
	c.Put("AAPL", testQuote("AAPL", 150))

	// A fresh cache over the same KV storage sees the persisted entry.
	c2 := NewQuoteCache(time.Minute, kv, logger)
	got, ok := c2.Get("AAPL")
	if !ok {
		t.Fatal("expected persisted entry after reopen")
	}
	if got.CurrentPrice != 150 {
		t.Errorf("expected price 150 after reopen, got %v", got.CurrentPrice)
	}
}

func TestQuoteCache_CorruptStorageTreatedAsEmpty(t *testing.T) {
	kv := newTestKV(t, t.TempDir()+"/db")
	ctx := context.Background()

	if err := kv.Set(ctx, kvQuotePrefix+"AAPL", "{not valid json"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := kv.Set(ctx, "unrelated:key", "ignored"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	c := NewQuoteCache(time.Minute, kv, common.NewSilentLogger())
	if _, ok := c.GetStale("AAPL"); ok {
		t.Error("corrupt entry must be dropped, not served")
	}
}

func TestQuoteCache_Clear(t *testing.T) {
	kv := newTestKV(t, t.TempDir()+"/db")
	logger := common.NewSilentLogger()

	c := NewQuoteCache(time.Minute, kv, logger)
	c.Put("AAPL", testQuote("AAPL", 150))
	c.Put("MSFT", testQuote("MSFT", 300))

	c.Clear()

	if _, ok := c.GetStale("AAPL"); ok {
		t.Error("expected empty cache after Clear")
	}

	// Persisted entries are gone too
	c2 := NewQuoteCache(time.Minute, kv, logger)
	if _, ok := c2.GetStale("MSFT"); ok {
		t.Error("expected persisted entries removed after Clear")
	}
}

func TestQuoteCache_Status(t *testing.T) {
	c := NewQuoteCache(time.Minute, nil, common.NewSilentLogger())
	c.Put("AAPL", testQuote("AAPL", 150))
	c.Put("MSFT", testQuote("MSFT", 300))

	status := c.Status()
	if len(status) != 2 {
		t.Fatalf("expected 2 status entries, got %d", len(status))
	}
	for _, s := range status {
		if s.Price <= 0 {
			t.Errorf("expected positive price in status, got %+v", s)
		}
		if s.AgeSec < 0 {
			t.Errorf("negative age: %+v", s)
		}
	}
}
