package archive

import (
	"context"
	"errors"
	"testing"

	"tradeproof/internal/batch"
	"tradeproof/internal/domain"
	"tradeproof/internal/match"
	"tradeproof/internal/storage"
	"tradeproof/internal/storage/memory"
)

func ptr[T any](v T) *T {
	return &v
}

func testRun() (*batch.RunResult, *match.Result) {
	run := &batch.RunResult{
		Signals: []domain.CandidateRecord{
			{RecordID: "s1", Kind: domain.KindSignal, CoinSymbol: "BTC", Price: ptr(42150.0), SourceImage: "signals/btc.png", ImageHash: "h-s1", Confidence: 0.9},
		},
		Results: []domain.CandidateRecord{
			{RecordID: "r1", Kind: domain.KindResult, CoinSymbol: "BTC", ROIPercent: ptr(12.5), Status: domain.StatusWin, SourceImage: "results/btc.png", ImageHash: "h-r1", Confidence: 0.85},
		},
		LowConfidence: []domain.CandidateRecord{
			{RecordID: "lc1", Kind: domain.KindSignal, CoinSymbol: "DOGE", SourceImage: "signals/blurry.png", ImageHash: "h-lc1", Confidence: 0.3, LowConfidence: true},
		},
	}
	matched := &match.Result{
		Trades: []domain.TradeRecord{
			{TradeID: "t1", CoinSymbol: "BTC", ROIPercent: ptr(12.5), Status: domain.StatusWin, MatchConfidence: 0.95, SignalSource: "signals/btc.png", ResultSource: "results/btc.png"},
		},
	}
	return run, matched
}

func TestSink_StoreMemory(t *testing.T) {
	candStore := memory.NewCandidateRecordStore()
	tradeStore := memory.NewTradeRecordStore()
	sink := NewSink(candStore, tradeStore)
	ctx := context.Background()

	run, matched := testRun()
	if err := sink.Store(ctx, run, matched); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	// Matchable and low-confidence records land alike.
	for _, id := range []string{"s1", "r1", "lc1"} {
		if _, err := candStore.GetByID(ctx, id); err != nil {
			t.Errorf("GetByID(%s) failed: %v", id, err)
		}
	}

	got, err := candStore.GetByID(ctx, "lc1")
	if err != nil {
		t.Fatalf("GetByID(lc1) failed: %v", err)
	}
	if !got.LowConfidence {
		t.Error("low_confidence flag lost in archive")
	}

	trade, err := tradeStore.GetByID(ctx, "t1")
	if err != nil {
		t.Fatalf("GetByID(t1) failed: %v", err)
	}
	if trade.CoinSymbol != "BTC" || trade.MatchConfidence != 0.95 {
		t.Errorf("archived trade = %+v, want BTC @ 0.95", trade)
	}
}

func TestSink_StoreEmptyRun(t *testing.T) {
	sink := NewSink(memory.NewCandidateRecordStore(), memory.NewTradeRecordStore())

	if err := sink.Store(context.Background(), &batch.RunResult{}, &match.Result{}); err != nil {
		t.Fatalf("Store() on empty run failed: %v", err)
	}
}

func TestSink_StoreRearchiveDuplicates(t *testing.T) {
	sink := NewSink(memory.NewCandidateRecordStore(), memory.NewTradeRecordStore())
	ctx := context.Background()

	run, matched := testRun()
	if err := sink.Store(ctx, run, matched); err != nil {
		t.Fatalf("first Store() failed: %v", err)
	}

	err := sink.Store(ctx, run, matched)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("second Store() error = %v, want ErrDuplicateKey", err)
	}
}
