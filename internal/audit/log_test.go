package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"polymarket-mm/pkg/types"
)

func TestAppendWritesJSONLine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	log, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	entry := Entry{
		Symbol:     "SOL",
		FillSide:   "buy",
		HedgeSide:  "sell",
		Size:       1.5,
		MakerPrice: 100.0,
		HedgePrice: 100.05,
		ProfitBps:  5.0,
		Source:     "ws",
		RealizedAt: time.Now(),
	}
	if err := log.Append(entry); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "realized_hedges.jsonl"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	var decoded Entry
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Symbol != "SOL" || decoded.ProfitBps != 5.0 {
		t.Fatalf("unexpected decoded entry: %+v", decoded)
	}
}

func TestAppendPreservesPriorEntries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	log, _ := Open(dir)

	for i := 0; i < 3; i++ {
		if err := log.Append(Entry{Symbol: "SOL", Size: float64(i)}); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "realized_hedges.jsonl"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
}

func TestRecordHedgeBuildsEntryFromHedgeEvent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	log, _ := Open(dir)

	evt := types.HedgeEvent{Side: types.Sell, Size: 2.0, AvgPrice: 50.0, Source: "rest"}
	if err := RecordHedge(log, "BTC", evt, 49.98, 4.0); err != nil {
		t.Fatalf("RecordHedge: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "realized_hedges.jsonl"))
	var decoded Entry
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.HedgeSide != "SELL" || decoded.FillSide != "BUY" {
		t.Fatalf("unexpected sides: fill=%s hedge=%s", decoded.FillSide, decoded.HedgeSide)
	}
}
