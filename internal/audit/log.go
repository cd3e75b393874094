// Package audit records realized hedges to an append-only log file.
//
// Unlike a crash-recovery store, this log is never read back on startup:
// the bot always reconciles by cancelling all open orders rather than
// restoring prior state (see the startup sequence). Writes use the same
// atomic-replace discipline as a position store (write to .tmp, rename over
// the target) so a crash mid-write never corrupts the existing log: the
// line being appended is staged into a temp file containing the full
// updated contents, then renamed into place.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"polymarket-mm/pkg/types"
)

// Entry is one realized hedge, written after HedgeExecutor successfully
// places the opposite-side order.
type Entry struct {
	Symbol        string    `json:"symbol"`
	FillSide      string    `json:"fill_side"`
	HedgeSide     string    `json:"hedge_side"`
	Size          float64   `json:"size"`
	MakerPrice    float64   `json:"maker_price"`
	HedgePrice    float64   `json:"hedge_price"`
	ProfitBps     float64   `json:"profit_bps"`
	Source        string    `json:"source"`
	RealizedAt    time.Time `json:"realized_at"`
}

// Log is a write-only, never-read-back recorder of realized hedges.
type Log struct {
	path string
	mu   sync.Mutex
}

// Open creates a Log backed by a single JSON-lines file under dir.
func Open(dir string) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	return &Log{path: filepath.Join(dir, "realized_hedges.jsonl")}, nil
}

// Append atomically appends one entry. Existing content is read, the new
// line appended in memory, and the result written to a .tmp file then
// renamed over the target. This trades O(n) writes for a guarantee that a
// crash mid-append never truncates prior entries.
func (l *Log) Append(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	existing, err := os.ReadFile(l.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read audit log: %w", err)
	}

	updated := append(existing, append(line, '\n')...)

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, updated, 0o600); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return os.Rename(tmp, l.path)
}

// RecordHedge builds and appends an Entry from a fill and the hedge result.
func RecordHedge(l *Log, symbol string, evt types.HedgeEvent, hedgePrice, profitBps float64) error {
	return l.Append(Entry{
		Symbol:     symbol,
		FillSide:   evt.Side.Opposite().String(),
		HedgeSide:  evt.Side.String(),
		Size:       evt.Size,
		MakerPrice: evt.AvgPrice,
		HedgePrice: hedgePrice,
		ProfitBps:  profitBps,
		Source:     evt.Source,
		RealizedAt: time.Now(),
	})
}
