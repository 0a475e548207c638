// Package journal mirrors committed ledger entries and quarantined scans
// into SQLite for audit. The in-memory ledger stays authoritative and the
// journal is never read back into it.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"rfidledger/m/domain"
	"rfidledger/m/internal/database"
	"rfidledger/m/internal/ledger"
	"rfidledger/m/internal/migrations"
)

const writeTimeout = 2 * time.Second

type Journal struct {
	db  *sqlx.DB
	log *zap.Logger
}

var _ ledger.Observer = (*Journal)(nil)

// Open connects to dsn and applies the journal schema.
func Open(dsn string, log *zap.Logger) (*Journal, error) {
	db, err := database.Connect(dsn)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db, log: log}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

// EntryAppended writes a committed log entry. Failures are logged; the
// ledger has already committed.
func (j *Journal) EntryAppended(e domain.LogEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := j.RecordEntry(ctx, e); err != nil {
		j.log.Warn("journal entry write failed", zap.Int64("entry_id", e.ID), zap.Error(err))
	}
}

// ScanQuarantined writes an unresolved scan.
func (j *Journal) ScanQuarantined(s domain.UnknownScan) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := j.RecordUnknown(ctx, s); err != nil {
		j.log.Warn("journal unknown scan write failed", zap.String("scan_id", s.ID), zap.Error(err))
	}
}

func (j *Journal) RecordEntry(ctx context.Context, e domain.LogEntry) error {
	_, err := j.db.ExecContext(ctx, `INSERT INTO ledger_entries
        (id, created_at, item_id, location_id, mode, qty, actor, reason, work_order, card_hex)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO NOTHING`,
		e.ID, e.Timestamp, e.ItemID, e.LocationID, string(e.Mode), e.Qty, e.Actor, e.Reason, e.WorkOrder, e.CardHex)
	if err != nil {
		return fmt.Errorf("insert ledger entry %d: %w", e.ID, err)
	}
	return nil
}

func (j *Journal) RecordUnknown(ctx context.Context, s domain.UnknownScan) error {
	_, err := j.db.ExecContext(ctx, `INSERT INTO unknown_scans
        (id, created_at, card_hex, mode, qty, actor, location_id, error)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO NOTHING`,
		s.ID, s.Timestamp, s.CardHex, string(s.Mode), s.Qty, s.Actor, s.LocationID, s.Error)
	if err != nil {
		return fmt.Errorf("insert unknown scan %s: %w", s.ID, err)
	}
	return nil
}

// Entries returns journaled ledger entries most-recent-first.
func (j *Journal) Entries(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []domain.LogEntry
	err := j.db.SelectContext(ctx, &entries, `SELECT id, created_at, item_id, location_id, mode, qty, actor, reason, work_order, card_hex
        FROM ledger_entries ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select ledger entries: %w", err)
	}
	return entries, nil
}

// UnknownCount returns how many unresolved scans for the tag were journaled.
// Unlike the quarantine, the journal keeps every scan.
func (j *Journal) UnknownCount(ctx context.Context, cardHex string) (int, error) {
	var n int
	if err := j.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM unknown_scans WHERE card_hex = ?`, cardHex); err != nil {
		return 0, fmt.Errorf("count unknown scans: %w", err)
	}
	return n, nil
}
