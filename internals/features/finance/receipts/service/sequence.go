package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"garderie_backend/internals/features/finance/receipts/model"
	"garderie_backend/internals/helpers/dbtime"
)

// Kind selects the receipt family and its prefix.
type Kind string

const (
	KindPayment Kind = "payment"
	KindExpense Kind = "expense"
)

func (k Kind) Prefix() string {
	switch k {
	case KindExpense:
		return "EXP"
	default:
		return "REC"
	}
}

// table holds the records numbered by this kind.
func (k Kind) table() string {
	switch k {
	case KindExpense:
		return "expenses"
	default:
		return "payments"
	}
}

func (k Kind) Valid() bool { return k == KindPayment || k == KindExpense }

type Strategy string

const (
	// StrategyCounter increments a per-kind counter row atomically inside the
	// caller's transaction.
	StrategyCounter Strategy = "counter"
	// StrategyCount numbers records as count(kind)+1. Concurrent callers can
	// draw the same number; the unique index on receipt_number rejects the
	// loser.
	StrategyCount Strategy = "count"
)

// Format renders PREFIX-YYYYMMDD-NNNN. The ordinal is never truncated.
func Format(kind Kind, at time.Time, n int64) string {
	return fmt.Sprintf("%s-%s-%04d", kind.Prefix(), dbtime.YMD(at), n)
}

// Allocator hands out receipt numbers. The ordinal is a running total per
// kind; it does not reset per day.
type Allocator struct {
	strategy Strategy
}

func NewAllocator(strategy Strategy) *Allocator {
	if strategy != StrategyCount {
		strategy = StrategyCounter
	}
	return &Allocator{strategy: strategy}
}

func (a *Allocator) Strategy() Strategy { return a.strategy }

// Next returns the receipt number for a record created at `at`. tx must be
// the transaction that inserts the record, so a rollback also releases the
// number.
func (a *Allocator) Next(ctx context.Context, tx *gorm.DB, kind Kind, at time.Time) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown receipt kind %q", kind)
	}
	var (
		n   int64
		err error
	)
	switch a.strategy {
	case StrategyCount:
		n, err = a.nextByCount(ctx, tx, kind)
	default:
		n, err = a.nextByCounter(ctx, tx, kind)
	}
	if err != nil {
		return "", err
	}
	return Format(kind, at, n), nil
}

func (a *Allocator) nextByCount(ctx context.Context, tx *gorm.DB, kind Kind) (int64, error) {
	var count int64
	if err := tx.WithContext(ctx).Table(kind.table()).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", kind.table(), err)
	}
	return count + 1, nil
}

func (a *Allocator) nextByCounter(ctx context.Context, tx *gorm.DB, kind Kind) (int64, error) {
	db := tx.WithContext(ctx)
	for attempt := 0; attempt < 2; attempt++ {
		var rows []struct{ Value int64 }
		if err := db.Raw(
			`UPDATE receipt_counters SET value = value + 1, updated_at = ? WHERE kind = ? RETURNING value`,
			time.Now().UTC(), string(kind),
		).Scan(&rows).Error; err != nil {
			return 0, fmt.Errorf("increment %s counter: %w", kind, err)
		}
		if len(rows) == 1 {
			return rows[0].Value, nil
		}
		if err := a.seed(db, kind); err != nil {
			return 0, err
		}
	}
	return 0, fmt.Errorf("%s counter row missing after seed", kind)
}

// seed creates the counter row at the highest ordinal already issued for
// the kind. Deleted records leave gaps, so the row count alone can fall
// below a number still in use.
func (a *Allocator) seed(db *gorm.DB, kind Kind) error {
	start, err := highestOrdinal(db, kind)
	if err != nil {
		return err
	}
	var count int64
	if err := db.Table(kind.table()).Count(&count).Error; err != nil {
		return fmt.Errorf("count %s: %w", kind.table(), err)
	}
	if count > start {
		start = count
	}
	row := model.ReceiptCounter{Kind: string(kind), Value: start}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("seed %s counter: %w", kind, err)
	}
	return nil
}

// highestOrdinal scans the kind's receipt numbers for the largest NNNN
// suffix. Runs once per kind, when the counter row is first created.
func highestOrdinal(db *gorm.DB, kind Kind) (int64, error) {
	var numbers []string
	if err := db.Table(kind.table()).
		Where("receipt_number LIKE ?", kind.Prefix()+"-%").
		Pluck("receipt_number", &numbers).Error; err != nil {
		return 0, fmt.Errorf("scan %s receipt numbers: %w", kind.table(), err)
	}
	var highest int64
	for _, num := range numbers {
		if n, ok := ordinalOf(num); ok && n > highest {
			highest = n
		}
	}
	return highest, nil
}

// ordinalOf extracts N from PREFIX-YYYYMMDD-N.
func ordinalOf(number string) (int64, bool) {
	i := strings.LastIndexByte(number, '-')
	if i < 0 || i == len(number)-1 {
		return 0, false
	}
	n, err := strconv.ParseInt(number[i+1:], 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
