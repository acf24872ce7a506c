package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ducminhle1904/futures-signal-engine/internal/logger"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// SQLiteProvider archives candles in a local SQLite database and serves them
// back as a DataProvider. Sources are "symbol:interval" or "symbol:interval:limit".
type SQLiteProvider struct {
	db  *sql.DB
	log *logger.Logger
}

// NewSQLiteProvider opens (and creates if needed) the candle archive at dbPath
func NewSQLiteProvider(dbPath string, log *logger.Logger) (*SQLiteProvider, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createCandleSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	if log == nil {
		log = logger.Nop()
	}
	log = log.With("sqlite")
	log.Debug("opened candle archive at %s", dbPath)
	return &SQLiteProvider{db: db, log: log}, nil
}

func createCandleSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS candles (
			symbol   TEXT    NOT NULL,
			interval TEXT    NOT NULL,
			ts       INTEGER NOT NULL,
			open     REAL    NOT NULL,
			high     REAL    NOT NULL,
			low      REAL    NOT NULL,
			close    REAL    NOT NULL,
			volume   REAL,
			PRIMARY KEY (symbol, interval, ts)
		);
	`)
	return err
}

// GetName returns the name of the data provider
func (p *SQLiteProvider) GetName() string {
	return "SQLite Provider"
}

// LoadData reads the archived series named by source, oldest first
func (p *SQLiteProvider) LoadData(source string) ([]types.OHLCV, error) {
	key, err := ParseSourceKey(source)
	if err != nil {
		return nil, err
	}
	return p.Candles(context.Background(), key.Symbol, key.Interval, key.Limit)
}

// Candles returns the newest limit candles (all when limit <= 0), oldest first
func (p *SQLiteProvider) Candles(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	query := `
		SELECT ts, open, high, low, close, volume FROM (
			SELECT ts, open, high, low, close, volume
			FROM candles
			WHERE symbol = ? AND interval = ?
			ORDER BY ts DESC
			LIMIT ?
		) ORDER BY ts ASC`
	if limit <= 0 {
		limit = -1
	}

	rows, err := p.db.QueryContext(ctx, query, normalizeSymbol(symbol), interval, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite query candles: %w", err)
	}
	defer rows.Close()

	var candles []types.OHLCV
	for rows.Next() {
		var (
			c      types.OHLCV
			tsMs   int64
			volume sql.NullFloat64
		)
		if err := rows.Scan(&tsMs, &c.Open, &c.High, &c.Low, &c.Close, &volume); err != nil {
			return nil, fmt.Errorf("sqlite scan candles: %w", err)
		}
		c.Timestamp = time.UnixMilli(tsMs).UTC()
		c.Volume = volume.Float64
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("no archived candles for %s %s", symbol, interval)
	}
	return candles, nil
}

// Import upserts candles in a single transaction and returns how many rows were written
func (p *SQLiteProvider) Import(ctx context.Context, symbol, interval string, candles []types.OHLCV) (int, error) {
	if len(candles) == 0 {
		return 0, nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite begin: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles (symbol, interval, ts, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()

	sym := normalizeSymbol(symbol)
	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, sym, interval, c.Timestamp.UnixMilli(), c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite commit: %w", err)
	}
	p.log.Info("archived %d candles for %s %s", len(candles), sym, interval)
	return len(candles), nil
}

// Count returns how many candles are archived for symbol and interval
func (p *SQLiteProvider) Count(ctx context.Context, symbol, interval string) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM candles WHERE symbol = ? AND interval = ?`,
		normalizeSymbol(symbol), interval).Scan(&n)
	return n, err
}

// ValidateData validates the integrity of loaded data
func (p *SQLiteProvider) ValidateData(data []types.OHLCV) error {
	return validateCandles(data)
}

// Close closes the database
func (p *SQLiteProvider) Close() error {
	return p.db.Close()
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
