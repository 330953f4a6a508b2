package oui

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DBProvider serves vendor lookups from a local sqlite OUI registry.
// It is a local tier: populated out of band from the IEEE registry, it
// answers without network cost and carries its own LRU cache.
type DBProvider struct {
	db         *sql.DB
	cache      *LookupCache
	mu         sync.RWMutex
	closed     bool
	lookupStmt *sql.Stmt
}

// Entry is a single OUI registry row.
type Entry struct {
	Prefix      string
	Vendor      string
	VendorShort string
	Country     string
	LastUpdated time.Time
}

// NewDBProvider opens (or creates) the registry at path.
func NewDBProvider(path string, cacheSize int) (*DBProvider, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, &DatabaseError{Op: "open", Err: err}
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &DatabaseError{Op: "ping", Err: err}
	}

	p := &DBProvider{
		db:    db,
		cache: NewLookupCache(cacheSize),
	}

	if err := p.initializeSchema(); err != nil {
		db.Close()
		return nil, &DatabaseError{Op: "initialize_schema", Err: err}
	}

	stmt, err := db.Prepare("SELECT COALESCE(vendor_short, vendor) FROM oui_registry WHERE prefix = ?")
	if err != nil {
		db.Close()
		return nil, &DatabaseError{Op: "prepare_statement", Err: err}
	}
	p.lookupStmt = stmt

	return p, nil
}

func (p *DBProvider) initializeSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS oui_registry (
		prefix TEXT PRIMARY KEY,
		vendor TEXT NOT NULL,
		vendor_short TEXT,
		country TEXT,
		last_updated INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_vendor ON oui_registry(vendor);
	`
	if _, err := p.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Name implements Provider.
func (p *DBProvider) Name() string { return "sqlite" }

// Lookup implements Provider.
func (p *DBProvider) Lookup(ctx context.Context, mac MACAddress) (string, error) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return "", ErrProviderClosed
	}
	p.mu.RUnlock()

	if !mac.IsValid() {
		return "", ErrInvalidMAC
	}

	prefix := mac.OUI()
	if vendor, ok := p.cache.Get(prefix); ok {
		return vendor, nil
	}

	var vendor string
	err := p.lookupStmt.QueryRowContext(ctx, prefix).Scan(&vendor)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", &DatabaseError{Op: "lookup", Err: err}
	}

	p.cache.Set(prefix, vendor)
	return vendor, nil
}

// Insert inserts or updates a single registry entry.
func (p *DBProvider) Insert(ctx context.Context, entry Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrProviderClosed
	}

	query := `
	INSERT OR REPLACE INTO oui_registry (prefix, vendor, vendor_short, country, last_updated)
	VALUES (?, ?, ?, ?, ?)
	`
	_, err := p.db.ExecContext(ctx, query,
		normalizePrefix(entry.Prefix),
		entry.Vendor,
		entry.VendorShort,
		entry.Country,
		entry.LastUpdated.Unix(),
	)
	if err != nil {
		return &DatabaseError{Op: "insert", Err: err}
	}
	return nil
}

// BulkInsert inserts multiple entries in one transaction.
func (p *DBProvider) BulkInsert(ctx context.Context, entries []Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrProviderClosed
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return &DatabaseError{Op: "begin_tx", Err: err}
	}

	stmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO oui_registry (prefix, vendor, vendor_short, country, last_updated)
	VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return &DatabaseError{Op: "prepare", Err: err}
	}
	defer stmt.Close()

	for _, entry := range entries {
		_, err := stmt.ExecContext(ctx,
			normalizePrefix(entry.Prefix),
			entry.Vendor,
			entry.VendorShort,
			entry.Country,
			entry.LastUpdated.Unix(),
		)
		if err != nil {
			tx.Rollback()
			return &DatabaseError{Op: "insert", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &DatabaseError{Op: "commit", Err: err}
	}

	p.cache.Clear()
	return nil
}

// Count returns the number of registry entries.
func (p *DBProvider) Count(ctx context.Context) (int, error) {
	var count int
	err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM oui_registry").Scan(&count)
	if err != nil {
		return 0, &DatabaseError{Op: "count", Err: err}
	}
	return count, nil
}

// Close closes the database handle. Subsequent lookups fail with
// ErrProviderClosed.
func (p *DBProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.lookupStmt != nil {
		p.lookupStmt.Close()
	}
	return p.db.Close()
}
