package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rendis/rentscout/internal/engine/search"
	"github.com/rendis/rentscout/internal/model"
)

// ErrNoSearch means the session database holds no search metadata.
var ErrNoSearch = errors.New("no search recorded in session")

// Store is a single-search session database.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS search (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		address TEXT,
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		filter TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS listings (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		title TEXT,
		address TEXT,
		price INTEGER NOT NULL,
		rooms REAL NOT NULL,
		seller_type TEXT NOT NULL,
		features TEXT,
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		url TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price);
	CREATE INDEX IF NOT EXISTS idx_listings_coords ON listings(lat, lng);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SaveSearch stores (or replaces) the session's search metadata.
func (s *Store) SaveSearch(sess search.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filter, err := json.Marshal(sess.Filter)
	if err != nil {
		return fmt.Errorf("encoding filter: %w", err)
	}
	created := sess.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO search (id, address, lat, lng, filter, created_at)
		VALUES (1, ?, ?, ?, ?, ?)`,
		sess.Address, sess.Center.Lat, sess.Center.Lng, string(filter), created.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving search: %w", err)
	}
	return nil
}

// LoadSearch returns the saved search metadata or ErrNoSearch.
func (s *Store) LoadSearch() (search.Session, error) {
	var (
		sess    search.Session
		address sql.NullString
		filter  string
		created string
	)
	err := s.db.QueryRow(`SELECT address, lat, lng, filter, created_at FROM search WHERE id = 1`).
		Scan(&address, &sess.Center.Lat, &sess.Center.Lng, &filter, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return search.Session{}, ErrNoSearch
	}
	if err != nil {
		return search.Session{}, fmt.Errorf("loading search: %w", err)
	}

	sess.Address = address.String
	if err := json.Unmarshal([]byte(filter), &sess.Filter); err != nil {
		return search.Session{}, fmt.Errorf("decoding filter: %w", err)
	}
	sess.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return sess, nil
}

// InsertBatch stores listings in order, skipping ids already present.
func (s *Store) InsertBatch(listings []model.Listing) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning tx: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO listings
		(id, title, address, price, rooms, seller_type, features, lat, lng, url)
		VALUES (?,?,?,?,?,?,?,?,?,?)
	`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("preparing stmt: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, l := range listings {
		features, err := encodeFeatures(l.Features)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("encoding features of %s: %w", l.ID, err)
		}
		res, err := stmt.Exec(
			l.ID, l.Title, l.Address, l.Price, l.Rooms, string(l.Seller),
			features, l.Lat, l.Lng, l.URL,
		)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("inserting listing %s: %w", l.ID, err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing tx: %w", err)
	}
	return inserted, nil
}

// Listings returns every stored listing in insertion order.
func (s *Store) Listings() ([]model.Listing, error) {
	rows, err := s.db.Query(`
		SELECT id, title, address, price, rooms, seller_type, features, lat, lng, url
		FROM listings ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		var (
			l        model.Listing
			seller   string
			features sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.Title, &l.Address, &l.Price, &l.Rooms, &seller,
			&features, &l.Lat, &l.Lng, &l.URL); err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		l.Seller = model.SellerType(seller)
		if l.Features, err = decodeFeatures(features.String); err != nil {
			return nil, fmt.Errorf("decoding features of %s: %w", l.ID, err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// encodeFeatures stores tags as a JSON array so a tag may contain commas.
// An empty list is stored as NULL.
func encodeFeatures(features []string) (sql.NullString, error) {
	if len(features) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(features)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// decodeFeatures also reads the comma-joined form written by older sessions.
func decodeFeatures(raw string) ([]string, error) {
	switch {
	case raw == "":
		return nil, nil
	case !strings.HasPrefix(raw, "["):
		return strings.Split(raw, ","), nil
	}
	var features []string
	if err := json.Unmarshal([]byte(raw), &features); err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, nil
	}
	return features, nil
}

func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM listings").Scan(&count)
	return count, err
}

func (s *Store) Close() error {
	return s.db.Close()
}
