package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rendis/rentscout/internal/engine/search"
	"github.com/rendis/rentscout/internal/model"
)

// SessionPaths are the files one search session writes.
type SessionPaths struct {
	DB  string
	Log string
}

// NewSessionPaths creates outputDir and returns timestamped db and log paths
// inside it.
func NewSessionPaths(outputDir string, now time.Time) (SessionPaths, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return SessionPaths{}, fmt.Errorf("creating output dir: %w", err)
	}
	base := fmt.Sprintf("rentscout_%s", now.Format("20060102_150405"))
	return SessionPaths{
		DB:  filepath.Join(outputDir, base+".db"),
		Log: filepath.Join(outputDir, base+".log"),
	}, nil
}

// SiblingPath returns dbPath with its .db extension replaced by ext.
func SiblingPath(dbPath, ext string) string {
	dir := filepath.Dir(dbPath)
	base := filepath.Base(dbPath)
	base = base[:len(base)-len(filepath.Ext(base))]
	return filepath.Join(dir, base+ext)
}

// LoadSession opens a session database and returns its search metadata and
// candidates in stored order.
func LoadSession(dbPath string) (search.Session, []model.Listing, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return search.Session{}, nil, fmt.Errorf("opening session: %w", err)
	}
	store, err := NewStore(dbPath)
	if err != nil {
		return search.Session{}, nil, err
	}
	defer store.Close()

	sess, err := store.LoadSearch()
	if err != nil {
		return search.Session{}, nil, err
	}
	listings, err := store.Listings()
	if err != nil {
		return search.Session{}, nil, err
	}
	return sess, listings, nil
}
