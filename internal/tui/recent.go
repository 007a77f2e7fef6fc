package tui

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const maxRecent = 10

// RecentEntry is a session database the user opened or created.
type RecentEntry struct {
	Path     string    `json:"path"`
	Address  string    `json:"address,omitempty"`
	OpenedAt time.Time `json:"opened_at"`
}

// recentFilePath is a variable so tests can point it at a temp dir.
var recentFilePath = func() string {
	cfg, _ := os.UserConfigDir()
	return filepath.Join(cfg, "rentscout", "recent.json")
}

// LoadRecent returns the recent sessions, newest first. A missing or
// unreadable file yields nil.
func LoadRecent() []RecentEntry {
	data, err := os.ReadFile(recentFilePath())
	if err != nil {
		return nil
	}
	var entries []RecentEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}

// SaveRecent moves dbPath to the front of the list. An empty address keeps
// the one already recorded for that path.
func SaveRecent(dbPath, address string) {
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		abs = dbPath
	}

	entries := LoadRecent()
	filtered := make([]RecentEntry, 0, len(entries)+1)
	for _, e := range entries {
		if e.Path == abs {
			if address == "" {
				address = e.Address
			}
			continue
		}
		filtered = append(filtered, e)
	}

	filtered = append([]RecentEntry{{Path: abs, Address: address, OpenedAt: time.Now()}}, filtered...)
	if len(filtered) > maxRecent {
		filtered = filtered[:maxRecent]
	}
	writeRecent(filtered)
}

// RemoveRecent forgets dbPath. The session file itself is left alone.
func RemoveRecent(dbPath string) {
	entries := LoadRecent()
	kept := entries[:0]
	for _, e := range entries {
		if e.Path != dbPath {
			kept = append(kept, e)
		}
	}
	writeRecent(kept)
}

func writeRecent(entries []RecentEntry) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return
	}
	path := recentFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0o644)
}
