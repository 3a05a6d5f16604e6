// Package state persists the per-offer bookability snapshot between runs.
package state

import (
	"bytes"
	"context"
	"encoding/json"
	"time"
)

// Entry is the last known bookability of one offer key.
type Entry struct {
	Bookable bool      `json:"bookable"`
	LastSeen time.Time `json:"lastSeen"`
}

// Snapshot maps offer keys to their last known entry.
type Snapshot map[string]Entry

// Store loads and saves the snapshot.
//
// Load never fails on missing or unreadable data: it logs a warning and
// returns an empty snapshot so that a broken store cannot block alerts.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

func decode(data []byte) (Snapshot, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Snapshot{}, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if snap == nil {
		snap = Snapshot{}
	}
	return snap, nil
}

func encode(snap Snapshot) ([]byte, error) {
	if snap == nil {
		snap = Snapshot{}
	}
	return json.MarshalIndent(snap, "", "  ")
}
