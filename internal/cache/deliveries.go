// Package cache holds the process-local index from report ID to the delivery
// handle of its card in the moderation channel. It is advisory only: it is
// lost on restart and every consumer must fall back to the persisted record,
// which stays the source of truth.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Handle locates the card posted for a report.
type Handle struct {
	ChannelID int64
	MessageID int64
}

// Deliveries is a bounded LRU over report ID -> Handle. Eviction never
// affects correctness; a miss just means the edit path re-derives the
// location from the store.
type Deliveries struct {
	entries *lru.Cache[int64, Handle]
}

const defaultSize = 1024

func NewDeliveries(size int) (*Deliveries, error) {
	if size <= 0 {
		size = defaultSize
	}
	entries, err := lru.New[int64, Handle](size)
	if err != nil {
		return nil, err
	}
	return &Deliveries{entries: entries}, nil
}

func (d *Deliveries) Put(reportID int64, h Handle) {
	d.entries.Add(reportID, h)
}

func (d *Deliveries) Get(reportID int64) (Handle, bool) {
	return d.entries.Get(reportID)
}

func (d *Deliveries) Remove(reportID int64) {
	d.entries.Remove(reportID)
}

func (d *Deliveries) Len() int {
	return d.entries.Len()
}
