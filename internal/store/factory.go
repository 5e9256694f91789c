package store

import (
	"reportdesk.app/reportdesk/core/db"
)

type Stores struct {
	q db.Querier
}

// NewStores builds the store set over a pool or an open transaction.
func NewStores(q db.Querier) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Reports() ReportStore {
	return newReportStore(s.q)
}

func (s *Stores) Configs() ConfigStore {
	return newConfigStore(s.q)
}
