package domain

import (
	"sort"
)

// History maps a calendar day to what was stored for it.
// Keys are fixed-width YYYY-MM-DD strings, so string order is date order.
type History map[DateKey]StoredRecord

// Document is the single persisted object per user.
type Document struct {
	History History `json:"history"`
}

// UpsertToday replaces the entry for today. It is the only write path into a history.
func (h History) UpsertToday(today DateKey, rec DailyRecord) {
	rec.Date = today
	h[today] = rec.Stored()
}

func (h History) RecordOn(key DateKey) (StoredRecord, bool) {
	rec, ok := h[key]
	return rec, ok
}

// Materialized returns the full record for key, or the defaults when nothing was stored.
func (h History) Materialized(key DateKey) DailyRecord {
	rec, ok := h[key]
	if !ok {
		d := DefaultRecord()
		d.Date = key
		return d
	}

	m := Materialize(&rec)
	m.Date = key
	return m
}

func (h History) EarliestKey() (DateKey, bool) {
	var earliest DateKey
	found := false

	for k := range h {
		if !k.Valid() {
			continue
		}
		if !found || k.Before(earliest) {
			earliest = k
			found = true
		}
	}

	return earliest, found
}

// Keys returns valid keys in chronological order.
func (h History) Keys() []DateKey {
	keys := make([]DateKey, 0, len(h))
	for k := range h {
		if k.Valid() {
			keys = append(keys, k)
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})

	return keys
}

// Clone copies the map and every stored tracker so callers can hand out snapshots.
func (h History) Clone() History {
	out := make(History, len(h))
	for k, rec := range h {
		out[k] = StoredRecord{
			Date:      rec.Date,
			Academic:  cloneTracker(rec.Academic),
			Physical:  cloneTracker(rec.Physical),
			Character: cloneTracker(rec.Character),
			Mindset:   cloneTracker(rec.Mindset),
		}
	}
	return out
}

func cloneTracker(t *StoredTracker) *StoredTracker {
	if t == nil {
		return nil
	}

	c := &StoredTracker{}
	if t.Progress != nil {
		c.Progress = ptr(*t.Progress)
	}
	if t.Goal != nil {
		c.Goal = ptr(*t.Goal)
	}
	if t.SocialCheck != nil {
		c.SocialCheck = ptr(*t.SocialCheck)
	}
	if t.Is100 != nil {
		c.Is100 = ptr(*t.Is100)
	}
	return c
}
