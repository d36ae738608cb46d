package history

import "github.com/fdg312/cookbook/internal/meals"

// upgradeLegacyEntries converts records still in the legacy {dates: [...]}
// shape into {entries: [...]}: each date becomes an entry with a fresh id and
// meal "unknown". A record that already has entries keeps them and its dates
// field is left untouched. Every record is then normalized so that count and
// lastCooked follow the entries. It is idempotent and reports whether
// anything changed, so callers persist only when needed.
func upgradeLegacyEntries(all map[string]*Record, newID func() string) bool {
	changed := false
	for key, rec := range all {
		if rec == nil {
			delete(all, key)
			changed = true
			continue
		}

		if rec.Dates != nil && len(rec.Entries) == 0 {
			rec.Entries = make([]Entry, 0, len(rec.Dates))
			for _, d := range rec.Dates {
				rec.Entries = append(rec.Entries, Entry{ID: newID(), Date: d, Meal: meals.Unknown})
			}
			rec.Dates = nil
			changed = true
		}
		if rec.normalize() {
			changed = true
		}
	}
	return changed
}
