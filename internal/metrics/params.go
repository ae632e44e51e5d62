package metrics

import "github.com/gridstats-io/gridstats/internal/views"

// Params is the full parameter set of a metric invocation. Nil fields mean
// "unscoped"; RaceIDs narrows the season-resolved race set, it never widens
// it.
type Params struct {
	DriverID      *int  `json:"driver_id,omitempty"`
	ConstructorID *int  `json:"constructor_id,omitempty"`
	Season        *int  `json:"season,omitempty"`
	RaceIDs       []int `json:"race_ids,omitempty"`
}

// Map returns the canonical parameter mapping used for cache fingerprints.
// Only set parameters appear; an absent and a nil parameter are the same
// request and must share a fingerprint.
func (p Params) Map() map[string]any {
	m := make(map[string]any, 4)

	if p.DriverID != nil {
		m["driver_id"] = *p.DriverID
	}

	if p.ConstructorID != nil {
		m["constructor_id"] = *p.ConstructorID
	}

	if p.Season != nil {
		m["season"] = *p.Season
	}

	if p.RaceIDs != nil {
		m["race_ids"] = p.RaceIDs
	}

	return m
}

// Filter translates the parameters into a view filter.
func (p Params) Filter() views.Filter {
	return views.Filter{
		DriverID:      p.DriverID,
		ConstructorID: p.ConstructorID,
		Season:        p.Season,
		RaceIDs:       p.RaceIDs,
	}
}
