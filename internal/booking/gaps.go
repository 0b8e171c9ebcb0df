package booking

import "sort"

// Gap is a maximal run of unoccupied nights inside a queried horizon.
type Gap struct {
	Start  Date `json:"start"`
	End    Date `json:"end"`
	Nights int  `json:"nights"`
}

// FindGaps returns the maximal free sub-ranges of the horizon, in
// chronological order.
//
// Input order does not matter. Intervals that overlap each other or appear
// twice are tolerated: the sweep only ever advances its cursor, so a violated
// no-overlap invariant upstream degrades to a merge instead of corrupting the
// output. A zero-night gap is never emitted.
func FindGaps(intervals []Interval, h Horizon) []Gap {
	if h.Nights() <= 0 {
		return nil
	}

	relevant := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if Overlaps(iv, h.interval()) {
			relevant = append(relevant, iv)
		}
	}
	// Deterministic sweep order: start ascending, end ascending on ties.
	sort.Slice(relevant, func(i, j int) bool {
		if !relevant[i].Start.Equal(relevant[j].Start) {
			return relevant[i].Start.Before(relevant[j].Start)
		}
		return relevant[i].End.Before(relevant[j].End)
	})

	var gaps []Gap
	cursor := h.Start
	for _, iv := range relevant {
		if !cursor.Before(h.End) {
			break
		}
		if iv.Start.After(cursor) {
			gaps = append(gaps, Gap{
				Start:  cursor,
				End:    iv.Start,
				Nights: cursor.DaysUntil(iv.Start),
			})
		}
		cursor = maxDate(cursor, iv.End)
	}
	if cursor.Before(h.End) {
		gaps = append(gaps, Gap{
			Start:  cursor,
			End:    h.End,
			Nights: cursor.DaysUntil(h.End),
		})
	}
	return gaps
}

// NightsOccupied counts the distinct calendar nights inside the horizon that
// are covered by at least one interval. Nights covered by overlapping
// intervals count once: the computation goes through FindGaps, which merges.
func NightsOccupied(intervals []Interval, h Horizon) int {
	free := 0
	for _, g := range FindGaps(intervals, h) {
		free += g.Nights
	}
	return h.Nights() - free
}
