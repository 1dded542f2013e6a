// Package timeline computes reveal offsets for an outro run.
package timeline

import "time"

const (
	// GroupStagger is added to every item in each non-empty group after the first.
	GroupStagger = 1000 * time.Millisecond
	// TrailingBuffer separates the last reveal window from the ending graphic.
	TrailingBuffer = 3000 * time.Millisecond
)

// Group is a named, ordered slice of the run's items (followers, subscribers).
type Group struct {
	Name  string
	Count int
}

// Entry is one item's reveal slot. Index is the item's position in the
// flattened cross-group order; Position is its position within Group.
type Entry struct {
	Group    string
	Index    int
	Position int
	Offset   time.Duration
}

// Timeline is the immutable schedule for one run.
type Timeline struct {
	Entries           []Entry
	EffectiveDuration time.Duration
	Interval          time.Duration
	Finish            time.Duration
}

// Empty reports whether the timeline schedules no cards.
func (t Timeline) Empty() bool { return len(t.Entries) == 0 }

// EffectiveDuration returns the spread used for totalItems reveals:
// min(timeTotal, timePer*totalItems), or zero when there is nothing to show.
func EffectiveDuration(totalItems int, timeTotal, timePer time.Duration) time.Duration {
	if totalItems <= 0 {
		return 0
	}
	timeTotal = max(timeTotal, 0)
	timePer = max(timePer, 0)

	d := timeTotal
	if spread := timePer * time.Duration(totalItems); spread < timeTotal {
		d = spread
	}
	return d
}

// Compute builds the timeline for the given groups. Item i of the flattened
// order is revealed at floor(effectiveDuration*i/total) plus one GroupStagger
// per non-empty group before its own. With no items the timeline is empty
// and finishes immediately.
func Compute(timeTotal, timePer time.Duration, groups ...Group) Timeline {
	total := 0
	for _, g := range groups {
		total += max(g.Count, 0)
	}
	if total == 0 {
		return Timeline{}
	}

	effective := EffectiveDuration(total, timeTotal, timePer)

	tl := Timeline{
		Entries:           make([]Entry, 0, total),
		EffectiveDuration: effective,
		Interval:          effective / time.Duration(total),
	}

	var stagger time.Duration
	seen := 0
	index := 0
	for _, g := range groups {
		if g.Count <= 0 {
			continue
		}
		if seen > 0 {
			stagger += GroupStagger
		}
		seen++

		for pos := 0; pos < g.Count; pos++ {
			base := time.Duration(int64(effective) * int64(index) / int64(total))
			tl.Entries = append(tl.Entries, Entry{
				Group:    g.Name,
				Index:    index,
				Position: pos,
				Offset:   base.Truncate(time.Millisecond) + stagger,
			})
			index++
		}
	}

	tl.Finish = effective + stagger + TrailingBuffer
	return tl
}
