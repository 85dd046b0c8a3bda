package schedule

import (
	"fmt"
	"sort"
	"sync"

	"github.com/campushub/venue-booking/internal/model"
)

// Slot pairs an approved window with the request that holds it. The
// calendar index exposes slots to availability views; the booking
// record itself lives in the store.
type Slot struct {
	Window    model.TimeWindow `json:"window"`
	RequestID uint64           `json:"request_id"`
}

// CalendarIndex is a per-venue, read-optimized view of the approved
// booking windows. Each venue maps to a slice of slots kept sorted by
// window start; because approved windows never overlap, the slice is
// sorted by end time as well, which lets overlap queries binary-search
// their lower bound instead of scanning the whole venue.
//
// The index is derived state: it is mutated only when a request
// transitions into or out of approved and can always be rebuilt from
// the store. It performs no I/O.
type CalendarIndex struct {
	mu      sync.RWMutex
	byVenue map[string][]Slot
}

// NewCalendarIndex returns an empty index.
func NewCalendarIndex() *CalendarIndex {
	return &CalendarIndex{byVenue: make(map[string][]Slot)}
}

// QueryOverlap returns the ids of approved bookings for venueID whose
// windows overlap w, in ascending start order. An empty slice means
// the window is free.
func (ix *CalendarIndex) QueryOverlap(venueID string, w model.TimeWindow) []uint64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var ids []uint64
	for _, s := range ix.overlapping(venueID, w) {
		ids = append(ids, s.RequestID)
	}
	return ids
}

// Overlapping returns the slots for venueID that overlap w, in
// ascending start order. Used by availability views to render a day's
// occupied windows.
func (ix *CalendarIndex) Overlapping(venueID string, w model.TimeWindow) []Slot {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	src := ix.overlapping(venueID, w)
	out := make([]Slot, len(src))
	copy(out, src)
	return out
}

// overlapping assumes ix.mu is held. Slots are sorted by start and,
// by the non-overlap invariant, by end; the first candidate is the
// first slot whose end lies after w.Start, and the scan stops at the
// first slot starting at or after w.End.
func (ix *CalendarIndex) overlapping(venueID string, w model.TimeWindow) []Slot {
	slots := ix.byVenue[venueID]
	lo := sort.Search(len(slots), func(i int) bool {
		return slots[i].Window.End.After(w.Start)
	})
	hi := lo
	for hi < len(slots) && slots[hi].Window.Start.Before(w.End) {
		hi++
	}
	return slots[lo:hi]
}

// Insert records an approved window for venueID. It is called only
// when a request transitions into approved; the conflict resolver must
// already have established exclusivity, so finding an overlap here is
// an InvariantViolation and the index is left unchanged.
func (ix *CalendarIndex) Insert(venueID string, w model.TimeWindow, requestID uint64) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if blocking := ix.overlapping(venueID, w); len(blocking) > 0 {
		return &InvariantViolation{Msg: fmt.Sprintf(
			"calendar insert for request %d on venue %s would overlap request %d",
			requestID, venueID, blocking[0].RequestID)}
	}
	slots := ix.byVenue[venueID]
	pos := sort.Search(len(slots), func(i int) bool {
		return slots[i].Window.Start.After(w.Start)
	})
	slots = append(slots, Slot{})
	copy(slots[pos+1:], slots[pos:])
	slots[pos] = Slot{Window: w, RequestID: requestID}
	ix.byVenue[venueID] = slots
	return nil
}

// Remove deletes the slot held by requestID on venueID, if present.
// It is called when a previously approved booking is revoked. The
// return value reports whether a slot was removed.
func (ix *CalendarIndex) Remove(venueID string, requestID uint64) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	slots := ix.byVenue[venueID]
	for i, s := range slots {
		if s.RequestID == requestID {
			ix.byVenue[venueID] = append(slots[:i], slots[i+1:]...)
			return true
		}
	}
	return false
}
