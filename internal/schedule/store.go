package schedule

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/campushub/venue-booking/internal/model"
)

// Store is the authoritative owner of all booking requests. Records
// are kept in memory keyed by id with per-venue and per-requester
// secondary indices; rejected and cancelled requests are retained for
// audit and never deleted. All status mutation goes through
// Transition, which applies the approval state machine and keeps the
// calendar index consistent.
//
// Concurrency: the record maps are guarded by a short-held RWMutex so
// submissions never block each other. Transitions take a per-venue
// mutex as their critical section, so two concurrent decisions on one
// venue serialize while transitions on different venues proceed
// independently; the store mutex is held only for the brief map
// lookups and record field writes inside it.
type Store struct {
	catalog  VenueCatalog
	emitters []Emitter
	index    *CalendarIndex
	resolver *Resolver

	mu          sync.RWMutex
	requests    map[uint64]*model.BookingRequest
	byVenue     map[string][]uint64
	byRequester map[uint64][]uint64
	nextID      uint64

	venueMuMu  sync.Mutex
	venueLocks map[string]*sync.Mutex
}

// New builds a store over the given venue catalog. Every emitter
// receives each committed lifecycle event; a nil or empty list
// disables emission.
func New(catalog VenueCatalog, emitters ...Emitter) *Store {
	s := &Store{
		catalog:     catalog,
		emitters:    emitters,
		index:       NewCalendarIndex(),
		requests:    make(map[uint64]*model.BookingRequest),
		byVenue:     make(map[string][]uint64),
		byRequester: make(map[uint64][]uint64),
		venueLocks:  make(map[string]*sync.Mutex),
	}
	s.resolver = NewResolver(s.index, s)
	return s
}

// Resolver exposes the store's conflict resolver for advisory checks.
func (s *Store) Resolver() *Resolver { return s.resolver }

// Candidate carries the caller-supplied fields of a submission. The
// store assigns ID, CreatedAt and the initial pending status.
type Candidate struct {
	VenueID       string
	RequesterID   uint64
	Window        model.TimeWindow
	EventName     string
	Description   string
	AttendeeCount uint32
}

// Submit validates the candidate against immutable venue metadata and,
// on success, records it as pending. The returned advisory slice lists
// requests (approved first, then pending) whose windows overlap the
// candidate's; advisory conflicts warn the submitter but never block.
// Validation failures return a ValidationError with nothing recorded;
// an unknown venue returns ErrVenueNotFound.
func (s *Store) Submit(ctx context.Context, c Candidate) (*model.BookingRequest, []uint64, error) {
	if c.EventName == "" {
		return nil, nil, &ValidationError{Reason: "event name is required"}
	}
	if !c.Window.Valid() {
		return nil, nil, &ValidationError{Reason: "window must start before it ends, on whole minutes"}
	}
	if !c.Window.Start.After(time.Now().UTC()) {
		return nil, nil, &ValidationError{Reason: "window must lie in the future"}
	}
	venue, err := s.catalog.GetVenue(ctx, c.VenueID)
	if err != nil {
		return nil, nil, err
	}
	if venue.Status == model.VenueMaintenance {
		return nil, nil, &ValidationError{Reason: fmt.Sprintf("venue %s is under maintenance", venue.Name)}
	}
	if c.AttendeeCount == 0 {
		return nil, nil, &ValidationError{Reason: "attendee count must be positive"}
	}
	if c.AttendeeCount > venue.Capacity {
		return nil, nil, &ValidationError{Reason: fmt.Sprintf(
			"attendee count %d exceeds venue capacity %d", c.AttendeeCount, venue.Capacity)}
	}

	s.mu.Lock()
	s.nextID++
	req := &model.BookingRequest{
		ID:            s.nextID,
		VenueID:       c.VenueID,
		RequesterID:   c.RequesterID,
		Window:        c.Window,
		EventName:     c.EventName,
		Description:   c.Description,
		AttendeeCount: c.AttendeeCount,
		Status:        model.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	s.requests[req.ID] = req
	s.byVenue[req.VenueID] = append(s.byVenue[req.VenueID], req.ID)
	s.byRequester[req.RequesterID] = append(s.byRequester[req.RequesterID], req.ID)
	out := copyRequest(req)
	s.mu.Unlock()

	advisory := s.resolver.CheckAgainstApproved(req.VenueID, req.Window)
	advisory = append(advisory, s.resolver.CheckAgainstPending(req.VenueID, req.Window, req.ID)...)

	s.emit(ctx, Event{
		RequestID:   out.ID,
		VenueID:     out.VenueID,
		RequesterID: out.RequesterID,
		From:        "",
		To:          model.StatusPending,
		ActorID:     out.RequesterID,
		OccurredAt:  out.CreatedAt,
	})
	return out, advisory, nil
}

// Transition applies action to the request with the given id on behalf
// of actor. The state machine and the actor's capability are checked
// first; approve then consults the calendar index under the venue's
// lock and commits index and record together, so the transition is
// all-or-nothing. The lifecycle event is emitted after commit.
func (s *Store) Transition(ctx context.Context, id uint64, action Action, actor Actor, reason string) (*model.BookingRequest, error) {
	s.mu.RLock()
	req, ok := s.requests[id]
	var venueID string
	if ok {
		venueID = req.VenueID
	}
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	out, ev, err := s.transitionLocked(venueID, id, action, actor, reason)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, ev)
	return out, nil
}

// transitionLocked performs the check-then-commit sequence under the
// venue's mutex, which is the critical section: transitions on other
// venues never wait on it. The store mutex is taken only for the
// record lookup and the final field writes; the status read cannot go
// stale between them because every mutation of a venue's requests runs
// under that venue's mutex. Returning before any mutation on every
// error path keeps the operation atomic with respect to store and
// index.
func (s *Store) transitionLocked(venueID string, id uint64, action Action, actor Actor, reason string) (*model.BookingRequest, Event, error) {
	vmu := s.venueLock(venueID)
	vmu.Lock()
	defer vmu.Unlock()

	s.mu.RLock()
	req, ok := s.requests[id]
	var from model.BookingStatus
	if ok {
		from = req.Status
	}
	s.mu.RUnlock()
	if !ok {
		return nil, Event{}, ErrNotFound
	}

	to, err := nextStatus(from, action)
	if err != nil {
		return nil, Event{}, err
	}
	// Authorization and the index checks below touch only immutable
	// fields of the record.
	if err := authorize(actor, action, req); err != nil {
		return nil, Event{}, err
	}
	if action == ActionReject && reason == "" {
		return nil, Event{}, &ValidationError{Reason: "rejection requires a reason"}
	}

	switch action {
	case ActionApprove:
		// Final authority: re-check against the approved set at
		// decision time, then insert. The insert re-verifies as a
		// defensive guard; its failure means a concurrency bug.
		if blocking := s.index.QueryOverlap(req.VenueID, req.Window); len(blocking) > 0 {
			return nil, Event{}, &SchedulingConflict{VenueID: req.VenueID, BlockingIDs: blocking}
		}
		if err := s.index.Insert(req.VenueID, req.Window, req.ID); err != nil {
			log.Printf("schedule: %v", err)
			return nil, Event{}, err
		}
	case ActionRevoke:
		if !s.index.Remove(req.VenueID, req.ID) {
			err := &InvariantViolation{Msg: fmt.Sprintf(
				"approved request %d missing from calendar index for venue %s", req.ID, req.VenueID)}
			log.Printf("schedule: %v", err)
			return nil, Event{}, err
		}
	}

	s.mu.Lock()
	req.Status = to
	if from == model.StatusPending {
		now := time.Now().UTC()
		req.DecidedAt = &now
	}
	if reason != "" && (action == ActionReject || action == ActionRevoke) {
		r := reason
		req.DecisionReason = &r
	}
	out := copyRequest(req)
	s.mu.Unlock()

	ev := Event{
		RequestID:   out.ID,
		VenueID:     out.VenueID,
		RequesterID: out.RequesterID,
		From:        from,
		To:          to,
		ActorID:     actor.ID,
		Reason:      reason,
		OccurredAt:  time.Now().UTC(),
	}
	return out, ev, nil
}

// Get returns a copy of the request with the given id.
func (s *Store) Get(id uint64) (*model.BookingRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRequest(req), nil
}

// ListByVenue returns all requests for venueID, newest first.
func (s *Store) ListByVenue(venueID string) []*model.BookingRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byVenue[venueID])
}

// ListByRequester returns all requests submitted by requesterID,
// newest first.
func (s *Store) ListByRequester(requesterID uint64) []*model.BookingRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byRequester[requesterID])
}

// ListPending returns every pending request across all venues in
// submission order, the admin review queue.
func (s *Store) ListPending() []*model.BookingRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.BookingRequest
	for _, req := range s.requests {
		if req.Status == model.StatusPending {
			out = append(out, copyRequest(req))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// QueryOverlap reports the approved bookings on venueID overlapping w.
// Read-only; exposed for calendar and availability views.
func (s *Store) QueryOverlap(venueID string, w model.TimeWindow) []uint64 {
	return s.index.QueryOverlap(venueID, w)
}

// ApprovedSlots returns the approved windows on venueID overlapping w,
// in ascending start order.
func (s *Store) ApprovedSlots(venueID string, w model.TimeWindow) []Slot {
	return s.index.Overlapping(venueID, w)
}

// pendingForVenue implements pendingSource for the resolver. Pointers
// are shared with the store; the resolver only reads them.
func (s *Store) pendingForVenue(venueID string) []*model.BookingRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.BookingRequest
	for _, id := range s.byVenue[venueID] {
		if req := s.requests[id]; req != nil && req.Status == model.StatusPending {
			out = append(out, req)
		}
	}
	return out
}

// collect copies the identified requests, newest first. Caller must
// hold at least a read lock.
func (s *Store) collect(ids []uint64) []*model.BookingRequest {
	out := make([]*model.BookingRequest, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if req, ok := s.requests[ids[i]]; ok {
			out = append(out, copyRequest(req))
		}
	}
	return out
}

// venueLock returns the mutex serializing decisions for venueID,
// creating it on first use.
func (s *Store) venueLock(venueID string) *sync.Mutex {
	s.venueMuMu.Lock()
	defer s.venueMuMu.Unlock()
	mu, ok := s.venueLocks[venueID]
	if !ok {
		mu = &sync.Mutex{}
		s.venueLocks[venueID] = mu
	}
	return mu
}

// emit delivers ev to every configured emitter. Failures are logged
// and swallowed: a committed transition is never rolled back because a
// downstream collaborator is unavailable.
func (s *Store) emit(ctx context.Context, ev Event) {
	for _, em := range s.emitters {
		if em == nil {
			continue
		}
		if err := em.Emit(ctx, ev); err != nil {
			log.Printf("schedule: emit lifecycle event for request %d failed: %v", ev.RequestID, err)
		}
	}
}

// copyRequest returns a defensive copy so callers cannot mutate store
// state through returned pointers.
func copyRequest(req *model.BookingRequest) *model.BookingRequest {
	out := *req
	if req.DecidedAt != nil {
		t := *req.DecidedAt
		out.DecidedAt = &t
	}
	if req.DecisionReason != nil {
		r := *req.DecisionReason
		out.DecisionReason = &r
	}
	return &out
}
