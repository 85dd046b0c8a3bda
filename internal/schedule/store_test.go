package schedule_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/campushub/venue-booking/internal/model"
	"github.com/campushub/venue-booking/internal/schedule"
)

// catalogMock serves the campus venues used throughout the tests
// without a database.
type catalogMock struct {
	venues map[string]*model.Venue
}

func (m *catalogMock) GetVenue(_ context.Context, id string) (*model.Venue, error) {
	v, ok := m.venues[id]
	if !ok {
		return nil, schedule.ErrVenueNotFound
	}
	return v, nil
}

// emitterMock records emitted lifecycle events.
type emitterMock struct {
	mu     sync.Mutex
	events []schedule.Event
}

func (m *emitterMock) Emit(_ context.Context, ev schedule.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *emitterMock) last() (schedule.Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		return schedule.Event{}, false
	}
	return m.events[len(m.events)-1], true
}

func testCatalog() *catalogMock {
	return &catalogMock{venues: map[string]*model.Venue{
		"main-auditorium": {ID: "main-auditorium", Name: "Main Auditorium", Capacity: 500, Status: model.VenueAvailable},
		"conference-room": {ID: "conference-room", Name: "Conference Room", Capacity: 20, Status: model.VenueAvailable},
		"computer-lab-1":  {ID: "computer-lab-1", Name: "Computer Lab 1", Capacity: 40, Status: model.VenueMaintenance},
	}}
}

var admin = schedule.Actor{ID: 1, Role: model.RoleAdmin}

func submit(t *testing.T, s *schedule.Store, venueID string, requester uint64, w model.TimeWindow, attendees uint32) *model.BookingRequest {
	t.Helper()
	req, _, err := s.Submit(context.Background(), schedule.Candidate{
		VenueID:       venueID,
		RequesterID:   requester,
		Window:        w,
		EventName:     "Tech Talk",
		AttendeeCount: attendees,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return req
}

// Scenario A: submit then approve; the calendar index holds the window.
func TestSubmitAndApprove(t *testing.T) {
	em := &emitterMock{}
	s := schedule.New(testCatalog(), em)

	r1 := submit(t, s, "main-auditorium", 10, window(10, 0, 12, 0), 200)
	if r1.Status != model.StatusPending {
		t.Fatalf("status = %s, want pending", r1.Status)
	}
	if r1.ID == 0 || r1.CreatedAt.IsZero() {
		t.Fatal("id and createdAt must be assigned on submission")
	}

	approved, err := s.Transition(context.Background(), r1.ID, schedule.ActionApprove, admin, "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != model.StatusApproved {
		t.Fatalf("status = %s, want approved", approved.Status)
	}
	if approved.DecidedAt == nil {
		t.Fatal("decidedAt must be set on leaving pending")
	}
	if got := s.QueryOverlap("main-auditorium", window(10, 0, 12, 0)); len(got) != 1 || got[0] != r1.ID {
		t.Fatalf("calendar index = %v, want [%d]", got, r1.ID)
	}
	if ev, ok := em.last(); !ok || ev.From != model.StatusPending || ev.To != model.StatusApproved {
		t.Fatalf("last event = %+v, want pending->approved", ev)
	}
}

// Scenario B: an overlapping submission succeeds with an advisory
// conflict, but its approval fails with SchedulingConflict.
func TestOverlappingApprovalConflicts(t *testing.T) {
	s := schedule.New(testCatalog())
	r1 := submit(t, s, "main-auditorium", 10, window(10, 0, 12, 0), 200)
	if _, err := s.Transition(context.Background(), r1.ID, schedule.ActionApprove, admin, ""); err != nil {
		t.Fatalf("approve r1: %v", err)
	}

	r2, advisory, err := s.Submit(context.Background(), schedule.Candidate{
		VenueID:       "main-auditorium",
		RequesterID:   11,
		Window:        window(11, 0, 13, 0),
		EventName:     "Guest Lecture",
		AttendeeCount: 150,
	})
	if err != nil {
		t.Fatalf("submit r2: %v", err)
	}
	if len(advisory) != 1 || advisory[0] != r1.ID {
		t.Fatalf("advisory = %v, want [%d]", advisory, r1.ID)
	}

	_, err = s.Transition(context.Background(), r2.ID, schedule.ActionApprove, admin, "")
	var conflict *schedule.SchedulingConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("approve r2: got %v, want SchedulingConflict", err)
	}
	if len(conflict.BlockingIDs) != 1 || conflict.BlockingIDs[0] != r1.ID {
		t.Fatalf("blocking ids = %v, want [%d]", conflict.BlockingIDs, r1.ID)
	}
	got, _ := s.Get(r2.ID)
	if got.Status != model.StatusPending {
		t.Fatalf("r2 status = %s, want pending after failed approval", got.Status)
	}
}

// Scenario C: rejection records the reason and leaves the index alone.
func TestReject(t *testing.T) {
	s := schedule.New(testCatalog())
	r := submit(t, s, "main-auditorium", 10, window(11, 0, 13, 0), 150)

	if _, err := s.Transition(context.Background(), r.ID, schedule.ActionReject, admin, ""); err == nil {
		t.Fatal("reject without a reason must fail")
	}

	rejected, err := s.Transition(context.Background(), r.ID, schedule.ActionReject, admin, "venue unavailable")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != model.StatusRejected {
		t.Fatalf("status = %s, want rejected", rejected.Status)
	}
	if rejected.DecisionReason == nil || *rejected.DecisionReason != "venue unavailable" {
		t.Fatalf("decisionReason = %v, want \"venue unavailable\"", rejected.DecisionReason)
	}
	if got := s.QueryOverlap("main-auditorium", window(11, 0, 13, 0)); len(got) != 0 {
		t.Fatalf("calendar index changed by rejection: %v", got)
	}
}

// Scenario D: maintenance venues reject submissions outright.
func TestSubmitValidation(t *testing.T) {
	s := schedule.New(testCatalog())
	ctx := context.Background()

	cases := []struct {
		name string
		c    schedule.Candidate
	}{
		{"maintenance venue", schedule.Candidate{
			VenueID: "computer-lab-1", RequesterID: 10, Window: window(10, 0, 12, 0),
			EventName: "Workshop", AttendeeCount: 30,
		}},
		{"over capacity", schedule.Candidate{
			VenueID: "conference-room", RequesterID: 10, Window: window(10, 0, 12, 0),
			EventName: "All Hands", AttendeeCount: 50,
		}},
		{"zero attendees", schedule.Candidate{
			VenueID: "conference-room", RequesterID: 10, Window: window(10, 0, 12, 0),
			EventName: "Empty", AttendeeCount: 0,
		}},
		{"inverted window", schedule.Candidate{
			VenueID: "conference-room", RequesterID: 10,
			Window:    model.TimeWindow{Start: day.Add(12 * time.Hour), End: day.Add(10 * time.Hour)},
			EventName: "Backwards", AttendeeCount: 5,
		}},
		{"window in the past", schedule.Candidate{
			VenueID: "conference-room", RequesterID: 10,
			Window: model.TimeWindow{
				Start: time.Date(2020, 5, 20, 10, 0, 0, 0, time.UTC),
				End:   time.Date(2020, 5, 20, 12, 0, 0, 0, time.UTC),
			},
			EventName: "Retrospective", AttendeeCount: 5,
		}},
		{"missing event name", schedule.Candidate{
			VenueID: "conference-room", RequesterID: 10, Window: window(10, 0, 12, 0),
			AttendeeCount: 5,
		}},
	}
	for _, tc := range cases {
		_, _, err := s.Submit(ctx, tc.c)
		var ve *schedule.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: got %v, want ValidationError", tc.name, err)
		}
	}

	if _, _, err := s.Submit(ctx, schedule.Candidate{
		VenueID: "gymnasium", RequesterID: 10, Window: window(10, 0, 12, 0),
		EventName: "Match", AttendeeCount: 5,
	}); !errors.Is(err, schedule.ErrVenueNotFound) {
		t.Fatalf("unknown venue: got %v, want ErrVenueNotFound", err)
	}

	// No records may exist after the failed submissions.
	if pending := s.ListPending(); len(pending) != 0 {
		t.Fatalf("pending = %d requests after failed submissions, want 0", len(pending))
	}
}

// Scenario E: after r1 is approved, two racy approvals of overlapping
// pending requests must not both succeed.
func TestConcurrentApprovalRace(t *testing.T) {
	s := schedule.New(testCatalog())
	ctx := context.Background()

	r1 := submit(t, s, "main-auditorium", 10, window(10, 0, 12, 0), 200)
	if _, err := s.Transition(ctx, r1.ID, schedule.ActionApprove, admin, ""); err != nil {
		t.Fatalf("approve r1: %v", err)
	}
	if _, err := s.Transition(ctx, r1.ID, schedule.ActionRevoke, admin, ""); err != nil {
		t.Fatalf("revoke r1: %v", err)
	}

	r2 := submit(t, s, "main-auditorium", 11, window(11, 0, 13, 0), 100)
	r4 := submit(t, s, "main-auditorium", 12, window(11, 30, 12, 30), 80)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uint64{r2.ID, r4.ID} {
		wg.Add(1)
		go func(i int, id uint64) {
			defer wg.Done()
			_, errs[i] = s.Transition(ctx, id, schedule.ActionApprove, admin, "")
		}(i, id)
	}
	wg.Wait()

	approved := 0
	for i, err := range errs {
		if err == nil {
			approved++
			continue
		}
		var conflict *schedule.SchedulingConflict
		if !errors.As(err, &conflict) {
			t.Fatalf("approval %d: got %v, want nil or SchedulingConflict", i, err)
		}
	}
	if approved != 1 {
		t.Fatalf("%d of the racing approvals succeeded, want exactly 1", approved)
	}
}

// Transitions on different venues must not serialize through any
// shared lock: run many decision rounds on two venues in parallel and
// require every single one to succeed. The race detector covers the
// narrow store-mutex windows inside the transition path.
func TestIndependentVenueTransitions(t *testing.T) {
	s := schedule.New(testCatalog())
	ctx := context.Background()

	const rounds = 25
	venues := []string{"main-auditorium", "conference-room"}
	var wg sync.WaitGroup
	for vi, venue := range venues {
		wg.Add(1)
		go func(vi int, venue string) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				w := window(9+i%8, 0, 9+i%8, 30)
				req, _, err := s.Submit(ctx, schedule.Candidate{
					VenueID:       venue,
					RequesterID:   uint64(10 + vi),
					Window:        w,
					EventName:     fmt.Sprintf("Round %d", i),
					AttendeeCount: 5,
				})
				if err != nil {
					t.Errorf("%s submit %d: %v", venue, i, err)
					return
				}
				if _, err := s.Transition(ctx, req.ID, schedule.ActionApprove, admin, ""); err != nil {
					t.Errorf("%s approve %d: %v", venue, i, err)
					return
				}
				if _, err := s.Transition(ctx, req.ID, schedule.ActionRevoke, admin, ""); err != nil {
					t.Errorf("%s revoke %d: %v", venue, i, err)
					return
				}
			}
		}(vi, venue)
	}
	wg.Wait()

	for _, venue := range venues {
		if held := s.QueryOverlap(venue, window(9, 0, 18, 0)); len(held) != 0 {
			t.Fatalf("%s still holds windows after all revokes: %v", venue, held)
		}
	}
}

// Stress the per-venue critical section: many goroutines submit and
// approve overlapping windows; the approved set must stay pairwise
// non-overlapping.
func TestApprovedSetNeverOverlaps(t *testing.T) {
	s := schedule.New(testCatalog())
	ctx := context.Background()

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Windows shifted by 30 minutes each, all overlapping
			// their neighbours.
			w := model.TimeWindow{
				Start: day.Add(time.Duration(9*60+i*30) * time.Minute),
				End:   day.Add(time.Duration(9*60+i*30+60) * time.Minute),
			}
			req, _, err := s.Submit(ctx, schedule.Candidate{
				VenueID:       "main-auditorium",
				RequesterID:   uint64(100 + i),
				Window:        w,
				EventName:     fmt.Sprintf("Session %d", i),
				AttendeeCount: 10,
			})
			if err != nil {
				t.Errorf("submit %d: %v", i, err)
				return
			}
			_, err = s.Transition(ctx, req.ID, schedule.ActionApprove, admin, "")
			var conflict *schedule.SchedulingConflict
			if err != nil && !errors.As(err, &conflict) {
				t.Errorf("approve %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	var slots []schedule.Slot
	for _, req := range s.ListByVenue("main-auditorium") {
		if req.Status == model.StatusApproved {
			slots = append(slots, schedule.Slot{Window: req.Window, RequestID: req.ID})
		}
	}
	if len(slots) == 0 {
		t.Fatal("no approvals succeeded")
	}
	for i := range slots {
		for j := i + 1; j < len(slots); j++ {
			if slots[i].Window.Overlaps(slots[j].Window) {
				t.Fatalf("approved requests %d and %d overlap", slots[i].RequestID, slots[j].RequestID)
			}
		}
	}
}

func TestCancelIdempotence(t *testing.T) {
	s := schedule.New(testCatalog())
	ctx := context.Background()
	r := submit(t, s, "conference-room", 10, window(10, 0, 12, 0), 5)

	requester := schedule.Actor{ID: 10, Role: model.RoleStudent}
	first, err := s.Transition(ctx, r.ID, schedule.ActionCancel, requester, "")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if first.Status != model.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", first.Status)
	}

	_, err = s.Transition(ctx, r.ID, schedule.ActionCancel, requester, "")
	var illegal *schedule.IllegalTransition
	if !errors.As(err, &illegal) {
		t.Fatalf("second cancel: got %v, want IllegalTransition", err)
	}
	got, _ := s.Get(r.ID)
	if got.DecidedAt == nil || !got.DecidedAt.Equal(*first.DecidedAt) {
		t.Fatal("second cancel mutated the record")
	}
}

func TestAuthorization(t *testing.T) {
	s := schedule.New(testCatalog())
	ctx := context.Background()
	r := submit(t, s, "conference-room", 10, window(10, 0, 12, 0), 5)

	student := schedule.Actor{ID: 99, Role: model.RoleStudent}
	var denied *schedule.PermissionDenied
	if _, err := s.Transition(ctx, r.ID, schedule.ActionApprove, student, ""); !errors.As(err, &denied) {
		t.Fatalf("student approval: got %v, want PermissionDenied", err)
	}
	// A stranger may not cancel someone else's request.
	if _, err := s.Transition(ctx, r.ID, schedule.ActionCancel, student, ""); !errors.As(err, &denied) {
		t.Fatalf("foreign cancel: got %v, want PermissionDenied", err)
	}
	// An admin may cancel on the requester's behalf.
	if _, err := s.Transition(ctx, r.ID, schedule.ActionCancel, admin, ""); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
}

func TestRevokeFreesWindow(t *testing.T) {
	s := schedule.New(testCatalog())
	ctx := context.Background()

	r1 := submit(t, s, "conference-room", 10, window(10, 0, 12, 0), 5)
	if _, err := s.Transition(ctx, r1.ID, schedule.ActionApprove, admin, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	revoked, err := s.Transition(ctx, r1.ID, schedule.ActionRevoke, admin, "double booked by facilities")
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked.Status != model.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", revoked.Status)
	}
	if got := s.QueryOverlap("conference-room", window(10, 0, 12, 0)); len(got) != 0 {
		t.Fatalf("window still held after revoke: %v", got)
	}

	// The freed window is approvable again.
	r2 := submit(t, s, "conference-room", 11, window(10, 0, 12, 0), 5)
	if _, err := s.Transition(ctx, r2.ID, schedule.ActionApprove, admin, ""); err != nil {
		t.Fatalf("approve after revoke: %v", err)
	}
}

func TestListings(t *testing.T) {
	s := schedule.New(testCatalog())
	r1 := submit(t, s, "conference-room", 10, window(9, 0, 10, 0), 5)
	r2 := submit(t, s, "conference-room", 11, window(10, 0, 11, 0), 5)
	r3 := submit(t, s, "main-auditorium", 10, window(9, 0, 10, 0), 50)

	byVenue := s.ListByVenue("conference-room")
	if len(byVenue) != 2 || byVenue[0].ID != r2.ID || byVenue[1].ID != r1.ID {
		t.Fatalf("ListByVenue returned %d entries, want r2 then r1", len(byVenue))
	}
	mine := s.ListByRequester(10)
	if len(mine) != 2 || mine[0].ID != r3.ID || mine[1].ID != r1.ID {
		t.Fatalf("ListByRequester returned %d entries, want r3 then r1", len(mine))
	}
	if pending := s.ListPending(); len(pending) != 3 {
		t.Fatalf("ListPending = %d, want 3", len(pending))
	}

	if _, err := s.Get(9999); !errors.Is(err, schedule.ErrNotFound) {
		t.Fatalf("Get unknown id: got %v, want ErrNotFound", err)
	}
}
