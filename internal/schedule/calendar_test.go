package schedule_test

import (
	"testing"
	"time"

	"github.com/campushub/venue-booking/internal/model"
	"github.com/campushub/venue-booking/internal/schedule"
)

// day anchors all test windows on a fixed future date so results do
// not depend on when the tests run.
var day = time.Date(2030, 5, 20, 0, 0, 0, 0, time.UTC)

func window(startHour, startMin, endHour, endMin int) model.TimeWindow {
	return model.TimeWindow{
		Start: day.Add(time.Duration(startHour)*time.Hour + time.Duration(startMin)*time.Minute),
		End:   day.Add(time.Duration(endHour)*time.Hour + time.Duration(endMin)*time.Minute),
	}
}

func TestCalendarQueryOverlap(t *testing.T) {
	ix := schedule.NewCalendarIndex()
	if err := ix.Insert("main-auditorium", window(10, 0, 12, 0), 1); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := ix.Insert("main-auditorium", window(14, 0, 16, 0), 2); err != nil {
		t.Fatalf("insert: %v", err)
	}

	cases := []struct {
		name string
		w    model.TimeWindow
		want []uint64
	}{
		{"inside first", window(10, 30, 11, 30), []uint64{1}},
		{"straddles first", window(9, 0, 13, 0), []uint64{1}},
		{"spans both", window(11, 0, 15, 0), []uint64{1, 2}},
		{"in the gap", window(12, 0, 14, 0), nil},
		{"ends at start", window(8, 0, 10, 0), nil},
		{"starts at end", window(16, 0, 18, 0), nil},
	}
	for _, tc := range cases {
		got := ix.QueryOverlap("main-auditorium", tc.w)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
			}
		}
	}

	// Other venues are independent.
	if got := ix.QueryOverlap("seminar-hall-a", window(10, 0, 12, 0)); len(got) != 0 {
		t.Fatalf("foreign venue reported conflicts: %v", got)
	}
}

func TestCalendarInsertRejectsOverlap(t *testing.T) {
	ix := schedule.NewCalendarIndex()
	if err := ix.Insert("main-auditorium", window(10, 0, 12, 0), 1); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err := ix.Insert("main-auditorium", window(11, 0, 13, 0), 2)
	if err == nil {
		t.Fatal("expected invariant violation for overlapping insert")
	}
	if _, ok := err.(*schedule.InvariantViolation); !ok {
		t.Fatalf("got %T, want *InvariantViolation", err)
	}
	// The failed insert must not have mutated the index.
	if got := ix.QueryOverlap("main-auditorium", window(12, 0, 13, 0)); len(got) != 0 {
		t.Fatalf("index mutated by failed insert: %v", got)
	}
}

func TestCalendarRemove(t *testing.T) {
	ix := schedule.NewCalendarIndex()
	if err := ix.Insert("conference-room", window(10, 0, 12, 0), 7); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !ix.Remove("conference-room", 7) {
		t.Fatal("remove reported no slot for an indexed request")
	}
	if ix.Remove("conference-room", 7) {
		t.Fatal("second remove reported a slot")
	}
	if got := ix.QueryOverlap("conference-room", window(10, 0, 12, 0)); len(got) != 0 {
		t.Fatalf("window still occupied after remove: %v", got)
	}
	// The freed window can be reinserted.
	if err := ix.Insert("conference-room", window(10, 0, 12, 0), 8); err != nil {
		t.Fatalf("reinsert after remove: %v", err)
	}
}
