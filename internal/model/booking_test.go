package model_test

import (
	"testing"
	"time"

	"github.com/campushub/venue-booking/internal/model"
)

func win(startHour, endHour int) model.TimeWindow {
	day := time.Date(2030, 5, 20, 0, 0, 0, 0, time.UTC)
	return model.TimeWindow{Start: day.Add(time.Duration(startHour) * time.Hour), End: day.Add(time.Duration(endHour) * time.Hour)}
}

func TestWindowOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b model.TimeWindow
		want bool
	}{
		{"identical", win(10, 12), win(10, 12), true},
		{"contained", win(10, 14), win(11, 12), true},
		{"partial", win(10, 12), win(11, 13), true},
		{"touching boundary", win(10, 12), win(12, 14), false},
		{"disjoint", win(8, 9), win(10, 11), false},
	}
	for _, tc := range cases {
		if got := tc.a.Overlaps(tc.b); got != tc.want {
			t.Errorf("%s: a.Overlaps(b) = %v, want %v", tc.name, got, tc.want)
		}
		// Overlap is symmetric.
		if got := tc.b.Overlaps(tc.a); got != tc.want {
			t.Errorf("%s: b.Overlaps(a) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestWindowValid(t *testing.T) {
	good := win(10, 12)
	if !good.Valid() {
		t.Fatal("well-formed window reported invalid")
	}
	if (model.TimeWindow{Start: good.End, End: good.Start}).Valid() {
		t.Fatal("inverted window reported valid")
	}
	if (model.TimeWindow{Start: good.Start, End: good.Start}).Valid() {
		t.Fatal("empty window reported valid")
	}
	odd := model.TimeWindow{Start: good.Start.Add(30 * time.Second), End: good.End}
	if odd.Valid() {
		t.Fatal("sub-minute start reported valid")
	}
	if (model.TimeWindow{}).Valid() {
		t.Fatal("zero window reported valid")
	}
}

func TestStatusTerminal(t *testing.T) {
	if model.StatusPending.Terminal() {
		t.Fatal("pending must not be terminal")
	}
	for _, s := range []model.BookingStatus{model.StatusApproved, model.StatusRejected, model.StatusCancelled} {
		if !s.Terminal() {
			t.Fatalf("%s must be terminal", s)
		}
	}
}
