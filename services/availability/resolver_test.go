package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"facilities/models"

	"go.uber.org/zap"
)

type sliceSource []models.AvailabilitySlot

func (s sliceSource) ListAvailabilitySlots(context.Context) ([]models.AvailabilitySlot, error) {
	return s, nil
}

type failingSource struct{}

func (failingSource) ListAvailabilitySlots(context.Context) ([]models.AvailabilitySlot, error) {
	return nil, errors.New("csv unreadable")
}

func at(day, hour int) time.Time {
	return time.Date(2025, 6, day, hour, 0, 0, 0, time.UTC)
}

func slot(id string, skills []string, zone string, day, from, to int) models.AvailabilitySlot {
	return models.AvailabilitySlot{
		TechnicianID:   id,
		TechnicianName: "Tech " + id,
		Skillset:       skills,
		Zone:           zone,
		WindowStart:    at(day, from),
		WindowEnd:      at(day, to),
	}
}

func fixtureSlots() sliceSource {
	return sliceSource{
		slot("T1", []string{"HVAC", "AC Maintenance"}, "Dubai Marina", 2, 8, 12),
		slot("T2", []string{"ac"}, "Marina", 2, 13, 18),
		slot("T3", []string{"Maintenance"}, "Marina", 3, 10, 13),
		slot("T4", []string{"Plumbing"}, "JLT", 3, 8, 18),
		slot("T5", []string{"AC Maintenance"}, "Marina", 6, 9, 17),
		slot("T6", []string{"AC Maintenance"}, "Marina", 9, 14, 17),
		slot("T7", []string{"AC Maintenance"}, "Marina", 3, 15, 18),
	}
}

var acMaintenance = models.ServiceRequirement{
	ServiceID:                "SVC007",
	ServiceName:              "AC Maintenance",
	RequiredSkills:           []string{"AC Maintenance"},
	EstimatedDurationMinutes: 120,
}

func newTestResolver(src SlotSource, now time.Time) *Resolver {
	r := NewResolver(src, time.Friday, zap.NewNop())
	r.Now = func() time.Time { return now }
	return r
}

func TestTermsMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"HVAC", "ac", false},
		{"AC Maintenance", "Maintenance", true},
		{"maintenance", "AC Maintenance", true},
		{"Marina", "Dubai Marina", true},
		{"dubai marina", "MARINA", true},
		{"Plumbing", "Electrical", false},
		{"", "Marina", false},
		{"Jumeirah Lake Towers", "Lake", true},
	}
	for _, tt := range tests {
		if got := TermsMatch(tt.a, tt.b); got != tt.want {
			t.Errorf("TermsMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFindExact(t *testing.T) {
	r := newTestResolver(fixtureSlots(), at(1, 8))
	hvac := models.ServiceRequirement{ServiceID: "SVC005", RequiredSkills: []string{"HVAC"}}

	tests := []struct {
		name     string
		req      models.ServiceRequirement
		zone     string
		at       time.Time
		duration int
		want     []string
	}{
		{name: "window covers request", req: acMaintenance, zone: "Marina", at: at(2, 9), duration: 120, want: []string{"T1"}},
		{name: "no stitching past window end", req: acMaintenance, zone: "Marina", at: at(2, 11), duration: 120, want: nil},
		{name: "word containment on skills", req: acMaintenance, zone: "Marina", at: at(2, 14), duration: 120, want: []string{"T2"}},
		{name: "hvac does not match ac", req: hvac, zone: "Marina", at: at(2, 14), duration: 60, want: nil},
		{name: "zone mismatch", req: acMaintenance, zone: "Deira", at: at(2, 9), duration: 60, want: nil},
		{name: "source order preserved", req: models.ServiceRequirement{RequiredSkills: []string{"maintenance"}}, zone: "marina", at: at(3, 10), duration: 60, want: []string{"T3"}},
		{name: "exact window fits", req: acMaintenance, zone: "Marina", at: at(3, 15), duration: 180, want: []string{"T7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.FindExact(context.Background(), tt.req, tt.zone, tt.at, tt.duration)
			if err != nil {
				t.Fatalf("FindExact: %v", err)
			}
			if got == nil {
				t.Fatal("FindExact must return an empty slice, not nil")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d matches, want %v", len(got), tt.want)
			}
			for i, id := range tt.want {
				if got[i].TechnicianID != id {
					t.Errorf("match %d = %s, want %s", i, got[i].TechnicianID, id)
				}
			}
		})
	}
}

func TestFindAlternatives(t *testing.T) {
	r := newTestResolver(fixtureSlots(), at(1, 8))
	ctx := context.Background()

	got, err := r.FindAlternatives(ctx, acMaintenance, "Marina", at(2, 14), 120, AlternativeOptions{})
	if err != nil {
		t.Fatalf("FindAlternatives: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d alternatives (%+v), want 2", len(got), got)
	}

	first := got[0]
	if first.Date != "2025-06-03" || first.Time != "10:00" || first.TechnicianID != "T3" {
		t.Errorf("first alternative = %+v", first)
	}
	if first.AvailableCount != 1 {
		t.Errorf("AvailableCount = %d, want 1", first.AvailableCount)
	}
	if got[1].Date != "2025-06-09" || got[1].Time != "14:00" {
		t.Errorf("second alternative = %+v", got[1])
	}

	for _, alt := range got {
		if alt.Instant.Weekday() == time.Friday {
			t.Errorf("alternative on the non-working day: %+v", alt)
		}
		exact, err := r.FindExact(ctx, acMaintenance, "Marina", alt.Instant, 120)
		if err != nil {
			t.Fatal(err)
		}
		found := false
		for _, s := range exact {
			if s.TechnicianID == alt.TechnicianID {
				found = true
			}
		}
		if !found {
			t.Errorf("alternative %s %s does not pass an exact check", alt.Date, alt.Time)
		}
	}
}

func TestFindAlternativesMaxResults(t *testing.T) {
	r := newTestResolver(fixtureSlots(), at(1, 8))
	got, err := r.FindAlternatives(context.Background(), acMaintenance, "Marina", at(2, 14), 120, AlternativeOptions{MaxResults: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Date != "2025-06-03" {
		t.Errorf("got %+v", got)
	}
}

func TestFindAlternativesSkipsPastHours(t *testing.T) {
	// 11:00 on the 3rd: only afternoon hours remain and T3's window closes at 13:00.
	r := newTestResolver(fixtureSlots(), time.Date(2025, 6, 3, 11, 0, 0, 0, time.UTC))
	got, err := r.FindAlternatives(context.Background(), acMaintenance, "Marina", at(2, 14), 120, AlternativeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 {
		t.Fatal("expected alternatives")
	}
	if got[0].Date != "2025-06-03" || got[0].Time != "15:00" || got[0].TechnicianID != "T7" {
		t.Errorf("first alternative = %+v, want 2025-06-03 15:00 T7", got[0])
	}
}

func TestFindAlternativesEmptyIsSuccess(t *testing.T) {
	r := newTestResolver(fixtureSlots(), at(1, 8))
	got, err := r.FindAlternatives(context.Background(), models.ServiceRequirement{RequiredSkills: []string{"Roofing"}}, "Marina", at(2, 9), 60, AlternativeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty slice", got)
	}
}

func TestResolverSourceError(t *testing.T) {
	r := newTestResolver(failingSource{}, at(1, 8))
	if _, err := r.FindExact(context.Background(), acMaintenance, "Marina", at(2, 9), 60); err == nil {
		t.Error("FindExact should surface source errors")
	}
	if _, err := r.FindAlternatives(context.Background(), acMaintenance, "Marina", at(2, 9), 60, AlternativeOptions{}); err == nil {
		t.Error("FindAlternatives should surface source errors")
	}
}
