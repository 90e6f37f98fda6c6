package models

import (
	"encoding/json"
	"testing"
	"time"
)

var gulf = time.FixedZone("GST", 4*60*60)

func TestParseInstant(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		want     string
		dateOnly bool
		wantErr  bool
	}{
		{name: "date only", in: "2025-06-05", want: "2025-06-05", dateOnly: true},
		{name: "timed", in: "2025-06-05T14:00", want: "2025-06-05T14:00"},
		{name: "seconds dropped", in: "2025-06-05T14:00:30", want: "2025-06-05T14:00"},
		{name: "space separator", in: " 2025-06-05 09:15 ", want: "2025-06-05T09:15"},
		{name: "RFC 3339 moved into zone", in: "2025-06-05T10:00:00Z", want: "2025-06-05T14:00"},
		{name: "empty", in: "", wantErr: true},
		{name: "spoken", in: "tomorrow at 2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstant(tt.in, gulf)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseInstant(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseInstant(%q): %v", tt.in, err)
			}
			if got.String() != tt.want || got.DateOnly != tt.dateOnly {
				t.Errorf("ParseInstant(%q) = %s dateOnly=%v, want %s dateOnly=%v", tt.in, got, got.DateOnly, tt.want, tt.dateOnly)
			}
		})
	}
}

func TestInstantTextRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   *Instant
		text string
	}{
		{"timed in a non-UTC zone", At(time.Date(2025, 6, 5, 14, 0, 0, 0, gulf)), "2025-06-05T14:00"},
		{"date only", OnDate(time.Date(2025, 6, 5, 18, 30, 0, 0, gulf)), "2025-06-05"},
		{"midnight stays timed", At(time.Date(2025, 6, 5, 0, 0, 0, 0, gulf)), "2025-06-05T00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.in.MarshalText()
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != tt.text {
				t.Fatalf("MarshalText = %s, want %s", b, tt.text)
			}
			var back Instant
			if err := back.UnmarshalText(b); err != nil {
				t.Fatalf("UnmarshalText(%s): %v", b, err)
			}
			if back.DateOnly != tt.in.DateOnly || !back.Equal(tt.in) {
				t.Errorf("round trip = %s dateOnly=%v, want %s dateOnly=%v", back, back.DateOnly, tt.in, tt.in.DateOnly)
			}
		})
	}
}

func TestInstantEqual(t *testing.T) {
	timed := At(time.Date(2025, 6, 5, 14, 0, 0, 0, gulf))
	tests := []struct {
		name string
		a, b *Instant
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil and set", nil, timed, false},
		{"set and nil", timed, nil, false},
		{"same wall clock across zones", timed, At(time.Date(2025, 6, 5, 14, 0, 0, 0, time.UTC)), true},
		{"different clock", timed, At(time.Date(2025, 6, 5, 15, 0, 0, 0, gulf)), false},
		{"date only never equals timed midnight", OnDate(timed.At), At(time.Date(2025, 6, 5, 0, 0, 0, 0, gulf)), false},
		{"date only ignores clock", OnDate(timed.At), OnDate(time.Date(2025, 6, 5, 23, 0, 0, 0, gulf)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBookingContextJSONRoundTrip(t *testing.T) {
	in := BookingContext{
		SessionID:         "call-1",
		OriginalRequested: At(time.Date(2025, 6, 2, 14, 0, 0, 0, gulf)),
		CurrentPreferred:  OnDate(time.Date(2025, 6, 5, 0, 0, 0, 0, gulf)),
		SuggestedAlternatives: []Instant{
			*At(time.Date(2025, 6, 3, 10, 0, 0, 0, gulf)),
			*OnDate(time.Date(2025, 6, 5, 0, 0, 0, 0, gulf)),
		},
	}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["originalRequestedInstant"] != "2025-06-02T14:00" || raw["currentPreferredInstant"] != "2025-06-05" {
		t.Fatalf("encoded instants = %v / %v", raw["originalRequestedInstant"], raw["currentPreferredInstant"])
	}

	var out BookingContext
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if !out.OriginalRequested.Equal(in.OriginalRequested) || !out.CurrentPreferred.Equal(in.CurrentPreferred) {
		t.Errorf("instants = %s / %s", out.OriginalRequested, out.CurrentPreferred)
	}
	if !out.CurrentPreferred.DateOnly {
		t.Error("date-only preference came back timed")
	}
	if len(out.SuggestedAlternatives) != 2 || out.SuggestedAlternatives[1].String() != "2025-06-05" {
		t.Errorf("alternatives = %v", out.SuggestedAlternatives)
	}
	if !out.AlternativeAccepted() {
		t.Error("accepted alternative lost in the round trip")
	}
}
