package models

import "testing"

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b TimeSlot
		want bool
	}{
		{"identical", TimeSlot{Start: 480, End: 540}, TimeSlot{Start: 480, End: 540}, true},
		{"partial", TimeSlot{Start: 480, End: 540}, TimeSlot{Start: 510, End: 570}, true},
		{"contained", TimeSlot{Start: 480, End: 600}, TimeSlot{Start: 500, End: 520}, true},
		{"back to back", TimeSlot{Start: 480, End: 540}, TimeSlot{Start: 540, End: 600}, false},
		{"disjoint", TimeSlot{Start: 480, End: 540}, TimeSlot{Start: 600, End: 660}, false},
	}
	for _, tt := range tests {
		if got := Overlaps(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: Overlaps = %v, want %v", tt.name, got, tt.want)
		}
		if got := Overlaps(tt.b, tt.a); got != tt.want {
			t.Errorf("%s (swapped): Overlaps = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestClockConversions(t *testing.T) {
	for _, tt := range []struct {
		minutes int
		clock   string
		display string
	}{
		{480, "08:00", "8:00 AM"},
		{0, "00:00", "12:00 AM"},
		{720, "12:00", "12:00 PM"},
		{870, "14:30", "2:30 PM"},
		{1020, "17:00", "5:00 PM"},
	} {
		if got := MinutesToClock(tt.minutes); got != tt.clock {
			t.Errorf("MinutesToClock(%d) = %q, want %q", tt.minutes, got, tt.clock)
		}
		if got := MinutesToDisplay(tt.minutes); got != tt.display {
			t.Errorf("MinutesToDisplay(%d) = %q, want %q", tt.minutes, got, tt.display)
		}
		back, err := ClockToMinutes(tt.clock)
		if err != nil {
			t.Errorf("ClockToMinutes(%q): %v", tt.clock, err)
		} else if back != tt.minutes {
			t.Errorf("ClockToMinutes(%q) = %d, want %d", tt.clock, back, tt.minutes)
		}
	}

	for _, bad := range []string{"", "8", "25:00", "12:60", "noonish"} {
		if _, err := ClockToMinutes(bad); err == nil {
			t.Errorf("ClockToMinutes(%q) accepted invalid input", bad)
		}
	}
}

func TestMergePreservesAndForces(t *testing.T) {
	loyal := true
	base := CustomerInfo{FullName: "Sarah Chen", Location: "downtown"}

	base.Merge(CustomerInfo{FullName: "Other Name", CarMake: "Honda", LoyaltyMember: &loyal}, false)
	if base.FullName != "Sarah Chen" {
		t.Errorf("merge clobbered set field: %q", base.FullName)
	}
	if base.CarMake != "Honda" || base.LoyaltyMember == nil {
		t.Errorf("merge skipped unset fields: %+v", base)
	}

	base.Merge(CustomerInfo{FullName: "Corrected Name"}, true)
	if base.FullName != "Corrected Name" {
		t.Errorf("forced merge did not overwrite: %q", base.FullName)
	}
	// Empty update fields never erase, even forced.
	base.Merge(CustomerInfo{}, true)
	if base.FullName != "Corrected Name" || base.Location != "downtown" {
		t.Errorf("forced empty merge erased fields: %+v", base)
	}
}

func TestMissingRequired(t *testing.T) {
	var empty CustomerInfo
	if got := len(empty.MissingRequired()); got != 6 {
		t.Fatalf("empty info missing %d fields, want 6", got)
	}

	full := CustomerInfo{
		Location: "downtown", FullName: "Sarah Chen", PhoneNumber: "416-555-0134",
		ServiceType: "oil_change", PreferredDate: "2026-09-01", PreferredTime: 540,
	}
	if got := full.MissingRequired(); len(got) != 0 {
		t.Fatalf("complete info reports missing %v", got)
	}
}

func TestServiceCatalog(t *testing.T) {
	st, ok := ServiceTypeByID("")
	if !ok || st.ID != DefaultServiceTypeID {
		t.Errorf("empty id lookup = %+v %v, want default service", st, ok)
	}
	if _, ok := ServiceTypeByID("detailing"); ok {
		t.Errorf("unknown service id accepted")
	}
	for _, id := range ServiceTypeIDs {
		st, ok := ServiceTypeByID(id)
		if !ok {
			t.Errorf("catalog id %q not resolvable", id)
			continue
		}
		if st.TotalDuration() != 60 {
			t.Errorf("%s total duration = %d, want 60", id, st.TotalDuration())
		}
	}

	if !ValidLocation("scarborough") || ValidLocation("mississauga") {
		t.Errorf("location validation wrong")
	}
}
