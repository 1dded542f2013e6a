package timeline

import (
	"testing"
	"time"
)

const ms = time.Millisecond

func TestCompute_FollowersOnly(t *testing.T) {
	tl := Compute(30000*ms, 5000*ms, Group{Name: "followers", Count: 3}, Group{Name: "subscribers"})

	if tl.EffectiveDuration != 15000*ms {
		t.Fatalf("EffectiveDuration = %v, want 15s", tl.EffectiveDuration)
	}

	want := []time.Duration{0, 5000 * ms, 10000 * ms}
	if len(tl.Entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(tl.Entries), len(want))
	}
	for i, e := range tl.Entries {
		if e.Offset != want[i] {
			t.Errorf("entry %d offset = %v, want %v", i, e.Offset, want[i])
		}
		if e.Group != "followers" {
			t.Errorf("entry %d group = %q", i, e.Group)
		}
	}

	if tl.Finish != 18000*ms {
		t.Errorf("Finish = %v, want 18s", tl.Finish)
	}
	if tl.Interval != 5000*ms {
		t.Errorf("Interval = %v, want 5s", tl.Interval)
	}
}

func TestCompute_ZeroItems(t *testing.T) {
	tl := Compute(30000*ms, 5000*ms, Group{Name: "followers"}, Group{Name: "subscribers"})
	if !tl.Empty() {
		t.Fatalf("expected empty timeline, got %d entries", len(tl.Entries))
	}
	if tl.Finish != 0 {
		t.Fatalf("Finish = %v, want 0", tl.Finish)
	}

	if tl := Compute(30000*ms, 5000*ms); tl.Finish != 0 || !tl.Empty() {
		t.Fatalf("no groups: %+v", tl)
	}
}

func TestCompute_GroupStagger(t *testing.T) {
	tl := Compute(10000*ms, 5000*ms, Group{Name: "followers", Count: 2}, Group{Name: "subscribers", Count: 2})

	// effective = min(10000, 20000) = 10000, interval 2500
	want := []struct {
		group  string
		pos    int
		offset time.Duration
	}{
		{"followers", 0, 0},
		{"followers", 1, 2500 * ms},
		{"subscribers", 0, 5000*ms + GroupStagger},
		{"subscribers", 1, 7500*ms + GroupStagger},
	}
	for i, w := range want {
		e := tl.Entries[i]
		if e.Group != w.group || e.Position != w.pos || e.Offset != w.offset || e.Index != i {
			t.Errorf("entry %d = %+v, want %+v", i, e, w)
		}
	}

	if tl.Finish != 10000*ms+GroupStagger+TrailingBuffer {
		t.Errorf("Finish = %v", tl.Finish)
	}
}

func TestCompute_EmptyLeadingGroupNoStagger(t *testing.T) {
	tl := Compute(10000*ms, 1000*ms, Group{Name: "followers"}, Group{Name: "subscribers", Count: 2})
	if tl.Entries[0].Offset != 0 {
		t.Errorf("first subscriber offset = %v, want 0", tl.Entries[0].Offset)
	}
	if tl.Finish != 2000*ms+TrailingBuffer {
		t.Errorf("Finish = %v", tl.Finish)
	}
}

func TestCompute_FloorsOffsets(t *testing.T) {
	tl := Compute(10000*ms, 10000*ms, Group{Name: "followers", Count: 3})
	want := []time.Duration{0, 3333 * ms, 6666 * ms}
	for i, e := range tl.Entries {
		if e.Offset != want[i] {
			t.Errorf("entry %d offset = %v, want %v", i, e.Offset, want[i])
		}
	}
}

func TestEffectiveDuration_IsMinOfTotalAndSpread(t *testing.T) {
	for total := 0; total <= 40; total++ {
		for _, timeTotal := range []time.Duration{0, 1 * ms, 7000 * ms, 30000 * ms} {
			for _, timePer := range []time.Duration{0, 250 * ms, 1000 * ms, 5000 * ms} {
				got := EffectiveDuration(total, timeTotal, timePer)
				var want time.Duration
				if total > 0 {
					want = min(timeTotal, timePer*time.Duration(total))
				}
				if got != want {
					t.Fatalf("EffectiveDuration(%d, %v, %v) = %v, want %v", total, timeTotal, timePer, got, want)
				}
			}
		}
	}
}

func TestCompute_OffsetsNonDecreasingAndBelowDuration(t *testing.T) {
	for total := 1; total <= 60; total++ {
		for _, timeTotal := range []time.Duration{1 * ms, 999 * ms, 30000 * ms} {
			for _, timePer := range []time.Duration{1 * ms, 333 * ms, 5000 * ms} {
				tl := Compute(timeTotal, timePer, Group{Name: "followers", Count: total})
				prev := time.Duration(-1)
				for _, e := range tl.Entries {
					if e.Offset < prev {
						t.Fatalf("offsets decrease for total=%d: %v after %v", total, e.Offset, prev)
					}
					prev = e.Offset
				}
				if last := tl.Entries[len(tl.Entries)-1].Offset; last >= tl.EffectiveDuration {
					t.Fatalf("total=%d timeTotal=%v timePer=%v: last offset %v >= effective %v",
						total, timeTotal, timePer, last, tl.EffectiveDuration)
				}
			}
		}
	}
}

func TestCompute_NegativeInputsClamp(t *testing.T) {
	tl := Compute(-time.Second, -time.Second, Group{Name: "followers", Count: 2})
	if tl.EffectiveDuration != 0 {
		t.Fatalf("EffectiveDuration = %v, want 0", tl.EffectiveDuration)
	}
	for _, e := range tl.Entries {
		if e.Offset != 0 {
			t.Fatalf("offset = %v, want 0", e.Offset)
		}
	}
	if tl.Finish != TrailingBuffer {
		t.Fatalf("Finish = %v, want %v", tl.Finish, TrailingBuffer)
	}
}
