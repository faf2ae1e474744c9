package plan

import (
	"testing"
	"time"
)

func TestMultiNodeDerivedFromNodeCount(t *testing.T) {
	for n := 0; n <= 5; n++ {
		p := ResourcePlan{NodeCount: n}
		if got, want := p.MultiNode(), n > 1; got != want {
			t.Errorf("NodeCount=%d: MultiNode() = %v; want %v", n, got, want)
		}
	}
}

func TestQueueProperties(t *testing.T) {
	tests := []struct {
		q             Queue
		opportunistic bool
		scoped        bool
	}{
		{QueueBatch, false, true},
		{QueueBackfill, true, false},
		{QueueCheckpoint, true, true},
	}
	for _, tt := range tests {
		if got := tt.q.Opportunistic(); got != tt.opportunistic {
			t.Errorf("%s.Opportunistic() = %v; want %v", tt.q, got, tt.opportunistic)
		}
		if got := tt.q.AllocationScoped(); got != tt.scoped {
			t.Errorf("%s.AllocationScoped() = %v; want %v", tt.q, got, tt.scoped)
		}
	}
}

func TestWalltime(t *testing.T) {
	if got := (Walltime{Amount: 260, Unit: Minutes}).Duration(); got != 260*time.Minute {
		t.Errorf("260 min = %v", got)
	}
	if got := (Walltime{Amount: 3, Unit: Hours}).Duration(); got != 3*time.Hour {
		t.Errorf("3 hr = %v", got)
	}
	if got := (Walltime{Amount: 1, Unit: Hours}).String(); got != "1 hr" {
		t.Errorf("String() = %q; want \"1 hr\"", got)
	}
}

func TestProgramVersion(t *testing.T) {
	v := ProgramVersion{Family: "gdv", Revision: "i10pp"}
	if v.String() != "gdv.i10pp" {
		t.Errorf("String() = %q", v.String())
	}
	if v.Executable() != "gdv" {
		t.Errorf("Executable() = %q", v.Executable())
	}
	if (ProgramVersion{}).String() != "" {
		t.Error("zero version should print empty")
	}
}
