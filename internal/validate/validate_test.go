package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/Justype/gaussub/internal/cluster"
	"github.com/Justype/gaussub/internal/plan"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

const general = "hyak-stf"

func gen(t *testing.T, name string) cluster.Generation {
	t.Helper()
	g, err := cluster.Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func stfPlan(nodes, cores int) plan.ResourcePlan {
	return plan.ResourcePlan{Allocation: general, NodeCount: nodes, CoresPerNode: cores}
}

func input(lines ...string) string {
	return strings.Join(append(lines, "#p b3lyp/6-31g(d) opt", "", "water", "", "0 1"), "\n") + "\n"
}

func TestOversubscribedOnGeneral(t *testing.T) {
	r := Check(stfPlan(1, 16), gen(t, "ikt"), general, input("%nprocshared=20"))
	if !r.Fatal {
		t.Fatalf("Fatal = false; advisories %v", r.Texts())
	}
	var oe *plan.OversubscribedCoresError
	if !errors.As(r.Err, &oe) || oe.Requested != 20 || oe.Available != 16 {
		t.Errorf("Err = %v; want OversubscribedCoresError(20/16)", r.Err)
	}
	if len(r.Advisories) != 1 || !r.Advisories[0].Fatal {
		t.Errorf("advisories = %+v", r.Advisories)
	}
}

func TestBelowFullNodeIsAdvisory(t *testing.T) {
	r := Check(stfPlan(1, 16), gen(t, "ikt"), general, input("%nproc=8"))
	if r.Fatal || r.Err != nil {
		t.Fatalf("Fatal = %v Err = %v", r.Fatal, r.Err)
	}
	if len(r.Advisories) != 1 || !strings.Contains(r.Advisories[0].Text, "all the cores") {
		t.Errorf("advisories = %v; want one below-full-node advisory", r.Texts())
	}
}

func TestMissingCoreDirective(t *testing.T) {
	r := Check(stfPlan(1, 28), gen(t, "mox"), general, input("%mem=32GB"))
	if r.Fatal {
		t.Fatalf("Fatal = true: %v", r.Texts())
	}
	if len(r.Advisories) != 1 || !strings.Contains(r.Advisories[0].Text, "one core") {
		t.Errorf("advisories = %v", r.Texts())
	}
}

func TestLindaMismatchBothDirections(t *testing.T) {
	tests := []struct {
		name  string
		nodes int
		text  string
	}{
		{"multi-node without directive", 3, input("%nprocshared=16")},
		{"single node with directive", 1, input("%LindaWorkers=n0001", "%nprocshared=16")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Check(stfPlan(tt.nodes, 16), gen(t, "ikt"), general, tt.text)
			if !r.Fatal {
				t.Fatalf("Fatal = false; advisories %v", r.Texts())
			}
			var le *plan.LindaMismatchError
			if !errors.As(r.Err, &le) {
				t.Errorf("Err = %v; want LindaMismatchError", r.Err)
			}
		})
	}

	r := Check(stfPlan(2, 16), gen(t, "ikt"), general, input("%lindaworkers=n0001,n0002", "%nprocshared=16"))
	if r.Fatal {
		t.Errorf("matching Linda directive was rejected: %v", r.Texts())
	}
}

func TestMultiNodeWithoutLindaIsFatalRegardless(t *testing.T) {
	// Every other directive is correct.
	r := Check(stfPlan(3, 16), gen(t, "ikt"), general, input("%mem=16GB", "%nprocshared=16"))
	if !r.Fatal || len(r.Advisories) != 1 {
		t.Errorf("Fatal = %v advisories = %v", r.Fatal, r.Texts())
	}
}

func TestAllAdvisoriesCollected(t *testing.T) {
	// Non-Gb memory and under-subscribed cores are independent warnings.
	r := Check(stfPlan(1, 16), gen(t, "ikt"), general, input("%mem=2000MB", "%nproc=4"))
	if r.Fatal {
		t.Fatalf("Fatal = true: %v", r.Texts())
	}
	if len(r.Advisories) != 2 {
		t.Errorf("advisories = %v; want 2", r.Texts())
	}

	// Two fatal conditions are both reported and both aggregated.
	r = Check(stfPlan(3, 16), gen(t, "ikt"), general, input("%mem=48GB", "%nproc=24"))
	if !r.Fatal {
		t.Fatal("Fatal = false")
	}
	if got := len(multierr.Errors(r.Err)); got != 2 {
		t.Errorf("aggregated %d errors; want 2 (%v)", got, r.Err)
	}
	// Memory above half the node is reported too.
	if len(r.Advisories) != 3 {
		t.Errorf("advisories = %v; want 3", r.Texts())
	}
}

func TestMemoryChecks(t *testing.T) {
	tests := []struct {
		name     string
		gen      string
		mem      string
		advisory bool
		fatal    bool
	}{
		{"ikt under half", "ikt", "%mem=32GB", false, false},
		{"ikt over half", "ikt", "%mem=33gb", true, false},
		{"mox over half", "mox", "%Mem = 100GB", true, false},
		{"mox at half", "mox", "%mem=64GB", false, false},
		{"other unit", "ikt", "%mem=4000MW", true, false},
		{"non numeric", "ikt", "%mem=lotsGB", true, true},
		{"space before unit", "ikt", "%mem=60 GB", true, false},
		{"space before unit under half", "mox", "%mem=64 gb", false, false},
		{"empty value", "ikt", "%mem=", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gen(t, tt.gen)
			cores := "%nprocshared=" + map[string]string{"ikt": "16", "mox": "28"}[tt.gen]
			r := Check(stfPlan(1, g.FullNodeCores), g, general, input(tt.mem, cores))
			if got := len(r.Advisories) > 0; got != tt.advisory {
				t.Errorf("advisories = %v; want advisory=%v", r.Texts(), tt.advisory)
			}
			if r.Fatal != tt.fatal {
				t.Errorf("Fatal = %v; want %v", r.Fatal, tt.fatal)
			}
			if tt.fatal {
				var pe *plan.ParseError
				if !errors.As(r.Err, &pe) || pe.Line != 1 {
					t.Errorf("Err = %v; want ParseError on line 1", r.Err)
				}
			}
		})
	}
}

func TestMemoryOnlyCheckedOnGeneral(t *testing.T) {
	p := plan.ResourcePlan{Allocation: "hyak-chem", NodeCount: 1, CoresPerNode: 28}
	r := Check(p, gen(t, "mox"), general, input("%mem=120GB", "%nprocshared=28"))
	if len(r.Advisories) != 0 {
		t.Errorf("advisories = %v; want none", r.Texts())
	}
}

func TestCoresOnOwnAllocation(t *testing.T) {
	p := plan.ResourcePlan{Allocation: "hyak-chem", NodeCount: 1, CoresPerNode: 12}
	r := Check(p, gen(t, "ikt"), general, input("%nprocshared=16"))
	if r.Fatal || len(r.Advisories) != 1 {
		t.Errorf("Fatal = %v advisories = %v; want one non-fatal advisory", r.Fatal, r.Texts())
	}

	r = Check(p, gen(t, "ikt"), general, input("%nprocshared=8"))
	if len(r.Advisories) != 0 {
		t.Errorf("advisories = %v; want none", r.Texts())
	}
}

func TestLaterDirectiveWins(t *testing.T) {
	r := Check(stfPlan(1, 16), gen(t, "ikt"), general, input("%nproc=32", "%nprocshared=16"))
	if r.Fatal || len(r.Advisories) != 0 {
		t.Errorf("Fatal = %v advisories = %v", r.Fatal, r.Texts())
	}
}

func TestLindaCoreDirectiveIgnored(t *testing.T) {
	r := Check(stfPlan(2, 16), gen(t, "ikt"), general,
		input("%NProcShared=20", "%NProcLinda=2", "%LindaWorkers=n0001,n0002"))
	var oe *plan.OversubscribedCoresError
	if !r.Fatal || !errors.As(r.Err, &oe) || oe.Requested != 20 {
		t.Errorf("Fatal = %v Err = %v; want OversubscribedCoresError for 20 cores", r.Fatal, r.Err)
	}
}

func TestLongLineDoesNotHideDirectives(t *testing.T) {
	long := "! " + strings.Repeat("x", 70000)
	r := Check(stfPlan(1, 16), gen(t, "ikt"), general, input(long, "%nprocshared=20"))
	var oe *plan.OversubscribedCoresError
	if !r.Fatal || !errors.As(r.Err, &oe) {
		t.Errorf("Fatal = %v Err = %v; want OversubscribedCoresError", r.Fatal, r.Err)
	}
}

func TestCRLFInput(t *testing.T) {
	r := Check(stfPlan(1, 16), gen(t, "ikt"), general, "%nprocshared=16\r\n%mem=8GB\r\n#p hf\r\n")
	if r.Fatal || len(r.Advisories) != 0 {
		t.Errorf("Fatal = %v advisories = %v", r.Fatal, r.Texts())
	}
}

func TestNonNumericCores(t *testing.T) {
	r := Check(stfPlan(1, 16), gen(t, "ikt"), general, input("%nprocshared=all"))
	var pe *plan.ParseError
	if !r.Fatal || !errors.As(r.Err, &pe) {
		t.Errorf("Fatal = %v Err = %v; want ParseError", r.Fatal, r.Err)
	}
}

func TestCheckFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "water.com", []byte(input("%nprocshared=16")), 0644); err != nil {
		t.Fatal(err)
	}
	r := CheckFile(fs, "water.com", stfPlan(1, 16), gen(t, "ikt"), general)
	if r.Fatal || len(r.Advisories) != 0 {
		t.Errorf("Fatal = %v advisories = %v", r.Fatal, r.Texts())
	}

	r = CheckFile(fs, "missing.com", stfPlan(1, 16), gen(t, "ikt"), general)
	if !r.Fatal || !plan.IsUsageError(r.Err) {
		t.Errorf("missing file: Fatal = %v Err = %v", r.Fatal, r.Err)
	}
}
