package scheduler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Justype/gaussub/internal/plan"
)

func renderPbs(t *testing.T, p plan.ResourcePlan) string {
	t.Helper()
	var buf bytes.Buffer
	if err := (&PbsWriter{}).Write(&buf, newTestJob(p)); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	return buf.String()
}

func TestPbsDirectives(t *testing.T) {
	script := renderPbs(t, plan.ResourcePlan{
		Queue:        plan.QueueBatch,
		Allocation:   "hyak-chem",
		NodeCount:    2,
		CoresPerNode: 16,
		Version:      plan.ProgramVersion{Family: "g16", Revision: "a03"},
		Walltime:     plan.Walltime{Amount: 12, Unit: plan.Hours},
	})

	for _, want := range []string{
		"#PBS -N water\n",
		"#PBS -l nodes=2:ppn=16,feature=16core\n",
		"#PBS -l walltime=12:00:00\n",
		"#PBS -o /gscratch/chem/alice\n",
		"#PBS -d /gscratch/chem/alice\n",
		"#PBS -W group_list=hyak-chem\n",
		"#PBS -q batch\n",
		"module load contrib/g16.a03\n",
		"$PBS_NODEFILE",
		"%LindaWorker=$string",
		"g16 water.com\n",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q\nScript:\n%s", want, script)
		}
	}
	if strings.Contains(script, "copy last log") {
		t.Error("log rotation written for the batch queue")
	}
	if !strings.HasSuffix(script, "exit 0\n") {
		t.Errorf("script does not end with exit 0:\n%s", script)
	}
}

func TestPbsBackfill(t *testing.T) {
	script := renderPbs(t, plan.ResourcePlan{
		Queue:        plan.QueueBackfill,
		NodeCount:    1,
		CoresPerNode: 8,
		Version:      plan.ProgramVersion{Family: "gdv", Revision: "i09"},
		Walltime:     plan.Walltime{Amount: 260, Unit: plan.Minutes},
	})

	for _, want := range []string{
		"#PBS -l walltime=0:260:00\n",
		"#PBS -q bf\n",
		"cp water.log water$num.log\n",
		"gdv water.com\n",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q\nScript:\n%s", want, script)
		}
	}
	if strings.Contains(script, "group_list") {
		t.Error("group_list written for the backfill queue")
	}
	if strings.Contains(script, "LindaWorker") {
		t.Error("Linda block written for a single-node job")
	}
}
