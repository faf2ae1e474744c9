package scheduler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Justype/gaussub/internal/plan"
)

func renderSlurm(t *testing.T, p plan.ResourcePlan) string {
	t.Helper()
	var buf bytes.Buffer
	if err := (&SlurmWriter{}).Write(&buf, newTestJob(p)); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	return buf.String()
}

func TestSlurmBatch(t *testing.T) {
	script := renderSlurm(t, plan.ResourcePlan{
		Queue:           plan.QueueBatch,
		Allocation:      "hyak-chem",
		AllocationShort: "chem",
		NodeCount:       1,
		CoresPerNode:    28,
		MemoryGb:        120,
		Version:         plan.ProgramVersion{Family: "g16", Revision: "a03"},
		Walltime:        plan.Walltime{Amount: 3, Unit: plan.Hours},
	})

	for _, want := range []string{
		"#SBATCH --job-name=water\n",
		"#SBATCH --nodes=1\n",
		"#SBATCH --ntasks-per-node=28\n",
		"#SBATCH --time=3:00:00\n",
		"#SBATCH --mem=120G\n",
		"#SBATCH --chdir=/gscratch/chem/alice\n",
		"#SBATCH --partition=chem\n",
		"#SBATCH --account=chem\n",
		"module load contrib/g16.a03\n",
		"g16 water.com\n",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q\nScript:\n%s", want, script)
		}
	}
	for _, unwanted := range []string{"LindaWorker", "copy last log"} {
		if strings.Contains(script, unwanted) {
			t.Errorf("script unexpectedly contains %q", unwanted)
		}
	}
}

func TestSlurmCheckpointMultiNode(t *testing.T) {
	script := renderSlurm(t, plan.ResourcePlan{
		Queue:           plan.QueueCheckpoint,
		Allocation:      "hyak-chem",
		AllocationShort: "chem",
		NodeCount:       4,
		CoresPerNode:    28,
		MemoryGb:        128,
		Version:         plan.ProgramVersion{Family: "gdv", Revision: "i10pp"},
		Walltime:        plan.Walltime{Amount: 260, Unit: plan.Minutes},
	})

	for _, want := range []string{
		"#SBATCH --time=4:20:00\n",
		"#SBATCH --partition=ckpt\n",
		"#SBATCH --account=chem-ckpt\n",
		"scontrol show hostnames $SLURM_JOB_NODELIST",
		"${nodes[$SLURM_NNODES-1]}",
		"cp water.log water$num.log\n",
		"gdv water.com\n",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q\nScript:\n%s", want, script)
		}
	}
}
