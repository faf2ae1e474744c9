package scheduler

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Justype/gaussub/internal/plan"
)

// SlurmWriter renders sbatch scripts for mox.
type SlurmWriter struct{}

func init() {
	Register(DialectSLURM, func() ScriptWriter { return &SlurmWriter{} })
}

func (s *SlurmWriter) Dialect() Dialect      { return DialectSLURM }
func (s *SlurmWriter) Extension() string     { return "sh" }
func (s *SlurmWriter) SubmitCommand() string { return "sbatch" }

// slurmPartition returns the partition and account for the plan.
// Checkpoint jobs run in the shared ckpt partition on the allocation's
// ckpt account.
func slurmPartition(pl plan.ResourcePlan) (partition, account string) {
	if pl.Queue.Opportunistic() {
		return string(plan.QueueCheckpoint), pl.AllocationShort + "-ckpt"
	}
	return pl.AllocationShort, pl.AllocationShort
}

// Write renders job as a SLURM script.
func (s *SlurmWriter) Write(w io.Writer, job *Job) error {
	pl := job.Plan
	partition, account := slurmPartition(pl)
	writer := bufio.NewWriter(w)

	fmt.Fprintln(writer, "#!/bin/bash")
	fmt.Fprintf(writer, "#SBATCH --job-name=%s\n", job.JobName)
	fmt.Fprintf(writer, "#SBATCH --nodes=%d\n", pl.NodeCount)
	fmt.Fprintf(writer, "#SBATCH --ntasks-per-node=%d\n", pl.CoresPerNode)
	fmt.Fprintf(writer, "#SBATCH --time=%s\n", formatHMSTime(pl.Walltime.Duration()))
	if pl.MemoryGb > 0 {
		fmt.Fprintf(writer, "#SBATCH --mem=%dG\n", pl.MemoryGb)
	}
	fmt.Fprintf(writer, "#SBATCH --chdir=%s\n", job.WorkDir)
	fmt.Fprintf(writer, "#SBATCH --partition=%s\n", partition)
	fmt.Fprintf(writer, "#SBATCH --account=%s\n", account)
	fmt.Fprintln(writer)

	writeModuleLoad(writer, pl.Version)

	fmt.Fprintln(writer, "# debugging information")
	fmt.Fprintln(writer, "echo \"**** Job Debugging Information ****\"")
	fmt.Fprintln(writer, "echo \"This job will run on $SLURM_JOB_NODELIST\"")
	fmt.Fprintln(writer, "echo \"\"")
	fmt.Fprintln(writer, "echo \"ENVIRONMENT VARIABLES\"")
	fmt.Fprintln(writer, "set")
	fmt.Fprintln(writer, "echo \"**********************************************\"")
	fmt.Fprintln(writer)

	writeBody(writer, job, "scontrol show hostnames $SLURM_JOB_NODELIST", "$SLURM_NNODES")

	return writer.Flush()
}
