package scheduler

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Justype/gaussub/internal/plan"
)

// PbsWriter renders Torque/Moab scripts for ikt.
type PbsWriter struct{}

func init() {
	Register(DialectPBS, func() ScriptWriter { return &PbsWriter{} })
}

func (p *PbsWriter) Dialect() Dialect      { return DialectPBS }
func (p *PbsWriter) Extension() string     { return "pbs" }
func (p *PbsWriter) SubmitCommand() string { return "qsub" }

// pbsWalltime formats the walltime the way Torque reads it. Minutes are
// written into the minutes field unnormalised.
func pbsWalltime(wt plan.Walltime) string {
	if wt.Unit == plan.Minutes {
		return fmt.Sprintf("0:%d:00", wt.Amount)
	}
	return fmt.Sprintf("%d:00:00", wt.Amount)
}

// Write renders job as a PBS script.
func (p *PbsWriter) Write(w io.Writer, job *Job) error {
	pl := job.Plan
	writer := bufio.NewWriter(w)

	fmt.Fprintln(writer, "#!/bin/bash")
	fmt.Fprintf(writer, "#PBS -N %s\n", job.JobName)
	fmt.Fprintf(writer, "#PBS -l nodes=%d:ppn=%d,feature=%dcore\n", pl.NodeCount, pl.CoresPerNode, pl.CoresPerNode)
	fmt.Fprintf(writer, "#PBS -l walltime=%s\n", pbsWalltime(pl.Walltime))
	fmt.Fprintln(writer, "#PBS -j oe")
	fmt.Fprintf(writer, "#PBS -o %s\n", job.WorkDir)
	fmt.Fprintf(writer, "#PBS -d %s\n", job.WorkDir)
	if pl.Queue == plan.QueueBatch && pl.Allocation != "" {
		fmt.Fprintf(writer, "#PBS -W group_list=%s\n", pl.Allocation)
	}
	fmt.Fprintf(writer, "#PBS -q %s\n", pl.Queue)
	fmt.Fprintln(writer)

	writeModuleLoad(writer, pl.Version)

	fmt.Fprintln(writer, "# debugging information")
	fmt.Fprintln(writer, "HYAK_NPE=$(wc -l < $PBS_NODEFILE)")
	fmt.Fprintln(writer, "HYAK_NNODES=$(uniq $PBS_NODEFILE | wc -l )")
	fmt.Fprintln(writer, "echo \"**** Job Debugging Information ****\"")
	fmt.Fprintln(writer, "echo \"This job will run on $HYAK_NPE CPUs on $HYAK_NNODES nodes\"")
	fmt.Fprintln(writer, "echo \"\"")
	fmt.Fprintln(writer, "echo Node:CPUs Used")
	fmt.Fprintln(writer, "uniq -c $PBS_NODEFILE | awk '{print $2 \":\" $1}'")
	fmt.Fprintln(writer, "echo \"ENVIRONMENT VARIABLES\"")
	fmt.Fprintln(writer, "set")
	fmt.Fprintln(writer, "echo \"**********************************************\"")
	fmt.Fprintln(writer)

	writeBody(writer, job, "uniq -c $PBS_NODEFILE | awk '{print $2}'", "$HYAK_NNODES")

	return writer.Flush()
}
