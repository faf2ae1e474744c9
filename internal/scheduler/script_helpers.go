package scheduler

import (
	"fmt"
	"io"
	"time"

	"github.com/Justype/gaussub/internal/plan"
)

// formatHMSTime formats a duration as H:MM:SS, the form both dialects accept.
func formatHMSTime(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d:%02d", total/3600, total%3600/60, total%60)
}

// writeModuleLoad writes the Gaussian environment block.
func writeModuleLoad(w io.Writer, v plan.ProgramVersion) {
	fmt.Fprintln(w, "# load Gaussian environment")
	fmt.Fprintf(w, "module load contrib/%s\n", v)
	fmt.Fprintln(w)
}

// writeLindaBlock fills in %LindaWorkers with the allocated nodes and
// aborts the job if the input file does not list them afterwards.
//
// - listNodes is a shell command printing one node name per line.
//
// - countVar is the shell expression for the number of nodes.
func writeLindaBlock(w io.Writer, listNodes, countVar, input string) {
	fmt.Fprintln(w, "# add linda nodes")
	fmt.Fprintln(w, "nodes=()")
	fmt.Fprintf(w, "nodes+=(`%s`)\n", listNodes)
	fmt.Fprintln(w, "for ((i=0; i<${#nodes[*]}-1; i++));")
	fmt.Fprintln(w, "do")
	fmt.Fprintln(w, "\tstring+=${nodes[$i]}")
	fmt.Fprintln(w, "\tstring+=\",\"")
	fmt.Fprintln(w, "done")
	fmt.Fprintf(w, "string+=${nodes[%s-1]}\n", countVar)
	fmt.Fprintf(w, "sed -i -e \"s/%%LindaWorker.*/%%LindaWorker=$string/Ig\" %s\n", input)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "# check that the Linda nodes are correct")
	fmt.Fprintf(w, "lindaline=(`grep -i 'lindaworker' %s`)\n", input)
	fmt.Fprintln(w, "if [[ $lindaline == *$string ]]")
	fmt.Fprintln(w, "then")
	fmt.Fprintln(w, "\techo \"Using the correct nodes for Linda\"")
	fmt.Fprintln(w, "else")
	fmt.Fprintln(w, "\techo \"Using the wrong nodes for Linda\"")
	fmt.Fprintln(w, "\techo \"Nodes assigned by scheduler = $string\"")
	fmt.Fprintln(w, "\techo \"Line in Gaussian input file = $lindaline\"")
	fmt.Fprintln(w, "\texit 1")
	fmt.Fprintln(w, "fi")
	fmt.Fprintln(w)
}

// writeLogRotation keeps the log of a previous opportunistic run, which the
// restarted job would otherwise overwrite.
func writeLogRotation(w io.Writer, stem string) {
	fmt.Fprintln(w, "# copy last log file to another name")
	fmt.Fprintf(w, "num=`ls -l %s*.log | wc -l`\n", stem)
	fmt.Fprintln(w, "let \"num += 1\"")
	fmt.Fprintf(w, "cp %s.log %s$num.log\n", stem, stem)
	fmt.Fprintln(w)
}

// writeRun writes the program invocation and exit.
func writeRun(w io.Writer, v plan.ProgramVersion, input string) {
	fmt.Fprintln(w, "# run Gaussian")
	fmt.Fprintf(w, "%s %s\n", v.Executable(), input)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "exit 0")
}

// writeBody writes everything after the dialect-specific debugging block.
func writeBody(w io.Writer, job *Job, listNodes, countVar string) {
	if job.Plan.MultiNode() {
		writeLindaBlock(w, listNodes, countVar, job.InputFile)
	}
	if job.Plan.Queue.Opportunistic() {
		writeLogRotation(w, job.inputStem())
	}
	writeRun(w, job.Plan.Version, job.InputFile)
}
