// Package validate cross-checks a Gaussian input file against a resolved plan.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Justype/gaussub/internal/cluster"
	"github.com/Justype/gaussub/internal/plan"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

var (
	memRe   = regexp.MustCompile(`(?i)mem\s*=\s*(\S*?\s*gb\b|\S*)`)
	nprocRe = regexp.MustCompile(`(?i)nproc(?:shared)?\s*=\s*(\S*)`)
)

const lindaKeyword = "lindaworker"

// Advisory is one message for the user. Fatal advisories block script creation.
type Advisory struct {
	Text  string
	Fatal bool
}

// Report is the outcome of a check. Advisories are in detection order.
type Report struct {
	Advisories []Advisory
	Fatal      bool
	Err        error // every fatal condition, combined
}

func (r *Report) warn(format string, a ...interface{}) {
	r.Advisories = append(r.Advisories, Advisory{Text: fmt.Sprintf(format, a...)})
}

func (r *Report) reject(err error, format string, a ...interface{}) {
	r.Advisories = append(r.Advisories, Advisory{Text: fmt.Sprintf(format, a...), Fatal: true})
	r.Fatal = true
	r.Err = multierr.Append(r.Err, err)
}

// Texts returns the advisory messages.
func (r Report) Texts() []string {
	out := make([]string, 0, len(r.Advisories))
	for _, a := range r.Advisories {
		out = append(out, a.Text)
	}
	return out
}

// directive is the last occurrence of a keyed line in the input.
type directive struct {
	found   bool
	value   string
	line    int
	content string
}

type directives struct {
	mem   directive
	nproc directive
	linda bool
}

func scan(text string) directives {
	var d directives
	// Input lines have no length limit.
	for i, line := range strings.Split(text, "\n") {
		lineNo := i + 1
		line = strings.TrimSuffix(line, "\r")
		lower := strings.ToLower(line)
		if strings.Contains(lower, lindaKeyword) {
			d.linda = true
		}
		if m := memRe.FindStringSubmatch(line); m != nil {
			d.mem = directive{found: true, value: m[1], line: lineNo, content: strings.TrimSpace(line)}
		}
		if m := nprocRe.FindStringSubmatch(line); m != nil {
			d.nproc = directive{found: true, value: m[1], line: lineNo, content: strings.TrimSpace(line)}
		}
	}
	return d
}

// Check runs every rule against text and collects all advisories before
// deciding whether the result is fatal. general is the organisation-wide
// allocation whose nodes are assumed to be full-size.
func Check(p plan.ResourcePlan, gen cluster.Generation, general string, text string) Report {
	var r Report
	d := scan(text)
	onGeneral := p.Allocation != "" && p.Allocation == general

	checkMemory(&r, d.mem, gen, onGeneral)
	checkCores(&r, d.nproc, p, gen, onGeneral)
	checkLinda(&r, d.linda, p)
	return r
}

// CheckFile reads path from fs and runs Check on its contents.
func CheckFile(fs afero.Fs, path string, p plan.ResourcePlan, gen cluster.Generation, general string) Report {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		var r Report
		r.reject(plan.NewUsageError("cannot read input file %s: %v", path, err),
			"Cannot read the input file %s.", path)
		return r
	}
	return Check(p, gen, general, string(data))
}

func checkMemory(r *Report, d directive, gen cluster.Generation, onGeneral bool) {
	if !d.found {
		return
	}
	value := strings.ToLower(strings.Join(strings.Fields(d.value), ""))
	if value == "" {
		r.reject(plan.NewParseError(d.line, d.content, "memory directive has no value"),
			"Cannot read the memory directive on line %d (%s). Not forming the script.", d.line, d.content)
		return
	}
	if !strings.HasSuffix(value, "gb") {
		r.warn("This script only checks the memory specification if it is in Gb. " +
			"Your calculation may still be fine, but this script won't check. This is just a warning.")
		return
	}
	mem, err := strconv.Atoi(strings.TrimSuffix(value, "gb"))
	if err != nil {
		r.reject(plan.NewParseError(d.line, d.content, "memory is not a whole number of Gb"),
			"Cannot read the memory directive on line %d (%s). Not forming the script.", d.line, d.content)
		return
	}
	half := gen.NodeMemoryGb / 2
	if onGeneral && mem > half {
		r.warn("Generally you don't want to specify more than half the memory on a node. "+
			"You've asked for %dGb and most of these nodes only have %dGb. This is just a warning.",
			mem, gen.NodeMemoryGb)
	}
}

func checkCores(r *Report, d directive, p plan.ResourcePlan, gen cluster.Generation, onGeneral bool) {
	nproc := 1
	if d.found {
		n, err := strconv.Atoi(d.value)
		if err != nil {
			r.reject(plan.NewParseError(d.line, d.content, "core count is not a whole number"),
				"Cannot read the core directive on line %d (%s). Not forming the script.", d.line, d.content)
			return
		}
		nproc = n
	}

	full := gen.FullNodeCores
	switch {
	case onGeneral && nproc > full:
		r.reject(&plan.OversubscribedCoresError{Requested: nproc, Available: full},
			"You should not specify more cores than the number available on your node. "+
				"These nodes have %d cores and you've asked for %d cores. "+
				"Please lower the number of cores in your input file. Not forming the script.", full, nproc)
	case onGeneral && !d.found:
		r.warn("Your input file has no %%nprocshared directive, so Gaussian defaults to one core. "+
			"These nodes have %d cores. This is just a warning.", full)
	case onGeneral && nproc < full:
		r.warn("You usually want to use all the cores on a node. "+
			"These nodes have %d cores and you've asked for %d cores. This is just a warning.", full, nproc)
	case !onGeneral && d.found && p.CoresPerNode > 0 && nproc > p.CoresPerNode:
		r.warn("You've asked for %d cores but the nodes you requested have %d cores. This is just a warning.",
			nproc, p.CoresPerNode)
	}
}

func checkLinda(r *Report, found bool, p plan.ResourcePlan) {
	switch {
	case p.MultiNode() && !found:
		r.reject(&plan.LindaMismatchError{NodeCount: p.NodeCount, DirectiveFound: false},
			"Your input file does not contain %%LindaWorkers, but you have asked to use more than one node. "+
				"Please add this line or request only one node. Not forming the script.")
	case !p.MultiNode() && found:
		r.reject(&plan.LindaMismatchError{NodeCount: p.NodeCount, DirectiveFound: true},
			"Your input file contains %%LindaWorkers, but you have only asked to use one node. "+
				"Please remove this line or request more than one node. Not forming the script.")
	}
}
