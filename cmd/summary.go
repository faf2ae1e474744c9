package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Justype/gaussub/internal/cluster"
	"github.com/Justype/gaussub/internal/config"
	"github.com/Justype/gaussub/internal/plan"
	"github.com/Justype/gaussub/internal/utils"
	"github.com/Justype/gaussub/internal/validate"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// validateInput cross-checks the input file against the resolved plan.
func validateInput(p plan.ResourcePlan, gen cluster.Generation) validate.Report {
	return validate.CheckFile(FS, p.InputFile, p, gen, config.Global.Allocations.General)
}

// printSummary renders the resolved plan as a table.
func printSummary(w io.Writer, p plan.ResourcePlan, gen cluster.Generation) {
	allocation := p.Allocation
	if allocation == "" {
		allocation = "(shared)"
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Parameter", "Value"})
	table.SetAutoWrapText(false)
	table.Append([]string{"Cluster", string(gen.Name)})
	table.Append([]string{"Queue", string(p.Queue)})
	table.Append([]string{"Allocation", allocation})
	table.Append([]string{"Nodes", strconv.Itoa(p.NodeCount)})
	table.Append([]string{"Cores per node", strconv.Itoa(p.CoresPerNode)})
	table.Append([]string{"Total cores", strconv.Itoa(p.TotalCores())})
	if gen.TracksMemory {
		table.Append([]string{"Memory per node", humanize.IBytes(uint64(p.MemoryGb) << 30)})
	}
	table.Append([]string{"Walltime", p.Walltime.String()})
	table.Append([]string{"Version", p.Version.String()})
	table.Append([]string{"Script", p.OutputScript})
	fmt.Fprintln(w)
	table.Render()
}

const bannerWidth = 40

// printAdvisories prints the input file warnings under a banner.
func printAdvisories(w io.Writer, advisories []string) {
	if len(advisories) == 0 {
		return
	}
	rule := strings.Repeat("#", bannerWidth)
	fmt.Fprintf(w, "\n%s\n%s%s\n%s\n", rule, strings.Repeat(" ", 15), utils.StyleWarning("WARNINGS"), rule)
	for _, a := range advisories {
		fmt.Fprintf(w, "\n%s\n", utils.WrapParagraph(a, utils.ParagraphWidth))
	}
	fmt.Fprintln(w)
}
