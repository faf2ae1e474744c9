package cmd

import (
	"io"
	"os"

	"github.com/Justype/gaussub/internal/cluster"
	"github.com/Justype/gaussub/internal/config"
	"github.com/Justype/gaussub/internal/plan"
	"github.com/Justype/gaussub/internal/prompt"
	"github.com/Justype/gaussub/internal/resolver"
	"github.com/Justype/gaussub/internal/scheduler"
	"github.com/Justype/gaussub/internal/utils"
	"github.com/spf13/afero"
)

// FS is the filesystem input files are read from and scripts written to.
var FS afero.Fs = afero.NewOsFs()

// Collaborators, replaced in tests.
var (
	Stdin        io.Reader = os.Stdin
	hostname               = os.Hostname
	workingDir             = os.Getwd
	newInventory           = func(cfg config.Config) cluster.Inventory { return cluster.NewShellInventory(cfg) }
)

// checkInput verifies the input file name and that it exists.
func checkInput(path string) error {
	_, ext, ok := utils.SplitInputName(path)
	if !ok {
		return plan.NewUsageError("the input file must have exactly one '.' in its name: %s", path)
	}
	if !utils.IsGaussianExt(ext) {
		return plan.NewUsageError("the file extension must be .com or .gjf, not .%s", ext)
	}
	if !utils.FileExists(FS, path) {
		return plan.NewUsageError("the input file %s does not exist", path)
	}
	return nil
}

// detectGeneration honours the configured generation, else the hostname.
func detectGeneration() (cluster.Generation, error) {
	if config.Global.Generation != "" {
		return cluster.Lookup(config.Global.Generation)
	}
	host, err := hostname()
	if err != nil {
		utils.PrintDebug("Failed to read hostname: %v", err)
	}
	gen := cluster.Detect(host)
	utils.PrintDebug("Detected generation %s from host %q", gen.Name, host)
	return gen, nil
}

// runSubmit resolves, validates and writes the script for one input file.
func runSubmit(input string) error {
	if err := checkInput(input); err != nil {
		return err
	}
	gen, err := detectGeneration()
	if err != nil {
		return err
	}

	answers := prompt.NewTerminal(Stdin, utils.Stdout)
	res, err := resolver.New(gen, newInventory(config.Global), answers, resolver.OptionsFromConfig(config.Global)).Resolve(input)
	if err != nil {
		return err
	}
	for _, a := range res.Advisories {
		utils.PrintWarning("%s", a)
	}
	for _, n := range res.Notes {
		utils.PrintNote("%s", n)
	}
	printSummary(utils.Stdout, res.Plan, gen)

	report := validateInput(res.Plan, gen)
	printAdvisories(utils.Stdout, report.Texts())
	if report.Fatal {
		utils.PrintError("Exiting without writing %s", utils.StylePath(res.Plan.OutputScript))
		return report.Err
	}

	sw, err := scheduler.ForGeneration(gen)
	if err != nil {
		return err
	}
	wd, err := workingDir()
	if err != nil {
		return err
	}
	utils.PrintSuccess("Writing to %s", utils.StylePath(res.Plan.OutputScript))
	if err := scheduler.CreateScript(FS, res.Plan.OutputScript, sw, scheduler.NewJob(res.Plan, wd)); err != nil {
		return err
	}
	utils.PrintHint("Please run '%s' to submit to the scheduler",
		utils.StyleCommand(sw.SubmitCommand()+" "+res.Plan.OutputScript))
	return nil
}
