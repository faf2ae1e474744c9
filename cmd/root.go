package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Justype/gaussub/internal/config"
	"github.com/Justype/gaussub/internal/plan"
	"github.com/Justype/gaussub/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var debugMode bool

var rootCmd = &cobra.Command{
	Use:   "gaussub <input.com|input.gjf>",
	Short: "Build a batch submission script for a Gaussian job on Hyak.",
	Long: `gaussub helps submit Gaussian calculations to the Hyak ikt and mox
clusters. It asks about the calculation (queue, allocation, nodes,
cores, memory, version and walltime) to set up the .pbs or .sh script.

It checks the types of nodes available to set sensible defaults, and
reads the input file to catch problems before anything is submitted.`,
	Example:       "  gaussub water.com\n  gaussub benzene.gjf",
	Version:       config.VERSION,
	Args:          exactlyOneInput,
	SilenceErrors: true,
	SilenceUsage:  true,

	ValidArgsFunction: completeInputFiles,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Step 1: Built-in defaults
		config.LoadDefaults()

		// Step 2: Initialize Viper (read config file, env vars)
		if err := config.InitViper(); err != nil {
			utils.PrintDebug("Error reading config file: %v", err)
		}

		// Step 3: Load values from Viper into Global config
		config.LoadFromViper()

		// Step 4: Apply command-line flags (highest priority)
		if debugMode || config.Global.Debug {
			utils.DebugMode = true
			config.Global.Debug = true
			utils.PrintDebug("Debug mode enabled")
			utils.PrintDebug("gaussub Version: %s", utils.StyleInfo(config.VERSION))
			if used := viper.ConfigFileUsed(); used != "" {
				utils.PrintDebug("Config file: %s", utils.StylePath(used))
			}
			if config.Global.Generation != "" {
				utils.PrintDebug("Generation forced to %s", config.Global.Generation)
			}
		}
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		return runSubmit(args[0])
	},
}

// exactlyOneInput is cobra.ExactArgs(1) reported as a usage error.
func exactlyOneInput(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return plan.NewUsageError("there should only be one argument: the Gaussian input file (%v)", err)
	}
	return nil
}

// normalizeFlagName accepts "_" in place of "-" in flag names.
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// Execute runs the root command and exits with the mapped status.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra's automatic error printing is silenced.
		utils.PrintError("%v", err)
		if plan.IsUsageError(err) {
			fmt.Fprintln(os.Stderr, rootCmd.UseLine())
		}
		os.Exit(plan.ExitCode(err))
	}
}

func init() {
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose output")
	_ = rootCmd.PersistentFlags().MarkHidden("debug")
}
