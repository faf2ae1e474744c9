package cmd

import (
	"github.com/Justype/gaussub/internal/utils"
	"github.com/spf13/cobra"
)

// completeInputFiles offers Gaussian input files for the single positional argument.
func completeInputFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return utils.GaussianExtensions, cobra.ShellCompDirectiveFilterFileExt
}
