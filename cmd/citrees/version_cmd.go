package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	// VersionMajor is the major number in citrees' version
	VersionMajor = 0
	// VersionMinor is the minor number in citrees' version
	VersionMinor = 1
	// VersionPatch is the patch number in citrees' version
	VersionPatch = 0
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of citrees",
		Long:  `All software has versions. This is citrees'`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("citrees v%d.%d.%d\n", VersionMajor, VersionMinor, VersionPatch)
		},
	}
}
