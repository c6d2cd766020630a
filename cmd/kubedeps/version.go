package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// BinaryVersion is set at build time with -ldflags "-X main.BinaryVersion=...".
var BinaryVersion = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the kubedeps version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "kubedeps version %s\n", BinaryVersion)
			return err
		},
	}
}
