package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awantoch/geminiproxy/constants"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   constants.CmdVersion,
		Short: constants.DescVersion,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), constants.CmdRoot, constants.Version)
		},
	}
}
