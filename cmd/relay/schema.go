package main

import (
	"github.com/spf13/cobra"

	"captainhub.app/relay/internal/mapper"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the unified event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd, mapper.UESSchema())
		},
	}
}
