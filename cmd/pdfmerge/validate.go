package main

import (
	"github.com/spf13/cobra"
)

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <directory>",
		Short: "Check that a directory can be used as a merge root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closeFn, err := a.engine(false)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := engine.ValidateDirectory(args[0]); err != nil {
				return err
			}
			a.out.Success("Directory is valid: %s", args[0])
			return nil
		},
	}
}
