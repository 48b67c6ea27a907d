package cmd

import (
	"fmt"

	"rackops/core/inventory"
	"rackops/feature/machines"

	"github.com/spf13/cobra"
)

// machinesCmd lists active machines
var machinesCmd = &cobra.Command{
	Use:   "machines [PATTERN]",
	Short: "List active machines, optionally filtered by a name regular expression",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLookups(func(svc *machines.Service) error {
			var (
				list []inventory.Machine
				err  error
			)
			if len(args) == 1 {
				list, err = svc.Search(cmd.Context(), args[0])
			} else {
				list, err = svc.List(cmd.Context())
			}
			if err != nil {
				return err
			}

			for _, m := range list {
				fmt.Printf("%s\t%s\n", m.Name, m.Type)
			}
			return nil
		})
	},
}

func init() {
	RootCmd.AddCommand(machinesCmd)
}
