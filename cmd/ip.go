package cmd

import (
	"fmt"

	"rackops/core/inventory"
	"rackops/feature/machines"

	"github.com/spf13/cobra"
)

var freeOffset int

// ipCmd groups address lookups
var ipCmd = &cobra.Command{
	Use:   "ip",
	Short: "Look up IPv4 addresses in the inventory",
}

var ipFreeCmd = &cobra.Command{
	Use:   "free NETWORK",
	Short: "Print the first free address of a named IPv4 network",
	Long: `Print the first address of NETWORK that is neither allocated nor reserved.

--offset skips that many addresses from the start of the network,
which is useful when the first hosts are kept for gateways.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLookups(func(svc *machines.Service) error {
			addr, err := svc.FreeIP(cmd.Context(), args[0], freeOffset)
			if err != nil {
				return err
			}
			fmt.Println(addr)
			return nil
		})
	},
}

var ipOwnerCmd = &cobra.Command{
	Use:   "owner IP",
	Short: "Show which machines an address is allocated to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLookups(func(svc *machines.Service) error {
			allocations, err := svc.Owners(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(allocations) == 0 {
				fmt.Printf("%s is not allocated\n", args[0])
				return nil
			}
			for _, a := range allocations {
				name := a.MachineName
				if name == "" {
					name = fmt.Sprintf("object %d", a.MachineID)
				}
				fmt.Printf("%s\t%s\t%s\t%s\n", a.IP, name, a.Interface, a.Kind)
			}
			return nil
		})
	},
}

func init() {
	ipFreeCmd.Flags().IntVar(&freeOffset, "offset", 0, "Number of addresses to skip from the start of the network")

	ipCmd.AddCommand(ipFreeCmd, ipOwnerCmd)
	RootCmd.AddCommand(ipCmd)
}

func withLookups(fn func(*machines.Service) error) error {
	e, err := setup()
	if err != nil {
		return err
	}

	db, err := e.connect()
	if err != nil {
		return err
	}
	defer e.close(db)

	return fn(machines.NewService(inventory.New(db), e.logger, 0))
}
