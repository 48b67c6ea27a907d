package cmd

import (
	"os"

	"rackops/core/inventory"
	"rackops/feature/support"

	"github.com/spf13/cobra"
)

// supportCmd prints the maintenance report
var supportCmd = &cobra.Command{
	Use:   "support",
	Short: "Print service tag, model and support end dates of physical servers",
	Long:  `Lists every physical server not tagged retired with its OEM serial, hardware model, support end and hardware warranty end.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}

		db, err := e.connect()
		if err != nil {
			return err
		}
		defer e.close(db)

		rows, err := support.NewService(inventory.New(db), e.logger, nil).Rows(cmd.Context())
		if err != nil {
			return err
		}
		return support.WriteTable(os.Stdout, rows)
	},
}

func init() {
	RootCmd.AddCommand(supportCmd)
}
