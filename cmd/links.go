package cmd

import (
	"fmt"

	"rackops/core/inventory"
	"rackops/feature/links"

	"github.com/spf13/cobra"
)

var (
	fastSSHFlag string
	linkDirFlag string
)

// linksCmd creates per-machine fastssh links
var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Create one fastssh symlink per active machine",
	Long: `Creates DIR/<machine> -> FASTSSH for every active machine.
Existing files and links are left alone.

Flags override LINKS_FASTSSH and LINKS_DIR.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}

		cfg := e.cfg.Links
		if fastSSHFlag != "" {
			cfg.FastSSH = fastSSHFlag
		}
		if linkDirFlag != "" {
			cfg.Dir = linkDirFlag
		}
		if cfg.FastSSH == "" {
			return links.ErrNoScript
		}

		db, err := e.connect()
		if err != nil {
			return err
		}
		defer e.close(db)

		res, err := links.NewGenerator(inventory.New(db), e.logger).Generate(cmd.Context(), cfg)
		if res != nil {
			for _, name := range res.Created {
				fmt.Printf("+ %s\n", name)
			}
		}
		if err != nil {
			return err
		}

		fmt.Printf("%d created, %d already present\n", len(res.Created), len(res.Skipped))
		return nil
	},
}

func init() {
	linksCmd.Flags().StringVar(&fastSSHFlag, "fastssh", "", "Path of the fastssh script the links point to")
	linksCmd.Flags().StringVar(&linkDirFlag, "dir", "", "Directory to create the links in (default: working directory)")
	RootCmd.AddCommand(linksCmd)
}
