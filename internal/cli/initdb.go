package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openfolio/brokerd/ledger"
)

func newInitDBCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "initdb",
		Short: "Create the ledger database and schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			store, err := ledger.Open(cfg.Ledger.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Printf("ledger ready at %s\n", cfg.Ledger.DBPath)
			return nil
		},
	}
}
