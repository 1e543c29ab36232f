package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awantoch/geminiproxy/constants"
	"github.com/awantoch/geminiproxy/storage"
)

// newExchangesCmd creates the 'exchanges' subcommand. It prints one JSON
// object per line so the output can be piped to jq.
func newExchangesCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   constants.CmdExchanges,
		Short: constants.DescExchanges,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := storage.NewStorageFromConfig(cmd.Context(), &cfg.Audit, nil)
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("auditing is disabled; set audit.driver to sqlite or postgres")
			}
			defer store.Close()

			exchanges, err := store.List(cmd.Context(), limit)
			if errors.Is(err, storage.ErrListUnsupported) {
				return fmt.Errorf("audit driver %q cannot be listed", cfg.Audit.Driver)
			}
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, ex := range exchanges {
				if err := enc.Encode(ex); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of exchanges to print (0 for all)")
	return cmd
}
