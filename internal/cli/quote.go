package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// quote is a one-shot lookup against the configured provider, handy
// for smoke-testing an http provider before pointing the server at it.
func newQuoteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL",
		Short: "Look up a quote for one symbol and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			provider, closeProvider, err := newProvider(cfg)
			if err != nil {
				return err
			}
			defer closeProvider()

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			q, err := provider.Lookup(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s (%s): %s\n", q.Symbol, q.Name, q.Price.StringFixed(2))
			return nil
		},
	}
}
