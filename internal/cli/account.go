package cli

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goDutchAuction/internal/crypto"
	"github.com/spf13/cobra"
)

var accountFlags struct {
	seed  string
	mints []string
	txs   int
}

var accountCmd = &cobra.Command{
	Use:   "account [address]",
	Short: "Show an account's balance, sequence and token holdings",
	Long: `Show an account. The address may be omitted when --seed is given, in
which case the seed's account is shown. With --mint the balance of each mint
is listed; with --tx the most recent journaled submissions are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			id  crypto.AccountID
			err error
		)
		switch {
		case len(args) == 1:
			id, err = parseAddress("account", args[0])
		case accountFlags.seed != "":
			var key *crypto.KeyPair
			key, err = keyFromSeed(accountFlags.seed)
			if err == nil {
				id = key.AccountID()
			}
		default:
			err = errors.New("an address or --seed is required")
		}
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		c := newClient()
		w := cmd.OutOrStdout()

		info, err := c.AccountInfo(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "account:   %s\n", info.Account)
		fmt.Fprintf(w, "balance:   %d\n", info.Balance)
		fmt.Fprintf(w, "sequence:  %d\n", info.Sequence)

		for _, m := range accountFlags.mints {
			mint, err := parseAddress("mint", m)
			if err != nil {
				return err
			}
			bal, err := c.TokenBalance(ctx, id, mint)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "token:     %s  %s\n", bal.Mint, bal.Display)
		}

		if accountFlags.txs > 0 {
			txs, err := c.AccountTx(ctx, id, accountFlags.txs)
			if err != nil {
				return err
			}
			for _, t := range txs {
				fmt.Fprintf(w, "tx:        %v  %v  %v  seq=%v clock=%v\n",
					t["hash"], t["type"], t["result"], t["sequence"], t["clock_time"])
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.Flags().StringVar(&accountFlags.seed, "seed", "", "show the account of this seed")
	accountCmd.Flags().StringSliceVar(&accountFlags.mints, "mint", nil, "also show the balance of these mints")
	accountCmd.Flags().IntVar(&accountFlags.txs, "tx", 0, "also list this many recent transactions")
}
