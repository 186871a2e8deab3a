package cli

import (
	"fmt"

	"github.com/LeJamon/goDutchAuction/internal/core/tx/payment"
	"github.com/LeJamon/goDutchAuction/internal/core/tx/token"
	"github.com/LeJamon/goDutchAuction/internal/rpc"
	"github.com/spf13/cobra"
)

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Create mints and issue tokens",
}

var mintCreateFlags struct {
	seed     string
	decimals uint8
}

var mintCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new mint issued by the signer",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := keyFromSeed(mintCreateFlags.seed)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		c := newClient()

		create := token.NewMintCreate(key.AccountID(), mintCreateFlags.decimals)
		if err := fillSequence(ctx, c, create); err != nil {
			return err
		}
		if _, err := signAndSubmit(ctx, cmd.OutOrStdout(), c, key, create); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "mint:           %s\n", create.MintID())
		return nil
	},
}

var mintIssueFlags struct {
	seed   string
	mint   string
	to     string
	amount string
}

var mintIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue new supply of a mint to an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &mintIssueFlags
		key, err := keyFromSeed(f.seed)
		if err != nil {
			return err
		}
		mint, err := parseAddress("mint", f.mint)
		if err != nil {
			return err
		}
		dst := key.AccountID()
		if f.to != "" {
			if dst, err = parseAddress("destination", f.to); err != nil {
				return err
			}
		}

		ctx := cmd.Context()
		c := newClient()
		bal, err := c.TokenBalance(ctx, dst, mint)
		if err != nil {
			return err
		}
		amount, err := rpc.ParseAmount(f.amount, bal.Decimals)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", f.amount, err)
		}
		_, err = signAndSubmit(ctx, cmd.OutOrStdout(), c, key, token.NewMintTo(key.AccountID(), mint, dst, amount))
		return err
	},
}

var transferFlags struct {
	seed   string
	mint   string
	to     string
	amount string
}

var mintTransferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfer tokens to another account",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &transferFlags
		key, err := keyFromSeed(f.seed)
		if err != nil {
			return err
		}
		mint, err := parseAddress("mint", f.mint)
		if err != nil {
			return err
		}
		dst, err := parseAddress("destination", f.to)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		c := newClient()
		bal, err := c.TokenBalance(ctx, key.AccountID(), mint)
		if err != nil {
			return err
		}
		amount, err := rpc.ParseAmount(f.amount, bal.Decimals)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", f.amount, err)
		}
		_, err = signAndSubmit(ctx, cmd.OutOrStdout(), c, key, token.NewTokenTransfer(key.AccountID(), mint, dst, amount))
		return err
	},
}

var payFlags struct {
	seed   string
	to     string
	amount uint64
	memo   string
}

var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Send native currency, creating the destination if needed",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := keyFromSeed(payFlags.seed)
		if err != nil {
			return err
		}
		dst, err := parseAddress("destination", payFlags.to)
		if err != nil {
			return err
		}
		p := payment.NewPayment(key.AccountID(), dst, payFlags.amount)
		p.Memo = payFlags.memo
		_, err = signAndSubmit(cmd.Context(), cmd.OutOrStdout(), newClient(), key, p)
		return err
	},
}

func init() {
	rootCmd.AddCommand(mintCmd, payCmd)
	mintCmd.AddCommand(mintCreateCmd, mintIssueCmd, mintTransferCmd)

	addSeedFlag(mintCreateCmd, &mintCreateFlags.seed)
	mintCreateCmd.Flags().Uint8Var(&mintCreateFlags.decimals, "decimals", 0, "display precision of the asset (0-18)")

	addSeedFlag(mintIssueCmd, &mintIssueFlags.seed)
	mintIssueCmd.Flags().StringVar(&mintIssueFlags.mint, "mint", "", "mint to issue from")
	mintIssueCmd.Flags().StringVar(&mintIssueFlags.to, "to", "", "destination account (default: the issuer)")
	mintIssueCmd.Flags().StringVar(&mintIssueFlags.amount, "amount", "", "amount in display units")
	_ = mintIssueCmd.MarkFlagRequired("mint")
	_ = mintIssueCmd.MarkFlagRequired("amount")

	addSeedFlag(mintTransferCmd, &transferFlags.seed)
	mintTransferCmd.Flags().StringVar(&transferFlags.mint, "mint", "", "mint of the tokens")
	mintTransferCmd.Flags().StringVar(&transferFlags.to, "to", "", "destination account")
	mintTransferCmd.Flags().StringVar(&transferFlags.amount, "amount", "", "amount in display units")
	_ = mintTransferCmd.MarkFlagRequired("mint")
	_ = mintTransferCmd.MarkFlagRequired("to")
	_ = mintTransferCmd.MarkFlagRequired("amount")

	addSeedFlag(payCmd, &payFlags.seed)
	payCmd.Flags().StringVar(&payFlags.to, "to", "", "destination account")
	payCmd.Flags().Uint64Var(&payFlags.amount, "amount", 0, "amount in native units")
	payCmd.Flags().StringVar(&payFlags.memo, "memo", "", "memo attached to the payment")
	_ = payCmd.MarkFlagRequired("to")
	_ = payCmd.MarkFlagRequired("amount")
}
