package cli

import (
	"fmt"
	"time"

	"github.com/LeJamon/goDutchAuction/internal/core/pricing"
	"github.com/LeJamon/goDutchAuction/internal/core/tx/auction"
	"github.com/LeJamon/goDutchAuction/internal/rpc"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// auctionCmd represents the auction command group
var auctionCmd = &cobra.Command{
	Use:   "auction",
	Short: "Create, settle, cancel and inspect auctions",
}

var createFlags struct {
	seed       string
	mint       string
	amount     string
	nonce      uint64
	startPrice uint64
	floorPrice uint64
	start      int64
	end        int64
	duration   time.Duration
	curve      string
	step       int64
}

var auctionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Escrow tokens and open a Dutch auction over them",
	Long: `Escrow --amount tokens of --mint and open an auction whose price falls
from --start-price to --floor-price between --start and --end.

--start defaults to the server clock and --end to --start plus --duration.
--nonce defaults to the transaction sequence.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		f := &createFlags
		key, err := keyFromSeed(f.seed)
		if err != nil {
			return err
		}
		mint, err := parseAddress("mint", f.mint)
		if err != nil {
			return err
		}
		curve, err := pricing.ParseCurve(f.curve)
		if err != nil {
			return err
		}

		c := newClient()
		bal, err := c.TokenBalance(ctx, key.AccountID(), mint)
		if err != nil {
			return err
		}
		amount, err := rpc.ParseAmount(f.amount, bal.Decimals)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", f.amount, err)
		}

		start, end := f.start, f.end
		if !cmd.Flags().Changed("start") {
			info, err := c.ServerInfo(ctx)
			if err != nil {
				return err
			}
			clockTime, _ := info["clock_time"].(float64)
			start = int64(clockTime)
		}
		if !cmd.Flags().Changed("end") {
			end = start + int64(f.duration/time.Second)
		}

		schedule := pricing.Schedule{
			StartPrice:   f.startPrice,
			FloorPrice:   f.floorPrice,
			StartTime:    start,
			EndTime:      end,
			Curve:        curve,
			StepInterval: f.step,
		}
		if err := schedule.Validate(); err != nil {
			return err
		}

		create := auction.NewAuctionCreate(key.AccountID(), mint, f.nonce, amount, schedule)
		if err := fillSequence(ctx, c, create); err != nil {
			return err
		}
		if !cmd.Flags().Changed("nonce") {
			create.Nonce = uint64(create.GetSequence())
		}
		if _, err := signAndSubmit(ctx, cmd.OutOrStdout(), c, key, create); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "escrow_account: %s\n", auction.FormatEscrow(create.EscrowAccount()))
		return nil
	},
}

var settleFlags struct {
	seed     string
	maxPrice uint64
}

var auctionSettleCmd = &cobra.Command{
	Use:   "settle <escrow-account>",
	Short: "Buy an auction's lot at the current price",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := keyFromSeed(settleFlags.seed)
		if err != nil {
			return err
		}
		escrow, err := parseEscrowArg(args[0])
		if err != nil {
			return err
		}
		settle := auction.NewAuctionSettle(key.AccountID(), escrow)
		if cmd.Flags().Changed("max-price") {
			settle.WithMaxPrice(settleFlags.maxPrice)
		}
		_, err = signAndSubmit(cmd.Context(), cmd.OutOrStdout(), newClient(), key, settle)
		return err
	},
}

var cancelSeed string

var auctionCancelCmd = &cobra.Command{
	Use:   "cancel <escrow-account>",
	Short: "Cancel an active auction and return the escrowed tokens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := keyFromSeed(cancelSeed)
		if err != nil {
			return err
		}
		escrow, err := parseEscrowArg(args[0])
		if err != nil {
			return err
		}
		_, err = signAndSubmit(cmd.Context(), cmd.OutOrStdout(), newClient(), key, auction.NewAuctionCancel(key.AccountID(), escrow))
		return err
	},
}

var auctionShowCmd = &cobra.Command{
	Use:   "show <escrow-account>",
	Short: "Show an auction record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		escrow, err := parseEscrowArg(args[0])
		if err != nil {
			return err
		}
		rec, err := newClient().AuctionInfo(cmd.Context(), escrow)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), rec)
	},
}

var auctionPriceCmd = &cobra.Command{
	Use:   "price <escrow-account>...",
	Short: "Quote the current price of one or more auctions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		escrows := make([][32]byte, len(args))
		for i, arg := range args {
			escrow, err := parseEscrowArg(arg)
			if err != nil {
				return err
			}
			escrows[i] = escrow
		}

		c := newClient()
		quotes := make([]*rpc.PriceQuote, len(escrows))
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(8)
		for i, escrow := range escrows {
			g.Go(func() error {
				q, err := c.AuctionPrice(ctx, escrow)
				if err != nil {
					return fmt.Errorf("%s: %w", auction.FormatEscrow(escrow), err)
				}
				quotes[i] = q
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for _, q := range quotes {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-9s  price=%d  clock=%d\n", q.EscrowAccount, q.AuctionStatus, q.Price, q.ClockTime)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auctionCmd)
	auctionCmd.AddCommand(auctionCreateCmd, auctionSettleCmd, auctionCancelCmd, auctionShowCmd, auctionPriceCmd)

	fl := auctionCreateCmd.Flags()
	addSeedFlag(auctionCreateCmd, &createFlags.seed)
	fl.StringVar(&createFlags.mint, "mint", "", "mint of the tokens to sell")
	fl.StringVar(&createFlags.amount, "amount", "", "number of tokens to escrow, in display units")
	fl.Uint64Var(&createFlags.nonce, "nonce", 0, "auction nonce")
	fl.Uint64Var(&createFlags.startPrice, "start-price", 0, "opening price in native units")
	fl.Uint64Var(&createFlags.floorPrice, "floor-price", 0, "floor price in native units")
	fl.Int64Var(&createFlags.start, "start", 0, "start time in clock seconds")
	fl.Int64Var(&createFlags.end, "end", 0, "end time in clock seconds")
	fl.DurationVar(&createFlags.duration, "duration", time.Hour, "auction length when --end is not given")
	fl.StringVar(&createFlags.curve, "curve", "linear", "price curve: linear or stepped")
	fl.Int64Var(&createFlags.step, "step", 0, "step interval in seconds for the stepped curve")
	_ = auctionCreateCmd.MarkFlagRequired("mint")
	_ = auctionCreateCmd.MarkFlagRequired("amount")
	_ = auctionCreateCmd.MarkFlagRequired("start-price")
	_ = auctionCreateCmd.MarkFlagRequired("floor-price")

	addSeedFlag(auctionSettleCmd, &settleFlags.seed)
	auctionSettleCmd.Flags().Uint64Var(&settleFlags.maxPrice, "max-price", 0, "reject settlement above this price")

	addSeedFlag(auctionCancelCmd, &cancelSeed)
}
