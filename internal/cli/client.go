package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/LeJamon/goDutchAuction/internal/core/tx"
	"github.com/LeJamon/goDutchAuction/internal/core/tx/auction"
	"github.com/LeJamon/goDutchAuction/internal/crypto"
	"github.com/LeJamon/goDutchAuction/internal/rpc"
	"github.com/spf13/cobra"
)

// errNoSeed is returned by signing commands run without --seed.
var errNoSeed = errors.New("--seed is required to sign")

var newClient = func() *rpc.Client {
	return rpc.NewClient(rpcURL)
}

// addSeedFlag registers --seed on a signing command.
func addSeedFlag(cmd *cobra.Command, seed *string) {
	cmd.Flags().StringVar(seed, "seed", "", "secret seed of the signing account")
}

func keyFromSeed(seed string) (*crypto.KeyPair, error) {
	if seed == "" {
		return nil, errNoSeed
	}
	return crypto.NewKeyPairFromSeed([]byte(seed))
}

func parseAddress(name, s string) (crypto.AccountID, error) {
	id, err := crypto.DecodeAddress(s)
	if err != nil {
		return id, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return id, nil
}

func parseEscrowArg(s string) ([32]byte, error) {
	key, err := auction.ParseEscrow(s)
	if err != nil {
		return key, fmt.Errorf("invalid escrow account %q: %w", s, err)
	}
	return key, nil
}

// fillSequence sets the sender's next sequence from the server unless the
// transaction already carries one.
func fillSequence(ctx context.Context, c *rpc.Client, t tx.Transaction) error {
	common := t.GetCommon()
	if common.Sequence != nil {
		return nil
	}
	info, err := c.AccountInfo(ctx, common.Account)
	if err != nil {
		return fmt.Errorf("fetch sequence: %w", err)
	}
	common.SetSequence(info.Sequence)
	return nil
}

// signAndSubmit signs t locally and submits it. A result that did not
// apply is returned as an error after being printed.
func signAndSubmit(ctx context.Context, w io.Writer, c *rpc.Client, key *crypto.KeyPair, t tx.Transaction) (*rpc.SubmitResponse, error) {
	if err := fillSequence(ctx, c, t); err != nil {
		return nil, err
	}
	if err := tx.Sign(t, key); err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	res, err := c.Submit(ctx, t)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "engine_result:  %s\n", res.EngineResult)
	fmt.Fprintf(w, "message:        %s\n", res.EngineResultMessage)
	fmt.Fprintf(w, "tx_hash:        %s\n", res.TxHash)
	fmt.Fprintf(w, "clock_time:     %d\n", res.ClockTime)
	if !res.Applied {
		return res, fmt.Errorf("transaction not applied: %s", res.EngineResult)
	}
	return res, nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// rpcCmd calls any method by name and prints the raw result.
var rpcCmd = &cobra.Command{
	Use:   "rpc <method> [params-json]",
	Short: "Call a JSON-RPC method on the server",
	Long: `Call a JSON-RPC method by name and pretty print its result.

Example:
  auctiond rpc account_info '{"account": "r..."}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var params any
		if len(args) > 1 {
			var raw map[string]any
			if err := json.Unmarshal([]byte(args[1]), &raw); err != nil {
				return fmt.Errorf("failed to parse parameters: %w", err)
			}
			params = raw
		}
		var out map[string]any
		if err := newClient().Call(cmd.Context(), args[0], params, &out); err != nil {
			var rpcErr *rpc.RpcError
			if errors.As(err, &rpcErr) {
				return fmt.Errorf("RPC error [%d] %s: %s", rpcErr.Code, rpcErr.ErrorString, rpcErr.Message)
			}
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	rootCmd.AddCommand(rpcCmd)
}
