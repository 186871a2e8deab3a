package cli

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goDutchAuction/internal/core/ledger/genesis"
	"github.com/LeJamon/goDutchAuction/internal/rpc"
	jtx "github.com/LeJamon/goDutchAuction/internal/testing"
)

func startServer(t *testing.T) (*jtx.TestEnv, string) {
	t.Helper()
	env := jtx.NewTestEnv(t)
	server := rpc.NewServer(env.Service(), rpc.Config{Admin: true})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return env, ts.URL
}

func run(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--rpc", url))
	err := rootCmd.Execute()
	return out.String(), err
}

// field returns the value printed after "name:".
func field(t *testing.T, output, name string) string {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		if rest, ok := strings.CutPrefix(line, name+":"); ok {
			return strings.TrimSpace(rest)
		}
	}
	t.Fatalf("no %q in output:\n%s", name, output)
	return ""
}

// Flags keep their values between Execute calls, so the whole flow runs
// in one test against one server.
func TestAuctionFlow(t *testing.T) {
	env, url := startServer(t)
	alice := env.Account("alice")
	bob := env.Account("bob")

	out, err := run(t, url, "pay", "--seed", genesis.DefaultMasterSeed, "--to", alice.Address, "--amount", "1000")
	require.NoError(t, err, out)
	assert.Equal(t, "tesSUCCESS", field(t, out, "engine_result"))

	_, err = run(t, url, "pay", "--seed", genesis.DefaultMasterSeed, "--to", bob.Address, "--amount", "500")
	require.NoError(t, err)

	out, err = run(t, url, "account", alice.Address)
	require.NoError(t, err, out)
	assert.Equal(t, "1000", field(t, out, "balance"))
	assert.Equal(t, "1", field(t, out, "sequence"))

	out, err = run(t, url, "mint", "create", "--seed", "alice", "--decimals", "2")
	require.NoError(t, err, out)
	mint := field(t, out, "mint")

	out, err = run(t, url, "mint", "issue", "--seed", "alice", "--mint", mint, "--amount", "5")
	require.NoError(t, err, out)

	out, err = run(t, url, "auction", "create", "--seed", "alice", "--mint", mint, "--amount", "1",
		"--start-price", "100", "--floor-price", "10", "--start", "0", "--end", "100")
	require.NoError(t, err, out)
	escrow := field(t, out, "escrow_account")
	assert.Len(t, escrow, 64)

	out, err = run(t, url, "clock", "advance", "50")
	require.NoError(t, err, out)
	assert.Equal(t, "50", field(t, out, "clock_time"))

	out, err = run(t, url, "auction", "price", escrow)
	require.NoError(t, err, out)
	assert.Contains(t, out, "price=55")
	assert.Contains(t, out, "Active")

	out, err = run(t, url, "auction", "settle", escrow, "--seed", "bob", "--max-price", "60")
	require.NoError(t, err, out)

	out, err = run(t, url, "auction", "show", escrow)
	require.NoError(t, err, out)
	assert.Contains(t, out, `"Status": "Settled"`)
	assert.Contains(t, out, bob.Address)

	assert.Equal(t, uint64(1055), env.Balance(alice))
	assert.Equal(t, uint64(445), env.Balance(bob))

	out, err = run(t, url, "account", "--seed", "alice", "--mint", mint)
	require.NoError(t, err, out)
	assert.Contains(t, out, "4.00")

	// a second settle is a ledger failure, reported as an error
	out, err = run(t, url, "auction", "settle", escrow, "--seed", "bob")
	require.Error(t, err)
	assert.Equal(t, "tecNOT_ACTIVE", field(t, out, "engine_result"))

	out, err = run(t, url, "rpc", "server_info")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"clock_manual": true`)
}

func TestSigningCommandsNeedSeed(t *testing.T) {
	_, url := startServer(t)
	_, err := run(t, url, "clock", "advance", "x")
	assert.Error(t, err)

	_, err = run(t, url, "auction", "cancel", strings.Repeat("00", 32))
	assert.ErrorIs(t, err, errNoSeed)
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "auctiond version "+rootCmd.Version)
}
