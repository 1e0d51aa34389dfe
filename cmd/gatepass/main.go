// Demo deployment of the gate backed by in-process assets. Real deployments
// wire token.EVM handles against on-chain contracts instead.
package main

import (
	"log"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/ikeenlabs/gatepass"
	"github.com/ikeenlabs/gatepass/logger"
	"github.com/ikeenlabs/gatepass/metrics"
	"github.com/ikeenlabs/gatepass/server"
	"github.com/ikeenlabs/gatepass/token"
	"github.com/ikeenlabs/gatepass/types"
)

func main() {
	app := &cli.App{
		Name:  "gatepass",
		Usage: "membership gate with a demo in-memory asset backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Value: ":8080", EnvVars: []string{"PORT"}},
			&cli.StringFlag{Name: "issuer", Value: "0x0000000000000000000000000000000000000015", Usage: "issuer address", EnvVars: []string{"ISSUER"}},
			&cli.StringFlag{Name: "custody", Value: "0x00000000000000000000000000000000000000c0", Usage: "custody address", EnvVars: []string{"CUSTODY"}},
			&cli.StringFlag{Name: "assets", Value: "0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E=20000000", Usage: "comma separated asset=fee pairs", EnvVars: []string{"ASSETS"}},
			&cli.StringFlag{Name: "wrapped", Value: "0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7", Usage: "wrapped-native asset address", EnvVars: []string{"WRAPPED"}},
			&cli.StringFlag{Name: "wrapped_fee", Value: "250000000000000000000", Usage: "wrapped-native fee in wei", EnvVars: []string{"WRAPPED_FEE"}},
			&cli.Int64Flag{Name: "fee_adjust_bps", Value: 200, EnvVars: []string{"FEE_ADJUST_BPS"}},
			&cli.BoolFlag{Name: "refundable", Value: false, EnvVars: []string{"REFUNDABLE"}},
			&cli.StringFlag{Name: "log_level", Value: "info", EnvVars: []string{"LOG_LEVEL"}},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	custody := common.HexToAddress(c.String("custody"))

	assets, tokens, err := parseAssets(c.String("assets"), custody)
	if err != nil {
		return err
	}

	wrappedAddr := common.HexToAddress(c.String("wrapped"))
	wrappedFee, ok := new(big.Int).SetString(c.String("wrapped_fee"), 10)
	if !ok {
		return cli.Exit("invalid wrapped_fee", 1)
	}
	assets = append(assets, types.AcceptedAsset{Token: wrappedAddr, Amount: wrappedFee})
	wrapped := token.NewWrappedMemory("WNATIVE")

	gate, err := gatepass.New(&types.Config{
		Assets:        assets,
		Issuer:        common.HexToAddress(c.String("issuer")),
		Custody:       custody,
		WrappedNative: wrappedAddr,
		FeeAdjustBps:  c.Int64("fee_adjust_bps"),
		Refundable:    c.Bool("refundable"),
		Tokens:        tokens,
		Wrapped:       wrapped.Bound(custody),
	},
		gatepass.WithLogger(logger.NewZapLogger(c.String("log_level"))),
		gatepass.WithMetrics(metrics.NewPrometheusRecorder()),
	)
	if err != nil {
		return err
	}

	return server.New(gate).Run(c.String("port"))
}

func parseAssets(pairs string, custody common.Address) ([]types.AcceptedAsset, map[common.Address]token.ERC20, error) {
	assets := make([]types.AcceptedAsset, 0)
	tokens := make(map[common.Address]token.ERC20)

	for _, pair := range strings.Split(pairs, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 || !common.IsHexAddress(parts[0]) {
			return nil, nil, cli.Exit("invalid asset pair: "+pair, 1)
		}
		fee, ok := new(big.Int).SetString(parts[1], 10)
		if !ok {
			return nil, nil, cli.Exit("invalid fee in pair: "+pair, 1)
		}

		addr := common.HexToAddress(parts[0])
		assets = append(assets, types.AcceptedAsset{Token: addr, Amount: fee})
		tokens[addr] = token.NewMemory(addr.Hex()).Bound(custody)
	}
	return assets, tokens, nil
}
