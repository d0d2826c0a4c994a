package main

import (
	"fmt"
	"log"
	"os"

	"github.com/casimir-one/casimir-go/pkg/config"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "casimir",
		Usage: "Casimir portal command line client",
		Description: `Builds portal commands, packs them into a transaction, signs it and
delivers the envelope to the portal.

Signing uses the initiator's private key unless a wallet url is configured,
in which case the transaction is delegated to the wallet service.`,
		Version: "1.0.0",
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			userCommand(),
			proposalCommand(),
			attributesCommand(),
			layoutsCommand(),
			journalCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "portal-url",
			Usage:   "Portal API base URL",
			EnvVars: []string{config.EnvPortalURL},
		},
		&cli.StringFlag{
			Name:    "rpc-url",
			Aliases: []string{"rpc"},
			Usage:   "Ethereum RPC endpoint URL",
			EnvVars: []string{config.EnvRPCURL},
		},
		&cli.Uint64Flag{
			Name:    "chain-id",
			Aliases: []string{"chain"},
			Usage:   fmt.Sprintf("Ethereum chain ID: %s", config.GetSupportedChainIDsString()),
			EnvVars: []string{config.EnvChainID},
		},
		&cli.StringFlag{
			Name:    "wallet-url",
			Usage:   "Wallet service URL; enables delegated signing",
			EnvVars: []string{config.EnvWalletURL},
		},
		&cli.StringFlag{
			Name:    "wallet-config",
			Usage:   "YAML file with the wallet url, from address and auth token",
			EnvVars: []string{config.EnvWalletConfig},
		},
		&cli.StringFlag{
			Name:    "wallet-from",
			Usage:   "Address the wallet is expected to sign with",
			EnvVars: []string{config.EnvWalletFrom},
		},
		&cli.StringFlag{
			Name:    "wallet-token",
			Usage:   "Bearer token sent to the wallet service",
			EnvVars: []string{config.EnvWalletAuthToken},
		},
		&cli.BoolFlag{
			Name:    "return-msg",
			Usage:   "Print the built envelope instead of sending it",
			EnvVars: []string{config.EnvReturnMsg},
		},
		&cli.StringFlag{
			Name:    "journal",
			Usage:   "Transaction journal backend: none, badger, redis or sqlite",
			EnvVars: []string{config.EnvJournalType},
		},
		&cli.StringFlag{
			Name:    "journal-path",
			Usage:   "Badger data directory or SQLite database file",
			EnvVars: []string{config.EnvJournalPath},
		},
		&cli.StringFlag{
			Name:    "redis-address",
			Usage:   "Redis address for the redis journal",
			EnvVars: []string{config.EnvRedisAddress},
		},
		&cli.Float64Flag{
			Name:    "rate-limit",
			Usage:   "Maximum portal requests per second (0 disables)",
			EnvVars: []string{config.EnvHTTPRateLimit},
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Usage:   "Enable verbose logging",
			EnvVars: []string{config.EnvDebug},
		},
	}
}
