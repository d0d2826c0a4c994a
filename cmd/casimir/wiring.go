package main

import (
	"fmt"

	"github.com/Layr-Labs/chain-indexer/pkg/clients/ethereum"
	"github.com/casimir-one/casimir-go/pkg/chainTx"
	"github.com/casimir-one/casimir-go/pkg/clients/walletSigner"
	"github.com/casimir-one/casimir-go/pkg/config"
	"github.com/casimir-one/casimir-go/pkg/journal"
	badgerJournal "github.com/casimir-one/casimir-go/pkg/journal/badger"
	redisJournal "github.com/casimir-one/casimir-go/pkg/journal/redis"
	sqliteJournal "github.com/casimir-one/casimir-go/pkg/journal/sqlite"
	"github.com/casimir-one/casimir-go/pkg/logger"
	"github.com/casimir-one/casimir-go/pkg/services/attributes"
	"github.com/casimir-one/casimir-go/pkg/services/layout"
	"github.com/casimir-one/casimir-go/pkg/services/user"
	"github.com/casimir-one/casimir-go/pkg/transactionSigner"
	"github.com/casimir-one/casimir-go/pkg/transport"
	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// runtime holds the wired services for one CLI invocation.
type runtime struct {
	env    *config.Env
	logger *zap.Logger

	users      *user.UserService
	attributes *attributes.AttributesService
	layouts    *layout.LayoutService
	journal    journal.IJournal

	closers []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// buildEnv reads the environment and applies explicitly set flags on top.
func buildEnv(c *cli.Context) (*config.Env, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	if c.IsSet("portal-url") {
		env.PortalURL = c.String("portal-url")
	}
	if c.IsSet("rpc-url") {
		env.RpcUrl = c.String("rpc-url")
	}
	if c.IsSet("chain-id") {
		env.ChainID = config.ChainId(c.Uint64("chain-id"))
	}
	if c.IsSet("wallet-url") {
		env.WalletURL = c.String("wallet-url")
	}
	if c.IsSet("return-msg") {
		env.ReturnMsg = c.Bool("return-msg")
	}
	if c.IsSet("journal") {
		env.JournalType = config.JournalType(c.String("journal"))
	}
	if c.IsSet("journal-path") {
		env.JournalPath = c.String("journal-path")
	}
	if c.IsSet("redis-address") {
		env.RedisAddress = c.String("redis-address")
	}
	if c.IsSet("rate-limit") {
		env.HTTPRateLimit = c.Float64("rate-limit")
	}
	if c.IsSet("verbose") {
		env.Debug = c.Bool("verbose")
	}
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return env, nil
}

func openJournal(env *config.Env, l *zap.Logger) (journal.IJournal, error) {
	switch env.JournalType {
	case config.JournalType_None, "":
		return nil, nil
	case config.JournalType_Memory:
		// records would be gone when the command exits
		return nil, fmt.Errorf("journal type %q does not persist across CLI invocations, use badger, redis or sqlite", env.JournalType)
	case config.JournalType_Badger:
		return badgerJournal.NewBadgerJournal(env.JournalPath, l)
	case config.JournalType_Redis:
		return redisJournal.NewRedisJournal(&redisJournal.RedisConfig{Address: env.RedisAddress}, l)
	case config.JournalType_Sqlite:
		return sqliteJournal.NewSqliteJournal(env.JournalPath, l)
	default:
		return nil, fmt.Errorf("unsupported journal type %q", env.JournalType)
	}
}

// remoteSignerConfig merges the optional wallet config file with the
// environment and flags; explicit values win over the file.
func remoteSignerConfig(c *cli.Context, env *config.Env) (*config.RemoteSignerConfig, error) {
	rsc := config.RemoteSignerConfigFromEnv(env)
	if path := c.String("wallet-config"); path != "" {
		loaded, err := config.LoadRemoteSignerConfig(path)
		if err != nil {
			return nil, err
		}
		if env.WalletURL != "" {
			loaded.Url = env.WalletURL
		}
		rsc = loaded
	}
	if c.IsSet("wallet-from") {
		rsc.FromAddress = c.String("wallet-from")
	}
	if c.IsSet("wallet-token") {
		rsc.AuthToken = c.String("wallet-token")
	}
	return rsc, nil
}

func newRuntime(c *cli.Context) (*runtime, error) {
	env, err := buildEnv(c)
	if err != nil {
		return nil, err
	}

	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: env.Debug})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	rt := &runtime{env: env, logger: l}
	rt.closers = append(rt.closers, func() { _ = l.Sync() })

	if err := rt.wire(c); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *runtime) wire(c *cli.Context) error {
	env, l := rt.env, rt.logger

	chainName, err := env.ChainName()
	if err != nil {
		return err
	}
	l.Sugar().Debugw("Using chain", "name", chainName, "chain_id", env.ChainID)

	ethClient := ethereum.NewEthereumClient(&ethereum.EthereumClientConfig{
		BaseUrl:   env.RpcUrl,
		BlockType: ethereum.BlockType_Latest,
	}, l)
	nodeClient, err := ethClient.GetEthereumContractCaller()
	if err != nil {
		return fmt.Errorf("failed to get Ethereum client: %w", err)
	}
	chainService := chainTx.NewChainService(&chainTx.ChainInfo{
		ChainID:   env.ChainID,
		ChainName: chainName,
	}, nodeClient, l)

	localSigner, err := transactionSigner.NewPrivateKeySigner(nodeClient, l)
	if err != nil {
		return fmt.Errorf("failed to create private key signer: %w", err)
	}

	rsc, err := remoteSignerConfig(c, env)
	if err != nil {
		return err
	}
	env.WalletURL = rsc.Url

	var delegated transactionSigner.ITransactionSigner
	if env.UseWallet() {
		walletClient, err := walletSigner.NewWalletClientFromRemoteSignerConfig(rsc, l)
		if err != nil {
			return fmt.Errorf("failed to create wallet client: %w", err)
		}
		rt.closers = append(rt.closers, walletClient.Close)

		var from common.Address
		if rsc.FromAddress != "" {
			if !common.IsHexAddress(rsc.FromAddress) {
				return fmt.Errorf("invalid wallet from address %q", rsc.FromAddress)
			}
			from = common.HexToAddress(rsc.FromAddress)
		}
		delegated, err = transactionSigner.NewWalletSigner(walletClient, from, l)
		if err != nil {
			return fmt.Errorf("failed to create wallet signer: %w", err)
		}
		l.Sugar().Debugw("Delegated signing enabled", "wallet", rsc.Url, "from", from.Hex())
	}

	j, err := openJournal(env, l)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	if j != nil {
		rt.journal = j
		rt.closers = append(rt.closers, func() { _ = j.Close() })
	}

	tr, err := transport.NewHttpService(&transport.ClientConfig{
		BaseURL:   env.PortalURL,
		RateLimit: env.HTTPRateLimit,
		Logger:    l,
	})
	if err != nil {
		return fmt.Errorf("failed to create transport: %w", err)
	}

	envProvider := config.StaticEnv(env)
	rt.users, err = user.NewUserService(&user.Config{
		Transport:    tr,
		ChainService: chainService,
		LocalSigner:  localSigner,
		WalletSigner: delegated,
		Env:          envProvider,
		Journal:      rt.journal,
		Logger:       l,
	})
	if err != nil {
		return err
	}
	rt.attributes, err = attributes.NewAttributesService(&attributes.Config{Transport: tr, Env: envProvider, Logger: l})
	if err != nil {
		return err
	}
	rt.layouts, err = layout.NewLayoutService(&layout.Config{Transport: tr, Env: envProvider, Logger: l})
	if err != nil {
		return err
	}
	return nil
}
