package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names read by Env
const (
	EnvWalletURL     = "WALLET_URL"
	EnvReturnMsg     = "RETURN_MSG"
	EnvPortalURL     = "PORTAL_URL"
	EnvRPCURL        = "RPC_URL"
	EnvChainID       = "CHAIN_ID"
	EnvJournalType   = "JOURNAL_TYPE"
	EnvJournalPath   = "JOURNAL_PATH"
	EnvRedisAddress  = "REDIS_ADDRESS"
	EnvHTTPRateLimit = "HTTP_RATE_LIMIT"
	EnvDebug         = "DEBUG"
)

// Wallet settings read by the CLI only
const (
	EnvWalletConfig    = "WALLET_CONFIG"
	EnvWalletFrom      = "WALLET_FROM"
	EnvWalletAuthToken = "WALLET_AUTH_TOKEN"
)

type ChainId uint

const (
	ChainId_EthereumMainnet ChainId = 1
	ChainId_EthereumSepolia ChainId = 11155111
	ChainId_EthereumAnvil   ChainId = 31337
)

type ChainName string

const (
	ChainName_EthereumMainnet ChainName = "mainnet"
	ChainName_EthereumSepolia ChainName = "sepolia"
	ChainName_EthereumAnvil   ChainName = "devnet"
)

var ChainIdToName = map[ChainId]ChainName{
	ChainId_EthereumMainnet: ChainName_EthereumMainnet,
	ChainId_EthereumSepolia: ChainName_EthereumSepolia,
	ChainId_EthereumAnvil:   ChainName_EthereumAnvil,
}

// GetSupportedChainIDsString returns supported chain IDs as strings for CLI help
func GetSupportedChainIDsString() string {
	return fmt.Sprintf("%d (mainnet), %d (sepolia), %d (anvil)",
		ChainId_EthereumMainnet, ChainId_EthereumSepolia, ChainId_EthereumAnvil)
}

type JournalType string

const (
	JournalType_None   JournalType = "none"
	JournalType_Memory JournalType = "memory"
	JournalType_Badger JournalType = "badger"
	JournalType_Redis  JournalType = "redis"
	JournalType_Sqlite JournalType = "sqlite"
)

// Env is the process-wide configuration consumed by the services.
// It is read once per call and must not be mutated while a call is in flight.
type Env struct {
	// WalletURL selects delegated signing when non-empty.
	WalletURL string `env:"WALLET_URL"`
	// ReturnMsg makes the services return the built envelope instead of sending it.
	ReturnMsg bool `env:"RETURN_MSG" envDefault:"false"`

	PortalURL string  `env:"PORTAL_URL" envDefault:"http://localhost:3000"`
	RpcUrl    string  `env:"RPC_URL" envDefault:"http://localhost:8545"`
	ChainID   ChainId `env:"CHAIN_ID" envDefault:"31337"`

	JournalType  JournalType `env:"JOURNAL_TYPE" envDefault:"none"`
	JournalPath  string      `env:"JOURNAL_PATH" envDefault:"./data/journal"`
	RedisAddress string      `env:"REDIS_ADDRESS" envDefault:"localhost:6379"`

	// HTTPRateLimit caps outgoing portal requests per second; 0 disables the limiter.
	HTTPRateLimit float64 `env:"HTTP_RATE_LIMIT" envDefault:"0"`

	Debug bool `env:"DEBUG" envDefault:"false"`
}

// LoadEnv parses Env from the process environment and validates it.
func LoadEnv() (*Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// UseWallet reports whether signing is delegated to the wallet service.
func (e *Env) UseWallet() bool {
	return e != nil && strings.TrimSpace(e.WalletURL) != ""
}

// ChainName resolves the configured chain id to its name.
func (e *Env) ChainName() (ChainName, error) {
	name, ok := ChainIdToName[e.ChainID]
	if !ok {
		return "", fmt.Errorf("unsupported chain ID %d. Supported: %s", e.ChainID, GetSupportedChainIDsString())
	}
	return name, nil
}

func (e *Env) Validate() error {
	var allErrors field.ErrorList

	if e.PortalURL == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("portalUrl"), "portal url is required"))
	} else if _, err := url.ParseRequestURI(e.PortalURL); err != nil {
		allErrors = append(allErrors, field.Invalid(field.NewPath("portalUrl"), e.PortalURL, err.Error()))
	}
	if e.UseWallet() {
		if _, err := url.ParseRequestURI(e.WalletURL); err != nil {
			allErrors = append(allErrors, field.Invalid(field.NewPath("walletUrl"), e.WalletURL, err.Error()))
		}
	}
	if _, ok := ChainIdToName[e.ChainID]; !ok {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("chainId"), e.ChainID,
			[]string{"1", "11155111", "31337"}))
	}
	switch e.JournalType {
	case JournalType_None, JournalType_Memory:
	case JournalType_Badger, JournalType_Sqlite:
		if e.JournalPath == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("journalPath"),
				fmt.Sprintf("journal path is required for %s", e.JournalType)))
		}
	case JournalType_Redis:
		if e.RedisAddress == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("redisAddress"), "redis address is required for redis"))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(field.NewPath("journalType"), e.JournalType,
			[]string{string(JournalType_None), string(JournalType_Memory), string(JournalType_Badger),
				string(JournalType_Redis), string(JournalType_Sqlite)}))
	}
	if e.HTTPRateLimit < 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("httpRateLimit"), e.HTTPRateLimit, "must not be negative"))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// RemoteSignerConfig describes the delegated wallet endpoint.
type RemoteSignerConfig struct {
	Url         string `json:"url" yaml:"url"`
	FromAddress string `json:"fromAddress" yaml:"fromAddress"`
	AuthToken   string `json:"authToken" yaml:"authToken"`
}

func (rsc *RemoteSignerConfig) Validate() error {
	var allErrors field.ErrorList
	if rsc.Url == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("url"), "url is required"))
	} else if _, err := url.ParseRequestURI(rsc.Url); err != nil {
		allErrors = append(allErrors, field.Invalid(field.NewPath("url"), rsc.Url, err.Error()))
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// LoadRemoteSignerConfig reads a wallet config from a YAML file.
func LoadRemoteSignerConfig(path string) (*RemoteSignerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet config: %w", err)
	}
	var rsc RemoteSignerConfig
	if err := yaml.Unmarshal(data, &rsc); err != nil {
		return nil, fmt.Errorf("failed to parse wallet config %s: %w", path, err)
	}
	if err := rsc.Validate(); err != nil {
		return nil, err
	}
	return &rsc, nil
}

// RemoteSignerConfigFromEnv derives the wallet config from Env.
func RemoteSignerConfigFromEnv(e *Env) *RemoteSignerConfig {
	return &RemoteSignerConfig{Url: e.WalletURL}
}

// EnvProvider returns the configuration in effect for a single call.
// Services read it once per call and treat the result as immutable.
type EnvProvider func() *Env

// StaticEnv returns an EnvProvider that always yields e.
func StaticEnv(e *Env) EnvProvider {
	return func() *Env {
		return e
	}
}
