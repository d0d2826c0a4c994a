// Package walletSigner is a JSON-RPC client for the delegated wallet service.
package walletSigner

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/casimir-one/casimir-go/pkg/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

const MethodSignTransaction = "casimir_signTransaction"

// SignRequest is the parameter of casimir_signTransaction.
type SignRequest struct {
	From     string         `json:"from,omitempty"`
	EntityID string         `json:"entityId"`
	ChainID  hexutil.Uint64 `json:"chainId"`
	Tx       hexutil.Bytes  `json:"tx"`
	Hash     common.Hash    `json:"hash"`
}

// SignResponse is the result of casimir_signTransaction.
type SignResponse struct {
	Signature hexutil.Bytes  `json:"signature"`
	Signer    common.Address `json:"signer"`
}

// Config holds the configuration for the wallet client
type Config struct {
	Url        string
	AuthToken  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func DefaultConfig() *Config {
	return &Config{
		Url:     "http://localhost:9000",
		Timeout: 30 * time.Second,
	}
}

// Client talks to the wallet service over JSON-RPC.
type Client struct {
	url       string
	rpcClient *rpc.Client
	logger    *zap.Logger
}

// NewClient dials the wallet service. Dialing over HTTP does not open a
// connection; failures surface on the first call.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Url == "" {
		return nil, fmt.Errorf("wallet url is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultConfig().Timeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	opts := []rpc.ClientOption{rpc.WithHTTPClient(httpClient)}
	if cfg.AuthToken != "" {
		opts = append(opts, rpc.WithHeader("Authorization", "Bearer "+cfg.AuthToken))
	}

	rpcClient, err := rpc.DialOptions(context.Background(), cfg.Url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial wallet service: %w", err)
	}

	return &Client{
		url:       cfg.Url,
		rpcClient: rpcClient,
		logger:    logger,
	}, nil
}

// NewWalletClientFromRemoteSignerConfig builds a client from the remote signer config.
func NewWalletClientFromRemoteSignerConfig(rsc *config.RemoteSignerConfig, logger *zap.Logger) (*Client, error) {
	if rsc == nil {
		return nil, fmt.Errorf("remote signer config cannot be nil")
	}
	if err := rsc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid remote signer config: %w", err)
	}
	cfg := DefaultConfig()
	cfg.Url = rsc.Url
	cfg.AuthToken = rsc.AuthToken
	return NewClient(cfg, logger)
}

func (c *Client) SignTransaction(ctx context.Context, req *SignRequest) (*SignResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("sign request cannot be nil")
	}

	c.logger.Sugar().Debugw("Requesting wallet signature",
		"url", c.url,
		"entityId", req.EntityID,
		"hash", req.Hash.Hex(),
	)

	var resp SignResponse
	if err := c.rpcClient.CallContext(ctx, &resp, MethodSignTransaction, req); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Close() {
	c.rpcClient.Close()
}
