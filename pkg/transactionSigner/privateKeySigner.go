package transactionSigner

import (
	"context"
	"fmt"
	"strings"

	"github.com/Layr-Labs/crypto-libs/pkg/ecdsa"
	"github.com/casimir-one/casimir-go/pkg/chainTx"
	"github.com/casimir-one/casimir-go/pkg/config"
	"github.com/casimir-one/casimir-go/pkg/transport"
	"go.uber.org/zap"
)

// PrivateKeySigner signs with a caller-supplied secp256k1 key after checking
// the node is on the transaction's chain.
type PrivateKeySigner struct {
	nodeClient chainTx.INodeClient
	logger     *zap.Logger
}

var _ ITransactionSigner = (*PrivateKeySigner)(nil)

func NewPrivateKeySigner(nodeClient chainTx.INodeClient, logger *zap.Logger) (*PrivateKeySigner, error) {
	if nodeClient == nil {
		return nil, fmt.Errorf("node client is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &PrivateKeySigner{
		nodeClient: nodeClient,
		logger:     logger,
	}, nil
}

func (pks *PrivateKeySigner) Strategy() chainTx.SigningStrategy {
	return chainTx.SigningStrategy_LocalKey
}

func (pks *PrivateKeySigner) SignTransaction(ctx context.Context, packed *chainTx.PackedTransaction, creds *Credentials) (*chainTx.SignedTransaction, error) {
	if err := validatePacked(packed); err != nil {
		return nil, err
	}
	if creds == nil || strings.TrimSpace(creds.PrivateKey) == "" {
		return nil, &SigningError{Reason: "private key cannot be empty"}
	}

	chainID, err := pks.nodeClient.ChainID(ctx)
	if err != nil {
		return nil, &transport.NetworkError{Op: "eth_chainId", URL: "node", Err: err}
	}
	if chainID == nil || !chainID.IsUint64() || config.ChainId(chainID.Uint64()) != packed.ChainInfo().ChainID {
		return nil, &SigningError{
			Reason: fmt.Sprintf("node chain id %v does not match transaction chain id %d", chainID, packed.ChainInfo().ChainID),
		}
	}

	privateKey, err := ecdsa.NewPrivateKeyFromHexString(strings.TrimPrefix(creds.PrivateKey, "0x"))
	if err != nil {
		return nil, &SigningError{Reason: "invalid private key", Err: err}
	}
	address, err := privateKey.DeriveAddress()
	if err != nil {
		return nil, &SigningError{Reason: "failed to derive address", Err: err}
	}

	hash := packed.Hash()
	sig, err := privateKey.Sign(hash[:])
	if err != nil {
		return nil, &SigningError{Reason: "failed to sign transaction hash", Err: err}
	}

	pks.logger.Sugar().Debugw("Signed transaction with local key",
		"entityId", packed.EntityID(),
		"signer", address.Hex(),
		"hash", hash.Hex(),
	)
	return chainTx.NewSignedTransaction(packed, sig.Bytes(), address, chainTx.SigningStrategy_LocalKey), nil
}
