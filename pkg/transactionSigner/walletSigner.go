package transactionSigner

import (
	"context"
	"fmt"

	"github.com/casimir-one/casimir-go/pkg/chainTx"
	"github.com/casimir-one/casimir-go/pkg/clients/walletSigner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// signatureLength is the size of an [R || S || V] secp256k1 signature.
const signatureLength = 65

// WalletSigner implements ITransactionSigner by delegating to the wallet service
type WalletSigner struct {
	walletClient walletSigner.IWalletClient
	fromAddress  common.Address
	logger       *zap.Logger
}

var _ ITransactionSigner = (*WalletSigner)(nil)

// NewWalletSigner creates a new WalletSigner. fromAddress may be the zero
// address, in which case the wallet picks the account for the entity.
func NewWalletSigner(walletClient walletSigner.IWalletClient, fromAddress common.Address, logger *zap.Logger) (*WalletSigner, error) {
	if walletClient == nil {
		return nil, fmt.Errorf("wallet client is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &WalletSigner{
		walletClient: walletClient,
		fromAddress:  fromAddress,
		logger:       logger,
	}, nil
}

func (ws *WalletSigner) Strategy() chainTx.SigningStrategy {
	return chainTx.SigningStrategy_Wallet
}

func (ws *WalletSigner) SignTransaction(ctx context.Context, packed *chainTx.PackedTransaction, _ *Credentials) (*chainTx.SignedTransaction, error) {
	if err := validatePacked(packed); err != nil {
		return nil, err
	}

	req := &walletSigner.SignRequest{
		EntityID: packed.EntityID(),
		ChainID:  hexutil.Uint64(packed.ChainInfo().ChainID),
		Tx:       packed.Bytes(),
		Hash:     packed.Hash(),
	}
	if ws.fromAddress != (common.Address{}) {
		req.From = ws.fromAddress.Hex()
	}

	ws.logger.Info("SignTransaction: requesting wallet signature",
		zap.String("entityId", packed.EntityID()),
		zap.String("hash", req.Hash.Hex()),
		zap.Uint64("chainId", uint64(req.ChainID)),
	)

	resp, err := ws.walletClient.SignTransaction(ctx, req)
	if err != nil {
		return nil, &DelegationError{Reason: "wallet request failed", Err: err}
	}
	if len(resp.Signature) != signatureLength {
		return nil, &DelegationError{
			Reason: fmt.Sprintf("malformed signature: expected %d bytes, got %d", signatureLength, len(resp.Signature)),
		}
	}
	if resp.Signer == (common.Address{}) {
		return nil, &DelegationError{Reason: "wallet did not report a signer"}
	}
	if ws.fromAddress != (common.Address{}) && resp.Signer != ws.fromAddress {
		return nil, &DelegationError{
			Reason: fmt.Sprintf("wallet signed with %s, expected %s", resp.Signer.Hex(), ws.fromAddress.Hex()),
		}
	}

	ws.logger.Info("SignTransaction: wallet signature received",
		zap.String("entityId", packed.EntityID()),
		zap.String("signer", resp.Signer.Hex()),
	)
	return chainTx.NewSignedTransaction(packed, resp.Signature, resp.Signer, chainTx.SigningStrategy_Wallet), nil
}
