package walletSigner

import (
	"context"
)

// IWalletClient defines the interface for interacting with the delegated
// wallet service. The wallet holds the user keys; callers never see them.
type IWalletClient interface {
	// SignTransaction asks the wallet to sign a packed transaction.
	// This corresponds to the casimir_signTransaction JSON-RPC method.
	SignTransaction(ctx context.Context, req *SignRequest) (*SignResponse, error)

	// Close releases the underlying RPC connection.
	Close()
}

// Compile-time check to ensure Client implements IWalletClient
var _ IWalletClient = (*Client)(nil)
