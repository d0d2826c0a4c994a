// Package transactionSigner attaches a signature to a packed chain transaction,
// either with a local private key or by delegating to the wallet service.
package transactionSigner

import (
	"context"
	"fmt"

	"github.com/casimir-one/casimir-go/pkg/chainTx"
	"github.com/casimir-one/casimir-go/pkg/config"
)

// ITransactionSigner signs packed transactions
type ITransactionSigner interface {
	// SignTransaction returns the packed transaction with exactly one signature attached.
	SignTransaction(ctx context.Context, packed *chainTx.PackedTransaction, creds *Credentials) (*chainTx.SignedTransaction, error)

	// Strategy reports which signing strategy the signer implements
	Strategy() chainTx.SigningStrategy
}

// Credentials carries the caller's key material. Delegated signers ignore it.
type Credentials struct {
	PrivateKey string `json:"privateKey" yaml:"privateKey"`
}

// SigningError is returned when local signing fails.
type SigningError struct {
	Reason string
	Err    error
}

func (e *SigningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("signing failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("signing failed: %s", e.Reason)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

// DelegationError is returned when the wallet service cannot produce a signature.
type DelegationError struct {
	Reason string
	Err    error
}

func (e *DelegationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wallet signing failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("wallet signing failed: %s", e.Reason)
}

func (e *DelegationError) Unwrap() error {
	return e.Err
}

// SelectSigner picks the delegated signer when a wallet url is configured and
// the local signer otherwise. It is evaluated per call.
func SelectSigner(env *config.Env, local, delegated ITransactionSigner) (ITransactionSigner, error) {
	if env.UseWallet() {
		if delegated == nil {
			return nil, fmt.Errorf("wallet url is set but no wallet signer is configured")
		}
		return delegated, nil
	}
	if local == nil {
		return nil, fmt.Errorf("no local signer is configured")
	}
	return local, nil
}

func validatePacked(packed *chainTx.PackedTransaction) error {
	if packed == nil {
		return fmt.Errorf("packed transaction cannot be nil")
	}
	if packed.ChainInfo() == nil {
		return fmt.Errorf("packed transaction has no chain info")
	}
	return nil
}
