package chainTx

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/casimir-one/casimir-go/pkg/commands"
	"github.com/casimir-one/casimir-go/pkg/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// INodeClient is the subset of a chain node RPC client needed for local signing.
type INodeClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

var _ INodeClient = (*ethclient.Client)(nil)

// IChainService supplies builders, the node client and chain metadata to the services.
type IChainService interface {
	// GetChainTxBuilder returns a fresh builder in the Idle state
	GetChainTxBuilder() *TxBuilder

	GetChainNodeClient() INodeClient

	GetChainInfo() *ChainInfo
}

type ChainInfo struct {
	ChainID   config.ChainId   `json:"chainId"`
	ChainName config.ChainName `json:"chainName"`
}

// ChainService is the default IChainService. It holds no per-call state.
type ChainService struct {
	chainInfo  *ChainInfo
	nodeClient INodeClient
	logger     *zap.Logger
}

func NewChainService(chainInfo *ChainInfo, nodeClient INodeClient, logger *zap.Logger) *ChainService {
	return &ChainService{
		chainInfo:  chainInfo,
		nodeClient: nodeClient,
		logger:     logger,
	}
}

func (cs *ChainService) GetChainTxBuilder() *TxBuilder {
	return NewTxBuilder(cs.chainInfo, cs.logger)
}

func (cs *ChainService) GetChainNodeClient() INodeClient {
	return cs.nodeClient
}

func (cs *ChainService) GetChainInfo() *ChainInfo {
	return cs.chainInfo
}

// PackedTransaction is the serialized, unsigned transaction produced by TxBuilder.End.
type PackedTransaction struct {
	entityID  string
	chainInfo *ChainInfo
	cmds      []*commands.Cmd
	data      []byte
}

type packedBody struct {
	EntityID string          `json:"entityId"`
	ChainID  config.ChainId  `json:"chainId"`
	Cmds     []*commands.Cmd `json:"cmds"`
}

func newPackedTransaction(entityID string, chainInfo *ChainInfo, cmds []*commands.Cmd) (*PackedTransaction, error) {
	body := packedBody{
		EntityID: entityID,
		Cmds:     cmds,
	}
	if chainInfo != nil {
		body.ChainID = chainInfo.ChainID
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return &PackedTransaction{
		entityID:  entityID,
		chainInfo: chainInfo,
		cmds:      cmds,
		data:      data,
	}, nil
}

// Bytes returns a copy of the serialized transaction.
func (pt *PackedTransaction) Bytes() []byte {
	out := make([]byte, len(pt.data))
	copy(out, pt.data)
	return out
}

// Hash is keccak256 over the serialized transaction; it is the signing digest.
func (pt *PackedTransaction) Hash() common.Hash {
	return crypto.Keccak256Hash(pt.data)
}

func (pt *PackedTransaction) EntityID() string {
	return pt.entityID
}

func (pt *PackedTransaction) ChainInfo() *ChainInfo {
	return pt.chainInfo
}

// Cmds returns the commands in insertion order.
func (pt *PackedTransaction) Cmds() []*commands.Cmd {
	out := make([]*commands.Cmd, len(pt.cmds))
	copy(out, pt.cmds)
	return out
}

type SigningStrategy string

const (
	SigningStrategy_LocalKey SigningStrategy = "local-key"
	SigningStrategy_Wallet   SigningStrategy = "wallet"
)

// SignedTransaction is a PackedTransaction with exactly one signature attached.
type SignedTransaction struct {
	packed    *PackedTransaction
	signature []byte
	signer    common.Address
	strategy  SigningStrategy
}

func NewSignedTransaction(packed *PackedTransaction, signature []byte, signer common.Address, strategy SigningStrategy) *SignedTransaction {
	sig := make([]byte, len(signature))
	copy(sig, signature)
	return &SignedTransaction{
		packed:    packed,
		signature: sig,
		signer:    signer,
		strategy:  strategy,
	}
}

func (st *SignedTransaction) Packed() *PackedTransaction {
	return st.packed
}

func (st *SignedTransaction) Signature() []byte {
	out := make([]byte, len(st.signature))
	copy(out, st.signature)
	return out
}

func (st *SignedTransaction) Signer() common.Address {
	return st.signer
}

func (st *SignedTransaction) Strategy() SigningStrategy {
	return st.strategy
}

// SignedPayload is the transport form of a signed transaction.
type SignedPayload struct {
	Tx        json.RawMessage `json:"tx"`
	Signature string          `json:"signature"`
	Signer    string          `json:"signer"`
}

// Payload returns the transport form of the signed transaction.
func (st *SignedTransaction) Payload() *SignedPayload {
	return &SignedPayload{
		Tx:        st.packed.Bytes(),
		Signature: hexutil.Encode(st.signature),
		Signer:    st.signer.Hex(),
	}
}
