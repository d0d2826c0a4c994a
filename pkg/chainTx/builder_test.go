package chainTx

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/casimir-one/casimir-go/pkg/commands"
	"github.com/casimir-one/casimir-go/pkg/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testChainInfo = &ChainInfo{
	ChainID:   config.ChainId_EthereumAnvil,
	ChainName: config.ChainName_EthereumAnvil,
}

func testCmd(t *testing.T, id string) *commands.Cmd {
	t.Helper()
	cmd, err := commands.NewDeleteAttributeCmd(commands.DeleteAttribute{ID: id})
	require.NoError(t, err)
	return cmd
}

func requireStateError(t *testing.T, err error, state State) {
	t.Helper()
	var serr *StateError
	require.True(t, errors.As(err, &serr), "expected StateError, got %v", err)
	assert.Equal(t, state, serr.State)
}

func Test_TxBuilder_Lifecycle(t *testing.T) {
	b := NewTxBuilder(testChainInfo, zaptest.NewLogger(t))
	assert.Equal(t, State_Idle, b.State())

	require.NoError(t, b.Begin("u1"))
	assert.Equal(t, State_Building, b.State())

	require.NoError(t, b.AddCmd(testCmd(t, "a")))
	packed, err := b.End()
	require.NoError(t, err)
	assert.Equal(t, State_Packed, b.State())
	assert.Equal(t, "u1", packed.EntityID())
	assert.Equal(t, testChainInfo, packed.ChainInfo())
	assert.Equal(t, crypto.Keccak256Hash(packed.Bytes()), packed.Hash())
}

func Test_TxBuilder_PreservesInsertionOrder(t *testing.T) {
	b := NewTxBuilder(testChainInfo, zaptest.NewLogger(t))
	require.NoError(t, b.Begin("u1"))
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, b.AddCmd(testCmd(t, id)))
	}
	packed, err := b.End()
	require.NoError(t, err)

	var body struct {
		EntityID string `json:"entityId"`
		ChainID  uint   `json:"chainId"`
		Cmds     []struct {
			CmdNum     int `json:"cmdNum"`
			CmdPayload struct {
				ID string `json:"_id"`
			} `json:"cmdPayload"`
		} `json:"cmds"`
	}
	require.NoError(t, json.Unmarshal(packed.Bytes(), &body))
	require.Len(t, body.Cmds, 3)
	assert.Equal(t, "A", body.Cmds[0].CmdPayload.ID)
	assert.Equal(t, "B", body.Cmds[1].CmdPayload.ID)
	assert.Equal(t, "C", body.Cmds[2].CmdPayload.ID)
	assert.Equal(t, uint(config.ChainId_EthereumAnvil), body.ChainID)

	cmds := packed.Cmds()
	require.Len(t, cmds, 3)
	var first commands.DeleteAttribute
	require.NoError(t, cmds[0].DecodePayload(&first))
	assert.Equal(t, "A", first.ID)
}

func Test_TxBuilder_Deterministic(t *testing.T) {
	build := func() []byte {
		b := NewTxBuilder(testChainInfo, nil)
		require.NoError(t, b.Begin("u1"))
		require.NoError(t, b.AddCmd(testCmd(t, "A")))
		require.NoError(t, b.AddCmd(testCmd(t, "B")))
		packed, err := b.End()
		require.NoError(t, err)
		return packed.Bytes()
	}
	assert.Equal(t, build(), build())
}

func Test_TxBuilder_StateErrors(t *testing.T) {
	t.Run("add before begin", func(t *testing.T) {
		b := NewTxBuilder(testChainInfo, nil)
		requireStateError(t, b.AddCmd(testCmd(t, "A")), State_Idle)
	})

	t.Run("end before begin", func(t *testing.T) {
		b := NewTxBuilder(testChainInfo, nil)
		_, err := b.End()
		requireStateError(t, err, State_Idle)
	})

	t.Run("add after end", func(t *testing.T) {
		b := NewTxBuilder(testChainInfo, nil)
		require.NoError(t, b.Begin("u1"))
		require.NoError(t, b.AddCmd(testCmd(t, "A")))
		_, err := b.End()
		require.NoError(t, err)

		err = b.AddCmd(testCmd(t, "B"))
		requireStateError(t, err, State_Packed)
		assert.Contains(t, err.Error(), "packed")
	})

	t.Run("begin twice", func(t *testing.T) {
		b := NewTxBuilder(testChainInfo, nil)
		require.NoError(t, b.Begin("u1"))
		requireStateError(t, b.Begin("u1"), State_Building)
	})

	t.Run("end twice", func(t *testing.T) {
		b := NewTxBuilder(testChainInfo, nil)
		require.NoError(t, b.Begin("u1"))
		require.NoError(t, b.AddCmd(testCmd(t, "A")))
		_, err := b.End()
		require.NoError(t, err)
		_, err = b.End()
		requireStateError(t, err, State_Packed)
	})
}

func Test_TxBuilder_EmptyTransaction(t *testing.T) {
	b := NewTxBuilder(testChainInfo, nil)
	require.NoError(t, b.Begin("u1"))

	_, err := b.End()
	require.ErrorIs(t, err, ErrEmptyTransaction)
	assert.Equal(t, State_Building, b.State())

	require.NoError(t, b.AddCmd(testCmd(t, "A")))
	_, err = b.End()
	require.NoError(t, err)
}

func Test_TxBuilder_RejectsBadInput(t *testing.T) {
	b := NewTxBuilder(testChainInfo, nil)
	require.Error(t, b.Begin(""))
	assert.Equal(t, State_Idle, b.State())

	require.NoError(t, b.Begin("u1"))
	require.Error(t, b.AddCmd(nil))
}

func Test_SignedTransaction_Payload(t *testing.T) {
	b := NewTxBuilder(testChainInfo, nil)
	require.NoError(t, b.Begin("u1"))
	require.NoError(t, b.AddCmd(testCmd(t, "A")))
	packed, err := b.End()
	require.NoError(t, err)

	signer := common.HexToAddress("0x1111111111111111111111111111111111111111")
	sig := []byte{1, 2, 3}
	signed := NewSignedTransaction(packed, sig, signer, SigningStrategy_LocalKey)
	sig[0] = 9

	payload := signed.Payload()
	assert.Equal(t, "0x010203", payload.Signature)
	assert.Equal(t, signer.Hex(), payload.Signer)
	assert.JSONEq(t, string(packed.Bytes()), string(payload.Tx))
	assert.Equal(t, SigningStrategy_LocalKey, signed.Strategy())
}

func Test_ChainService(t *testing.T) {
	cs := NewChainService(testChainInfo, nil, zaptest.NewLogger(t))
	b1 := cs.GetChainTxBuilder()
	b2 := cs.GetChainTxBuilder()
	assert.NotSame(t, b1, b2)
	assert.Equal(t, State_Idle, b1.State())
	assert.Equal(t, testChainInfo, cs.GetChainInfo())
}
