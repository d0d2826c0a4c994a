package chainTx

import (
	"errors"
	"fmt"

	"github.com/casimir-one/casimir-go/pkg/commands"
	"go.uber.org/zap"
)

type State int

const (
	State_Idle State = iota
	State_Building
	State_Packed
)

func (s State) String() string {
	switch s {
	case State_Idle:
		return "idle"
	case State_Building:
		return "building"
	case State_Packed:
		return "packed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// StateError is returned when a builder operation is called in the wrong state.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s transaction in state %s", e.Op, e.State)
}

// ErrEmptyTransaction is returned by End when no command was added.
var ErrEmptyTransaction = errors.New("transaction has no commands")

// TxBuilder accumulates commands into a single chain transaction.
//
//	Idle --Begin--> Building --End--> Packed
//
// A TxBuilder must not be shared between goroutines; obtain one per call
// from IChainService.GetChainTxBuilder.
type TxBuilder struct {
	state     State
	entityID  string
	chainInfo *ChainInfo
	cmds      []*commands.Cmd
	logger    *zap.Logger
}

func NewTxBuilder(chainInfo *ChainInfo, logger *zap.Logger) *TxBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TxBuilder{
		state:     State_Idle,
		chainInfo: chainInfo,
		logger:    logger,
	}
}

func (b *TxBuilder) State() State {
	return b.state
}

// Begin opens a transaction on behalf of entityID.
func (b *TxBuilder) Begin(entityID string) error {
	if b.state != State_Idle {
		return &StateError{Op: "begin", State: b.state}
	}
	if entityID == "" {
		return fmt.Errorf("entity id is required to begin a transaction")
	}
	b.entityID = entityID
	b.cmds = make([]*commands.Cmd, 0)
	b.state = State_Building

	b.logger.Sugar().Debugw("Transaction started", "entityId", entityID)
	return nil
}

// AddCmd appends cmd to the open transaction.
func (b *TxBuilder) AddCmd(cmd *commands.Cmd) error {
	if b.state != State_Building {
		return &StateError{Op: "add command to", State: b.state}
	}
	if cmd == nil {
		return fmt.Errorf("command cannot be nil")
	}
	b.cmds = append(b.cmds, cmd)
	return nil
}

// End freezes the command sequence and serializes it. An empty transaction
// is rejected with ErrEmptyTransaction and the builder stays in Building.
func (b *TxBuilder) End() (*PackedTransaction, error) {
	if b.state != State_Building {
		return nil, &StateError{Op: "end", State: b.state}
	}
	if len(b.cmds) == 0 {
		return nil, ErrEmptyTransaction
	}

	packed, err := newPackedTransaction(b.entityID, b.chainInfo, b.cmds)
	if err != nil {
		return nil, fmt.Errorf("failed to pack transaction: %w", err)
	}
	b.state = State_Packed
	b.cmds = nil

	b.logger.Sugar().Debugw("Transaction packed",
		"entityId", b.entityID,
		"cmds", len(packed.cmds),
		"hash", packed.Hash().Hex(),
	)
	return packed, nil
}
