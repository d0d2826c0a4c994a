package user

import (
	"context"

	"github.com/casimir-one/casimir-go/pkg/chainTx"
	"github.com/casimir-one/casimir-go/pkg/commands"
	"github.com/casimir-one/casimir-go/pkg/config"
	"github.com/casimir-one/casimir-go/pkg/journal"
	"github.com/casimir-one/casimir-go/pkg/messages"
	"github.com/casimir-one/casimir-go/pkg/services"
	"github.com/casimir-one/casimir-go/pkg/transactionSigner"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// envelopeFunc wraps a signed transaction for one endpoint.
type envelopeFunc func(signed *chainTx.SignedTransaction) (messages.IMessage, error)

// runTransaction is the shared write pipeline:
//
//	begin -> addCmd... -> end -> sign -> wrap -> deliver
//
// Every step fails fast; nothing is retried here.
func (us *UserService) runTransaction(
	ctx context.Context,
	op string,
	initiator Initiator,
	cmds []*commands.Cmd,
	wrap envelopeFunc,
	send services.SendFunc,
) (*Result, error) {
	if len(cmds) > 0 {
		if err := commands.RequireEntity(cmds[0].Kind(), "initiator._id", initiator.ID); err != nil {
			return nil, err
		}
	}

	env := services.ResolveEnv(us.env)

	builder := us.chainService.GetChainTxBuilder()
	if err := builder.Begin(initiator.ID); err != nil {
		return nil, errors.Wrapf(err, "%s: failed to begin transaction", op)
	}
	for _, cmd := range cmds {
		if err := builder.AddCmd(cmd); err != nil {
			return nil, errors.Wrapf(err, "%s: failed to add %s command", op, cmd.Kind())
		}
	}
	packed, err := builder.End()
	if err != nil {
		return nil, errors.Wrapf(err, "%s: failed to end transaction", op)
	}

	signed, err := us.sign(ctx, env, packed, initiator)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: failed to sign transaction for %s", op, initiator.ID)
	}

	msg, err := wrap(signed)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: failed to build message", op)
	}

	res, err := services.Deliver(ctx, env, msg, send)
	switch {
	case err != nil:
		us.record(op, signed, journal.Status_Failed, err)
		return nil, errors.Wrapf(err, "%s: failed to dispatch transaction", op)
	case res.Returned():
		us.record(op, signed, journal.Status_Returned, nil)
	default:
		us.record(op, signed, journal.Status_Dispatched, nil)
	}

	us.logger.Sugar().Infow("Transaction completed",
		"operation", op,
		"entityId", initiator.ID,
		"strategy", signed.Strategy(),
		"hash", signed.Packed().Hash().Hex(),
		"returned", res.Returned(),
	)
	return res, nil
}

func (us *UserService) sign(ctx context.Context, env *config.Env, packed *chainTx.PackedTransaction, initiator Initiator) (*chainTx.SignedTransaction, error) {
	signer, err := transactionSigner.SelectSigner(env, us.localSigner, us.walletSigner)
	if err != nil {
		return nil, err
	}
	return signer.SignTransaction(ctx, packed, &transactionSigner.Credentials{PrivateKey: initiator.PrivKey})
}

// record journals the outcome. Journal failures are logged and never fail the call.
func (us *UserService) record(op string, signed *chainTx.SignedTransaction, status journal.Status, cause error) {
	if us.journal == nil {
		return
	}
	rec := journal.NewRecord(op, signed, status)
	if cause != nil {
		rec.Error = cause.Error()
	}
	if err := us.journal.Save(rec); err != nil {
		us.logger.Warn("Failed to journal transaction",
			zap.String("operation", op),
			zap.String("entityId", rec.EntityID),
			zap.Error(err),
		)
	}
}
