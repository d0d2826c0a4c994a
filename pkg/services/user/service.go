// Package user orchestrates the user use cases: every write builds commands,
// packs them into a transaction, signs it and delivers the envelope.
package user

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/casimir-one/casimir-go/pkg/chainTx"
	"github.com/casimir-one/casimir-go/pkg/commands"
	"github.com/casimir-one/casimir-go/pkg/config"
	"github.com/casimir-one/casimir-go/pkg/journal"
	"github.com/casimir-one/casimir-go/pkg/messages"
	"github.com/casimir-one/casimir-go/pkg/services"
	"github.com/casimir-one/casimir-go/pkg/transactionSigner"
	"github.com/casimir-one/casimir-go/pkg/transport"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Operation names recorded in the journal
const (
	OpUpdate          = "updateUser"
	OpChangePassword  = "changePassword"
	OpAcceptProposal  = "acceptProposal"
	OpDeclineProposal = "declineProposal"
)

// Result is the outcome of a write operation.
type Result = services.Result

// Initiator is the user on whose behalf a transaction is signed.
type Initiator struct {
	ID      string `json:"_id"`
	PrivKey string `json:"privKey"`
}

type CreateUserPayload struct {
	Email      string                 `json:"email"`
	PubKey     string                 `json:"pubKey"`
	Roles      []commands.Role        `json:"roles,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// UpdatePayload updates a user profile. Attribute values may be
// *messages.File; they are uploaded and committed by name.
type UpdatePayload struct {
	Initiator  Initiator              `json:"initiator"`
	Email      string                 `json:"email"`
	Status     *int                   `json:"status,omitempty"`
	Attributes map[string]interface{} `json:"attributes"`
}

type ChangePasswordPayload struct {
	Initiator Initiator           `json:"initiator"`
	Authority *commands.Authority `json:"authority"`
}

type AcceptProposalPayload struct {
	Initiator   Initiator `json:"initiator"`
	ProposalID  string    `json:"proposalId"`
	Account     string    `json:"account"`
	BatchWeight *uint64   `json:"batchWeight"`
}

type DeclineProposalPayload struct {
	Initiator  Initiator `json:"initiator"`
	ProposalID string    `json:"proposalId"`
	Account    string    `json:"account"`
}

// Config holds the collaborators of UserService
type Config struct {
	Transport    transport.ITransport
	ChainService chainTx.IChainService
	// LocalSigner signs with the initiator's private key.
	LocalSigner transactionSigner.ITransactionSigner
	// WalletSigner is used whenever the environment carries a wallet url.
	WalletSigner transactionSigner.ITransactionSigner
	Env          config.EnvProvider
	// Journal is optional.
	Journal journal.IJournal
	Logger  *zap.Logger
}

type UserService struct {
	userHttp     *UserHttp
	chainService chainTx.IChainService
	localSigner  transactionSigner.ITransactionSigner
	walletSigner transactionSigner.ITransactionSigner
	env          config.EnvProvider
	journal      journal.IJournal
	logger       *zap.Logger
}

// NewUserService creates a new UserService with dependency injection
func NewUserService(cfg *Config) (*UserService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if cfg.ChainService == nil {
		return nil, fmt.Errorf("chain service is required")
	}
	if cfg.LocalSigner == nil && cfg.WalletSigner == nil {
		return nil, fmt.Errorf("at least one signer is required")
	}
	if cfg.Env == nil {
		return nil, fmt.Errorf("env provider is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &UserService{
		userHttp:     NewUserHttp(cfg.Transport),
		chainService: cfg.ChainService,
		localSigner:  cfg.LocalSigner,
		walletSigner: cfg.WalletSigner,
		env:          cfg.Env,
		journal:      cfg.Journal,
		logger:       cfg.Logger,
	}, nil
}

// CreateUser registers a new user DAO. No transaction is signed; the portal
// signs the registration itself.
func (us *UserService) CreateUser(ctx context.Context, data *CreateUserPayload) (*Result, error) {
	if data == nil {
		return nil, fmt.Errorf("payload cannot be nil")
	}
	env := services.ResolveEnv(us.env)

	cmd, err := commands.NewCreateDaoCmd(commands.CreateDao{
		Email:         data.Email,
		PubKey:        data.PubKey,
		Roles:         data.Roles,
		Attributes:    data.Attributes,
		IsTeamAccount: false,
	})
	if err != nil {
		return nil, err
	}

	msg, err := services.NewAppCmdsMsg(nil, cmd)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build create user message")
	}

	res, err := services.Deliver(ctx, env, msg, us.userHttp.CreateUser)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create user %s", data.Email)
	}
	return res, nil
}

// Update commits a profile change on chain and uploads the attribute files
// alongside the signed transaction.
func (us *UserService) Update(ctx context.Context, payload *UpdatePayload) (*Result, error) {
	if payload == nil {
		return nil, fmt.Errorf("payload cannot be nil")
	}
	updater := payload.Initiator.ID

	attrs := payload.Attributes
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	formInput := map[string]interface{}{
		"email":      payload.Email,
		"attributes": attrs,
	}
	if payload.Status != nil {
		formInput["status"] = *payload.Status
	}
	formData, err := messages.CreateFormData(formInput)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create form data")
	}

	committed, err := messages.ReplaceFileWithName(attrs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to replace attribute files")
	}
	description, err := messages.GenSha256Hash(committed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash attributes")
	}

	cmd, err := commands.NewUpdateDaoCmd(commands.UpdateDao{
		ID:            updater,
		Description:   description,
		Attributes:    committed,
		Email:         payload.Email,
		Status:        payload.Status,
		IsTeamAccount: false,
	})
	if err != nil {
		return nil, err
	}

	return us.runTransaction(ctx, OpUpdate, payload.Initiator, []*commands.Cmd{cmd},
		func(signed *chainTx.SignedTransaction) (messages.IMessage, error) {
			return messages.NewMultFormDataMsg(formData, signed.Payload(), entityHeaders(updater))
		},
		us.userHttp.Update,
	)
}

// ChangePassword replaces the signing authority of the initiator's DAO.
func (us *UserService) ChangePassword(ctx context.Context, payload *ChangePasswordPayload) (*Result, error) {
	if payload == nil {
		return nil, fmt.Errorf("payload cannot be nil")
	}

	cmd, err := commands.NewAlterDaoAuthorityCmd(commands.AlterDaoAuthority{
		ID:            payload.Initiator.ID,
		IsTeamAccount: false,
		Authority:     payload.Authority,
	})
	if err != nil {
		return nil, err
	}

	return us.runTransaction(ctx, OpChangePassword, payload.Initiator, []*commands.Cmd{cmd},
		us.signedJsonMsg(payload.Initiator.ID),
		us.userHttp.ChangePassword,
	)
}

func (us *UserService) AcceptProposal(ctx context.Context, payload *AcceptProposalPayload) (*Result, error) {
	if payload == nil {
		return nil, fmt.Errorf("payload cannot be nil")
	}

	cmd, err := commands.NewAcceptProposalCmd(commands.AcceptProposal{
		ID:          payload.ProposalID,
		Account:     payload.Account,
		BatchWeight: payload.BatchWeight,
	})
	if err != nil {
		return nil, err
	}

	return us.runTransaction(ctx, OpAcceptProposal, payload.Initiator, []*commands.Cmd{cmd},
		us.signedJsonMsg(payload.Initiator.ID),
		us.userHttp.AcceptProposal,
	)
}

func (us *UserService) DeclineProposal(ctx context.Context, payload *DeclineProposalPayload) (*Result, error) {
	if payload == nil {
		return nil, fmt.Errorf("payload cannot be nil")
	}

	cmd, err := commands.NewDeclineProposalCmd(commands.DeclineProposal{
		ID:      payload.ProposalID,
		Account: payload.Account,
	})
	if err != nil {
		return nil, err
	}

	return us.runTransaction(ctx, OpDeclineProposal, payload.Initiator, []*commands.Cmd{cmd},
		us.signedJsonMsg(payload.Initiator.ID),
		us.userHttp.DeclineProposal,
	)
}

func (us *UserService) GetListByIds(ctx context.Context, ids []string) (*transport.Response, error) {
	return us.userHttp.GetListByIds(ctx, ids)
}

func (us *UserService) GetListByTeam(ctx context.Context, teamID string) (*transport.Response, error) {
	return us.userHttp.GetListByTeam(ctx, teamID)
}

func (us *UserService) GetListByPortal(ctx context.Context, portalID string) (*transport.Response, error) {
	return us.userHttp.GetListByPortal(ctx, portalID)
}

func (us *UserService) GetList(ctx context.Context, query url.Values) (*transport.Response, error) {
	if query == nil {
		query = url.Values{}
	}
	return us.userHttp.GetList(ctx, query)
}

// GetOne looks a user up by id, or by email when id contains '@'.
func (us *UserService) GetOne(ctx context.Context, id string) (*transport.Response, error) {
	if strings.Contains(id, "@") {
		return us.userHttp.GetOneByEmail(ctx, id)
	}
	return us.userHttp.GetOne(ctx, id)
}

func entityHeaders(entityID string) map[string]string {
	return map[string]string{messages.HeaderEntityID: entityID}
}

func (us *UserService) signedJsonMsg(entityID string) envelopeFunc {
	return func(signed *chainTx.SignedTransaction) (messages.IMessage, error) {
		return messages.NewJsonDataMsg(signed.Payload(), entityHeaders(entityID))
	}
}
