package user

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"testing"

	"github.com/casimir-one/casimir-go/pkg/chainTx"
	"github.com/casimir-one/casimir-go/pkg/commands"
	"github.com/casimir-one/casimir-go/pkg/config"
	"github.com/casimir-one/casimir-go/pkg/journal"
	"github.com/casimir-one/casimir-go/pkg/journal/memory"
	"github.com/casimir-one/casimir-go/pkg/messages"
	"github.com/casimir-one/casimir-go/pkg/transactionSigner"
	"github.com/casimir-one/casimir-go/pkg/transport"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type sentRequest struct {
	method string
	path   string
	msg    messages.IMessage
}

type fakeTransport struct {
	requests []sentRequest
	err      error
}

func (f *fakeTransport) do(method, path string, msg messages.IMessage) (*transport.Response, error) {
	f.requests = append(f.requests, sentRequest{method: method, path: path, msg: msg})
	if f.err != nil {
		return nil, f.err
	}
	return &transport.Response{StatusCode: 200, Body: []byte(`{"data":{}}`)}, nil
}

func (f *fakeTransport) Get(ctx context.Context, path string) (*transport.Response, error) {
	return f.do("GET", path, nil)
}

func (f *fakeTransport) Post(ctx context.Context, path string, msg messages.IMessage) (*transport.Response, error) {
	return f.do("POST", path, msg)
}

func (f *fakeTransport) Put(ctx context.Context, path string, msg messages.IMessage) (*transport.Response, error) {
	return f.do("PUT", path, msg)
}

type fakeSigner struct {
	strategy chainTx.SigningStrategy
	calls    int
	creds    *transactionSigner.Credentials
	err      error
}

func (f *fakeSigner) SignTransaction(ctx context.Context, packed *chainTx.PackedTransaction, creds *transactionSigner.Credentials) (*chainTx.SignedTransaction, error) {
	f.calls++
	f.creds = creds
	if f.err != nil {
		return nil, f.err
	}
	return chainTx.NewSignedTransaction(packed, make([]byte, 65), common.HexToAddress("0x01"), f.strategy), nil
}

func (f *fakeSigner) Strategy() chainTx.SigningStrategy {
	return f.strategy
}

type failingJournal struct {
	journal.IJournal
}

func (failingJournal) Save(*journal.Record) error {
	return errors.New("disk full")
}

type fixture struct {
	svc       *UserService
	transport *fakeTransport
	local     *fakeSigner
	wallet    *fakeSigner
	journal   *memory.MemoryJournal
	env       *config.Env
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		transport: &fakeTransport{},
		local:     &fakeSigner{strategy: chainTx.SigningStrategy_LocalKey},
		wallet:    &fakeSigner{strategy: chainTx.SigningStrategy_Wallet},
		journal:   memory.NewMemoryJournal(),
		env:       &config.Env{},
	}
	chain := chainTx.NewChainService(&chainTx.ChainInfo{
		ChainID:   config.ChainId_EthereumAnvil,
		ChainName: config.ChainName_EthereumAnvil,
	}, nil, zaptest.NewLogger(t))

	svc, err := NewUserService(&Config{
		Transport:    f.transport,
		ChainService: chain,
		LocalSigner:  f.local,
		WalletSigner: f.wallet,
		Env:          func() *config.Env { return f.env },
		Journal:      f.journal,
		Logger:       zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func updatePayload() *UpdatePayload {
	return &UpdatePayload{
		Initiator:  Initiator{ID: "u1", PrivKey: "k"},
		Email:      "a@b.com",
		Status:     commands.Int(1),
		Attributes: map[string]interface{}{},
	}
}

func Test_Update_LocalKey(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Update(context.Background(), updatePayload())
	require.NoError(t, err)
	require.NotNil(t, res.Response)
	assert.Nil(t, res.Envelope)

	assert.Equal(t, 1, f.local.calls)
	assert.Equal(t, 0, f.wallet.calls)
	assert.Equal(t, "k", f.local.creds.PrivateKey)

	require.Len(t, f.transport.requests, 1)
	req := f.transport.requests[0]
	assert.Equal(t, "PUT", req.method)
	assert.Equal(t, "/api/v2/user/update", req.path)
	assert.Equal(t, "u1", req.msg.HttpHeaders()["entity-id"])

	records, err := f.journal.ListByEntity("u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, journal.Status_Dispatched, records[0].Status)
	assert.Equal(t, OpUpdate, records[0].Operation)
	assert.Equal(t, chainTx.SigningStrategy_LocalKey, records[0].Strategy)
}

func Test_Update_Wallet(t *testing.T) {
	f := newFixture(t)
	f.env.WalletURL = "http://wallet.local"

	_, err := f.svc.Update(context.Background(), updatePayload())
	require.NoError(t, err)

	assert.Equal(t, 0, f.local.calls)
	assert.Equal(t, 1, f.wallet.calls)
	require.Len(t, f.transport.requests, 1)
}

func Test_Update_ReturnMsg(t *testing.T) {
	f := newFixture(t)
	f.env.ReturnMsg = true

	res, err := f.svc.Update(context.Background(), updatePayload())
	require.NoError(t, err)
	assert.Empty(t, f.transport.requests)
	require.NotNil(t, res.Envelope)
	assert.Nil(t, res.Response)
	assert.Equal(t, "u1", res.Envelope.HttpHeaders()[messages.HeaderEntityID])

	records, err := f.journal.ListByEntity("u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, journal.Status_Returned, records[0].Status)
}

func Test_Update_Envelope(t *testing.T) {
	f := newFixture(t)
	f.env.ReturnMsg = true

	payload := updatePayload()
	payload.Attributes = map[string]interface{}{
		"avatar": &messages.File{Name: "me.png", Content: []byte("png")},
		"bio":    "hello",
	}
	res, err := f.svc.Update(context.Background(), payload)
	require.NoError(t, err)

	_, params, err := mime.ParseMediaType(res.Envelope.ContentType())
	require.NoError(t, err)
	r := multipart.NewReader(bytes.NewReader(res.Envelope.HttpBody()), params["boundary"])

	fields := map[string]string{}
	files := map[string]string{}
	for {
		part, err := r.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(part)
		require.NoError(t, err)
		if part.FileName() != "" {
			files[part.FormName()] = part.FileName()
		} else {
			fields[part.FormName()] = string(data)
		}
	}
	assert.Equal(t, "a@b.com", fields["email"])
	assert.Equal(t, "1", fields["status"])
	assert.Equal(t, "me.png", files["avatar"])

	var envelope chainTx.SignedPayload
	require.NoError(t, json.Unmarshal([]byte(fields[messages.EnvelopeField]), &envelope))

	var tx struct {
		EntityID string `json:"entityId"`
		Cmds     []struct {
			CmdNum     commands.Kind      `json:"cmdNum"`
			CmdPayload commands.UpdateDao `json:"cmdPayload"`
		} `json:"cmds"`
	}
	require.NoError(t, json.Unmarshal(envelope.Tx, &tx))
	assert.Equal(t, "u1", tx.EntityID)
	require.Len(t, tx.Cmds, 1)
	assert.Equal(t, commands.KindUpdateDao, tx.Cmds[0].CmdNum)

	cmd := tx.Cmds[0].CmdPayload
	assert.Equal(t, "u1", cmd.ID)
	assert.False(t, cmd.IsTeamAccount)
	assert.Equal(t, "me.png", cmd.Attributes["avatar"])

	expected, err := messages.GenSha256Hash(map[string]interface{}{"avatar": "me.png", "bio": "hello"})
	require.NoError(t, err)
	assert.Equal(t, expected, cmd.Description)
}

func Test_Update_NilAttributeFile(t *testing.T) {
	for name, value := range map[string]interface{}{
		"single": (*messages.File)(nil),
		"list":   []*messages.File{nil},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			payload := updatePayload()
			payload.Attributes = map[string]interface{}{"avatar": value}

			require.NotPanics(t, func() {
				_, err := f.svc.Update(context.Background(), payload)
				require.Error(t, err)
				assert.Contains(t, err.Error(), "nil file")
			})
			assert.Equal(t, 0, f.local.calls)
			assert.Empty(t, f.transport.requests)
		})
	}
}

func Test_Update_ValidationError(t *testing.T) {
	f := newFixture(t)
	payload := updatePayload()
	payload.Email = ""

	_, err := f.svc.Update(context.Background(), payload)
	var verr *commands.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.HasField("email"))
	assert.Equal(t, 0, f.local.calls)
	assert.Empty(t, f.transport.requests)
}

func Test_Update_SigningErrorAborts(t *testing.T) {
	f := newFixture(t)
	f.local.err = &transactionSigner.SigningError{Reason: "bad key"}

	_, err := f.svc.Update(context.Background(), updatePayload())
	var serr *transactionSigner.SigningError
	require.True(t, errors.As(err, &serr))
	assert.Empty(t, f.transport.requests)
}

func Test_Update_TransportErrorIsJournaled(t *testing.T) {
	f := newFixture(t)
	f.transport.err = &transport.HTTPError{Method: "PUT", Path: PathUpdateUser, StatusCode: 500}

	_, err := f.svc.Update(context.Background(), updatePayload())
	var herr *transport.HTTPError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, 500, herr.StatusCode)

	records, err := f.journal.ListByEntity("u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, journal.Status_Failed, records[0].Status)
	assert.NotEmpty(t, records[0].Error)
}

func Test_Update_JournalFailureDoesNotAbort(t *testing.T) {
	f := newFixture(t)
	f.svc.journal = failingJournal{}

	res, err := f.svc.Update(context.Background(), updatePayload())
	require.NoError(t, err)
	assert.NotNil(t, res.Response)
}

func Test_ChangePassword(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ChangePassword(context.Background(), &ChangePasswordPayload{
		Initiator: Initiator{ID: "u1", PrivKey: "k"},
		Authority: &commands.Authority{Owner: commands.AuthorityOwner{
			Auths:           []commands.AuthorityKey{{Key: "pub", Weight: 1}},
			WeightThreshold: 1,
		}},
	})
	require.NoError(t, err)

	require.Len(t, f.transport.requests, 1)
	req := f.transport.requests[0]
	assert.Equal(t, "PUT", req.method)
	assert.Equal(t, PathChangePassword, req.path)
	assert.Equal(t, "u1", req.msg.HttpHeaders()[messages.HeaderEntityID])
	assert.Equal(t, messages.ContentTypeJSON, req.msg.ContentType())

	var payload chainTx.SignedPayload
	require.NoError(t, json.Unmarshal(req.msg.HttpBody(), &payload))
	assert.NotEmpty(t, payload.Signature)
}

func Test_ChangePassword_MissingAuthority(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ChangePassword(context.Background(), &ChangePasswordPayload{
		Initiator: Initiator{ID: "u1"},
	})
	var verr *commands.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.HasField("authority"))
}

func Test_Proposals(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AcceptProposal(context.Background(), &AcceptProposalPayload{
		Initiator:   Initiator{ID: "u1", PrivKey: "k"},
		ProposalID:  "p1",
		Account:     "u1",
		BatchWeight: commands.Uint64(0),
	})
	require.NoError(t, err)

	_, err = f.svc.DeclineProposal(context.Background(), &DeclineProposalPayload{
		Initiator:  Initiator{ID: "u1", PrivKey: "k"},
		ProposalID: "p1",
		Account:    "u1",
	})
	require.NoError(t, err)

	require.Len(t, f.transport.requests, 2)
	assert.Equal(t, PathAcceptProposal, f.transport.requests[0].path)
	assert.Equal(t, PathDeclineProposal, f.transport.requests[1].path)

	_, err = f.svc.AcceptProposal(context.Background(), &AcceptProposalPayload{
		Initiator:  Initiator{ID: "u1"},
		ProposalID: "p1",
		Account:    "u1",
	})
	var verr *commands.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.HasField("batchWeight"))
}

func Test_Proposals_RequireInitiator(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AcceptProposal(context.Background(), &AcceptProposalPayload{
		ProposalID:  "p1",
		Account:     "a",
		BatchWeight: commands.Uint64(0),
	})
	var verr *commands.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	assert.True(t, verr.HasField("initiator._id"))

	_, err = f.svc.DeclineProposal(context.Background(), &DeclineProposalPayload{
		ProposalID: "p1",
		Account:    "a",
	})
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	assert.True(t, verr.HasField("initiator._id"))

	assert.Empty(t, f.transport.requests)
	assert.Zero(t, f.local.calls)
}

func Test_CreateUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateUser(context.Background(), &CreateUserPayload{
		Email:  "a@b.com",
		PubKey: "pub",
		Roles:  []commands.Role{{Role: "admin", TeamID: "t1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.local.calls+f.wallet.calls)

	require.Len(t, f.transport.requests, 1)
	req := f.transport.requests[0]
	assert.Equal(t, "POST", req.method)
	assert.Equal(t, PathCreateUser, req.path)

	var body struct {
		AppCmds []struct {
			CmdNum     commands.Kind      `json:"cmdNum"`
			CmdPayload commands.CreateDao `json:"cmdPayload"`
		} `json:"appCmds"`
	}
	require.NoError(t, json.Unmarshal(req.msg.HttpBody(), &body))
	require.Len(t, body.AppCmds, 1)
	assert.Equal(t, commands.KindCreateDao, body.AppCmds[0].CmdNum)
	assert.Equal(t, "a@b.com", body.AppCmds[0].CmdPayload.Email)
}

func Test_CreateUser_ReturnMsg(t *testing.T) {
	f := newFixture(t)
	f.env.ReturnMsg = true

	res, err := f.svc.CreateUser(context.Background(), &CreateUserPayload{Email: "a@b.com", PubKey: "pub"})
	require.NoError(t, err)
	assert.True(t, res.Returned())
	assert.Empty(t, f.transport.requests)
}

func Test_Reads(t *testing.T) {
	tests := []struct {
		name string
		call func(s *UserService) error
		path string
	}{
		{
			name: "list by ids",
			call: func(s *UserService) error {
				_, err := s.GetListByIds(context.Background(), []string{"a", "b"})
				return err
			},
			path: "/api/v2/users?usernames=a&usernames=b",
		},
		{
			name: "list by team",
			call: func(s *UserService) error {
				_, err := s.GetListByTeam(context.Background(), "t1")
				return err
			},
			path: "/api/v2/users/team/t1",
		},
		{
			name: "list by portal",
			call: func(s *UserService) error {
				_, err := s.GetListByPortal(context.Background(), "p1")
				return err
			},
			path: "/api/v2/users/portal/p1",
		},
		{
			name: "listing",
			call: func(s *UserService) error {
				_, err := s.GetList(context.Background(), url.Values{"status": {"1"}})
				return err
			},
			path: "/api/v2/users/listing?status=1",
		},
		{
			name: "one by id",
			call: func(s *UserService) error {
				_, err := s.GetOne(context.Background(), "u1")
				return err
			},
			path: "/api/v2/user/name/u1",
		},
		{
			name: "one by email",
			call: func(s *UserService) error {
				_, err := s.GetOne(context.Background(), "a@b.com")
				return err
			},
			path: "/api/v2/user/email/a@b.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, tt.call(f.svc))
			require.Len(t, f.transport.requests, 1)
			assert.Equal(t, "GET", f.transport.requests[0].method)
			assert.Equal(t, tt.path, f.transport.requests[0].path)
		})
	}
}

func Test_NewUserService_Validation(t *testing.T) {
	chain := chainTx.NewChainService(&chainTx.ChainInfo{}, nil, zaptest.NewLogger(t))
	valid := func() *Config {
		return &Config{
			Transport:    &fakeTransport{},
			ChainService: chain,
			LocalSigner:  &fakeSigner{},
			Env:          config.StaticEnv(&config.Env{}),
			Logger:       zaptest.NewLogger(t),
		}
	}

	_, err := NewUserService(valid())
	require.NoError(t, err)

	_, err = NewUserService(nil)
	require.Error(t, err)

	for name, mutate := range map[string]func(c *Config){
		"transport": func(c *Config) { c.Transport = nil },
		"chain":     func(c *Config) { c.ChainService = nil },
		"signers":   func(c *Config) { c.LocalSigner = nil },
		"env":       func(c *Config) { c.Env = nil },
		"logger":    func(c *Config) { c.Logger = nil },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			_, err := NewUserService(cfg)
			require.Error(t, err)
		})
	}
}
