package services

import (
	"context"
	"testing"

	"github.com/casimir-one/casimir-go/pkg/commands"
	"github.com/casimir-one/casimir-go/pkg/config"
	"github.com/casimir-one/casimir-go/pkg/messages"
	"github.com/casimir-one/casimir-go/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Deliver(t *testing.T) {
	msg, err := messages.NewJsonDataMsg(map[string]string{}, nil)
	require.NoError(t, err)

	calls := 0
	send := func(ctx context.Context, m messages.IMessage) (*transport.Response, error) {
		calls++
		return &transport.Response{StatusCode: 200}, nil
	}

	res, err := Deliver(context.Background(), &config.Env{ReturnMsg: true}, msg, send)
	require.NoError(t, err)
	assert.True(t, res.Returned())
	assert.Same(t, msg, res.Envelope)
	assert.Nil(t, res.Response)
	assert.Equal(t, 0, calls)

	res, err = Deliver(context.Background(), &config.Env{}, msg, send)
	require.NoError(t, err)
	assert.False(t, res.Returned())
	assert.Equal(t, 200, res.Response.StatusCode)
	assert.Equal(t, 1, calls)
}

func Test_NewAppCmdsMsg(t *testing.T) {
	_, err := NewAppCmdsMsg(nil)
	require.Error(t, err)

	cmd, err := commands.NewDeleteAttributeCmd(commands.DeleteAttribute{ID: "a1"})
	require.NoError(t, err)
	msg, err := NewAppCmdsMsg(nil, cmd)
	require.NoError(t, err)
	assert.JSONEq(t, `{"appCmds":[{"cmdNum":8,"cmdPayload":{"_id":"a1"}}]}`, string(msg.HttpBody()))
}

func Test_ResolveEnv(t *testing.T) {
	assert.NotNil(t, ResolveEnv(nil))
	assert.NotNil(t, ResolveEnv(func() *config.Env { return nil }))

	env := &config.Env{ReturnMsg: true}
	assert.Same(t, env, ResolveEnv(config.StaticEnv(env)))
}
