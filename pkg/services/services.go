// Package services holds what the portal services share: the call result and
// the RETURN_MSG aware delivery step.
package services

import (
	"context"
	"fmt"

	"github.com/casimir-one/casimir-go/pkg/commands"
	"github.com/casimir-one/casimir-go/pkg/config"
	"github.com/casimir-one/casimir-go/pkg/messages"
	"github.com/casimir-one/casimir-go/pkg/transport"
)

// Result is the outcome of a write operation. Exactly one field is set:
// Envelope when RETURN_MSG is enabled, Response otherwise.
type Result struct {
	Envelope messages.IMessage
	Response *transport.Response
}

// Returned reports whether the envelope was handed back unsent.
func (r *Result) Returned() bool {
	return r != nil && r.Envelope != nil
}

// SendFunc dispatches an envelope to one portal endpoint.
type SendFunc func(ctx context.Context, msg messages.IMessage) (*transport.Response, error)

// Deliver returns msg untouched when env asks for it, otherwise sends it
// exactly once.
func Deliver(ctx context.Context, env *config.Env, msg messages.IMessage, send SendFunc) (*Result, error) {
	if env != nil && env.ReturnMsg {
		return &Result{Envelope: msg}, nil
	}
	resp, err := send(ctx, msg)
	if err != nil {
		return nil, err
	}
	return &Result{Response: resp}, nil
}

// NewAppCmdsMsg wraps unsigned commands in the {"appCmds": [...]} JSON body.
func NewAppCmdsMsg(headers map[string]string, cmds ...*commands.Cmd) (*messages.JsonDataMsg, error) {
	if len(cmds) == 0 {
		return nil, fmt.Errorf("at least one command is required")
	}
	return messages.NewJsonDataMsg(messages.AppCmdsBody{AppCmds: cmds}, headers)
}

// ResolveEnv calls provider, falling back to an empty Env.
func ResolveEnv(provider config.EnvProvider) *config.Env {
	if provider == nil {
		return &config.Env{}
	}
	if env := provider(); env != nil {
		return env
	}
	return &config.Env{}
}
