// Package attributes manages the portal's attribute definitions and their
// mappings.
package attributes

import (
	"context"
	"fmt"

	"github.com/casimir-one/casimir-go/pkg/commands"
	"github.com/casimir-one/casimir-go/pkg/config"
	"github.com/casimir-one/casimir-go/pkg/services"
	"github.com/casimir-one/casimir-go/pkg/transport"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	Transport transport.ITransport
	Env       config.EnvProvider
	Logger    *zap.Logger
}

type AttributesService struct {
	attributesHttp *AttributesHttp
	env            config.EnvProvider
	logger         *zap.Logger
}

func NewAttributesService(cfg *Config) (*AttributesService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &AttributesService{
		attributesHttp: NewAttributesHttp(cfg.Transport),
		env:            cfg.Env,
		logger:         cfg.Logger,
	}, nil
}

func (s *AttributesService) GetList(ctx context.Context) (*transport.Response, error) {
	return s.attributesHttp.GetList(ctx)
}

func (s *AttributesService) GetOne(ctx context.Context, id string) (*transport.Response, error) {
	return s.attributesHttp.GetOne(ctx, id)
}

func (s *AttributesService) GetListByScope(ctx context.Context, scope string) (*transport.Response, error) {
	return s.attributesHttp.GetListByScope(ctx, scope)
}

func (s *AttributesService) GetMappings(ctx context.Context) (*transport.Response, error) {
	return s.attributesHttp.GetMappings(ctx)
}

func (s *AttributesService) Create(ctx context.Context, attr commands.CreateAttribute) (*services.Result, error) {
	cmd, err := commands.NewCreateAttributeCmd(attr)
	if err != nil {
		return nil, err
	}
	return s.deliver(ctx, "create attribute", cmd, s.attributesHttp.Create)
}

func (s *AttributesService) Update(ctx context.Context, attr commands.UpdateAttribute) (*services.Result, error) {
	cmd, err := commands.NewUpdateAttributeCmd(attr)
	if err != nil {
		return nil, err
	}
	return s.deliver(ctx, "update attribute "+attr.ID, cmd, s.attributesHttp.Update)
}

func (s *AttributesService) Delete(ctx context.Context, id string) (*services.Result, error) {
	cmd, err := commands.NewDeleteAttributeCmd(commands.DeleteAttribute{ID: id})
	if err != nil {
		return nil, err
	}
	return s.deliver(ctx, "delete attribute "+id, cmd, s.attributesHttp.Delete)
}

// UpdateMappings replaces the attribute mappings of the portal settings.
func (s *AttributesService) UpdateMappings(ctx context.Context, mappings map[string]interface{}) (*services.Result, error) {
	cmd, err := commands.NewUpdatePortalSettingsCmd(commands.UpdatePortalSettings{Mappings: mappings})
	if err != nil {
		return nil, err
	}
	return s.deliver(ctx, "update attribute mappings", cmd, s.attributesHttp.UpdateMappings)
}

func (s *AttributesService) deliver(ctx context.Context, what string, cmd *commands.Cmd, send services.SendFunc) (*services.Result, error) {
	msg, err := services.NewAppCmdsMsg(nil, cmd)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s message", what)
	}
	res, err := services.Deliver(ctx, services.ResolveEnv(s.env), msg, send)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to %s", what)
	}
	s.logger.Sugar().Debugw("Attribute command delivered", "command", cmd.Kind().String(), "returned", res.Returned())
	return res, nil
}
