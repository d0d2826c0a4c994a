// Package layout manages portal layouts.
package layout

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

type LayoutService struct {
	layoutHttp *LayoutHttp
	env        config.EnvProvider
	logger     *zap.Logger
}

func NewLayoutService(cfg *Config) (*LayoutService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &LayoutService{
		layoutHttp: NewLayoutHttp(cfg.Transport),
		env:        cfg.Env,
		logger:     cfg.Logger,
	}, nil
}

func (s *LayoutService) GetLayout(ctx context.Context, layoutID string) (*transport.Response, error) {
	return s.layoutHttp.GetLayout(ctx, layoutID)
}

func (s *LayoutService) GetLayouts(ctx context.Context) (*transport.Response, error) {
	return s.layoutHttp.GetLayouts(ctx)
}

func (s *LayoutService) GetLayoutsByScope(ctx context.Context, scope string) (*transport.Response, error) {
	return s.layoutHttp.GetLayoutsByScope(ctx, scope)
}

func (s *LayoutService) GetMappings(ctx context.Context) (*transport.Response, error) {
	return s.layoutHttp.GetMappings(ctx)
}

func (s *LayoutService) CreateLayout(ctx context.Context, l commands.CreateLayout) (*services.Result, error) {
	cmd, err := commands.NewCreateLayoutCmd(l)
	if err != nil {
		return nil, err
	}
	return s.deliver(ctx, cmd, s.layoutHttp.CreateLayout)
}

func (s *LayoutService) UpdateLayout(ctx context.Context, l commands.UpdateLayout) (*services.Result, error) {
	cmd, err := commands.NewUpdateLayoutCmd(l)
	if err != nil {
		return nil, err
	}
	return s.deliver(ctx, cmd, s.layoutHttp.UpdateLayout)
}

func (s *LayoutService) DeleteLayout(ctx context.Context, layoutID string) (*services.Result, error) {
	cmd, err := commands.NewDeleteLayoutCmd(commands.DeleteLayout{ID: layoutID})
	if err != nil {
		return nil, err
	}
	return s.deliver(ctx, cmd, s.layoutHttp.DeleteLayout)
}

func (s *LayoutService) UpdateMappings(ctx context.Context, mappings map[string]interface{}) (*services.Result, error) {
	cmd, err := commands.NewUpdatePortalSettingsCmd(commands.UpdatePortalSettings{Mappings: mappings})
	if err != nil {
		return nil, err
	}
	return s.deliver(ctx, cmd, s.layoutHttp.UpdateMappings)
}

func (s *LayoutService) deliver(ctx context.Context, cmd *commands.Cmd, send services.SendFunc) (*services.Result, error) {
	msg, err := services.NewAppCmdsMsg(nil, cmd)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build layout message")
	}
	res, err := services.Deliver(ctx, services.ResolveEnv(s.env), msg, send)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to deliver %s", cmd.Kind())
	}
	s.logger.Debug("Layout command delivered",
		zap.String("command", cmd.Kind().String()),
		zap.Bool("returned", res.Returned()),
	)
	return res, nil
}
