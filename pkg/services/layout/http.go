package layout

import (
	"context"
	"fmt"
	"net/url"

	"github.com/casimir-one/casimir-go/pkg/messages"
	"github.com/casimir-one/casimir-go/pkg/transport"
)

const (
	PathLayout       = "/api/v2/layout"
	PathLayouts      = "/api/v2/layouts"
	PathDeleteLayout = "/api/v2/layout/delete"
	PathMappings     = "/portal/settings/layout-mappings"
)

type LayoutHttp struct {
	http transport.ITransport
}

func NewLayoutHttp(http transport.ITransport) *LayoutHttp {
	return &LayoutHttp{http: http}
}

func (h *LayoutHttp) GetLayout(ctx context.Context, layoutID string) (*transport.Response, error) {
	return h.http.Get(ctx, fmt.Sprintf("%s/%s", PathLayout, url.PathEscape(layoutID)))
}

func (h *LayoutHttp) GetLayouts(ctx context.Context) (*transport.Response, error) {
	return h.http.Get(ctx, PathLayouts)
}

func (h *LayoutHttp) GetLayoutsByScope(ctx context.Context, scope string) (*transport.Response, error) {
	return h.http.Get(ctx, fmt.Sprintf("%s/scope/%s", PathLayouts, url.PathEscape(scope)))
}

func (h *LayoutHttp) CreateLayout(ctx context.Context, msg messages.IMessage) (*transport.Response, error) {
	return h.http.Post(ctx, PathLayout, msg)
}

func (h *LayoutHttp) UpdateLayout(ctx context.Context, msg messages.IMessage) (*transport.Response, error) {
	return h.http.Put(ctx, PathLayout, msg)
}

func (h *LayoutHttp) DeleteLayout(ctx context.Context, msg messages.IMessage) (*transport.Response, error) {
	return h.http.Put(ctx, PathDeleteLayout, msg)
}

func (h *LayoutHttp) GetMappings(ctx context.Context) (*transport.Response, error) {
	return h.http.Get(ctx, PathMappings)
}

func (h *LayoutHttp) UpdateMappings(ctx context.Context, msg messages.IMessage) (*transport.Response, error) {
	return h.http.Put(ctx, PathMappings, msg)
}
