package attributes

import (
	"context"
	"fmt"
	"net/url"

	"github.com/casimir-one/casimir-go/pkg/messages"
	"github.com/casimir-one/casimir-go/pkg/transport"
)

const (
	PathAttribute       = "/api/v2/attribute"
	PathAttributes      = "/api/v2/attributes"
	PathDeleteAttribute = "/api/v2/attribute/delete"
	PathMappings        = "/portal/settings/attribute-mappings"
)

// AttributesHttp maps attribute operations onto portal endpoints.
type AttributesHttp struct {
	http transport.ITransport
}

func NewAttributesHttp(http transport.ITransport) *AttributesHttp {
	return &AttributesHttp{http: http}
}

func (h *AttributesHttp) GetList(ctx context.Context) (*transport.Response, error) {
	return h.http.Get(ctx, PathAttributes)
}

func (h *AttributesHttp) GetOne(ctx context.Context, id string) (*transport.Response, error) {
	return h.http.Get(ctx, fmt.Sprintf("%s/%s", PathAttribute, url.PathEscape(id)))
}

func (h *AttributesHttp) GetListByScope(ctx context.Context, scope string) (*transport.Response, error) {
	return h.http.Get(ctx, fmt.Sprintf("%s/scope/%s", PathAttributes, url.PathEscape(scope)))
}

func (h *AttributesHttp) Create(ctx context.Context, msg messages.IMessage) (*transport.Response, error) {
	return h.http.Post(ctx, PathAttribute, msg)
}

func (h *AttributesHttp) Update(ctx context.Context, msg messages.IMessage) (*transport.Response, error) {
	return h.http.Put(ctx, PathAttribute, msg)
}

func (h *AttributesHttp) Delete(ctx context.Context, msg messages.IMessage) (*transport.Response, error) {
	return h.http.Put(ctx, PathDeleteAttribute, msg)
}

func (h *AttributesHttp) GetMappings(ctx context.Context) (*transport.Response, error) {
	return h.http.Get(ctx, PathMappings)
}

func (h *AttributesHttp) UpdateMappings(ctx context.Context, msg messages.IMessage) (*transport.Response, error) {
	return h.http.Put(ctx, PathMappings, msg)
}
