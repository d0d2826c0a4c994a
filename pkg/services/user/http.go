package user

import (
	"context"
	"fmt"
	"net/url"

	"github.com/casimir-one/casimir-go/pkg/messages"
	"github.com/casimir-one/casimir-go/pkg/transport"
)

// Portal endpoints
const (
	PathCreateUser      = "/api/v3/users"
	PathUpdateUser      = "/api/v2/user/update"
	PathChangePassword  = "/api/v2/user/update/password"
	PathAcceptProposal  = "/api/v2/proposals/accept"
	PathDeclineProposal = "/api/v2/proposals/decline"
)

// UserHttp maps user operations onto portal endpoints.
type UserHttp struct {
	http transport.ITransport
}

func NewUserHttp(http transport.ITransport) *UserHttp {
	return &UserHttp{http: http}
}

func (h *UserHttp) CreateUser(ctx context.Context, msg messages.IMessage) (*transport.Response, error) {
	return h.http.Post(ctx, PathCreateUser, msg)
}

func (h *UserHttp) Update(ctx context.Context, msg messages.IMessage) (*transport.Response, error) {
	return h.http.Put(ctx, PathUpdateUser, msg)
}

func (h *UserHttp) ChangePassword(ctx context.Context, msg messages.IMessage) (*transport.Response, error) {
	return h.http.Put(ctx, PathChangePassword, msg)
}

func (h *UserHttp) AcceptProposal(ctx context.Context, msg messages.IMessage) (*transport.Response, error) {
	return h.http.Put(ctx, PathAcceptProposal, msg)
}

func (h *UserHttp) DeclineProposal(ctx context.Context, msg messages.IMessage) (*transport.Response, error) {
	return h.http.Put(ctx, PathDeclineProposal, msg)
}

func (h *UserHttp) GetListByIds(ctx context.Context, usernames []string) (*transport.Response, error) {
	query := url.Values{"usernames": usernames}
	return h.http.Get(ctx, "/api/v2/users?"+query.Encode())
}

func (h *UserHttp) GetListByTeam(ctx context.Context, teamID string) (*transport.Response, error) {
	return h.http.Get(ctx, fmt.Sprintf("/api/v2/users/team/%s", url.PathEscape(teamID)))
}

func (h *UserHttp) GetListByPortal(ctx context.Context, portalID string) (*transport.Response, error) {
	return h.http.Get(ctx, fmt.Sprintf("/api/v2/users/portal/%s", url.PathEscape(portalID)))
}

func (h *UserHttp) GetList(ctx context.Context, query url.Values) (*transport.Response, error) {
	return h.http.Get(ctx, "/api/v2/users/listing?"+query.Encode())
}

func (h *UserHttp) GetOne(ctx context.Context, id string) (*transport.Response, error) {
	return h.http.Get(ctx, fmt.Sprintf("/api/v2/user/name/%s", url.PathEscape(id)))
}

func (h *UserHttp) GetOneByEmail(ctx context.Context, email string) (*transport.Response, error) {
	return h.http.Get(ctx, fmt.Sprintf("/api/v2/user/email/%s", url.PathEscape(email)))
}
