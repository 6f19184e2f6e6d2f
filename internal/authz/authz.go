// Package authz maps roles to the pages and API actions they may use.
package authz

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"pingplatform/internal/models"
)

// RoleGuest is the subject for requests without a valid token.
const RoleGuest models.Role = "guest"

const roleMember = "member"

const (
	ActView  = "view"
	ActWrite = "write"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && r.act == p.act
`

var groupings = [][]string{
	{roleMember, string(RoleGuest)},
	{string(models.RoleConsumer), roleMember},
	{string(models.RoleBrand), roleMember},
	{string(models.RoleManufacturer), roleMember},
	{string(models.RoleRecycler), roleMember},
	{string(models.RoleRegulator), roleMember},
	{string(models.RoleAdmin), roleMember},
}

var policies = [][]string{
	{string(RoleGuest), "/", ActView},
	{string(RoleGuest), "/scan", ActView},
	{string(RoleGuest), "/drop-points", ActView},
	{string(RoleGuest), "/wallet", ActView},
	{string(RoleGuest), "/rewards", ActView},
	{string(RoleGuest), "/settings", ActView},
	{string(RoleGuest), "/admin/login", ActView},
	{string(RoleGuest), "/dashboard/public", ActView},
	{string(RoleGuest), "/api/v1/login", ActWrite},
	{string(RoleGuest), "/api/v1/admin/login", ActWrite},
	{string(RoleGuest), "/api/v1/drop-points", ActView},
	{string(RoleGuest), "/api/v1/notifications", ActView},
	{string(RoleGuest), "/api/v1/health/*", ActView},
	{string(RoleGuest), "/api/v1/version", ActView},

	{roleMember, "/api/v1/me", ActView},
	{roleMember, "/api/v1/me", ActWrite},
	{roleMember, "/api/v1/logout", ActWrite},
	{roleMember, "/api/v1/scan", ActWrite},
	{roleMember, "/api/v1/scan/state", ActView},
	{roleMember, "/api/v1/scan/reset", ActWrite},
	{roleMember, "/api/v1/rewards/:id/claim", ActWrite},
	{roleMember, "/api/v1/rewards/claimed", ActView},
	{roleMember, "/api/v1/recycle", ActWrite},
	{roleMember, "/api/v1/feedback", ActWrite},

	{string(models.RoleBrand), "/dashboard/company", ActView},
	{string(models.RoleManufacturer), "/dashboard/manufacturer", ActView},
	{string(models.RoleRecycler), "/dashboard/recycler", ActView},
	{string(models.RoleRegulator), "/dashboard/regulator", ActView},
	{string(models.RoleRegulator), "/api/v1/admin/audit-log", ActView},

	{string(models.RoleAdmin), "/admin", ActView},
	{string(models.RoleAdmin), "/admin/*", ActView},
	{string(models.RoleAdmin), "/dashboard/*", ActView},
	{string(models.RoleAdmin), "/api/v1/admin/*", ActView},
	{string(models.RoleAdmin), "/api/v1/admin/*", ActWrite},
}

type Enforcer struct {
	e *casbin.Enforcer
}

func New() (*Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz enforcer: %w", err)
	}
	if _, err := e.AddGroupingPolicies(groupings); err != nil {
		return nil, fmt.Errorf("authz roles: %w", err)
	}
	if _, err := e.AddPolicies(policies); err != nil {
		return nil, fmt.Errorf("authz policies: %w", err)
	}
	return &Enforcer{e: e}, nil
}

// Action maps an HTTP method onto a policy action.
func Action(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ActView
	default:
		return ActWrite
	}
}

func (e *Enforcer) Allow(role models.Role, path, act string) (bool, error) {
	if role == "" {
		role = RoleGuest
	}
	ok, err := e.e.Enforce(string(role), path, act)
	if err != nil {
		return false, fmt.Errorf("authz check %s %s %s: %w", role, act, path, err)
	}
	return ok, nil
}

// Pages lists the concrete shell pages a role may view, for navigation.
func (e *Enforcer) Pages(role models.Role) ([]string, error) {
	if role == "" {
		role = RoleGuest
	}
	perms, err := e.e.GetImplicitPermissionsForUser(string(role))
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	out := []string{}
	for _, p := range perms {
		if len(p) < 3 || p[2] != ActView {
			continue
		}
		obj := p[1]
		if strings.HasPrefix(obj, "/api/") || strings.ContainsAny(obj, "*:") || seen[obj] {
			continue
		}
		seen[obj] = true
		out = append(out, obj)
	}
	sort.Strings(out)
	return out, nil
}
