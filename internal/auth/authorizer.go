package auth

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// Resources and actions checked by the HTTP layer.
const (
	ResourceTickets     = "tickets"
	ResourceComments    = "comments"
	ResourceAttachments = "attachments"
	ResourceFeedback    = "feedback"
	ResourceReference   = "reference"
	ResourceFAQ         = "faq"
	ResourceUsers       = "users"
	ResourceReports     = "reports"

	ActionRead     = "read"
	ActionReadAll  = "read_all"
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionAssign   = "assign"
	ActionInternal = "internal"
	ActionWrite    = "write"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// DefaultPolicies grants (role, resource, action).
var DefaultPolicies = [][]string{
	{domain.RoleAdmin, "*", "*"},

	{domain.RoleAgent, ResourceTickets, ActionRead},
	{domain.RoleAgent, ResourceTickets, ActionReadAll},
	{domain.RoleAgent, ResourceTickets, ActionCreate},
	{domain.RoleAgent, ResourceTickets, ActionUpdate},
	{domain.RoleAgent, ResourceTickets, ActionAssign},
	{domain.RoleAgent, ResourceComments, ActionRead},
	{domain.RoleAgent, ResourceComments, ActionCreate},
	{domain.RoleAgent, ResourceComments, ActionInternal},
	{domain.RoleAgent, ResourceAttachments, ActionRead},
	{domain.RoleAgent, ResourceAttachments, ActionCreate},
	{domain.RoleAgent, ResourceFeedback, ActionRead},
	{domain.RoleAgent, ResourceReference, ActionRead},
	{domain.RoleAgent, ResourceFAQ, ActionRead},
	{domain.RoleAgent, ResourceFAQ, ActionWrite},
	{domain.RoleAgent, ResourceUsers, ActionRead},
	{domain.RoleAgent, ResourceReports, ActionRead},

	{domain.RoleUser, ResourceTickets, ActionRead},
	{domain.RoleUser, ResourceTickets, ActionCreate},
	{domain.RoleUser, ResourceComments, ActionRead},
	{domain.RoleUser, ResourceComments, ActionCreate},
	{domain.RoleUser, ResourceAttachments, ActionRead},
	{domain.RoleUser, ResourceAttachments, ActionCreate},
	{domain.RoleUser, ResourceFeedback, ActionRead},
	{domain.RoleUser, ResourceFeedback, ActionCreate},
	{domain.RoleUser, ResourceReference, ActionRead},
	{domain.RoleUser, ResourceFAQ, ActionRead},
}

// Authorizer answers role based permission checks with casbin.
type Authorizer struct {
	mu       sync.RWMutex
	enforcer *casbin.Enforcer
}

// NewAuthorizer builds an in-memory enforcer seeded with policies.
func NewAuthorizer(policies [][]string) (*Authorizer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("casbin model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("casbin enforcer: %w", err)
	}
	for _, p := range policies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, fmt.Errorf("add policy [%s, %s, %s]: %w", p[0], p[1], p[2], err)
		}
	}
	return &Authorizer{enforcer: enforcer}, nil
}

// Allowed reports whether any of roles may perform action on resource.
func (a *Authorizer) Allowed(roles []string, resource, action string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, role := range roles {
		ok, err := a.enforcer.Enforce(role, resource, action)
		if err != nil {
			return false, fmt.Errorf("permission check failed: %w", err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
