package casbin

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
	"github.com/nasermirzaei89/murmur/authorization"
)

//go:embed model.conf
var casbinModelContent string

type AuthorizationProvider struct {
	enforcer *casbin.Enforcer
}

var _ authorization.AuthorizationProvider = (*AuthorizationProvider)(nil)

// NewAuthorizationProvider loads the policy from persistAdapter into memory. Changes made afterwards are not written
// back to the adapter.
func NewAuthorizationProvider(persistAdapter persist.Adapter) (*AuthorizationProvider, error) {
	if persistAdapter == nil {
		return nil, ErrNilAdapter
	}

	casbinModel, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(casbinModel, persistAdapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	enforcer.EnableAutoSave(false)
	enforcer.EnableAutoBuildRoleLinks(true)

	return &AuthorizationProvider{
		enforcer: enforcer,
	}, nil
}

func (ap *AuthorizationProvider) Enforce(_ context.Context, rule authorization.Rule) (bool, error) {
	allowed, err := ap.enforcer.Enforce(rule.Subject, rule.Domain, rule.Object, rule.Action)
	if err != nil {
		return false, fmt.Errorf("failed to enforce: %w", err)
	}

	return allowed, nil
}

// AddRules relies on casbin ignoring rules that already exist.
func (ap *AuthorizationProvider) AddRules(_ context.Context, rules ...authorization.Rule) error {
	for _, rule := range rules {
		_, err := ap.enforcer.AddPolicy(rule.Subject, rule.Domain, rule.Object, rule.Action)
		if err != nil {
			return fmt.Errorf("failed to add policy %+v: %w", rule, err)
		}
	}

	return nil
}

func (ap *AuthorizationProvider) AddMemberships(_ context.Context, memberships ...authorization.Membership) error {
	for _, membership := range memberships {
		_, err := ap.enforcer.AddGroupingPolicy(membership.Subject, membership.Group)
		if err != nil {
			return fmt.Errorf("failed to add grouping policy %q -> %q: %w", membership.Subject, membership.Group, err)
		}
	}

	return nil
}
