package authorization

import (
	"context"
	"errors"
	"fmt"

	authcontext "github.com/nasermirzaei89/murmur/authentication/context"
)

// ObjectAny in a rule matches every object of the domain.
const ObjectAny = "*"

// Rule lets Subject perform Action on Object within Domain. Domains are service names such as murmur/discuss,
// objects are comment, tweet or parent ids.
type Rule struct {
	Subject string
	Domain  string
	Object  string
	Action  string
}

// Membership makes every rule of Group apply to Subject.
type Membership struct {
	Subject string
	Group   string
}

type AuthorizationProvider interface {
	Enforce(ctx context.Context, rule Rule) (allowed bool, err error)
	AddRules(ctx context.Context, rules ...Rule) error
	AddMemberships(ctx context.Context, memberships ...Membership) error
}

var ErrNilProvider = errors.New("authorization provider must not be nil")

type Service struct {
	provider AuthorizationProvider
}

func NewService(provider AuthorizationProvider) (*Service, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	return &Service{provider: provider}, nil
}

func (svc *Service) Allowed(ctx context.Context, rule Rule) (bool, error) {
	if rule.Object == "" {
		rule.Object = ObjectAny
	}

	allowed, err := svc.provider.Enforce(ctx, rule)
	if err != nil {
		return false, fmt.Errorf("failed to enforce rule: %w", err)
	}

	return allowed, nil
}

func (svc *Service) Grant(ctx context.Context, rules ...Rule) error {
	for i := range rules {
		if rules[i].Object == "" {
			rules[i].Object = ObjectAny
		}
	}

	err := svc.provider.AddRules(ctx, rules...)
	if err != nil {
		return fmt.Errorf("failed to add rules: %w", err)
	}

	return nil
}

func (svc *Service) Join(ctx context.Context, memberships ...Membership) error {
	err := svc.provider.AddMemberships(ctx, memberships...)
	if err != nil {
		return fmt.Errorf("failed to add memberships: %w", err)
	}

	return nil
}

// AccessDeniedError means no rule of the subject or of its implicit group allows the action.
type AccessDeniedError struct {
	Subject string
	Domain  string
	Object  string
	Action  string
}

func (err AccessDeniedError) Error() string {
	who := "user " + err.Subject
	if err.Subject == authcontext.Anonymous || err.Subject == "" {
		who = "anonymous visitor"
	}

	if err.Object == "" || err.Object == ObjectAny {
		return fmt.Sprintf("%s may not %s in %s", who, err.Action, err.Domain)
	}

	return fmt.Sprintf("%s may not %s on %q in %s", who, err.Action, err.Object, err.Domain)
}
