package authorization

import (
	"context"
	"fmt"

	authcontext "github.com/nasermirzaei89/murmur/authentication/context"
)

type Client struct {
	authzSvc *Service
}

func NewClient(authzSvc *Service) *Client {
	return &Client{
		authzSvc: authzSvc,
	}
}

// CheckAccess checks if the current subject in the context, or its implicit group, may perform the action on the
// object within the domain.
func (c *Client) CheckAccess(ctx context.Context, domain, object, action string) error {
	subject := authcontext.GetSubject(ctx)

	allowed, err := c.check(ctx, subject, domain, object, action)
	if err != nil {
		return err
	}

	if !allowed {
		return &AccessDeniedError{
			Subject: subject,
			Domain:  domain,
			Object:  object,
			Action:  action,
		}
	}

	return nil
}

func (c *Client) CanI(ctx context.Context, domain, object, action string) bool {
	return c.Can(ctx, authcontext.GetSubject(ctx), domain, object, action)
}

func (c *Client) Can(ctx context.Context, subject, domain, object, action string) bool {
	allowed, err := c.check(ctx, subject, domain, object, action)

	return err == nil && allowed
}

func (c *Client) check(ctx context.Context, subject, domain, object, action string) (bool, error) {
	for _, sub := range []string{subject, authcontext.ImplicitGroup(subject)} {
		allowed, err := c.authzSvc.Allowed(ctx, Rule{
			Subject: sub,
			Domain:  domain,
			Object:  object,
			Action:  action,
		})
		if err != nil {
			return false, fmt.Errorf("error on check permission: %w", err)
		}

		if allowed {
			return true, nil
		}
	}

	return false, nil
}

// LoadPolicy adds the rules and memberships of a policy file on top of the policy already loaded. Rules that
// already exist are kept once.
func (c *Client) LoadPolicy(ctx context.Context, content string) error {
	rules, memberships, err := ParsePolicy(content)
	if err != nil {
		return fmt.Errorf("error on parse policy: %w", err)
	}

	err = c.authzSvc.Grant(ctx, rules...)
	if err != nil {
		return fmt.Errorf("error on grant rules: %w", err)
	}

	err = c.authzSvc.Join(ctx, memberships...)
	if err != nil {
		return fmt.Errorf("error on add memberships: %w", err)
	}

	return nil
}
