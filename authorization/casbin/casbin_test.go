package casbin_test

import (
	"context"
	"testing"

	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/nasermirzaei89/murmur/authorization"
	"github.com/nasermirzaei89/murmur/authorization/casbin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthorizationProvider_NilAdapter(t *testing.T) {
	_, err := casbin.NewAuthorizationProvider(nil)
	require.ErrorIs(t, err, casbin.ErrNilAdapter)
}

func TestAuthorizationProvider_Enforce(t *testing.T) {
	ctx := context.Background()

	provider, err := casbin.NewAuthorizationProvider(stringadapter.NewAdapter("p, admins, murmur/discuss, *, listComments"))
	require.NoError(t, err)

	err = provider.AddRules(ctx,
		authorization.Rule{Subject: "moderators", Domain: "murmur/discuss", Object: "*", Action: "deleteComment"},
		authorization.Rule{Subject: "moderators", Domain: "murmur/discuss", Object: "*", Action: "deleteComment"},
		authorization.Rule{Subject: "erin", Domain: "murmur/contents", Object: "t1", Action: "updateTweet"},
	)
	require.NoError(t, err)

	err = provider.AddMemberships(ctx, authorization.Membership{Subject: "carol", Group: "moderators"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		rule     authorization.Rule
		expected bool
	}{
		{
			name:     "rule from adapter",
			rule:     authorization.Rule{Subject: "admins", Domain: "murmur/discuss", Object: "*", Action: "listComments"},
			expected: true,
		},
		{
			name:     "member of a group",
			rule:     authorization.Rule{Subject: "carol", Domain: "murmur/discuss", Object: "c1", Action: "deleteComment"},
			expected: true,
		},
		{
			name:     "other domain",
			rule:     authorization.Rule{Subject: "carol", Domain: "murmur/contents", Object: "*", Action: "deleteComment"},
			expected: false,
		},
		{
			name:     "not a member",
			rule:     authorization.Rule{Subject: "dave", Domain: "murmur/discuss", Object: "c1", Action: "deleteComment"},
			expected: false,
		},
		{
			name:     "rule for one object",
			rule:     authorization.Rule{Subject: "erin", Domain: "murmur/contents", Object: "t1", Action: "updateTweet"},
			expected: true,
		},
		{
			name:     "rule for another object",
			rule:     authorization.Rule{Subject: "erin", Domain: "murmur/contents", Object: "t2", Action: "updateTweet"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := provider.Enforce(ctx, tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, allowed)
		})
	}
}
