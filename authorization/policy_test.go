package authorization_test

import (
	"testing"

	"github.com/nasermirzaei89/murmur/authorization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	rules, memberships, err := authorization.ParsePolicy(`# moderators
p, moderators, murmur/discuss, *, deleteComment

  g ,  carol , moderators
p,moderators,murmur/contents,*,deleteTweet
`)
	require.NoError(t, err)

	assert.Equal(t, []authorization.Rule{
		{Subject: "moderators", Domain: "murmur/discuss", Object: "*", Action: "deleteComment"},
		{Subject: "moderators", Domain: "murmur/contents", Object: "*", Action: "deleteTweet"},
	}, rules)
	assert.Equal(t, []authorization.Membership{{Subject: "carol", Group: "moderators"}}, memberships)
}

func TestParsePolicy_Empty(t *testing.T) {
	t.Parallel()

	rules, memberships, err := authorization.ParsePolicy("# nothing here\n\n")
	require.NoError(t, err)
	assert.Empty(t, rules)
	assert.Empty(t, memberships)
}

func TestParsePolicy_Invalid(t *testing.T) {
	t.Parallel()

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()

		_, _, err := authorization.ParsePolicy("x, a, b, c, d")

		var unknownErr *authorization.UnknownPolicyTypeError
		require.ErrorAs(t, err, &unknownErr)
		assert.Equal(t, "x", unknownErr.PolicyType)
	})

	t.Run("short rule", func(t *testing.T) {
		t.Parallel()

		_, _, err := authorization.ParsePolicy("p, a, b, c, d\np, a, b")

		var malformedErr *authorization.MalformedPolicyError
		require.ErrorAs(t, err, &malformedErr)
		assert.Equal(t, 2, malformedErr.Line)
	})

	t.Run("long membership", func(t *testing.T) {
		t.Parallel()

		_, _, err := authorization.ParsePolicy("g, carol, moderators, murmur/discuss")

		var malformedErr *authorization.MalformedPolicyError
		require.ErrorAs(t, err, &malformedErr)
	})
}
