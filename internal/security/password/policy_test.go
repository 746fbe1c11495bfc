package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrengthStrongPassphrase(t *testing.T) {
	assert.Nil(t, Strength("correct-Horse-battery-9"), "long mixed passphrase needs no warning")
}

func TestStrengthWeakShort(t *testing.T) {
	warn := Strength("abcd1234")
	require.NotNil(t, warn)
	assert.LessOrEqual(t, warn.Score, 1)
	assert.NotEmpty(t, warn.Suggestions)
}

func TestStrengthHintPenalty(t *testing.T) {
	// Same password drops below the warning line when it embeds the
	// username.
	assert.Nil(t, Strength("huanvoABC123", "someone"))

	hinted := Strength("huanvoABC123", "huanvo")
	require.NotNil(t, hinted)
	assert.Equal(t, 2, hinted.Score)
}
