package escalation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	for _, key := range []string{"snatch", "accident", "fire", "sexualHarassment", "wildAnimal", "illness"} {
		category, err := ParseCategory(key, "ignored")
		require.Nil(t, err, key)
		assert.Equal(t, key, category.Key)
		assert.Empty(t, category.Label, "built-in categories carry no label")
	}

	_, err := ParseCategory("tsunami", "")
	assert.NotNil(t, err)
}

func TestParseOthersCategory(t *testing.T) {
	category, err := ParseCategory("others", "  stuck in elevator  ")
	require.Nil(t, err)
	assert.Equal(t, "others", category.Key)
	assert.Equal(t, "stuck in elevator", category.Label)

	_, err = ParseCategory("others", "   ")
	assert.NotNil(t, err, "a custom category needs its own label")
}

func TestDisplayLabel(t *testing.T) {
	fire, err := ParseCategory("fire", "")
	require.Nil(t, err)
	assert.Equal(t, "FIRE", fire.DisplayLabel("en"))
	assert.Equal(t, "KEBAKARAN", fire.DisplayLabel("ms"))

	custom, err := ParseCategory("others", "stuck in elevator")
	require.Nil(t, err)
	assert.Equal(t, "stuck in elevator", custom.DisplayLabel("ms"))
}

func TestHelpMessage(t *testing.T) {
	fire, err := ParseCategory("fire", "")
	require.Nil(t, err)
	assert.Equal(t, "HELP!\nTHERE IS A FIRE", fire.HelpMessage("en"))

	custom, err := ParseCategory("others", "stuck in elevator")
	require.Nil(t, err)
	assert.Equal(t, "HELP!\nstuck in elevator", custom.HelpMessage("en"))
	assert.Equal(t, "TOLONG!\nstuck in elevator", custom.HelpMessage("ms"))
}
