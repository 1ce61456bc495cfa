package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	assert.Equal(t, "SNATCH", Translate(LangEnglish, "snatch"))
	assert.Equal(t, "RAGUT", Translate(LangMalay, "snatch"))

	// unknown language falls back to english
	assert.Equal(t, "FIRE", Translate("fr", "fire"))

	// unmapped keys come back verbatim
	assert.Equal(t, "no-such-key", Translate(LangEnglish, "no-such-key"))
}

func TestHelpMessage(t *testing.T) {
	assert.Equal(t, "HELP!\nI AM IN ACCIDENT", HelpMessage(LangEnglish, "accident"))
	assert.Equal(t, "TOLONG!\nADA KEBAKARAN", HelpMessage(LangMalay, "fire"))

	// custom categories have no canned message, so the key itself is used
	assert.Equal(t, "lost hiker", HelpMessage(LangEnglish, "lost hiker"))
}

func TestSpeechTag(t *testing.T) {
	assert.Equal(t, "ms-MY", SpeechTag(LangMalay))
	assert.Equal(t, "en-US", SpeechTag(LangEnglish))
	assert.Equal(t, "en-US", SpeechTag(""))
}
