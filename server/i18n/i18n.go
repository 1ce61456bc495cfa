package i18n

const (
	LangEnglish = "en"
	LangMalay   = "ms"

	DefaultLanguage = LangEnglish
)

// translations holds the client-facing strings the server hands back to
// mobile clients (notification bodies, category labels, status lines).
var translations = map[string]map[string]string{
	LangEnglish: {
		"snatch":           "SNATCH",
		"accident":         "ACCIDENT",
		"fire":             "FIRE",
		"sexualHarassment": "SEXUAL HARASSMENT",
		"wildAnimal":       "WILD ANIMAL",
		"illness":          "ILLNESS",
		"others":           "OTHERS",
		"help":             "HELP",
		"helpMe":           "Help me!",
		"notify":           "NOTIFY",
		"notified":         "Notified",
		"notifying":        "Notifying...",
		"safeNow":          "I AM SAFE NOW",
		"emergencyAlerts":  "EMERGENCY ALERTS!",
	},
	LangMalay: {
		"snatch":           "RAGUT",
		"accident":         "KEMALANGAN",
		"fire":             "KEBAKARAN",
		"sexualHarassment": "GANGGUAN SEKSUAL",
		"wildAnimal":       "BINATANG LIAR",
		"illness":          "PENYAKIT",
		"others":           "LAIN-LAIN",
		"help":             "TOLONG",
		"helpMe":           "Tolong saya!",
		"notify":           "MAKLUM",
		"notified":         "Dimaklumkan",
		"notifying":        "Memaklumkan...",
		"safeNow":          "SAYA SELAMAT SEKARANG",
		"emergencyAlerts":  "AMARAN KECEMASAN!",
	},
}

// helpMessages are the category distress texts pushed to emergency
// contacts, keyed by category key then language.
var helpMessages = map[string]map[string]string{
	"snatch": {
		LangEnglish: "HELP!\nI AM BEING SNATCHED",
		LangMalay:   "TOLONG!\nSAYA SEDANG DIRAGUT",
	},
	"accident": {
		LangEnglish: "HELP!\nI AM IN ACCIDENT",
		LangMalay:   "TOLONG!\nSAYA DALAM KEMALANGAN",
	},
	"fire": {
		LangEnglish: "HELP!\nTHERE IS A FIRE",
		LangMalay:   "TOLONG!\nADA KEBAKARAN",
	},
	"sexualHarassment": {
		LangEnglish: "HELP!\nI AM BEING SEXUALLY HARASSED",
		LangMalay:   "TOLONG!\nSAYA DIKACAU SECARA SEKSUAL",
	},
	"wildAnimal": {
		LangEnglish: "HELP!\nTHERE IS A WILD ANIMAL",
		LangMalay:   "TOLONG!\nADA BINATANG LIAR",
	},
	"illness": {
		LangEnglish: "HELP!\nI AM ILL",
		LangMalay:   "TOLONG!\nSAYA SAKIT",
	},
}

// SpeechTag maps a language to the BCP 47 tag handed to the speech channel.
func SpeechTag(lang string) string {
	if lang == LangMalay {
		return "ms-MY"
	}
	return "en-US"
}

// Translate looks up 'key' for 'lang', falling back to the english table
// and finally to the key itself so an unmapped string never renders empty.
func Translate(lang, key string) string {
	if val, ok := translations[lang][key]; ok {
		return val
	}
	if val, ok := translations[DefaultLanguage][key]; ok {
		return val
	}
	return key
}

// HelpMessage returns the distress text for a category key, falling back
// to english and then to the key itself for custom "others" categories.
func HelpMessage(lang, categoryKey string) string {
	if msg, ok := helpMessages[categoryKey][lang]; ok {
		return msg
	}
	if msg, ok := helpMessages[categoryKey][DefaultLanguage]; ok {
		return msg
	}
	return Translate(lang, categoryKey)
}
