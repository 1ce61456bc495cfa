package escalation

import (
	"fmt"
	"strings"

	"github.com/jagaapp/jaga/server/i18n"
)

// Category identifies what kind of emergency an incident is about. The six
// built-in categories carry no label; the "others" category carries the
// user's own free-text label.
type Category struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
}

const otherCategoryKey = "others"

var builtinCategories = map[string]bool{
	"snatch":           true,
	"accident":         true,
	"fire":             true,
	"sexualHarassment": true,
	"wildAnimal":       true,
	"illness":          true,
}

// ParseCategory validates a category selection coming off the wire.
func ParseCategory(key, label string) (Category, error) {
	if builtinCategories[key] {
		return Category{Key: key}, nil
	}

	if key == otherCategoryKey {
		label = strings.TrimSpace(label)
		if label == "" {
			return Category{}, fmt.Errorf("category %q requires a label", otherCategoryKey)
		}
		return Category{Key: otherCategoryKey, Label: label}, nil
	}

	return Category{}, fmt.Errorf("unknown category %q", key)
}

// DisplayLabel renders the category for a given language.
func (c Category) DisplayLabel(lang string) string {
	if c.Key == otherCategoryKey {
		return c.Label
	}
	return i18n.Translate(lang, c.Key)
}

// HelpMessage is the distress text pushed to emergency contacts.
func (c Category) HelpMessage(lang string) string {
	if c.Key == otherCategoryKey {
		return fmt.Sprintf("%s\n%s", i18n.Translate(lang, "help")+"!", c.Label)
	}
	return i18n.HelpMessage(lang, c.Key)
}
