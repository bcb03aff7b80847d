package steps

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/onboarding/internal/common"
)

type Kind int

const (
	KindText Kind = iota
	KindChoice
	KindList
	KindImage
)

// Field describes one input of a step.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Options  []string
	Required bool
}

var schema = map[Number][]Field{
	Profile: {
		{Name: "yourName", Label: "Your name", Kind: KindText, Required: true},
		{Name: "yourUsername", Label: "Username", Kind: KindText, Required: true},
		{Name: "describesYou", Label: "What describes you best", Kind: KindChoice, Options: DescribesYouOptions, Required: true},
		{Name: "location", Label: "Location", Kind: KindChoice, Options: LocationOptions, Required: true},
		{Name: "howDoYouKnowUs", Label: "How did you hear about us", Kind: KindChoice, Options: HowDoYouKnowUsOptions, Required: true},
	},
	Goal: {
		{Name: "mainGoal", Label: "Main goal", Kind: KindChoice, Options: MainGoalOptions, Required: true},
	},
	Intro: nil,
	Interests: {
		{Name: "selectedSkills", Label: "Skills (comma separated, up to 5)", Kind: KindList, Required: true},
		{Name: "skillSearch", Label: "Skill search", Kind: KindText},
	},
	Career: {
		{Name: "jobSeeking", Label: "Looking for a job", Kind: KindChoice, Options: JobSeekingOptions, Required: true},
		{Name: "profileImage", Label: "Profile image (path to file)", Kind: KindImage, Required: true},
	},
}

// Fields returns the inputs of step n in display order.
func Fields(n Number) []Field {
	return schema[n]
}

// Lookup finds a field of step n by name.
func Lookup(n Number, name string) (Field, bool) {
	for _, f := range schema[n] {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Missing returns the required fields of step n that are absent or empty in
// data. An empty result means the step may be left with Next.
func Missing(n Number, data map[string]any) []string {
	var out []string
	for _, f := range schema[n] {
		if f.Required && isEmpty(data[f.Name]) {
			out = append(out, f.Name)
		}
	}
	return out
}

// ParseValue converts text typed by a user into the value stored for f.
// Lists are comma separated; blanks around items are dropped.
func ParseValue(f Field, text string) (any, error) {
	text = strings.TrimSpace(text)
	switch f.Kind {
	case KindList:
		items := []string{}
		for _, s := range strings.Split(text, ",") {
			if s = strings.TrimSpace(s); s != "" {
				items = append(items, s)
			}
		}
		return items, nil
	case KindChoice:
		if text == "" {
			return "", nil
		}
		for _, o := range f.Options {
			if strings.EqualFold(o, text) {
				return o, nil
			}
		}
		return nil, common.NewValidationError(f.Name, "must be one of %s", strings.Join(f.Options, ", "))
	default:
		return text, nil
	}
}

// Describe renders a stored value for display.
func Describe(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		if strings.HasPrefix(t, "data:") && len(t) > 48 {
			return t[:48] + "..."
		}
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(t, ", ")
	default:
		return fmt.Sprint(t)
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	default:
		return false
	}
}
