package ticket

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	suggestionKind = "suggestion"
	bugKindPrefix  = "bug:"

	suggestionChannelPrefix = "suggest"
	bugChannelPrefix        = "bug"

	// disambiguators are drawn from [0, maxDisambiguator)
	maxDisambiguator = 10000
)

// Kind is either a suggestion or a bug report of one configured bug type.
type Kind struct {
	bugType string
}

func Suggestion() Kind {
	return Kind{}
}

func Bug(bugType string) Kind {
	return Kind{bugType: bugType}
}

func (k Kind) IsBug() bool {
	return k.bugType != ""
}

func (k Kind) BugType() string {
	return k.bugType
}

// String renders the kind as "suggestion" or "bug:<bug type>".
func (k Kind) String() string {
	if k.IsBug() {
		return bugKindPrefix + k.bugType
	}
	return suggestionKind
}

func ParseKind(s string) (Kind, error) {
	switch {
	case s == suggestionKind:
		return Suggestion(), nil
	case strings.HasPrefix(s, bugKindPrefix) && len(s) > len(bugKindPrefix):
		return Bug(strings.TrimPrefix(s, bugKindPrefix)), nil
	}
	return Kind{}, fmt.Errorf("ParseKind: unknown ticket kind %q", s)
}

// Slug lower-cases a bug type and strips its spaces: "Performance Eternal" -> "performanceeternal".
func Slug(bugType string) string {
	return strings.ReplaceAll(cases.Lower(language.English).String(strings.TrimSpace(bugType)), " ", "")
}

func (k Kind) channelPrefix() string {
	if k.IsBug() {
		return bugChannelPrefix + "-" + Slug(k.bugType)
	}
	return suggestionChannelPrefix
}

func ChannelName(k Kind, disambiguator int) string {
	return fmt.Sprintf("%s-%d", k.channelPrefix(), disambiguator)
}

// namePattern matches every channel name a ticket of the given bug types can get.
func namePattern(bugTypes []string) *regexp.Regexp {
	prefixes := []string{regexp.QuoteMeta(suggestionChannelPrefix)}
	for _, bugType := range bugTypes {
		if slug := Slug(bugType); slug != "" {
			prefixes = append(prefixes, regexp.QuoteMeta(bugChannelPrefix+"-"+slug))
		}
	}
	return regexp.MustCompile(`^(?:` + strings.Join(prefixes, "|") + `)-[0-9]{1,4}$`)
}
