package rules

import (
	"fmt"
	"strings"

	"github.com/wikibots/redirect-patroller/internal/config"
	"github.com/wikibots/redirect-patroller/internal/normalize"
)

// Default returns the full rule chain in evaluation order.
func Default() []Rule {
	return []Rule{
		{ID: RuleDisambiguation, Name: "disambiguation", Side: SideTitle, Transform: normalize.StripDisambiguation},
		{ID: RuleExact, Name: "exact", Side: SideBoth},
		{ID: RulePluralS, Name: "plural-s", Side: SideTarget, Transform: suffix("s")},
		{ID: RulePluralES, Name: "plural-es", Side: SideTarget, Transform: suffix("es")},
		{ID: RuleApostrophe, Name: "apostrophe", Side: SideBoth, Transform: normalize.Apostrophes},
		{ID: RuleSurnameFirst, Name: "surname-first", Side: SideTitle, Transform: normalize.ReorderSurname},
		{ID: RuleListOf, Name: "list-of", Side: SideEither, Transform: normalize.WithListPrefix},
		{ID: RuleSpacing, Name: "spacing", Side: SideBoth, Transform: normalize.StripSpacesAndHyphens},
		{ID: RuleVersus, Name: "versus", Side: SideBoth, Transform: normalize.Versus},
		{ID: RuleArticle, Name: "article", Side: SideBoth, Transform: normalize.StripArticle},
		{ID: RuleDash, Name: "dash", Side: SideBoth, Transform: normalize.Dashes},
	}
}

// BuildEngine builds the default chain minus the rules disabled in config.
func BuildEngine(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	disabled, err := mapDisabled(cfg.Rules.Disabled)
	if err != nil {
		return nil, err
	}

	chain := Default()
	active := make([]Rule, 0, len(chain))
	for _, rule := range chain {
		if disabled[rule.ID] {
			continue
		}
		active = append(active, rule)
	}
	return NewEngine(active), nil
}

// Lookup finds a default rule by ID or name.
func Lookup(ref string) (Rule, bool) {
	ref = strings.TrimSpace(ref)
	for _, rule := range Default() {
		if string(rule.ID) == ref || rule.Name == ref {
			return rule, true
		}
	}
	return Rule{}, false
}

func mapDisabled(raw []string) (map[ID]bool, error) {
	out := make(map[ID]bool, len(raw))
	for _, item := range raw {
		rule, ok := Lookup(item)
		if !ok {
			return nil, fmt.Errorf("unknown rule %q", item)
		}
		out[rule.ID] = true
	}
	return out, nil
}

func suffix(s string) Transform {
	return func(in string) string { return in + s }
}
