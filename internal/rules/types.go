package rules

// ID names a rule in config and in the decision log.
type ID string

const (
	RuleDisambiguation ID = "R0"
	RuleExact          ID = "R1"
	RulePluralS        ID = "R2"
	RulePluralES       ID = "R3"
	RuleApostrophe     ID = "R4"
	RuleSurnameFirst   ID = "R5"
	RuleListOf         ID = "R6"
	RuleSpacing        ID = "R7"
	RuleVersus         ID = "R8"
	RuleArticle        ID = "R9"
	RuleDash           ID = "R10"
)

// Side selects which of (title, target) a rule canonicalizes before the two
// are compared.
type Side int

const (
	// SideTitle compares transform(title) with target.
	SideTitle Side = iota
	// SideTarget compares transform(target) with title.
	SideTarget
	// SideBoth compares transform(target) with transform(title).
	SideBoth
	// SideEither matches when SideTitle or SideTarget does.
	SideEither
)

type Transform func(string) string

type Rule struct {
	ID        ID
	Name      string
	Side      Side
	Transform Transform
}

// Decision is the outcome of evaluating one redirect.
type Decision struct {
	Patrol  bool
	Rule    ID
	Trusted bool
}

// Comparator is the equality relation rules test with.
type Comparator func(a, b string) bool
