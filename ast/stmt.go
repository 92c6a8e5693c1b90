package ast

// Control flow.

// IfExpr covers if/elsif chains and the ternary operator; Else is either
// a *Statements, a nested *IfExpr for elsif, or nil.
type IfExpr struct {
	Kind string      `json:"kind"`
	Cond Node        `json:"cond"`
	Then *Statements `json:"then"`
	Else Node        `json:"else"`
	Loc  `json:"loc"`
}

type UnlessExpr struct {
	Kind string      `json:"kind"`
	Cond Node        `json:"cond"`
	Then *Statements `json:"then"`
	Else *Statements `json:"else"`
	Loc  `json:"loc"`
}

// WhileExpr's DoWhile is true for the begin...end while form, which
// executes the body before the first test.
type WhileExpr struct {
	Kind    string      `json:"kind"`
	Cond    Node        `json:"cond"`
	Body    *Statements `json:"body"`
	DoWhile bool        `json:"do_while"`
	Loc     `json:"loc"`
}

type UntilExpr struct {
	Kind    string      `json:"kind"`
	Cond    Node        `json:"cond"`
	Body    *Statements `json:"body"`
	DoWhile bool        `json:"do_while"`
	Loc     `json:"loc"`
}

type ForExpr struct {
	Kind       string      `json:"kind"`
	Index      Node        `json:"index"`
	Collection Node        `json:"collection"`
	Body       *Statements `json:"body"`
	Loc        `json:"loc"`
}

type CaseExpr struct {
	Kind    string        `json:"kind"`
	Subject Node          `json:"subject"`
	Whens   []*WhenClause `json:"whens"`
	Else    *Statements   `json:"else"`
	Loc     `json:"loc"`
}

type WhenClause struct {
	Kind       string      `json:"kind"`
	Conditions []Node      `json:"conditions"`
	Body       *Statements `json:"body"`
	Loc        `json:"loc"`
}

// CaseMatch is the case/in pattern-matching form.
type CaseMatch struct {
	Kind    string      `json:"kind"`
	Subject Node        `json:"subject"`
	Ins     []*InClause `json:"ins"`
	Else    *Statements `json:"else"`
	Loc     `json:"loc"`
}

type InClause struct {
	Kind    string      `json:"kind"`
	Pattern Node        `json:"pattern"`
	Guard   Node        `json:"guard"`
	Body    *Statements `json:"body"`
	Loc     `json:"loc"`
}

// MatchPredicate is expr in pattern (boolean result).
type MatchPredicate struct {
	Kind    string `json:"kind"`
	Value   Node   `json:"value"`
	Pattern Node   `json:"pattern"`
	Loc     `json:"loc"`
}

// MatchRequired is expr => pattern (raises unless it matches).
type MatchRequired struct {
	Kind    string `json:"kind"`
	Value   Node   `json:"value"`
	Pattern Node   `json:"pattern"`
	Loc     `json:"loc"`
}

// BeginExpr is begin/rescue/else/ensure/end.
type BeginExpr struct {
	Kind    string          `json:"kind"`
	Body    *Statements     `json:"body"`
	Rescues []*RescueClause `json:"rescues"`
	Else    *Statements     `json:"else"`
	Ensure  *Statements     `json:"ensure"`
	Loc     `json:"loc"`
}

type RescueClause struct {
	Kind       string      `json:"kind"`
	Exceptions []Node      `json:"exceptions"`
	Ref        Node        `json:"ref"`
	Body       *Statements `json:"body"`
	Loc        `json:"loc"`
}

// RescueModifier is expr rescue expr.
type RescueModifier struct {
	Kind   string `json:"kind"`
	Value  Node   `json:"value"`
	Rescue Node   `json:"rescue"`
	Loc    `json:"loc"`
}

type ReturnExpr struct {
	Kind string `json:"kind"`
	Args []Node `json:"args"`
	Loc  `json:"loc"`
}

type BreakExpr struct {
	Kind string `json:"kind"`
	Args []Node `json:"args"`
	Loc  `json:"loc"`
}

type NextExpr struct {
	Kind string `json:"kind"`
	Args []Node `json:"args"`
	Loc  `json:"loc"`
}

type RedoExpr struct {
	Kind string `json:"kind"`
	Loc  `json:"loc"`
}

type RetryExpr struct {
	Kind string `json:"kind"`
	Loc  `json:"loc"`
}

type YieldExpr struct {
	Kind string `json:"kind"`
	Args []Node `json:"args"`
	Loc  `json:"loc"`
}

type SuperExpr struct {
	Kind  string `json:"kind"`
	Args  []Node `json:"args"`
	Block Node   `json:"block"`
	Loc   `json:"loc"`
}

// ZSuper is the bare super keyword, which forwards the caller's arguments.
type ZSuper struct {
	Kind string `json:"kind"`
	Loc  `json:"loc"`
}

// Definitions.

// MethodDef's Recv is non-nil for singleton definitions (def self.x).
type MethodDef struct {
	Kind   string      `json:"kind"`
	Recv   Node        `json:"recv"`
	Name   string      `json:"name"`
	Params *Parameters `json:"params"`
	Body   *Statements `json:"body"`
	Loc    `json:"loc"`
}

// Parameters holds every part of a parameter list in declaration order.
type Parameters struct {
	Kind        string `json:"kind"`
	Requireds   []Node `json:"requireds"`
	Optionals   []Node `json:"optionals"`
	Rest        Node   `json:"rest"`
	Posts       []Node `json:"posts"`
	Keywords    []Node `json:"keywords"`
	KeywordRest Node   `json:"keyword_rest"`
	Block       Node   `json:"block"`
	Loc         `json:"loc"`
}

type RequiredParam struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Loc  `json:"loc"`
}

type OptionalParam struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Default Node   `json:"default"`
	Loc     `json:"loc"`
}

// RestParam's Name is empty for an anonymous rest (*).
type RestParam struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Loc  `json:"loc"`
}

type KeywordParam struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Default Node   `json:"default"`
	Loc     `json:"loc"`
}

type KeywordRestParam struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Loc  `json:"loc"`
}

type BlockParam struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Loc  `json:"loc"`
}

type ClassDef struct {
	Kind       string      `json:"kind"`
	Path       Node        `json:"path"`
	Superclass Node        `json:"superclass"`
	Body       *Statements `json:"body"`
	Loc        `json:"loc"`
}

// SingletonClassDef is class << expr.
type SingletonClassDef struct {
	Kind string      `json:"kind"`
	Expr Node        `json:"expr"`
	Body *Statements `json:"body"`
	Loc  `json:"loc"`
}

type ModuleDef struct {
	Kind string      `json:"kind"`
	Path Node        `json:"path"`
	Body *Statements `json:"body"`
	Loc  `json:"loc"`
}

type AliasStmt struct {
	Kind string `json:"kind"`
	New  Node   `json:"new"`
	Old  Node   `json:"old"`
	Loc  `json:"loc"`
}

type UndefStmt struct {
	Kind  string `json:"kind"`
	Names []Node `json:"names"`
	Loc   `json:"loc"`
}

// BeginBlock is BEGIN { ... }.
type BeginBlock struct {
	Kind string      `json:"kind"`
	Body *Statements `json:"body"`
	Loc  `json:"loc"`
}

// EndBlock is END { ... }.
type EndBlock struct {
	Kind string      `json:"kind"`
	Body *Statements `json:"body"`
	Loc  `json:"loc"`
}
