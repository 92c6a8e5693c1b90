package ast

// Program is the root of every tree.  A parse produces exactly one.
type Program struct {
	Kind       string      `json:"kind"`
	Statements *Statements `json:"statements"`
	Loc        `json:"loc"`
}

// Statements is an ordered sequence of statements or expressions.
type Statements struct {
	Kind string `json:"kind"`
	Body []Node `json:"body"`
	Loc  `json:"loc"`
}

// Missing is the placeholder synthesized during error recovery where the
// grammar required a construct that was not present.  Its Loc is the
// zero-length span at the point of the failure.
type Missing struct {
	Kind string `json:"kind"`
	Loc  `json:"loc"`
}

// Literals.  Numeric literals carry no decoded value; consumers slice the
// token text through Loc so arbitrary-precision integers survive intact.

type IntegerLit struct {
	Kind string `json:"kind"`
	Loc  `json:"loc"`
}

type FloatLit struct {
	Kind string `json:"kind"`
	Loc  `json:"loc"`
}

type RationalLit struct {
	Kind string `json:"kind"`
	Loc  `json:"loc"`
}

type ImaginaryLit struct {
	Kind string `json:"kind"`
	Loc  `json:"loc"`
}

// StringLit is a string without interpolation.  Content spans the body
// between the delimiters (or the heredoc body); Dedent is the number of
// leading whitespace bytes a squiggly heredoc strips from each line.
type StringLit struct {
	Kind    string `json:"kind"`
	Content Loc    `json:"content"`
	Dedent  int    `json:"dedent"`
	Loc     `json:"loc"`
}

// InterpString is a string with #{} interpolation; Parts alternate
// between StringLit and EmbExpr.  Dedent is non-zero only for squiggly
// heredocs.
type InterpString struct {
	Kind   string `json:"kind"`
	Parts  []Node `json:"parts"`
	Dedent int    `json:"dedent"`
	Loc    `json:"loc"`
}

// XString is a backtick command string; Parts as in InterpString.
type XString struct {
	Kind  string `json:"kind"`
	Parts []Node `json:"parts"`
	Loc   `json:"loc"`
}

type SymbolLit struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Loc  `json:"loc"`
}

// InterpSymbol is a dynamic symbol, :"a#{b}".
type InterpSymbol struct {
	Kind  string `json:"kind"`
	Parts []Node `json:"parts"`
	Loc   `json:"loc"`
}

type RegexpLit struct {
	Kind    string `json:"kind"`
	Content Loc    `json:"content"`
	Flags   string `json:"flags"`
	Loc     `json:"loc"`
}

type InterpRegexp struct {
	Kind  string `json:"kind"`
	Parts []Node `json:"parts"`
	Flags string `json:"flags"`
	Loc   `json:"loc"`
}

// EmbExpr is one #{...} interpolation.
type EmbExpr struct {
	Kind string      `json:"kind"`
	Body *Statements `json:"body"`
	Loc  `json:"loc"`
}

type ArrayLit struct {
	Kind     string `json:"kind"`
	Elements []Node `json:"elements"`
	Loc      `json:"loc"`
}

type HashLit struct {
	Kind  string `json:"kind"`
	Pairs []Node `json:"pairs"`
	Loc   `json:"loc"`
}

// Pair is one key => value or label: value association.
type Pair struct {
	Kind  string `json:"kind"`
	Key   Node   `json:"key"`
	Value Node   `json:"value"`
	Loc   `json:"loc"`
}

type RangeLit struct {
	Kind      string `json:"kind"`
	Left      Node   `json:"left"`
	Right     Node   `json:"right"`
	Exclusive bool   `json:"exclusive"`
	Loc       `json:"loc"`
}

type NilLit struct {
	Kind string `json:"kind"`
	Loc  `json:"loc"`
}

type TrueLit struct {
	Kind string `json:"kind"`
	Loc  `json:"loc"`
}

type FalseLit struct {
	Kind string `json:"kind"`
	Loc  `json:"loc"`
}

type SelfExpr struct {
	Kind string `json:"kind"`
	Loc  `json:"loc"`
}

// Variable reads and writes.  The shape of an assignment target decides
// whether the parser builds the read or the write form.

type LocalRead struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Loc  `json:"loc"`
}

type LocalWrite struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Value Node   `json:"value"`
	Loc   `json:"loc"`
}

type IVarRead struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Loc  `json:"loc"`
}

type IVarWrite struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Value Node   `json:"value"`
	Loc   `json:"loc"`
}

type CVarRead struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Loc  `json:"loc"`
}

type CVarWrite struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Value Node   `json:"value"`
	Loc   `json:"loc"`
}

type GVarRead struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Loc  `json:"loc"`
}

type GVarWrite struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Value Node   `json:"value"`
	Loc   `json:"loc"`
}

type ConstRead struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Loc  `json:"loc"`
}

type ConstWrite struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Value Node   `json:"value"`
	Loc   `json:"loc"`
}

// ConstPath is A::B or ::A; Parent is nil for a top-level reference.
type ConstPath struct {
	Kind   string `json:"kind"`
	Parent Node   `json:"parent"`
	Name   string `json:"name"`
	Loc    `json:"loc"`
}

type ConstPathWrite struct {
	Kind  string     `json:"kind"`
	Path  *ConstPath `json:"path"`
	Value Node       `json:"value"`
	Loc   `json:"loc"`
}

// NumberedRef is a regexp capture reference like $1.
type NumberedRef struct {
	Kind   string `json:"kind"`
	Number int    `json:"number"`
	Loc    `json:"loc"`
}

// BackRef is a special global like $& or $~.
type BackRef struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Loc  `json:"loc"`
}

// Calls.

// Call is a method call.  Recv is nil for a receiverless call; Block, if
// present, is the *BlockExpr attached to the call.
type Call struct {
	Kind    string `json:"kind"`
	Recv    Node   `json:"recv"`
	Name    string `json:"name"`
	Args    []Node `json:"args"`
	Block   Node   `json:"block"`
	SafeNav bool   `json:"safe_nav"`
	Loc     `json:"loc"`
}

// AttrWrite is recv.name = value.
type AttrWrite struct {
	Kind    string `json:"kind"`
	Recv    Node   `json:"recv"`
	Name    string `json:"name"`
	Value   Node   `json:"value"`
	SafeNav bool   `json:"safe_nav"`
	Loc     `json:"loc"`
}

type IndexRead struct {
	Kind string `json:"kind"`
	Recv Node   `json:"recv"`
	Args []Node `json:"args"`
	Loc  `json:"loc"`
}

type IndexWrite struct {
	Kind  string `json:"kind"`
	Recv  Node   `json:"recv"`
	Args  []Node `json:"args"`
	Value Node   `json:"value"`
	Loc   `json:"loc"`
}

// SplatArg is *value in an argument list or assignment target.
type SplatArg struct {
	Kind  string `json:"kind"`
	Value Node   `json:"value"`
	Loc   `json:"loc"`
}

// DoubleSplat is **value in an argument list or hash literal.
type DoubleSplat struct {
	Kind  string `json:"kind"`
	Value Node   `json:"value"`
	Loc   `json:"loc"`
}

// BlockArg is &value in an argument list.
type BlockArg struct {
	Kind  string `json:"kind"`
	Value Node   `json:"value"`
	Loc   `json:"loc"`
}

// BlockExpr is a do...end or brace block attached to a call.
type BlockExpr struct {
	Kind   string      `json:"kind"`
	Params *Parameters `json:"params"`
	Body   *Statements `json:"body"`
	Braces bool        `json:"braces"`
	Loc    `json:"loc"`
}

// Lambda is a ->(...) {} literal.
type Lambda struct {
	Kind   string      `json:"kind"`
	Params *Parameters `json:"params"`
	Body   *Statements `json:"body"`
	Loc    `json:"loc"`
}

// Operators.

type BinaryExpr struct {
	Kind string `json:"kind"`
	Op   string `json:"op"`
	LHS  Node   `json:"lhs"`
	RHS  Node   `json:"rhs"`
	Loc  `json:"loc"`
}

type UnaryExpr struct {
	Kind    string `json:"kind"`
	Op      string `json:"op"`
	Operand Node   `json:"operand"`
	Loc     `json:"loc"`
}

// AndExpr covers both && and the keyword form; Op records which.
type AndExpr struct {
	Kind string `json:"kind"`
	Op   string `json:"op"`
	LHS  Node   `json:"lhs"`
	RHS  Node   `json:"rhs"`
	Loc  `json:"loc"`
}

type OrExpr struct {
	Kind string `json:"kind"`
	Op   string `json:"op"`
	LHS  Node   `json:"lhs"`
	RHS  Node   `json:"rhs"`
	Loc  `json:"loc"`
}

// NotExpr covers ! and the keyword not.
type NotExpr struct {
	Kind    string `json:"kind"`
	Op      string `json:"op"`
	Operand Node   `json:"operand"`
	Loc     `json:"loc"`
}

type DefinedExpr struct {
	Kind  string `json:"kind"`
	Value Node   `json:"value"`
	Loc   `json:"loc"`
}

// OpAssign is target op= value for any writable target shape.
type OpAssign struct {
	Kind   string `json:"kind"`
	Target Node   `json:"target"`
	Op     string `json:"op"`
	Value  Node   `json:"value"`
	Loc    `json:"loc"`
}

// MultiWrite is a destructuring assignment, a, *b = v.
type MultiWrite struct {
	Kind    string `json:"kind"`
	Targets []Node `json:"targets"`
	Value   Node   `json:"value"`
	Loc     `json:"loc"`
}

// ParenExpr is an explicit parenthesized statement sequence.
type ParenExpr struct {
	Kind string      `json:"kind"`
	Body *Statements `json:"body"`
	Loc  `json:"loc"`
}
