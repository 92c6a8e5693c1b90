package lexer

import (
	"fmt"

	"github.com/rbx-lang/rubix/ast"
)

// Type classifies a token.  Literal kinds that can contain interpolation
// are emitted as Begin/Content/End groups so arbitrarily nested #{}
// expressions lex through the same machine.
type Type int

const (
	EOF Type = iota
	Illegal
	Newline
	Semicolon
	Comment
	EmbDoc

	// Literals
	Int
	Float
	Rational
	Imaginary
	CharLit
	Symbol // static symbol, value is the name without the colon

	// Names
	Ident
	Const
	IVar
	CVar
	GVar
	NthRef  // $1, $2, ...
	BackRef // $&, $`, $', $+, $~ and other special globals
	Label   // ident: in argument or hash position
	Keyword

	// String-family literal framing
	StringBegin
	XStringBegin
	RegexpBegin
	WordsBegin    // %w / %W
	SymWordsBegin // %i / %I
	SymbolBegin   // :" dynamic symbol
	HeredocBegin
	StringContent
	StringEnd
	RegexpEnd // value holds the trailing flags
	HeredocEnd
	InterpBegin // #{
	InterpEnd   // the matching }

	// Operators and punctuation
	Plus
	Minus
	Star
	StarStar
	Slash
	PercentOp
	Caret
	Amp
	AmpAmp
	Pipe
	PipePipe
	Tilde
	Bang
	Assign
	EqEq
	EqEqEq
	Match  // =~
	NotEq  // !=
	NMatch // !~
	FatArrow
	Arrow
	Lt
	LtEq
	Gt
	GtEq
	Cmp // <=>
	LShift
	RShift
	Dot
	DotDot
	DotDotDot
	SafeNav // &.
	ColonColon
	Colon
	Comma
	Question
	OpAssignTok // value holds the operator, e.g. "+="
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
)

var typeNames = map[Type]string{
	EOF: "EOF", Illegal: "illegal", Newline: "newline", Semicolon: ";",
	Comment: "comment", EmbDoc: "embdoc",
	Int: "integer", Float: "float", Rational: "rational",
	Imaginary: "imaginary", CharLit: "character", Symbol: "symbol",
	Ident: "identifier", Const: "constant", IVar: "instance variable",
	CVar: "class variable", GVar: "global variable", NthRef: "nth-ref",
	BackRef: "back-ref", Label: "label", Keyword: "keyword",
	StringBegin: "string", XStringBegin: "xstring", RegexpBegin: "regexp",
	WordsBegin: "word list", SymWordsBegin: "symbol list",
	SymbolBegin: "dynamic symbol", HeredocBegin: "heredoc",
	StringContent: "string content", StringEnd: "string end",
	RegexpEnd: "regexp end", HeredocEnd: "heredoc end",
	InterpBegin: "#{", InterpEnd: "}",
	Plus: "+", Minus: "-", Star: "*", StarStar: "**", Slash: "/",
	PercentOp: "%", Caret: "^", Amp: "&", AmpAmp: "&&", Pipe: "|",
	PipePipe: "||", Tilde: "~", Bang: "!", Assign: "=", EqEq: "==",
	EqEqEq: "===", Match: "=~", NotEq: "!=", NMatch: "!~",
	FatArrow: "=>", Arrow: "->", Lt: "<", LtEq: "<=", Gt: ">",
	GtEq: ">=", Cmp: "<=>", LShift: "<<", RShift: ">>", Dot: ".",
	DotDot: "..", DotDotDot: "...", SafeNav: "&.", ColonColon: "::",
	Colon: ":", Comma: ",", Question: "?", OpAssignTok: "op-assign",
	LParen: "(", RParen: ")", LBracket: "[", RBracket: "]",
	LBrace: "{", RBrace: "}",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Token is one lexed unit.  Value borrows from the source buffer and is
// never retained by the tree; only Locs survive into nodes.
type Token struct {
	Type Type
	// Value is the significant text: the name for identifiers and
	// symbols, the operator for OpAssignTok, the flags for RegexpEnd,
	// the terminator identifier for heredoc tokens.
	Value []byte
	Loc   ast.Loc
	// SpaceBefore reports whitespace immediately preceding the token,
	// which drives command-call and unary-operator disambiguation.
	SpaceBefore bool
	// Aux carries the dedent width on HeredocEnd tokens.
	Aux int
}

func (t Token) String() string {
	if len(t.Value) > 0 {
		return fmt.Sprintf("%s(%s)", t.Type, t.Value)
	}
	return t.Type.String()
}

// IsKeyword reports whether the token is the given keyword.
func (t Token) IsKeyword(kw string) bool {
	return t.Type == Keyword && string(t.Value) == kw
}

var keywords = map[string]bool{
	"alias": true, "and": true, "BEGIN": true, "begin": true,
	"break": true, "case": true, "class": true, "def": true,
	"defined?": true, "do": true, "else": true, "elsif": true,
	"END": true, "end": true, "ensure": true, "false": true,
	"for": true, "if": true, "in": true, "module": true, "next": true,
	"nil": true, "not": true, "or": true, "redo": true, "rescue": true,
	"retry": true, "return": true, "self": true, "super": true,
	"then": true, "true": true, "undef": true, "unless": true,
	"until": true, "when": true, "while": true, "yield": true,
}

// Keywords returns the keyword set; the parser uses it for misspelling
// suggestions in recovery diagnostics.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for kw := range keywords {
		out = append(out, kw)
	}
	return out
}
