package parser

import "github.com/rbx-lang/rubix/lexer"

// Binding powers, loosest first.  Modifier keywords and multiple
// assignment sit below precLowest and are handled at statement level.
const (
	precLowest = iota + 1
	precKeywordOr  // and or
	precKeywordNot // not
	precAssign     // = += ||= ... (right)
	precRescueMod  // expr rescue expr
	precTernary    // ?: (right)
	precRange      // .. ...
	precOr         // ||
	precAnd        // &&
	precEquality   // <=> == === != =~ !~
	precComparison // > >= < <=
	precBitOr      // | ^
	precBitAnd     // &
	precShift      // << >>
	precAdditive   // + -
	precMultiplicative // * / %
	precUnaryMinus // -x, binds looser than **
	precPower      // ** (right)
	precUnary      // ! ~ +x
)

type opInfo struct {
	prec  int
	right bool
}

var binaryOps = map[lexer.Type]opInfo{
	lexer.Assign:      {precAssign, true},
	lexer.OpAssignTok: {precAssign, true},
	lexer.Question:    {precTernary, true},
	lexer.DotDot:      {precRange, false},
	lexer.DotDotDot:   {precRange, false},
	lexer.PipePipe:    {precOr, false},
	lexer.AmpAmp:      {precAnd, false},
	lexer.Cmp:         {precEquality, false},
	lexer.EqEq:        {precEquality, false},
	lexer.EqEqEq:      {precEquality, false},
	lexer.NotEq:       {precEquality, false},
	lexer.Match:       {precEquality, false},
	lexer.NMatch:      {precEquality, false},
	lexer.Gt:          {precComparison, false},
	lexer.GtEq:        {precComparison, false},
	lexer.Lt:          {precComparison, false},
	lexer.LtEq:        {precComparison, false},
	lexer.Pipe:        {precBitOr, false},
	lexer.Caret:       {precBitOr, false},
	lexer.Amp:         {precBitAnd, false},
	lexer.LShift:      {precShift, false},
	lexer.RShift:      {precShift, false},
	lexer.Plus:        {precAdditive, false},
	lexer.Minus:       {precAdditive, false},
	lexer.Star:        {precMultiplicative, false},
	lexer.Slash:       {precMultiplicative, false},
	lexer.PercentOp:   {precMultiplicative, false},
	lexer.StarStar:    {precPower, true},
}

// infixInfo looks up the binding power of the current token as an infix
// operator, covering the keyword operators the table can't key on type.
func infixInfo(t lexer.Token) (opInfo, bool) {
	if t.Type == lexer.Keyword {
		switch string(t.Value) {
		case "and", "or":
			return opInfo{precKeywordOr, false}, true
		case "rescue":
			return opInfo{precRescueMod, false}, true
		}
		return opInfo{}, false
	}
	info, ok := binaryOps[t.Type]
	return info, ok
}

// tokenStartsExpr reports whether a token can begin an expression, which
// settles optional operands: endless ranges, bare return values, and
// parenless call arguments.
func tokenStartsExpr(t lexer.Token) bool {
	switch t.Type {
	case lexer.Int, lexer.Float, lexer.Rational, lexer.Imaginary,
		lexer.CharLit, lexer.Symbol, lexer.Ident, lexer.Const,
		lexer.IVar, lexer.CVar, lexer.GVar, lexer.NthRef, lexer.BackRef,
		lexer.Label, lexer.StringBegin, lexer.XStringBegin,
		lexer.RegexpBegin, lexer.WordsBegin, lexer.SymWordsBegin,
		lexer.SymbolBegin, lexer.HeredocBegin,
		lexer.LParen, lexer.LBracket, lexer.LBrace, lexer.Arrow,
		lexer.Bang, lexer.Tilde, lexer.Plus, lexer.Minus,
		lexer.Star, lexer.StarStar, lexer.Amp,
		lexer.DotDot, lexer.DotDotDot, lexer.ColonColon:
		return true
	case lexer.Keyword:
		switch string(t.Value) {
		case "nil", "true", "false", "self", "not", "defined?",
			"if", "unless", "case", "while", "until", "for", "begin",
			"def", "class", "module", "return", "break", "next",
			"redo", "retry", "yield", "super":
			return true
		}
	}
	return false
}
