// Package lexer scans Ruby source bytes into tokens.  Classification is
// context sensitive, so the lexer keeps an explicit state describing what
// the previous token allows next, plus a nesting stack for string-family
// literals whose #{} interpolations embed full sub-expressions.
package lexer

import (
	"bytes"
	"fmt"

	"github.com/rbx-lang/rubix/ast"
	"github.com/rbx-lang/rubix/diag"
	"github.com/rbx-lang/rubix/source"
)

// state is the lexer mode that disambiguates context-sensitive bytes,
// e.g. / as division versus regexp start.
type state int

const (
	stBeg   state = iota // an expression is expected
	stEnd                // a complete value precedes; operators expected
	stArg                // after a bare method name; command args may follow
	stFName              // a method name is expected (after def, alias, undef)
	stDot                // after . &. or ::; a method name is expected
)

type litKind int

const (
	litString litKind = iota
	litXString
	litRegexp
	litWords
	litSymWords
	litSymbol
	litHeredoc
)

// literal is the scan state of one string-family literal.  Heredocs use
// term/squiggly/indentOK; delimited literals use open/close/nest.
type literal struct {
	kind   litKind
	open   byte // the opening delimiter when it pairs with close, else 0
	close  byte
	nest   int
	interp bool

	term     []byte
	squiggly bool
	indentOK bool
	dedent   int
	anyLine  bool
	resume   int // where the interrupted line continues after the body
	begin    int // offset of the opening token, for unterminated errors
}

// frame is one entry of the nesting stack: either a suspended literal or
// an open #{ interpolation with its brace-balance count.
type frame struct {
	lit    *literal
	braces int
}

type Lexer struct {
	buf   *source.Buffer
	src   []byte
	pos   int
	state state
	stack []frame
	// skip is the high-water mark of consumed heredoc bodies; when a
	// logical line ends, scanning jumps past them.
	skip   int
	parens int
	diags  []diag.Diagnostic
}

func New(buf *source.Buffer) *Lexer {
	return &Lexer{buf: buf, src: buf.Bytes()}
}

// Diagnostics returns the lexical errors accumulated so far.
func (l *Lexer) Diagnostics() []diag.Diagnostic { return l.diags }

// SetFName puts the lexer into method-name state; the parser uses it for
// the second name of an alias statement.
func (l *Lexer) SetFName() { l.state = stFName }

func (l *Lexer) errorf(start, end int, format string, args ...any) {
	l.diags = append(l.diags, diag.Diagnostic{
		Severity: diag.Error,
		Message:  fmt.Sprintf(format, args...),
		Loc:      ast.NewLoc(start, end),
	})
}

func (l *Lexer) top() *frame {
	if len(l.stack) == 0 {
		return nil
	}
	return &l.stack[len(l.stack)-1]
}

func (l *Lexer) push(lit *literal) { l.stack = append(l.stack, frame{lit: lit}) }

func (l *Lexer) pop() { l.stack = l.stack[:len(l.stack)-1] }

func (l *Lexer) tok(typ Type, start int, value []byte, space bool) Token {
	return Token{Type: typ, Value: value, Loc: ast.NewLoc(start, l.pos), SpaceBefore: space}
}

// Next returns the next token.  It never fails; invalid input produces an
// Illegal token plus a diagnostic so the parser can recover.
func (l *Lexer) Next() Token {
	if top := l.top(); top != nil && top.lit != nil {
		if top.lit.kind == litHeredoc {
			return l.scanHeredoc(top.lit)
		}
		return l.scanDelimited(top.lit)
	}
	return l.scanNormal()
}

func (l *Lexer) byteAt(i int) byte {
	if i < 0 || i >= len(l.src) {
		return 0
	}
	return l.src[i]
}

func isSpace(c byte) bool     { return c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v' }
func isDigit(c byte) bool     { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}
func isIdentChar(c byte) bool { return isIdentStart(c) || isDigit(c) }
func isUpper(c byte) bool     { return c >= 'A' && c <= 'Z' }

func (l *Lexer) scanNormal() Token {
	space := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isSpace(c) {
			space = true
			l.pos++
			continue
		}
		if c == '\\' && l.byteAt(l.pos+1) == '\n' {
			// Line continuation.
			space = true
			l.pos += 2
			continue
		}
		if c == '\n' {
			nl := l.pos
			l.pos++
			if l.skip > l.pos {
				// Jump past heredoc bodies already lexed for this line.
				l.pos = l.skip
				l.skip = 0
			}
			if (l.state == stEnd || l.state == stArg) && l.parens == 0 {
				l.state = stBeg
				return Token{Type: Newline, Loc: ast.NewLoc(nl, nl+1), SpaceBefore: space}
			}
			space = true
			continue
		}
		return l.scanToken(space)
	}
	return Token{Type: EOF, Loc: ast.NewLoc(l.pos, l.pos), SpaceBefore: space}
}

func (l *Lexer) scanToken(space bool) Token {
	start := l.pos
	c := l.src[l.pos]
	// An operator spelling in method-name position is a name, not an
	// operator or literal opener: def <=>, def /, foo.%, def <<.
	if l.state == stFName || l.state == stDot {
		if t, ok := l.scanOpMethodName(space); ok {
			return t
		}
	}
	switch {
	case c == '#':
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.pos++
		}
		return l.tok(Comment, start, l.src[start:l.pos], space)
	case c == '=' && l.atLineStart() && bytes.HasPrefix(l.src[l.pos:], []byte("=begin")):
		return l.scanEmbDoc(space)
	case isDigit(c):
		return l.scanNumber(space)
	case isIdentStart(c):
		return l.scanIdent(space)
	case c == '@':
		return l.scanIVar(space)
	case c == '$':
		return l.scanGVar(space)
	case c == '"':
		l.pos++
		l.push(&literal{kind: litString, close: '"', interp: true, begin: start})
		return l.tok(StringBegin, start, nil, space)
	case c == '\'':
		l.pos++
		l.push(&literal{kind: litString, close: '\'', begin: start})
		return l.tok(StringBegin, start, nil, space)
	case c == '`':
		if l.state == stFName || l.state == stDot {
			l.pos++
			l.state = stArg
			return l.tok(Ident, start, l.src[start:l.pos], space)
		}
		l.pos++
		l.push(&literal{kind: litXString, close: '`', interp: true, begin: start})
		return l.tok(XStringBegin, start, nil, space)
	case c == ':':
		return l.scanColon(space)
	case c == '%':
		if l.state != stEnd {
			if t, ok := l.scanPercent(space); ok {
				return t
			}
		}
		return l.scanOperator(space)
	case c == '/':
		if l.regexpAllowed(space) {
			l.pos++
			l.push(&literal{kind: litRegexp, close: '/', interp: true, begin: start})
			return l.tok(RegexpBegin, start, nil, space)
		}
		return l.scanOperator(space)
	case c == '<':
		if t, ok := l.scanHeredocBegin(space); ok {
			return t
		}
		return l.scanOperator(space)
	case c == '?':
		if t, ok := l.scanCharLit(space); ok {
			return t
		}
		l.pos++
		l.state = stBeg
		return l.tok(Question, start, nil, space)
	default:
		return l.scanOperator(space)
	}
}

func (l *Lexer) atLineStart() bool {
	return l.pos == 0 || l.src[l.pos-1] == '\n'
}

func (l *Lexer) scanEmbDoc(space bool) Token {
	start := l.pos
	for l.pos < len(l.src) {
		// Consume through the end of the current line.
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.pos++
		}
		if l.pos < len(l.src) {
			l.pos++
		}
		if bytes.HasPrefix(l.src[l.pos:], []byte("=end")) {
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
			if l.pos < len(l.src) {
				l.pos++
			}
			return l.tok(EmbDoc, start, l.src[start:l.pos], space)
		}
		if l.pos >= len(l.src) {
			l.errorf(start, l.pos, "embedded document missing =end terminator")
			return l.tok(EmbDoc, start, l.src[start:l.pos], space)
		}
	}
	return l.tok(EmbDoc, start, l.src[start:l.pos], space)
}

// regexpAllowed decides / as regexp start versus division from the lexer
// state and adjacent whitespace.
func (l *Lexer) regexpAllowed(space bool) bool {
	switch l.state {
	case stBeg:
		return true
	case stArg:
		return space && !isSpace(l.byteAt(l.pos+1))
	}
	return false
}

func (l *Lexer) scanNumber(space bool) Token {
	start := l.pos
	typ := Int
	digits := func(pred func(byte) bool) {
		for l.pos < len(l.src) && (pred(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.pos++
		}
	}
	if l.src[l.pos] == '0' && l.pos+1 < len(l.src) {
		switch l.src[l.pos+1] {
		case 'x', 'X':
			l.pos += 2
			digits(func(c byte) bool {
				return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
			})
			return l.numberSuffix(start, typ, space)
		case 'b', 'B':
			l.pos += 2
			digits(func(c byte) bool { return c == '0' || c == '1' })
			return l.numberSuffix(start, typ, space)
		case 'o', 'O', 'd', 'D':
			l.pos += 2
			digits(isDigit)
			return l.numberSuffix(start, typ, space)
		case '0', '1', '2', '3', '4', '5', '6', '7', '_':
			l.pos++
			digits(func(c byte) bool { return c >= '0' && c <= '7' })
			return l.numberSuffix(start, typ, space)
		}
	}
	digits(isDigit)
	if l.byteAt(l.pos) == '.' && isDigit(l.byteAt(l.pos+1)) {
		typ = Float
		l.pos++
		digits(isDigit)
	}
	if c := l.byteAt(l.pos); c == 'e' || c == 'E' {
		next := l.byteAt(l.pos + 1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.byteAt(l.pos+2))) {
			typ = Float
			l.pos++
			if !isDigit(l.byteAt(l.pos)) {
				l.pos++
			}
			digits(isDigit)
		}
	}
	return l.numberSuffix(start, typ, space)
}

// numberSuffix folds the rational/imaginary markers into the literal.
func (l *Lexer) numberSuffix(start int, typ Type, space bool) Token {
	if l.byteAt(l.pos) == 'r' {
		// The r marker may itself be followed by the imaginary marker,
		// as in 3ri.
		next := l.byteAt(l.pos + 1)
		if !isIdentChar(next) || (next == 'i' && !isIdentChar(l.byteAt(l.pos+2))) {
			l.pos++
			typ = Rational
		}
	}
	if l.byteAt(l.pos) == 'i' && !isIdentChar(l.byteAt(l.pos+1)) {
		l.pos++
		typ = Imaginary
	}
	l.state = stEnd
	return l.tok(typ, start, l.src[start:l.pos], space)
}

func (l *Lexer) scanIdent(space bool) Token {
	start := l.pos
	for l.pos < len(l.src) && isIdentChar(l.src[l.pos]) {
		l.pos++
	}
	if c := l.byteAt(l.pos); (c == '?' || c == '!') && l.byteAt(l.pos+1) != '=' {
		l.pos++
	}
	nameState := l.state == stFName || l.state == stDot
	if nameState && l.byteAt(l.pos) == '=' && l.byteAt(l.pos+1) != '=' && l.byteAt(l.pos+1) != '>' && l.byteAt(l.pos+1) != '~' {
		// Setter name, e.g. def foo=(v).
		l.pos++
	}
	word := l.src[start:l.pos]
	// A name directly followed by a colon is a label in value or
	// argument position, even when it spells a keyword.
	if (l.state == stBeg || l.state == stArg) && l.byteAt(l.pos) == ':' && l.byteAt(l.pos+1) != ':' {
		l.pos++
		l.state = stBeg
		return l.tok(Label, start, word, space)
	}
	if !nameState && keywords[string(word)] {
		return l.keywordToken(start, word, space)
	}
	// A capitalized name after :: or . is still a constant; only the
	// def/alias/undef name position forces a method name. Setter
	// spellings like Foo= stay method names.
	if isUpper(word[0]) && l.state != stFName && word[len(word)-1] != '=' {
		l.state = stEnd
		return l.tok(Const, start, word, space)
	}
	l.state = stArg
	return l.tok(Ident, start, word, space)
}

func (l *Lexer) keywordToken(start int, word []byte, space bool) Token {
	switch string(word) {
	case "def":
		l.state = stFName
	case "alias", "undef":
		l.state = stFName
	case "end", "self", "nil", "true", "false", "retry", "redo":
		l.state = stEnd
	case "super", "defined?":
		l.state = stArg
	default:
		l.state = stBeg
	}
	return l.tok(Keyword, start, word, space)
}

func (l *Lexer) scanIVar(space bool) Token {
	start := l.pos
	l.pos++
	typ := IVar
	if l.byteAt(l.pos) == '@' {
		typ = CVar
		l.pos++
	}
	if !isIdentStart(l.byteAt(l.pos)) {
		l.errorf(start, l.pos, "incomplete instance variable name")
		l.state = stEnd
		return l.tok(Illegal, start, l.src[start:l.pos], space)
	}
	for l.pos < len(l.src) && isIdentChar(l.src[l.pos]) {
		l.pos++
	}
	l.state = stEnd
	return l.tok(typ, start, l.src[start:l.pos], space)
}

func (l *Lexer) scanGVar(space bool) Token {
	start := l.pos
	l.pos++
	c := l.byteAt(l.pos)
	switch {
	case isDigit(c):
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
		l.state = stEnd
		return l.tok(NthRef, start, l.src[start+1:l.pos], space)
	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentChar(l.src[l.pos]) {
			l.pos++
		}
		l.state = stEnd
		return l.tok(GVar, start, l.src[start:l.pos], space)
	case bytes.IndexByte([]byte("!@&`'+~=/\\,;.<>_*$?:\""), c) >= 0:
		l.pos++
		l.state = stEnd
		return l.tok(BackRef, start, l.src[start:l.pos], space)
	default:
		l.errorf(start, l.pos, "incomplete global variable name")
		l.state = stEnd
		return l.tok(Illegal, start, l.src[start:l.pos], space)
	}
}

func (l *Lexer) scanColon(space bool) Token {
	start := l.pos
	if l.byteAt(l.pos+1) == ':' {
		l.pos += 2
		if l.state == stEnd || l.state == stArg {
			l.state = stDot
		} else {
			l.state = stBeg
		}
		return l.tok(ColonColon, start, nil, space)
	}
	next := l.byteAt(l.pos + 1)
	switch {
	case next == '"':
		l.pos += 2
		l.push(&literal{kind: litSymbol, close: '"', interp: true, begin: start})
		return l.tok(SymbolBegin, start, nil, space)
	case next == '\'':
		l.pos += 2
		l.push(&literal{kind: litSymbol, close: '\'', begin: start})
		return l.tok(SymbolBegin, start, nil, space)
	case isIdentStart(next) || next == '@' || next == '$':
		l.pos++
		nstart := l.pos
		if next == '@' || next == '$' {
			l.pos++
			if l.byteAt(l.pos) == '@' {
				l.pos++
			}
		}
		for l.pos < len(l.src) && isIdentChar(l.src[l.pos]) {
			l.pos++
		}
		if c := l.byteAt(l.pos); (c == '?' || c == '!' || c == '=') && l.byteAt(l.pos+1) != '=' {
			l.pos++
		}
		l.state = stEnd
		return l.tok(Symbol, start, l.src[nstart:l.pos], space)
	default:
		if op, n := matchOpName(l.src[l.pos+1:]); n > 0 {
			l.pos += 1 + n
			l.state = stEnd
			return l.tok(Symbol, start, op, space)
		}
		l.pos++
		l.state = stBeg
		return l.tok(Colon, start, nil, space)
	}
}

// opNames are the operator method names, longest first so maximal munch
// picks []= over [.
var opNames = []string{
	"[]=", "[]", "<=>", "===", "==", "=~", "<<", ">>", "<=", ">=",
	"**", "+@", "-@", "!=", "!~", "+", "-", "*", "/", "%", "<", ">",
	"!", "~", "^", "&", "|",
}

func matchOpName(s []byte) ([]byte, int) {
	for _, op := range opNames {
		if bytes.HasPrefix(s, []byte(op)) {
			return []byte(op), len(op)
		}
	}
	return nil, 0
}

func (l *Lexer) scanOpMethodName(space bool) (Token, bool) {
	start := l.pos
	op, n := matchOpName(l.src[l.pos:])
	if n == 0 {
		return Token{}, false
	}
	l.pos += n
	l.state = stArg
	return l.tok(Ident, start, op, space), true
}

var percentPairs = map[byte]byte{'(': ')', '[': ']', '{': '}', '<': '>'}

func (l *Lexer) scanPercent(space bool) (Token, bool) {
	start := l.pos
	c := l.byteAt(l.pos + 1)
	kind, interp, skip := litString, true, 1
	switch {
	case c == 0:
		return Token{}, false
	case isIdentChar(c):
		skip = 2
		switch c {
		case 'q':
			interp = false
		case 'Q':
		case 'w':
			kind, interp = litWords, false
		case 'W':
			kind = litWords
		case 'i':
			kind, interp = litSymWords, false
		case 'I':
			kind = litSymWords
		case 'r':
			kind = litRegexp
		case 's':
			kind, interp = litSymbol, false
		case 'x':
			kind = litXString
		default:
			return Token{}, false
		}
	case isSpace(c) || c == '=' || c == '\n':
		// %= or % used as modulo.
		return Token{}, false
	}
	delim := l.byteAt(l.pos + skip)
	if delim == 0 || isIdentChar(delim) || isSpace(delim) || delim == '\n' {
		return Token{}, false
	}
	lit := &literal{kind: kind, close: delim, interp: interp, begin: start}
	if close, ok := percentPairs[delim]; ok {
		lit.open = delim
		lit.close = close
	}
	l.pos += skip + 1
	var typ Type
	switch kind {
	case litWords:
		typ = WordsBegin
	case litSymWords:
		typ = SymWordsBegin
	case litRegexp:
		typ = RegexpBegin
	case litSymbol:
		typ = SymbolBegin
	case litXString:
		typ = XStringBegin
	default:
		typ = StringBegin
	}
	l.push(lit)
	return l.tok(typ, start, l.src[start:l.pos], space), true
}

func (l *Lexer) scanHeredocBegin(space bool) (Token, bool) {
	if l.byteAt(l.pos+1) != '<' {
		return Token{}, false
	}
	if l.state == stEnd || (l.state == stArg && !space) {
		return Token{}, false
	}
	start := l.pos
	i := l.pos + 2
	lit := &literal{kind: litHeredoc, interp: true, begin: start}
	switch l.byteAt(i) {
	case '~':
		lit.squiggly, lit.indentOK = true, true
		i++
	case '-':
		lit.indentOK = true
		i++
	}
	var term []byte
	switch c := l.byteAt(i); {
	case c == '"' || c == '\'' || c == '`':
		quote := c
		i++
		tstart := i
		for i < len(l.src) && l.src[i] != quote && l.src[i] != '\n' {
			i++
		}
		if l.byteAt(i) != quote {
			return Token{}, false
		}
		term = l.src[tstart:i]
		i++
		if quote == '\'' {
			lit.interp = false
		}
	case isIdentStart(c):
		tstart := i
		for i < len(l.src) && isIdentChar(l.src[i]) {
			i++
		}
		term = l.src[tstart:i]
	default:
		return Token{}, false
	}
	lit.term = term
	l.pos = i
	t := l.tok(HeredocBegin, start, term, space)
	// The body begins after the current logical line (or after any
	// heredoc body already consumed for it); the rest of the line
	// continues once the terminator is reached.
	lit.resume = l.pos
	body := l.skip
	if body <= l.pos {
		body = l.pos
		for body < len(l.src) && l.src[body] != '\n' {
			body++
		}
		if body < len(l.src) {
			body++
		}
	}
	l.pos = body
	l.push(lit)
	return t, true
}

func (l *Lexer) scanCharLit(space bool) (Token, bool) {
	if l.state == stEnd {
		return Token{}, false
	}
	start := l.pos
	c := l.byteAt(l.pos + 1)
	if c == 0 || isSpace(c) || c == '\n' {
		return Token{}, false
	}
	if c == '\\' {
		l.pos += 2
		if l.pos < len(l.src) {
			l.pos++
		}
		l.state = stEnd
		return l.tok(CharLit, start, l.src[start+1:l.pos], space), true
	}
	// ?a is a character literal only when the character cannot continue
	// as an identifier (?x in "a ?x : y" is ternary when x is longer).
	if isIdentChar(c) && isIdentChar(l.byteAt(l.pos+2)) {
		return Token{}, false
	}
	l.pos += 2
	l.state = stEnd
	return l.tok(CharLit, start, l.src[start+1:l.pos], space), true
}

// opAssigns are the operators that combine with = into an op-assign.
var opAssigns = []string{"**", "<<", ">>", "&&", "||", "+", "-", "*", "/", "%", "&", "|", "^"}

func (l *Lexer) scanOperator(space bool) Token {
	start := l.pos
	if l.state == stEnd || l.state == stArg {
		for _, op := range opAssigns {
			if bytes.HasPrefix(l.src[l.pos:], []byte(op)) && l.byteAt(l.pos+len(op)) == '=' &&
				l.byteAt(l.pos+len(op)+1) != '=' && l.byteAt(l.pos+len(op)+1) != '~' {
				l.pos += len(op) + 1
				l.state = stBeg
				return l.tok(OpAssignTok, start, l.src[start:l.pos], space)
			}
		}
	}
	two := string(l.src[l.pos:min(l.pos+2, len(l.src))])
	three := string(l.src[l.pos:min(l.pos+3, len(l.src))])
	emit := func(typ Type, n int, st state) Token {
		l.pos += n
		l.state = st
		return l.tok(typ, start, nil, space)
	}
	switch three {
	case "...":
		return emit(DotDotDot, 3, stBeg)
	case "<=>":
		return emit(Cmp, 3, stBeg)
	case "===":
		return emit(EqEqEq, 3, stBeg)
	}
	switch two {
	case "**":
		return emit(StarStar, 2, stBeg)
	case "==":
		return emit(EqEq, 2, stBeg)
	case "=~":
		return emit(Match, 2, stBeg)
	case "=>":
		return emit(FatArrow, 2, stBeg)
	case "!=":
		return emit(NotEq, 2, stBeg)
	case "!~":
		return emit(NMatch, 2, stBeg)
	case ">=":
		return emit(GtEq, 2, stBeg)
	case "<=":
		return emit(LtEq, 2, stBeg)
	case "<<":
		return emit(LShift, 2, stBeg)
	case ">>":
		return emit(RShift, 2, stBeg)
	case "&&":
		return emit(AmpAmp, 2, stBeg)
	case "||":
		return emit(PipePipe, 2, stBeg)
	case "&.":
		return emit(SafeNav, 2, stDot)
	case "->":
		return emit(Arrow, 2, stBeg)
	case "..":
		return emit(DotDot, 2, stBeg)
	}
	switch l.src[l.pos] {
	case '+':
		return emit(Plus, 1, stBeg)
	case '-':
		return emit(Minus, 1, stBeg)
	case '*':
		return emit(Star, 1, stBeg)
	case '/':
		return emit(Slash, 1, stBeg)
	case '%':
		return emit(PercentOp, 1, stBeg)
	case '^':
		return emit(Caret, 1, stBeg)
	case '&':
		return emit(Amp, 1, stBeg)
	case '|':
		return emit(Pipe, 1, stBeg)
	case '~':
		return emit(Tilde, 1, stBeg)
	case '!':
		return emit(Bang, 1, stBeg)
	case '=':
		return emit(Assign, 1, stBeg)
	case '<':
		return emit(Lt, 1, stBeg)
	case '>':
		return emit(Gt, 1, stBeg)
	case '.':
		return emit(Dot, 1, stDot)
	case ',':
		return emit(Comma, 1, stBeg)
	case ';':
		return emit(Semicolon, 1, stBeg)
	case '(':
		l.parens++
		return emit(LParen, 1, stBeg)
	case ')':
		if l.parens > 0 {
			l.parens--
		}
		return emit(RParen, 1, stEnd)
	case '[':
		l.parens++
		return emit(LBracket, 1, stBeg)
	case ']':
		if l.parens > 0 {
			l.parens--
		}
		return emit(RBracket, 1, stEnd)
	case '{':
		if top := l.top(); top != nil && top.lit == nil {
			top.braces++
		}
		return emit(LBrace, 1, stBeg)
	case '}':
		if top := l.top(); top != nil && top.lit == nil {
			if top.braces == 0 {
				l.pop()
				return emit(InterpEnd, 1, stEnd)
			}
			top.braces--
		}
		return emit(RBrace, 1, stEnd)
	}
	// An unrecognized byte: report it and move on so parsing can recover.
	l.pos++
	l.errorf(start, l.pos, "unexpected byte 0x%02x", l.src[start])
	return l.tok(Illegal, start, l.src[start:l.pos], space)
}

// scanDelimited lexes the next piece of the delimited literal on top of
// the stack, returning at most one token per call.
func (l *Lexer) scanDelimited(lit *literal) Token {
	start := l.pos
	words := lit.kind == litWords || lit.kind == litSymWords
	if words {
		for l.pos < len(l.src) && (isSpace(l.src[l.pos]) || l.src[l.pos] == '\n') {
			l.pos++
		}
		start = l.pos
	}
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\\' && l.pos+1 < len(l.src):
			l.pos += 2
			continue
		case lit.open != 0 && c == lit.open:
			lit.nest++
		case c == lit.close:
			if lit.nest > 0 {
				lit.nest--
				break
			}
			if l.pos > start {
				return l.tok(StringContent, start, l.src[start:l.pos], false)
			}
			l.pos++
			l.pop()
			l.state = stEnd
			if lit.kind == litRegexp {
				fstart := l.pos
				for l.pos < len(l.src) && isRegexpFlag(l.src[l.pos]) {
					l.pos++
				}
				return l.tok(RegexpEnd, start, l.src[fstart:l.pos], false)
			}
			return l.tok(StringEnd, start, nil, false)
		case lit.interp && c == '#' && l.byteAt(l.pos+1) == '{':
			if l.pos > start {
				return l.tok(StringContent, start, l.src[start:l.pos], false)
			}
			l.pos += 2
			l.stack = append(l.stack, frame{})
			l.state = stBeg
			return l.tok(InterpBegin, start, nil, false)
		case words && (isSpace(c) || c == '\n'):
			return l.tok(StringContent, start, l.src[start:l.pos], false)
		}
		l.pos++
	}
	if l.pos > start {
		return l.tok(StringContent, start, l.src[start:l.pos], false)
	}
	l.errorf(lit.begin, l.pos, "unterminated %s; expected a closing delimiter %q", litName(lit.kind), lit.close)
	l.pop()
	l.state = stEnd
	return l.tok(StringEnd, l.pos, nil, false)
}

func isRegexpFlag(c byte) bool {
	switch c {
	case 'i', 'm', 'x', 'o', 'u', 'e', 's', 'n':
		return true
	}
	return false
}

func litName(k litKind) string {
	switch k {
	case litRegexp:
		return "regular expression"
	case litWords, litSymWords:
		return "list"
	case litSymbol:
		return "symbol"
	case litXString:
		return "command string"
	}
	return "string"
}

// scanHeredoc lexes the next piece of the active heredoc body.  Bodies
// run line by line: each call either consumes the terminator line or
// returns the content up to the next interpolation or terminator.
func (l *Lexer) scanHeredoc(lit *literal) Token {
	start := l.pos
	for l.pos < len(l.src) {
		if l.atLineStart() {
			if end, indent, ok := l.heredocTerminator(lit); ok {
				if l.pos > start {
					return l.tok(StringContent, start, l.src[start:l.pos], false)
				}
				tstart := l.pos
				l.pop()
				l.skip = max(l.skip, end)
				l.pos = lit.resume
				l.state = stEnd
				t := Token{Type: HeredocEnd, Value: lit.term, Loc: ast.NewLoc(tstart, end), Aux: lit.dedent}
				return t
			} else if lit.squiggly {
				l.trackDedent(lit, indent)
			}
		}
		c := l.src[l.pos]
		if lit.interp && c == '#' && l.byteAt(l.pos+1) == '{' {
			if l.pos > start {
				return l.tok(StringContent, start, l.src[start:l.pos], false)
			}
			l.pos += 2
			l.stack = append(l.stack, frame{})
			l.state = stBeg
			return l.tok(InterpBegin, start, nil, false)
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			l.pos++
		}
		l.pos++
	}
	if l.pos > start {
		return l.tok(StringContent, start, l.src[start:l.pos], false)
	}
	l.errorf(lit.begin, l.pos, "unterminated heredoc; expected a terminator %q", lit.term)
	l.pop()
	l.skip = max(l.skip, l.pos)
	l.pos = lit.resume
	l.state = stEnd
	return l.tok(HeredocEnd, l.pos, lit.term, false)
}

// heredocTerminator reports whether the line starting at l.pos is the
// terminator for lit, returning the offset just past it.  It also
// returns the line's indentation width for dedent tracking.
func (l *Lexer) heredocTerminator(lit *literal) (end, indent int, ok bool) {
	i := l.pos
	for i < len(l.src) && isSpace(l.src[i]) {
		i++
	}
	indent = i - l.pos
	if indent > 0 && !lit.indentOK {
		return 0, indent, false
	}
	if !bytes.HasPrefix(l.src[i:], lit.term) {
		return 0, indent, false
	}
	i += len(lit.term)
	for i < len(l.src) && (l.src[i] == ' ' || l.src[i] == '\t' || l.src[i] == '\r') {
		i++
	}
	if i < len(l.src) && l.src[i] != '\n' {
		return 0, indent, false
	}
	if i < len(l.src) {
		i++
	}
	return i, indent, true
}

// trackDedent records the minimum indentation of non-blank body lines
// for squiggly heredocs.
func (l *Lexer) trackDedent(lit *literal, _ int) {
	i := l.pos
	n := 0
	for i < len(l.src) && (l.src[i] == ' ' || l.src[i] == '\t') {
		n++
		i++
	}
	if i >= len(l.src) || l.src[i] == '\n' {
		return // blank lines don't participate
	}
	if !lit.anyLine || n < lit.dedent {
		lit.dedent = n
		lit.anyLine = true
	}
}
