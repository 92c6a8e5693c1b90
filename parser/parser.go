// Package parser builds Ruby syntax trees from tokens.  It is a
// recursive-descent parser with an operator-precedence core for
// expressions.  Parsing never aborts: syntax errors are recorded as
// diagnostics, a placeholder node stands in for the construct the
// grammar expected, and scanning resynchronizes at the next statement
// boundary, so every parse returns a complete, navigable tree.
package parser

import (
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"
	"github.com/rbx-lang/rubix/ast"
	"github.com/rbx-lang/rubix/diag"
	"github.com/rbx-lang/rubix/lexer"
	"github.com/rbx-lang/rubix/source"
)

type CommentKind int

const (
	LineComment CommentKind = iota
	EmbDocComment
)

type Comment struct {
	Kind CommentKind `json:"kind"`
	Loc  ast.Loc     `json:"loc"`
}

// Result is everything one parse produces.  The tree is complete even
// when Errors is non-empty; callers decide whether a tree containing
// Missing placeholders is usable.
type Result struct {
	Root     *ast.Program      `json:"root"`
	Comments []Comment         `json:"comments"`
	Errors   []diag.Diagnostic `json:"errors"`
	Warnings []diag.Diagnostic `json:"warnings"`
}

func (r *Result) Success() bool { return len(r.Errors) == 0 }

// Parse is a pure function of the buffer's bytes; independent parses
// share no state and may run in parallel.
func Parse(buf *source.Buffer) *Result {
	p := &parser{lex: lexer.New(buf), buf: buf}
	p.pushScope(true)
	p.advance()
	root := p.parseProgram()
	errs := append(p.lex.Diagnostics(), p.errors...)
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Loc.Start < errs[j].Loc.Start })
	return &Result{
		Root:     root,
		Comments: p.comments,
		Errors:   errs,
		Warnings: p.warnings,
	}
}

// ParseBytes wraps Parse for callers that don't hold a Buffer.
func ParseBytes(name string, src []byte) (*source.Buffer, *Result) {
	buf := source.NewBuffer(name, src)
	return buf, Parse(buf)
}

type scope struct {
	names    map[string]bool
	boundary bool // method/class bodies don't see enclosing locals
}

type parser struct {
	lex      *lexer.Lexer
	buf      *source.Buffer
	tok      lexer.Token
	peeked   *lexer.Token
	comments []Comment
	errors   []diag.Diagnostic
	warnings []diag.Diagnostic
	scopes   []scope
	// noDo suppresses do-block attachment while parsing the condition
	// of while/until/for, whose grammar claims the do keyword.
	noDo  bool
	depth int
}

// maxDepth bounds expression nesting so hostile input degrades into a
// diagnostic instead of exhausting the stack.
const maxDepth = 2000

// advance moves to the next meaningful token, collecting comments and
// skipping tokens the lexer already reported as illegal.
func (p *parser) advance() {
	for {
		if p.peeked != nil {
			p.tok = *p.peeked
			p.peeked = nil
		} else {
			p.tok = p.lex.Next()
		}
		switch p.tok.Type {
		case lexer.Comment:
			p.comments = append(p.comments, Comment{Kind: LineComment, Loc: p.tok.Loc})
		case lexer.EmbDoc:
			p.comments = append(p.comments, Comment{Kind: EmbDocComment, Loc: p.tok.Loc})
		case lexer.Illegal:
		default:
			return
		}
	}
}

// peek returns the token after the current one without consuming it.
func (p *parser) peek() lexer.Token {
	if p.peeked == nil {
		for {
			t := p.lex.Next()
			switch t.Type {
			case lexer.Comment:
				p.comments = append(p.comments, Comment{Kind: LineComment, Loc: t.Loc})
			case lexer.EmbDoc:
				p.comments = append(p.comments, Comment{Kind: EmbDocComment, Loc: t.Loc})
			case lexer.Illegal:
			default:
				p.peeked = &t
				return t
			}
		}
	}
	return *p.peeked
}

func (p *parser) errorf(loc ast.Loc, format string, args ...any) {
	p.errors = append(p.errors, diag.Diagnostic{
		Severity: diag.Error,
		Message:  fmt.Sprintf(format, args...),
		Loc:      loc,
	})
}

func (p *parser) warnf(loc ast.Loc, format string, args ...any) {
	p.warnings = append(p.warnings, diag.Diagnostic{
		Severity: diag.Warning,
		Message:  fmt.Sprintf(format, args...),
		Loc:      loc,
	})
}

// missing records an error at the current token and returns a
// placeholder node of zero length at that position.
func (p *parser) missing(what string) *ast.Missing {
	msg := fmt.Sprintf("expected %s, found %s", what, p.describeTok())
	if s := p.suggestKeyword(); s != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", s)
	}
	p.errorf(p.tok.Loc, "%s", msg)
	here := ast.Loc{Start: p.tok.Loc.Start}
	return &ast.Missing{Kind: "Missing", Loc: here}
}

func (p *parser) describeTok() string {
	switch p.tok.Type {
	case lexer.EOF:
		return "end of input"
	case lexer.Newline:
		return "end of line"
	case lexer.Keyword:
		return fmt.Sprintf("keyword %q", p.tok.Value)
	case lexer.Ident, lexer.Const:
		return fmt.Sprintf("%q", p.tok.Value)
	}
	return fmt.Sprintf("%q", p.tok.Type.String())
}

// suggestKeyword proposes a close keyword for a stray identifier, e.g.
// "ens" for "end".
func (p *parser) suggestKeyword() string {
	if p.tok.Type != lexer.Ident || len(p.tok.Value) < 2 {
		return ""
	}
	word := string(p.tok.Value)
	best, dist := "", 2
	for _, kw := range lexer.Keywords() {
		if d := levenshtein.ComputeDistance(word, kw); d < dist || (d == dist && best == "") {
			best, dist = kw, d
		}
	}
	return best
}

// syncStatement skips ahead to the next statement boundary: a newline,
// semicolon, closing token, or a keyword that opens a clause of an
// enclosing construct.  Boundary tokens are left for the caller.
func (p *parser) syncStatement() {
	for {
		switch p.tok.Type {
		case lexer.EOF, lexer.Newline, lexer.Semicolon,
			lexer.RParen, lexer.RBracket, lexer.RBrace, lexer.InterpEnd:
			return
		case lexer.Keyword:
			switch string(p.tok.Value) {
			case "end", "else", "elsif", "when", "in", "rescue", "ensure", "then", "do":
				return
			}
		}
		p.advance()
	}
}

func (p *parser) expect(typ lexer.Type, what string) bool {
	if p.tok.Type == typ {
		p.advance()
		return true
	}
	p.errorf(p.tok.Loc, "expected %s, found %s", what, p.describeTok())
	return false
}

// expectEnd consumes the end keyword closing a construct opened at loc.
func (p *parser) expectEnd(loc ast.Loc, what string) ast.Loc {
	if p.tok.IsKeyword("end") {
		end := p.tok.Loc
		p.advance()
		return end
	}
	p.errorf(p.tok.Loc, "expected an `end` to close the %s, found %s", what, p.describeTok())
	return p.tok.Loc
}

// Scopes.

func (p *parser) pushScope(boundary bool) {
	p.scopes = append(p.scopes, scope{names: map[string]bool{}, boundary: boundary})
}

func (p *parser) popScope() { p.scopes = p.scopes[:len(p.scopes)-1] }

func (p *parser) declare(name string) {
	p.scopes[len(p.scopes)-1].names[name] = true
}

// isLocal walks enclosing scopes to the nearest method boundary, which
// is what decides whether a bare identifier reads a local variable.
func (p *parser) isLocal(name string) bool {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if p.scopes[i].names[name] {
			return true
		}
		if p.scopes[i].boundary {
			return false
		}
	}
	return false
}

// Statements.

func (p *parser) parseProgram() *ast.Program {
	stmts := p.parseStatements(func(t lexer.Token) bool { return t.Type == lexer.EOF })
	if p.tok.Type != lexer.EOF {
		// A stray closer or clause keyword at top level.
		p.errorf(p.tok.Loc, "unexpected %s at top level", p.describeTok())
	}
	loc := ast.NewLoc(0, p.buf.Len())
	return &ast.Program{Kind: "Program", Statements: stmts, Loc: loc}
}

// parseStatements parses a statement sequence until stop matches or the
// input ends.  It owns statement-boundary recovery.
func (p *parser) parseStatements(stop func(lexer.Token) bool) *ast.Statements {
	stmts := &ast.Statements{Kind: "Statements", Loc: ast.Loc{Start: p.tok.Loc.Start}}
	for {
		for p.tok.Type == lexer.Newline || p.tok.Type == lexer.Semicolon {
			p.advance()
		}
		if p.tok.Type == lexer.EOF || stop(p.tok) {
			break
		}
		before := p.tok.Loc.Start
		s := p.parseStatement()
		stmts.Body = append(stmts.Body, s)
		stmts.Loc = stmts.Loc.Span(ast.NewLoc(s.Pos(), s.End()))
		switch p.tok.Type {
		case lexer.Newline, lexer.Semicolon, lexer.EOF:
		default:
			if stop(p.tok) {
				return stmts
			}
			p.errorf(p.tok.Loc, "unexpected %s; expected a statement boundary", p.describeTok())
			p.syncStatement()
			// A stray closer neither sync nor the statement consumed would
			// stall recovery; force progress.
			if p.tok.Loc.Start == before && p.tok.Type != lexer.EOF {
				p.advance()
			}
		}
	}
	return stmts
}

func stopKeywords(kws ...string) func(lexer.Token) bool {
	return func(t lexer.Token) bool {
		if t.Type != lexer.Keyword {
			return false
		}
		for _, kw := range kws {
			if string(t.Value) == kw {
				return true
			}
		}
		return false
	}
}

func stopType(typ lexer.Type) func(lexer.Token) bool {
	return func(t lexer.Token) bool { return t.Type == typ }
}

// parseStatement parses one expression statement along with its
// modifier keywords (if/unless/while/until/rescue) and the statement
// forms of pattern matching (in, =>) and multiple assignment.
func (p *parser) parseStatement() ast.Node {
	node := p.parseExpression(precLowest)
	// Multiple assignment: the comma after an assignable expression
	// turns it into a target list.
	if p.tok.Type == lexer.Comma && assignable(node) {
		node = p.parseMultiWrite(node)
	}
	for {
		switch {
		case p.tok.IsKeyword("if"):
			p.advance()
			cond := p.parseExpression(precLowest)
			node = &ast.IfExpr{Kind: "IfExpr", Cond: cond, Then: stmts1(node),
				Loc: ast.NewLoc(node.Pos(), cond.End())}
		case p.tok.IsKeyword("unless"):
			p.advance()
			cond := p.parseExpression(precLowest)
			node = &ast.UnlessExpr{Kind: "UnlessExpr", Cond: cond, Then: stmts1(node),
				Loc: ast.NewLoc(node.Pos(), cond.End())}
		case p.tok.IsKeyword("while"):
			p.advance()
			cond := p.parseExpression(precLowest)
			_, isBegin := node.(*ast.BeginExpr)
			node = &ast.WhileExpr{Kind: "WhileExpr", Cond: cond, Body: stmts1(node),
				DoWhile: isBegin, Loc: ast.NewLoc(node.Pos(), cond.End())}
		case p.tok.IsKeyword("until"):
			p.advance()
			cond := p.parseExpression(precLowest)
			_, isBegin := node.(*ast.BeginExpr)
			node = &ast.UntilExpr{Kind: "UntilExpr", Cond: cond, Body: stmts1(node),
				DoWhile: isBegin, Loc: ast.NewLoc(node.Pos(), cond.End())}
		case p.tok.IsKeyword("in"):
			p.advance()
			pat := p.parsePattern()
			node = &ast.MatchPredicate{Kind: "MatchPredicate", Value: node, Pattern: pat,
				Loc: ast.NewLoc(node.Pos(), pat.End())}
		case p.tok.Type == lexer.FatArrow:
			p.advance()
			pat := p.parsePattern()
			node = &ast.MatchRequired{Kind: "MatchRequired", Value: node, Pattern: pat,
				Loc: ast.NewLoc(node.Pos(), pat.End())}
		default:
			return node
		}
	}
}

// parseMultiWrite continues a, b, *c = value from the first target.
func (p *parser) parseMultiWrite(first ast.Node) ast.Node {
	targets := []ast.Node{p.toTarget(first)}
	for p.tok.Type == lexer.Comma {
		p.advance()
		if p.tok.Type == lexer.Star {
			star := p.tok.Loc
			p.advance()
			var inner ast.Node
			if tokenStartsExpr(p.tok) {
				inner = p.toTarget(p.parseExpression(precRange))
			}
			end := star.End()
			if inner != nil {
				end = inner.End()
			}
			targets = append(targets, &ast.SplatArg{Kind: "SplatArg", Value: inner,
				Loc: ast.NewLoc(star.Start, end)})
			continue
		}
		targets = append(targets, p.toTarget(p.parseExpression(precRange)))
	}
	if p.tok.Type != lexer.Assign {
		p.errorf(p.tok.Loc, "expected = after the assignment targets, found %s", p.describeTok())
		return &ast.MultiWrite{Kind: "MultiWrite", Targets: targets, Value: p.missing("a value"),
			Loc: ast.NewLoc(first.Pos(), p.tok.Loc.Start)}
	}
	p.advance()
	value := p.parseExpression(precAssign)
	if p.tok.Type == lexer.Comma {
		// Multiple values collect into an array.
		elems := []ast.Node{value}
		for p.tok.Type == lexer.Comma {
			p.advance()
			elems = append(elems, p.parseExpression(precAssign))
		}
		value = &ast.ArrayLit{Kind: "ArrayLit", Elements: elems,
			Loc: ast.NewLoc(elems[0].Pos(), elems[len(elems)-1].End())}
	}
	return &ast.MultiWrite{Kind: "MultiWrite", Targets: targets, Value: value,
		Loc: ast.NewLoc(first.Pos(), value.End())}
}

// toTarget converts an expression into an assignment-target shape,
// declaring locals as needed.  The write forms carry a nil Value when
// used as bare targets.
func (p *parser) toTarget(n ast.Node) ast.Node {
	switch t := n.(type) {
	case *ast.Call:
		if t.Recv == nil && len(t.Args) == 0 && t.Block == nil {
			p.declare(t.Name)
			return &ast.LocalWrite{Kind: "LocalWrite", Name: t.Name, Loc: t.Loc}
		}
		if t.Recv != nil && len(t.Args) == 0 && t.Block == nil {
			return &ast.AttrWrite{Kind: "AttrWrite", Recv: t.Recv, Name: t.Name,
				SafeNav: t.SafeNav, Loc: t.Loc}
		}
	case *ast.LocalRead:
		p.declare(t.Name)
		return &ast.LocalWrite{Kind: "LocalWrite", Name: t.Name, Loc: t.Loc}
	case *ast.IVarRead:
		return &ast.IVarWrite{Kind: "IVarWrite", Name: t.Name, Loc: t.Loc}
	case *ast.CVarRead:
		return &ast.CVarWrite{Kind: "CVarWrite", Name: t.Name, Loc: t.Loc}
	case *ast.GVarRead:
		return &ast.GVarWrite{Kind: "GVarWrite", Name: t.Name, Loc: t.Loc}
	case *ast.ConstRead:
		return &ast.ConstWrite{Kind: "ConstWrite", Name: t.Name, Loc: t.Loc}
	case *ast.ConstPath:
		return &ast.ConstPathWrite{Kind: "ConstPathWrite", Path: t, Loc: t.Loc}
	case *ast.IndexRead:
		return &ast.IndexWrite{Kind: "IndexWrite", Recv: t.Recv, Args: t.Args, Loc: t.Loc}
	case *ast.SplatArg, *ast.LocalWrite, *ast.IVarWrite, *ast.CVarWrite,
		*ast.GVarWrite, *ast.ConstWrite, *ast.ConstPathWrite,
		*ast.IndexWrite, *ast.AttrWrite:
		return n
	}
	p.errorf(ast.NewLoc(n.Pos(), n.End()), "cannot assign to this expression")
	return n
}

// assignable reports whether an expression can appear as an assignment
// target, which decides read-versus-write node shapes.
func assignable(n ast.Node) bool {
	switch t := n.(type) {
	case *ast.LocalRead, *ast.IVarRead, *ast.CVarRead, *ast.GVarRead,
		*ast.ConstRead, *ast.ConstPath, *ast.IndexRead:
		return true
	case *ast.Call:
		return len(t.Args) == 0 && t.Block == nil
	}
	return false
}

func stmts1(n ast.Node) *ast.Statements {
	return &ast.Statements{Kind: "Statements", Body: []ast.Node{n},
		Loc: ast.NewLoc(n.Pos(), n.End())}
}
