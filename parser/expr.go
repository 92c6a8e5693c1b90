package parser

import (
	"strconv"
	"strings"

	"github.com/rbx-lang/rubix/ast"
	"github.com/rbx-lang/rubix/lexer"
)

// parseExpression is the operator-precedence core.  min is the loosest
// binding power an infix operator may have to be consumed here.
func (p *parser) parseExpression(min int) ast.Node {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		p.errorf(p.tok.Loc, "expression nests too deeply")
		m := &ast.Missing{Kind: "Missing", Loc: ast.Loc{Start: p.tok.Loc.Start}}
		p.advance()
		return m
	}
	left := p.parseUnary()
	for {
		info, ok := infixInfo(p.tok)
		if !ok || info.prec < min {
			return left
		}
		left = p.parseInfix(left, info)
	}
}

func (p *parser) parseInfix(left ast.Node, info opInfo) ast.Node {
	op := p.tok
	nextMin := info.prec + 1
	if info.right {
		nextMin = info.prec
	}
	switch op.Type {
	case lexer.Assign:
		target := p.toTarget(left)
		p.advance()
		return p.finishAssign(target, p.parseExpression(nextMin))
	case lexer.OpAssignTok:
		target := p.toTarget(left)
		opText := strings.TrimSuffix(string(op.Value), "=")
		p.advance()
		value := p.parseExpression(nextMin)
		return &ast.OpAssign{Kind: "OpAssign", Target: target, Op: opText, Value: value,
			Loc: ast.NewLoc(left.Pos(), value.End())}
	case lexer.Question:
		p.advance()
		then := p.parseExpression(precTernary)
		p.expect(lexer.Colon, "the : of a ternary expression")
		els := p.parseExpression(precTernary)
		return &ast.IfExpr{Kind: "IfExpr", Cond: left, Then: stmts1(then), Else: stmts1(els),
			Loc: ast.NewLoc(left.Pos(), els.End())}
	case lexer.DotDot, lexer.DotDotDot:
		p.advance()
		var right ast.Node
		end := op.Loc.End()
		if tokenStartsExpr(p.tok) {
			right = p.parseExpression(nextMin)
			end = right.End()
		}
		return &ast.RangeLit{Kind: "RangeLit", Left: left, Right: right,
			Exclusive: op.Type == lexer.DotDotDot, Loc: ast.NewLoc(left.Pos(), end)}
	case lexer.AmpAmp:
		p.advance()
		rhs := p.parseExpression(nextMin)
		return &ast.AndExpr{Kind: "AndExpr", Op: "&&", LHS: left, RHS: rhs,
			Loc: ast.NewLoc(left.Pos(), rhs.End())}
	case lexer.PipePipe:
		p.advance()
		rhs := p.parseExpression(nextMin)
		return &ast.OrExpr{Kind: "OrExpr", Op: "||", LHS: left, RHS: rhs,
			Loc: ast.NewLoc(left.Pos(), rhs.End())}
	case lexer.Keyword:
		switch string(op.Value) {
		case "and":
			p.advance()
			rhs := p.parseExpression(nextMin)
			return &ast.AndExpr{Kind: "AndExpr", Op: "and", LHS: left, RHS: rhs,
				Loc: ast.NewLoc(left.Pos(), rhs.End())}
		case "or":
			p.advance()
			rhs := p.parseExpression(nextMin)
			return &ast.OrExpr{Kind: "OrExpr", Op: "or", LHS: left, RHS: rhs,
				Loc: ast.NewLoc(left.Pos(), rhs.End())}
		case "rescue":
			p.advance()
			rhs := p.parseExpression(nextMin)
			return &ast.RescueModifier{Kind: "RescueModifier", Value: left, Rescue: rhs,
				Loc: ast.NewLoc(left.Pos(), rhs.End())}
		}
	}
	p.advance()
	rhs := p.parseExpression(nextMin)
	return &ast.BinaryExpr{Kind: "BinaryExpr", Op: op.Type.String(), LHS: left, RHS: rhs,
		Loc: ast.NewLoc(left.Pos(), rhs.End())}
}

// finishAssign attaches the assigned value to a target produced by
// toTarget.
func (p *parser) finishAssign(target, value ast.Node) ast.Node {
	loc := ast.NewLoc(target.Pos(), value.End())
	switch t := target.(type) {
	case *ast.LocalWrite:
		t.Value, t.Loc = value, loc
		return t
	case *ast.IVarWrite:
		t.Value, t.Loc = value, loc
		return t
	case *ast.CVarWrite:
		t.Value, t.Loc = value, loc
		return t
	case *ast.GVarWrite:
		t.Value, t.Loc = value, loc
		return t
	case *ast.ConstWrite:
		t.Value, t.Loc = value, loc
		return t
	case *ast.ConstPathWrite:
		t.Value, t.Loc = value, loc
		return t
	case *ast.IndexWrite:
		t.Value, t.Loc = value, loc
		return t
	case *ast.AttrWrite:
		t.Value, t.Loc = value, loc
		return t
	}
	// toTarget already reported the bad target; keep both sides in the
	// tree so later positions stay anchored.
	return &ast.BinaryExpr{Kind: "BinaryExpr", Op: "=", LHS: target, RHS: value, Loc: loc}
}

func (p *parser) parseUnary() ast.Node {
	tok := p.tok
	switch tok.Type {
	case lexer.Bang:
		p.advance()
		operand := p.parseExpression(precUnary)
		return &ast.NotExpr{Kind: "NotExpr", Op: "!", Operand: operand,
			Loc: ast.NewLoc(tok.Loc.Start, operand.End())}
	case lexer.Tilde:
		p.advance()
		operand := p.parseExpression(precUnary)
		return &ast.UnaryExpr{Kind: "UnaryExpr", Op: "~", Operand: operand,
			Loc: ast.NewLoc(tok.Loc.Start, operand.End())}
	case lexer.Plus:
		p.advance()
		operand := p.parseExpression(precUnary)
		return &ast.UnaryExpr{Kind: "UnaryExpr", Op: "+", Operand: operand,
			Loc: ast.NewLoc(tok.Loc.Start, operand.End())}
	case lexer.Minus:
		p.advance()
		// Unary minus binds looser than **, so -2**2 negates the power.
		operand := p.parseExpression(precUnaryMinus)
		if folded := foldNegativeLiteral(tok.Loc, operand); folded != nil {
			return folded
		}
		return &ast.UnaryExpr{Kind: "UnaryExpr", Op: "-", Operand: operand,
			Loc: ast.NewLoc(tok.Loc.Start, operand.End())}
	case lexer.DotDot, lexer.DotDotDot:
		p.advance()
		right := p.parseExpression(precRange + 1)
		return &ast.RangeLit{Kind: "RangeLit", Right: right,
			Exclusive: tok.Type == lexer.DotDotDot,
			Loc:       ast.NewLoc(tok.Loc.Start, right.End())}
	case lexer.Keyword:
		switch string(tok.Value) {
		case "not":
			p.advance()
			operand := p.parseExpression(precKeywordNot)
			return &ast.NotExpr{Kind: "NotExpr", Op: "not", Operand: operand,
				Loc: ast.NewLoc(tok.Loc.Start, operand.End())}
		case "defined?":
			p.advance()
			if p.tok.Type == lexer.LParen {
				p.advance()
				value := p.parseExpression(precLowest)
				end := p.tok.Loc.End()
				p.expect(lexer.RParen, "a closing parenthesis")
				return &ast.DefinedExpr{Kind: "DefinedExpr", Value: value,
					Loc: ast.NewLoc(tok.Loc.Start, end)}
			}
			value := p.parseExpression(precRange)
			return &ast.DefinedExpr{Kind: "DefinedExpr", Value: value,
				Loc: ast.NewLoc(tok.Loc.Start, value.End())}
		}
	}
	return p.parsePostfix(p.parsePrimary())
}

// foldNegativeLiteral widens a numeric literal to include a preceding
// minus sign.  Only a plain literal folds; anything the operand grammar
// combined already owns its sign structure.
func foldNegativeLiteral(minus ast.Loc, operand ast.Node) ast.Node {
	switch lit := operand.(type) {
	case *ast.IntegerLit:
		lit.Loc = ast.NewLoc(minus.Start, lit.End())
		return lit
	case *ast.FloatLit:
		lit.Loc = ast.NewLoc(minus.Start, lit.End())
		return lit
	case *ast.RationalLit:
		lit.Loc = ast.NewLoc(minus.Start, lit.End())
		return lit
	case *ast.ImaginaryLit:
		lit.Loc = ast.NewLoc(minus.Start, lit.End())
		return lit
	}
	return nil
}

// parsePostfix layers call chains, constant paths, and index operations
// onto a primary expression.
func (p *parser) parsePostfix(node ast.Node) ast.Node {
	for {
		switch p.tok.Type {
		case lexer.Dot, lexer.SafeNav:
			safe := p.tok.Type == lexer.SafeNav
			p.advance()
			name, nameLoc := p.methodName()
			call := &ast.Call{Kind: "Call", Recv: node, Name: name, SafeNav: safe,
				Loc: ast.NewLoc(node.Pos(), nameLoc.End())}
			p.finishCall(call)
			node = call
		case lexer.ColonColon:
			p.advance()
			if p.tok.Type == lexer.Const {
				node = &ast.ConstPath{Kind: "ConstPath", Parent: node, Name: string(p.tok.Value),
					Loc: ast.NewLoc(node.Pos(), p.tok.Loc.End())}
				p.advance()
				continue
			}
			name, nameLoc := p.methodName()
			call := &ast.Call{Kind: "Call", Recv: node, Name: name,
				Loc: ast.NewLoc(node.Pos(), nameLoc.End())}
			p.finishCall(call)
			node = call
		case lexer.LBracket:
			// foo [x] with a space is an argument list, not an index.
			if p.tok.SpaceBefore && isParenlessCall(node) {
				return node
			}
			p.advance()
			args := p.parseListArgs(lexer.RBracket)
			end := p.tok.Loc.End()
			p.expect(lexer.RBracket, "a closing bracket")
			node = &ast.IndexRead{Kind: "IndexRead", Recv: node, Args: args,
				Loc: ast.NewLoc(node.Pos(), end)}
		default:
			return node
		}
	}
}

func isParenlessCall(n ast.Node) bool {
	c, ok := n.(*ast.Call)
	return ok && len(c.Args) == 0 && c.Block == nil
}

// methodName consumes the name position after . or ::, where the lexer
// has already widened identifiers to include operators and setters.
func (p *parser) methodName() (string, ast.Loc) {
	switch p.tok.Type {
	case lexer.Ident, lexer.Const, lexer.Keyword:
		name, loc := string(p.tok.Value), p.tok.Loc
		p.advance()
		return name, loc
	}
	p.errorf(p.tok.Loc, "expected a method name, found %s", p.describeTok())
	return "", ast.Loc{Start: p.tok.Loc.Start}
}

// finishCall parses the argument list and block of a call whose name is
// already consumed, extending the call's location.
func (p *parser) finishCall(call *ast.Call) {
	if p.tok.Type == lexer.LParen && !p.tok.SpaceBefore {
		p.advance()
		call.Args = p.parseListArgs(lexer.RParen)
		end := p.tok.Loc.End()
		p.expect(lexer.RParen, "a closing parenthesis")
		call.Loc = ast.NewLoc(call.Pos(), end)
	} else if p.canCommandArg() {
		call.Args = p.parseCommandArgs()
		if n := len(call.Args); n > 0 {
			call.Loc = ast.NewLoc(call.Pos(), call.Args[n-1].End())
		}
	}
	if blk := p.tryBlock(); blk != nil {
		call.Block = blk
		call.Loc = ast.NewLoc(call.Pos(), blk.End())
	}
}

// canCommandArg decides whether the current token starts a parenless
// argument list.  Ambiguous operator prefixes like foo -1 are accepted
// with a warning, matching their conventional reading.
func (p *parser) canCommandArg() bool {
	t := p.tok
	if !t.SpaceBefore || !tokenStartsExpr(t) {
		return false
	}
	switch t.Type {
	case lexer.Plus, lexer.Minus, lexer.Star, lexer.StarStar, lexer.Amp:
		if p.peek().SpaceBefore {
			return false
		}
		p.warnf(t.Loc, "ambiguous %s: interpreted as the start of an argument; wrap the call in parentheses to silence", t.Type.String())
		return true
	case lexer.LBrace:
		return false // a block, not a hash argument
	case lexer.Keyword:
		switch string(t.Value) {
		case "nil", "true", "false", "self", "defined?", "super", "yield", "not":
			return true
		}
		return false
	}
	return true
}

// parseListArgs parses a bracketed argument list up to close, which the
// caller consumes.  Newlines inside the brackets never reach the parser.
func (p *parser) parseListArgs(close lexer.Type) []ast.Node {
	var b argBuilder
	for p.tok.Type != close && p.tok.Type != lexer.EOF {
		b.add(p.parseArgItem())
		if p.tok.Type != lexer.Comma {
			break
		}
		p.advance()
	}
	return b.finish()
}

// parseCommandArgs parses a parenless argument list, which runs to the
// end of the statement.
func (p *parser) parseCommandArgs() []ast.Node {
	var b argBuilder
	for {
		b.add(p.parseArgItem())
		if p.tok.Type != lexer.Comma {
			return b.finish()
		}
		p.advance()
	}
}

// argBuilder collects positional arguments, keyword pairs, and the
// block-pass argument, then assembles them in call order with trailing
// pairs gathered into one hash.
type argBuilder struct {
	args     []ast.Node
	pairs    []ast.Node
	blockArg ast.Node
}

func (b *argBuilder) add(node ast.Node, pair, block bool) {
	switch {
	case block:
		b.blockArg = node
	case pair:
		b.pairs = append(b.pairs, node)
	default:
		b.args = append(b.args, node)
	}
}

func (b *argBuilder) finish() []ast.Node {
	args := b.args
	if len(b.pairs) > 0 {
		loc := ast.NewLoc(b.pairs[0].Pos(), b.pairs[len(b.pairs)-1].End())
		args = append(args, &ast.HashLit{Kind: "HashLit", Pairs: b.pairs, Loc: loc})
	}
	if b.blockArg != nil {
		args = append(args, b.blockArg)
	}
	return args
}

// parseArgItem parses one element of an argument list and classifies it
// as positional, keyword pair, or block pass.
func (p *parser) parseArgItem() (node ast.Node, pair, block bool) {
	switch p.tok.Type {
	case lexer.Star:
		start := p.tok.Loc
		p.advance()
		value := p.parseExpression(precRange)
		return &ast.SplatArg{Kind: "SplatArg", Value: value,
			Loc: ast.NewLoc(start.Start, value.End())}, false, false
	case lexer.StarStar:
		start := p.tok.Loc
		p.advance()
		value := p.parseExpression(precRange)
		return &ast.DoubleSplat{Kind: "DoubleSplat", Value: value,
			Loc: ast.NewLoc(start.Start, value.End())}, true, false
	case lexer.Amp:
		start := p.tok.Loc
		p.advance()
		var value ast.Node
		end := start.End()
		if tokenStartsExpr(p.tok) {
			value = p.parseExpression(precRange)
			end = value.End()
		}
		return &ast.BlockArg{Kind: "BlockArg", Value: value,
			Loc: ast.NewLoc(start.Start, end)}, false, true
	case lexer.Label:
		key := &ast.SymbolLit{Kind: "SymbolLit", Name: string(p.tok.Value), Loc: p.tok.Loc}
		loc := p.tok.Loc
		p.advance()
		var value ast.Node
		end := loc.End()
		if tokenStartsExpr(p.tok) {
			value = p.parseExpression(precAssign)
			end = value.End()
		}
		return &ast.Pair{Kind: "Pair", Key: key, Value: value,
			Loc: ast.NewLoc(loc.Start, end)}, true, false
	}
	expr := p.parseExpression(precAssign)
	if p.tok.Type == lexer.FatArrow {
		p.advance()
		value := p.parseExpression(precAssign)
		return &ast.Pair{Kind: "Pair", Key: expr, Value: value,
			Loc: ast.NewLoc(expr.Pos(), value.End())}, true, false
	}
	return expr, false, false
}

// tryBlock parses a trailing brace or do block, which attaches to the
// nearest preceding call.  Do blocks are withheld while a while/until/for
// condition is being parsed, since that grammar owns the do keyword.
func (p *parser) tryBlock() ast.Node {
	switch {
	case p.tok.Type == lexer.LBrace:
		start := p.tok.Loc
		p.advance()
		p.pushScope(false)
		params := p.parseBlockParams()
		body := p.parseStatements(stopType(lexer.RBrace))
		p.popScope()
		end := p.tok.Loc.End()
		p.expect(lexer.RBrace, "a closing brace for the block")
		return &ast.BlockExpr{Kind: "BlockExpr", Params: params, Body: body, Braces: true,
			Loc: ast.NewLoc(start.Start, end)}
	case p.tok.IsKeyword("do") && !p.noDo:
		start := p.tok.Loc
		p.advance()
		p.pushScope(false)
		params := p.parseBlockParams()
		body := p.parseStatements(stopKeywords("end"))
		p.popScope()
		end := p.expectEnd(start, "block")
		return &ast.BlockExpr{Kind: "BlockExpr", Params: params, Body: body,
			Loc: ast.NewLoc(start.Start, end.End())}
	}
	return nil
}

// parseBlockParams parses the |a, b| parameter list of a block if one is
// present.
func (p *parser) parseBlockParams() *ast.Parameters {
	for p.tok.Type == lexer.Newline {
		p.advance()
	}
	switch p.tok.Type {
	case lexer.PipePipe:
		loc := p.tok.Loc
		p.advance()
		return &ast.Parameters{Kind: "Parameters", Loc: loc}
	case lexer.Pipe:
		start := p.tok.Loc
		p.advance()
		params := p.parseParams(stopType(lexer.Pipe))
		end := p.tok.Loc.End()
		p.expect(lexer.Pipe, "a closing | after the block parameters")
		params.Loc = ast.NewLoc(start.Start, end)
		return params
	}
	return nil
}

// parsePrimary parses one atomic expression: a literal, a name, a
// grouped form, or a keyword construct.
func (p *parser) parsePrimary() ast.Node {
	tok := p.tok
	switch tok.Type {
	case lexer.Int:
		p.advance()
		return &ast.IntegerLit{Kind: "IntegerLit", Loc: tok.Loc}
	case lexer.Float:
		p.advance()
		return &ast.FloatLit{Kind: "FloatLit", Loc: tok.Loc}
	case lexer.Rational:
		p.advance()
		return &ast.RationalLit{Kind: "RationalLit", Loc: tok.Loc}
	case lexer.Imaginary:
		p.advance()
		return &ast.ImaginaryLit{Kind: "ImaginaryLit", Loc: tok.Loc}
	case lexer.CharLit:
		p.advance()
		return &ast.StringLit{Kind: "StringLit",
			Content: ast.NewLoc(tok.Loc.Start+1, tok.Loc.End()), Loc: tok.Loc}
	case lexer.Symbol:
		p.advance()
		return &ast.SymbolLit{Kind: "SymbolLit", Name: string(tok.Value), Loc: tok.Loc}
	case lexer.StringBegin:
		return p.parseStringGroup()
	case lexer.XStringBegin:
		return p.parseXString()
	case lexer.RegexpBegin:
		return p.parseRegexp()
	case lexer.SymbolBegin:
		return p.parseDynamicSymbol()
	case lexer.HeredocBegin:
		return p.parseHeredoc()
	case lexer.WordsBegin, lexer.SymWordsBegin:
		return p.parseWordList(tok.Type == lexer.SymWordsBegin)
	case lexer.Ident:
		return p.parseIdent()
	case lexer.Const:
		name := string(tok.Value)
		p.advance()
		if p.tok.Type == lexer.LParen && !p.tok.SpaceBefore {
			call := &ast.Call{Kind: "Call", Name: name, Loc: tok.Loc}
			p.finishCall(call)
			return call
		}
		return &ast.ConstRead{Kind: "ConstRead", Name: name, Loc: tok.Loc}
	case lexer.IVar:
		p.advance()
		return &ast.IVarRead{Kind: "IVarRead", Name: string(tok.Value), Loc: tok.Loc}
	case lexer.CVar:
		p.advance()
		return &ast.CVarRead{Kind: "CVarRead", Name: string(tok.Value), Loc: tok.Loc}
	case lexer.GVar:
		p.advance()
		return &ast.GVarRead{Kind: "GVarRead", Name: string(tok.Value), Loc: tok.Loc}
	case lexer.NthRef:
		n, _ := strconv.Atoi(string(tok.Value))
		p.advance()
		return &ast.NumberedRef{Kind: "NumberedRef", Number: n, Loc: tok.Loc}
	case lexer.BackRef:
		p.advance()
		return &ast.BackRef{Kind: "BackRef", Name: string(tok.Value), Loc: tok.Loc}
	case lexer.ColonColon:
		// ::Foo, a top-level constant reference.
		p.advance()
		if p.tok.Type == lexer.Const {
			node := &ast.ConstPath{Kind: "ConstPath", Name: string(p.tok.Value),
				Loc: ast.NewLoc(tok.Loc.Start, p.tok.Loc.End())}
			p.advance()
			return node
		}
		return p.missing("a constant name after ::")
	case lexer.LParen:
		p.advance()
		if p.tok.Type == lexer.RParen {
			end := p.tok.Loc.End()
			p.advance()
			return &ast.ParenExpr{Kind: "ParenExpr",
				Body: &ast.Statements{Kind: "Statements", Loc: ast.Loc{Start: tok.Loc.End()}},
				Loc:  ast.NewLoc(tok.Loc.Start, end)}
		}
		body := p.parseStatements(stopType(lexer.RParen))
		end := p.tok.Loc.End()
		p.expect(lexer.RParen, "a closing parenthesis")
		return &ast.ParenExpr{Kind: "ParenExpr", Body: body,
			Loc: ast.NewLoc(tok.Loc.Start, end)}
	case lexer.LBracket:
		return p.parseArrayLit()
	case lexer.LBrace:
		return p.parseHashLit()
	case lexer.Arrow:
		return p.parseLambda()
	case lexer.Keyword:
		return p.parseKeywordPrimary()
	}
	return p.missing("an expression")
}

// parseIdent resolves a bare identifier: a local variable read when the
// name is in scope, otherwise a receiverless method call.
func (p *parser) parseIdent() ast.Node {
	tok := p.tok
	name := string(tok.Value)
	p.advance()
	if p.isLocal(name) && !(p.tok.Type == lexer.LParen && !p.tok.SpaceBefore) {
		return &ast.LocalRead{Kind: "LocalRead", Name: name, Loc: tok.Loc}
	}
	call := &ast.Call{Kind: "Call", Name: name, Loc: tok.Loc}
	p.finishCall(call)
	return call
}

// String-family literals.  The lexer frames these as Begin, Content and
// interpolation tokens, and End; the parser folds interpolation-free
// groups into single literal nodes.

// parseLiteralParts consumes content and interpolation up to endType,
// returning the parsed parts and whether any interpolation occurred.
// The terminator token is returned unconsumed context: its loc and
// value have per-kind meaning (regexp flags, heredoc dedent).
func (p *parser) parseLiteralParts(endType lexer.Type) (parts []ast.Node, interp bool, end lexer.Token) {
	for {
		switch p.tok.Type {
		case lexer.StringContent:
			parts = append(parts, &ast.StringLit{Kind: "StringLit", Content: p.tok.Loc, Loc: p.tok.Loc})
			p.advance()
		case lexer.InterpBegin:
			interp = true
			open := p.tok.Loc
			p.advance()
			body := p.parseStatements(stopType(lexer.InterpEnd))
			closeEnd := open.End()
			if p.tok.Type == lexer.InterpEnd {
				closeEnd = p.tok.Loc.End()
				p.advance()
			} else {
				p.errorf(p.tok.Loc, "expected a closing } for the interpolation")
			}
			parts = append(parts, &ast.EmbExpr{Kind: "EmbExpr", Body: body,
				Loc: ast.NewLoc(open.Start, closeEnd)})
		case endType:
			end = p.tok
			p.advance()
			return
		default:
			// EOF or a stray token; the lexer has already reported the
			// unterminated literal.
			end = p.tok
			return
		}
	}
}

// mergeContent folds the content parts of an interpolation-free group
// into one span.  fallback anchors the empty literal.
func mergeContent(parts []ast.Node, fallback int) ast.Loc {
	if len(parts) == 0 {
		return ast.Loc{Start: fallback}
	}
	first := parts[0].(*ast.StringLit)
	last := parts[len(parts)-1].(*ast.StringLit)
	return ast.NewLoc(first.Content.Start, last.Content.End())
}

func (p *parser) parseStringGroup() ast.Node {
	begin := p.tok
	p.advance()
	parts, interp, end := p.parseLiteralParts(lexer.StringEnd)
	loc := ast.NewLoc(begin.Loc.Start, end.Loc.End())
	if !interp {
		return &ast.StringLit{Kind: "StringLit",
			Content: mergeContent(parts, begin.Loc.End()), Loc: loc}
	}
	return &ast.InterpString{Kind: "InterpString", Parts: parts, Loc: loc}
}

func (p *parser) parseXString() ast.Node {
	begin := p.tok
	p.advance()
	parts, _, end := p.parseLiteralParts(lexer.StringEnd)
	return &ast.XString{Kind: "XString", Parts: parts,
		Loc: ast.NewLoc(begin.Loc.Start, end.Loc.End())}
}

func (p *parser) parseRegexp() ast.Node {
	begin := p.tok
	p.advance()
	parts, interp, end := p.parseLiteralParts(lexer.RegexpEnd)
	loc := ast.NewLoc(begin.Loc.Start, end.Loc.End())
	flags := string(end.Value)
	if !interp {
		return &ast.RegexpLit{Kind: "RegexpLit",
			Content: mergeContent(parts, begin.Loc.End()), Flags: flags, Loc: loc}
	}
	return &ast.InterpRegexp{Kind: "InterpRegexp", Parts: parts, Flags: flags, Loc: loc}
}

func (p *parser) parseDynamicSymbol() ast.Node {
	begin := p.tok
	p.advance()
	parts, interp, end := p.parseLiteralParts(lexer.StringEnd)
	loc := ast.NewLoc(begin.Loc.Start, end.Loc.End())
	if !interp {
		content := mergeContent(parts, begin.Loc.End())
		return &ast.SymbolLit{Kind: "SymbolLit",
			Name: string(p.buf.Slice(content.Start, content.Length)), Loc: loc}
	}
	return &ast.InterpSymbol{Kind: "InterpSymbol", Parts: parts, Loc: loc}
}

// parseHeredoc builds the heredoc's node from the body tokens, which the
// lexer emits contiguously after the opener.  The node's location is the
// opener; the body is reachable through Content or Parts.
func (p *parser) parseHeredoc() ast.Node {
	begin := p.tok
	p.advance()
	parts, interp, end := p.parseLiteralParts(lexer.HeredocEnd)
	if !interp {
		return &ast.StringLit{Kind: "StringLit",
			Content: mergeContent(parts, begin.Loc.End()),
			Dedent:  end.Aux, Loc: begin.Loc}
	}
	return &ast.InterpString{Kind: "InterpString", Parts: parts, Dedent: end.Aux, Loc: begin.Loc}
}

// parseWordList builds the array for %w, %W, %i, and %I literals.  Each
// content token is one element; an interpolation becomes its own
// element.
func (p *parser) parseWordList(symbols bool) ast.Node {
	begin := p.tok
	p.advance()
	var elems []ast.Node
	parts, _, end := p.parseLiteralParts(lexer.StringEnd)
	for _, part := range parts {
		switch t := part.(type) {
		case *ast.StringLit:
			if symbols {
				elems = append(elems, &ast.SymbolLit{Kind: "SymbolLit",
					Name: string(p.buf.Slice(t.Content.Start, t.Content.Length)), Loc: t.Loc})
			} else {
				elems = append(elems, t)
			}
		case *ast.EmbExpr:
			wrapped := ast.Node(&ast.InterpString{Kind: "InterpString",
				Parts: []ast.Node{t}, Loc: t.Loc})
			if symbols {
				wrapped = &ast.InterpSymbol{Kind: "InterpSymbol",
					Parts: []ast.Node{t}, Loc: t.Loc}
			}
			elems = append(elems, wrapped)
		}
	}
	return &ast.ArrayLit{Kind: "ArrayLit", Elements: elems,
		Loc: ast.NewLoc(begin.Loc.Start, end.Loc.End())}
}

func (p *parser) parseArrayLit() ast.Node {
	start := p.tok.Loc
	p.advance()
	var elems []ast.Node
	for p.tok.Type != lexer.RBracket && p.tok.Type != lexer.EOF {
		if p.tok.Type == lexer.Star {
			sp := p.tok.Loc
			p.advance()
			value := p.parseExpression(precRange)
			elems = append(elems, &ast.SplatArg{Kind: "SplatArg", Value: value,
				Loc: ast.NewLoc(sp.Start, value.End())})
		} else {
			elems = append(elems, p.parseExpression(precAssign))
		}
		if p.tok.Type != lexer.Comma {
			break
		}
		p.advance()
	}
	end := p.tok.Loc.End()
	p.expect(lexer.RBracket, "a closing bracket")
	return &ast.ArrayLit{Kind: "ArrayLit", Elements: elems,
		Loc: ast.NewLoc(start.Start, end)}
}

// parseHashLit parses a brace hash literal.  Newlines are significant
// inside braces, so they are skipped between entries here.
func (p *parser) parseHashLit() ast.Node {
	start := p.tok.Loc
	p.advance()
	var pairs []ast.Node
	for {
		for p.tok.Type == lexer.Newline {
			p.advance()
		}
		if p.tok.Type == lexer.RBrace || p.tok.Type == lexer.EOF {
			break
		}
		pairs = append(pairs, p.parseHashEntry())
		for p.tok.Type == lexer.Newline {
			p.advance()
		}
		if p.tok.Type != lexer.Comma {
			break
		}
		p.advance()
	}
	end := p.tok.Loc.End()
	p.expect(lexer.RBrace, "a closing brace")
	return &ast.HashLit{Kind: "HashLit", Pairs: pairs,
		Loc: ast.NewLoc(start.Start, end)}
}

func (p *parser) parseHashEntry() ast.Node {
	switch p.tok.Type {
	case lexer.Label:
		key := &ast.SymbolLit{Kind: "SymbolLit", Name: string(p.tok.Value), Loc: p.tok.Loc}
		loc := p.tok.Loc
		p.advance()
		var value ast.Node
		end := loc.End()
		if tokenStartsExpr(p.tok) {
			value = p.parseExpression(precAssign)
			end = value.End()
		}
		return &ast.Pair{Kind: "Pair", Key: key, Value: value, Loc: ast.NewLoc(loc.Start, end)}
	case lexer.StarStar:
		start := p.tok.Loc
		p.advance()
		value := p.parseExpression(precRange)
		return &ast.DoubleSplat{Kind: "DoubleSplat", Value: value,
			Loc: ast.NewLoc(start.Start, value.End())}
	}
	key := p.parseExpression(precAssign)
	if !p.expect(lexer.FatArrow, "=> between the hash key and value") {
		return &ast.Pair{Kind: "Pair", Key: key, Value: p.missing("a hash value"),
			Loc: ast.NewLoc(key.Pos(), key.End())}
	}
	value := p.parseExpression(precAssign)
	return &ast.Pair{Kind: "Pair", Key: key, Value: value,
		Loc: ast.NewLoc(key.Pos(), value.End())}
}

func (p *parser) parseLambda() ast.Node {
	start := p.tok.Loc
	p.advance()
	p.pushScope(false)
	defer p.popScope()
	var params *ast.Parameters
	switch {
	case p.tok.Type == lexer.LParen:
		open := p.tok.Loc
		p.advance()
		params = p.parseParams(stopType(lexer.RParen))
		end := p.tok.Loc.End()
		p.expect(lexer.RParen, "a closing parenthesis after the lambda parameters")
		params.Loc = ast.NewLoc(open.Start, end)
	case p.tok.Type == lexer.Ident:
		params = p.parseParams(func(t lexer.Token) bool {
			return t.Type == lexer.LBrace || t.IsKeyword("do")
		})
	}
	var body *ast.Statements
	end := start.End()
	switch {
	case p.tok.Type == lexer.LBrace:
		p.advance()
		body = p.parseStatements(stopType(lexer.RBrace))
		end = p.tok.Loc.End()
		p.expect(lexer.RBrace, "a closing brace for the lambda body")
	case p.tok.IsKeyword("do"):
		doLoc := p.tok.Loc
		p.advance()
		body = p.parseStatements(stopKeywords("end"))
		end = p.expectEnd(doLoc, "lambda").End()
	default:
		p.errorf(p.tok.Loc, "expected a lambda body, found %s", p.describeTok())
		body = &ast.Statements{Kind: "Statements", Loc: ast.Loc{Start: p.tok.Loc.Start}}
	}
	return &ast.Lambda{Kind: "Lambda", Params: params, Body: body,
		Loc: ast.NewLoc(start.Start, end)}
}
