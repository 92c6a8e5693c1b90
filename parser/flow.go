package parser

import (
	"github.com/rbx-lang/rubix/ast"
	"github.com/rbx-lang/rubix/lexer"
)

// parseKeywordPrimary dispatches an expression that begins with a
// keyword.  Modifier and clause keywords never reach here; they are
// consumed by the constructs that own them or rejected as unexpected.
func (p *parser) parseKeywordPrimary() ast.Node {
	tok := p.tok
	switch string(tok.Value) {
	case "nil":
		p.advance()
		return &ast.NilLit{Kind: "NilLit", Loc: tok.Loc}
	case "true":
		p.advance()
		return &ast.TrueLit{Kind: "TrueLit", Loc: tok.Loc}
	case "false":
		p.advance()
		return &ast.FalseLit{Kind: "FalseLit", Loc: tok.Loc}
	case "self":
		p.advance()
		return &ast.SelfExpr{Kind: "SelfExpr", Loc: tok.Loc}
	case "redo":
		p.advance()
		return &ast.RedoExpr{Kind: "RedoExpr", Loc: tok.Loc}
	case "retry":
		p.advance()
		return &ast.RetryExpr{Kind: "RetryExpr", Loc: tok.Loc}
	case "if":
		return p.parseIfExpr()
	case "unless":
		return p.parseUnlessExpr()
	case "while":
		return p.parseWhileExpr(false)
	case "until":
		return p.parseWhileExpr(true)
	case "for":
		return p.parseForExpr()
	case "case":
		return p.parseCaseExpr()
	case "begin":
		return p.parseBeginExpr()
	case "def":
		return p.parseMethodDef()
	case "class":
		return p.parseClassDef()
	case "module":
		return p.parseModuleDef()
	case "alias":
		return p.parseAlias()
	case "undef":
		return p.parseUndef()
	case "BEGIN":
		return p.parseHookBlock(true)
	case "END":
		return p.parseHookBlock(false)
	case "return", "break", "next":
		return p.parseJump()
	case "yield":
		return p.parseYield()
	case "super":
		return p.parseSuper()
	}
	return p.missing("an expression")
}

// parseThen consumes the separator after a condition: newlines,
// semicolons, and an optional then keyword.
func (p *parser) parseThen() {
	for p.tok.Type == lexer.Newline || p.tok.Type == lexer.Semicolon {
		p.advance()
	}
	if p.tok.IsKeyword("then") {
		p.advance()
	}
}

func (p *parser) parseIfExpr() ast.Node {
	start := p.tok.Loc
	p.advance()
	cond := p.parseExpression(precLowest)
	p.parseThen()
	then := p.parseStatements(stopKeywords("elsif", "else", "end"))
	els := p.parseIfTail()
	end := p.expectEnd(start, "if expression")
	return &ast.IfExpr{Kind: "IfExpr", Cond: cond, Then: then, Else: els,
		Loc: ast.NewLoc(start.Start, end.End())}
}

// parseIfTail parses the elsif chain and else clause of an if
// expression.  Nested IfExpr nodes share the outermost end keyword.
func (p *parser) parseIfTail() ast.Node {
	switch {
	case p.tok.IsKeyword("elsif"):
		start := p.tok.Loc
		p.advance()
		cond := p.parseExpression(precLowest)
		p.parseThen()
		then := p.parseStatements(stopKeywords("elsif", "else", "end"))
		els := p.parseIfTail()
		end := then.End()
		if els != nil {
			end = els.End()
		}
		return &ast.IfExpr{Kind: "IfExpr", Cond: cond, Then: then, Else: els,
			Loc: ast.NewLoc(start.Start, end)}
	case p.tok.IsKeyword("else"):
		p.advance()
		return p.parseStatements(stopKeywords("end"))
	}
	return nil
}

func (p *parser) parseUnlessExpr() ast.Node {
	start := p.tok.Loc
	p.advance()
	cond := p.parseExpression(precLowest)
	p.parseThen()
	then := p.parseStatements(stopKeywords("else", "end"))
	var els *ast.Statements
	if p.tok.IsKeyword("else") {
		p.advance()
		els = p.parseStatements(stopKeywords("end"))
	}
	end := p.expectEnd(start, "unless expression")
	return &ast.UnlessExpr{Kind: "UnlessExpr", Cond: cond, Then: then, Else: els,
		Loc: ast.NewLoc(start.Start, end.End())}
}

func (p *parser) parseWhileExpr(until bool) ast.Node {
	start := p.tok.Loc
	p.advance()
	// The loop grammar owns the do keyword, so blocks can't claim it
	// inside the condition.
	saved := p.noDo
	p.noDo = true
	cond := p.parseExpression(precLowest)
	p.noDo = saved
	for p.tok.Type == lexer.Newline || p.tok.Type == lexer.Semicolon {
		p.advance()
	}
	if p.tok.IsKeyword("do") {
		p.advance()
	}
	body := p.parseStatements(stopKeywords("end"))
	end := p.expectEnd(start, "loop")
	loc := ast.NewLoc(start.Start, end.End())
	if until {
		return &ast.UntilExpr{Kind: "UntilExpr", Cond: cond, Body: body, Loc: loc}
	}
	return &ast.WhileExpr{Kind: "WhileExpr", Cond: cond, Body: body, Loc: loc}
}

func (p *parser) parseForExpr() ast.Node {
	start := p.tok.Loc
	p.advance()
	saved := p.noDo
	p.noDo = true
	index := p.toTarget(p.parseExpression(precRange))
	if p.tok.Type == lexer.Comma {
		targets := []ast.Node{index}
		for p.tok.Type == lexer.Comma {
			p.advance()
			targets = append(targets, p.toTarget(p.parseExpression(precRange)))
		}
		index = &ast.MultiWrite{Kind: "MultiWrite", Targets: targets,
			Loc: ast.NewLoc(targets[0].Pos(), targets[len(targets)-1].End())}
	}
	var collection ast.Node
	if p.tok.IsKeyword("in") {
		p.advance()
		collection = p.parseExpression(precLowest)
	} else {
		collection = p.missing("the in keyword of a for loop")
	}
	p.noDo = saved
	for p.tok.Type == lexer.Newline || p.tok.Type == lexer.Semicolon {
		p.advance()
	}
	if p.tok.IsKeyword("do") {
		p.advance()
	}
	body := p.parseStatements(stopKeywords("end"))
	end := p.expectEnd(start, "for loop")
	return &ast.ForExpr{Kind: "ForExpr", Index: index, Collection: collection, Body: body,
		Loc: ast.NewLoc(start.Start, end.End())}
}

// parseCaseExpr parses both case/when and case/in; the keyword of the
// first clause picks the form.
func (p *parser) parseCaseExpr() ast.Node {
	start := p.tok.Loc
	p.advance()
	var subject ast.Node
	if p.tok.Type != lexer.Newline && p.tok.Type != lexer.Semicolon &&
		!p.tok.IsKeyword("when") && !p.tok.IsKeyword("in") {
		subject = p.parseExpression(precLowest)
	}
	for p.tok.Type == lexer.Newline || p.tok.Type == lexer.Semicolon {
		p.advance()
	}
	if p.tok.IsKeyword("in") {
		return p.parseCaseMatch(start, subject)
	}
	var whens []*ast.WhenClause
	for p.tok.IsKeyword("when") {
		whens = append(whens, p.parseWhenClause())
	}
	if len(whens) == 0 {
		p.errorf(p.tok.Loc, "expected a when clause, found %s", p.describeTok())
		p.syncStatement()
	}
	var els *ast.Statements
	if p.tok.IsKeyword("else") {
		p.advance()
		els = p.parseStatements(stopKeywords("end"))
	}
	end := p.expectEnd(start, "case expression")
	return &ast.CaseExpr{Kind: "CaseExpr", Subject: subject, Whens: whens, Else: els,
		Loc: ast.NewLoc(start.Start, end.End())}
}

func (p *parser) parseWhenClause() *ast.WhenClause {
	start := p.tok.Loc
	p.advance()
	var conds []ast.Node
	for {
		if p.tok.Type == lexer.Star {
			sp := p.tok.Loc
			p.advance()
			value := p.parseExpression(precRange)
			conds = append(conds, &ast.SplatArg{Kind: "SplatArg", Value: value,
				Loc: ast.NewLoc(sp.Start, value.End())})
		} else {
			conds = append(conds, p.parseExpression(precTernary))
		}
		if p.tok.Type != lexer.Comma {
			break
		}
		p.advance()
	}
	p.parseThen()
	body := p.parseStatements(stopKeywords("when", "else", "end"))
	return &ast.WhenClause{Kind: "WhenClause", Conditions: conds, Body: body,
		Loc: ast.NewLoc(start.Start, body.End())}
}

func (p *parser) parseCaseMatch(start ast.Loc, subject ast.Node) ast.Node {
	var ins []*ast.InClause
	for p.tok.IsKeyword("in") {
		ins = append(ins, p.parseInClause())
	}
	var els *ast.Statements
	if p.tok.IsKeyword("else") {
		p.advance()
		els = p.parseStatements(stopKeywords("end"))
	}
	end := p.expectEnd(start, "case expression")
	return &ast.CaseMatch{Kind: "CaseMatch", Subject: subject, Ins: ins, Else: els,
		Loc: ast.NewLoc(start.Start, end.End())}
}

func (p *parser) parseInClause() *ast.InClause {
	start := p.tok.Loc
	p.advance()
	pattern := p.parsePattern()
	var guard ast.Node
	switch {
	case p.tok.IsKeyword("if"):
		p.advance()
		guard = p.parseExpression(precLowest)
	case p.tok.IsKeyword("unless"):
		kw := p.tok.Loc
		p.advance()
		cond := p.parseExpression(precLowest)
		guard = &ast.NotExpr{Kind: "NotExpr", Op: "unless", Operand: cond,
			Loc: ast.NewLoc(kw.Start, cond.End())}
	}
	p.parseThen()
	body := p.parseStatements(stopKeywords("in", "else", "end"))
	return &ast.InClause{Kind: "InClause", Pattern: pattern, Guard: guard, Body: body,
		Loc: ast.NewLoc(start.Start, body.End())}
}

func (p *parser) parseBeginExpr() ast.Node {
	start := p.tok.Loc
	p.advance()
	body := p.parseStatements(stopKeywords("rescue", "else", "ensure", "end"))
	rescues := p.parseRescues()
	var els, ens *ast.Statements
	if p.tok.IsKeyword("else") {
		p.advance()
		if len(rescues) == 0 {
			p.errorf(p.tok.Loc, "else without rescue is useless")
		}
		els = p.parseStatements(stopKeywords("ensure", "end"))
	}
	if p.tok.IsKeyword("ensure") {
		p.advance()
		ens = p.parseStatements(stopKeywords("end"))
	}
	end := p.expectEnd(start, "begin block")
	return &ast.BeginExpr{Kind: "BeginExpr", Body: body, Rescues: rescues, Else: els,
		Ensure: ens, Loc: ast.NewLoc(start.Start, end.End())}
}

func (p *parser) parseRescues() []*ast.RescueClause {
	var rescues []*ast.RescueClause
	for p.tok.IsKeyword("rescue") {
		start := p.tok.Loc
		p.advance()
		var exceptions []ast.Node
		for tokenStartsExpr(p.tok) && p.tok.Type != lexer.Keyword {
			if p.tok.Type == lexer.Star {
				sp := p.tok.Loc
				p.advance()
				value := p.parseExpression(precRange)
				exceptions = append(exceptions, &ast.SplatArg{Kind: "SplatArg", Value: value,
					Loc: ast.NewLoc(sp.Start, value.End())})
			} else {
				exceptions = append(exceptions, p.parseExpression(precRange))
			}
			if p.tok.Type != lexer.Comma {
				break
			}
			p.advance()
		}
		var ref ast.Node
		if p.tok.Type == lexer.FatArrow {
			p.advance()
			ref = p.toTarget(p.parseExpression(precRange))
		}
		p.parseThen()
		body := p.parseStatements(stopKeywords("rescue", "else", "ensure", "end"))
		rescues = append(rescues, &ast.RescueClause{Kind: "RescueClause",
			Exceptions: exceptions, Ref: ref, Body: body,
			Loc: ast.NewLoc(start.Start, body.End())})
	}
	return rescues
}

// startsJumpArg reports whether the current token begins a value for
// return/break/next, which must not swallow modifier keywords.
func startsJumpArg(t lexer.Token) bool {
	if !tokenStartsExpr(t) || t.Type == lexer.LBrace {
		return false
	}
	if t.Type == lexer.Keyword {
		switch string(t.Value) {
		case "nil", "true", "false", "self", "defined?", "super", "yield", "not":
			return true
		}
		return false
	}
	return true
}

func (p *parser) parseJump() ast.Node {
	tok := p.tok
	p.advance()
	var args []ast.Node
	end := tok.Loc.End()
	if startsJumpArg(p.tok) {
		for {
			if p.tok.Type == lexer.Star {
				sp := p.tok.Loc
				p.advance()
				value := p.parseExpression(precRange)
				args = append(args, &ast.SplatArg{Kind: "SplatArg", Value: value,
					Loc: ast.NewLoc(sp.Start, value.End())})
			} else {
				args = append(args, p.parseExpression(precAssign))
			}
			if p.tok.Type != lexer.Comma {
				break
			}
			p.advance()
		}
		end = args[len(args)-1].End()
	}
	loc := ast.NewLoc(tok.Loc.Start, end)
	switch string(tok.Value) {
	case "return":
		return &ast.ReturnExpr{Kind: "ReturnExpr", Args: args, Loc: loc}
	case "break":
		return &ast.BreakExpr{Kind: "BreakExpr", Args: args, Loc: loc}
	}
	return &ast.NextExpr{Kind: "NextExpr", Args: args, Loc: loc}
}

func (p *parser) parseYield() ast.Node {
	start := p.tok.Loc
	p.advance()
	var args []ast.Node
	end := start.End()
	if p.tok.Type == lexer.LParen && !p.tok.SpaceBefore {
		p.advance()
		args = p.parseListArgs(lexer.RParen)
		end = p.tok.Loc.End()
		p.expect(lexer.RParen, "a closing parenthesis")
	} else if p.tok.SpaceBefore && startsJumpArg(p.tok) {
		args = p.parseCommandArgs()
		if len(args) > 0 {
			end = args[len(args)-1].End()
		}
	}
	return &ast.YieldExpr{Kind: "YieldExpr", Args: args, Loc: ast.NewLoc(start.Start, end)}
}

func (p *parser) parseSuper() ast.Node {
	start := p.tok.Loc
	p.advance()
	if p.tok.Type == lexer.LParen && !p.tok.SpaceBefore {
		p.advance()
		args := p.parseListArgs(lexer.RParen)
		end := p.tok.Loc.End()
		p.expect(lexer.RParen, "a closing parenthesis")
		node := &ast.SuperExpr{Kind: "SuperExpr", Args: args,
			Loc: ast.NewLoc(start.Start, end)}
		if blk := p.tryBlock(); blk != nil {
			node.Block = blk
			node.Loc = ast.NewLoc(start.Start, blk.End())
		}
		return node
	}
	if p.tok.SpaceBefore && startsJumpArg(p.tok) {
		args := p.parseCommandArgs()
		end := start.End()
		if len(args) > 0 {
			end = args[len(args)-1].End()
		}
		node := &ast.SuperExpr{Kind: "SuperExpr", Args: args,
			Loc: ast.NewLoc(start.Start, end)}
		if blk := p.tryBlock(); blk != nil {
			node.Block = blk
			node.Loc = ast.NewLoc(start.Start, blk.End())
		}
		return node
	}
	if blk := p.tryBlock(); blk != nil {
		return &ast.SuperExpr{Kind: "SuperExpr", Block: blk,
			Loc: ast.NewLoc(start.Start, blk.End())}
	}
	return &ast.ZSuper{Kind: "ZSuper", Loc: start}
}
