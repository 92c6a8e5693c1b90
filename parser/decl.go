package parser

import (
	"github.com/rbx-lang/rubix/ast"
	"github.com/rbx-lang/rubix/lexer"
)

// parseMethodDef parses def in all its forms: plain, singleton
// (def self.x), operator and setter names, and the endless body.
func (p *parser) parseMethodDef() ast.Node {
	start := p.tok.Loc
	p.advance()
	var recv ast.Node
	name, nameLoc := p.defName()
	if p.tok.Type == lexer.Dot || p.tok.Type == lexer.ColonColon {
		recv = defReceiver(name, nameLoc)
		p.advance()
		name, _ = p.methodName()
	}
	p.pushScope(true)
	defer p.popScope()
	var params *ast.Parameters
	parens := false
	switch {
	case p.tok.Type == lexer.LParen:
		parens = true
		open := p.tok.Loc
		p.advance()
		params = p.parseParams(stopType(lexer.RParen))
		end := p.tok.Loc.End()
		p.expect(lexer.RParen, "a closing parenthesis after the parameters")
		params.Loc = ast.NewLoc(open.Start, end)
	case p.tok.Type == lexer.Ident || p.tok.Type == lexer.Star ||
		p.tok.Type == lexer.StarStar || p.tok.Type == lexer.Amp ||
		p.tok.Type == lexer.Label:
		params = p.parseParams(func(t lexer.Token) bool {
			return t.Type == lexer.Newline || t.Type == lexer.Semicolon
		})
	}
	// Endless form: def f(...) = expr.
	if p.tok.Type == lexer.Assign && (parens || params == nil) {
		p.advance()
		value := p.parseExpression(precLowest)
		return &ast.MethodDef{Kind: "MethodDef", Recv: recv, Name: name, Params: params,
			Body: stmts1(value), Loc: ast.NewLoc(start.Start, value.End())}
	}
	body := p.parseStatements(stopKeywords("rescue", "else", "ensure", "end"))
	body = p.wrapRescues(body)
	end := p.expectEnd(start, "method definition")
	return &ast.MethodDef{Kind: "MethodDef", Recv: recv, Name: name, Params: params,
		Body: body, Loc: ast.NewLoc(start.Start, end.End())}
}

// defName consumes the first name token after def, which may turn out to
// be the receiver of a singleton definition.
func (p *parser) defName() (string, ast.Loc) {
	switch p.tok.Type {
	case lexer.Ident, lexer.Const, lexer.Keyword:
		name, loc := string(p.tok.Value), p.tok.Loc
		p.advance()
		return name, loc
	case lexer.IVar, lexer.GVar, lexer.CVar:
		name, loc := string(p.tok.Value), p.tok.Loc
		p.advance()
		return name, loc
	}
	p.errorf(p.tok.Loc, "expected a method name, found %s", p.describeTok())
	return "", ast.Loc{Start: p.tok.Loc.Start}
}

// defReceiver interprets the name before the dot of a singleton
// definition.
func defReceiver(name string, loc ast.Loc) ast.Node {
	switch {
	case name == "self":
		return &ast.SelfExpr{Kind: "SelfExpr", Loc: loc}
	case name != "" && isUpperByte(name[0]):
		return &ast.ConstRead{Kind: "ConstRead", Name: name, Loc: loc}
	case len(name) > 1 && name[0] == '@' && name[1] == '@':
		return &ast.CVarRead{Kind: "CVarRead", Name: name, Loc: loc}
	case name != "" && name[0] == '@':
		return &ast.IVarRead{Kind: "IVarRead", Name: name, Loc: loc}
	case name != "" && name[0] == '$':
		return &ast.GVarRead{Kind: "GVarRead", Name: name, Loc: loc}
	}
	return &ast.LocalRead{Kind: "LocalRead", Name: name, Loc: loc}
}

func isUpperByte(c byte) bool { return c >= 'A' && c <= 'Z' }

// wrapRescues folds rescue/else/ensure clauses following a definition
// body into a BeginExpr, so def bodies and begin blocks share one shape.
func (p *parser) wrapRescues(body *ast.Statements) *ast.Statements {
	if !p.tok.IsKeyword("rescue") && !p.tok.IsKeyword("ensure") && !p.tok.IsKeyword("else") {
		return body
	}
	rescues := p.parseRescues()
	var els, ens *ast.Statements
	if p.tok.IsKeyword("else") {
		p.advance()
		els = p.parseStatements(stopKeywords("ensure", "end"))
	}
	if p.tok.IsKeyword("ensure") {
		p.advance()
		ens = p.parseStatements(stopKeywords("end"))
	}
	end := body.End()
	switch {
	case ens != nil:
		end = ens.End()
	case els != nil:
		end = els.End()
	case len(rescues) > 0:
		end = rescues[len(rescues)-1].End()
	}
	wrapped := &ast.BeginExpr{Kind: "BeginExpr", Body: body, Rescues: rescues,
		Else: els, Ensure: ens, Loc: ast.NewLoc(body.Pos(), end)}
	return stmts1(wrapped)
}

// parseParams parses a parameter list for defs, blocks, and lambdas up
// to (not including) the stop token.
func (p *parser) parseParams(stop func(lexer.Token) bool) *ast.Parameters {
	params := &ast.Parameters{Kind: "Parameters", Loc: ast.Loc{Start: p.tok.Loc.Start}}
	seenOpt, seenRest := false, false
	end := p.tok.Loc.Start
	for p.tok.Type != lexer.EOF && !stop(p.tok) {
		switch p.tok.Type {
		case lexer.Star:
			loc := p.tok.Loc
			p.advance()
			name := ""
			pend := loc.End()
			if p.tok.Type == lexer.Ident {
				name = string(p.tok.Value)
				pend = p.tok.Loc.End()
				p.declare(name)
				p.advance()
			}
			params.Rest = &ast.RestParam{Kind: "RestParam", Name: name,
				Loc: ast.NewLoc(loc.Start, pend)}
			seenRest = true
			end = pend
		case lexer.StarStar:
			loc := p.tok.Loc
			p.advance()
			name := ""
			pend := loc.End()
			if p.tok.Type == lexer.Ident {
				name = string(p.tok.Value)
				pend = p.tok.Loc.End()
				p.declare(name)
				p.advance()
			}
			params.KeywordRest = &ast.KeywordRestParam{Kind: "KeywordRestParam", Name: name,
				Loc: ast.NewLoc(loc.Start, pend)}
			end = pend
		case lexer.Amp:
			loc := p.tok.Loc
			p.advance()
			name := ""
			pend := loc.End()
			if p.tok.Type == lexer.Ident {
				name = string(p.tok.Value)
				pend = p.tok.Loc.End()
				p.declare(name)
				p.advance()
			}
			params.Block = &ast.BlockParam{Kind: "BlockParam", Name: name,
				Loc: ast.NewLoc(loc.Start, pend)}
			end = pend
		case lexer.Label:
			name, loc := string(p.tok.Value), p.tok.Loc
			p.declare(name)
			p.advance()
			var def ast.Node
			pend := loc.End()
			if p.tok.Type != lexer.Comma && !stop(p.tok) && tokenStartsExpr(p.tok) {
				def = p.parseExpression(precAssign)
				pend = def.End()
			}
			params.Keywords = append(params.Keywords, &ast.KeywordParam{Kind: "KeywordParam",
				Name: name, Default: def, Loc: ast.NewLoc(loc.Start, pend)})
			end = pend
		case lexer.Ident:
			name, loc := string(p.tok.Value), p.tok.Loc
			p.declare(name)
			p.advance()
			if p.tok.Type == lexer.Assign {
				p.advance()
				def := p.parseExpression(precAssign)
				params.Optionals = append(params.Optionals, &ast.OptionalParam{
					Kind: "OptionalParam", Name: name, Default: def,
					Loc: ast.NewLoc(loc.Start, def.End())})
				seenOpt = true
				end = def.End()
				break
			}
			req := &ast.RequiredParam{Kind: "RequiredParam", Name: name, Loc: loc}
			if seenOpt || seenRest {
				params.Posts = append(params.Posts, req)
			} else {
				params.Requireds = append(params.Requireds, req)
			}
			end = loc.End()
		default:
			p.errorf(p.tok.Loc, "unexpected %s in the parameter list", p.describeTok())
			p.advance()
			continue
		}
		if p.tok.Type != lexer.Comma {
			break
		}
		p.advance()
	}
	params.Loc = ast.NewLoc(params.Loc.Start, end)
	return params
}

func (p *parser) parseClassDef() ast.Node {
	start := p.tok.Loc
	p.advance()
	if p.tok.Type == lexer.LShift {
		p.advance()
		expr := p.parseExpression(precTernary)
		p.pushScope(true)
		body := p.parseStatements(stopKeywords("end"))
		p.popScope()
		end := p.expectEnd(start, "singleton class")
		return &ast.SingletonClassDef{Kind: "SingletonClassDef", Expr: expr, Body: body,
			Loc: ast.NewLoc(start.Start, end.End())}
	}
	path := p.parseConstPath()
	var superclass ast.Node
	if p.tok.Type == lexer.Lt {
		p.advance()
		superclass = p.parseExpression(precTernary)
	}
	p.pushScope(true)
	body := p.parseStatements(stopKeywords("end"))
	p.popScope()
	end := p.expectEnd(start, "class definition")
	return &ast.ClassDef{Kind: "ClassDef", Path: path, Superclass: superclass, Body: body,
		Loc: ast.NewLoc(start.Start, end.End())}
}

func (p *parser) parseModuleDef() ast.Node {
	start := p.tok.Loc
	p.advance()
	path := p.parseConstPath()
	p.pushScope(true)
	body := p.parseStatements(stopKeywords("end"))
	p.popScope()
	end := p.expectEnd(start, "module definition")
	return &ast.ModuleDef{Kind: "ModuleDef", Path: path, Body: body,
		Loc: ast.NewLoc(start.Start, end.End())}
}

// parseConstPath parses the A::B::C name of a class or module
// definition.
func (p *parser) parseConstPath() ast.Node {
	var node ast.Node
	if p.tok.Type == lexer.ColonColon {
		open := p.tok.Loc
		p.advance()
		if p.tok.Type != lexer.Const {
			return p.missing("a constant name after ::")
		}
		node = &ast.ConstPath{Kind: "ConstPath", Name: string(p.tok.Value),
			Loc: ast.NewLoc(open.Start, p.tok.Loc.End())}
		p.advance()
	} else {
		if p.tok.Type != lexer.Const {
			return p.missing("a constant name")
		}
		node = &ast.ConstRead{Kind: "ConstRead", Name: string(p.tok.Value), Loc: p.tok.Loc}
		p.advance()
	}
	for p.tok.Type == lexer.ColonColon {
		p.advance()
		if p.tok.Type != lexer.Const {
			return p.missing("a constant name after ::")
		}
		node = &ast.ConstPath{Kind: "ConstPath", Parent: node, Name: string(p.tok.Value),
			Loc: ast.NewLoc(node.Pos(), p.tok.Loc.End())}
		p.advance()
	}
	return node
}

// setFName nudges the lexer into method-name state for the next token.
// Safe only when no token is buffered ahead.
func (p *parser) setFName() {
	if p.peeked == nil {
		p.lex.SetFName()
	}
}

func (p *parser) parseAlias() ast.Node {
	start := p.tok.Loc
	p.advance()
	newName := p.aliasName()
	p.setFName()
	p.advance()
	oldName := p.aliasName()
	p.advance()
	return &ast.AliasStmt{Kind: "AliasStmt", New: newName, Old: oldName,
		Loc: ast.NewLoc(start.Start, oldName.End())}
}

// aliasName interprets the current token as an alias operand without
// consuming it.
func (p *parser) aliasName() ast.Node {
	tok := p.tok
	switch tok.Type {
	case lexer.Ident, lexer.Const, lexer.Keyword:
		return &ast.SymbolLit{Kind: "SymbolLit", Name: string(tok.Value), Loc: tok.Loc}
	case lexer.Symbol:
		return &ast.SymbolLit{Kind: "SymbolLit", Name: string(tok.Value), Loc: tok.Loc}
	case lexer.GVar:
		return &ast.GVarRead{Kind: "GVarRead", Name: string(tok.Value), Loc: tok.Loc}
	case lexer.BackRef:
		return &ast.BackRef{Kind: "BackRef", Name: string(tok.Value), Loc: tok.Loc}
	case lexer.NthRef:
		return &ast.BackRef{Kind: "BackRef", Name: string(tok.Value), Loc: tok.Loc}
	}
	p.errorf(tok.Loc, "expected a method name or global variable, found %s", p.describeTok())
	return &ast.Missing{Kind: "Missing", Loc: ast.Loc{Start: tok.Loc.Start}}
}

func (p *parser) parseUndef() ast.Node {
	start := p.tok.Loc
	p.advance()
	var names []ast.Node
	for {
		name := p.aliasName()
		names = append(names, name)
		p.advance()
		if p.tok.Type != lexer.Comma {
			break
		}
		p.setFName()
		p.advance()
	}
	end := start.End()
	if len(names) > 0 {
		end = names[len(names)-1].End()
	}
	return &ast.UndefStmt{Kind: "UndefStmt", Names: names, Loc: ast.NewLoc(start.Start, end)}
}

// parseHookBlock parses BEGIN { } and END { }.
func (p *parser) parseHookBlock(begin bool) ast.Node {
	start := p.tok.Loc
	p.advance()
	var body *ast.Statements
	end := start.End()
	if p.expect(lexer.LBrace, "an opening brace") {
		body = p.parseStatements(stopType(lexer.RBrace))
		end = p.tok.Loc.End()
		p.expect(lexer.RBrace, "a closing brace")
	} else {
		body = &ast.Statements{Kind: "Statements", Loc: ast.Loc{Start: p.tok.Loc.Start}}
	}
	loc := ast.NewLoc(start.Start, end)
	if begin {
		return &ast.BeginBlock{Kind: "BeginBlock", Body: body, Loc: loc}
	}
	return &ast.EndBlock{Kind: "EndBlock", Body: body, Loc: loc}
}
