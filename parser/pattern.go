package parser

import (
	"github.com/rbx-lang/rubix/ast"
	"github.com/rbx-lang/rubix/lexer"
)

// parsePattern parses a complete pattern for in clauses and the match
// operators.  A top-level comma starts an implicit array pattern.
func (p *parser) parsePattern() ast.Node {
	if p.tok.Type == lexer.Star {
		return p.parseImplicitArray(nil)
	}
	first := p.parsePatternItem()
	if p.tok.Type != lexer.Comma {
		return first
	}
	return p.parseImplicitArray(first)
}

// parseImplicitArray continues an unbracketed element list, e.g.
// in a, b, *rest.
func (p *parser) parseImplicitArray(first ast.Node) ast.Node {
	var pre, post []ast.Node
	var rest ast.Node
	start := p.tok.Loc.Start
	if first != nil {
		pre = append(pre, first)
		start = first.Pos()
	}
	end := start
	for {
		if p.tok.Type == lexer.Star {
			splat := p.parseSplatBinding()
			if rest != nil {
				p.errorf(ast.NewLoc(splat.Pos(), splat.End()), "a pattern may have one rest element")
			} else {
				rest = splat
			}
			end = splat.End()
		} else if startsPattern(p.tok) {
			item := p.parsePatternItem()
			if rest == nil {
				pre = append(pre, item)
			} else {
				post = append(post, item)
			}
			end = item.End()
		} else if rest == nil {
			// A trailing comma matches like an anonymous rest.
			rest = &ast.SplatArg{Kind: "SplatArg", Loc: ast.Loc{Start: p.tok.Loc.Start}}
		}
		if p.tok.Type != lexer.Comma {
			break
		}
		p.advance()
	}
	return &ast.ArrayPattern{Kind: "ArrayPattern", Pre: pre, Rest: rest, Post: post,
		Loc: ast.NewLoc(start, end)}
}

// parsePatternItem parses one pattern without crossing commas.
func (p *parser) parsePatternItem() ast.Node {
	pat := p.parseAltPattern()
	if p.tok.Type == lexer.FatArrow {
		p.advance()
		target := p.patternBinding()
		return &ast.CapturePattern{Kind: "CapturePattern", Value: pat, Target: target,
			Loc: ast.NewLoc(pat.Pos(), target.End())}
	}
	return pat
}

func (p *parser) parseAltPattern() ast.Node {
	left := p.parsePrimaryPattern()
	for p.tok.Type == lexer.Pipe {
		p.advance()
		right := p.parsePrimaryPattern()
		left = &ast.AltPattern{Kind: "AltPattern", Left: left, Right: right,
			Loc: ast.NewLoc(left.Pos(), right.End())}
	}
	return left
}

func (p *parser) parsePrimaryPattern() ast.Node {
	switch p.tok.Type {
	case lexer.LBracket:
		open := p.tok.Loc
		p.advance()
		pat := p.parseArrayPatternBody(nil, open, lexer.RBracket)
		return pat
	case lexer.LBrace:
		open := p.tok.Loc
		p.advance()
		return p.parseHashPatternBody(nil, open, lexer.RBrace)
	case lexer.Caret:
		return p.parsePin()
	case lexer.Ident:
		return p.patternBinding()
	case lexer.Const, lexer.ColonColon:
		return p.parseConstPattern()
	}
	return p.parsePatternValue()
}

// parsePatternValue parses a literal or expression leaf pattern and an
// optional range around it.  Binary operators other than the range dots
// never combine inside patterns.
func (p *parser) parsePatternValue() ast.Node {
	left := p.parseUnary()
	if p.tok.Type == lexer.DotDot || p.tok.Type == lexer.DotDotDot {
		exclusive := p.tok.Type == lexer.DotDotDot
		opEnd := p.tok.Loc.End()
		p.advance()
		var right ast.Node
		end := opEnd
		if startsPattern(p.tok) && p.tok.Type != lexer.Star {
			right = p.parseUnary()
			end = right.End()
		}
		return &ast.RangeLit{Kind: "RangeLit", Left: left, Right: right, Exclusive: exclusive,
			Loc: ast.NewLoc(left.Pos(), end)}
	}
	return left
}

func (p *parser) parsePin() ast.Node {
	start := p.tok.Loc
	p.advance()
	var value ast.Node
	if p.tok.Type == lexer.LParen {
		p.advance()
		value = p.parseExpression(precLowest)
		p.expect(lexer.RParen, "a closing parenthesis after the pinned expression")
	} else {
		value = p.parsePrimary()
	}
	return &ast.PinExpr{Kind: "PinExpr", Value: value,
		Loc: ast.NewLoc(start.Start, value.End())}
}

// parseConstPattern parses a constant path, optionally followed by
// bracketed subpatterns: Point[x, y] or Point(x:, y:).
func (p *parser) parseConstPattern() ast.Node {
	path := p.parseConstPath()
	switch {
	case p.tok.Type == lexer.LBracket && !p.tok.SpaceBefore:
		open := p.tok.Loc
		p.advance()
		return p.parseArrayPatternBody(path, open, lexer.RBracket)
	case p.tok.Type == lexer.LParen && !p.tok.SpaceBefore:
		open := p.tok.Loc
		p.advance()
		if p.tok.Type == lexer.Label || p.tok.Type == lexer.StarStar {
			return p.parseHashPatternBody(path, open, lexer.RParen)
		}
		return p.parseArrayPatternBody(path, open, lexer.RParen)
	case p.tok.Type == lexer.DotDot || p.tok.Type == lexer.DotDotDot:
		exclusive := p.tok.Type == lexer.DotDotDot
		end := p.tok.Loc.End()
		p.advance()
		var right ast.Node
		if startsPattern(p.tok) && p.tok.Type != lexer.Star {
			right = p.parseUnary()
			end = right.End()
		}
		return &ast.RangeLit{Kind: "RangeLit", Left: path, Right: right, Exclusive: exclusive,
			Loc: ast.NewLoc(path.Pos(), end)}
	}
	return path
}

// parseArrayPatternBody parses the elements after an opening bracket.  A
// second rest element turns the whole pattern into a find pattern.
func (p *parser) parseArrayPatternBody(constPath ast.Node, open ast.Loc, close lexer.Type) ast.Node {
	var pre, post []ast.Node
	var rest, rest2 ast.Node
	for p.tok.Type != close && p.tok.Type != lexer.EOF {
		if p.tok.Type == lexer.Star {
			splat := p.parseSplatBinding()
			switch {
			case rest == nil:
				rest = splat
			case rest2 == nil:
				rest2 = splat
			default:
				p.errorf(ast.NewLoc(splat.Pos(), splat.End()), "too many rest elements in the pattern")
			}
		} else {
			item := p.parsePatternItem()
			if rest == nil {
				pre = append(pre, item)
			} else {
				post = append(post, item)
			}
		}
		if p.tok.Type != lexer.Comma {
			break
		}
		p.advance()
	}
	start := open.Start
	if constPath != nil {
		start = constPath.Pos()
	}
	end := p.tok.Loc.End()
	p.expect(close, "a closing delimiter for the pattern")
	loc := ast.NewLoc(start, end)
	if rest2 != nil {
		if len(pre) > 0 {
			p.errorf(loc, "a find pattern must start with a rest element")
		}
		return &ast.FindPattern{Kind: "FindPattern", Const: constPath,
			Left: rest, Mid: post, Right: rest2, Loc: loc}
	}
	return &ast.ArrayPattern{Kind: "ArrayPattern", Const: constPath,
		Pre: pre, Rest: rest, Post: post, Loc: loc}
}

// parseHashPatternBody parses label: pattern entries and the **rest.
func (p *parser) parseHashPatternBody(constPath ast.Node, open ast.Loc, close lexer.Type) ast.Node {
	var pairs []ast.Node
	var rest ast.Node
	for p.tok.Type != close && p.tok.Type != lexer.EOF {
		for p.tok.Type == lexer.Newline {
			p.advance()
		}
		switch p.tok.Type {
		case lexer.Label:
			name, loc := string(p.tok.Value), p.tok.Loc
			key := &ast.SymbolLit{Kind: "SymbolLit", Name: name, Loc: loc}
			p.advance()
			var value ast.Node
			end := loc.End()
			if p.tok.Type != lexer.Comma && p.tok.Type != close && startsPattern(p.tok) {
				value = p.parsePatternItem()
				end = value.End()
			} else {
				// A bare label binds the value to a local of that name.
				p.declare(name)
			}
			pairs = append(pairs, &ast.Pair{Kind: "Pair", Key: key, Value: value,
				Loc: ast.NewLoc(loc.Start, end)})
		case lexer.StarStar:
			sp := p.tok.Loc
			p.advance()
			var value ast.Node
			end := sp.End()
			switch {
			case p.tok.IsKeyword("nil"):
				value = &ast.NilLit{Kind: "NilLit", Loc: p.tok.Loc}
				end = p.tok.Loc.End()
				p.advance()
			case p.tok.Type == lexer.Ident:
				value = p.patternBinding()
				end = value.End()
			}
			rest = &ast.DoubleSplat{Kind: "DoubleSplat", Value: value,
				Loc: ast.NewLoc(sp.Start, end)}
		default:
			p.errorf(p.tok.Loc, "expected a label in the hash pattern, found %s", p.describeTok())
			p.advance()
		}
		for p.tok.Type == lexer.Newline {
			p.advance()
		}
		if p.tok.Type != lexer.Comma {
			break
		}
		p.advance()
	}
	start := open.Start
	if constPath != nil {
		start = constPath.Pos()
	}
	end := p.tok.Loc.End()
	p.expect(close, "a closing delimiter for the pattern")
	return &ast.HashPattern{Kind: "HashPattern", Const: constPath, Pairs: pairs, Rest: rest,
		Loc: ast.NewLoc(start, end)}
}

// parseSplatBinding parses *name (or bare *) in a pattern.
func (p *parser) parseSplatBinding() ast.Node {
	start := p.tok.Loc
	p.advance()
	var value ast.Node
	end := start.End()
	if p.tok.Type == lexer.Ident {
		value = p.patternBinding()
		end = value.End()
	}
	return &ast.SplatArg{Kind: "SplatArg", Value: value, Loc: ast.NewLoc(start.Start, end)}
}

// patternBinding consumes an identifier that binds a local variable.
func (p *parser) patternBinding() ast.Node {
	if p.tok.Type != lexer.Ident {
		return p.missing("a variable name")
	}
	name, loc := string(p.tok.Value), p.tok.Loc
	p.declare(name)
	p.advance()
	return &ast.LocalWrite{Kind: "LocalWrite", Name: name, Loc: loc}
}

// startsPattern reports whether the token can begin a pattern.
func startsPattern(t lexer.Token) bool {
	if tokenStartsExpr(t) {
		if t.Type == lexer.Keyword {
			switch string(t.Value) {
			case "nil", "true", "false", "self":
				return true
			}
			return false
		}
		return true
	}
	return t.Type == lexer.Caret
}
