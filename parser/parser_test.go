package parser

import (
	"strings"
	"testing"

	"github.com/rbx-lang/rubix/ast"
	"github.com/rbx-lang/rubix/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSrc(t *testing.T, src string) (*source.Buffer, *Result) {
	t.Helper()
	buf, res := ParseBytes("test.rb", []byte(src))
	require.NotNil(t, res.Root)
	return buf, res
}

// parseOK parses source that must produce no diagnostics and returns the
// top-level statements.
func parseOK(t *testing.T, src string) []ast.Node {
	t.Helper()
	_, res := parseSrc(t, src)
	require.Empty(t, res.Errors, "unexpected errors for %q", src)
	return res.Root.Statements.Body
}

// stmt1 parses source expected to hold exactly one clean statement.
func stmt1(t *testing.T, src string) ast.Node {
	t.Helper()
	body := parseOK(t, src)
	require.Len(t, body, 1)
	return body[0]
}

func TestBinaryExprLocations(t *testing.T) {
	buf, res := parseSrc(t, "1 + 2")
	require.True(t, res.Success())
	assert.Equal(t, ast.NewLoc(0, buf.Len()), res.Root.Loc)

	require.Len(t, res.Root.Statements.Body, 1)
	bin, ok := res.Root.Statements.Body[0].(*ast.BinaryExpr)
	require.True(t, ok, "want BinaryExpr, got %T", res.Root.Statements.Body[0])
	assert.Equal(t, "+", bin.Op)
	assert.Equal(t, ast.NewLoc(0, 5), bin.Loc)

	lhs, ok := bin.LHS.(*ast.IntegerLit)
	require.True(t, ok)
	assert.Equal(t, ast.Loc{Start: 0, Length: 1}, lhs.Loc)
	rhs, ok := bin.RHS.(*ast.IntegerLit)
	require.True(t, ok)
	assert.Equal(t, ast.Loc{Start: 4, Length: 1}, rhs.Loc)
}

func TestPrecedence(t *testing.T) {
	bin := stmt1(t, "1 + 2 * 3").(*ast.BinaryExpr)
	assert.Equal(t, "+", bin.Op)
	rhs := bin.RHS.(*ast.BinaryExpr)
	assert.Equal(t, "*", rhs.Op)

	// ** associates to the right.
	pow := stmt1(t, "2 ** 3 ** 2").(*ast.BinaryExpr)
	assert.Equal(t, "**", pow.Op)
	assert.IsType(t, &ast.IntegerLit{}, pow.LHS)
	assert.IsType(t, &ast.BinaryExpr{}, pow.RHS)

	// Unary minus binds looser than **, so the power is negated.
	neg := stmt1(t, "-2 ** 2").(*ast.UnaryExpr)
	assert.Equal(t, "-", neg.Op)
	assert.IsType(t, &ast.BinaryExpr{}, neg.Operand)
}

func TestNegativeLiteralFolding(t *testing.T) {
	bin := stmt1(t, "-2 * 3").(*ast.BinaryExpr)
	assert.Equal(t, "*", bin.Op)
	lit := bin.LHS.(*ast.IntegerLit)
	assert.Equal(t, ast.NewLoc(0, 2), lit.Loc, "the literal should cover the minus sign")
}

func TestLocalVariableResolution(t *testing.T) {
	body := parseOK(t, "x = 1\nx\ny")
	require.Len(t, body, 3)

	w := body[0].(*ast.LocalWrite)
	assert.Equal(t, "x", w.Name)
	assert.IsType(t, &ast.IntegerLit{}, w.Value)

	// x is now a known local; y never was.
	assert.IsType(t, &ast.LocalRead{}, body[1])
	assert.IsType(t, &ast.Call{}, body[2])
}

func TestOpAssign(t *testing.T) {
	op := stmt1(t, "x += 1").(*ast.OpAssign)
	assert.Equal(t, "+", op.Op)
	target := op.Target.(*ast.LocalWrite)
	assert.Equal(t, "x", target.Name)
	assert.Nil(t, target.Value)
	assert.IsType(t, &ast.IntegerLit{}, op.Value)
}

func TestAttrAndIndexWrite(t *testing.T) {
	aw := stmt1(t, "o.x = 1").(*ast.AttrWrite)
	assert.Equal(t, "x", aw.Name)
	assert.IsType(t, &ast.Call{}, aw.Recv)
	assert.IsType(t, &ast.IntegerLit{}, aw.Value)

	iw := stmt1(t, "h[0] = 1").(*ast.IndexWrite)
	require.Len(t, iw.Args, 1)
	assert.IsType(t, &ast.IntegerLit{}, iw.Value)
}

func TestMultiWrite(t *testing.T) {
	mw := stmt1(t, "a, b = 1, 2").(*ast.MultiWrite)
	require.Len(t, mw.Targets, 2)
	assert.Equal(t, "a", mw.Targets[0].(*ast.LocalWrite).Name)
	assert.Equal(t, "b", mw.Targets[1].(*ast.LocalWrite).Name)
	arr := mw.Value.(*ast.ArrayLit)
	assert.Len(t, arr.Elements, 2)

	mw = stmt1(t, "a, *rest = xs").(*ast.MultiWrite)
	require.Len(t, mw.Targets, 2)
	splat := mw.Targets[1].(*ast.SplatArg)
	assert.Equal(t, "rest", splat.Value.(*ast.LocalWrite).Name)
	assert.IsType(t, &ast.Call{}, mw.Value)
}

func TestCommandCall(t *testing.T) {
	call := stmt1(t, "puts 1, 2").(*ast.Call)
	assert.Equal(t, "puts", call.Name)
	assert.Nil(t, call.Recv)
	require.Len(t, call.Args, 2)
	assert.Equal(t, 9, call.End(), "the call should extend through its last argument")
}

func TestTrailingKeywordArgsCollect(t *testing.T) {
	call := stmt1(t, "get url, timeout: 3, retries: 2").(*ast.Call)
	require.Len(t, call.Args, 2)
	hash := call.Args[1].(*ast.HashLit)
	require.Len(t, hash.Pairs, 2)
	first := hash.Pairs[0].(*ast.Pair)
	assert.Equal(t, "timeout", first.Key.(*ast.SymbolLit).Name)
}

func TestSplatAndBlockPassArgs(t *testing.T) {
	call := stmt1(t, "foo(*xs, &blk)").(*ast.Call)
	require.Len(t, call.Args, 2)
	assert.IsType(t, &ast.SplatArg{}, call.Args[0])
	assert.IsType(t, &ast.BlockArg{}, call.Args[1], "the block pass goes last")
}

func TestAmbiguousArgumentWarning(t *testing.T) {
	_, res := parseSrc(t, "foo -1")
	require.True(t, res.Success())
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message, "ambiguous")

	call := res.Root.Statements.Body[0].(*ast.Call)
	require.Len(t, call.Args, 1)
	lit := call.Args[0].(*ast.IntegerLit)
	assert.Equal(t, ast.NewLoc(4, 6), lit.Loc)
}

func TestBraceBlock(t *testing.T) {
	call := stmt1(t, "xs.each { |x| x * 2 }").(*ast.Call)
	assert.Equal(t, "each", call.Name)
	blk := call.Block.(*ast.BlockExpr)
	assert.True(t, blk.Braces)
	require.NotNil(t, blk.Params)
	require.Len(t, blk.Params.Requireds, 1)

	bin := blk.Body.Body[0].(*ast.BinaryExpr)
	assert.IsType(t, &ast.LocalRead{}, bin.LHS, "block params are locals inside the block")
}

func TestDoBlock(t *testing.T) {
	call := stmt1(t, "xs.map do |x|\n  x\nend").(*ast.Call)
	blk := call.Block.(*ast.BlockExpr)
	assert.False(t, blk.Braces)
	require.Len(t, blk.Body.Body, 1)
}

func TestLoopOwnsDoKeyword(t *testing.T) {
	loop := stmt1(t, "while f do\n  1\nend").(*ast.WhileExpr)
	cond := loop.Cond.(*ast.Call)
	assert.Nil(t, cond.Block, "do after a loop condition belongs to the loop")
	assert.False(t, loop.DoWhile)
}

func TestSafeNavigation(t *testing.T) {
	call := stmt1(t, "a&.b").(*ast.Call)
	assert.True(t, call.SafeNav)
	assert.Equal(t, "b", call.Name)
}

func TestTernary(t *testing.T) {
	node := stmt1(t, "a ? 1 : 2").(*ast.IfExpr)
	assert.IsType(t, &ast.Call{}, node.Cond)
	require.Len(t, node.Then.Body, 1)
	els := node.Else.(*ast.Statements)
	require.Len(t, els.Body, 1)
}

func TestModifierIf(t *testing.T) {
	node := stmt1(t, "1 if a").(*ast.IfExpr)
	require.Len(t, node.Then.Body, 1)
	assert.IsType(t, &ast.IntegerLit{}, node.Then.Body[0])
	assert.Nil(t, node.Else)
	assert.Equal(t, ast.NewLoc(0, 6), node.Loc)
}

func TestBeginEndWhileRunsBodyFirst(t *testing.T) {
	loop := stmt1(t, "begin\n  f\nend while g").(*ast.WhileExpr)
	assert.True(t, loop.DoWhile)
	assert.IsType(t, &ast.BeginExpr{}, loop.Body.Body[0])

	// A plain modifier loop tests before the body.
	plain := stmt1(t, "f while g").(*ast.WhileExpr)
	assert.False(t, plain.DoWhile)
}

func TestRescueModifierBindsInsideAssignment(t *testing.T) {
	w := stmt1(t, "a = b rescue c").(*ast.LocalWrite)
	mod := w.Value.(*ast.RescueModifier)
	assert.IsType(t, &ast.Call{}, mod.Value)
	assert.IsType(t, &ast.Call{}, mod.Rescue)
}

func TestIfElsifElse(t *testing.T) {
	node := stmt1(t, "if a\n  1\nelsif b\n  2\nelse\n  3\nend").(*ast.IfExpr)
	require.Len(t, node.Then.Body, 1)

	elsif := node.Else.(*ast.IfExpr)
	require.Len(t, elsif.Then.Body, 1)
	els := elsif.Else.(*ast.Statements)
	require.Len(t, els.Body, 1)
}

func TestUntilLoop(t *testing.T) {
	loop := stmt1(t, "until done\n  step\nend").(*ast.UntilExpr)
	assert.IsType(t, &ast.Call{}, loop.Cond)
	require.Len(t, loop.Body.Body, 1)
}

func TestForLoop(t *testing.T) {
	loop := stmt1(t, "for i in xs\n  use i\nend").(*ast.ForExpr)
	idx := loop.Index.(*ast.LocalWrite)
	assert.Equal(t, "i", idx.Name)
	assert.IsType(t, &ast.Call{}, loop.Collection)

	// The index variable is a local inside the body.
	call := loop.Body.Body[0].(*ast.Call)
	require.Len(t, call.Args, 1)
	assert.IsType(t, &ast.LocalRead{}, call.Args[0])
}

func TestCaseWhen(t *testing.T) {
	src := "case x\nwhen 1, 2 then :low\nwhen *others\n  :rest\nelse\n  :other\nend"
	node := stmt1(t, src).(*ast.CaseExpr)
	assert.IsType(t, &ast.Call{}, node.Subject)
	require.Len(t, node.Whens, 2)
	assert.Len(t, node.Whens[0].Conditions, 2)
	assert.IsType(t, &ast.SplatArg{}, node.Whens[1].Conditions[0])
	require.NotNil(t, node.Else)
	require.Len(t, node.Else.Body, 1)
}

func TestCasePatternMatching(t *testing.T) {
	src := strings.Join([]string{
		"case result",
		"in [1, *rest]",
		"  rest",
		"in {name: String => n, **extra}",
		"  n",
		"in Integer | Float => num",
		"  num",
		"in ^expected",
		"  :same",
		"else",
		"  :other",
		"end",
	}, "\n")
	node := stmt1(t, src).(*ast.CaseMatch)
	require.Len(t, node.Ins, 4)

	arr := node.Ins[0].Pattern.(*ast.ArrayPattern)
	require.Len(t, arr.Pre, 1)
	assert.IsType(t, &ast.IntegerLit{}, arr.Pre[0])
	rest := arr.Rest.(*ast.SplatArg)
	assert.Equal(t, "rest", rest.Value.(*ast.LocalWrite).Name)

	hash := node.Ins[1].Pattern.(*ast.HashPattern)
	require.Len(t, hash.Pairs, 1)
	pair := hash.Pairs[0].(*ast.Pair)
	assert.Equal(t, "name", pair.Key.(*ast.SymbolLit).Name)
	capture := pair.Value.(*ast.CapturePattern)
	assert.IsType(t, &ast.ConstRead{}, capture.Value)
	assert.Equal(t, "n", capture.Target.(*ast.LocalWrite).Name)
	dsplat := hash.Rest.(*ast.DoubleSplat)
	assert.Equal(t, "extra", dsplat.Value.(*ast.LocalWrite).Name)

	alt := node.Ins[2].Pattern.(*ast.CapturePattern)
	assert.IsType(t, &ast.AltPattern{}, alt.Value)

	assert.IsType(t, &ast.PinExpr{}, node.Ins[3].Pattern)
	require.NotNil(t, node.Else)
}

func TestFindPattern(t *testing.T) {
	node := stmt1(t, "case xs\nin [*, 42, *post]\n  :found\nend").(*ast.CaseMatch)
	require.Len(t, node.Ins, 1)
	find := node.Ins[0].Pattern.(*ast.FindPattern)
	assert.NotNil(t, find.Left)
	require.Len(t, find.Mid, 1)
	right := find.Right.(*ast.SplatArg)
	assert.Equal(t, "post", right.Value.(*ast.LocalWrite).Name)
}

func TestPatternGuard(t *testing.T) {
	node := stmt1(t, "case x\nin y if y\n  y\nend").(*ast.CaseMatch)
	require.Len(t, node.Ins, 1)
	in := node.Ins[0]
	assert.IsType(t, &ast.LocalWrite{}, in.Pattern)
	assert.IsType(t, &ast.LocalRead{}, in.Guard, "a bound pattern variable is a local in the guard")
}

func TestBeginRescueElseEnsure(t *testing.T) {
	src := "begin\n  f\nrescue A, B => e\n  e\nelse\n  g\nensure\n  h\nend"
	node := stmt1(t, src).(*ast.BeginExpr)
	require.Len(t, node.Rescues, 1)

	r := node.Rescues[0]
	require.Len(t, r.Exceptions, 2)
	ref := r.Ref.(*ast.LocalWrite)
	assert.Equal(t, "e", ref.Name)
	assert.IsType(t, &ast.LocalRead{}, r.Body.Body[0])

	require.NotNil(t, node.Else)
	require.NotNil(t, node.Ensure)
}

func TestMethodDefParams(t *testing.T) {
	src := "def m(a, b = 1, *r, c, k:, kk: 2, **kw, &blk)\n  a\nend"
	def := stmt1(t, src).(*ast.MethodDef)
	assert.Equal(t, "m", def.Name)
	p := def.Params
	require.NotNil(t, p)

	require.Len(t, p.Requireds, 1)
	require.Len(t, p.Optionals, 1)
	assert.IsType(t, &ast.IntegerLit{}, p.Optionals[0].(*ast.OptionalParam).Default)
	assert.Equal(t, "r", p.Rest.(*ast.RestParam).Name)
	require.Len(t, p.Posts, 1)
	assert.Equal(t, "c", p.Posts[0].(*ast.RequiredParam).Name)

	require.Len(t, p.Keywords, 2)
	assert.Nil(t, p.Keywords[0].(*ast.KeywordParam).Default)
	assert.NotNil(t, p.Keywords[1].(*ast.KeywordParam).Default)
	assert.Equal(t, "kw", p.KeywordRest.(*ast.KeywordRestParam).Name)
	assert.Equal(t, "blk", p.Block.(*ast.BlockParam).Name)

	// Parameters are locals inside the body.
	assert.IsType(t, &ast.LocalRead{}, def.Body.Body[0])
}

func TestEndlessMethod(t *testing.T) {
	def := stmt1(t, "def double(x) = x * 2").(*ast.MethodDef)
	assert.Equal(t, "double", def.Name)
	require.Len(t, def.Body.Body, 1)
	assert.IsType(t, &ast.BinaryExpr{}, def.Body.Body[0])
	assert.Equal(t, ast.NewLoc(0, 21), def.Loc)
}

func TestSingletonMethod(t *testing.T) {
	def := stmt1(t, "def self.build\n  new\nend").(*ast.MethodDef)
	assert.Equal(t, "build", def.Name)
	assert.IsType(t, &ast.SelfExpr{}, def.Recv)
}

func TestSetterMethodName(t *testing.T) {
	def := stmt1(t, "def name=(v)\n  @n = v\nend").(*ast.MethodDef)
	assert.Equal(t, "name=", def.Name)
	w := def.Body.Body[0].(*ast.IVarWrite)
	assert.Equal(t, "@n", w.Name)
}

func TestMethodBodyRescueWrapping(t *testing.T) {
	def := stmt1(t, "def fetch\n  get\nrescue Timeout\n  nil\nend").(*ast.MethodDef)
	require.Len(t, def.Body.Body, 1)
	begin := def.Body.Body[0].(*ast.BeginExpr)
	require.Len(t, begin.Rescues, 1)
	assert.IsType(t, &ast.ConstRead{}, begin.Rescues[0].Exceptions[0])
}

func TestClassWithSuperclass(t *testing.T) {
	cls := stmt1(t, "class Foo < Bar\n  def x\n    1\n  end\nend").(*ast.ClassDef)
	assert.Equal(t, "Foo", cls.Path.(*ast.ConstRead).Name)
	assert.Equal(t, "Bar", cls.Superclass.(*ast.ConstRead).Name)
	assert.IsType(t, &ast.MethodDef{}, cls.Body.Body[0])
}

func TestSingletonClass(t *testing.T) {
	cls := stmt1(t, "class << self\n  def x\n    1\n  end\nend").(*ast.SingletonClassDef)
	assert.IsType(t, &ast.SelfExpr{}, cls.Expr)
}

func TestModuleWithConstPath(t *testing.T) {
	mod := stmt1(t, "module A::B\n  C = 1\nend").(*ast.ModuleDef)
	path := mod.Path.(*ast.ConstPath)
	assert.Equal(t, "B", path.Name)
	assert.Equal(t, "A", path.Parent.(*ast.ConstRead).Name)
	assert.IsType(t, &ast.ConstWrite{}, mod.Body.Body[0])
}

func TestScopeOperatorConstVersusCall(t *testing.T) {
	// Capitalization after :: decides constant path versus method call.
	path := stmt1(t, "Foo::Bar").(*ast.ConstPath)
	assert.Equal(t, "Bar", path.Name)
	assert.Equal(t, "Foo", path.Parent.(*ast.ConstRead).Name)

	call := stmt1(t, "Foo::bar(1)").(*ast.Call)
	assert.Equal(t, "bar", call.Name)
	assert.Equal(t, "Foo", call.Recv.(*ast.ConstRead).Name)
	assert.Len(t, call.Args, 1)
}

func TestAliasAndUndef(t *testing.T) {
	al := stmt1(t, "alias to_str to_s").(*ast.AliasStmt)
	assert.Equal(t, "to_str", al.New.(*ast.SymbolLit).Name)
	assert.Equal(t, "to_s", al.Old.(*ast.SymbolLit).Name)

	un := stmt1(t, "undef a, b").(*ast.UndefStmt)
	assert.Len(t, un.Names, 2)
}

func TestJumpsAndYield(t *testing.T) {
	ret := stmt1(t, "return 1, 2").(*ast.ReturnExpr)
	assert.Len(t, ret.Args, 2)

	brk := stmt1(t, "break").(*ast.BreakExpr)
	assert.Empty(t, brk.Args)

	y := stmt1(t, "yield(x)").(*ast.YieldExpr)
	assert.Len(t, y.Args, 1)
}

func TestSuperForms(t *testing.T) {
	assert.IsType(t, &ast.ZSuper{}, stmt1(t, "super"))

	sup := stmt1(t, "super 1").(*ast.SuperExpr)
	assert.Len(t, sup.Args, 1)

	sup = stmt1(t, "super()").(*ast.SuperExpr)
	assert.Empty(t, sup.Args)
}

func TestRangeForms(t *testing.T) {
	r := stmt1(t, "1..10").(*ast.RangeLit)
	assert.False(t, r.Exclusive)
	assert.NotNil(t, r.Left)
	assert.NotNil(t, r.Right)

	r = stmt1(t, "1...10").(*ast.RangeLit)
	assert.True(t, r.Exclusive)

	r = stmt1(t, "x = 5..").(*ast.LocalWrite).Value.(*ast.RangeLit)
	assert.Nil(t, r.Right)

	r = stmt1(t, "..5").(*ast.RangeLit)
	assert.Nil(t, r.Left)
}

func TestArrayLiteralWithSplat(t *testing.T) {
	arr := stmt1(t, "[1, *xs, 2]").(*ast.ArrayLit)
	require.Len(t, arr.Elements, 3)
	assert.IsType(t, &ast.SplatArg{}, arr.Elements[1])
}

func TestHashLiteral(t *testing.T) {
	h := stmt1(t, "h = {a: 1, 'k' => 2, **rest}").(*ast.LocalWrite).Value.(*ast.HashLit)
	require.Len(t, h.Pairs, 3)
	assert.Equal(t, "a", h.Pairs[0].(*ast.Pair).Key.(*ast.SymbolLit).Name)
	assert.IsType(t, &ast.StringLit{}, h.Pairs[1].(*ast.Pair).Key)
	assert.IsType(t, &ast.DoubleSplat{}, h.Pairs[2])
}

func TestLambda(t *testing.T) {
	lam := stmt1(t, "f = ->(x) { x }").(*ast.LocalWrite).Value.(*ast.Lambda)
	require.NotNil(t, lam.Params)
	require.Len(t, lam.Params.Requireds, 1)
	assert.IsType(t, &ast.LocalRead{}, lam.Body.Body[0])
}

func TestStringLiteral(t *testing.T) {
	lit := stmt1(t, `"hi"`).(*ast.StringLit)
	assert.Equal(t, ast.NewLoc(0, 4), lit.Loc)
	assert.Equal(t, ast.NewLoc(1, 3), lit.Content)
	assert.Equal(t, 0, lit.Dedent)
}

func TestInterpolatedString(t *testing.T) {
	lit := stmt1(t, `"a#{b}c"`).(*ast.InterpString)
	require.Len(t, lit.Parts, 3)
	assert.IsType(t, &ast.StringLit{}, lit.Parts[0])
	emb := lit.Parts[1].(*ast.EmbExpr)
	require.Len(t, emb.Body.Body, 1)
	assert.IsType(t, &ast.Call{}, emb.Body.Body[0])
	assert.IsType(t, &ast.StringLit{}, lit.Parts[2])
}

func TestSquigglyHeredoc(t *testing.T) {
	src := "s = <<~TXT\n  hi\nTXT\n"
	buf, res := parseSrc(t, src)
	require.True(t, res.Success())

	w := res.Root.Statements.Body[0].(*ast.LocalWrite)
	lit := w.Value.(*ast.StringLit)
	assert.Equal(t, ast.NewLoc(4, 10), lit.Loc, "the node sits at the heredoc opener")
	assert.Equal(t, ast.NewLoc(11, 16), lit.Content)
	assert.Equal(t, 2, lit.Dedent)

	raw := string(buf.Slice(lit.Content.Start, lit.Content.Length))
	assert.Equal(t, "  hi\n", raw)
	assert.Equal(t, "hi\n", dedent(raw, lit.Dedent))
}

// dedent strips up to n leading spaces or tabs from each line.
func dedent(s string, n int) string {
	lines := strings.SplitAfter(s, "\n")
	for i, line := range lines {
		strip := 0
		for strip < n && strip < len(line) && (line[strip] == ' ' || line[strip] == '\t') {
			strip++
		}
		lines[i] = line[strip:]
	}
	return strings.Join(lines, "")
}

func TestHeredocWithInterpolation(t *testing.T) {
	src := "s = <<~MSG\n  hello #{name}\nMSG\n"
	_, res := parseSrc(t, src)
	require.True(t, res.Success())

	lit := res.Root.Statements.Body[0].(*ast.LocalWrite).Value.(*ast.InterpString)
	assert.Equal(t, 2, lit.Dedent)
	require.GreaterOrEqual(t, len(lit.Parts), 2)
}

func TestMissingEnd(t *testing.T) {
	_, res := parseSrc(t, "def f(a) a")
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "expected an `end`")

	// The tree is complete despite the error.
	def := res.Root.Statements.Body[0].(*ast.MethodDef)
	assert.Equal(t, "f", def.Name)
	require.Len(t, def.Body.Body, 1)
	assert.IsType(t, &ast.LocalRead{}, def.Body.Body[0])
}

func TestStrayCloserRecovery(t *testing.T) {
	_, res := parseSrc(t, ")\nx = 1")
	assert.False(t, res.Success())
	require.NotEmpty(t, res.Errors)

	// Parsing resumed and the later statement survived.
	body := res.Root.Statements.Body
	require.NotEmpty(t, body)
	last := body[len(body)-1].(*ast.LocalWrite)
	assert.Equal(t, "x", last.Name)
}

func TestRecoveryInsideClassBody(t *testing.T) {
	src := "class C\n  def broken(\n  def ok\n    1\n  end\nend"
	_, res := parseSrc(t, src)
	assert.False(t, res.Success())

	cls, ok := res.Root.Statements.Body[0].(*ast.ClassDef)
	require.True(t, ok)
	assert.NotEmpty(t, cls.Body.Body, "the class body keeps what it could parse")
}

func TestKeywordSuggestion(t *testing.T) {
	_, res := parseSrc(t, "module begn")
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, `did you mean "begin"?`)
}

func TestDeepNestingDegradesGracefully(t *testing.T) {
	src := strings.Repeat("(", 2100) + "1" + strings.Repeat(")", 2100)
	_, res := parseSrc(t, src)
	assert.False(t, res.Success())

	found := false
	for _, e := range res.Errors {
		if strings.Contains(e.Message, "nests too deeply") {
			found = true
			break
		}
	}
	assert.True(t, found)
}

func TestCommentsCollected(t *testing.T) {
	_, res := parseSrc(t, "# top\nx = 1 # trailing\n=begin\nblock\n=end\n")
	require.True(t, res.Success())
	require.Len(t, res.Comments, 3)
	assert.Equal(t, LineComment, res.Comments[0].Kind)
	assert.Equal(t, EmbDocComment, res.Comments[2].Kind)
}

func TestDiagnosticsSortedByPosition(t *testing.T) {
	_, res := parseSrc(t, "def f(\nx = \"unterminated")
	require.Greater(t, len(res.Errors), 1)
	for i := 1; i < len(res.Errors); i++ {
		assert.LessOrEqual(t, res.Errors[i-1].Loc.Start, res.Errors[i].Loc.Start)
	}
}

func TestMatchPredicateStatement(t *testing.T) {
	mp := stmt1(t, "x in [1, 2]").(*ast.MatchPredicate)
	assert.IsType(t, &ast.Call{}, mp.Value)
	assert.IsType(t, &ast.ArrayPattern{}, mp.Pattern)

	mr := stmt1(t, "x => {a:}").(*ast.MatchRequired)
	assert.IsType(t, &ast.HashPattern{}, mr.Pattern)
}

func TestDefinedExpr(t *testing.T) {
	d := stmt1(t, "defined?(x)").(*ast.DefinedExpr)
	assert.IsType(t, &ast.Call{}, d.Value)
}

func TestKeywordAndOr(t *testing.T) {
	and := stmt1(t, "a and b").(*ast.AndExpr)
	assert.Equal(t, "and", and.Op)

	or := stmt1(t, "a || b").(*ast.OrExpr)
	assert.Equal(t, "||", or.Op)
}

func TestWordListLiterals(t *testing.T) {
	arr := stmt1(t, "%w[a b c]").(*ast.ArrayLit)
	require.Len(t, arr.Elements, 3)
	assert.IsType(t, &ast.StringLit{}, arr.Elements[0])

	arr = stmt1(t, "%i[x y]").(*ast.ArrayLit)
	require.Len(t, arr.Elements, 2)
	sym := arr.Elements[0].(*ast.SymbolLit)
	assert.Equal(t, "x", sym.Name)
}

func TestRegexpLiteral(t *testing.T) {
	re := stmt1(t, "/ab+c/i").(*ast.RegexpLit)
	assert.Equal(t, "i", re.Flags)
	assert.Equal(t, ast.NewLoc(1, 5), re.Content)
}
