package ast

import "reflect"

// Kinds is the closed set of node variants in frozen order.  The wire
// protocol assigns tag i+1 to Kinds[i], so entries must never be
// reordered or removed within a major protocol version; new kinds are
// appended.
var Kinds = []Node{
	&Program{},
	&Statements{},
	&Missing{},
	&IntegerLit{},
	&FloatLit{},
	&RationalLit{},
	&ImaginaryLit{},
	&StringLit{},
	&InterpString{},
	&XString{},
	&SymbolLit{},
	&InterpSymbol{},
	&RegexpLit{},
	&InterpRegexp{},
	&EmbExpr{},
	&ArrayLit{},
	&HashLit{},
	&Pair{},
	&RangeLit{},
	&NilLit{},
	&TrueLit{},
	&FalseLit{},
	&SelfExpr{},
	&LocalRead{},
	&LocalWrite{},
	&IVarRead{},
	&IVarWrite{},
	&CVarRead{},
	&CVarWrite{},
	&GVarRead{},
	&GVarWrite{},
	&ConstRead{},
	&ConstWrite{},
	&ConstPath{},
	&ConstPathWrite{},
	&NumberedRef{},
	&BackRef{},
	&Call{},
	&AttrWrite{},
	&IndexRead{},
	&IndexWrite{},
	&SplatArg{},
	&DoubleSplat{},
	&BlockArg{},
	&BlockExpr{},
	&Lambda{},
	&BinaryExpr{},
	&UnaryExpr{},
	&AndExpr{},
	&OrExpr{},
	&NotExpr{},
	&DefinedExpr{},
	&OpAssign{},
	&MultiWrite{},
	&ParenExpr{},
	&IfExpr{},
	&UnlessExpr{},
	&WhileExpr{},
	&UntilExpr{},
	&ForExpr{},
	&CaseExpr{},
	&WhenClause{},
	&CaseMatch{},
	&InClause{},
	&MatchPredicate{},
	&MatchRequired{},
	&BeginExpr{},
	&RescueClause{},
	&RescueModifier{},
	&ReturnExpr{},
	&BreakExpr{},
	&NextExpr{},
	&RedoExpr{},
	&RetryExpr{},
	&YieldExpr{},
	&SuperExpr{},
	&ZSuper{},
	&MethodDef{},
	&Parameters{},
	&RequiredParam{},
	&OptionalParam{},
	&RestParam{},
	&KeywordParam{},
	&KeywordRestParam{},
	&BlockParam{},
	&ClassDef{},
	&SingletonClassDef{},
	&ModuleDef{},
	&AliasStmt{},
	&UndefStmt{},
	&BeginBlock{},
	&EndBlock{},
	&ArrayPattern{},
	&HashPattern{},
	&FindPattern{},
	&PinExpr{},
	&AltPattern{},
	&CapturePattern{},
}

// KindOf returns the kind name of a node, which is its type name.
func KindOf(n Node) string {
	return reflect.TypeOf(n).Elem().Name()
}
