package ast_test

import (
	"reflect"
	"testing"

	"github.com/rbx-lang/rubix/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intLit(start, length int) *ast.IntegerLit {
	return &ast.IntegerLit{Kind: "IntegerLit", Loc: ast.Loc{Start: start, Length: length}}
}

func TestLoc(t *testing.T) {
	loc := ast.NewLoc(3, 8)
	assert.Equal(t, 3, loc.Pos())
	assert.Equal(t, 8, loc.End())
	assert.Equal(t, 5, loc.Length)
	assert.Equal(t, ast.NewLoc(1, 8), loc.Span(ast.NewLoc(1, 4)))
}

func TestEqualIgnoresLoc(t *testing.T) {
	a := &ast.BinaryExpr{Kind: "BinaryExpr", Op: "+", LHS: intLit(0, 1), RHS: intLit(4, 1),
		Loc: ast.NewLoc(0, 5)}
	b := &ast.BinaryExpr{Kind: "BinaryExpr", Op: "+", LHS: intLit(10, 1), RHS: intLit(14, 1),
		Loc: ast.NewLoc(10, 15)}
	assert.True(t, ast.Equal(a, b))

	c := &ast.BinaryExpr{Kind: "BinaryExpr", Op: "-", LHS: intLit(0, 1), RHS: intLit(4, 1)}
	assert.False(t, ast.Equal(a, c))
	assert.False(t, ast.Equal(a, intLit(0, 1)))
	assert.True(t, ast.Equal(nil, nil))
	assert.False(t, ast.Equal(a, nil))
}

func TestEqualSlices(t *testing.T) {
	mk := func(n int) *ast.ArrayLit {
		elems := make([]ast.Node, n)
		for i := range elems {
			elems[i] = intLit(i, 1)
		}
		return &ast.ArrayLit{Kind: "ArrayLit", Elements: elems}
	}
	assert.True(t, ast.Equal(mk(3), mk(3)))
	assert.False(t, ast.Equal(mk(3), mk(2)))
}

func TestChildrenFlattens(t *testing.T) {
	call := &ast.Call{Kind: "Call", Recv: intLit(0, 1), Name: "f",
		Args: []ast.Node{intLit(2, 1), intLit(4, 1)}}
	kids := ast.Children(call)
	require.Len(t, kids, 3)
	assert.Same(t, call.Recv, kids[0])
	assert.Same(t, call.Args[0], kids[1])
	assert.Same(t, call.Args[1], kids[2])

	// Nil children and nil slice elements are omitted.
	call2 := &ast.Call{Kind: "Call", Name: "g", Args: []ast.Node{nil, intLit(0, 1)}}
	assert.Len(t, ast.Children(call2), 1)
}

func TestWalkPreorderAndPrune(t *testing.T) {
	inner := &ast.BinaryExpr{Kind: "BinaryExpr", Op: "*", LHS: intLit(0, 1), RHS: intLit(2, 1)}
	root := &ast.BinaryExpr{Kind: "BinaryExpr", Op: "+", LHS: inner, RHS: intLit(4, 1)}
	var kinds []string
	ast.Walk(root, func(n ast.Node) bool {
		kinds = append(kinds, ast.KindOf(n))
		return true
	})
	assert.Equal(t, []string{"BinaryExpr", "BinaryExpr", "IntegerLit", "IntegerLit", "IntegerLit"}, kinds)

	var pruned []string
	ast.Walk(root, func(n ast.Node) bool {
		pruned = append(pruned, ast.KindOf(n))
		return ast.KindOf(n) != "BinaryExpr" || n == ast.Node(root)
	})
	assert.Equal(t, []string{"BinaryExpr", "BinaryExpr", "IntegerLit"}, pruned)
}

// The registry order is the wire contract: every kind appears once, and
// the Kind discriminator each parser constructor writes matches the type
// name the registry derives.
func TestKindRegistry(t *testing.T) {
	seen := map[reflect.Type]bool{}
	for _, proto := range ast.Kinds {
		typ := reflect.TypeOf(proto)
		require.False(t, seen[typ], "duplicate registry entry %s", typ)
		seen[typ] = true
		kindField, ok := typ.Elem().FieldByName("Kind")
		require.True(t, ok, "%s has no Kind field", typ)
		require.Equal(t, reflect.String, kindField.Type.Kind())
		locField, ok := typ.Elem().FieldByName("Loc")
		require.True(t, ok, "%s has no Loc field", typ)
		require.Equal(t, reflect.TypeOf(ast.Loc{}), locField.Type)
	}
	assert.GreaterOrEqual(t, len(ast.Kinds), 90)
}
