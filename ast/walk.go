package ast

import "reflect"

var nodeInterface = reflect.TypeOf((*Node)(nil)).Elem()
var locType = reflect.TypeOf(Loc{})

// Children returns a node's direct child nodes in field order, flattening
// slice fields and omitting nil children.
func Children(n Node) []Node {
	var out []Node
	v := reflect.ValueOf(n).Elem()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		switch {
		case f.Type() == locType || f.Kind() == reflect.String || f.Kind() == reflect.Bool || f.Kind() == reflect.Int:
		case f.Type().Implements(nodeInterface) || f.Type() == nodeInterface:
			if !f.IsNil() {
				out = append(out, f.Interface().(Node))
			}
		case f.Kind() == reflect.Slice:
			for j := 0; j < f.Len(); j++ {
				if e := f.Index(j); !e.IsNil() {
					out = append(out, e.Interface().(Node))
				}
			}
		}
	}
	return out
}

// Walk visits n and its descendants in preorder, pruning a subtree when
// f returns false for its root.
func Walk(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, f)
	}
}
