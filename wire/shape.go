// Package wire encodes parse results into a compact, versioned binary
// stream and decodes them defensively.  The node layout is driven by a
// tag→shape table derived from the ast kind registry: tag i+1 encodes
// ast.Kinds[i], and the shape lists the node's fields in struct order.
// Both sides share the table, so records carry no field names.
package wire

import (
	"fmt"
	"reflect"

	"github.com/rbx-lang/rubix/ast"
)

type fieldKind int

const (
	fieldKindName fieldKind = iota // the Kind discriminator, never encoded
	fieldLoc
	fieldString
	fieldBool
	fieldInt
	fieldNode
	fieldNodeList
)

type field struct {
	kind  fieldKind
	index int
}

type shape struct {
	typ    reflect.Type // the node struct type
	name   string       // kind name, assigned on decode
	fields []field
}

var (
	shapes []shape
	tagOf  map[reflect.Type]uint64
)

var (
	nodeInterface = reflect.TypeOf((*ast.Node)(nil)).Elem()
	locType       = reflect.TypeOf(ast.Loc{})
)

// The table is read-only after init; concurrent encodes and decodes
// share it freely.
func init() {
	shapes = make([]shape, len(ast.Kinds))
	tagOf = make(map[reflect.Type]uint64, len(ast.Kinds))
	for i, proto := range ast.Kinds {
		pt := reflect.TypeOf(proto)
		st := pt.Elem()
		sh := shape{typ: st, name: st.Name()}
		for j := 0; j < st.NumField(); j++ {
			f := st.Field(j)
			switch {
			case f.Name == "Kind" && f.Type.Kind() == reflect.String:
				sh.fields = append(sh.fields, field{fieldKindName, j})
			case f.Type == locType:
				sh.fields = append(sh.fields, field{fieldLoc, j})
			case f.Type.Kind() == reflect.String:
				sh.fields = append(sh.fields, field{fieldString, j})
			case f.Type.Kind() == reflect.Bool:
				sh.fields = append(sh.fields, field{fieldBool, j})
			case f.Type.Kind() == reflect.Int:
				sh.fields = append(sh.fields, field{fieldInt, j})
			case f.Type == nodeInterface || f.Type.Implements(nodeInterface):
				sh.fields = append(sh.fields, field{fieldNode, j})
			case f.Type.Kind() == reflect.Slice:
				sh.fields = append(sh.fields, field{fieldNodeList, j})
			default:
				panic(fmt.Sprintf("wire: %s.%s has unsupported type %s", st.Name(), f.Name, f.Type))
			}
		}
		shapes[i] = sh
		tagOf[pt] = uint64(i + 1)
	}
}
