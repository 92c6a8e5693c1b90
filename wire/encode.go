package wire

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/pierrec/lz4/v4"
	"github.com/rbx-lang/rubix/ast"
	"github.com/rbx-lang/rubix/diag"
	"github.com/rbx-lang/rubix/parser"
)

const (
	magic        = "RBXT"
	versionMajor = 1
	versionMinor = 0

	flagCompressed = 1 << 0
)

// Serialize encodes a parse result with the body stored uncompressed.
func Serialize(r *parser.Result) ([]byte, error) {
	return serialize(r, false)
}

// SerializeCompressed encodes a parse result with an lz4-compressed
// body.  Incompressible bodies fall back to the plain form.
func SerializeCompressed(r *parser.Result) ([]byte, error) {
	return serialize(r, true)
}

func serialize(r *parser.Result, compress bool) ([]byte, error) {
	e := &encoder{index: map[string]uint64{}}
	if err := e.collectNode(r.Root); err != nil {
		return nil, err
	}
	for _, d := range r.Errors {
		e.intern(d.Message)
	}
	for _, d := range r.Warnings {
		e.intern(d.Message)
	}

	var body []byte
	body = binary.AppendUvarint(body, uint64(len(e.strings)))
	for _, s := range e.strings {
		body = binary.AppendUvarint(body, uint64(len(s)))
		body = append(body, s...)
	}
	body, err := e.appendNode(body, r.Root)
	if err != nil {
		return nil, err
	}
	body = binary.AppendUvarint(body, uint64(len(r.Comments)))
	for _, c := range r.Comments {
		body = binary.AppendUvarint(body, uint64(c.Kind))
		body = appendLoc(body, c.Loc)
	}
	body = e.appendDiags(body, r.Errors)
	body = e.appendDiags(body, r.Warnings)

	out := append([]byte(nil), magic...)
	out = binary.AppendUvarint(out, versionMajor)
	out = binary.AppendUvarint(out, versionMinor)
	if compress {
		dst := make([]byte, lz4.CompressBlockBound(len(body)))
		var c lz4.Compressor
		n, err := c.CompressBlock(body, dst)
		if err == nil && n > 0 && n < len(body) {
			out = append(out, flagCompressed)
			out = binary.AppendUvarint(out, uint64(len(body)))
			return append(out, dst[:n]...), nil
		}
	}
	out = append(out, 0)
	out = binary.AppendUvarint(out, uint64(len(body)))
	return append(out, body...), nil
}

type encoder struct {
	strings []string
	index   map[string]uint64
}

func (e *encoder) intern(s string) uint64 {
	if i, ok := e.index[s]; ok {
		return i
	}
	i := uint64(len(e.strings))
	e.strings = append(e.strings, s)
	e.index[s] = i
	return i
}

// collectNode interns every string the node stream will reference, in
// the same preorder the records are written.
func (e *encoder) collectNode(n ast.Node) error {
	if n == nil || reflect.ValueOf(n).IsNil() {
		return nil
	}
	tag, ok := tagOf[reflect.TypeOf(n)]
	if !ok {
		return fmt.Errorf("wire: unregistered node type %T", n)
	}
	sh := shapes[tag-1]
	v := reflect.ValueOf(n).Elem()
	for _, f := range sh.fields {
		fv := v.Field(f.index)
		switch f.kind {
		case fieldString:
			e.intern(fv.String())
		case fieldNode:
			if !fv.IsNil() {
				if err := e.collectNode(fv.Interface().(ast.Node)); err != nil {
					return err
				}
			}
		case fieldNodeList:
			for j := 0; j < fv.Len(); j++ {
				ev := fv.Index(j)
				if ev.IsNil() {
					continue
				}
				if err := e.collectNode(ev.Interface().(ast.Node)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// appendNode writes one preorder node record: the tag, then each field
// per the shape.  A zero tag stands in for a nil child.
func (e *encoder) appendNode(buf []byte, n ast.Node) ([]byte, error) {
	if n == nil || reflect.ValueOf(n).IsNil() {
		return binary.AppendUvarint(buf, 0), nil
	}
	tag, ok := tagOf[reflect.TypeOf(n)]
	if !ok {
		return nil, fmt.Errorf("wire: unregistered node type %T", n)
	}
	buf = binary.AppendUvarint(buf, tag)
	sh := shapes[tag-1]
	v := reflect.ValueOf(n).Elem()
	var err error
	for _, f := range sh.fields {
		fv := v.Field(f.index)
		switch f.kind {
		case fieldLoc:
			buf = appendLoc(buf, fv.Interface().(ast.Loc))
		case fieldString:
			buf = binary.AppendUvarint(buf, e.index[fv.String()])
		case fieldBool:
			b := byte(0)
			if fv.Bool() {
				b = 1
			}
			buf = append(buf, b)
		case fieldInt:
			buf = binary.AppendVarint(buf, fv.Int())
		case fieldNode:
			var child ast.Node
			if !fv.IsNil() {
				child = fv.Interface().(ast.Node)
			}
			if buf, err = e.appendNode(buf, child); err != nil {
				return nil, err
			}
		case fieldNodeList:
			buf = binary.AppendUvarint(buf, uint64(fv.Len()))
			for j := 0; j < fv.Len(); j++ {
				var child ast.Node
				if ev := fv.Index(j); !ev.IsNil() {
					child = ev.Interface().(ast.Node)
				}
				if buf, err = e.appendNode(buf, child); err != nil {
					return nil, err
				}
			}
		}
	}
	return buf, nil
}

func (e *encoder) appendDiags(buf []byte, diags []diag.Diagnostic) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(diags)))
	for _, d := range diags {
		buf = binary.AppendUvarint(buf, uint64(d.Severity))
		buf = binary.AppendUvarint(buf, e.index[d.Message])
		buf = appendLoc(buf, d.Loc)
	}
	return buf
}

func appendLoc(buf []byte, loc ast.Loc) []byte {
	buf = binary.AppendUvarint(buf, uint64(loc.Start))
	return binary.AppendUvarint(buf, uint64(loc.Length))
}
