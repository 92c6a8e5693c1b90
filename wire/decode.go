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

// DecodeError describes why a stream was rejected.  Every malformed
// input path returns one; decoding never panics.
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("wire: invalid stream at byte %d: %s", e.Offset, e.Reason)
}

const (
	// maxBodySize bounds the decompressed body so a forged header can't
	// force a huge allocation.
	maxBodySize = 1 << 30
	// maxNodeDepth bounds record nesting during decode.
	maxNodeDepth = 10000
)

// Deserialize decodes a stream produced by Serialize.  src is the
// source text the stream was built from; every decoded location is
// validated against it.
func Deserialize(src, data []byte) (*parser.Result, error) {
	d := &decoder{data: data, srcLen: len(src)}
	if err := d.header(); err != nil {
		return nil, err
	}
	count, err := d.uvarint("string table size")
	if err != nil {
		return nil, err
	}
	if count > uint64(len(d.data)-d.off) {
		return nil, d.failf("string table claims %d entries", count)
	}
	d.strings = make([]string, count)
	for i := range d.strings {
		n, err := d.uvarint("string length")
		if err != nil {
			return nil, err
		}
		if n > uint64(len(d.data)-d.off) {
			return nil, d.failf("string of %d bytes overruns the stream", n)
		}
		d.strings[i] = string(d.data[d.off : d.off+int(n)])
		d.off += int(n)
	}
	root, err := d.node(0)
	if err != nil {
		return nil, err
	}
	program, ok := root.(*ast.Program)
	if !ok {
		return nil, d.failf("root record is %T, not a program", root)
	}
	comments, err := d.comments()
	if err != nil {
		return nil, err
	}
	errs, err := d.diags()
	if err != nil {
		return nil, err
	}
	warnings, err := d.diags()
	if err != nil {
		return nil, err
	}
	if d.off != len(d.data) {
		return nil, d.failf("%d trailing bytes after the stream", len(d.data)-d.off)
	}
	return &parser.Result{Root: program, Comments: comments, Errors: errs, Warnings: warnings}, nil
}

type decoder struct {
	data    []byte
	off     int
	strings []string
	srcLen  int
}

func (d *decoder) failf(format string, args ...any) error {
	return &DecodeError{Offset: d.off, Reason: fmt.Sprintf(format, args...)}
}

// header validates the magic and version and decompresses the body in
// place.
func (d *decoder) header() error {
	if len(d.data) < len(magic) || string(d.data[:len(magic)]) != magic {
		return d.failf("bad magic")
	}
	d.off = len(magic)
	major, err := d.uvarint("major version")
	if err != nil {
		return err
	}
	if major != versionMajor {
		return d.failf("unsupported major version %d (want %d)", major, versionMajor)
	}
	// The minor version only gates additions; any value decodes.
	if _, err := d.uvarint("minor version"); err != nil {
		return err
	}
	if d.off >= len(d.data) {
		return d.failf("truncated header")
	}
	flags := d.data[d.off]
	d.off++
	bodyLen, err := d.uvarint("body length")
	if err != nil {
		return err
	}
	if bodyLen > maxBodySize {
		return d.failf("body length %d exceeds the limit", bodyLen)
	}
	if flags&flagCompressed != 0 {
		body := make([]byte, bodyLen)
		n, err := lz4.UncompressBlock(d.data[d.off:], body)
		if err != nil {
			return d.failf("lz4: %s", err)
		}
		if uint64(n) != bodyLen {
			return d.failf("body decompressed to %d bytes, header says %d", n, bodyLen)
		}
		d.data = body
		d.off = 0
		return nil
	}
	if uint64(len(d.data)-d.off) != bodyLen {
		return d.failf("body is %d bytes, header says %d", len(d.data)-d.off, bodyLen)
	}
	d.data = d.data[d.off:]
	d.off = 0
	return nil
}

func (d *decoder) uvarint(what string) (uint64, error) {
	v, n := binary.Uvarint(d.data[d.off:])
	if n <= 0 {
		return 0, d.failf("truncated %s", what)
	}
	d.off += n
	return v, nil
}

func (d *decoder) varint(what string) (int64, error) {
	v, n := binary.Varint(d.data[d.off:])
	if n <= 0 {
		return 0, d.failf("truncated %s", what)
	}
	d.off += n
	return v, nil
}

func (d *decoder) loc(what string) (ast.Loc, error) {
	start, err := d.uvarint(what)
	if err != nil {
		return ast.Loc{}, err
	}
	length, err := d.uvarint(what)
	if err != nil {
		return ast.Loc{}, err
	}
	if start > uint64(d.srcLen) || length > uint64(d.srcLen) || start+length > uint64(d.srcLen) {
		return ast.Loc{}, d.failf("%s [%d,+%d) lies outside the %d-byte source", what, start, length, d.srcLen)
	}
	return ast.Loc{Start: int(start), Length: int(length)}, nil
}

// node decodes one record.  Tag zero is a nil child.
func (d *decoder) node(depth int) (ast.Node, error) {
	if depth > maxNodeDepth {
		return nil, d.failf("records nest deeper than %d", maxNodeDepth)
	}
	tag, err := d.uvarint("node tag")
	if err != nil {
		return nil, err
	}
	if tag == 0 {
		return nil, nil
	}
	if tag > uint64(len(shapes)) {
		return nil, d.failf("unknown node tag %d", tag)
	}
	sh := shapes[tag-1]
	pv := reflect.New(sh.typ)
	v := pv.Elem()
	for _, f := range sh.fields {
		fv := v.Field(f.index)
		switch f.kind {
		case fieldKindName:
			fv.SetString(sh.name)
		case fieldLoc:
			loc, err := d.loc(sh.name + " location")
			if err != nil {
				return nil, err
			}
			fv.Set(reflect.ValueOf(loc))
		case fieldString:
			idx, err := d.uvarint("string index")
			if err != nil {
				return nil, err
			}
			if idx >= uint64(len(d.strings)) {
				return nil, d.failf("string index %d out of range (table has %d)", idx, len(d.strings))
			}
			fv.SetString(d.strings[idx])
		case fieldBool:
			if d.off >= len(d.data) {
				return nil, d.failf("truncated boolean")
			}
			b := d.data[d.off]
			d.off++
			if b > 1 {
				return nil, d.failf("boolean byte 0x%02x", b)
			}
			fv.SetBool(b == 1)
		case fieldInt:
			n, err := d.varint("integer field")
			if err != nil {
				return nil, err
			}
			fv.SetInt(n)
		case fieldNode:
			child, err := d.node(depth + 1)
			if err != nil {
				return nil, err
			}
			if child != nil {
				cv := reflect.ValueOf(child)
				if !cv.Type().AssignableTo(fv.Type()) {
					return nil, d.failf("%s is not a valid %s child", sh.name, fv.Type())
				}
				fv.Set(cv)
			}
		case fieldNodeList:
			count, err := d.uvarint("child count")
			if err != nil {
				return nil, err
			}
			if count > uint64(len(d.data)-d.off) {
				return nil, d.failf("child list claims %d entries", count)
			}
			if count == 0 {
				continue
			}
			list := reflect.MakeSlice(fv.Type(), int(count), int(count))
			for j := 0; j < int(count); j++ {
				child, err := d.node(depth + 1)
				if err != nil {
					return nil, err
				}
				if child == nil {
					continue
				}
				cv := reflect.ValueOf(child)
				if !cv.Type().AssignableTo(fv.Type().Elem()) {
					return nil, d.failf("%s is not a valid %s element", sh.name, fv.Type().Elem())
				}
				list.Index(j).Set(cv)
			}
			fv.Set(list)
		}
	}
	return pv.Interface().(ast.Node), nil
}

func (d *decoder) comments() ([]parser.Comment, error) {
	count, err := d.uvarint("comment count")
	if err != nil {
		return nil, err
	}
	if count > uint64(len(d.data)-d.off) {
		return nil, d.failf("comment section claims %d entries", count)
	}
	var out []parser.Comment
	for i := uint64(0); i < count; i++ {
		kind, err := d.uvarint("comment kind")
		if err != nil {
			return nil, err
		}
		if kind > uint64(parser.EmbDocComment) {
			return nil, d.failf("unknown comment kind %d", kind)
		}
		loc, err := d.loc("comment location")
		if err != nil {
			return nil, err
		}
		out = append(out, parser.Comment{Kind: parser.CommentKind(kind), Loc: loc})
	}
	return out, nil
}

func (d *decoder) diags() ([]diag.Diagnostic, error) {
	count, err := d.uvarint("diagnostic count")
	if err != nil {
		return nil, err
	}
	if count > uint64(len(d.data)-d.off) {
		return nil, d.failf("diagnostic section claims %d entries", count)
	}
	var out []diag.Diagnostic
	for i := uint64(0); i < count; i++ {
		sev, err := d.uvarint("severity")
		if err != nil {
			return nil, err
		}
		if sev > uint64(diag.Warning) {
			return nil, d.failf("unknown severity %d", sev)
		}
		idx, err := d.uvarint("message index")
		if err != nil {
			return nil, err
		}
		if idx >= uint64(len(d.strings)) {
			return nil, d.failf("message index %d out of range (table has %d)", idx, len(d.strings))
		}
		loc, err := d.loc("diagnostic location")
		if err != nil {
			return nil, err
		}
		out = append(out, diag.Diagnostic{Severity: diag.Severity(sev), Message: d.strings[idx], Loc: loc})
	}
	return out, nil
}
