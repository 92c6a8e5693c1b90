package wire

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/rbx-lang/rubix/ast"
	"github.com/rbx-lang/rubix/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTrip serializes and deserializes a parse of src and requires the
// results to be byte-identical under JSON, which covers every field
// including exact locations.
func roundTrip(t *testing.T, src string, compressed bool) {
	t.Helper()
	_, res := parser.ParseBytes("test.rb", []byte(src))

	var data []byte
	var err error
	if compressed {
		data, err = SerializeCompressed(res)
	} else {
		data, err = Serialize(res)
	}
	require.NoError(t, err)

	got, err := Deserialize([]byte(src), data)
	require.NoError(t, err)

	want, err := json.Marshal(res)
	require.NoError(t, err)
	have, err := json.Marshal(got)
	require.NoError(t, err)
	require.Equal(t, string(want), string(have))

	assert.True(t, ast.Equal(res.Root, got.Root))
}

func TestRoundTrip(t *testing.T) {
	sources := map[string]string{
		"arithmetic": "1 + 2",
		"method": strings.Join([]string{
			"# adds up",
			"def sum(a, b = 0, *rest)",
			"  rest.inject(a + b) { |t, x| t + x }",
			"end",
		}, "\n"),
		"control_flow":  "if a\n  1\nelsif b\n  2\nelse\n  3\nend",
		"patterns":      "case v\nin [1, *rest]\n  rest\nin {a: Integer => n}\n  n\nend",
		"heredoc":       "s = <<~TXT\n  hi\nTXT\n",
		"with_warning":  "foo -1",
		"with_errors":   "def f(a) a",
		"interpolation": `"a#{b}c"`,
		"back_refs":     "$1\n$~",
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			roundTrip(t, src, false)
		})
	}
}

func TestRoundTripCompressed(t *testing.T) {
	src := strings.Repeat("x = 1\ny = x + 2\nputs y\n", 200)
	_, res := parser.ParseBytes("test.rb", []byte(src))
	require.True(t, res.Success())

	data, err := SerializeCompressed(res)
	require.NoError(t, err)
	require.Equal(t, byte(flagCompressed), data[6], "a repetitive body should compress")

	plain, err := Serialize(res)
	require.NoError(t, err)
	assert.Less(t, len(data), len(plain))

	roundTrip(t, src, true)
}

func TestCompressionFallsBackWhenIncompressible(t *testing.T) {
	_, res := parser.ParseBytes("test.rb", []byte("1"))
	data, err := SerializeCompressed(res)
	require.NoError(t, err)
	assert.Equal(t, byte(0), data[6], "a tiny body stays uncompressed")

	_, err = Deserialize([]byte("1"), data)
	require.NoError(t, err)
}

// stream assembles a well-formed header around a hand-built body.
func stream(body []byte) []byte {
	out := []byte(magic)
	out = binary.AppendUvarint(out, versionMajor)
	out = binary.AppendUvarint(out, versionMinor)
	out = append(out, 0)
	out = binary.AppendUvarint(out, uint64(len(body)))
	return append(out, body...)
}

func tag(proto ast.Node) uint64 {
	return tagOf[reflect.TypeOf(proto)]
}

// minimalBody is an empty program over an empty source: no strings, a
// Program holding an empty Statements, no comments, no diagnostics.
func minimalBody() []byte {
	var b []byte
	b = binary.AppendUvarint(b, 0) // string table
	b = binary.AppendUvarint(b, tag(&ast.Program{}))
	b = binary.AppendUvarint(b, tag(&ast.Statements{}))
	b = binary.AppendUvarint(b, 0) // no statements
	b = appendLoc(b, ast.Loc{})    // Statements loc
	b = appendLoc(b, ast.Loc{})    // Program loc
	b = binary.AppendUvarint(b, 0) // comments
	b = binary.AppendUvarint(b, 0) // errors
	b = binary.AppendUvarint(b, 0) // warnings
	return b
}

func decodeErr(t *testing.T, src, data []byte, wantReason string) {
	t.Helper()
	_, err := Deserialize(src, data)
	require.Error(t, err)
	var de *DecodeError
	require.True(t, errors.As(err, &de), "want DecodeError, got %T", err)
	assert.Contains(t, de.Reason, wantReason)
}

func TestDecodeMinimalStream(t *testing.T) {
	res, err := Deserialize(nil, stream(minimalBody()))
	require.NoError(t, err)
	require.NotNil(t, res.Root)
	assert.Equal(t, "Program", res.Root.Kind)
	require.NotNil(t, res.Root.Statements)
	assert.Empty(t, res.Root.Statements.Body)
}

func TestBadMagic(t *testing.T) {
	decodeErr(t, nil, []byte("NOPE\x01\x00\x00\x00"), "bad magic")
	decodeErr(t, nil, []byte("RB"), "bad magic")
}

func TestUnsupportedMajorVersion(t *testing.T) {
	out := []byte(magic)
	out = binary.AppendUvarint(out, versionMajor+1)
	out = binary.AppendUvarint(out, 0)
	out = append(out, 0)
	out = binary.AppendUvarint(out, 0)
	decodeErr(t, nil, out, "unsupported major version")
}

func TestHigherMinorVersionDecodes(t *testing.T) {
	out := []byte(magic)
	out = binary.AppendUvarint(out, versionMajor)
	out = binary.AppendUvarint(out, versionMinor+5)
	body := minimalBody()
	out = append(out, 0)
	out = binary.AppendUvarint(out, uint64(len(body)))
	out = append(out, body...)

	_, err := Deserialize(nil, out)
	require.NoError(t, err)
}

func TestTruncationNeverPanics(t *testing.T) {
	_, res := parser.ParseBytes("test.rb", []byte("def f(a)\n  a + 1\nend"))
	data, err := Serialize(res)
	require.NoError(t, err)

	for i := 0; i < len(data); i++ {
		_, err := Deserialize([]byte("def f(a)\n  a + 1\nend"), data[:i])
		assert.Error(t, err, "prefix of %d bytes must not decode", i)
	}
}

func TestCorruptedStringIndex(t *testing.T) {
	var b []byte
	b = binary.AppendUvarint(b, 0) // empty string table
	b = binary.AppendUvarint(b, tag(&ast.Program{}))
	b = binary.AppendUvarint(b, tag(&ast.Statements{}))
	b = binary.AppendUvarint(b, 1) // one statement
	b = binary.AppendUvarint(b, tag(&ast.LocalRead{}))
	b = binary.AppendUvarint(b, 5) // string index into the empty table

	decodeErr(t, []byte("x"), stream(b), "string index 5 out of range")
}

func TestWrongChildType(t *testing.T) {
	// Program's child must be a Statements record, not a literal.
	var b []byte
	b = binary.AppendUvarint(b, 0)
	b = binary.AppendUvarint(b, tag(&ast.Program{}))
	b = binary.AppendUvarint(b, tag(&ast.IntegerLit{}))
	b = appendLoc(b, ast.Loc{})

	decodeErr(t, nil, stream(b), "not a valid")
}

func TestRootMustBeProgram(t *testing.T) {
	var b []byte
	b = binary.AppendUvarint(b, 0)
	b = binary.AppendUvarint(b, tag(&ast.IntegerLit{}))
	b = appendLoc(b, ast.Loc{Start: 0, Length: 1})
	b = binary.AppendUvarint(b, 0)
	b = binary.AppendUvarint(b, 0)
	b = binary.AppendUvarint(b, 0)

	decodeErr(t, []byte("1"), stream(b), "not a program")
}

func TestUnknownNodeTag(t *testing.T) {
	var b []byte
	b = binary.AppendUvarint(b, 0)
	b = binary.AppendUvarint(b, uint64(len(shapes)+10))
	decodeErr(t, nil, stream(b), "unknown node tag")
}

func TestStrictBooleanByte(t *testing.T) {
	var b []byte
	b = binary.AppendUvarint(b, 1) // one string: the call name
	b = binary.AppendUvarint(b, 1)
	b = append(b, 'b')
	b = binary.AppendUvarint(b, tag(&ast.Program{}))
	b = binary.AppendUvarint(b, tag(&ast.Statements{}))
	b = binary.AppendUvarint(b, 1)
	b = binary.AppendUvarint(b, tag(&ast.Call{}))
	b = binary.AppendUvarint(b, 0) // nil receiver
	b = binary.AppendUvarint(b, 0) // name -> "b"
	b = binary.AppendUvarint(b, 0) // no args
	b = binary.AppendUvarint(b, 0) // nil block
	b = append(b, 2)               // SafeNav must be 0 or 1

	decodeErr(t, []byte("b"), stream(b), "boolean byte 0x02")
}

func TestLocationOutsideSource(t *testing.T) {
	var b []byte
	b = binary.AppendUvarint(b, 0)
	b = binary.AppendUvarint(b, tag(&ast.Program{}))
	b = binary.AppendUvarint(b, tag(&ast.Statements{}))
	b = binary.AppendUvarint(b, 0)
	b = appendLoc(b, ast.Loc{Start: 2, Length: 50}) // source is 3 bytes

	decodeErr(t, []byte("abc"), stream(b), "outside the 3-byte source")
}

func TestLocationOverflowRejected(t *testing.T) {
	var b []byte
	b = binary.AppendUvarint(b, 0)
	b = binary.AppendUvarint(b, tag(&ast.Program{}))
	b = binary.AppendUvarint(b, tag(&ast.Statements{}))
	b = binary.AppendUvarint(b, 0)
	// start + length wraps around uint64.
	b = binary.AppendUvarint(b, 1<<63)
	b = binary.AppendUvarint(b, 1<<63)

	decodeErr(t, []byte("abc"), stream(b), "outside")
}

func TestTrailingBytes(t *testing.T) {
	decodeErr(t, nil, stream(append(minimalBody(), 0)), "trailing bytes")
}

func TestBodyLengthMismatch(t *testing.T) {
	data := stream(minimalBody())
	data = append(data, 0xff) // extend past the declared body
	decodeErr(t, nil, data, "header says")
}

func TestDepthLimit(t *testing.T) {
	var inner ast.Node = &ast.IntegerLit{Kind: "IntegerLit", Loc: ast.NewLoc(0, 1)}
	for i := 0; i < 6000; i++ {
		stmts := &ast.Statements{Kind: "Statements", Body: []ast.Node{inner}, Loc: ast.NewLoc(0, 1)}
		inner = &ast.ParenExpr{Kind: "ParenExpr", Body: stmts, Loc: ast.NewLoc(0, 1)}
	}
	res := &parser.Result{
		Root: &ast.Program{
			Kind:       "Program",
			Statements: &ast.Statements{Kind: "Statements", Body: []ast.Node{inner}, Loc: ast.NewLoc(0, 1)},
			Loc:        ast.NewLoc(0, 1),
		},
	}
	data, err := Serialize(res)
	require.NoError(t, err)

	decodeErr(t, []byte("1"), data, "nest deeper")
}

func TestOversizedBodyLengthRejected(t *testing.T) {
	out := []byte(magic)
	out = binary.AppendUvarint(out, versionMajor)
	out = binary.AppendUvarint(out, versionMinor)
	out = append(out, 0)
	out = binary.AppendUvarint(out, maxBodySize+1)
	decodeErr(t, nil, out, "exceeds the limit")
}
