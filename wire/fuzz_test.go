package wire

import (
	"errors"
	"testing"

	"github.com/rbx-lang/rubix/parser"
)

func FuzzDeserialize(f *testing.F) {
	seeds := []string{
		"",
		"x = 1",
		"def area(r) = 3.14 * r ** 2",
		"class Point\n  attr_reader :x, :y\nend",
		"case n in [Integer => a, *rest] then a end",
		"begin\n  risky\nrescue IOError => e\n  retry\nend",
		"def f(a) a", // carries a parse error
	}
	for _, src := range seeds {
		_, res := parser.ParseBytes("seed.rb", []byte(src))
		if data, err := Serialize(res); err == nil {
			f.Add([]byte(src), data)
		}
		if data, err := SerializeCompressed(res); err == nil {
			f.Add([]byte(src), data)
		}
	}
	f.Fuzz(func(t *testing.T, src, data []byte) {
		res, err := Deserialize(src, data)
		if err == nil {
			if res == nil || res.Root == nil {
				t.Fatal("successful decode returned no tree")
			}
			return
		}
		var derr *DecodeError
		if !errors.As(err, &derr) {
			t.Fatalf("decode failed with %T, not *DecodeError: %v", err, err)
		}
	})
}
