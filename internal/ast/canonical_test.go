package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMarshalCanonical_SortedKeys tests key order and compact output.
func TestMarshalCanonical_SortedKeys(t *testing.T) {
	tree := LetIn(Sym("a"), Bind(Sym("a"), App(Sym("f"), IntLit(1))))
	out, err := MarshalCanonical(tree)
	require.NoError(t, err)
	assert.Equal(t, `{"body":"a","let":[["a",{"apply":["f",1]}]]}`, string(out))
}

// TestMarshalCanonical_Strings tests escaping and NFC normalization.
func TestMarshalCanonical_Strings(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"html not escaped", "<a&b>", `{"str":"<a&b>"}`},
		{"control", "a\nb\x01", `{"str":"a\nb\u0001"}`},
		{"line separator literal", "a\u2028b", "{\"str\":\"a\u2028b\"}"},
		{"nfc", "e\u0301", "{\"str\":\"\u00e9\"}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := MarshalCanonical(Lit(Str(tt.in)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

// TestTreeHash_Stable tests that equal trees hash equally and different
// trees do not.
func TestTreeHash_Stable(t *testing.T) {
	a := App(Sym("f"), App(Sym("g"), Sym("x")))
	b := App(Sym("f"), App(Sym("g"), Sym("x")))
	c := App(Sym("f"), App(Sym("g"), Sym("y")))

	ha, err := TreeHash(a)
	require.NoError(t, err)
	hb, err := TreeHash(b)
	require.NoError(t, err)
	hc, err := TreeHash(c)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.NotEqual(t, ha, hc)
	assert.Len(t, ha, 64)

	hn, err := HashWithDomain(DomainNormalForm, a)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hn, "domains must separate identities")
}

// TestTreeHash_FloatVersusInt tests that Float(1) and Int(1) differ.
func TestTreeHash_FloatVersusInt(t *testing.T) {
	hi, err := TreeHash(IntLit(1))
	require.NoError(t, err)
	hf, err := TreeHash(Lit(Float(1)))
	require.NoError(t, err)
	assert.NotEqual(t, hi, hf)
}
