// (c) 2022-2022, LDC Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonpatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var diffCases = []struct {
	source, target string
}{
	{`{}`, `{}`},
	{`{ "name": "John" }`, `{ "name": "Jane" }`},
	{`{ "name": "John", "age": 24 }`, `{ "name": "John" }`},
	{`{ "favorites": ["Croissant"] }`, `{ "favorites": ["Croissant", "Bread"] }`},
	{`{ "favorites": ["Croissant", "Bread"] }`, `{ "favorites": ["Bread"] }`},
	{`{}`, `{ "favorites": [ { "name": "Pita", "size": "med" } ] }`},
	{`{ "a": { "b": { "c": [1, 2, 3] } } }`, `{ "a": { "b": { "c": [3, 2, 1], "d": null } } }`},
	{`{ "a/b": 1, "m~n": 2 }`, `{ "a/b": 2, "m~n": 3 }`},
	{`[1, 2, 3]`, `{ "list": [1, 2, 3] }`},
}

func TestDiff(t *testing.T) {
	for _, c := range diffCases {
		p, err := Diff([]byte(c.source), []byte(c.target))
		require.NoError(t, err, "%s -> %s", c.source, c.target)

		out, err := p.Apply([]byte(c.source))
		require.NoError(t, err, "%s -> %s with %s", c.source, c.target, p)
		assert.True(t, Equal([]byte(c.target), out), "%s -> %s with %s gave %s", c.source, c.target, p, out)
	}
}

func TestDiffUnchanged(t *testing.T) {
	p, err := Diff([]byte(`{ "a": [1, { "b": true }] }`), []byte(`{"a":[1,{"b":true}]}`))
	require.NoError(t, err)
	assert.NotNil(t, p)
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, "[]", p.String())
}

func TestDiffDocuments(t *testing.T) {
	source := MustParseDocument(`{ "name": "John", "age": 24 }`)
	target := MustParseDocument(`{ "name": "Jane", "age": 24 }`)

	p, err := DiffDocuments(source, target)
	require.NoError(t, err)
	assert.JSONEq(t, `[ { "op": "replace", "path": "/name", "value": "Jane" } ]`, p.String())

	out, err := source.Apply(p)
	require.NoError(t, err)
	assert.True(t, out.Equal(target))
}

func TestDiffInvalid(t *testing.T) {
	_, err := Diff([]byte(`{`), []byte(`{}`))
	assert.Error(t, err)
	_, err = Diff([]byte(`{}`), []byte(`[`))
	assert.Error(t, err)
}

func TestDiffKeepsLargeIntegers(t *testing.T) {
	source := []byte(`{ "n": 1, "list": [1] }`)
	target := []byte(`{ "n": 9007199254740993, "list": [18446744073709551617] }`)

	p, err := Diff(source, target)
	require.NoError(t, err)
	assert.Contains(t, p.String(), "9007199254740993")
	assert.Contains(t, p.String(), "18446744073709551617")

	out, err := p.Apply(source)
	require.NoError(t, err)
	assert.True(t, Equal(target, out), "got %s", out)
}
