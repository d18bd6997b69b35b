// (c) 2022-2022, LDC Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonpatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePointer(t *testing.T) {
	assert := assert.New(t)

	type pointerCase struct {
		in     string
		tokens Pointer
	}

	testCases := []*pointerCase{
		{"", Pointer{}},
		{"/", Pointer{""}},
		{"/foo", Pointer{"foo"}},
		{"/foo/0", Pointer{"foo", "0"}},
		{"/a~1b", Pointer{"a/b"}},
		{"/m~0n", Pointer{"m~n"}},
		{"/~01", Pointer{"~1"}},
		{"/favorites/-/name", Pointer{"favorites", "-", "name"}},
	}

	for _, tc := range testCases {
		p, err := ParsePointer(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(tc.tokens, p, tc.in)
		assert.Equal(tc.in, p.String())
	}

	for _, bad := range []string{"foo", "/a~2", "/a~"} {
		_, err := ParsePointer(bad)
		assert.ErrorIs(err, ErrInvalidPointer, bad)
	}
	assert.Panics(func() { MustParsePointer("nope") })
}

func TestPointerNavigation(t *testing.T) {
	assert := assert.New(t)

	p := MustParsePointer("/favorites/0/name")
	parent, ok := p.Parent()
	assert.True(ok)
	assert.Equal("/favorites/0", parent.String())
	assert.Equal("name", p.Last())

	root := MustParsePointer("")
	assert.True(root.IsRoot())
	_, ok = root.Parent()
	assert.False(ok)
	assert.False(Pointer(nil).IsRoot())

	assert.True(p.HasPrefix(parent))
	assert.True(p.HasPrefix(p))
	assert.True(p.HasPrefix(root))
	assert.False(parent.HasPrefix(p))
	assert.False(p.HasPrefix(nil))
	assert.False(p.HasPrefix(MustParsePointer("/favorites/1")))

	assert.Equal("/favorites/0/size", parent.Append("size").String())
	assert.Equal("/favorites/2", MustParsePointer("/favorites").AppendIndex(2).String())
	// Appending to a parent must not clobber the original pointer.
	assert.Equal("/favorites/0/name", p.String())

	assert.True(p.Equal(MustParsePointer("/favorites/0/name")))
	assert.False(root.Equal(nil))
}

func TestIndexTokens(t *testing.T) {
	assert := assert.New(t)

	for _, tok := range []string{"0", "1", "42", "-1", "-"} {
		assert.True(isIndex(tok), tok)
	}
	for _, tok := range []string{"", "01", "a", "1a", "--1", "-01"} {
		assert.False(isIndex(tok), tok)
	}

	i, err := toIndex("-3")
	require.NoError(t, err)
	assert.Equal(-3, i)
}
