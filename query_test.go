// (c) 2022-2022, LDC Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonpatch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type GetValueCase struct {
	doc, path string
	result    string
	err       error
}

var GetValueCases = []GetValueCase{
	{
		`{ "baz": "qux" }`,
		"/baz",
		`"qux"`,
		nil,
	},
	{
		`{
	    "baz": "qux",
	    "foo": [ "a", 2, "c" ]
	  }`,
		"/foo/0",
		`"a"`,
		nil,
	},
	{
		`{
	    "baz": "qux",
	    "foo": [ "a", 2, "c" ]
	  }`,
		"/foo/1",
		`2`,
		nil,
	},
	{
		`{
	    "baz": "qux",
	    "foo": [ "a", 2, "c", {"baz": null} ]
	  }`,
		"/foo/3/baz",
		`null`,
		nil,
	},
	{
		`{ "foo": {} }`,
		"/foo",
		`{}`,
		nil,
	},
	{
		`{ "foo": [ ] }`,
		"/foo",
		`[]`,
		nil,
	},
	{
		`{ "baz/foo": "qux" }`,
		"/baz~1foo",
		`"qux"`,
		nil,
	},
	{
		`{ "big": 123456789012345678901234567890 }`,
		"/big",
		`123456789012345678901234567890`,
		nil,
	},
	{
		`{ "a": 1 }`,
		"",
		`{"a":1}`,
		nil,
	},
	{
		`{
	    "baz": "qux",
	    "foo": [ "a", 2, "c" ]
	  }`,
		"/fooo",
		"",
		ErrMissing,
	},
	{
		`{ "foo": [ "a" ] }`,
		"/foo/1",
		"",
		ErrMissing,
	},
	{
		`{ "foo": [ "a" ] }`,
		"/foo/-",
		"",
		ErrMissing,
	},
	{
		`{ "foo": "a" }`,
		"foo",
		"",
		ErrInvalidPointer,
	},
}

func TestGetValueByPath(t *testing.T) {
	assert := assert.New(t)

	for _, c := range GetValueCases {
		res, err := GetValueByPath([]byte(c.doc), c.path)
		if c.err != nil {
			assert.ErrorIs(err, c.err, "path %s in %s", c.path, c.doc)
			continue
		}
		if assert.NoError(err, "path %s in %s", c.path, c.doc) {
			assert.Equal(c.result, string(res), "path %s in %s", c.path, c.doc)
		}
	}

	_, err := GetValueByPath([]byte(`{`), "/a")
	assert.Error(err)
}

type FindChildrenCase struct {
	doc    string
	tests  []*PV
	result []*PV
}

func pv(path, value string) *PV {
	if value == "" {
		return &PV{Path: path}
	}
	return &PV{Path: path, Value: json.RawMessage(value)}
}

var FindChildrenCases = []FindChildrenCase{
	{
		`{ "baz": "qux" }`,
		[]*PV{pv("/baz", `"qux"`)},
		[]*PV{pv("", `{"baz": "qux"}`)},
	},
	{
		`{
	    "baz": "qux",
	    "foo": [ "a", 2, "c" ]
	  }`,
		[]*PV{pv("/1", `2.0`)},
		[]*PV{pv("/foo", `[ "a", 2, "c" ]`)},
	},
	{
		`{
	    "baz": "qux",
	    "foo": [ "a", 2, "c" ]
	  }`,
		[]*PV{pv("/fooo", "")},
		[]*PV{},
	},
	{
		`{ "foo": null }`,
		[]*PV{pv("/foo", "")},
		[]*PV{pv("", `{ "foo": null }`)},
	},
	{
		`{ "foo": null }`,
		[]*PV{pv("/foo", "null")},
		[]*PV{pv("", `{ "foo": null }`)},
	},
	{
		`{ "baz/foo": [ "qux" ] }`,
		[]*PV{pv("/0", `"qux"`)},
		[]*PV{pv("/baz~1foo", `["qux"]`)},
	},
	{
		`[
			"root",
			["object", { "id": "id1" }],
			["object", { "id": "id2" }]
		]`,
		[]*PV{pv("/0", `"object"`)},
		[]*PV{
			pv("/1", `["object", { "id": "id1" }]`),
			pv("/2", `["object", { "id": "id2" }]`),
		},
	},
	{
		`[
			"root",
			["object", { "id": "id1" }],
			["object", { "id": "id2" }]
		]`,
		[]*PV{pv("/1", `{ "id": "id1" }`)},
		[]*PV{pv("/1", `["object", { "id": "id1" }]`)},
	},
	{
		`[
			"root",
			["object1", { "id": "" }],
			["object2", { "id": null }]
		]`,
		[]*PV{
			pv("/0", `"object2"`),
			pv("/1/id", `null`),
		},
		[]*PV{pv("/2", `["object2", { "id": null }]`)},
	},
	{
		`{
			"owner": { "name": "Jane", "role": "admin" },
			"members": [
				{ "name": "John", "role": "admin" },
				{ "name": "Joe", "role": "viewer" }
			]
		}`,
		[]*PV{pv("/role", `"admin"`)},
		[]*PV{
			pv("/members/0", `{ "name": "John", "role": "admin" }`),
			pv("/owner", `{ "name": "Jane", "role": "admin" }`),
		},
	},
	{
		`["root", ["p",
			["span", {"data-type": "text"},
				["span", {"data-type": "leaf"}, "Hello 1"],
				["span", {"data-type": "leaf"}, "Hello 2"],
				["span", {"data-type": null}, "Hello 3"]
			]
		]]`,
		[]*PV{pv("/0", `"span"`), pv("/1/data-type", `"leaf"`)},
		[]*PV{
			pv("/1/1/2", `["span", {"data-type": "leaf"}, "Hello 1"]`),
			pv("/1/1/3", `["span", {"data-type": "leaf"}, "Hello 2"]`),
		},
	},
}

func TestFindChildren(t *testing.T) {
	assert := assert.New(t)

	for i, c := range FindChildrenCases {
		res, err := MustParseDocument(c.doc).FindChildren(c.tests)
		require.NoError(t, err, "case %d", i)

		if !assert.Equal(len(c.result), len(res), "case %d: %v", i, res) {
			continue
		}
		for j := range res {
			assert.Equal(c.result[j].Path, res[j].Path, "case %d, result %d", i, j)
			assert.JSONEq(string(c.result[j].Value), string(res[j].Value), "case %d, result %d", i, j)
		}
	}
}

func TestFindChildrenInvalidTests(t *testing.T) {
	assert := assert.New(t)
	doc := MustParseDocument(`{ "a": 1 }`)

	res, err := doc.FindChildren(nil)
	assert.NoError(err)
	assert.Nil(res)

	_, err = doc.FindChildren([]*PV{pv("", `1`)})
	assert.ErrorContains(err, "invalid query path")
	_, err = doc.FindChildren([]*PV{pv("a", `1`)})
	assert.ErrorContains(err, "invalid query path")
	_, err = doc.FindChildren([]*PV{pv("/a", `{`)})
	assert.ErrorContains(err, "invalid query value")
}
