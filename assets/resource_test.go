// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package assets

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"classpath:///assets/graphene-ui/graphene_test/a%20b.html?x=1#section", "assets/graphene-ui/graphene_test/a b.html"},
		{"classpath:///assets/ns/app.js", "assets/ns/app.js"},
		{"classpath:assets/ns/style.css#x", "assets/ns/style.css"},
		{"/assets/ns/./img/../logo.png", "assets/ns/logo.png"},
		{`assets\ns\win.html`, "assets/ns/win.html"},
	}
	for _, tc := range cases {
		got, err := Normalize(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNormalizeRejectsBadPaths(t *testing.T) {
	for _, in := range []string{"classpath:///", "classpath:///%zz", "classpath:///../secret", "?only=query"} {
		_, err := Normalize(in)
		assert.Error(t, err, in)
	}
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "application/javascript", MimeType("app.js"))
	assert.Equal(t, "text/plain", MimeType("custom.unknown"))
	assert.Equal(t, "text/html", MimeType("INDEX.HTML"))
	assert.Equal(t, "text/plain", MimeType("Makefile"))
}

func TestURIRoundTripsThroughNormalize(t *testing.T) {
	uri := URI("assets/ui/a b.html")
	assert.Equal(t, "classpath:///assets/ui/a%20b.html", uri)
	got, err := Normalize(uri)
	require.NoError(t, err)
	assert.Equal(t, "assets/ui/a b.html", got)
}

func TestResolver(t *testing.T) {
	fsys := fstest.MapFS{
		"assets/ui/index.html": {Data: []byte("<h1>hi</h1>")},
		"assets/ui/app.js":     {Data: []byte("go.send('ready')")},
	}
	r := NewResolver(fsys)

	res, err := r.Resolve("classpath:///assets/ui/index.html?v=3")
	require.NoError(t, err)
	assert.Equal(t, "text/html", res.MimeType)
	assert.Equal(t, "<h1>hi</h1>", string(res.Data))

	_, err = r.Resolve("classpath:///assets/ui/missing.css")
	assert.ErrorIs(t, err, ErrNotFound)

	var paths []string
	require.NoError(t, r.Walk(func(res *Resource) error {
		paths = append(paths, res.Path+" "+res.MimeType)
		return nil
	}))
	assert.Equal(t, []string{"assets/ui/app.js application/javascript", "assets/ui/index.html text/html"}, paths)
}
