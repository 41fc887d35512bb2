// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package assets resolves classpath: resource URIs requested by pages to
// files in an fs.FS.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"
)

// Scheme is the URI scheme served from the asset filesystem.
const Scheme = "classpath"

// ErrNotFound is returned when a resource does not exist.
var ErrNotFound = errors.New("resource not found")

// Normalize turns a resource URI into a slash-separated path relative to the
// asset root. The scheme, any query or fragment suffix and leading slashes
// are stripped and the remainder is percent-decoded, so
// "classpath:///assets/ui/a%20b.html?x=1#top" becomes "assets/ui/a b.html".
func Normalize(uri string) (string, error) {
	p := uri
	if rest, ok := strings.CutPrefix(p, Scheme+":"); ok {
		p = rest
	}
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	decoded, err := url.PathUnescape(p)
	if err != nil {
		return "", fmt.Errorf("decode resource path %q: %w", uri, err)
	}
	decoded = strings.ReplaceAll(decoded, "\\", "/")
	decoded = strings.TrimLeft(decoded, "/")
	if decoded == "" {
		return "", fmt.Errorf("empty resource path in %q", uri)
	}
	clean := path.Clean(decoded)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("resource path %q escapes the asset root", uri)
	}
	return clean, nil
}

// URI builds the classpath URI of a file under the asset root.
func URI(name string) string {
	name = strings.TrimLeft(strings.ReplaceAll(name, "\\", "/"), "/")
	return Scheme + ":///" + (&url.URL{Path: name}).EscapedPath()
}

// Resource is a resolved asset.
type Resource struct {
	Path     string
	MimeType string
	Data     []byte
}

// Resolver serves resources from a filesystem.
type Resolver struct {
	fsys fs.FS
}

// NewResolver creates a resolver over fsys.
func NewResolver(fsys fs.FS) *Resolver {
	return &Resolver{fsys: fsys}
}

// Resolve loads the resource named by uri.
func (r *Resolver) Resolve(uri string) (*Resource, error) {
	name, err := Normalize(uri)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return &Resource{Path: name, MimeType: MimeType(name), Data: data}, nil
}

// Walk calls fn for every regular file in the filesystem, in lexical order.
func (r *Resolver) Walk(fn func(res *Resource) error) error {
	return fs.WalkDir(r.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, readErr := fs.ReadFile(r.fsys, p)
		if readErr != nil {
			return fmt.Errorf("reading %s: %w", p, readErr)
		}
		return fn(&Resource{Path: p, MimeType: MimeType(p), Data: data})
	})
}
