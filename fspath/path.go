// Package fspath builds immutable identifiers for file-system entries.
// Nothing in this package touches the file system.
package fspath

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNotFileURI      = errors.New("uri scheme is not \"file\"")
	ErrNotHierarchical = errors.New("uri is not hierarchical")
)

// Path locates a file or a directory. The zero value is the empty path.
//
// Both '/' and '\' are accepted as separators. A path may start with a
// drive ("C:") or a UNC share ("//server/share").
type Path struct {
	volume string
	abs    bool
	elems  []string
}

// Get joins first and more into a Path. Empty strings are skipped.
func Get(first string, more ...string) Path {
	return parse(first).Join(more...)
}

// FromURI converts a file URI such as file:///home/foo.txt,
// file:///C:/data/foo.txt or file://server/share/foo.txt into a Path.
func FromURI(uri string) (Path, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Path{}, errors.Wrapf(err, "parse uri %q", uri)
	}
	if !strings.EqualFold(u.Scheme, "file") {
		return Path{}, errors.Wrapf(ErrNotFileURI, "uri %q", uri)
	}
	if u.Opaque != "" {
		return Path{}, errors.Wrapf(ErrNotHierarchical, "uri %q", uri)
	}

	p := u.Path
	if u.Host != "" && u.Host != "localhost" {
		return parse("//" + u.Host + p), nil
	}
	// file:///C:/foo keeps a leading slash in front of the drive
	if len(p) >= 3 && p[0] == '/' && isDrive(p[1:]) {
		p = p[1:]
	}
	return parse(p), nil
}

func parse(s string) Path {
	s = strings.ReplaceAll(s, `\`, "/")

	var p Path
	if strings.HasPrefix(s, "//") {
		parts := split(s)
		if len(parts) >= 2 {
			p.volume = "//" + parts[0] + "/" + parts[1]
			p.abs = true
			p.elems = parts[2:]
			return p
		}
	}
	if isDrive(s) {
		p.volume = s[:2]
		s = s[2:]
	}
	p.abs = strings.HasPrefix(s, "/")
	p.elems = split(s)
	return p
}

func isDrive(s string) bool {
	if len(s) < 2 || s[1] != ':' {
		return false
	}
	c := s[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func split(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '/' })
}

// Join returns a new Path with elem appended. Roots inside elem are ignored.
func (p Path) Join(elem ...string) Path {
	q := p.clone()
	for _, e := range elem {
		q.elems = append(q.elems, split(strings.ReplaceAll(e, `\`, "/"))...)
	}
	return q
}

func (p Path) clone() Path {
	q := p
	q.elems = append([]string(nil), p.elems...)
	return q
}

// Volume returns the drive or UNC share, or "".
func (p Path) Volume() string {
	return p.volume
}

// IsAbs reports whether p starts at a root.
func (p Path) IsAbs() bool {
	return p.abs
}

// IsEmpty reports whether p has neither a root nor elements.
func (p Path) IsEmpty() bool {
	return p.volume == "" && !p.abs && len(p.elems) == 0
}

// Elements returns a copy of the name elements of p, root excluded.
func (p Path) Elements() []string {
	return append([]string(nil), p.elems...)
}

// Base returns the last element, or "" for a root or empty path.
func (p Path) Base() string {
	if len(p.elems) == 0 {
		return ""
	}
	return p.elems[len(p.elems)-1]
}

// Parent returns p without its last element.
// ok is false when p has no element to drop.
func (p Path) Parent() (parent Path, ok bool) {
	if len(p.elems) == 0 {
		return Path{}, false
	}
	q := p.clone()
	q.elems = q.elems[:len(q.elems)-1]
	if q.IsEmpty() {
		return Path{}, false
	}
	return q, true
}

// Normalize drops "." elements and resolves ".." against the preceding element.
// Leading ".." of a relative path are kept, those of an absolute path are dropped.
func (p Path) Normalize() Path {
	q := p
	q.elems = make([]string, 0, len(p.elems))
	for _, e := range p.elems {
		switch {
		case e == ".":
		case e == ".." && len(q.elems) > 0 && q.elems[len(q.elems)-1] != "..":
			q.elems = q.elems[:len(q.elems)-1]
		case e == ".." && (p.abs || p.volume != ""):
		default:
			q.elems = append(q.elems, e)
		}
	}
	return q
}

// Equal reports whether p and o name the same entry textually.
func (p Path) Equal(o Path) bool {
	if p.volume != o.volume || p.abs != o.abs || len(p.elems) != len(o.elems) {
		return false
	}
	for i := range p.elems {
		if p.elems[i] != o.elems[i] {
			return false
		}
	}
	return true
}

// String returns p with '/' separators.
func (p Path) String() string {
	return p.Native('/')
}

// Native returns p with sep as separator.
func (p Path) Native(sep rune) string {
	unc := strings.HasPrefix(p.volume, "//")
	var sb strings.Builder
	sb.WriteString(p.volume)
	if (p.abs && !unc) || (unc && len(p.elems) > 0) {
		sb.WriteRune('/')
	}
	sb.WriteString(strings.Join(p.elems, "/"))
	s := sb.String()
	if sep != '/' {
		s = strings.ReplaceAll(s, "/", string(sep))
	}
	return s
}
