package cookiestore

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// Node is one level of a cookie Jar. A scalar node holds the cookie value,
// any other node holds the next level keyed by bracket segment.
type Node struct {
	Value    string
	Children map[string]*Node
}

// IsScalar reports whether n holds a value instead of nested nodes.
func (n *Node) IsScalar() bool {
	return n.Children == nil
}

// MarshalJSON encodes scalars as strings and other nodes as objects.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.IsScalar() {
		return json.Marshal(n.Value)
	}
	return json.Marshal(n.Children)
}

// Jar is the cookie set of a request as a tree. Cookie names with brackets
// are expanded into nested levels, so the cookie "app[acct1][token]=abc"
// is reachable with Lookup("app", "acct1", "token").
type Jar map[string]*Node

// ParseRequest builds the Jar from every Cookie header of r.
func ParseRequest(r *http.Request) Jar {
	jar := Jar{}
	for _, line := range r.Header.Values("Cookie") {
		jar.parse(line)
	}
	return jar
}

// ParseJar builds a Jar from a Cookie header value. Values are URL decoded.
// When two cookies address the same node the first one wins, which matches
// the order in which clients send more specific cookies first.
func ParseJar(header string) Jar {
	jar := Jar{}
	jar.parse(header)
	return jar
}

func (j Jar) parse(header string) {
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, value, ok := strings.Cut(part, "=")
		if !ok || name == "" {
			continue
		}

		value = strings.TrimSpace(value)
		if len(value) > 1 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}

		j.insert(splitName(strings.TrimSpace(name)), value)
	}
}

func (j Jar) insert(path []string, value string) {
	top, ok := j[path[0]]
	if !ok {
		top = &Node{}
		if len(path) > 1 {
			top.Children = map[string]*Node{}
		} else {
			top.Value = value
		}
		j[path[0]] = top
	}

	if len(path) == 1 {
		return
	}

	n := top
	for i, seg := range path[1:] {
		if n.IsScalar() {
			return
		}

		last := i == len(path)-2
		child, ok := n.Children[seg]
		if !ok {
			child = &Node{}
			if last {
				child.Value = value
			} else {
				child.Children = map[string]*Node{}
			}
			n.Children[seg] = child
		}

		if last {
			return
		}
		n = child
	}
}

// splitName splits "a[b][c]" into ["a", "b", "c"]. Names that are not a
// base followed by one or more non-empty bracket segments are returned
// whole.
func splitName(name string) []string {
	open := strings.IndexByte(name, '[')
	if open <= 0 {
		return []string{name}
	}

	path := []string{name[:open]}
	rest := name[open:]
	for rest != "" {
		if rest[0] != '[' {
			return []string{name}
		}
		end := strings.IndexByte(rest, ']')
		if end <= 1 {
			return []string{name}
		}
		seg := rest[1:end]
		if strings.IndexByte(seg, '[') >= 0 {
			return []string{name}
		}
		path = append(path, seg)
		rest = rest[end+1:]
	}
	return path
}

// Node returns the node at path.
func (j Jar) Node(path ...string) (*Node, bool) {
	if len(path) == 0 {
		return nil, false
	}

	n, ok := j[path[0]]
	if !ok {
		return nil, false
	}

	for _, seg := range path[1:] {
		if n.IsScalar() {
			return nil, false
		}
		n, ok = n.Children[seg]
		if !ok {
			return nil, false
		}
	}
	return n, true
}

// Lookup returns the value at path. A path ending on a nested node has no
// value.
func (j Jar) Lookup(path ...string) (string, bool) {
	n, ok := j.Node(path...)
	if !ok || !n.IsScalar() {
		return "", false
	}
	return n.Value, true
}
