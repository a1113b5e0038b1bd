package cookiestore

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CookieName returns the name of the cookie holding key: basename[group][key].
func CookieName(basename, group, key string) string {
	return basename + "[" + group + "][" + key + "]"
}

// validName reports whether name can be sent in a Set-Cookie header.
// Brackets are allowed, unlike in net/http, since they carry the storage
// path.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if c := name[i]; c < 0x20 || c == 0x7f {
			return false
		}
	}
	return !strings.ContainsAny(name, "=,; \"")
}

// setCookie renders the Set-Cookie header value for name. A zero expires
// produces a session cookie; any other value is written as Expires, and a
// time that is not after now also adds Max-Age=0.
func (s *Store) setCookie(name, value string, expires time.Time) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(value))

	if s.path != "" {
		b.WriteString("; Path=")
		b.WriteString(s.path)
	}

	if s.domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(strings.TrimPrefix(s.domain, "."))
	}

	if !expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(expires.UTC().Format(http.TimeFormat))
		if !expires.After(s.now()) {
			b.WriteString("; Max-Age=0")
		} else {
			b.WriteString("; Max-Age=")
			b.WriteString(strconv.Itoa(maxAge(expires.Sub(s.now()))))
		}
	}

	if s.httpOnly {
		b.WriteString("; HttpOnly")
	}

	if s.secure {
		b.WriteString("; Secure")
	}

	switch s.sameSite {
	case http.SameSiteLaxMode:
		b.WriteString("; SameSite=Lax")
	case http.SameSiteStrictMode:
		b.WriteString("; SameSite=Strict")
	case http.SameSiteNoneMode:
		b.WriteString("; SameSite=None")
	}

	if s.partitioned {
		b.WriteString("; Partitioned")
	}

	return b.String()
}

// maxAge rounds d up to whole seconds. A cookie that has not expired yet
// never gets Max-Age=0, which clients treat as a delete.
func maxAge(d time.Duration) int {
	return max(int(math.Ceil(d.Seconds())), 1)
}
