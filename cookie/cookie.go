// Package cookie parses Set-Cookie header values into Cookie records.
//
// Parsing is tolerant of the malformed headers seen in the wild: stray or
// repeated semicolons, missing names and quoted values are all accepted.
// Only three conditions abort a parse: a missing header, a Max-Age that is
// not an integer and an Expires that matches none of the supported date
// formats (see package httpdate).
//
// Basic usage:
//
//	u, _ := url.Parse("https://example.com/account/login")
//	c, err := cookie.Parse("sid=abc; Path=/; HttpOnly", u, cookie.DefaultPolicy{})
//	if err != nil {
//	    var merr *cookie.MalformedError
//	    if errors.As(err, &merr) {
//	        log.Println(merr.Reason)
//	    }
//	}
package cookie

import (
	"strconv"
	"strings"
	"time"

	"github.com/sardanioss/setcookie/httpdate"
)

const (
	// EmptyCookieName is used as the name of a cookie whose header carried
	// no usable name, such as "value_only" or "=value".
	EmptyCookieName = "SETCOOKIE_EMPTY_NAME"

	// LocalFilesystemDomain is the domain given to cookies set by file:// URLs.
	LocalFilesystemDomain = "LOCAL_FILESYSTEM"
)

// Cookie represents a parsed Set-Cookie header
type Cookie struct {
	Name     string
	Value    string // verbatim, surrounding quotes kept
	Domain   string
	Path     string
	Expires  time.Time // zero for a session cookie
	Secure   bool
	HttpOnly bool
	SameSite string // "Strict", "Lax", "None" or whatever the server sent
	Raw      string // original Set-Cookie header
}

// IsSession reports whether the cookie has no expiry. The parser never
// produces a zero Expires for a cookie that had one.
func (c *Cookie) IsSession() bool {
	return c.Expires.IsZero()
}

// ExpiredAt reports whether the cookie is expired at t. Session cookies never expire.
func (c *Cookie) ExpiredAt(t time.Time) bool {
	if c.IsSession() {
		return false
	}
	return !t.Before(c.Expires)
}

// String returns the cookie in "name=value" format for the Cookie header
func (c *Cookie) String() string {
	return c.Name + "=" + c.Value
}

// HeaderValue renders the cookie back into Set-Cookie form. Expiry is written
// as an Expires attribute, never as Max-Age.
func (c *Cookie) HeaderValue() string {
	var b strings.Builder
	b.WriteString(c.String())
	if c.Domain != "" {
		b.WriteString("; Domain=" + c.Domain)
	}
	if c.Path != "" {
		b.WriteString("; Path=" + c.Path)
	}
	if !c.Expires.IsZero() {
		b.WriteString("; Expires=" + httpdate.FormatDate(c.Expires))
	}
	if c.Secure {
		b.WriteString("; Secure")
	}
	if c.HttpOnly {
		b.WriteString("; HttpOnly")
	}
	if c.SameSite != "" {
		b.WriteString("; SameSite=" + c.SameSite)
	}
	return b.String()
}

// GoString is used by %#v and keeps test failures readable.
func (c *Cookie) GoString() string {
	exp := "session"
	if !c.Expires.IsZero() {
		exp = c.Expires.UTC().Format(time.RFC3339)
	}
	return "cookie.Cookie{" + strconv.Quote(c.Name) + "=" + strconv.Quote(c.Value) +
		" domain=" + c.Domain + " path=" + c.Path + " expires=" + exp + "}"
}
