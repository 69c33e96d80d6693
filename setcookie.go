// Package setcookie parses Set-Cookie headers the way a browser would.
//
// setcookie turns a raw Set-Cookie value and the URL it was received from
// into a fully-populated cookie record, filling in Domain and Path from the
// URL when the header leaves them out and resolving Max-Age and Expires
// (in RFC 1123, RFC 1036 or asctime form) into a single expiry.
//
// Basic usage:
//
//	c, err := setcookie.Parse("sid=abc; Path=/; Max-Age=3600", "https://example.com/login", "chrome-143")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(c.Name, c.Expires)
//
// With options:
//
//	p := setcookie.New("firefox-133",
//	    setcookie.WithClock(func() time.Time { return fixed }),
//	)
//	cookies, err := p.ParseAll(headers, "https://example.com/")
package setcookie

import (
	"fmt"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sardanioss/setcookie/cookie"
	"github.com/sardanioss/setcookie/fingerprint"
	"github.com/sardanioss/setcookie/httpdate"
)

// Cookie is a parsed Set-Cookie header
type Cookie = cookie.Cookie

const (
	EmptyCookieName       = cookie.EmptyCookieName
	LocalFilesystemDomain = cookie.LocalFilesystemDomain
)

// Parser parses headers as a given browser preset
type Parser struct {
	inner  *cookie.Parser
	preset *fingerprint.Preset
}

// Option configures the Parser
type Option func(*parserConfig)

type parserConfig struct {
	clock  func() time.Time
	logger log.FieldLogger
}

// WithClock sets the time source used to resolve Max-Age
func WithClock(now func() time.Time) Option {
	return func(c *parserConfig) {
		c.clock = now
	}
}

// WithLogger sets a logger for per-header debug output
func WithLogger(l log.FieldLogger) Option {
	return func(c *parserConfig) {
		c.logger = l
	}
}

// New creates a Parser for the named browser preset. Unknown names fall
// back to fingerprint.DefaultPreset.
//
// Available presets are listed by fingerprint.Available, e.g.
//   - "chrome-143" (default)
//   - "firefox-133"
//   - "safari-18"
func New(preset string, opts ...Option) *Parser {
	cfg := &parserConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	p := fingerprint.Get(preset)
	copts := []cookie.Option{cookie.WithPolicy(p)}
	if cfg.clock != nil {
		copts = append(copts, cookie.WithClock(cfg.clock))
	}
	if cfg.logger != nil {
		copts = append(copts, cookie.WithLogger(cfg.logger))
	}

	return &Parser{
		inner:  cookie.NewParser(copts...),
		preset: p,
	}
}

// Preset returns the browser preset the parser runs as
func (p *Parser) Preset() *fingerprint.Preset {
	return p.preset
}

// Parse parses one Set-Cookie header received from requestURL
func (p *Parser) Parse(header, requestURL string) (*Cookie, error) {
	u, err := url.Parse(requestURL)
	if err != nil {
		return nil, fmt.Errorf("setcookie: invalid request url: %w", err)
	}
	return p.inner.Parse(header, u)
}

// ParseAll parses every Set-Cookie header of one response
func (p *Parser) ParseAll(headers []string, requestURL string) ([]*Cookie, error) {
	u, err := url.Parse(requestURL)
	if err != nil {
		return nil, fmt.Errorf("setcookie: invalid request url: %w", err)
	}
	return p.inner.ParseAll(headers, u)
}

// Parse parses one Set-Cookie header as the named browser preset
func Parse(header, requestURL, preset string) (*Cookie, error) {
	return New(preset).Parse(header, requestURL)
}

// ParseDate parses an HTTP date in RFC 1123, RFC 1036 or asctime form
func ParseDate(text string) (time.Time, bool) {
	return httpdate.ParseDate(text)
}

// FormatDate renders t as an RFC 1123 date in GMT
func FormatDate(t time.Time) string {
	return httpdate.FormatDate(t)
}
