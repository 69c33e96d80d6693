package cookie

import (
	"io"
	"math"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sardanioss/setcookie/httpdate"
)

// maxAgeLimit keeps now+Max-Age inside time.Duration's range
const maxAgeLimit = math.MaxInt64 / int64(time.Second)

// Policy lets a browser identity adjust a cookie before it is returned.
// Adjust sees the fully resolved cookie and the attributes it came from.
type Policy interface {
	PolicyName() string
	Adjust(c *Cookie, attrs Attributes)
}

// DefaultPolicy applies no browser-specific behavior
type DefaultPolicy struct{}

func (DefaultPolicy) PolicyName() string { return "default" }

func (DefaultPolicy) Adjust(*Cookie, Attributes) {}

// Parser turns Set-Cookie headers into Cookies. A Parser holds no mutable
// state and is safe for concurrent use.
type Parser struct {
	policy Policy
	now    func() time.Time
	logger log.FieldLogger
}

// Option configures a Parser
type Option func(*Parser)

// WithPolicy sets the browser policy. nil restores DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(ps *Parser) {
		if p == nil {
			p = DefaultPolicy{}
		}
		ps.policy = p
	}
}

// WithClock sets the time source used for Max-Age. nil restores time.Now.
func WithClock(now func() time.Time) Option {
	return func(ps *Parser) {
		if now == nil {
			now = time.Now
		}
		ps.now = now
	}
}

// WithLogger sets a logger that receives a debug entry per parsed header
func WithLogger(l log.FieldLogger) Option {
	return func(ps *Parser) {
		ps.logger = l
	}
}

// NewParser creates a Parser. Without options it uses DefaultPolicy, the
// wall clock and a logger that discards everything.
func NewParser(opts ...Option) *Parser {
	discard := log.New()
	discard.SetOutput(io.Discard)

	p := &Parser{
		policy: DefaultPolicy{},
		now:    time.Now,
		logger: discard,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Policy returns the parser's browser policy
func (p *Parser) Policy() Policy {
	return p.policy
}

// Parse parses a single Set-Cookie header value received in response to
// requestURL. On error no cookie is returned.
func (p *Parser) Parse(header string, requestURL *url.URL) (*Cookie, error) {
	return p.ParseNullable(&header, requestURL)
}

// ParseNullable is Parse for a header that may be missing altogether. A nil
// header or URL fails with ReasonNullInput.
func (p *Parser) ParseNullable(header *string, requestURL *url.URL) (*Cookie, error) {
	if header == nil {
		return nil, &MalformedError{Reason: ReasonNullInput}
	}
	if requestURL == nil {
		return nil, &MalformedError{Reason: ReasonNullInput, Attribute: "url"}
	}

	toks := Tokenize(*header)
	attrs := toks.AttributeMap()

	c := &Cookie{
		Name:   toks.Name,
		Value:  toks.Value,
		Domain: attrOrDefault(attrs, "domain", requestURL, DefaultDomain),
		Path:   attrOrDefault(attrs, "path", requestURL, DefaultPath),
		Raw:    *header,
	}
	c.Secure = attrs.Has("secure")
	c.HttpOnly = attrs.Has("httponly")
	if v, ok := attrs.Get("samesite"); ok {
		c.SameSite = v
	}

	expires, err := p.resolveExpires(attrs)
	if err != nil {
		reason, _ := ReasonOf(err)
		p.logger.WithFields(log.Fields{
			"header": *header,
			"reason": reason.String(),
		}).Debug("rejected Set-Cookie header")
		return nil, err
	}
	c.Expires = expires

	p.policy.Adjust(c, attrs)

	p.logger.WithFields(log.Fields{
		"name":    c.Name,
		"domain":  c.Domain,
		"path":    c.Path,
		"session": c.IsSession(),
		"policy":  p.policy.PolicyName(),
	}).Debug("parsed Set-Cookie header")
	return c, nil
}

// ParseAll parses several Set-Cookie headers from the same response. It stops
// at the first malformed header.
func (p *Parser) ParseAll(headers []string, requestURL *url.URL) ([]*Cookie, error) {
	cookies := make([]*Cookie, 0, len(headers))
	for _, h := range headers {
		c, err := p.Parse(h, requestURL)
		if err != nil {
			return nil, err
		}
		cookies = append(cookies, c)
	}
	return cookies, nil
}

// resolveExpires applies Max-Age, then Expires. Max-Age wins whenever it is
// present, wherever it appears in the header.
func (p *Parser) resolveExpires(attrs Attributes) (time.Time, error) {
	if v, ok := attrs.Get("max-age"); ok {
		secs, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return time.Time{}, &MalformedError{
				Reason:    ReasonInvalidMaxAge,
				Attribute: "max-age",
				Value:     v,
				Err:       err,
			}
		}
		if secs < 0 {
			return time.Time{}, nil
		}
		if secs > maxAgeLimit {
			secs = maxAgeLimit
		}
		return p.now().Add(time.Duration(secs) * time.Second), nil
	}

	if v, ok := attrs.Get("expires"); ok {
		t, ok := httpdate.ParseDate(v)
		// the zero time marks a session cookie, so it cannot be an expiry
		if !ok || t.IsZero() {
			return time.Time{}, &MalformedError{
				Reason:    ReasonInvalidExpires,
				Attribute: "expires",
				Value:     v,
			}
		}
		return t, nil
	}

	return time.Time{}, nil
}

// attrOrDefault returns the attribute value verbatim when it is non-empty
func attrOrDefault(attrs Attributes, key string, u *url.URL, def func(*url.URL) string) string {
	if v, ok := attrs.Get(key); ok && v != "" {
		return v
	}
	return def(u)
}

// Parse parses header with a one-off Parser using policy.
func Parse(header string, requestURL *url.URL, policy Policy) (*Cookie, error) {
	return NewParser(WithPolicy(policy)).Parse(header, requestURL)
}

// ParseNullable parses an optional header with a one-off Parser using policy.
func ParseNullable(header *string, requestURL *url.URL, policy Policy) (*Cookie, error) {
	return NewParser(WithPolicy(policy)).ParseNullable(header, requestURL)
}
