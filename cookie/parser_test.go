package cookie

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sardanioss/setcookie/httpdate"
)

var fixedNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func fixedParser(opts ...Option) *Parser {
	return NewParser(append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func TestParseBasics(t *testing.T) {
	u := mustURL(t, "https://example.com/a/b/page.html")

	tests := []struct {
		name     string
		header   string
		expected Cookie
	}{
		{
			name:   "defaults from url",
			header: "sid=abc",
			expected: Cookie{
				Name: "sid", Value: "abc", Domain: "example.com", Path: "/a/b",
			},
		},
		{
			name:   "all attributes",
			header: "sid=abc; Domain=.example.com; Path=/; Secure; HttpOnly; SameSite=Strict",
			expected: Cookie{
				Name: "sid", Value: "abc", Domain: ".example.com", Path: "/",
				Secure: true, HttpOnly: true, SameSite: "Strict",
			},
		},
		{
			name:   "case insensitive keys",
			header: "sid=abc; PATH=/x; SECURE; HttpOnly; DOMAIN=Example.COM",
			expected: Cookie{
				Name: "sid", Value: "abc", Domain: "Example.COM", Path: "/x",
				Secure: true, HttpOnly: true,
			},
		},
		{
			name:   "repeated semicolons",
			header: "name=value;;; path=/;; secure;;;",
			expected: Cookie{
				Name: "name", Value: "value", Domain: "example.com", Path: "/", Secure: true,
			},
		},
		{
			name:   "empty header",
			header: "",
			expected: Cookie{
				Name: EmptyCookieName, Value: "", Domain: "example.com", Path: "/a/b",
			},
		},
		{
			name:   "value only",
			header: "value_only",
			expected: Cookie{
				Name: EmptyCookieName, Value: "value_only", Domain: "example.com", Path: "/a/b",
			},
		},
		{
			name:   "blank name",
			header: "  =value",
			expected: Cookie{
				Name: EmptyCookieName, Value: "value", Domain: "example.com", Path: "/a/b",
			},
		},
		{
			name:   "equals in value",
			header: "name=value=with=equals",
			expected: Cookie{
				Name: "name", Value: "value=with=equals", Domain: "example.com", Path: "/a/b",
			},
		},
		{
			name:   "quoted value kept",
			header: `name="quoted value"`,
			expected: Cookie{
				Name: "name", Value: `"quoted value"`, Domain: "example.com", Path: "/a/b",
			},
		},
		{
			name:   "empty domain and path fall back",
			header: "a=b; domain=; path=",
			expected: Cookie{
				Name: "a", Value: "b", Domain: "example.com", Path: "/a/b",
			},
		},
		{
			name:   "flag values ignored",
			header: "a=b; secure=false; httponly=0",
			expected: Cookie{
				Name: "a", Value: "b", Domain: "example.com", Path: "/a/b",
				Secure: true, HttpOnly: true,
			},
		},
		{
			name:   "samesite none recorded without secure",
			header: "a=b; SameSite=None",
			expected: Cookie{
				Name: "a", Value: "b", Domain: "example.com", Path: "/a/b", SameSite: "None",
			},
		},
		{
			name:   "unknown samesite kept verbatim",
			header: "a=b; SameSite=whatever",
			expected: Cookie{
				Name: "a", Value: "b", Domain: "example.com", Path: "/a/b", SameSite: "whatever",
			},
		},
		{
			name:   "unknown attributes ignored",
			header: "a=b; Version=1; Comment=hi; Priority=High; Partitioned",
			expected: Cookie{
				Name: "a", Value: "b", Domain: "example.com", Path: "/a/b",
			},
		},
		{
			name:   "last path wins",
			header: "a=b; path=/one; path=/two",
			expected: Cookie{
				Name: "a", Value: "b", Domain: "example.com", Path: "/two",
			},
		},
	}

	p := fixedParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.header, u)
			require.NoError(t, err)

			tt.expected.Raw = tt.header
			assert.Equal(t, &tt.expected, got)
		})
	}
}

func TestParseDefaultsFromURL(t *testing.T) {
	tests := []struct {
		url    string
		domain string
		path   string
	}{
		{"http://h/", "h", "/"},
		{"http://h", "h", "/"},
		{"http://h/a/b/c/page.html", "h", "/a/b/c"},
		{"http://h:8080/x", "h", "/"},
		{"file:///p/f.html", LocalFilesystemDomain, "/p"},
	}
	for _, tt := range tests {
		c, err := Parse("a=b", mustURL(t, tt.url), DefaultPolicy{})
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.domain, c.Domain, tt.url)
		assert.Equal(t, tt.path, c.Path, tt.url)
	}
}

func TestParseMaxAge(t *testing.T) {
	u := mustURL(t, "http://example.com/")
	p := fixedParser()

	c, err := p.Parse("name=value; max-age=0", u)
	require.NoError(t, err)
	assert.False(t, c.IsSession())
	assert.False(t, c.Expires.After(fixedNow))
	assert.True(t, c.ExpiredAt(fixedNow))

	c, err = p.Parse("name=value; max-age=-1", u)
	require.NoError(t, err)
	assert.True(t, c.IsSession())
	assert.True(t, c.Expires.IsZero())

	c, err = p.Parse("name=value; Max-Age=3600", u)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(time.Hour), c.Expires)

	c, err = p.Parse("name=value; max-age=99999999999999999", u)
	require.NoError(t, err)
	assert.True(t, c.Expires.After(fixedNow.AddDate(200, 0, 0)))
}

func TestParseMaxAgeWinsOverExpires(t *testing.T) {
	u := mustURL(t, "http://example.com/")
	p := fixedParser()
	nextYear := httpdate.FormatDate(fixedNow.AddDate(1, 0, 0))

	for _, header := range []string{
		"name=value; expires=" + nextYear + "; max-age=3600",
		"name=value; max-age=3600; expires=" + nextYear,
	} {
		c, err := p.Parse(header, u)
		require.NoError(t, err, header)
		assert.Equal(t, fixedNow.Add(time.Hour), c.Expires, header)
	}

	// a bad Expires is never looked at once Max-Age is present
	c, err := p.Parse("name=value; expires=not-a-date; max-age=-5", u)
	require.NoError(t, err)
	assert.True(t, c.IsSession())
}

func TestParseMaxAgeWallClock(t *testing.T) {
	before := time.Now()
	c, err := Parse("name=value; max-age=3600", mustURL(t, "http://h/"), nil)
	after := time.Now()
	require.NoError(t, err)

	assert.False(t, c.Expires.Before(before.Add(time.Hour)))
	assert.False(t, c.Expires.After(after.Add(time.Hour)))
}

func TestParseExpires(t *testing.T) {
	u := mustURL(t, "http://example.com/")
	expected := time.Date(2004, time.November, 13, 0, 0, 0, 0, time.UTC)

	for _, v := range []string{
		"Sat, 13 Nov 2004 00:00:00 GMT",
		"Saturday, 13-Nov-04 00:00:00 GMT",
		"Sat Nov 13 00:00:00 2004",
		"'Sat, 13 Nov 2004 00:00:00 GMT'",
	} {
		c, err := fixedParser().Parse("a=b; Expires="+v, u)
		require.NoError(t, err, v)
		assert.True(t, expected.Equal(c.Expires), "%s gave %v", v, c.Expires)
		assert.True(t, c.ExpiredAt(fixedNow))
	}
}

func TestParseExpiresNamedZone(t *testing.T) {
	u := mustURL(t, "http://example.com/")
	expected := time.Date(2004, time.November, 13, 5, 0, 0, 0, time.UTC)

	for _, v := range []string{
		"Sat, 13 Nov 2004 00:00:00 EST",
		"Sat, 13 Nov 2004 00:00:00 -0500",
		"Fri, 12 Nov 2004 21:00:00 PST",
	} {
		c, err := fixedParser().Parse("a=b; Expires="+v, u)
		require.NoError(t, err, v)
		assert.True(t, expected.Equal(c.Expires), "%s gave %v", v, c.Expires)
	}
}

func TestWithClockNil(t *testing.T) {
	p := NewParser(WithClock(nil))
	before := time.Now()
	c, err := p.Parse("a=b; max-age=60", mustURL(t, "http://h/"))
	require.NoError(t, err)
	assert.False(t, c.Expires.Before(before.Add(time.Minute)))
	assert.False(t, c.IsSession())
}

func TestParseErrors(t *testing.T) {
	u := mustURL(t, "http://example.com/")

	tests := []struct {
		name   string
		header string
		reason Reason
		target error
	}{
		{"invalid max-age", "name=value; max-age=invalid", ReasonInvalidMaxAge, ErrInvalidMaxAge},
		{"max-age without value", "name=value; max-age", ReasonInvalidMaxAge, ErrInvalidMaxAge},
		{"fractional max-age", "name=value; max-age=1.5", ReasonInvalidMaxAge, ErrInvalidMaxAge},
		{"invalid expires", "name=value; expires=not-a-date", ReasonInvalidExpires, ErrInvalidExpires},
		{"empty expires", "name=value; expires=", ReasonInvalidExpires, ErrInvalidExpires},
		{"unknown zone", "name=value; expires=Sat, 13 Nov 2004 00:00:00 XYZ", ReasonInvalidExpires, ErrInvalidExpires},
		{"zero instant", "name=value; expires=Mon, 01 Jan 0001 00:00:00 GMT", ReasonInvalidExpires, ErrInvalidExpires},
		{"zero instant asctime", "name=value; expires=Mon Jan  1 00:00:00 0001", ReasonInvalidExpires, ErrInvalidExpires},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := fixedParser().Parse(tt.header, u)
			require.Error(t, err)
			assert.Nil(t, c)

			assert.ErrorIs(t, err, ErrMalformed)
			assert.ErrorIs(t, err, tt.target)

			reason, ok := ReasonOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestParseNullInput(t *testing.T) {
	c, err := ParseNullable(nil, mustURL(t, "http://h/"), DefaultPolicy{})
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrNullInput)
	assert.False(t, errors.Is(err, ErrInvalidMaxAge))

	c, err = NewParser().Parse("a=b", nil)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrNullInput)

	header := "a=b"
	c, err = ParseNullable(&header, mustURL(t, "http://h/"), DefaultPolicy{})
	require.NoError(t, err)
	assert.Equal(t, "a", c.Name)
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "NullInput", ReasonNullInput.String())
	assert.Equal(t, "InvalidMaxAge", ReasonInvalidMaxAge.String())
	assert.Equal(t, "InvalidExpires", ReasonInvalidExpires.String())
	assert.Equal(t, "Reason(42)", Reason(42).String())

	_, ok := ReasonOf(errors.New("other"))
	assert.False(t, ok)
}

func TestParseAll(t *testing.T) {
	u := mustURL(t, "http://example.com/")
	p := fixedParser()

	cookies, err := p.ParseAll([]string{"a=1", "b=2; Secure"}, u)
	require.NoError(t, err)
	require.Len(t, cookies, 2)
	assert.Equal(t, "a", cookies[0].Name)
	assert.True(t, cookies[1].Secure)

	cookies, err = p.ParseAll([]string{"a=1", "b=2; max-age=x"}, u)
	assert.Nil(t, cookies)
	assert.ErrorIs(t, err, ErrInvalidMaxAge)
}

type recordingPolicy struct {
	seen []string
}

func (r *recordingPolicy) PolicyName() string { return "recording" }

func (r *recordingPolicy) Adjust(c *Cookie, attrs Attributes) {
	r.seen = append(r.seen, c.Name)
	if v, ok := attrs.Get("priority"); ok {
		c.SameSite = "priority:" + v
	}
}

func TestPolicyHook(t *testing.T) {
	rec := &recordingPolicy{}
	p := fixedParser(WithPolicy(rec))
	assert.Equal(t, rec, p.Policy())

	c, err := p.Parse("a=b; Priority=High", mustURL(t, "http://h/"))
	require.NoError(t, err)
	assert.Equal(t, "priority:High", c.SameSite)

	_, err = p.Parse("a=b; max-age=x", mustURL(t, "http://h/"))
	require.Error(t, err)
	assert.Equal(t, []string{"a"}, rec.seen, "policy must not see rejected cookies")

	assert.Equal(t, DefaultPolicy{}, NewParser(WithPolicy(nil)).Policy())
}

func TestParserLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New()
	logger.SetOutput(&buf)
	logger.SetLevel(log.DebugLevel)

	p := fixedParser(WithLogger(logger))
	_, err := p.Parse("a=b", mustURL(t, "http://h/"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "parsed Set-Cookie header")

	_, err = p.Parse("a=b; expires=soon", mustURL(t, "http://h/"))
	require.Error(t, err)
	assert.Contains(t, buf.String(), "reason=InvalidExpires")
}

func TestParseConcurrent(t *testing.T) {
	p := NewParser()
	u := mustURL(t, "http://example.com/a/b")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c, err := p.Parse("a=b; path=/p; max-age=10", u)
				if err != nil || c.Path != "/p" {
					t.Errorf("unexpected result %v, %v", c, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestCookieHelpers(t *testing.T) {
	c := &Cookie{
		Name: "sid", Value: "abc", Domain: "example.com", Path: "/",
		Expires:  time.Date(2004, time.November, 13, 0, 0, 0, 0, time.UTC),
		Secure:   true,
		HttpOnly: true,
		SameSite: "Lax",
	}
	assert.Equal(t, "sid=abc", c.String())
	assert.Equal(t,
		"sid=abc; Domain=example.com; Path=/; Expires=Sat, 13 Nov 2004 00:00:00 GMT; Secure; HttpOnly; SameSite=Lax",
		c.HeaderValue())
	assert.True(t, c.ExpiredAt(fixedNow))
	assert.False(t, c.ExpiredAt(c.Expires.Add(-time.Second)))

	session := &Cookie{Name: "a", Value: "b"}
	assert.True(t, session.IsSession())
	assert.False(t, session.ExpiredAt(fixedNow))
	assert.Equal(t, "a=b", session.HeaderValue())
}

func TestHeaderValueReparses(t *testing.T) {
	u := mustURL(t, "http://example.com/")
	orig, err := fixedParser().Parse("sid=abc; Domain=example.com; Path=/x; Expires=Sat, 13 Nov 2004 00:00:00 GMT; Secure; SameSite=Lax", u)
	require.NoError(t, err)

	again, err := fixedParser().Parse(orig.HeaderValue(), u)
	require.NoError(t, err)
	again.Raw = orig.Raw
	assert.Equal(t, orig, again)
}
