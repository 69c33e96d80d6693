package capture

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"

	http "github.com/sardanioss/http"
	"golang.org/x/net/http/httpguts"

	"github.com/sardanioss/setcookie/cookie"
)

// defaultStatusLine is prepended to captures that start directly with
// header lines.
const defaultStatusLine = "HTTP/1.1 200 OK\r\n"

// ReadSetCookies reads an HTTP/1.x response head from r and returns its
// Set-Cookie values in the order received. The status line may be omitted.
// Values containing bytes that are not legal in a header field are skipped.
func ReadSetCookies(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	if prefix, _ := br.Peek(5); string(prefix) != "HTTP/" {
		br = bufio.NewReader(io.MultiReader(strings.NewReader(defaultStatusLine), br))
	}

	resp, err := http.ReadResponse(br, nil)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	defer resp.Body.Close()

	var values []string
	for _, v := range resp.Header["Set-Cookie"] {
		if !httpguts.ValidHeaderFieldValue(v) {
			continue
		}
		values = append(values, v)
	}
	return values, nil
}

// ParseFile reads the capture at path and parses each Set-Cookie header as
// a response to requestURL. A malformed header aborts the whole file.
func ParseFile(path string, requestURL *url.URL, p *cookie.Parser) ([]*cookie.Cookie, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	headers, err := ReadSetCookies(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cookies, err := p.ParseAll(headers, requestURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cookies, nil
}
