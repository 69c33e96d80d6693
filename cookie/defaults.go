package cookie

import (
	"net/url"
	"strings"
)

// DefaultDomain returns the domain a cookie gets when the header carries no
// Domain attribute: the request hostname without port, or
// LocalFilesystemDomain for file URLs.
func DefaultDomain(u *url.URL) string {
	if strings.EqualFold(u.Scheme, "file") {
		return LocalFilesystemDomain
	}
	return u.Hostname()
}

// DefaultPath returns the directory of the request path, e.g.
// "/a/b/c/page.html" gives "/a/b/c". An empty or root path gives "/".
func DefaultPath(u *url.URL) string {
	p := u.Path
	if p == "" || p == "/" {
		return "/"
	}
	idx := strings.LastIndex(p, "/")
	if idx <= 0 {
		return "/"
	}
	return p[:idx]
}
