// Package fingerprint defines the browser identities a cookie parser can
// run as. Each Preset names a browser release, the TLS ClientHello and
// User-Agent that release sends, and implements cookie.Policy.
package fingerprint

import (
	"fmt"
	"runtime"
	"sort"

	tls "github.com/sardanioss/utls"

	"github.com/sardanioss/setcookie/cookie"
)

// DefaultPreset is returned by Get for unknown names
const DefaultPreset = "chrome-143"

// Family groups presets by browser engine
type Family string

const (
	FamilyChrome  Family = "chrome"
	FamilyFirefox Family = "firefox"
	FamilySafari  Family = "safari"
)

// Platform is the operating system a preset claims to run on
type Platform struct {
	Name      string // "windows", "linux" or "macos"
	uaOS      string // User-Agent OS token for Chrome and Safari
	firefoxOS string // Firefox spells macOS differently and appends rv:
	chrome143 tls.ClientHelloID
}

var (
	Windows = Platform{
		Name:      "windows",
		uaOS:      "(Windows NT 10.0; Win64; x64)",
		firefoxOS: "(Windows NT 10.0; Win64; x64; rv:%d.0)",
		chrome143: tls.HelloChrome_143_Windows,
	}
	Linux = Platform{
		Name:      "linux",
		uaOS:      "(X11; Linux x86_64)",
		firefoxOS: "(X11; Linux x86_64; rv:%d.0)",
		chrome143: tls.HelloChrome_143_Linux,
	}
	MacOS = Platform{
		Name:      "macos",
		uaOS:      "(Macintosh; Intel Mac OS X 10_15_7)",
		firefoxOS: "(Macintosh; Intel Mac OS X 10.15; rv:%d.0)",
		chrome143: tls.HelloChrome_143_macOS,
	}
)

// HostPlatform maps runtime.GOOS onto a Platform. Anything that is not
// Windows or macOS reports as Linux.
func HostPlatform() Platform {
	switch runtime.GOOS {
	case "windows":
		return Windows
	case "darwin":
		return MacOS
	default:
		return Linux
	}
}

// Preset represents a browser identity
type Preset struct {
	Name              string
	Family            Family
	Platform          string
	ClientHelloID     tls.ClientHelloID // TCP/TLS
	QUICClientHelloID tls.ClientHelloID // zero when the release has no HTTP/3 profile
	UserAgent         string
}

var _ cookie.Policy = (*Preset)(nil)

// PolicyName implements cookie.Policy
func (p *Preset) PolicyName() string {
	return p.Name
}

// Adjust implements cookie.Policy. Every supported browser currently parses
// Set-Cookie the same way, so the cookie is left untouched.
func (p *Preset) Adjust(*cookie.Cookie, cookie.Attributes) {}

// SupportsHTTP3 reports whether the preset carries a QUIC ClientHello
func (p *Preset) SupportsHTTP3() bool {
	return p.QUICClientHelloID.Client != ""
}

// ClientHello is the "Client-Version" label of the TLS ClientHello
func (p *Preset) ClientHello() string {
	return helloLabel(p.ClientHelloID)
}

// QUICClientHello is ClientHello for QUIC, empty without HTTP/3 support
func (p *Preset) QUICClientHello() string {
	if !p.SupportsHTTP3() {
		return ""
	}
	return helloLabel(p.QUICClientHelloID)
}

func helloLabel(id tls.ClientHelloID) string {
	return id.Client + "-" + id.Version
}

func chrome(name string, major int, pl Platform, hello, quic tls.ClientHelloID) *Preset {
	return &Preset{
		Name:              name,
		Family:            FamilyChrome,
		Platform:          pl.Name,
		ClientHelloID:     hello,
		QUICClientHelloID: quic,
		UserAgent: fmt.Sprintf("Mozilla/5.0 %s AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.0.0 Safari/537.36",
			pl.uaOS, major),
	}
}

func chrome143(name string, pl Platform) func() *Preset {
	return func() *Preset {
		return chrome(name, 143, pl, pl.chrome143, tls.HelloChrome_143_QUIC)
	}
}

func firefox(name string, major int, pl Platform, hello tls.ClientHelloID) *Preset {
	return &Preset{
		Name:          name,
		Family:        FamilyFirefox,
		Platform:      pl.Name,
		ClientHelloID: hello,
		UserAgent: fmt.Sprintf("Mozilla/5.0 %s Gecko/20100101 Firefox/%d.0",
			fmt.Sprintf(pl.firefoxOS, major), major),
	}
}

// presets builds each named preset; unpinned entries follow HostPlatform
var presets = map[string]func() *Preset{
	"chrome-131": func() *Preset {
		return chrome("chrome-131", 131, HostPlatform(), tls.HelloChrome_131, tls.ClientHelloID{})
	},
	"chrome-133": func() *Preset {
		return chrome("chrome-133", 133, HostPlatform(), tls.HelloChrome_133, tls.ClientHelloID{})
	},
	"chrome-143": func() *Preset {
		return chrome143("chrome-143", HostPlatform())()
	},
	"chrome-143-windows": chrome143("chrome-143-windows", Windows),
	"chrome-143-linux":   chrome143("chrome-143-linux", Linux),
	"chrome-143-macos":   chrome143("chrome-143-macos", MacOS),
	"firefox-133": func() *Preset {
		return firefox("firefox-133", 133, HostPlatform(), tls.HelloFirefox_120)
	},
	// Safari only ships on macOS
	"safari-18": func() *Preset {
		return &Preset{
			Name:          "safari-18",
			Family:        FamilySafari,
			Platform:      MacOS.Name,
			ClientHelloID: tls.HelloSafari_16_0,
			UserAgent:     "Mozilla/5.0 " + MacOS.uaOS + " AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.0 Safari/605.1.15",
		}
	},
}

// Lookup returns the named preset and whether it exists
func Lookup(name string) (*Preset, bool) {
	build, ok := presets[name]
	if !ok {
		return nil, false
	}
	return build(), true
}

// Get returns a preset by name, or the DefaultPreset for unknown names
func Get(name string) *Preset {
	if p, ok := Lookup(name); ok {
		return p
	}
	return presets[DefaultPreset]()
}

// Available returns the sorted list of preset names
func Available() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
