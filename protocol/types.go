// Package protocol defines the IPC message types for communication between
// the setcookie daemon and language SDKs (Python, Node.js, etc.)
//
// The daemon reads JSON messages from stdin and writes responses to stdout.
// Each message is a single JSON object followed by a newline.
package protocol

import (
	"time"

	"github.com/sardanioss/setcookie/cookie"
	"github.com/sardanioss/setcookie/fingerprint"
)

// MessageType represents the type of IPC message
type MessageType string

const (
	// Parsing
	TypeCookieParse MessageType = "cookie.parse"
	TypeCookie      MessageType = "cookie"
	TypeDateParse   MessageType = "date.parse"
	TypeDateFormat  MessageType = "date.format"
	TypeDate        MessageType = "date"

	// Control messages
	TypePing     MessageType = "ping"
	TypePong     MessageType = "pong"
	TypeError    MessageType = "error"
	TypeShutdown MessageType = "shutdown"

	// Info
	TypePresetList MessageType = "preset.list"
)

// Error codes
const (
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeUnknownType    = "UNKNOWN_TYPE"
	ErrCodeInvalidURL     = "INVALID_URL"
	ErrCodeNullInput      = "NULL_INPUT"
	ErrCodeInvalidMaxAge  = "INVALID_MAX_AGE"
	ErrCodeInvalidExpires = "INVALID_EXPIRES"
	ErrCodeNoMatch        = "NO_MATCH"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`              // Error code (e.g., "INVALID_MAX_AGE")
	Message string `json:"message"`           // Human-readable error message
	Details string `json:"details,omitempty"` // Additional details
}

// ErrorResponse is sent when a message cannot be handled
type ErrorResponse struct {
	ID    string      `json:"id"`
	Type  MessageType `json:"type"`
	Error *ErrorInfo  `json:"error"`
}

// NewErrorResponse builds an error message for request reqID
func NewErrorResponse(reqID, code, message string) *ErrorResponse {
	return &ErrorResponse{
		ID:   reqID,
		Type: TypeError,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// CookieParseRequest asks the daemon to parse one Set-Cookie header.
// Header is a pointer so an explicit JSON null can be told apart from "".
type CookieParseRequest struct {
	ID     string      `json:"id"`
	Type   MessageType `json:"type"`
	Header *string     `json:"header"`
	URL    string      `json:"url"`              // Request URL the header was received from
	Preset string      `json:"preset,omitempty"` // Browser preset (empty = daemon default)
}

// CookieResponse carries a parsed cookie
type CookieResponse struct {
	ID     string      `json:"id"`
	Type   MessageType `json:"type"`
	Cookie *Cookie     `json:"cookie,omitempty"`
	Error  *ErrorInfo  `json:"error,omitempty"`
}

// Cookie represents a serializable cookie
type Cookie struct {
	Name     string     `json:"name"`
	Value    string     `json:"value"`
	Domain   string     `json:"domain"`
	Path     string     `json:"path"`
	Secure   bool       `json:"secure"`
	HttpOnly bool       `json:"httpOnly"`
	SameSite string     `json:"sameSite,omitempty"`
	Expires  *time.Time `json:"expires,omitempty"` // nil for session cookies
	Header   string     `json:"header"`            // Canonical Set-Cookie rendering
}

// FromCookie converts a parsed cookie into its wire form
func FromCookie(c *cookie.Cookie) *Cookie {
	out := &Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
		SameSite: c.SameSite,
		Header:   c.HeaderValue(),
	}
	if !c.IsSession() {
		exp := c.Expires.UTC()
		out.Expires = &exp
	}
	return out
}

// ErrorCode maps a parser error to its wire error code
func ErrorCode(err error) string {
	reason, ok := cookie.ReasonOf(err)
	if !ok {
		return ErrCodeInternal
	}
	switch reason {
	case cookie.ReasonNullInput:
		return ErrCodeNullInput
	case cookie.ReasonInvalidMaxAge:
		return ErrCodeInvalidMaxAge
	case cookie.ReasonInvalidExpires:
		return ErrCodeInvalidExpires
	default:
		return ErrCodeInternal
	}
}

// DateParseRequest asks the daemon to parse an HTTP date
type DateParseRequest struct {
	ID   string      `json:"id"`
	Type MessageType `json:"type"`
	Text *string     `json:"text"`
}

// DateFormatRequest asks the daemon to render a Unix timestamp
type DateFormatRequest struct {
	ID   string      `json:"id"`
	Type MessageType `json:"type"`
	Unix int64       `json:"unix"` // Seconds since epoch
}

// DateResponse carries a date in both forms
type DateResponse struct {
	ID    string      `json:"id"`
	Type  MessageType `json:"type"`
	Unix  int64       `json:"unix"`
	Text  string      `json:"text"` // RFC 1123 rendering
	Error *ErrorInfo  `json:"error,omitempty"`
}

// PresetListResponse lists available browser presets
type PresetListResponse struct {
	ID      string       `json:"id"`
	Type    MessageType  `json:"type"`
	Default string       `json:"default"`
	Presets []PresetInfo `json:"presets"`
}

// PresetInfo describes one browser preset
type PresetInfo struct {
	Name            string `json:"name"`
	Family          string `json:"family"`
	Platform        string `json:"platform"`
	UserAgent       string `json:"userAgent"`
	ClientHello     string `json:"clientHello"`               // e.g. "Chrome-143_Linux"
	QUICClientHello string `json:"quicClientHello,omitempty"` // empty without HTTP/3
	HTTP3           bool   `json:"http3"`
}

// FromPreset converts a preset into its wire form
func FromPreset(p *fingerprint.Preset) PresetInfo {
	return PresetInfo{
		Name:            p.Name,
		Family:          string(p.Family),
		Platform:        p.Platform,
		UserAgent:       p.UserAgent,
		ClientHello:     p.ClientHello(),
		QUICClientHello: p.QUICClientHello(),
		HTTP3:           p.SupportsHTTP3(),
	}
}

// ListPresets describes every available preset, sorted by name
func ListPresets() []PresetInfo {
	names := fingerprint.Available()
	out := make([]PresetInfo, 0, len(names))
	for _, name := range names {
		out = append(out, FromPreset(fingerprint.Get(name)))
	}
	return out
}

// PongResponse answers a ping
type PongResponse struct {
	ID      string      `json:"id"`
	Type    MessageType `json:"type"`
	Version string      `json:"version"`
}
