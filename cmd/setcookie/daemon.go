package main

import (
	"bufio"
	"encoding/json"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sardanioss/setcookie/cookie"
	"github.com/sardanioss/setcookie/fingerprint"
	"github.com/sardanioss/setcookie/httpdate"
	"github.com/sardanioss/setcookie/protocol"
)

// Daemon answers JSON-lines parse requests
type Daemon struct {
	preset   string
	clock    func() time.Time
	logger   *log.Logger
	stdin    *bufio.Reader
	stdout   *json.Encoder
	outputMu sync.Mutex
}

// NewDaemon creates a daemon reading from r and writing to w. preset is used
// for requests that do not name one.
func NewDaemon(r io.Reader, w io.Writer, preset string, logger *log.Logger) *Daemon {
	return &Daemon{
		preset: preset,
		clock:  time.Now,
		logger: logger,
		stdin:  bufio.NewReader(r),
		stdout: json.NewEncoder(w),
	}
}

// Run starts the daemon main loop. It returns nil on EOF or shutdown.
func (d *Daemon) Run() error {
	for {
		line, err := d.stdin.ReadString('\n')
		if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
			if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Parse the message type first
		var msg struct {
			ID   string               `json:"id"`
			Type protocol.MessageType `json:"type"`
		}
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			d.sendError("", protocol.ErrCodeInvalidRequest, "Invalid JSON: "+err.Error())
			continue
		}

		if msg.Type == protocol.TypeShutdown {
			d.logger.WithField("id", msg.ID).Info("shutdown requested")
			return nil
		}
		d.handleMessage(msg.Type, msg.ID, []byte(line))
	}
}

// handleMessage routes messages to appropriate handlers
func (d *Daemon) handleMessage(msgType protocol.MessageType, reqID string, data []byte) {
	switch msgType {
	case protocol.TypePing:
		d.send(&protocol.PongResponse{ID: reqID, Type: protocol.TypePong, Version: version})
	case protocol.TypePresetList:
		d.send(&protocol.PresetListResponse{
			ID:      reqID,
			Type:    protocol.TypePresetList,
			Default: d.preset,
			Presets: protocol.ListPresets(),
		})
	case protocol.TypeCookieParse:
		d.handleCookieParse(data)
	case protocol.TypeDateParse:
		d.handleDateParse(data)
	case protocol.TypeDateFormat:
		d.handleDateFormat(data)
	default:
		d.sendError(reqID, protocol.ErrCodeUnknownType, "Unknown message type: "+string(msgType))
	}
}

func (d *Daemon) handleCookieParse(data []byte) {
	var req protocol.CookieParseRequest
	if err := json.Unmarshal(data, &req); err != nil {
		d.sendError("", protocol.ErrCodeInvalidRequest, "Invalid cookie parse request: "+err.Error())
		return
	}

	u, err := url.Parse(req.URL)
	if err != nil || req.URL == "" {
		msg := "missing url"
		if err != nil {
			msg = err.Error()
		}
		d.sendError(req.ID, protocol.ErrCodeInvalidURL, "Invalid url: "+msg)
		return
	}

	preset := req.Preset
	if preset == "" {
		preset = d.preset
	}
	parser := cookie.NewParser(
		cookie.WithPolicy(fingerprint.Get(preset)),
		cookie.WithClock(d.clock),
		cookie.WithLogger(d.logger),
	)

	c, err := parser.ParseNullable(req.Header, u)
	if err != nil {
		d.send(&protocol.CookieResponse{
			ID:   req.ID,
			Type: protocol.TypeCookie,
			Error: &protocol.ErrorInfo{
				Code:    protocol.ErrorCode(err),
				Message: err.Error(),
			},
		})
		return
	}

	d.send(&protocol.CookieResponse{
		ID:     req.ID,
		Type:   protocol.TypeCookie,
		Cookie: protocol.FromCookie(c),
	})
}

func (d *Daemon) handleDateParse(data []byte) {
	var req protocol.DateParseRequest
	if err := json.Unmarshal(data, &req); err != nil {
		d.sendError("", protocol.ErrCodeInvalidRequest, "Invalid date parse request: "+err.Error())
		return
	}

	t, ok := httpdate.ParseDatePtr(req.Text)
	if !ok {
		d.send(&protocol.DateResponse{
			ID:   req.ID,
			Type: protocol.TypeDate,
			Error: &protocol.ErrorInfo{
				Code:    protocol.ErrCodeNoMatch,
				Message: "no supported date format matched",
			},
		})
		return
	}
	d.send(&protocol.DateResponse{
		ID:   req.ID,
		Type: protocol.TypeDate,
		Unix: t.Unix(),
		Text: httpdate.FormatDate(t),
	})
}

func (d *Daemon) handleDateFormat(data []byte) {
	var req protocol.DateFormatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		d.sendError("", protocol.ErrCodeInvalidRequest, "Invalid date format request: "+err.Error())
		return
	}
	d.send(&protocol.DateResponse{
		ID:   req.ID,
		Type: protocol.TypeDate,
		Unix: req.Unix,
		Text: httpdate.FormatDate(time.Unix(req.Unix, 0)),
	})
}

// send writes a response to stdout
func (d *Daemon) send(v interface{}) {
	d.outputMu.Lock()
	defer d.outputMu.Unlock()
	if err := d.stdout.Encode(v); err != nil {
		d.logger.WithError(err).Error("writing response")
	}
}

// sendError writes an error response
func (d *Daemon) sendError(reqID string, code string, message string) {
	d.logger.WithFields(log.Fields{"id": reqID, "code": code}).Warn(message)
	d.send(protocol.NewErrorResponse(reqID, code, message))
}
