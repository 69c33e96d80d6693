package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/sardanioss/setcookie/capture"
	"github.com/sardanioss/setcookie/cookie"
	"github.com/sardanioss/setcookie/fingerprint"
	"github.com/sardanioss/setcookie/httpdate"
	"github.com/sardanioss/setcookie/protocol"
)

const version = "1.0.0"

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "preset, p",
		Usage:  "browser preset used as parse policy",
		EnvVar: "SETCOOKIE_PRESET",
		Value:  fingerprint.DefaultPreset,
	},
	cli.StringFlag{
		Name:   "log-level",
		Usage:  "log level (debug, info, warn, error)",
		EnvVar: "SETCOOKIE_LOG_LEVEL",
		Value:  "warn",
	},
}

var urlFlag = cli.StringFlag{
	Name:  "url, u",
	Usage: "request URL the Set-Cookie headers were received from",
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	logger := log.New()
	logger.SetOutput(stderr)

	app := cli.NewApp()
	app.Name = "setcookie"
	app.Usage = "parse Set-Cookie headers and HTTP dates"
	app.Version = version
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = globalFlags
	app.Before = func(ctx *cli.Context) error {
		level, err := log.ParseLevel(ctx.GlobalString("log-level"))
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		if _, ok := fingerprint.Lookup(ctx.GlobalString("preset")); !ok {
			logger.WithField("preset", ctx.GlobalString("preset")).
				Warnf("unknown preset, using %s", fingerprint.DefaultPreset)
		}
		return nil
	}

	newParser := func(ctx *cli.Context) *cookie.Parser {
		return cookie.NewParser(
			cookie.WithPolicy(fingerprint.Get(ctx.GlobalString("preset"))),
			cookie.WithLogger(logger),
		)
	}

	app.Commands = []cli.Command{
		{
			Name:      "parse",
			Usage:     "parse Set-Cookie header values given as arguments",
			ArgsUsage: "HEADER...",
			Flags:     []cli.Flag{urlFlag},
			Action: func(ctx *cli.Context) error {
				u, err := requestURL(ctx)
				if err != nil {
					return err
				}
				cookies, err := newParser(ctx).ParseAll(ctx.Args(), u)
				if err != nil {
					return err
				}
				return writeCookies(ctx.App.Writer, cookies)
			},
		},
		{
			Name:      "capture",
			Usage:     "parse the Set-Cookie headers of recorded HTTP responses (.gz, .br, .zst, .zz accepted)",
			ArgsUsage: "FILE...",
			Flags:     []cli.Flag{urlFlag},
			Action: func(ctx *cli.Context) error {
				u, err := requestURL(ctx)
				if err != nil {
					return err
				}
				if ctx.NArg() == 0 {
					return errors.New("capture: no files given")
				}
				p := newParser(ctx)
				for _, path := range ctx.Args() {
					cookies, err := capture.ParseFile(path, u, p)
					if err != nil {
						return err
					}
					logger.WithFields(log.Fields{"file": path, "cookies": len(cookies)}).Info("parsed capture")
					if err := writeCookies(ctx.App.Writer, cookies); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Name:      "date",
			Usage:     "parse HTTP dates and print them in canonical form",
			ArgsUsage: "TEXT...",
			Action: func(ctx *cli.Context) error {
				failed := 0
				for _, text := range ctx.Args() {
					t, ok := httpdate.ParseDate(text)
					if !ok {
						logger.WithField("text", text).Warn("no supported date format matched")
						failed++
						continue
					}
					fmt.Fprintf(ctx.App.Writer, "%d\t%s\n", t.Unix(), httpdate.FormatDate(t))
				}
				if failed > 0 {
					return fmt.Errorf("date: %d value(s) not parsed", failed)
				}
				return nil
			},
		},
		{
			Name:  "presets",
			Usage: "list browser presets with their TLS ClientHello and User-Agent",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "json", Usage: "print one JSON object per preset"},
			},
			Action: func(ctx *cli.Context) error {
				enc := json.NewEncoder(ctx.App.Writer)
				for _, p := range protocol.ListPresets() {
					if ctx.Bool("json") {
						if err := enc.Encode(p); err != nil {
							return err
						}
						continue
					}
					quic := p.QUICClientHello
					if quic == "" {
						quic = "-"
					}
					fmt.Fprintf(ctx.App.Writer, "%s\t%s\t%s\t%s\t%s\t%s\n",
						p.Name, p.Family, p.Platform, p.ClientHello, quic, p.UserAgent)
				}
				return nil
			},
		},
		{
			Name:  "serve",
			Usage: "answer JSON-lines requests on stdin",
			Action: func(ctx *cli.Context) error {
				return NewDaemon(stdin, ctx.App.Writer, ctx.GlobalString("preset"), logger).Run()
			},
		},
	}
	return app
}

func requestURL(ctx *cli.Context) (*url.URL, error) {
	raw := ctx.String("url")
	if raw == "" {
		return nil, fmt.Errorf("%s: --url is required", ctx.Command.Name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid url: %w", ctx.Command.Name, err)
	}
	return u, nil
}

func writeCookies(w io.Writer, cookies []*cookie.Cookie) error {
	enc := json.NewEncoder(w)
	for _, c := range cookies {
		if err := enc.Encode(protocol.FromCookie(c)); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
