// Package logger owns the process root zerolog logger and the per call
// fields carried on a context
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"stealthbridge/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the logging type handed around the codebase
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	Level        string // trace..panic, unknown values fall back to debug
	Format       string // "console" or "json"
	Service      string
	Component    string
	Writer       io.Writer // stdout when nil
	WithCaller   bool
	SampleEvery  int
	StaticFields map[string]string
}

// FromEnv reads LOG_* through raw config, which itself never logs
func FromEnv() Options {
	env := raw.New().Prefix("LOG_")
	return Options{
		Level:       env.Get("LEVEL", "debug"),
		Format:      strings.ToLower(env.Get("FORMAT", "console")),
		Service:     env.Get("SERVICE", ""),
		Component:   env.Get("COMPONENT", ""),
		WithCaller:  env.GetBool("CALLER", false),
		SampleEvery: env.GetInt("SAMPLE_EVERY", 0),
	}
}

var (
	initOnce sync.Once
	root     *Logger
)

// Init builds the root logger from opt; only the first call has any effect
func Init(opt Options) {
	initOnce.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		root = New(opt)
	})
}

// Get returns the root logger, initializing it from the environment on first use
func Get() *Logger {
	Init(FromEnv())
	return root
}

// New builds a standalone logger without touching the root
func New(opt Options) *Logger {
	out := opt.Writer
	if out == nil {
		out = os.Stdout
	}
	if opt.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	with := zerolog.New(out).Level(parseLevel(opt.Level)).With().Timestamp()
	if bi, ok := debug.ReadBuildInfo(); ok {
		with = with.Str("go_version", bi.GoVersion)
	}
	fields := map[string]string{"service": opt.Service, "component": opt.Component}
	for k, v := range opt.StaticFields {
		fields[k] = v
	}
	for k, v := range fields {
		if v != "" {
			with = with.Str(k, v)
		}
	}
	if opt.WithCaller {
		with = with.Caller()
	}

	l := with.Logger()
	if opt.SampleEvery > 1 {
		l = l.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
	}
	return &l
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" || lvl == zerolog.NoLevel || lvl == zerolog.Disabled {
		return zerolog.DebugLevel
	}
	return lvl
}

type callFields struct {
	requestID string
	caller    string
	method    string
}

type fieldsKey struct{}

func fieldsOf(ctx context.Context) callFields {
	f, _ := ctx.Value(fieldsKey{}).(callFields)
	return f
}

// WithRequest records the request id and the front end caller on ctx; blanks keep prior values
func WithRequest(ctx context.Context, reqID, caller string) context.Context {
	if reqID == "" && caller == "" {
		return ctx
	}
	f := fieldsOf(ctx)
	if reqID != "" {
		f.requestID = reqID
	}
	if caller != "" {
		f.caller = caller
	}
	return context.WithValue(ctx, fieldsKey{}, f)
}

// WithMethod records the bridge method on ctx
func WithMethod(ctx context.Context, method string) context.Context {
	if method == "" {
		return ctx
	}
	f := fieldsOf(ctx)
	f.method = method
	return context.WithValue(ctx, fieldsKey{}, f)
}

// C returns a child of the root logger carrying the call fields found on ctx
func C(ctx context.Context) *Logger {
	f := fieldsOf(ctx)
	with := Get().With()
	for _, kv := range [...][2]string{{"request_id", f.requestID}, {"caller", f.caller}, {"method", f.method}} {
		if kv[1] != "" {
			with = with.Str(kv[0], kv[1])
		}
	}
	l := with.Logger()
	return &l
}

// Named returns a child of the root logger tagged with component
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}
