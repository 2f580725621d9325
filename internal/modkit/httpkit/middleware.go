package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"stealthbridge/internal/platform/config"
	phttp "stealthbridge/internal/platform/net/http"
	"stealthbridge/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	Timeout     time.Duration // request deadline, <= 0 for none
	SlowRequest time.Duration // access log warns at or above this
	CORSOrigins []string      // empty allows any origin
}

// StackFromConfig reads REQUEST_TIMEOUT, SLOW_REQUEST and CORS_ORIGINS.
// Proof generation can take minutes so the default deadline is generous.
func StackFromConfig(c config.Conf) StackOptions {
	return StackOptions{
		Timeout:     c.MayDuration("REQUEST_TIMEOUT", 5*time.Minute),
		SlowRequest: c.MayDuration("SLOW_REQUEST", 2*time.Second),
		CORSOrigins: c.MayCSV("CORS_ORIGINS", nil),
	}
}

// CommonStack is the middleware every API route runs behind
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLog(o.SlowRequest),
		middleware.Recover(phttp.JSON),
		middleware.NoCache(),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes(),
		middleware.Timeout(o.Timeout),
	}
}
