package bridge

import (
	"context"
	"sync"
	"time"

	"stealthbridge/internal/core/engine"
	"stealthbridge/internal/platform/logger"
	pnet "stealthbridge/internal/platform/net"
)

// Entry is one finished call as seen by a Recorder
type Entry struct {
	At        time.Time
	RequestID string
	Caller    string
	Frontend  string
	Method    string
	Status    Status
	Kind      Kind
	Message   string
	Duration  time.Duration
}

// Recorder receives an entry per finished call; it must not block
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// Options wires a Bridge
type Options struct {
	Engine   engine.Engine
	Members  Members
	Platform string
	Frontend string // tags journal entries, eg "http" or "channel"
	Recorder Recorder
	Now      func() time.Time
}

// Bridge accepts calls from any caller and runs each on its own goroutine
type Bridge struct {
	dispatcher *Dispatcher
	recorder   Recorder
	frontend   string
	now        func() time.Time
	wg         sync.WaitGroup
}

// New returns a ready bridge
func New(o Options) *Bridge {
	now := o.Now
	if now == nil {
		now = time.Now
	}
	return &Bridge{
		dispatcher: NewDispatcher(o.Engine, o.Members, o.Platform),
		recorder:   o.Recorder,
		frontend:   o.Frontend,
		now:        now,
	}
}

// Call submits one call and returns at once; deliver runs exactly once, posted to caller
func (b *Bridge) Call(ctx context.Context, caller Poster, method string, args Args, deliver func(Response)) {
	ctx = context.WithoutCancel(logger.WithMethod(ctx, method))
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		start := b.now()
		m := Method(method)
		out := b.dispatcher.Dispatch(ctx, m, args)
		resp := Encode(m, out)
		elapsed := b.now().Sub(start)

		logger.C(ctx).Debug().
			Str("status", out.Status.String()).
			Str("channel", resp.Channel.String()).
			Dur("elapsed", elapsed).
			Msg("bridge call done")
		if b.recorder != nil {
			b.recorder.Record(ctx, Entry{
				At:        start,
				RequestID: pnet.RequestID(ctx),
				Caller:    pnet.Caller(ctx),
				Frontend:  b.frontend,
				Method:    method,
				Status:    out.Status,
				Kind:      out.Kind,
				Message:   out.Message,
				Duration:  elapsed,
			})
		}

		caller.Post(func() { deliver(resp) })
	}()
}

// Invoke calls method and delivers the response on the current goroutine.
// ok is false when ctx ends first; the call still runs to completion.
func (b *Bridge) Invoke(ctx context.Context, method string, args Args) (resp Response, ok bool) {
	box := NewMailbox()
	b.Call(ctx, box, method, args, func(r Response) { resp = r })
	ok = box.Wait(ctx)
	return resp, ok
}

// Wait blocks until every submitted call has posted its response
func (b *Bridge) Wait() { b.wg.Wait() }
