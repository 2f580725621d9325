package channel

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"

	"stealthbridge/internal/core/bridge"
	"stealthbridge/internal/platform/logger"
	pnet "stealthbridge/internal/platform/net"
)

// Server answers framed requests; replies are written only from its caller loop
type Server struct {
	bridge   *bridge.Bridge
	name     string
	maxFrame int
}

// New returns a server; name tags every call with the front-end it came through
func New(b *bridge.Bridge, name string, maxFrame int) *Server {
	if name == "" {
		name = "channel"
	}
	return &Server{bridge: b, name: name, maxFrame: maxFrame}
}

// Serve reads requests from in until EOF or ctx ends, then waits for in-flight calls
// and returns once every reply has been written to out
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	loop := bridge.NewLoop()
	w := NewWriter(out, s.maxFrame)
	r := NewReader(in, s.maxFrame)

	loopCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	defer stop()

	g := &gate{}
	read := make(chan error, 1)
	result := make(chan error, 1)
	go func() { read <- s.read(ctx, r, w, loop, g) }()
	go func() {
		var err error
		select {
		case err = <-read:
		case <-ctx.Done():
			err = ctx.Err()
		}
		// the reader may still be blocked in Read; nothing it decodes from here on is submitted
		g.close()
		s.bridge.Wait()
		result <- err
		stop()
	}()

	_ = loop.Run(loopCtx)
	return <-result
}

func (s *Server) read(ctx context.Context, r *Reader, w *Writer, loop *bridge.Loop, g *gate) error {
	for ctx.Err() == nil {
		req, err := r.Read()
		if ctx.Err() != nil {
			break
		}
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, ErrFrameTooLarge), errors.Is(err, io.ErrUnexpectedEOF):
			return err
		case err != nil:
			logger.C(ctx).Warn().Err(err).Msg("undecodable frame")
			g.do(func() {
				loop.Post(func() {
					s.write(ctx, w, Reply{Kind: KindError, Code: string(bridge.KindInvalidArguments), Message: err.Error()})
				})
			})
			continue
		}

		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		id := req.ID
		cctx := pnet.WithRequest(ctx, id, s.name)
		cctx = logger.WithRequest(cctx, id, s.name)
		submitted := g.do(func() {
			s.bridge.Call(cctx, loop, req.Method, bridge.Args(req.Args), func(resp bridge.Response) {
				s.write(cctx, w, ToReply(id, resp))
			})
		})
		if !submitted {
			return nil
		}
	}
	return ctx.Err()
}

// gate admits work until closed; close waits for any admitted fn to return
type gate struct {
	mu     sync.Mutex
	closed bool
}

func (g *gate) do(fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	fn()
	return true
}

func (g *gate) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}

func (s *Server) write(ctx context.Context, w *Writer, rep Reply) {
	if err := w.Write(rep); err != nil {
		logger.C(ctx).Error().Err(err).Str("id", rep.ID).Msg("can't write reply")
	}
}

// ToReply shapes a bridge response for the wire
func ToReply(id string, resp bridge.Response) Reply {
	switch resp.Channel {
	case bridge.ChannelReply:
		return Reply{ID: id, Kind: KindReply, Value: resp.Value}
	case bridge.ChannelError:
		rep := Reply{ID: id, Kind: KindError}
		if f := resp.Fault; f != nil {
			rep.Code, rep.Message, rep.Details = string(f.Code), f.Message, f.Details
		}
		return rep
	}
	return Reply{ID: id, Kind: KindNotImplemented}
}
