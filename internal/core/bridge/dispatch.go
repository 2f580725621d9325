package bridge

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"stealthbridge/internal/core/engine"
	perr "stealthbridge/internal/platform/errors"
	"stealthbridge/internal/platform/logger"
)

// Members serves the group membership methods
type Members interface {
	CreateMembership(ctx context.Context, req CreateMembershipRequest) (bool, error)
	PostLikes(ctx context.Context, req PostLikesRequest) (int, error)
}

// Dispatcher routes decoded requests to the engine
type Dispatcher struct {
	engine   engine.Engine
	members  Members
	platform string
}

// NewDispatcher builds a dispatcher; a nil members leaves membership methods unsupported
func NewDispatcher(e engine.Engine, m Members, platform string) *Dispatcher {
	return &Dispatcher{engine: e, members: m, platform: platform}
}

// Dispatch runs one call to completion; it never panics
func (d *Dispatcher) Dispatch(ctx context.Context, m Method, a Args) (out Outcome) {
	if !Known(m) {
		return Unsupported()
	}
	if m == MethodPlatformVersion {
		return Success(d.platform)
	}
	if d.members == nil && (m == MethodCreateMembership || m == MethodPostLikes) {
		return Unsupported()
	}

	req, err := Decode(m, a)
	if err != nil {
		logger.C(ctx).Debug().Err(err).Msg("bridge arguments rejected")
		return Failure(KindInvalidArguments, err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			stack := debug.Stack()
			logger.C(ctx).Error().Interface("panic", rec).Bytes("stack", stack).Msg("engine panic recovered")
			out = Outcome{Status: StatusFailure, Kind: KindNativeError, Message: fmt.Sprint(rec), Trace: string(stack)}
		}
	}()
	return d.invoke(ctx, req)
}

func (d *Dispatcher) invoke(ctx context.Context, req Request) Outcome {
	switch r := req.(type) {
	case ProveJwtRequest:
		proof, err := d.engine.ProveJwt(ctx, r.input())
		if err != nil {
			return d.fail(ctx, err)
		}
		return Success(proof)
	case VerifyJwtRequest:
		ok, err := d.engine.VerifyJwt(ctx, r.SrsPath, r.Proof)
		return d.verdict(ctx, ok, err)
	case VerifyJwtProofRequest:
		ok, err := d.engine.VerifyJwtProof(ctx, r.input())
		return d.verdict(ctx, ok, err)
	case SignMessageRequest:
		msg, err := d.engine.SignMessage(ctx, r.input())
		if err != nil {
			return d.fail(ctx, err)
		}
		return Success(msg)
	case GenerateEphemeralKeyRequest:
		key, err := d.engine.GenerateEphemeralKey(ctx)
		if err != nil {
			return d.fail(ctx, err)
		}
		return Success(key)
	case CreateMembershipRequest:
		ok, err := d.members.CreateMembership(ctx, r)
		if err != nil {
			return d.memberFail(ctx, err)
		}
		return Success(ok)
	case PostLikesRequest:
		n, err := d.members.PostLikes(ctx, r)
		if err != nil {
			return d.memberFail(ctx, err)
		}
		return Success(n)
	}
	return d.fail(ctx, perr.Internalf("no handler for %T", req))
}

func (d *Dispatcher) verdict(ctx context.Context, ok bool, err error) Outcome {
	switch {
	case err != nil:
		return d.fail(ctx, err)
	case !ok:
		return Negative()
	}
	return Success(true)
}

func (d *Dispatcher) fail(ctx context.Context, err error) Outcome {
	logger.C(ctx).Warn().Err(err).Msg("engine call failed")
	out := Failure(KindNativeError, err)
	out.Trace = chain(err)
	return out
}

// chain renders err and each error it wraps, outermost first
func chain(err error) string {
	var b strings.Builder
	for e := err; e != nil; e = errors.Unwrap(e) {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%T: %v", e, e)
	}
	return b.String()
}

// membership rejects bad input itself, so its validation errors stay argument errors
func (d *Dispatcher) memberFail(ctx context.Context, err error) Outcome {
	switch perr.CodeOf(err) {
	case perr.ErrorCodeInvalidArgument, perr.ErrorCodeValidation:
		return Failure(KindInvalidArguments, err)
	}
	return d.fail(ctx, err)
}
