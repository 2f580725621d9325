// Package bridge decodes front-end calls, runs them on the proving engine away from the
// caller's thread and encodes each outcome in the shape its method declares
package bridge

import (
	"slices"
)

// Method names one bridge operation as front-ends send it
type Method string

// Methods known to the bridge
const (
	MethodPlatformVersion      Method = "getPlatformVersion"
	MethodProveJwt             Method = "proveJwt"
	MethodVerifyJwt            Method = "verifyJwt"
	MethodVerifyJwtProof       Method = "verifyJwtProof"
	MethodSignMessage          Method = "signMessage"
	MethodGenerateEphemeralKey Method = "generateEphemeralKey"
	MethodCreateMembership     Method = "createMembership"
	MethodPostLikes            Method = "postLikes"
)

// Mode is how a method reports failures
type Mode uint8

const (
	// ModeHard sends failures down a separate error channel
	ModeHard Mode = iota
	// ModeSoft embeds failures next to the payload in a normal reply
	ModeSoft
)

func (m Mode) String() string {
	if m == ModeSoft {
		return "soft"
	}
	return "hard"
}

// route is one row of the method table
type route struct {
	mode   Mode
	result string // payload key of soft replies
	decode func(Args) (Request, error)
}

var routes = map[Method]route{
	MethodPlatformVersion:      {mode: ModeHard},
	MethodProveJwt:             {mode: ModeSoft, result: "proof", decode: decodeProveJwt},
	MethodVerifyJwt:            {mode: ModeSoft, result: "isValid", decode: decodeAs[VerifyJwtRequest]},
	MethodVerifyJwtProof:       {mode: ModeSoft, result: "isValid", decode: decodeAs[VerifyJwtProofRequest]},
	MethodSignMessage:          {mode: ModeSoft, result: "signedMessage", decode: decodeAs[SignMessageRequest]},
	MethodGenerateEphemeralKey: {mode: ModeHard, decode: decodeAs[GenerateEphemeralKeyRequest]},
	MethodCreateMembership:     {mode: ModeHard, decode: decodeAs[CreateMembershipRequest]},
	MethodPostLikes:            {mode: ModeHard, decode: decodeAs[PostLikesRequest]},
}

// Known reports whether m is in the method table
func Known(m Method) bool {
	_, ok := routes[m]
	return ok
}

// ModeOf returns the reporting mode of m; unknown methods report hard
func ModeOf(m Method) Mode { return routes[m].mode }

// MethodInfo describes one table row for discovery endpoints
type MethodInfo struct {
	Name   string `json:"name"`
	Mode   string `json:"mode"`
	Result string `json:"result,omitempty"`
}

// Methods lists the table sorted by name
func Methods() []MethodInfo {
	out := make([]MethodInfo, 0, len(routes))
	for m, r := range routes {
		out = append(out, MethodInfo{Name: string(m), Mode: r.mode.String(), Result: r.result})
	}
	slices.SortFunc(out, func(a, b MethodInfo) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out
}
