package bridge

// Channel is the delivery path a response takes back to the caller
type Channel uint8

const (
	ChannelReply Channel = iota
	ChannelError
	ChannelNotImplemented
)

func (c Channel) String() string {
	switch c {
	case ChannelReply:
		return "reply"
	case ChannelError:
		return "error"
	}
	return "not_implemented"
}

// Fault is the error channel payload of hard mode methods
type Fault struct {
	Code    Kind   `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Response is delivered exactly once per call
type Response struct {
	Channel Channel
	Value   any
	Fault   *Fault
}

// Encode shapes an outcome for method m
func Encode(m Method, out Outcome) Response {
	if out.Status == StatusUnsupported || !Known(m) {
		return Response{Channel: ChannelNotImplemented}
	}
	r := routes[m]
	if r.mode == ModeSoft {
		return soft(r.result, out)
	}
	return hard(out)
}

// soft replies always carry both keys; exactly one is non-nil except on a negative verdict
func soft(key string, out Outcome) Response {
	v := map[string]any{key: nil, "error": nil}
	switch out.Status {
	case StatusSuccess:
		v[key] = out.Payload
	case StatusNegative:
		v[key] = false
	case StatusFailure:
		v["error"] = out.Message
	}
	return Response{Channel: ChannelReply, Value: v}
}

func hard(out Outcome) Response {
	switch out.Status {
	case StatusFailure:
		return Response{Channel: ChannelError, Fault: &Fault{Code: out.Kind, Message: out.Message, Details: out.Trace}}
	case StatusNegative:
		return Response{Channel: ChannelReply, Value: false}
	}
	return Response{Channel: ChannelReply, Value: out.Payload}
}
