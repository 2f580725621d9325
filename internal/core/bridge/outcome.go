package bridge

// Status classifies how a call ended
type Status uint8

const (
	StatusSuccess Status = iota
	// StatusNegative is a verification that completed and said no
	StatusNegative
	StatusFailure
	StatusUnsupported
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNegative:
		return "negative"
	case StatusFailure:
		return "failure"
	case StatusUnsupported:
		return "unsupported"
	}
	return "unknown"
}

// Kind is the failure category callers can branch on
type Kind string

const (
	KindInvalidArguments Kind = "INVALID_ARGUMENTS"
	KindNativeError      Kind = "NATIVE_ERROR"
)

// Outcome is the encoder-independent result of one call
type Outcome struct {
	Status  Status
	Payload any
	Kind    Kind
	Message string
	Trace   string
}

// Success wraps a payload
func Success(payload any) Outcome { return Outcome{Status: StatusSuccess, Payload: payload} }

// Negative is a completed verification that rejected the proof
func Negative() Outcome { return Outcome{Status: StatusNegative} }

// Failure records err under kind
func Failure(kind Kind, err error) Outcome {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return Outcome{Status: StatusFailure, Kind: kind, Message: msg}
}

// Unsupported marks a method the bridge does not serve
func Unsupported() Outcome { return Outcome{Status: StatusUnsupported} }
