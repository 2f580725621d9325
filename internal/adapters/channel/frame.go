// Package channel serves the bridge over a stream of length-prefixed CBOR frames
package channel

import (
	"encoding/binary"
	"errors"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	perr "stealthbridge/internal/platform/errors"
)

// DefaultMaxFrame bounds a single encoded frame
const DefaultMaxFrame = 16 << 20

// Request is one inbound call
type Request struct {
	ID     string         `cbor:"id"`
	Method string         `cbor:"method"`
	Args   map[string]any `cbor:"args"`
}

// Reply kinds
const (
	KindReply          = "reply"
	KindError          = "error"
	KindNotImplemented = "notImplemented"
)

// Reply is one outbound response; Code, Message and Details are set only for KindError
type Reply struct {
	ID      string `cbor:"id"`
	Kind    string `cbor:"kind"`
	Value   any    `cbor:"value"`
	Code    string `cbor:"code,omitempty"`
	Message string `cbor:"message,omitempty"`
	Details string `cbor:"details,omitempty"`
}

var (
	decMode cbor.DecMode
	encMode cbor.EncMode
)

func init() {
	var err error
	decMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		MaxNestedLevels: 32,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// Reader reads frames from a stream
type Reader struct {
	r   io.Reader
	max int
}

// NewReader returns a reader rejecting frames above max bytes
func NewReader(r io.Reader, max int) *Reader {
	if max <= 0 {
		max = DefaultMaxFrame
	}
	return &Reader{r: r, max: max}
}

// ErrFrameTooLarge leaves the stream unreadable; callers must stop reading
var ErrFrameTooLarge = errors.New("frame too large")

// Read returns the next request; io.EOF at a clean end of stream
func (fr *Reader) Read() (Request, error) {
	var req Request
	err := fr.Decode(&req)
	return req, err
}

// Decode reads one frame into v
func (fr *Reader) Decode(v any) error {
	var lengthBuf [4]byte
	if _, err := io.ReadFull(fr.r, lengthBuf[:]); err != nil {
		return err
	}
	length := binary.BigEndian.Uint32(lengthBuf[:])
	if int64(length) > int64(fr.max) {
		return perr.Wrapf(ErrFrameTooLarge, perr.ErrorCodeInvalidArgument, "frame size %d exceeds limit %d", length, fr.max)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(fr.r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	if err := decMode.Unmarshal(buf, v); err != nil {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "decode frame")
	}
	return nil
}

// Writer writes frames to a stream; it is not safe for concurrent use
type Writer struct {
	w   io.Writer
	max int
}

// NewWriter returns a writer refusing frames above max bytes
func NewWriter(w io.Writer, max int) *Writer {
	if max <= 0 {
		max = DefaultMaxFrame
	}
	return &Writer{w: w, max: max}
}

// Write encodes v as one frame
func (fw *Writer) Write(v any) error {
	buf, err := encMode.Marshal(v)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeNative, "encode frame")
	}
	if len(buf) > fw.max {
		return perr.Newf(perr.ErrorCodeNative, "encoded frame size %d exceeds limit %d", len(buf), fw.max)
	}
	out := make([]byte, 4+len(buf))
	binary.BigEndian.PutUint32(out, uint32(len(buf)))
	copy(out[4:], buf)
	if _, err = fw.w.Write(out); err != nil {
		return err
	}
	// buffered streams get each frame pushed out whole
	if f, ok := fw.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}
