package codec

import "encoding/binary"

// FrameReader accumulates bytes from a stream socket and yields complete
// StreamFrame values as they become available, tolerating partial reads of
// any size (§8 scenario 6: feeding a frame one byte at a time must yield
// exactly one decoded message with no leakage of trailing bytes).
type FrameReader struct {
	buf []byte
}

// Feed appends newly-read bytes to the internal buffer.
func (r *FrameReader) Feed(data []byte) {
	r.buf = append(r.buf, data...)
}

// Next extracts one complete frame from the buffer if available. ok is
// false if the buffer doesn't yet hold a full frame.
func (r *FrameReader) Next() (frame StreamFrame, ok bool) {
	if len(r.buf) < 2 {
		return StreamFrame{}, false
	}
	size := int(binary.BigEndian.Uint16(r.buf[0:2]))
	if size < 1 {
		// A zero-size frame is malformed; drop the length prefix and let
		// the caller keep reading rather than getting stuck forever.
		r.buf = r.buf[2:]
		return StreamFrame{}, false
	}
	if len(r.buf) < 2+size {
		return StreamFrame{}, false
	}
	tag := r.buf[2]
	payload := append([]byte(nil), r.buf[3:2+size]...)
	r.buf = r.buf[2+size:]
	return StreamFrame{Tag: tag, Payload: payload}, true
}
