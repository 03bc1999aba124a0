package codec

// Tagged outbound section ids (§4.1).
const (
	TagJoystick     byte = 0x0C
	TagDateTime     byte = 0x0F
	TagTimezone     byte = 0x10
	TagCountdown    byte = 0x07
)

// Tagged inbound section ids (§4.1).
const (
	TagJoystickOutputs byte = 0x01
	TagDiskFree        byte = 0x04
	TagCPU             byte = 0x05
	TagRAM             byte = 0x06
	TagPDP             byte = 0x08
	TagCANMetrics      byte = 0x0E
)

// Stream-frame tags (§4.1).
const (
	StreamTagMessage byte = 0x00
	StreamTagVersion byte = 0x0A
	StreamTagError   byte = 0x0B
	StreamTagStdout  byte = 0x0C

	StreamTagGameData          byte = 0x10
	StreamTagMatchInfo         byte = 0x11
	StreamTagJoystickDescriptor byte = 0x12
)

// section is one [length][tag][payload] tuple as used by both the
// control/telemetry datagrams and the stream frames.
type section struct {
	tag     byte
	payload []byte
}

// appendSection writes one tagged section: length byte covers tag+payload,
// i.e. len(payload)+1, per §4.1.
func appendSection(buf []byte, tag byte, payload []byte) []byte {
	buf = append(buf, byte(len(payload)+1), tag)
	buf = append(buf, payload...)
	return buf
}

// readSections walks a sequence of [length][tag][payload] tuples until the
// input is exhausted, skipping unknown tags by length and tolerating a
// short trailing section by stopping instead of erroring: decoders must
// never abort on malformed trailing bytes.
func readSections(data []byte) []section {
	var out []section
	for len(data) > 0 {
		length := int(data[0])
		if length < 1 || len(data) < 1+length {
			return out
		}
		tag := data[1]
		payload := data[2 : 1+length]
		out = append(out, section{tag: tag, payload: payload})
		data = data[1+length:]
	}
	return out
}
