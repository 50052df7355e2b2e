package watchengine

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// rawEvent is one decoded notification record. Raw events are ephemeral:
// produced by a single read, consumed during classification, never stored.
type rawEvent struct {
	wd     int32
	mask   uint32
	cookie uint32
	name   string
}

// rawEventHeaderSize is the fixed leading portion of every record: watch
// descriptor, mask, cookie and name length, four 32-bit fields in kernel
// byte order.
const rawEventHeaderSize = 16

// parseRawEvents decodes a buffer containing zero or more concatenated
// variable-length notification records. The name field's declared length
// includes the kernel's NUL padding and must be consumed as declared, not
// recomputed from the name itself. The cursor is validated against the
// bytes actually read; a record extending past the buffer is an error and
// no events are returned.
func parseRawEvents(buf []byte) ([]rawEvent, error) {
	var events []rawEvent
	for pos := 0; pos < len(buf); {
		if len(buf)-pos < rawEventHeaderSize {
			return nil, fmt.Errorf(
				"truncated notification record header at offset %d (%d bytes left)",
				pos,
				len(buf)-pos,
			)
		}
		ev := rawEvent{
			wd:     int32(binary.NativeEndian.Uint32(buf[pos:])),
			mask:   binary.NativeEndian.Uint32(buf[pos+4:]),
			cookie: binary.NativeEndian.Uint32(buf[pos+8:]),
		}
		nameLen := int(binary.NativeEndian.Uint32(buf[pos+12:]))
		pos += rawEventHeaderSize
		if len(buf)-pos < nameLen {
			return nil, fmt.Errorf(
				"notification record at offset %d declares %d name bytes, %d available",
				pos-rawEventHeaderSize,
				nameLen,
				len(buf)-pos,
			)
		}
		if nameLen > 0 {
			ev.name = string(bytes.TrimRight(buf[pos:pos+nameLen], "\x00"))
			pos += nameLen
		}
		events = append(events, ev)
	}
	return events, nil
}
