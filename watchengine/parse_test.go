package watchengine

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// record builds one wire-format notification record. The name is NUL
// padded out to nameLen bytes, the way the kernel aligns names.
func record(t *testing.T, wd int32, mask uint32, name string, nameLen int) []byte {
	t.Helper()
	require.GreaterOrEqual(t, nameLen, len(name))
	buf := make([]byte, rawEventHeaderSize+nameLen)
	binary.NativeEndian.PutUint32(buf[0:], uint32(wd))
	binary.NativeEndian.PutUint32(buf[4:], mask)
	binary.NativeEndian.PutUint32(buf[8:], 0)
	binary.NativeEndian.PutUint32(buf[12:], uint32(nameLen))
	copy(buf[rawEventHeaderSize:], name)
	return buf
}

func TestParseRawEvents(t *testing.T) {
	t.Run("empty buffer", func(t *testing.T) {
		events, err := parseRawEvents(nil)
		assert.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("single record", func(t *testing.T) {
		buf := record(t, 3, 0x8, "a.txt", 16)
		events, err := parseRawEvents(buf)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, int32(3), events[0].wd)
		assert.Equal(t, uint32(0x8), events[0].mask)
		assert.Equal(t, "a.txt", events[0].name)
	})

	t.Run("record without name", func(t *testing.T) {
		buf := record(t, 7, 0x200, "", 0)
		events, err := parseRawEvents(buf)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, int32(7), events[0].wd)
		assert.Equal(t, "", events[0].name)
	})

	t.Run("concatenated records keep buffer order", func(t *testing.T) {
		var buf []byte
		buf = append(buf, record(t, 1, 0x8, "first", 16)...)
		buf = append(buf, record(t, 2, 0x200, "second-longer-name", 32)...)
		buf = append(buf, record(t, 1, 0x40, "third", 8)...)
		events, err := parseRawEvents(buf)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, "first", events[0].name)
		assert.Equal(t, "second-longer-name", events[1].name)
		assert.Equal(t, "third", events[2].name)
		assert.Equal(t, int32(2), events[1].wd)
	})

	t.Run("truncated header", func(t *testing.T) {
		buf := record(t, 1, 0x8, "a.txt", 16)
		events, err := parseRawEvents(buf[:len(buf)-17])
		assert.ErrorContains(t, err, "truncated notification record header")
		assert.Empty(t, events)
	})

	t.Run("declared name length exceeds buffer", func(t *testing.T) {
		buf := record(t, 1, 0x8, "a.txt", 16)
		events, err := parseRawEvents(buf[:len(buf)-1])
		assert.ErrorContains(t, err, "declares 16 name bytes")
		assert.Empty(t, events)
	})

	t.Run("trailing garbage after valid record", func(t *testing.T) {
		buf := record(t, 1, 0x8, "a.txt", 16)
		buf = append(buf, 0x1, 0x2, 0x3)
		events, err := parseRawEvents(buf)
		assert.Error(t, err)
		assert.Empty(t, events)
	})
}
