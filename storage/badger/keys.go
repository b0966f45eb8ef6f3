package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/faqmatch/core"
)

const (
	entryPrefix           = "faqent:"
	interactionPrefix     = "intrec:"
	interactionDatePrefix = "intdat:"
	interactionIDSeq      = "intseq"
)

// makeEntryKey generates the key for the entry at a corpus position.
// Format: prefix + big-endian position, so iteration follows corpus order.
func makeEntryKey(position int) []byte {
	buf := make([]byte, len(entryPrefix)+8)
	offset := copy(buf, entryPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(position))
	return buf
}

func makeInteractionKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s%d", interactionPrefix, id))
}

// makeInteractionDateKey generates a date index key.
// Format: prefix + timestamp (8 bytes) + ID (8 bytes)
func makeInteractionDateKey(timestamp time.Time, id core.ID) []byte {
	buf := make([]byte, len(interactionDatePrefix)+16)
	offset := copy(buf, interactionDatePrefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialInteractionDateKey generates a partial date key for range scans.
func makePartialInteractionDateKey(timestamp time.Time) []byte {
	buf := make([]byte, len(interactionDatePrefix)+8)
	offset := copy(buf, interactionDatePrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}
