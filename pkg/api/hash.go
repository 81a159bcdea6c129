package api

import (
	"encoding/hex"
	"strconv"

	"github.com/zeebo/blake3"
)

// ID returns a stable identifier derived from the post URL, or from the
// markdown path for records that predate source_url.
func (e Essay) ID() string {
	key := e.SourceURL
	if key == "" {
		key = e.FileLink
	}
	sum := blake3.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16])
}

// Hash returns a deterministic BLAKE3 hash over every field.
// Two essays with the same hash are treated as the same record.
func (e Essay) Hash() string {
	h := blake3.New()

	// null separators keep adjacent fields from running together
	for _, f := range []string{
		e.Title,
		e.Subtitle,
		strconv.Itoa(e.LikeCount),
		e.Date,
		e.FileLink,
		e.HTMLLink,
		e.SourceURL,
	} {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
