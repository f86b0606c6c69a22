package roblox

import (
	"encoding/json"
	"errors"
	"iter"
)

// ErrEmptySequence is returned by Headshots.Next once every entry the API
// returned has been consumed.
var ErrEmptySequence = errors.New("headshot sequence is empty")

// Headshots is a single-pass sequence over one thumbnails response. Entries
// are converted only as they are consumed. The API silently omits ids it
// cannot resolve, so the sequence may be shorter than the request.
type Headshots struct {
	entries   []json.RawMessage
	pos       int
	requested int
	err       error
}

// Next converts and returns the next headshot. It returns ErrEmptySequence
// when exhausted, or a decode error if the entry lacks targetId or imageUrl.
func (h *Headshots) Next() (Headshot, error) {
	if h.pos >= len(h.entries) {
		return Headshot{}, ErrEmptySequence
	}
	entry := h.entries[h.pos]
	h.pos++
	return decodeHeadshot(entry)
}

// All yields the remaining headshots. Iteration stops at the first malformed
// entry; check Err afterwards.
func (h *Headshots) All() iter.Seq[Headshot] {
	return func(yield func(Headshot) bool) {
		for {
			shot, err := h.Next()
			if errors.Is(err, ErrEmptySequence) {
				return
			}
			if err != nil {
				h.err = err
				return
			}
			if !yield(shot) {
				return
			}
		}
	}
}

// Err returns the decode error that ended All, if any
func (h *Headshots) Err() error {
	return h.err
}

// Remaining reports how many entries have not been consumed yet
func (h *Headshots) Remaining() int {
	return len(h.entries) - h.pos
}

// Requested is the number of user ids sent in the request
func (h *Headshots) Requested() int {
	return h.requested
}
