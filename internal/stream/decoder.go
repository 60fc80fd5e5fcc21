// Package stream implements both ends of the chat SSE envelope: the encoder used
// when the relay synthesizes a reply itself, and the incremental consumer that
// turns an arbitrary chunking of the byte stream back into assistant text.
package stream

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder converts byte chunks to text. An incomplete multi-byte sequence at the
// end of a chunk is held back and completed by the next chunk.
type Decoder struct {
	t     transform.Transformer
	carry []byte
}

func NewDecoder() *Decoder {
	return &Decoder{t: unicode.UTF8.NewDecoder()}
}

// Decode returns the text that can be resolved so far.
func (d *Decoder) Decode(chunk []byte) string {
	return d.decode(chunk, false)
}

// Flush resolves whatever is still held back. Invalid trailing bytes become U+FFFD.
func (d *Decoder) Flush() string {
	return d.decode(nil, true)
}

// Pending reports how many bytes are waiting for the rest of their rune.
func (d *Decoder) Pending() int { return len(d.carry) }

func (d *Decoder) decode(chunk []byte, atEOF bool) string {
	src := chunk
	if len(d.carry) > 0 {
		src = make([]byte, 0, len(d.carry)+len(chunk))
		src = append(src, d.carry...)
		src = append(src, chunk...)
		d.carry = nil
	}
	if len(src) == 0 {
		return ""
	}

	// Each invalid byte expands to a 3-byte replacement rune at most.
	dst := make([]byte, len(src)*3+utf8.UTFMax)
	nDst, nSrc, err := d.t.Transform(dst, src, atEOF)
	if errors.Is(err, transform.ErrShortSrc) {
		d.carry = append([]byte(nil), src[nSrc:]...)
	}
	if atEOF {
		d.t.Reset()
	}
	return string(dst[:nDst])
}
