package paymsg

import (
	"fmt"
	"io"

	"github.com/multiformats/go-varint"
)

// MaxMessageSize is the largest encoded payment protocol message accepted
// from a peer, per the reference protocol. Larger frames are rejected before
// any allocation.
const MaxMessageSize = 50000

// Message is implemented by all payment protocol messages.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

// WriteDelimited encodes msg and writes it to w prefixed with its varint
// length, the stream framing used on connection-oriented transports.
func WriteDelimited(w io.Writer, msg Message) error {
	enc, err := msg.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	return WriteDelimitedRaw(w, enc)
}

// WriteDelimitedRaw writes already encoded message bytes to w prefixed with
// their varint length.
func WriteDelimitedRaw(w io.Writer, enc []byte) error {
	if _, err := w.Write(varint.ToUvarint(uint64(len(enc)))); err != nil {
		return fmt.Errorf("failed to write message length: %w", err)
	}
	if _, err := w.Write(enc); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}
	return nil
}

// ReadDelimited reads one varint length prefixed message from r into msg. It
// consumes exactly the prefix and body bytes, never reading ahead, so the
// stream position stays aligned for whatever follows.
func ReadDelimited(r io.Reader, msg Message) error {
	body, err := ReadDelimitedRaw(r)
	if err != nil {
		return err
	}
	if err := msg.Unmarshal(body); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	return nil
}

// ReadDelimitedRaw reads one varint length prefixed message from r and
// returns its encoded bytes undecoded, for peers that need to echo exactly
// what arrived.
func ReadDelimitedRaw(r io.Reader) ([]byte, error) {
	size, err := varint.ReadUvarint(oneByteReader{r})
	if err != nil {
		return nil, fmt.Errorf("failed to read message length: %w", err)
	}
	if size > MaxMessageSize {
		return nil, fmt.Errorf("message of %d bytes exceeds the %d byte limit", size, MaxMessageSize)
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}
	return body, nil
}

// oneByteReader adapts an io.Reader to io.ByteReader with single byte reads.
// bufio would read past the length prefix and lose body bytes.
type oneByteReader struct {
	r io.Reader
}

func (b oneByteReader) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(b.r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}
