package preview

import (
	"encoding/base64"
	"fmt"
	"io"
)

const (
	escapeStart = "\x1b_G"
	escapeEnd   = "\x1b\\"
	chunkSize   = 4096
)

// encoder writes image bytes as kitty graphics escape sequences,
// chunking payloads the protocol caps at 4096 base64 bytes.
type encoder struct {
	out io.Writer
}

func newEncoder(out io.Writer) *encoder {
	return &encoder{out: out}
}

func (e *encoder) encode(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	if len(encoded) <= chunkSize {
		_, err := fmt.Fprintf(e.out, "%sa=T,f=100,q=2;%s%s", escapeStart, encoded, escapeEnd)
		return err
	}
	return e.encodeChunked(encoded)
}

func (e *encoder) encodeChunked(encoded string) error {
	for first := true; len(encoded) > 0; first = false {
		n := chunkSize
		if len(encoded) < n {
			n = len(encoded)
		}
		chunk, rest := encoded[:n], encoded[n:]

		var params string
		switch {
		case first:
			params = "a=T,f=100,q=2,m=1"
		case len(rest) == 0:
			params = "m=0"
		default:
			params = "m=1"
		}

		if _, err := fmt.Fprintf(e.out, "%s%s;%s%s", escapeStart, params, chunk, escapeEnd); err != nil {
			return err
		}
		encoded = rest
	}
	return nil
}
