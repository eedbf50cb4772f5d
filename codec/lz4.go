package codec

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4 compresses members with the self-describing LZ4 frame format.
type LZ4 struct{}

// Encode compresses data as one LZ4 frame.
func (LZ4) Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode decompresses one LZ4 frame. An empty payload decodes to an empty,
// non-nil slice.
func (LZ4) Decode(data []byte) ([]byte, error) {
	decoded, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, err
	}
	if decoded == nil {
		decoded = []byte{}
	}
	return decoded, nil
}

// Name returns the unique name of the codec ("lz4").
func (LZ4) Name() string { return "lz4" }
