package codec

import "github.com/klauspost/compress/s2"

// S2 compresses members with the S2 block format, a faster Snappy
// derivative. A good default when members are sizable payloads rather than
// short identifiers.
type S2 struct{}

// Encode compresses data as one S2 block.
func (S2) Encode(data []byte) ([]byte, error) {
	return s2.Encode(nil, data), nil
}

// Decode decompresses one S2 block. An empty payload decodes to an empty,
// non-nil slice.
func (S2) Decode(data []byte) ([]byte, error) {
	decoded, err := s2.Decode(nil, data)
	if err != nil {
		return nil, err
	}
	if decoded == nil {
		decoded = []byte{}
	}
	return decoded, nil
}

// Name returns the unique name of the codec ("s2").
func (S2) Name() string { return "s2" }
