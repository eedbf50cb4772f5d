// Package codec centralizes member payload encoding.
//
// Members are opaque bytes to the index; a codec can transparently compress
// them on the wire and in the store. Codec selection is a compatibility
// boundary: members written with one codec must be read and removed with
// the same codec, since sorted-set member identity is the encoded form.
package codec

// Codec encodes and decodes member payloads.
// Implementations must be safe for concurrent use.
type Codec interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "raw":
		return Raw{}, true
	case "s2":
		return S2{}, true
	case "lz4":
		return LZ4{}, true
	default:
		return nil, false
	}
}

// Raw is the identity codec: members are stored as given.
type Raw struct{}

// Encode returns data unchanged.
func (Raw) Encode(data []byte) ([]byte, error) { return data, nil }

// Decode returns data unchanged.
func (Raw) Decode(data []byte) ([]byte, error) { return data, nil }

// Name returns the unique name of the codec ("raw").
func (Raw) Name() string { return "raw" }

// Default is the codec used when none is configured.
var Default Codec = Raw{}
