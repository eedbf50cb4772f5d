package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte(""),
		[]byte("abc"),
		[]byte(`{"activity":"abc","actor":"user:1"}`),
		bytes.Repeat([]byte("sandsnake"), 1024),
	}

	for _, c := range []Codec{Raw{}, S2{}, LZ4{}} {
		t.Run(c.Name(), func(t *testing.T) {
			for _, payload := range payloads {
				encoded, err := c.Encode(payload)
				require.NoError(t, err)

				decoded, err := c.Decode(encoded)
				require.NoError(t, err)
				assert.Equal(t, payload, decoded)
			}
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	// Empty members must survive the round trip as empty, non-nil slices;
	// callers compare decoded values byte-for-byte.
	for _, c := range []Codec{Raw{}, S2{}, LZ4{}} {
		t.Run(c.Name(), func(t *testing.T) {
			encoded, err := c.Encode([]byte{})
			require.NoError(t, err)

			decoded, err := c.Decode(encoded)
			require.NoError(t, err)
			assert.NotNil(t, decoded)
			assert.Empty(t, decoded)
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	// Member identity in the store is the encoded form; the same input must
	// always encode to the same bytes or removes would miss.
	payload := bytes.Repeat([]byte("deterministic"), 128)

	for _, c := range []Codec{Raw{}, S2{}, LZ4{}} {
		t.Run(c.Name(), func(t *testing.T) {
			a, err := c.Encode(payload)
			require.NoError(t, err)
			b, err := c.Encode(payload)
			require.NoError(t, err)
			assert.Equal(t, a, b)
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"raw", "s2", "lz4"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("zstd")
	assert.False(t, ok)
}
