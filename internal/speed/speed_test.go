package speed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	v, err := Decode([]byte(`{"speed": 6.25}`))
	require.NoError(t, err)
	assert.Equal(t, 6.25, v)
}

func TestDecodeExtraFields(t *testing.T) {
	// The peripheral may grow fields; only speed matters.
	v, err := Decode([]byte(`{"speed": 3.1, "battery": 87, "fw": "1.4"}`))
	require.NoError(t, err)
	assert.Equal(t, 3.1, v)
}

func TestDecodeTrimsWhitespace(t *testing.T) {
	v, err := Decode([]byte("  {\"speed\": 1.5}\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)
}

func TestDecodeMissingSpeed(t *testing.T) {
	v, err := Decode([]byte(`{"velocity": 9}`))
	require.NoError(t, err)
	assert.Zero(t, v, "absent speed field reads as 0")
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte("notjson"))
	assert.Error(t, err)

	_, err = Decode(nil)
	assert.Error(t, err)
}

func TestFixedSource(t *testing.T) {
	src := Fixed{V: 7.4}
	v, err := src.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7.4, v)
	assert.True(t, src.Alive())
	assert.NoError(t, src.Close())
}
