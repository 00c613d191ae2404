package qr

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder_Encode(t *testing.T) {
	enc := NewEncoder(128)

	dataURL, err := enc.Encode("https://api.example.com/cabinets/4f1c")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dataURL, dataURLPrefix))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, dataURLPrefix))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}

func TestEncoder_EmptyPayload(t *testing.T) {
	_, err := NewEncoder(0).Encode("")
	assert.Error(t, err)
}

func TestCabinetURL(t *testing.T) {
	assert.Equal(t, "https://api.example.com/cabinets/abc", CabinetURL("https://api.example.com/", "abc"))
	assert.Equal(t, "http://localhost:8080/cabinets/abc", CabinetURL("http://localhost:8080", "abc"))
}
