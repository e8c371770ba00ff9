package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSniffImage(t *testing.T) {
	t.Run("png is accepted and rewound", func(t *testing.T) {
		r := bytes.NewReader(pngBytes(t))
		format, err := SniffImage(r)
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		pos, err := r.Seek(0, io.SeekCurrent)
		require.NoError(t, err)
		assert.Zero(t, pos)
	})

	t.Run("text is rejected", func(t *testing.T) {
		_, err := SniffImage(strings.NewReader("definitely not an image"))
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})
}

func TestGenerateQRCode(t *testing.T) {
	bs, err := GenerateQRCode("https://example.com/a.png")
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(bs))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, QRCodeSize, cfg.Width)

	_, err = GenerateQRCode("")
	assert.Error(t, err)
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "hello", SanitizeText("  <b>hello</b> "))
	assert.Equal(t, "", SanitizeText("<script>alert(1)</script>"))
	assert.Equal(t, "plain text", SanitizeText("plain text"))
	assert.Equal(t, "Tom & Jerry's <3", SanitizeText("Tom & Jerry's <3"))
	assert.Equal(t, `say "hi"`, SanitizeText(`say "hi"`))
	assert.Equal(t, "", SanitizeText("&lt;script&gt;alert(1)&lt;/script&gt;"))
}

func TestLengthsCountUnescapedText(t *testing.T) {
	text, err := CleanComment("it's fine")
	require.NoError(t, err)
	assert.Equal(t, "it's fine", text)

	// 255 ampersands are 255 characters, not 1275 bytes of "&amp;".
	text, err = CleanComment(strings.Repeat("&", MaxCommentLength))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("&", MaxCommentLength), text)

	desc, err := cleanDescription(strings.Repeat("'", MaxDescriptionLength))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("'", MaxDescriptionLength), desc)

	_, err = cleanDescription(strings.Repeat("&", MaxDescriptionLength+1))
	assert.ErrorIs(t, err, ErrDescriptionLength)
}
