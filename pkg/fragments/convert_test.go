package fragments_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-fragments/pkg/fragments"
)

type fakeRenderer struct {
	out []byte
	err error
}

func (r *fakeRenderer) Render(src []byte) ([]byte, error) {
	return r.out, r.err
}

type fakeTranscoder struct {
	calls  []string
	result []byte
	err    error
}

func (tc *fakeTranscoder) Transcode(src []byte, target string) ([]byte, error) {
	tc.calls = append(tc.calls, target)
	return tc.result, tc.err
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 60), G: uint8(y * 80), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestConvertMarkdownToHTML(t *testing.T) {
	c := fragments.NewConverter()

	out, err := c.Convert("text/markdown", []byte("# This is a markdown fragment"), ".html")
	require.NoError(t, err)
	assert.Equal(t, "text/html", out.MediaType)
	assert.Equal(t, "<h1>This is a markdown fragment</h1>\n", string(out.Data))
}

func TestConvertTextPlainDemotion(t *testing.T) {
	c := fragments.NewConverter()

	// text/plain itself is a pass-through, see TestConvertPassThroughKeepsDeclaredType
	for _, source := range []string{"text/markdown", "text/html", "application/json", "text/html; charset=utf-8"} {
		t.Run(source, func(t *testing.T) {
			raw := []byte(`{"a": "<b>#</b>"}`)
			out, err := c.Convert(source, raw, "txt")
			require.NoError(t, err)
			assert.Equal(t, raw, out.Data)
			assert.Equal(t, "text/plain", out.MediaType)
		})
	}
}

func TestConvertPassThroughKeepsDeclaredType(t *testing.T) {
	transcoder := &fakeTranscoder{}
	c := fragments.NewConverter(fragments.WithImageTranscoder(transcoder))

	tests := []struct {
		source string
		ext    string
	}{
		{"text/plain; charset=utf-8", ".txt"},
		{"text/markdown", ".md"},
		{"text/markdown", ".markdown"},
		{"text/html", ".htm"},
		{"application/json", ".json"},
		{"image/png", ".png"},
		{"image/jpeg", ".jpeg"},
		{"image/gif", ".gif"},
	}

	for _, tt := range tests {
		t.Run(tt.source+tt.ext, func(t *testing.T) {
			raw := []byte("exact bytes")
			out, err := c.Convert(tt.source, raw, tt.ext)
			require.NoError(t, err)
			assert.Equal(t, raw, out.Data)
			assert.Equal(t, tt.source, out.MediaType)
		})
	}
	assert.Empty(t, transcoder.calls, "pass-through must not decode")
}

func TestConvertUnsupported(t *testing.T) {
	c := fragments.NewConverter()

	tests := []struct {
		name   string
		source string
		ext    string
	}{
		{"plain to markdown", "text/plain", ".md"},
		{"plain to html", "text/plain", ".html"},
		{"html to markdown", "text/html", ".md"},
		{"json to html", "application/json", ".html"},
		{"markdown to json", "text/markdown", ".json"},
		{"image to text", "image/png", ".txt"},
		{"text to image", "text/plain", ".png"},
		{"unknown extension", "text/plain", ".exe"},
		{"empty extension", "text/plain", ""},
		{"unsupported source", "audio/mpeg", ".txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.Convert(tt.source, []byte("data"), tt.ext)
			assert.ErrorIs(t, err, fragments.ErrUnsupportedConversion)
			assert.Nil(t, out)
		})
	}
}

func TestConvertImages(t *testing.T) {
	c := fragments.NewConverter()
	raw := testPNG(t)

	tests := []struct {
		ext      string
		wantType string
		format   string
	}{
		{".jpg", "image/jpeg", "jpeg"},
		{".webp", "image/webp", "webp"},
		{".gif", "image/gif", "gif"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			out, err := c.Convert("image/png", raw, tt.ext)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, out.MediaType)

			cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Data))
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, 4, cfg.Width)
			assert.Equal(t, 3, cfg.Height)
		})
	}
}

func TestConvertCodecFailures(t *testing.T) {
	t.Run("corrupt image", func(t *testing.T) {
		c := fragments.NewConverter()
		_, err := c.Convert("image/png", []byte("not a png"), ".jpg")
		assert.ErrorIs(t, err, fragments.ErrConversionFailed)
	})

	t.Run("renderer error", func(t *testing.T) {
		c := fragments.NewConverter(fragments.WithMarkdownRenderer(&fakeRenderer{err: errors.New("boom")}))
		_, err := c.Convert("text/markdown", []byte("# x"), ".html")
		assert.ErrorIs(t, err, fragments.ErrConversionFailed)
	})

	t.Run("transcoder error", func(t *testing.T) {
		transcoder := &fakeTranscoder{err: errors.New("boom")}
		c := fragments.NewConverter(fragments.WithImageTranscoder(transcoder))
		_, err := c.Convert("image/gif", []byte("gif"), ".webp")
		assert.ErrorIs(t, err, fragments.ErrConversionFailed)
		assert.Equal(t, []string{"image/webp"}, transcoder.calls)
	})
}

func TestConvertUsesInjectedRenderer(t *testing.T) {
	c := fragments.NewConverter(fragments.WithMarkdownRenderer(&fakeRenderer{out: []byte("<p>fake</p>")}))

	out, err := c.Convert("text/markdown", []byte("anything"), "html")
	require.NoError(t, err)
	assert.Equal(t, "<p>fake</p>", string(out.Data))
}

// Every supported source/target pair either converts or reports
// ErrUnsupportedConversion, matching the registry.
func TestConvertAgreesWithRegistry(t *testing.T) {
	c := fragments.NewConverter(
		fragments.WithMarkdownRenderer(&fakeRenderer{out: []byte("<p></p>")}),
		fragments.WithImageTranscoder(&fakeTranscoder{result: []byte("img")}),
	)

	for _, source := range fragments.SupportedTypes() {
		sk, err := fragments.ParseKind(source)
		require.NoError(t, err)
		for _, target := range fragments.SupportedTypes() {
			tk, err := fragments.ParseKind(target)
			require.NoError(t, err)

			_, err = c.Convert(source, []byte("data"), tk.Extension())
			if sk.CanConvertTo(tk) {
				assert.NoError(t, err, "%s -> %s", source, target)
			} else {
				assert.ErrorIs(t, err, fragments.ErrUnsupportedConversion, "%s -> %s", source, target)
			}
		}
	}
}
