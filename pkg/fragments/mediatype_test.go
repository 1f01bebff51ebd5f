package fragments_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-fragments/pkg/fragments"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		name      string
		mediaType string
		want      fragments.Kind
		wantErr   bool
	}{
		{name: "plain", mediaType: "text/plain", want: fragments.KindTextPlain},
		{name: "charset parameter", mediaType: "text/plain; charset=utf-8", want: fragments.KindTextPlain},
		{name: "upper case", mediaType: "Text/Markdown", want: fragments.KindTextMarkdown},
		{name: "html", mediaType: "text/html", want: fragments.KindTextHTML},
		{name: "json", mediaType: "application/json", want: fragments.KindApplicationJSON},
		{name: "png", mediaType: "image/png", want: fragments.KindImagePNG},
		{name: "jpeg", mediaType: "image/jpeg", want: fragments.KindImageJPEG},
		{name: "webp", mediaType: "image/webp", want: fragments.KindImageWebP},
		{name: "gif", mediaType: "image/gif", want: fragments.KindImageGIF},
		{name: "unsupported", mediaType: "audio/mpeg", wantErr: true},
		{name: "bare subtype", mediaType: "plain", wantErr: true},
		{name: "empty", mediaType: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fragments.ParseKind(tt.mediaType)
			if tt.wantErr {
				assert.ErrorIs(t, err, fragments.ErrUnsupportedMediaType)
				assert.Equal(t, fragments.KindUnknown, got)
				assert.False(t, fragments.IsSupportedType(tt.mediaType))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, fragments.IsSupportedType(tt.mediaType))
		})
	}
}

func TestTargetsFor(t *testing.T) {
	images := []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

	tests := []struct {
		mediaType string
		want      []string
	}{
		{"text/plain", []string{"text/plain"}},
		{"text/plain; charset=utf-8", []string{"text/plain"}},
		{"text/markdown", []string{"text/plain", "text/markdown", "text/html"}},
		{"text/html", []string{"text/plain", "text/html"}},
		{"application/json", []string{"text/plain", "application/json"}},
		{"image/png", images},
		{"image/jpeg", images},
		{"image/webp", images},
		{"image/gif", images},
	}

	for _, tt := range tests {
		t.Run(tt.mediaType, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, fragments.TargetsFor(tt.mediaType))
		})
	}

	t.Run("unsupported has no targets", func(t *testing.T) {
		got := fragments.TargetsFor("video/mp4")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestKindForExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want fragments.Kind
	}{
		{".txt", fragments.KindTextPlain},
		{"txt", fragments.KindTextPlain},
		{".TXT", fragments.KindTextPlain},
		{".md", fragments.KindTextMarkdown},
		{".markdown", fragments.KindTextMarkdown},
		{".html", fragments.KindTextHTML},
		{".htm", fragments.KindTextHTML},
		{".json", fragments.KindApplicationJSON},
		{".png", fragments.KindImagePNG},
		{".jpg", fragments.KindImageJPEG},
		{".jpeg", fragments.KindImageJPEG},
		{".webp", fragments.KindImageWebP},
		{".gif", fragments.KindImageGIF},
		{".exe", fragments.KindUnknown},
		{"", fragments.KindUnknown},
		{".", fragments.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			assert.Equal(t, tt.want, fragments.KindForExtension(tt.ext))
		})
	}
}

func TestKindTableIsComplete(t *testing.T) {
	types := fragments.SupportedTypes()
	require.Len(t, types, 8)

	for _, mediaType := range types {
		k, err := fragments.ParseKind(mediaType)
		require.NoError(t, err, mediaType)

		assert.Equal(t, mediaType, k.String())
		assert.NotEmpty(t, k.Extension())
		assert.Equal(t, k, fragments.KindForExtension(k.Extension()), "extension round trip for %s", mediaType)
		assert.True(t, k.CanConvertTo(k), "%s should pass through to itself", mediaType)
		assert.NotEqual(t, k.IsText(), k.IsImage() || k == fragments.KindApplicationJSON)
	}

	assert.Equal(t, "unknown", fragments.KindUnknown.String())
	assert.Empty(t, fragments.KindUnknown.Targets())
	assert.False(t, fragments.KindUnknown.CanConvertTo(fragments.KindTextPlain))
}

func TestTargetsAgreeWithCanConvertTo(t *testing.T) {
	for _, source := range fragments.SupportedTypes() {
		sk, err := fragments.ParseKind(source)
		require.NoError(t, err)

		targets := fragments.TargetsFor(source)
		for _, target := range fragments.SupportedTypes() {
			tk, err := fragments.ParseKind(target)
			require.NoError(t, err)
			assert.Equal(t, sk.CanConvertTo(tk), contains(targets, target), "%s -> %s", source, target)
		}
	}
}

func TestBaseMediaType(t *testing.T) {
	base, err := fragments.BaseMediaType("text/HTML; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "text/html", base)

	_, err = fragments.BaseMediaType("")
	assert.Error(t, err)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
