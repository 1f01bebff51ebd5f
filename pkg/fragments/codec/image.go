package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/HugoSmits86/nativewebp"
	"github.com/gen2brain/jpegli"
	_ "golang.org/x/image/webp"
)

var (
	// ErrDecode indicates the source bytes are not a decodable image
	ErrDecode = errors.New("cannot decode image")

	// ErrUnsupportedFormat indicates the target format has no encoder
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Target media types understood by ImageTranscoder
const (
	MediaTypePNG  = "image/png"
	MediaTypeJPEG = "image/jpeg"
	MediaTypeWebP = "image/webp"
	MediaTypeGIF  = "image/gif"
)

// ImageTranscoder decodes PNG, JPEG, WEBP or GIF and re-encodes into one of
// the same formats. JPEG output is quality 100 with 4:4:4 chroma, WEBP
// output is lossless, PNG and GIF use their default encoders.
type ImageTranscoder struct {
	png  png.Encoder
	jpeg jpegli.EncodingOptions
	gif  *gif.Options
}

// NewImageTranscoder creates a transcoder with the fixed per-format settings
func NewImageTranscoder() *ImageTranscoder {
	return &ImageTranscoder{
		png: png.Encoder{CompressionLevel: png.DefaultCompression},
		jpeg: jpegli.EncodingOptions{
			Quality:           100,
			ChromaSubsampling: image.YCbCrSubsampleRatio444,
		},
		gif: nil,
	}
}

// Transcode decodes source and encodes it as targetMediaType
func (t *ImageTranscoder) Transcode(source []byte, targetMediaType string) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	var buf bytes.Buffer
	switch targetMediaType {
	case MediaTypePNG:
		err = t.png.Encode(&buf, img)
	case MediaTypeJPEG:
		opts := t.jpeg
		err = jpegli.Encode(&buf, img, &opts)
	case MediaTypeWebP:
		err = nativewebp.Encode(&buf, img, nil)
	case MediaTypeGIF:
		err = gif.Encode(&buf, img, t.gif)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, targetMediaType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", targetMediaType, err)
	}

	return buf.Bytes(), nil
}
