package fragments

import (
	"fmt"

	"github.com/tendant/simple-fragments/pkg/fragments/codec"
)

// Conversion is the output of Converter.Convert
type Conversion struct {
	Data      []byte
	MediaType string
}

// Converter decides whether a stored fragment may be served as another type
// and performs the conversion through its codecs.
type Converter struct {
	markdown MarkdownRenderer
	images   ImageTranscoder
}

// ConverterOption configures a Converter
type ConverterOption func(*Converter)

// WithMarkdownRenderer replaces the markdown renderer
func WithMarkdownRenderer(r MarkdownRenderer) ConverterOption {
	return func(c *Converter) {
		c.markdown = r
	}
}

// WithImageTranscoder replaces the image codec
func WithImageTranscoder(t ImageTranscoder) ConverterOption {
	return func(c *Converter) {
		c.images = t
	}
}

// NewConverter creates a Converter backed by the goldmark renderer and the
// standard image transcoder unless overridden.
func NewConverter(options ...ConverterOption) *Converter {
	c := &Converter{}
	for _, option := range options {
		option(c)
	}
	if c.markdown == nil {
		c.markdown = codec.NewMarkdownRenderer()
	}
	if c.images == nil {
		c.images = codec.NewImageTranscoder()
	}
	return c
}

// Convert serves raw, stored as sourceType, in the type named by extension.
func (c *Converter) Convert(sourceType string, raw []byte, extension string) (*Conversion, error) {
	target := KindForExtension(extension)
	if target == KindUnknown {
		return nil, fmt.Errorf("%w: unknown extension %q", ErrUnsupportedConversion, extension)
	}

	source, err := ParseKind(sourceType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s cannot be converted", ErrUnsupportedConversion, sourceType)
	}

	// Every conversion, including same-type pass-through, goes through the
	// target set.
	if !source.CanConvertTo(target) {
		return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, source, target)
	}

	switch {
	case target == source:
		return &Conversion{Data: raw, MediaType: sourceType}, nil

	case target == KindTextPlain:
		// markdown, html and json read as plain text are the same bytes
		return &Conversion{Data: raw, MediaType: target.String()}, nil

	case source == KindTextMarkdown && target == KindTextHTML:
		out, err := c.markdown.Render(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: render markdown: %v", ErrConversionFailed, err)
		}
		return &Conversion{Data: out, MediaType: target.String()}, nil

	case source.IsImage() && target.IsImage():
		out, err := c.images.Transcode(raw, target.String())
		if err != nil {
			return nil, fmt.Errorf("%w: %s to %s: %v", ErrConversionFailed, source, target, err)
		}
		return &Conversion{Data: out, MediaType: target.String()}, nil
	}

	return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, source, target)
}
