package fragments

import (
	"fmt"
	"mime"
	"strings"
)

// Kind identifies one of the supported base media types.
type Kind uint8

// Supported kinds. Adding a kind means adding a constant here and a row in
// kindTable; init panics if the row is missing.
const (
	KindUnknown Kind = iota
	KindTextPlain
	KindTextMarkdown
	KindTextHTML
	KindApplicationJSON
	KindImagePNG
	KindImageJPEG
	KindImageWebP
	KindImageGIF

	kindCount
)

type family uint8

const (
	familyNone family = iota
	familyText
	familyJSON
	familyImage
)

// kindSet is a bitmask of kinds.
type kindSet uint32

func setOf(kinds ...Kind) kindSet {
	var s kindSet
	for _, k := range kinds {
		s |= 1 << k
	}
	return s
}

func (s kindSet) has(k Kind) bool {
	return k < kindCount && s&(1<<k) != 0
}

type kindSpec struct {
	mediaType string
	extension string
	family    family
	targets   kindSet
}

var imageTargets = setOf(KindImagePNG, KindImageJPEG, KindImageWebP, KindImageGIF)

var kindTable = [kindCount]kindSpec{
	KindUnknown: {},
	KindTextPlain: {
		mediaType: "text/plain",
		extension: ".txt",
		family:    familyText,
		targets:   setOf(KindTextPlain),
	},
	KindTextMarkdown: {
		mediaType: "text/markdown",
		extension: ".md",
		family:    familyText,
		targets:   setOf(KindTextMarkdown, KindTextHTML, KindTextPlain),
	},
	KindTextHTML: {
		mediaType: "text/html",
		extension: ".html",
		family:    familyText,
		targets:   setOf(KindTextHTML, KindTextPlain),
	},
	KindApplicationJSON: {
		mediaType: "application/json",
		extension: ".json",
		family:    familyJSON,
		targets:   setOf(KindApplicationJSON, KindTextPlain),
	},
	KindImagePNG:  {mediaType: "image/png", extension: ".png", family: familyImage, targets: imageTargets},
	KindImageJPEG: {mediaType: "image/jpeg", extension: ".jpg", family: familyImage, targets: imageTargets},
	KindImageWebP: {mediaType: "image/webp", extension: ".webp", family: familyImage, targets: imageTargets},
	KindImageGIF:  {mediaType: "image/gif", extension: ".gif", family: familyImage, targets: imageTargets},
}

// extensionAliases are accepted on read in addition to each kind's
// canonical extension.
var extensionAliases = map[string]Kind{
	".jpeg":     KindImageJPEG,
	".htm":      KindTextHTML,
	".markdown": KindTextMarkdown,
}

var (
	kindsByMediaType = make(map[string]Kind, kindCount)
	kindsByExtension = make(map[string]Kind, int(kindCount)+len(extensionAliases))
)

func init() {
	for k := KindUnknown + 1; k < kindCount; k++ {
		spec := kindTable[k]
		if spec.mediaType == "" || spec.extension == "" || spec.family == familyNone {
			panic(fmt.Sprintf("fragments: kind %d has no table entry", k))
		}
		if !spec.targets.has(k) {
			panic(fmt.Sprintf("fragments: kind %s cannot convert to itself", spec.mediaType))
		}
		kindsByMediaType[spec.mediaType] = k
		kindsByExtension[spec.extension] = k
	}
	for ext, k := range extensionAliases {
		kindsByExtension[ext] = k
	}
}

// String returns the canonical media type of the kind.
func (k Kind) String() string {
	if k >= kindCount || k == KindUnknown {
		return "unknown"
	}
	return kindTable[k].mediaType
}

// Extension returns the canonical file extension including the dot.
func (k Kind) Extension() string {
	if k >= kindCount {
		return ""
	}
	return kindTable[k].extension
}

// IsText reports whether the kind's media type is in the text/* tree.
func (k Kind) IsText() bool {
	return k < kindCount && kindTable[k].family == familyText
}

// IsImage reports whether the kind is one of the raster image formats.
func (k Kind) IsImage() bool {
	return k < kindCount && kindTable[k].family == familyImage
}

// CanConvertTo reports whether k may be converted into target.
func (k Kind) CanConvertTo(target Kind) bool {
	if k == KindUnknown || k >= kindCount {
		return false
	}
	return kindTable[k].targets.has(target)
}

// Targets returns the kinds k may be converted into, in declaration order.
func (k Kind) Targets() []Kind {
	var out []Kind
	if k == KindUnknown || k >= kindCount {
		return out
	}
	for t := KindUnknown + 1; t < kindCount; t++ {
		if kindTable[k].targets.has(t) {
			out = append(out, t)
		}
	}
	return out
}

// BaseMediaType strips parameters from a media type and lower-cases it:
// "text/html; charset=utf-8" -> "text/html".
func BaseMediaType(value string) (string, error) {
	base, _, err := mime.ParseMediaType(value)
	if err != nil {
		return "", err
	}
	return base, nil
}

// ParseKind resolves a declared media type to its Kind, ignoring parameters.
func ParseKind(mediaType string) (Kind, error) {
	base, err := BaseMediaType(mediaType)
	if err != nil {
		return KindUnknown, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mediaType)
	}
	k, ok := kindsByMediaType[base]
	if !ok {
		return KindUnknown, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mediaType)
	}
	return k, nil
}

// IsSupportedType reports whether a fragment may be created with mediaType.
func IsSupportedType(mediaType string) bool {
	_, err := ParseKind(mediaType)
	return err == nil
}

// TargetsFor returns the media types mediaType may be converted into.
// Unsupported types have no targets.
func TargetsFor(mediaType string) []string {
	k, err := ParseKind(mediaType)
	if err != nil {
		return []string{}
	}
	targets := k.Targets()
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		out = append(out, t.String())
	}
	return out
}

// KindForExtension maps a file extension ("txt", ".TXT") to a Kind.
// Unrecognized extensions map to KindUnknown.
func KindForExtension(ext string) Kind {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return KindUnknown
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if k, ok := kindsByExtension[ext]; ok {
		return k
	}
	return KindUnknown
}

// SupportedTypes lists every accepted base media type.
func SupportedTypes() []string {
	out := make([]string, 0, kindCount-1)
	for k := KindUnknown + 1; k < kindCount; k++ {
		out = append(out, kindTable[k].mediaType)
	}
	return out
}
