package objectkey

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKey indicates an owner or fragment id cannot be used as a key segment
var ErrInvalidKey = errors.New("invalid object key segment")

// Generator defines the interface for object key generation strategies
type Generator interface {
	// GenerateKey creates the storage key for a fragment's data
	GenerateKey(ownerID, id string) string
}

// Layout names accepted by NewFromLayout
const (
	LayoutFlat    = "flat"
	LayoutSharded = "sharded"
	LayoutHashed  = "hashed"
)

// NewFromLayout returns the generator registered under name. An empty name
// selects the flat layout.
func NewFromLayout(name string) (Generator, error) {
	switch strings.ToLower(name) {
	case "", LayoutFlat:
		return NewFlatGenerator(""), nil
	case LayoutSharded:
		return NewGitLikeGenerator(), nil
	case LayoutHashed:
		return NewHashedGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown key layout %q", name)
	}
}

// FlatGenerator stores data under {prefix}/{owner}/{id}
type FlatGenerator struct {
	Prefix string
}

func NewFlatGenerator(prefix string) *FlatGenerator {
	return &FlatGenerator{Prefix: strings.Trim(prefix, "/")}
}

func (g *FlatGenerator) GenerateKey(ownerID, id string) string {
	if g.Prefix == "" {
		return fmt.Sprintf("%s/%s", ownerID, id)
	}
	return fmt.Sprintf("%s/%s/%s", g.Prefix, ownerID, id)
}

// GitLikeGenerator shards an owner's fragments by the leading characters of
// the id: {owner}/objects/ab/cd1234...
type GitLikeGenerator struct {
	// ShardLength controls how many characters to use for sharding (default: 2)
	ShardLength int
}

func NewGitLikeGenerator() *GitLikeGenerator {
	return &GitLikeGenerator{
		ShardLength: 2,
	}
}

func (g *GitLikeGenerator) GenerateKey(ownerID, id string) string {
	clean := strings.ReplaceAll(strings.ToLower(id), "-", "")
	n := g.ShardLength
	if n <= 0 {
		n = 2
	}
	if len(clean) <= n {
		return fmt.Sprintf("%s/objects/%s", ownerID, id)
	}
	return fmt.Sprintf("%s/objects/%s/%s", ownerID, clean[:n], clean[n:])
}

// HashedGenerator derives the key from a hash of owner and id so the owner
// does not appear in the key: objects/ab/cdef0123456789...
type HashedGenerator struct {
	ShardLength int
}

func NewHashedGenerator() *HashedGenerator {
	return &HashedGenerator{
		ShardLength: 2,
	}
}

func (g *HashedGenerator) GenerateKey(ownerID, id string) string {
	sum := sha256.Sum256([]byte(ownerID + "/" + id))
	hashStr := hex.EncodeToString(sum[:])

	n := g.ShardLength
	if n <= 0 || n >= len(hashStr) {
		n = 2
	}
	return fmt.Sprintf("objects/%s/%s", hashStr[:n], hashStr[n:])
}

// CustomFuncGenerator allows users to provide their own key generation function
type CustomFuncGenerator struct {
	GenerateFunc func(ownerID, id string) string
}

func NewCustomFuncGenerator(fn func(ownerID, id string) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{
		GenerateFunc: fn,
	}
}

func (g *CustomFuncGenerator) GenerateKey(ownerID, id string) string {
	return g.GenerateFunc(ownerID, id)
}

// Validate rejects segments that could escape their directory or collide
// with another owner's keys once joined into a path.
func Validate(ownerID, id string) error {
	for _, segment := range []struct{ name, value string }{{"owner id", ownerID}, {"id", id}} {
		switch {
		case segment.value == "":
			return fmt.Errorf("%w: %s is empty", ErrInvalidKey, segment.name)
		case segment.value == "." || segment.value == "..":
			return fmt.Errorf("%w: %s %q", ErrInvalidKey, segment.name, segment.value)
		case strings.ContainsAny(segment.value, "/\\\x00"):
			return fmt.Errorf("%w: %s contains a path separator", ErrInvalidKey, segment.name)
		}
	}
	return nil
}

// NewRecommendedGenerator returns the recommended generator for new installations
func NewRecommendedGenerator() Generator {
	return NewGitLikeGenerator()
}
