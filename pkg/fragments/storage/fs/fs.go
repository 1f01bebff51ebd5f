package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/tendant/simple-fragments/pkg/fragments"
	"github.com/tendant/simple-fragments/pkg/fragments/objectkey"
)

// Compression names accepted in Config
const (
	CompressionNone = "none"
	CompressionZstd = "zstd"
	CompressionLZ4  = "lz4"
)

// suffixes lists the on-disk suffix for each compression. Reads try the
// configured one first and then the rest, so data written before a change of
// setting stays readable.
var suffixes = map[string]string{
	CompressionNone: "",
	CompressionZstd: ".zst",
	CompressionLZ4:  ".lz4",
}

var readOrder = []string{CompressionNone, CompressionZstd, CompressionLZ4}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("fs: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("fs: zstd decoder initialization failed: " + err.Error())
	}
}

// Backend is a filesystem implementation of the fragments.DataStore interface
type Backend struct {
	mu          sync.RWMutex
	baseDir     string
	keys        objectkey.Generator
	compression string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir     string              // Base directory for storing files
	KeyGen      objectkey.Generator // Key layout; flat when nil
	Compression string              // none, zstd or lz4
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if config.Compression == "" {
		config.Compression = CompressionNone
	}
	if _, ok := suffixes[config.Compression]; !ok {
		return nil, fmt.Errorf("unknown compression %q", config.Compression)
	}
	if config.KeyGen == nil {
		config.KeyGen = objectkey.NewFlatGenerator("")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	baseDir, err := filepath.Abs(config.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	return &Backend{
		baseDir:     baseDir,
		keys:        config.KeyGen,
		compression: config.Compression,
	}, nil
}

func (b *Backend) path(ownerID, id string) (string, error) {
	if err := objectkey.Validate(ownerID, id); err != nil {
		return "", fmt.Errorf("%w: %v", fragments.ErrValidation, err)
	}
	return filepath.Join(b.baseDir, filepath.FromSlash(b.keys.GenerateKey(ownerID, id))), nil
}

// PutData writes the payload through a temp file and renames it into place
func (b *Backend) PutData(ctx context.Context, ownerID, id string, data []byte) error {
	base, err := b.path(ownerID, id)
	if err != nil {
		return err
	}

	encoded, err := encode(b.compression, data)
	if err != nil {
		return &fragments.StorageError{Backend: "fs", Key: base, Op: "encode", Err: err}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	dir := filepath.Dir(base)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	target := base + suffixes[b.compression]
	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("failed to commit file: %w", err)
	}

	// drop copies left by another compression setting
	for _, name := range readOrder {
		if name != b.compression {
			os.Remove(base + suffixes[name])
		}
	}
	return nil
}

// GetData reads and decodes the payload
func (b *Backend) GetData(ctx context.Context, ownerID, id string) ([]byte, error) {
	base, err := b.path(ownerID, id)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, name := range b.lookupOrder() {
		raw, err := os.ReadFile(base + suffixes[name])
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		data, err := decode(name, raw)
		if err != nil {
			return nil, &fragments.StorageError{Backend: "fs", Key: base, Op: "decode", Err: err}
		}
		return data, nil
	}
	return nil, fragments.ErrNotFound
}

// DeleteData removes every stored variant of the payload
func (b *Backend) DeleteData(ctx context.Context, ownerID, id string) (bool, error) {
	base, err := b.path(ownerID, id)
	if err != nil {
		return false, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	existed := false
	for _, name := range readOrder {
		err := os.Remove(base + suffixes[name])
		switch {
		case err == nil:
			existed = true
		case errors.Is(err, os.ErrNotExist):
		default:
			return existed, fmt.Errorf("failed to delete file: %w", err)
		}
	}

	if existed {
		b.cleanupEmptyDirectories(filepath.Dir(base))
	}
	return existed, nil
}

func (b *Backend) lookupOrder() []string {
	order := make([]string, 0, len(readOrder))
	order = append(order, b.compression)
	for _, name := range readOrder {
		if name != b.compression {
			order = append(order, name)
		}
	}
	return order
}

// cleanupEmptyDirectories recursively removes empty directories up to baseDir
func (b *Backend) cleanupEmptyDirectories(dir string) {
	// Don't remove the base directory
	if dir == b.baseDir || !isWithin(b.baseDir, dir) {
		return
	}

	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}

func isWithin(base, dir string) bool {
	rel, err := filepath.Rel(base, dir)
	return err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func encode(compression string, data []byte) ([]byte, error) {
	switch compression {
	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return data, nil
	}
}

func decode(compression string, raw []byte) ([]byte, error) {
	switch compression {
	case CompressionZstd:
		out, err := zstdDecoder.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return out, nil
	case CompressionLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(raw)))
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		return out, nil
	default:
		return raw, nil
	}
}
