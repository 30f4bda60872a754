package backends

import (
	"context"
	"encoding/base64"
	"strings"

	"invoicer/internal/ports"
	"invoicer/internal/types"

	"github.com/klauspost/compress/zstd"
)

// compressedPrefix marks values written by CompressedGateway. Values without it are passed through as-is,
// so a store can switch compression on over existing plain JSON blobs.
const compressedPrefix = "zstd:"

var enc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
var dec, _ = zstd.NewReader(nil)

// CompressedGateway zstd-compresses and base64-url encodes values before handing them to the inner gateway.
type CompressedGateway struct {
	inner ports.Gateway
}

func NewCompressedGateway(inner ports.Gateway) *CompressedGateway {
	return &CompressedGateway{inner: inner}
}

func (g *CompressedGateway) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := g.inner.Get(ctx, key)
	if err != nil || !ok {
		return v, ok, err
	}
	if !strings.HasPrefix(v, compressedPrefix) {
		return v, true, nil
	}
	out, err := DecodeValue(v)
	if err != nil {
		return "", true, types.Err(types.ErrCorruptData, err, "decode %s", key)
	}
	return out, true, nil
}

func (g *CompressedGateway) Set(ctx context.Context, key string, value string) error {
	return g.inner.Set(ctx, key, EncodeValue(value))
}

// EncodeValue compresses s and returns it base64-url encoded behind compressedPrefix.
func EncodeValue(s string) string {
	b := enc.EncodeAll([]byte(s), make([]byte, 0, len(s)))
	return compressedPrefix + base64.RawURLEncoding.EncodeToString(b)
}

// DecodeValue reverses EncodeValue.
func DecodeValue(in string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(in, compressedPrefix))
	if err != nil {
		return "", err
	}
	out, err := dec.DecodeAll(b, nil)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
