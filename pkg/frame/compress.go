package frame

import (
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/JMARyA/shfs/pkg/errors"
)

var (
	encoderOnce sync.Once
	encoder     *zstd.Encoder
	encoderErr  error

	decoderOnce sync.Once
	decoder     *zstd.Decoder
	decoderErr  error
)

func getEncoder() (*zstd.Encoder, error) {
	encoderOnce.Do(func() {
		encoder, encoderErr = zstd.NewWriter(nil)
	})
	return encoder, encoderErr
}

func getDecoder() (*zstd.Decoder, error) {
	decoderOnce.Do(func() {
		decoder, decoderErr = zstd.NewReader(nil)
	})
	return decoder, decoderErr
}

// Compress returns the zstd-compressed form of data, and whether
// compressing was worthwhile: the server wraps a response in Compressed
// iff the compressed bit-length is strictly less than the uncompressed
// bit-length, so callers should compare len(out)*8 < len(data)*8 (i.e.
// len(out) < len(data)) before using the result.
func Compress(data []byte) (out []byte, worthwhile bool, err error) {
	enc, err := getEncoder()
	if err != nil {
		return nil, false, errors.Wrap(err, "creating zstd encoder")
	}
	out = enc.EncodeAll(data, nil)
	return out, len(out) < len(data), nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	dec, err := getDecoder()
	if err != nil {
		return nil, errors.Wrap(err, "creating zstd decoder")
	}
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, errors.Wrap(err, "decompressing payload")
	}
	return out, nil
}
