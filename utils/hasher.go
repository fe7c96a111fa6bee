package utils

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
)

// HashChunkSize is the read granularity for content hashing.
const HashChunkSize = 2 * 1024 * 1024 // 2MiB

// ChunkedHasher computes an MD5 content digest by feeding fixed-size chunks
// into an incremental accumulator. Each instance is single-use; concurrent
// hash computations get their own hasher and share no state.
type ChunkedHasher struct {
	chunkSize int
}

func NewChunkedHasher() *ChunkedHasher {
	return &ChunkedHasher{chunkSize: HashChunkSize}
}

// Sum consumes the reader chunk by chunk and returns the hex digest along
// with the number of bytes read. Any read error aborts the computation;
// partial state is discarded.
func (h *ChunkedHasher) Sum(ctx context.Context, r io.Reader) (string, int64, error) {
	digest := md5.New()
	buf := make([]byte, h.chunkSize)

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		n, err := r.Read(buf)
		if n > 0 {
			total += int64(n)
			digest.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", 0, fmt.Errorf("failed to read chunk: %w", err)
		}
	}

	return hex.EncodeToString(digest.Sum(nil)), total, nil
}

// HashResult carries the outcome of a background hash computation.
type HashResult struct {
	Digest string
	Size   int64
	Err    error
}

// SumAsync runs Sum off the calling goroutine and delivers a single result on
// the returned channel.
func (h *ChunkedHasher) SumAsync(ctx context.Context, r io.Reader) <-chan HashResult {
	out := make(chan HashResult, 1)
	go func() {
		defer close(out)
		digest, size, err := h.Sum(ctx, r)
		out <- HashResult{Digest: digest, Size: size, Err: err}
	}()
	return out
}
