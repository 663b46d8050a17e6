// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package zipentry

import (
	"hash"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"

	"github.com/bureau-foundation/concat/lib/fault"
)

// entry streams one entry's decompressed bytes and checks them against
// the declared CRC-32 and size once the data ends.
type entry struct {
	stream       *stream
	header       *header
	compressed   *countingReader
	data         io.Reader
	decompressor io.Closer

	checksum hash.Hash32
	size     uint64
	err      error
	closed   bool
}

// open positions a decompressor at the start of h's data.
func (s *stream) open(h *header) (*entry, error) {
	if h.flags&flagEncrypted != 0 {
		return nil, malformed("entry %q is encrypted", h.name)
	}

	e := &entry{
		stream:     s,
		header:     h,
		compressed: &countingReader{reader: s.reader},
		checksum:   crc32.NewIEEE(),
	}
	var compressed io.Reader = e.compressed
	if !h.deferred() {
		compressed = io.LimitReader(e.compressed, int64(h.compressedSize))
	}

	switch h.method {
	case methodStore:
		if h.deferred() {
			return nil, malformed("stored entry %q has no sizes in its local header", h.name)
		}
		e.data = compressed
	case methodDeflate:
		decompressor := flate.NewReader(compressed)
		e.data = decompressor
		e.decompressor = decompressor
	case methodZstd:
		if h.deferred() {
			return nil, malformed("zstd entry %q has no sizes in its local header", h.name)
		}
		decoder, err := zstd.NewReader(compressed, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, s.classify(err, "starting zstd decoder for %q", h.name)
		}
		e.data = decoder
		e.decompressor = decoder.IOReadCloser()
	default:
		return nil, malformed("entry %q uses unsupported compression method %d", h.name, h.method)
	}
	return e, nil
}

func (e *entry) Read(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}

	n, err := e.data.Read(p)
	e.checksum.Write(p[:n])
	e.size += uint64(n)

	if !e.header.deferred() && e.size > e.header.uncompressedSize {
		e.err = malformed("entry %q holds more than its declared %d bytes", e.header.name, e.header.uncompressedSize)
		return n, e.err
	}
	switch {
	case err == io.EOF:
		if verifyErr := e.verify(); verifyErr != nil {
			e.err = verifyErr
			return n, verifyErr
		}
		e.err = io.EOF
		return n, io.EOF
	case err != nil:
		e.err = e.stream.classify(err, "reading entry %q", e.header.name)
		return n, e.err
	}
	return n, nil
}

// verify compares what was read with the header or data descriptor.
func (e *entry) verify() error {
	expected := descriptor{
		crc32:            e.header.crc32,
		compressedSize:   e.header.compressedSize,
		uncompressedSize: e.header.uncompressedSize,
	}
	if e.header.deferred() {
		var err error
		expected, err = e.stream.readDescriptor(e.header)
		if err != nil {
			return err
		}
		if uint64(e.compressed.count) != expected.compressedSize {
			return malformed("entry %q: %d compressed bytes, data descriptor declares %d",
				e.header.name, e.compressed.count, expected.compressedSize)
		}
	}
	if e.size != expected.uncompressedSize {
		return malformed("entry %q: %d bytes, declared %d", e.header.name, e.size, expected.uncompressedSize)
	}
	if sum := e.checksum.Sum32(); sum != expected.crc32 {
		return malformed("entry %q: CRC-32 %08x, declared %08x", e.header.name, sum, expected.crc32)
	}
	return nil
}

// releaseDecompressor frees decoder state. Decompressor close errors
// only repeat a failure Read already returned, so they are dropped.
func (e *entry) releaseDecompressor() {
	if e.decompressor != nil {
		e.decompressor.Close()
		e.decompressor = nil
	}
}

// Close releases the decompressor and closes the archive stream.
func (e *entry) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.releaseDecompressor()
	if err := e.stream.archive.Close(); err != nil {
		return fault.IO("closing archive: %w", err)
	}
	return nil
}

var _ io.ReadCloser = (*entry)(nil)
