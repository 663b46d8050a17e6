// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"archive/zip"
	"bytes"
	"hash/crc32"
	"io"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
)

// ZipMethodZstd is the zip compression method number for Zstandard.
const ZipMethodZstd uint16 = 93

// ZipEntry describes one entry of a fixture archive.
type ZipEntry struct {
	Name    string
	Content []byte

	// Method is zip.Store, zip.Deflate, or ZipMethodZstd.
	Method uint16

	// Sized writes CRC and sizes into the local file header. Without
	// it they follow the data in a data descriptor.
	Sized bool
}

// ZipArchive returns the bytes of a zip archive holding entries in
// order.
func ZipArchive(t testing.TB, entries ...ZipEntry) []byte {
	t.Helper()

	var buffer bytes.Buffer
	writer := zip.NewWriter(&buffer)
	writer.RegisterCompressor(ZipMethodZstd, func(out io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(out, zstd.WithEncoderConcurrency(1))
	})

	for _, entry := range entries {
		if entry.Sized {
			writeSizedEntry(t, writer, entry)
			continue
		}
		header := &zip.FileHeader{Name: entry.Name, Method: entry.Method}
		destination, err := writer.CreateHeader(header)
		if err != nil {
			t.Fatalf("creating zip entry %q: %v", entry.Name, err)
		}
		if _, err := destination.Write(entry.Content); err != nil {
			t.Fatalf("writing zip entry %q: %v", entry.Name, err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("finishing zip archive: %v", err)
	}
	return buffer.Bytes()
}

func writeSizedEntry(t testing.TB, writer *zip.Writer, entry ZipEntry) {
	t.Helper()

	compressed := Compress(t, entry.Method, entry.Content)
	header := &zip.FileHeader{
		Name:               entry.Name,
		Method:             entry.Method,
		CRC32:              crc32.ChecksumIEEE(entry.Content),
		CompressedSize64:   uint64(len(compressed)),
		UncompressedSize64: uint64(len(entry.Content)),
	}
	destination, err := writer.CreateRaw(header)
	if err != nil {
		t.Fatalf("creating raw zip entry %q: %v", entry.Name, err)
	}
	if _, err := destination.Write(compressed); err != nil {
		t.Fatalf("writing raw zip entry %q: %v", entry.Name, err)
	}
}

// Compress encodes content with a zip compression method.
func Compress(t testing.TB, method uint16, content []byte) []byte {
	t.Helper()

	switch method {
	case zip.Store:
		return bytes.Clone(content)
	case zip.Deflate:
		var buffer bytes.Buffer
		compressor, err := flate.NewWriter(&buffer, flate.DefaultCompression)
		if err != nil {
			t.Fatalf("creating deflate writer: %v", err)
		}
		if _, err := compressor.Write(content); err != nil {
			t.Fatalf("deflating: %v", err)
		}
		if err := compressor.Close(); err != nil {
			t.Fatalf("finishing deflate stream: %v", err)
		}
		return buffer.Bytes()
	case ZipMethodZstd:
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if err != nil {
			t.Fatalf("creating zstd encoder: %v", err)
		}
		defer encoder.Close()
		return encoder.EncodeAll(content, nil)
	default:
		t.Fatalf("unsupported fixture compression method %d", method)
		return nil
	}
}
