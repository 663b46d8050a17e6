// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package zipentry

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/bureau-foundation/concat/lib/fault"
)

var (
	// ErrEntryNotFound is wrapped by errors reporting that the archive
	// ended without an entry of the requested name.
	ErrEntryNotFound = errors.New("zip entry not found")

	// ErrMalformed is wrapped by errors reporting structural damage.
	ErrMalformed = errors.New("malformed zip archive")
)

const (
	localHeaderSignature                = 0x04034b50
	centralHeaderSignature              = 0x02014b50
	endOfCentralDirectorySignature      = 0x06054b50
	zip64EndOfCentralDirectorySignature = 0x06064b50
	dataDescriptorSignature             = 0x08074b50

	// Fixed part of a local file header, after the signature.
	localHeaderLength = 26

	flagEncrypted      = 0x1
	flagDataDescriptor = 0x8

	methodStore   = 0
	methodDeflate = 8
	methodZstd    = 93

	zip64ExtraID = 0x0001
	sizeOverflow = 0xFFFFFFFF
)

var le = binary.LittleEndian

// Find scans archive for the entry whose name equals name exactly and
// returns a reader over its decompressed content. Closing the returned
// reader closes archive. On error, archive has already been closed.
func Find(archive io.ReadCloser, name string) (io.ReadCloser, error) {
	s := newStream(archive)
	for {
		h, err := s.next()
		if err != nil {
			return nil, s.abandon(err)
		}
		if h == nil {
			return nil, s.abandon(&fault.Error{
				Kind: fault.KindNotFound,
				Err:  fmt.Errorf("%w: %q", ErrEntryNotFound, name),
			})
		}
		if h.name != name {
			if err := s.skip(h); err != nil {
				return nil, s.abandon(err)
			}
			continue
		}
		e, err := s.open(h)
		if err != nil {
			return nil, s.abandon(err)
		}
		return e, nil
	}
}

// header is the part of a local file header the scan needs.
type header struct {
	name             string
	flags            uint16
	method           uint16
	crc32            uint32
	compressedSize   uint64
	uncompressedSize uint64
	zip64            bool
}

// deferred reports whether CRC and sizes follow the data in a data
// descriptor instead of being in the header.
func (h *header) deferred() bool { return h.flags&flagDataDescriptor != 0 }

type descriptor struct {
	crc32            uint32
	compressedSize   uint64
	uncompressedSize uint64
}

// stream is an archive being read front to back.
type stream struct {
	archive io.ReadCloser
	source  *recorder
	reader  *bufio.Reader
}

func newStream(archive io.ReadCloser) *stream {
	source := &recorder{source: archive}
	return &stream{
		archive: archive,
		source:  source,
		reader:  bufio.NewReader(source),
	}
}

// next reads the next local file header. It returns nil, nil when the
// entries are exhausted: clean end of input, or the start of the
// central directory.
func (s *stream) next() (*header, error) {
	var signature [4]byte
	n, err := io.ReadFull(s.reader, signature[:])
	if err != nil {
		if n == 0 && errors.Is(err, io.EOF) && s.source.failure == nil {
			return nil, nil
		}
		return nil, s.classify(err, "reading entry signature")
	}
	switch value := le.Uint32(signature[:]); value {
	case localHeaderSignature:
	case centralHeaderSignature, endOfCentralDirectorySignature, zip64EndOfCentralDirectorySignature:
		return nil, nil
	default:
		return nil, malformed("unexpected signature 0x%08x where a local file header was expected", value)
	}

	var fixed [localHeaderLength]byte
	if _, err := io.ReadFull(s.reader, fixed[:]); err != nil {
		return nil, s.classify(err, "reading local file header")
	}
	h := &header{
		flags:            le.Uint16(fixed[2:4]),
		method:           le.Uint16(fixed[4:6]),
		crc32:            le.Uint32(fixed[10:14]),
		compressedSize:   uint64(le.Uint32(fixed[14:18])),
		uncompressedSize: uint64(le.Uint32(fixed[18:22])),
	}
	nameLength := int(le.Uint16(fixed[22:24]))
	extraLength := int(le.Uint16(fixed[24:26]))

	variable := make([]byte, nameLength+extraLength)
	if _, err := io.ReadFull(s.reader, variable); err != nil {
		return nil, s.classify(err, "reading local file header name")
	}
	h.name = string(variable[:nameLength])
	if err := parseExtra(h, variable[nameLength:]); err != nil {
		return nil, err
	}
	if h.compressedSize > math.MaxInt64 || h.uncompressedSize > math.MaxInt64 {
		return nil, malformed("entry %q declares an impossible size", h.name)
	}
	return h, nil
}

// parseExtra applies a Zip64 extended information field, if present.
// The field carries only the sizes whose 32-bit header value is
// saturated, in the order uncompressed, compressed.
func parseExtra(h *header, extra []byte) error {
	for len(extra) >= 4 {
		id := le.Uint16(extra[0:2])
		size := int(le.Uint16(extra[2:4]))
		extra = extra[4:]
		if size > len(extra) {
			return malformed("entry %q: extra field overruns the header", h.name)
		}
		field := extra[:size]
		extra = extra[size:]
		if id != zip64ExtraID {
			continue
		}

		h.zip64 = true
		if h.uncompressedSize == sizeOverflow {
			if len(field) < 8 {
				return malformed("entry %q: truncated zip64 field", h.name)
			}
			h.uncompressedSize = le.Uint64(field)
			field = field[8:]
		}
		if h.compressedSize == sizeOverflow {
			if len(field) < 8 {
				return malformed("entry %q: truncated zip64 field", h.name)
			}
			h.compressedSize = le.Uint64(field)
		}
	}
	return nil
}

// skip advances past the data of an entry that is not wanted.
func (s *stream) skip(h *header) error {
	if !h.deferred() {
		if _, err := io.CopyN(io.Discard, s.reader, int64(h.compressedSize)); err != nil {
			return s.classify(err, "skipping entry %q", h.name)
		}
		return nil
	}

	// Without sizes the only way to find the end of the data is to
	// decompress it.
	e, err := s.open(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(io.Discard, e)
	e.releaseDecompressor()
	return err
}

// readDescriptor reads the data descriptor following deferred entry
// data. The descriptor signature is optional.
func (s *stream) readDescriptor(h *header) (descriptor, error) {
	var word [4]byte
	if _, err := io.ReadFull(s.reader, word[:]); err != nil {
		return descriptor{}, s.classify(err, "reading data descriptor of %q", h.name)
	}
	value := le.Uint32(word[:])
	if value == dataDescriptorSignature {
		if _, err := io.ReadFull(s.reader, word[:]); err != nil {
			return descriptor{}, s.classify(err, "reading data descriptor of %q", h.name)
		}
		value = le.Uint32(word[:])
	}

	d := descriptor{crc32: value}
	if h.zip64 {
		var sizes [16]byte
		if _, err := io.ReadFull(s.reader, sizes[:]); err != nil {
			return descriptor{}, s.classify(err, "reading data descriptor of %q", h.name)
		}
		d.compressedSize = le.Uint64(sizes[0:8])
		d.uncompressedSize = le.Uint64(sizes[8:16])
	} else {
		var sizes [8]byte
		if _, err := io.ReadFull(s.reader, sizes[:]); err != nil {
			return descriptor{}, s.classify(err, "reading data descriptor of %q", h.name)
		}
		d.compressedSize = uint64(le.Uint32(sizes[0:4]))
		d.uncompressedSize = uint64(le.Uint32(sizes[4:8]))
	}
	return d, nil
}

// classify turns a read error into a classified error. A failure of
// the underlying stream wins over whatever the decompressor made of
// it; running out of input is truncation.
func (s *stream) classify(err error, format string, args ...any) error {
	if s.source.failure != nil {
		return s.source.failure
	}
	if fault.KindOf(err) != fault.KindUnknown {
		return err
	}
	detail := fmt.Sprintf(format, args...)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return malformed("%s: archive is truncated", detail)
	}
	return malformed("%s: %v", detail, err)
}

// abandon closes the archive after err, keeping a close failure as
// suppressed context.
func (s *stream) abandon(err error) error {
	if closeErr := s.archive.Close(); closeErr != nil {
		err = fault.Suppress(err, fault.IO("closing archive: %w", closeErr))
	}
	return err
}

func malformed(format string, args ...any) error {
	return &fault.Error{
		Kind: fault.KindMalformedArchive,
		Err:  fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...)),
	}
}

// recorder remembers the first failure of the underlying stream, so
// that it can be reported as an I/O failure even after a decompressor
// has rewrapped it.
type recorder struct {
	source  io.Reader
	failure error
}

func (r *recorder) Read(p []byte) (int, error) {
	n, err := r.source.Read(p)
	if err != nil && err != io.EOF && r.failure == nil {
		if fault.KindOf(err) != fault.KindUnknown {
			r.failure = err
		} else {
			r.failure = fault.IO("reading archive: %w", err)
		}
	}
	return n, err
}

// countingReader counts compressed bytes handed to a decompressor. It
// implements io.ByteReader so that flate consumes exactly the bytes of
// the deflate stream and nothing past it.
type countingReader struct {
	reader *bufio.Reader
	count  int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.count += int64(n)
	return n, err
}

func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.reader.ReadByte()
	if err == nil {
		c.count++
	}
	return b, err
}
