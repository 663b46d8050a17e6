// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mavenrepo

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

// recordSuffix is appended to a cached artifact's file name to locate
// its resolution record.
const recordSuffix = ".bureau-record"

// ResolutionRecordVersion is the current record format version.
const ResolutionRecordVersion = 1

// ResolutionRecord describes one artifact downloaded into a
// RemoteRepository cache. It is stored next to the artifact as CBOR.
type ResolutionRecord struct {
	Version   int       `cbor:"version"`
	Source    string    `cbor:"source"`
	Size      int64     `cbor:"size"`
	Digest    Digest    `cbor:"digest"`
	FetchedAt time.Time `cbor:"fetched_at"`
}

// Digest is a 32-byte BLAKE3 hash of artifact content.
type Digest [32]byte

// String returns the lowercase hex form.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// cborEncMode uses Core Deterministic Encoding (RFC 8949 §4.2) so the
// same record always produces the same bytes.
var cborEncMode cbor.EncMode

var cborDecMode cbor.DecMode

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("mavenrepo: CBOR encoder initialization failed: " + err.Error())
	}
	cborDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("mavenrepo: CBOR decoder initialization failed: " + err.Error())
	}
}

// MarshalRecord encodes a record to CBOR.
func MarshalRecord(record *ResolutionRecord) ([]byte, error) {
	data, err := cborEncMode.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encoding resolution record: %w", err)
	}
	return data, nil
}

// UnmarshalRecord decodes a CBOR record. Unknown fields are ignored.
func UnmarshalRecord(data []byte) (*ResolutionRecord, error) {
	var record ResolutionRecord
	if err := cborDecMode.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decoding resolution record: %w", err)
	}
	if record.Version < 1 {
		return nil, fmt.Errorf("resolution record version %d is invalid (minimum 1)", record.Version)
	}
	return &record, nil
}

// HashReader returns the BLAKE3 digest and byte count of everything
// read from r.
func HashReader(r io.Reader) (Digest, int64, error) {
	hasher := blake3.New()
	size, err := io.Copy(hasher, r)
	if err != nil {
		return Digest{}, size, err
	}
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest, size, nil
}

func recordPath(artifactPath string) string {
	return artifactPath + recordSuffix
}

// readRecord loads the record stored beside artifactPath.
func readRecord(artifactPath string) (*ResolutionRecord, error) {
	data, err := os.ReadFile(recordPath(artifactPath))
	if err != nil {
		return nil, err
	}
	return UnmarshalRecord(data)
}

// writeRecord stores record beside artifactPath, atomically.
func writeRecord(artifactPath string, record *ResolutionRecord) error {
	data, err := MarshalRecord(record)
	if err != nil {
		return err
	}
	temporary, err := os.CreateTemp(filepath.Dir(artifactPath), ".record-*")
	if err != nil {
		return fmt.Errorf("creating record temp file: %w", err)
	}
	temporaryPath := temporary.Name()
	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing record: %w", err)
	}
	if err := temporary.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing record: %w", err)
	}
	if err := os.Rename(temporaryPath, recordPath(artifactPath)); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("installing record: %w", err)
	}
	return nil
}

// verifyCached reports whether the file at artifactPath still matches
// its record. Any problem reading either side counts as a mismatch.
func verifyCached(artifactPath string) (*ResolutionRecord, bool) {
	record, err := readRecord(artifactPath)
	if err != nil {
		return nil, false
	}
	file, err := os.Open(artifactPath)
	if err != nil {
		return record, false
	}
	defer file.Close()
	digest, size, err := HashReader(file)
	if err != nil {
		return record, false
	}
	return record, size == record.Size && digest == record.Digest
}
