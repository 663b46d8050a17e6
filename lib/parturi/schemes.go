// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package parturi

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bureau-foundation/concat/lib/fault"
	"github.com/bureau-foundation/concat/lib/mavenrepo"
	"github.com/bureau-foundation/concat/lib/zipentry"
)

// FileScheme opens files from disk.
type FileScheme struct {
	BaseDirectory string
}

// Open opens the file uri names. Relative paths are joined to the
// base directory.
func (s FileScheme) Open(_ context.Context, uri URI) (io.ReadCloser, error) {
	if uri.Opaque == "" {
		return nil, fault.MalformedURI("file part %q has an empty path", uri.Raw)
	}
	path := filepath.FromSlash(uri.Opaque)
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.BaseDirectory, path)
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fault.NotFound("file part %q: %s does not exist", uri.Raw, path)
		}
		return nil, fault.IO("opening file part %q: %w", uri.Raw, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fault.IO("checking file part %q: %w", uri.Raw, err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fault.IO("file part %q: %s is a directory", uri.Raw, path)
	}
	return file, nil
}

// DataScheme decodes content embedded in the URI.
type DataScheme struct{}

// Open returns the payload after the first comma, base64-decoded when
// the prefix before it ends in ";base64". Media type and charset
// parameters are otherwise ignored.
func (DataScheme) Open(_ context.Context, uri URI) (io.ReadCloser, error) {
	prefix, payload, found := strings.Cut(uri.Opaque, ",")
	if !found {
		return nil, fault.MalformedURI("data part %q needs a ',' before its content", uri.Raw)
	}
	if !strings.HasSuffix(strings.TrimSpace(prefix), ";base64") {
		return io.NopCloser(strings.NewReader(payload)), nil
	}
	decoded, err := decodeLenientBase64(payload)
	if err != nil {
		return nil, fault.MalformedURI("data part %q: %v", uri.Raw, err)
	}
	return io.NopCloser(bytes.NewReader(decoded)), nil
}

// decodeLenientBase64 decodes the MIME flavor of base64: bytes outside
// the alphabet are skipped and the first '=' ends the data.
func decodeLenientBase64(payload string) ([]byte, error) {
	var alphabet strings.Builder
	alphabet.Grow(len(payload))
	for i := 0; i < len(payload); i++ {
		c := payload[i]
		if c == '=' {
			break
		}
		if isBase64Alphabet(c) {
			alphabet.WriteByte(c)
		}
	}
	return base64.RawStdEncoding.DecodeString(alphabet.String())
}

func isBase64Alphabet(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '+' || c == '/'
}

// artifactPattern splits "<coordinate>[!/<entry>]". The coordinate may
// not contain spaces or '!'.
var artifactPattern = regexp.MustCompile(`^([^ !]+)(?:!/(.+))?$`)

// ArtifactScheme resolves artifact coordinates through a store.
type ArtifactScheme struct {
	Store  mavenrepo.Store
	Logger *slog.Logger
}

// Open resolves the coordinate and, when the URI names an entry,
// locates that entry inside the artifact.
func (s ArtifactScheme) Open(ctx context.Context, uri URI) (io.ReadCloser, error) {
	match := artifactPattern.FindStringSubmatch(uri.Opaque)
	if match == nil {
		return nil, fault.MalformedURI("artifact part %q is not <coordinate>[!/<entry>]", uri.Raw)
	}
	coordinate, err := mavenrepo.ParseCoordinate(match[1])
	if err != nil {
		return nil, fault.MalformedURI("artifact part %q: %w", uri.Raw, err)
	}

	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Info("resolving artifact", "coordinate", coordinate.String())
	stream, err := s.Store.Open(ctx, coordinate)
	switch {
	case err == nil:
	case errors.Is(err, mavenrepo.ErrNotFound):
		return nil, fault.NotFound("artifact part %q: %w", uri.Raw, err)
	case errors.Is(err, mavenrepo.ErrMalformedCoordinate):
		return nil, fault.MalformedURI("artifact part %q: %w", uri.Raw, err)
	case fault.KindOf(err) != fault.KindUnknown:
		return nil, annotate(err, "artifact part %q", uri.Raw)
	default:
		return nil, fault.IO("resolving artifact %s: %w", coordinate, err)
	}

	entryName := match[2]
	if entryName == "" {
		return stream, nil
	}
	entry, err := zipentry.Find(stream, entryName)
	if err != nil {
		return nil, annotate(err, "artifact %s", coordinate)
	}
	return entry, nil
}
