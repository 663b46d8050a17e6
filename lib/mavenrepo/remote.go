// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mavenrepo

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/concat/lib/clock"
)

// RemoteConfig describes one HTTP(S) Maven repository.
type RemoteConfig struct {
	// ID names the repository in logs ("central").
	ID string

	// URL is the repository base, e.g. https://repo.maven.apache.org/maven2.
	URL string

	// Username and Password enable HTTP basic authentication when
	// Username is non-empty.
	Username string
	Password string
}

// RemoteRepository fetches artifacts over HTTP and keeps them in a
// local cache directory.
//
// Cache layout mirrors the Maven repository layout. Each downloaded
// file has a CBOR [ResolutionRecord] beside it; a cached file whose
// content no longer matches its record is downloaded again. Files in
// the cache without a record are ignored and re-fetched.
type RemoteRepository struct {
	config RemoteConfig
	cache  *LocalRepository
	client *http.Client
	clock  clock.Clock
	logger *slog.Logger
}

// NewRemoteRepository creates a repository that caches into cacheRoot.
// A nil client means http.DefaultClient; a nil logger discards.
func NewRemoteRepository(config RemoteConfig, cacheRoot string, client *http.Client, clk clock.Clock, logger *slog.Logger) *RemoteRepository {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if config.ID == "" {
		config.ID = config.URL
	}
	config.URL = strings.TrimRight(config.URL, "/")
	return &RemoteRepository{
		config: config,
		cache:  NewLocalRepository(cacheRoot),
		client: client,
		clock:  clk,
		logger: logger,
	}
}

// ID returns the repository identifier.
func (r *RemoteRepository) ID() string { return r.config.ID }

// URL returns the remote location of coordinate.
func (r *RemoteRepository) URL(coordinate Coordinate) string {
	return r.config.URL + "/" + coordinate.Path()
}

// Open serves the artifact from the cache when its record verifies,
// downloading it first otherwise. A 404 from the repository wraps
// ErrNotFound.
func (r *RemoteRepository) Open(ctx context.Context, coordinate Coordinate) (io.ReadCloser, error) {
	if err := coordinate.Validate(); err != nil {
		return nil, err
	}
	path := r.cache.Path(coordinate)

	record, valid := verifyCached(path)
	switch {
	case valid:
		r.logger.Debug("serving cached artifact",
			"repository", r.config.ID,
			"coordinate", coordinate.String(),
			"digest", record.Digest.String(),
		)
	case record != nil:
		r.logger.Warn("cached artifact does not match its record, downloading again",
			"repository", r.config.ID,
			"coordinate", coordinate.String(),
			"path", path,
		)
		fallthrough
	default:
		if err := r.download(ctx, coordinate, path); err != nil {
			return nil, err
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening cached %s: %w", path, err)
	}
	return file, nil
}

// download fetches coordinate into path. The body is streamed to a
// temp file in the destination directory while SHA-1 and BLAKE3 are
// computed, then renamed into place and recorded.
func (r *RemoteRepository) download(ctx context.Context, coordinate Coordinate, path string) error {
	url := r.URL(coordinate)
	r.logger.Info("downloading artifact",
		"repository", r.config.ID,
		"coordinate", coordinate.String(),
		"url", url,
	)

	response, err := r.get(ctx, url)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	switch {
	case response.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s in %s", ErrNotFound, coordinate, r.config.ID)
	case response.StatusCode < 200 || response.StatusCode > 299:
		return fmt.Errorf("fetching %s: %s", url, response.Status)
	}

	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", directory, err)
	}
	temporary, err := os.CreateTemp(directory, ".download-*")
	if err != nil {
		return fmt.Errorf("creating download temp file: %w", err)
	}
	temporaryPath := temporary.Name()
	installed := false
	defer func() {
		if !installed {
			temporary.Close()
			os.Remove(temporaryPath)
		}
	}()

	sha := sha1.New()
	hasher := blake3.New()
	size, err := io.Copy(io.MultiWriter(temporary, sha, hasher), response.Body)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}

	expected, err := r.publishedChecksum(ctx, url+".sha1")
	if err != nil {
		return err
	}
	if expected != "" {
		if actual := hex.EncodeToString(sha.Sum(nil)); actual != expected {
			return fmt.Errorf("checksum mismatch for %s: published sha1 %s, downloaded %s", url, expected, actual)
		}
	}

	if err := temporary.Sync(); err != nil {
		return fmt.Errorf("syncing download: %w", err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("closing download: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		return fmt.Errorf("installing download into %s: %w", path, err)
	}
	installed = true

	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	record := &ResolutionRecord{
		Version:   ResolutionRecordVersion,
		Source:    url,
		Size:      size,
		Digest:    digest,
		FetchedAt: r.clock.Now().UTC(),
	}
	if err := writeRecord(path, record); err != nil {
		return fmt.Errorf("recording download of %s: %w", coordinate, err)
	}
	r.logger.Debug("artifact cached", "coordinate", coordinate.String(), "size", size, "digest", digest.String())
	return nil
}

// publishedChecksum returns the lowercase hex SHA-1 published at url,
// or "" when the repository does not publish one.
func (r *RemoteRepository) publishedChecksum(ctx context.Context, url string) (string, error) {
	response, err := r.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return "", fmt.Errorf("fetching %s: %s", url, response.Status)
	}
	body, err := io.ReadAll(io.LimitReader(response.Body, 1024))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	// Checksum files hold the digest optionally followed by a file name.
	fields := strings.Fields(string(body))
	if len(fields) == 0 {
		return "", errors.New("empty checksum file at " + url)
	}
	return strings.ToLower(fields[0]), nil
}

func (r *RemoteRepository) get(ctx context.Context, url string) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	if r.config.Username != "" {
		request.SetBasicAuth(r.config.Username, r.config.Password)
	}
	response, err := r.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	return response, nil
}
