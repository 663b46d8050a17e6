// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package parturi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/bureau-foundation/concat/lib/fault"
	"github.com/bureau-foundation/concat/lib/mavenrepo"
)

const (
	// DefaultScheme applies to URIs written without a scheme.
	DefaultScheme = "file"

	// DefaultArtifactScheme is the token artifact references use
	// unless configured otherwise.
	DefaultArtifactScheme = "maven"
)

// Scheme opens the byte stream a URI of one scheme refers to. The
// caller closes the returned stream.
type Scheme interface {
	Open(ctx context.Context, uri URI) (io.ReadCloser, error)
}

// Config configures a [Resolver] built by [New].
type Config struct {
	// BaseDirectory anchors relative file paths. Empty means the
	// working directory.
	BaseDirectory string

	// Store backs the artifact scheme. Nil means no repositories, so
	// every artifact reference is not found.
	Store mavenrepo.Store

	// ArtifactScheme is the token for artifact references. Empty
	// means [DefaultArtifactScheme].
	ArtifactScheme string

	// Logger receives a line per resolved part. Nil discards.
	Logger *slog.Logger
}

// Resolver dispatches part URIs to registered schemes.
type Resolver struct {
	schemes map[string]Scheme
	logger  *slog.Logger
}

// New returns a Resolver with the file, data, and artifact schemes
// registered.
func New(config Config) *Resolver {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	store := config.Store
	if store == nil {
		store = mavenrepo.Chain(nil)
	}
	artifactToken := config.ArtifactScheme
	if artifactToken == "" {
		artifactToken = DefaultArtifactScheme
	}

	resolver := &Resolver{
		schemes: make(map[string]Scheme),
		logger:  logger,
	}
	resolver.Register("file", FileScheme{BaseDirectory: config.BaseDirectory})
	resolver.Register("data", DataScheme{})
	resolver.Register(artifactToken, ArtifactScheme{Store: store, Logger: logger})
	return resolver
}

// Register binds token, case-insensitively, to scheme, replacing any
// earlier binding.
func (r *Resolver) Register(token string, scheme Scheme) {
	r.schemes[strings.ToLower(token)] = scheme
}

// Schemes returns the registered tokens in sorted order.
func (r *Resolver) Schemes() []string {
	tokens := make([]string, 0, len(r.schemes))
	for token := range r.schemes {
		tokens = append(tokens, token)
	}
	slices.Sort(tokens)
	return tokens
}

// Open parses raw and opens it with the scheme it names.
func (r *Resolver) Open(ctx context.Context, raw string) (io.ReadCloser, error) {
	uri, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	token := uri.Scheme
	if token == "" {
		token = DefaultScheme
	}
	scheme, ok := r.schemes[token]
	if !ok {
		return nil, fault.UnsupportedScheme("unsupported scheme %q in part %q (registered: %s)",
			token, raw, strings.Join(r.Schemes(), ", "))
	}

	r.logger.Info("resolving part", "scheme", token, "uri", raw)
	return scheme.Open(ctx, uri)
}

// annotate prefixes err with context while keeping its kind.
func annotate(err error, format string, args ...any) error {
	return &fault.Error{
		Kind: fault.KindOf(err),
		Err:  fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err),
	}
}
