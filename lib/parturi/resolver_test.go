// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package parturi

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/concat/lib/fault"
	"github.com/bureau-foundation/concat/lib/mavenrepo"
	"github.com/bureau-foundation/concat/lib/testutil"
	"github.com/bureau-foundation/concat/lib/zipentry"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw    string
		scheme string
		opaque string
	}{
		{"src/notice.txt", "", "src/notice.txt"},
		{"file:src/notice.txt", "file", "src/notice.txt"},
		{"FILE:///abs/path", "file", "///abs/path"},
		{"data:,Hello%20World", "data", ",Hello World"},
		{"data:,a+b", "data", ",a+b"},
		{"maven:g:a:v!/META-INF/x#fragment", "maven", "g:a:v!/META-INF/x"},
		{"my-scheme.v2+x:payload", "my-scheme.v2+x", "payload"},
		{"./relative:colon", "", "./relative:colon"},
	}
	for _, test := range tests {
		t.Run(test.raw, func(t *testing.T) {
			uri, err := Parse(test.raw)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if uri.Raw != test.raw || uri.Scheme != test.scheme || uri.Opaque != test.opaque {
				t.Errorf("Parse(%q) = %+v, want scheme %q opaque %q", test.raw, uri, test.scheme, test.opaque)
			}
		})
	}
}

func TestParseBadEscape(t *testing.T) {
	_, err := Parse("data:,100%")
	if !errors.Is(err, fault.ErrMalformedURI) {
		t.Errorf("Parse error = %v, want malformed_uri", err)
	}
}

func openString(t *testing.T, resolver *Resolver, raw string) string {
	t.Helper()
	stream, err := resolver.Open(context.Background(), raw)
	if err != nil {
		t.Fatalf("Open(%q): %v", raw, err)
	}
	defer stream.Close()
	data, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("reading %q: %v", raw, err)
	}
	return string(data)
}

func requireKind(t *testing.T, err error, kind fault.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a %s error, got nil", kind)
	}
	if got := fault.KindOf(err); got != kind {
		t.Fatalf("error kind = %s, want %s (error: %v)", got, kind, err)
	}
}

func TestDataScheme(t *testing.T) {
	resolver := New(Config{})
	tests := []struct {
		raw  string
		want string
	}{
		{"data:,Hello%20World", "Hello World"},
		{"data:;base64,aGVsbG8=", "hello"},
		{"data:text/plain;charset=utf-8,caf%C3%A9", "café"},
		{"data:text/plain;base64,aGVs%0AbG8=", "hello"},
		{"data:;base64,aGVsbG8", "hello"},
		{"data: ;base64 ,aGVsbG8=", "hello"},
		{"data:;BASE64,aGVsbG8=", "aGVsbG8="},
		{"data:,", ""},
		{"data:,a,b", "a,b"},
		{"DATA:,upper", "upper"},
	}
	for _, test := range tests {
		t.Run(test.raw, func(t *testing.T) {
			if got := openString(t, resolver, test.raw); got != test.want {
				t.Errorf("Open(%q) = %q, want %q", test.raw, got, test.want)
			}
		})
	}
}

func TestDataSchemeBase64StopsAtPadding(t *testing.T) {
	resolver := New(Config{})
	if got := openString(t, resolver, "data:;base64,aGk=aGVsbG8="); got != "hi" {
		t.Errorf("content = %q, want %q", got, "hi")
	}
}

func TestDataSchemeMalformed(t *testing.T) {
	resolver := New(Config{})
	for _, raw := range []string{"data:no-comma", "data:;base64,a"} {
		t.Run(raw, func(t *testing.T) {
			_, err := resolver.Open(context.Background(), raw)
			requireKind(t, err, fault.KindMalformedURI)
		})
	}
}

func TestFileScheme(t *testing.T) {
	base := t.TempDir()
	absolute := testutil.WriteFile(t, t.TempDir(), "elsewhere.txt", []byte("absolute"))
	testutil.WriteFile(t, base, "src/notice.txt", []byte(", "))
	testutil.WriteFile(t, base, "with space.txt", []byte("spaced"))

	resolver := New(Config{BaseDirectory: base})
	tests := []struct {
		raw  string
		want string
	}{
		{"src/notice.txt", ", "},
		{"file:src/notice.txt", ", "},
		{"file:" + filepath.ToSlash(absolute), "absolute"},
		{"file://" + filepath.ToSlash(absolute), "absolute"},
		{"with%20space.txt", "spaced"},
	}
	for _, test := range tests {
		t.Run(test.raw, func(t *testing.T) {
			if got := openString(t, resolver, test.raw); got != test.want {
				t.Errorf("Open(%q) = %q, want %q", test.raw, got, test.want)
			}
		})
	}
}

func TestFileSchemeFailures(t *testing.T) {
	base := t.TempDir()
	testutil.WriteFile(t, base, "directory/child", []byte("x"))
	resolver := New(Config{BaseDirectory: base})

	_, err := resolver.Open(context.Background(), "missing.txt")
	requireKind(t, err, fault.KindNotFound)

	_, err = resolver.Open(context.Background(), "file:")
	requireKind(t, err, fault.KindMalformedURI)

	_, err = resolver.Open(context.Background(), "directory")
	requireKind(t, err, fault.KindIO)
}

func TestUnsupportedScheme(t *testing.T) {
	resolver := New(Config{})
	_, err := resolver.Open(context.Background(), "http://example.com/x")
	requireKind(t, err, fault.KindUnsupportedScheme)
	if !strings.Contains(err.Error(), "data, file, maven") {
		t.Errorf("error %q should list the registered schemes", err)
	}
}

type upperScheme struct{}

func (upperScheme) Open(_ context.Context, uri URI) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(strings.ToUpper(uri.Opaque))), nil
}

func TestRegisterCaseInsensitive(t *testing.T) {
	resolver := New(Config{})
	resolver.Register("Upper", upperScheme{})
	if got := openString(t, resolver, "uPPer:shout"); got != "SHOUT" {
		t.Errorf("content = %q, want %q", got, "SHOUT")
	}
}

func TestConfiguredArtifactScheme(t *testing.T) {
	store := mavenrepo.NewMemoryStore()
	store.Put("g:a:v", []byte("artifact"))
	resolver := New(Config{Store: store, ArtifactScheme: "Artifact"})

	if got := openString(t, resolver, "artifact:g:a:v"); got != "artifact" {
		t.Errorf("content = %q, want %q", got, "artifact")
	}
	_, err := resolver.Open(context.Background(), "maven:g:a:v")
	requireKind(t, err, fault.KindUnsupportedScheme)
}

func TestArtifactScheme(t *testing.T) {
	store := mavenrepo.NewMemoryStore()
	store.Put("org.example:lib:1.0", testutil.ZipArchive(t,
		testutil.ZipEntry{Name: "META-INF/MANIFEST.MF", Content: []byte("Manifest-Version: 1.0\n"), Method: zip.Deflate},
		testutil.ZipEntry{Name: "greeting.txt", Content: []byte("world!"), Method: zip.Deflate},
	))
	store.Put("org.example:notes:txt:1.0", []byte("raw artifact"))
	resolver := New(Config{Store: store})

	if got := openString(t, resolver, "maven:org.example:lib:1.0!/greeting.txt"); got != "world!" {
		t.Errorf("entry content = %q, want %q", got, "world!")
	}
	if got := openString(t, resolver, "maven:org.example:notes:txt:1.0"); got != "raw artifact" {
		t.Errorf("artifact content = %q, want %q", got, "raw artifact")
	}
	if store.Outstanding() != 0 {
		t.Errorf("%d artifact streams left open", store.Outstanding())
	}
}

func TestArtifactSchemeFailures(t *testing.T) {
	store := mavenrepo.NewMemoryStore()
	store.Put("g:a:v", testutil.ZipArchive(t,
		testutil.ZipEntry{Name: "present", Content: []byte("x"), Method: zip.Deflate},
	))
	store.Put("g:corrupt:v", []byte("not a zip archive at all"))
	resolver := New(Config{Store: store})

	tests := []struct {
		raw  string
		kind fault.Kind
	}{
		{"maven:g:a:v!/absent", fault.KindNotFound},
		{"maven:g:missing:v", fault.KindNotFound},
		{"maven:g:corrupt:v!/present", fault.KindMalformedArchive},
		{"maven:g:a:t:c:v:extra", fault.KindMalformedURI},
		{"maven:g:a", fault.KindMalformedURI},
		{"maven:g:a:v!entry", fault.KindMalformedURI},
		{"maven:g:a%20b:v", fault.KindMalformedURI},
		{"maven:", fault.KindMalformedURI},
		{"maven:g:../../../escaped:1", fault.KindMalformedURI},
		{"maven:g:..:..", fault.KindMalformedURI},
		{"maven:g:..%2Fescaped:1", fault.KindMalformedURI},
	}
	for _, test := range tests {
		t.Run(test.raw, func(t *testing.T) {
			_, err := resolver.Open(context.Background(), test.raw)
			requireKind(t, err, test.kind)
		})
	}
	if store.Outstanding() != 0 {
		t.Errorf("%d artifact streams left open after failures", store.Outstanding())
	}

	_, err := resolver.Open(context.Background(), "maven:g:a:v!/absent")
	if !errors.Is(err, zipentry.ErrEntryNotFound) {
		t.Errorf("missing entry error = %v, want to wrap ErrEntryNotFound", err)
	}
}

type brokenStore struct{}

func (brokenStore) Open(context.Context, mavenrepo.Coordinate) (io.ReadCloser, error) {
	return nil, errors.New("repository unreachable")
}

func TestArtifactStoreFailureIsIO(t *testing.T) {
	resolver := New(Config{Store: brokenStore{}})
	_, err := resolver.Open(context.Background(), "maven:g:a:v")
	requireKind(t, err, fault.KindIO)
}

type malformedStore struct{}

func (malformedStore) Open(_ context.Context, coordinate mavenrepo.Coordinate) (io.ReadCloser, error) {
	return nil, fmt.Errorf("%w %q: rejected by store", mavenrepo.ErrMalformedCoordinate, coordinate)
}

func TestArtifactStoreRejectsCoordinate(t *testing.T) {
	resolver := New(Config{Store: malformedStore{}})
	_, err := resolver.Open(context.Background(), "maven:g:a:v")
	requireKind(t, err, fault.KindMalformedURI)
}

func TestArtifactSchemeWithoutLogger(t *testing.T) {
	store := mavenrepo.NewMemoryStore()
	store.Put("g:a:v", []byte("direct"))
	resolver := New(Config{})
	resolver.Register("mvn", ArtifactScheme{Store: store})

	if got := openString(t, resolver, "mvn:g:a:v"); got != "direct" {
		t.Errorf("content = %q, want %q", got, "direct")
	}
}

func TestNoStoreMeansNotFound(t *testing.T) {
	resolver := New(Config{})
	_, err := resolver.Open(context.Background(), "maven:g:a:v")
	requireKind(t, err, fault.KindNotFound)
}
