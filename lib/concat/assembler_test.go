// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package concat

import (
	"archive/zip"
	"context"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/concat/lib/fault"
	"github.com/bureau-foundation/concat/lib/mavenrepo"
	"github.com/bureau-foundation/concat/lib/parturi"
	"github.com/bureau-foundation/concat/lib/testutil"
)

// fixture is a base directory with one text file and a store holding
// one jar, wired into an Assembler that writes under outputRoot.
type fixture struct {
	base       string
	outputRoot string
	store      *mavenrepo.MemoryStore
	resolver   *parturi.Resolver
	assembler  *Assembler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	testutil.WriteFile(t, base, "src/comma.txt", []byte(", "))

	store := mavenrepo.NewMemoryStore()
	store.Put("org.example:greetings:1.0", testutil.ZipArchive(t,
		testutil.ZipEntry{Name: "META-INF/MANIFEST.MF", Content: []byte("Manifest-Version: 1.0\n"), Method: zip.Deflate},
		testutil.ZipEntry{Name: "world.txt", Content: []byte("world!"), Method: zip.Deflate},
	))
	store.Put("org.example:broken:1.0", []byte("PK\x03\x04 this is not really a zip"))

	resolver := parturi.New(parturi.Config{BaseDirectory: base, Store: store})
	return &fixture{
		base:       base,
		outputRoot: t.TempDir(),
		store:      store,
		resolver:   resolver,
		assembler:  NewAssembler(resolver, nil, nil),
	}
}

func (f *fixture) assemble(t *testing.T, task Task) (TaskResult, error) {
	t.Helper()
	result, err := f.assembler.Assemble(context.Background(), task, f.outputRoot)
	if outstanding := f.store.Outstanding(); outstanding != 0 {
		t.Errorf("%d artifact streams left open", outstanding)
	}
	return result, err
}

func (f *fixture) destination(name string) string {
	return filepath.Join(f.outputRoot, filepath.FromSlash(name))
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

func blake3Hex(content string) string {
	sum := blake3.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func TestAssembleConcatenatesInOrder(t *testing.T) {
	f := newFixture(t)
	result, err := f.assemble(t, Task{
		Destination: "greeting/hello.txt",
		Parts: []string{
			"data:,Hello",
			"src/comma.txt",
			"maven:org.example:greetings:1.0!/world.txt",
		},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if got := testutil.ReadFile(t, f.destination("greeting/hello.txt")); got != "Hello, world!" {
		t.Errorf("content = %q, want %q", got, "Hello, world!")
	}
	if result.Status != StatusWritten || result.Parts != 3 || result.Bytes != 13 {
		t.Errorf("result = %+v", result)
	}
	if result.Digest != blake3Hex("Hello, world!") {
		t.Errorf("digest = %s, want %s", result.Digest, blake3Hex("Hello, world!"))
	}
	if result.Path != f.destination("greeting/hello.txt") {
		t.Errorf("path = %q", result.Path)
	}
}

func TestAssembleEmptyParts(t *testing.T) {
	f := newFixture(t)

	if _, err := f.assemble(t, Task{Destination: "fresh.txt"}); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got := testutil.ReadFile(t, f.destination("fresh.txt")); got != "" {
		t.Errorf("new destination content = %q, want empty", got)
	}

	testutil.WriteFile(t, f.outputRoot, "kept.txt", []byte("keep me"))
	if _, err := f.assemble(t, Task{Destination: "kept.txt", Parts: []string{}, Append: true}); err != nil {
		t.Fatalf("Assemble append: %v", err)
	}
	if got := testutil.ReadFile(t, f.destination("kept.txt")); got != "keep me" {
		t.Errorf("appended destination content = %q, want unchanged", got)
	}

	testutil.WriteFile(t, f.outputRoot, "cleared.txt", []byte("old"))
	if _, err := f.assemble(t, Task{Destination: "cleared.txt"}); err != nil {
		t.Fatalf("Assemble replace: %v", err)
	}
	if got := testutil.ReadFile(t, f.destination("cleared.txt")); got != "" {
		t.Errorf("replaced destination content = %q, want empty", got)
	}
}

func TestAssembleSkipExisting(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.outputRoot, "existing.txt", []byte("original"))

	for _, appendMode := range []bool{false, true} {
		result, err := f.assemble(t, Task{
			Destination:  "existing.txt",
			Parts:        []string{"data:,replacement"},
			SkipExisting: true,
			Append:       appendMode,
		})
		if err != nil {
			t.Fatalf("Assemble(append=%v): %v", appendMode, err)
		}
		if result.Status != StatusSkipped {
			t.Errorf("status = %q, want %q", result.Status, StatusSkipped)
		}
		if got := testutil.ReadFile(t, f.destination("existing.txt")); got != "original" {
			t.Errorf("content = %q, want untouched %q", got, "original")
		}
	}

	if _, err := f.assemble(t, Task{Destination: "absent.txt", Parts: []string{"data:,new"}, SkipExisting: true}); err != nil {
		t.Fatalf("Assemble absent: %v", err)
	}
	if got := testutil.ReadFile(t, f.destination("absent.txt")); got != "new" {
		t.Errorf("content = %q, want %q", got, "new")
	}
}

func TestAssembleAppend(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.outputRoot, "log.txt", []byte("Old "))

	result, err := f.assemble(t, Task{Destination: "log.txt", Parts: []string{"data:,and%20new"}, Append: true})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got := testutil.ReadFile(t, f.destination("log.txt")); got != "Old and new" {
		t.Errorf("content = %q, want %q", got, "Old and new")
	}
	if result.Bytes != int64(len("and new")) || result.Digest != blake3Hex("and new") {
		t.Errorf("result counts pre-existing bytes: %+v", result)
	}
}

func TestAssembleReplaces(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.outputRoot, "notice.txt", []byte("a much longer previous content"))

	if _, err := f.assemble(t, Task{Destination: "notice.txt", Parts: []string{"data:;base64,aGVsbG8="}}); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got := testutil.ReadFile(t, f.destination("notice.txt")); got != "hello" {
		t.Errorf("content = %q, want %q", got, "hello")
	}
}

func TestAssembleKeepsPartialOutput(t *testing.T) {
	f := newFixture(t)
	result, err := f.assemble(t, Task{
		Destination: "partial.txt",
		Parts: []string{
			"data:,Hello",
			"maven:org.example:greetings:1.0!/absent.txt",
			"data:,never",
		},
	})
	requireKind(t, err, fault.KindNotFound)
	if fault.CategoryOf(err) != fault.CategoryFailure {
		t.Errorf("category = %q, want %q", fault.CategoryOf(err), fault.CategoryFailure)
	}
	if got := testutil.ReadFile(t, f.destination("partial.txt")); got != "Hello" {
		t.Errorf("content = %q, want %q", got, "Hello")
	}
	if result.Bytes != 5 {
		t.Errorf("bytes = %d, want 5", result.Bytes)
	}
}

func TestAssemblePartFailures(t *testing.T) {
	tests := []struct {
		name string
		part string
		kind fault.Kind
	}{
		{"missing file", "src/absent.txt", fault.KindNotFound},
		{"missing artifact", "maven:org.example:absent:1.0", fault.KindNotFound},
		{"too many coordinate fields", "maven:g:a:jar:c:1.0:extra", fault.KindMalformedURI},
		{"data without comma", "data:text/plain", fault.KindMalformedURI},
		{"unknown scheme", "https://example.com/notice.txt", fault.KindUnsupportedScheme},
		{"corrupt archive", "maven:org.example:broken:1.0!/world.txt", fault.KindMalformedArchive},
		{"directory as part", "src", fault.KindIO},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.assemble(t, Task{Destination: "out.txt", Parts: []string{test.part}})
			requireKind(t, err, test.kind)
		})
	}
}

func TestAssembleInvalidDestination(t *testing.T) {
	f := newFixture(t)
	for _, destination := range []string{"", "/etc/passwd", "../outside.txt", "a/../../outside.txt"} {
		t.Run(destination, func(t *testing.T) {
			_, err := f.assemble(t, Task{Destination: destination, Parts: []string{"data:,x"}})
			requireKind(t, err, fault.KindInvalidTask)
		})
	}
}

func TestAssembleDestinationCollisions(t *testing.T) {
	f := newFixture(t)
	if err := os.MkdirAll(f.destination("occupied"), 0o755); err != nil {
		t.Fatal(err)
	}
	testutil.WriteFile(t, f.outputRoot, "some", []byte("a file"))

	for _, destination := range []string{"occupied", "some/file"} {
		t.Run(destination, func(t *testing.T) {
			_, err := f.assemble(t, Task{Destination: destination, Parts: []string{"data:,x"}})
			requireKind(t, err, fault.KindIO)
			if fault.CategoryOf(err) != fault.CategoryExecution {
				t.Errorf("category = %q, want %q", fault.CategoryOf(err), fault.CategoryExecution)
			}
		})
	}
}

// closeFailingFilesystem hands out destinations whose Close fails.
type closeFailingFilesystem struct {
	OSFilesystem
	closeErr error
	closes   int
}

type closeFailingFile struct {
	io.WriteCloser
	owner *closeFailingFilesystem
}

func (f *closeFailingFile) Close() error {
	f.owner.closes++
	f.WriteCloser.Close()
	return f.owner.closeErr
}

func (c *closeFailingFilesystem) OpenFile(name string, flag int, perm fs.FileMode) (io.WriteCloser, error) {
	file, err := c.OSFilesystem.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &closeFailingFile{WriteCloser: file, owner: c}, nil
}

func TestAssembleDestinationCloseFailure(t *testing.T) {
	f := newFixture(t)
	filesystem := &closeFailingFilesystem{closeErr: errors.New("disk quota exceeded")}
	assembler := NewAssembler(f.resolver, filesystem, nil)

	_, err := assembler.Assemble(context.Background(), Task{Destination: "out.txt", Parts: []string{"data:,x"}}, f.outputRoot)
	requireKind(t, err, fault.KindIO)
	if !errors.Is(err, filesystem.closeErr) {
		t.Errorf("error = %v, want the close failure", err)
	}
	if filesystem.closes != 1 {
		t.Errorf("destination closed %d times, want 1", filesystem.closes)
	}

	// A part failure stays primary; the close failure rides along.
	_, err = assembler.Assemble(context.Background(), Task{Destination: "out.txt", Parts: []string{"missing.txt"}}, f.outputRoot)
	requireKind(t, err, fault.KindNotFound)
	suppressed := fault.Suppressed(err)
	if len(suppressed) != 1 || !errors.Is(suppressed[0], filesystem.closeErr) {
		t.Errorf("suppressed = %v, want the close failure", suppressed)
	}
	if filesystem.closes != 2 {
		t.Errorf("destination closed %d times in total, want 2", filesystem.closes)
	}
}

// stubResolver serves fixed readers by URI.
type stubResolver map[string]io.ReadCloser

func (s stubResolver) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	reader, ok := s[uri]
	if !ok {
		return nil, fault.NotFound("no stub for %s", uri)
	}
	return reader, nil
}

func TestAssembleSourceCloseFailure(t *testing.T) {
	source := testutil.NewClosingReader([]byte("content"))
	source.CloseErr = errors.New("stale handle")
	assembler := NewAssembler(stubResolver{"stub:part": source}, nil, nil)
	outputRoot := t.TempDir()

	_, err := assembler.Assemble(context.Background(), Task{Destination: "out.txt", Parts: []string{"stub:part"}}, outputRoot)
	requireKind(t, err, fault.KindIO)
	if !errors.Is(err, source.CloseErr) {
		t.Errorf("error = %v, want the source close failure", err)
	}
	if source.Closes() != 1 {
		t.Errorf("source closed %d times, want 1", source.Closes())
	}
	if got := testutil.ReadFile(t, filepath.Join(outputRoot, "out.txt")); got != "content" {
		t.Errorf("content = %q, want %q", got, "content")
	}
}

// failingReader fails every Read.
type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }
func (f failingReader) Close() error             { return nil }

func TestAssembleCopyFailureIsIO(t *testing.T) {
	broken := errors.New("input/output error")
	assembler := NewAssembler(stubResolver{"stub:part": failingReader{broken}}, nil, nil)

	_, err := assembler.Assemble(context.Background(), Task{Destination: "out.txt", Parts: []string{"stub:part"}}, t.TempDir())
	requireKind(t, err, fault.KindIO)
	if !errors.Is(err, broken) {
		t.Errorf("error = %v, want the read failure", err)
	}
}
