// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mavenrepo

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// DefaultType is the artifact type (file extension) used when a
// coordinate omits it or leaves it empty.
const DefaultType = "jar"

// ErrMalformedCoordinate is returned by [ParseCoordinate] for strings
// that do not follow the coordinate grammar.
var ErrMalformedCoordinate = errors.New("malformed artifact coordinate")

// Coordinate identifies one file in a Maven repository.
type Coordinate struct {
	GroupID    string
	ArtifactID string

	// Type is the file extension of the artifact. Never empty after
	// ParseCoordinate; defaults to DefaultType.
	Type string

	// Classifier distinguishes secondary artifacts built from the same
	// module (sources, javadoc, tests). Optional.
	Classifier string

	Version string
}

// ParseCoordinate parses a colon-separated coordinate in one of three
// forms:
//
//	group:artifact:version
//	group:artifact:type:version
//	group:artifact:type:classifier:version
//
// Group, artifact, version, and (in the five-field form) classifier
// must be non-empty. Type may be empty, meaning DefaultType. No field
// may contain a space, and the result must pass [Coordinate.Validate].
func ParseCoordinate(text string) (Coordinate, error) {
	if strings.ContainsAny(text, " ") {
		return Coordinate{}, fmt.Errorf("%w %q: contains a space", ErrMalformedCoordinate, text)
	}
	fields := strings.Split(text, ":")

	var coordinate Coordinate
	switch len(fields) {
	case 3:
		coordinate = Coordinate{GroupID: fields[0], ArtifactID: fields[1], Version: fields[2]}
	case 4:
		coordinate = Coordinate{GroupID: fields[0], ArtifactID: fields[1], Type: fields[2], Version: fields[3]}
	case 5:
		if fields[3] == "" {
			return Coordinate{}, fmt.Errorf("%w %q: empty classifier", ErrMalformedCoordinate, text)
		}
		coordinate = Coordinate{GroupID: fields[0], ArtifactID: fields[1], Type: fields[2], Classifier: fields[3], Version: fields[4]}
	default:
		return Coordinate{}, fmt.Errorf("%w %q: %d colon-separated fields, want 3 to 5", ErrMalformedCoordinate, text, len(fields))
	}

	if coordinate.GroupID == "" || coordinate.ArtifactID == "" || coordinate.Version == "" {
		return Coordinate{}, fmt.Errorf("%w %q: group, artifact, and version are required", ErrMalformedCoordinate, text)
	}
	if coordinate.Type == "" {
		coordinate.Type = DefaultType
	}
	if err := coordinate.Validate(); err != nil {
		return Coordinate{}, err
	}
	return coordinate, nil
}

// Validate reports whether the coordinate maps to a path inside a
// repository root. No field may contain a path separator, and artifact,
// type, classifier, and version may not be "." or "..".
func (c Coordinate) Validate() error {
	fields := []struct{ name, value string }{
		{"group", c.GroupID},
		{"artifact", c.ArtifactID},
		{"type", c.Type},
		{"classifier", c.Classifier},
		{"version", c.Version},
	}
	for _, field := range fields {
		if strings.ContainsAny(field.value, `/\`) {
			return fmt.Errorf("%w %q: %s contains a path separator", ErrMalformedCoordinate, c.String(), field.name)
		}
		if field.name != "group" && (field.value == "." || field.value == "..") {
			return fmt.Errorf("%w %q: %s may not be %q", ErrMalformedCoordinate, c.String(), field.name, field.value)
		}
	}
	if c.GroupID == "" || c.ArtifactID == "" || c.Version == "" {
		return fmt.Errorf("%w %q: group, artifact, and version are required", ErrMalformedCoordinate, c.String())
	}
	if !filepath.IsLocal(filepath.FromSlash(c.Path())) {
		return fmt.Errorf("%w %q: path %s leaves the repository", ErrMalformedCoordinate, c.String(), c.Path())
	}
	return nil
}

// String returns the canonical form group:artifact:type[:classifier]:version.
// The type is always present, so "g:a:v" prints as "g:a:jar:v".
func (c Coordinate) String() string {
	if c.Classifier == "" {
		return c.GroupID + ":" + c.ArtifactID + ":" + c.typeOrDefault() + ":" + c.Version
	}
	return c.GroupID + ":" + c.ArtifactID + ":" + c.typeOrDefault() + ":" + c.Classifier + ":" + c.Version
}

// FileName returns artifact-version[-classifier].type.
func (c Coordinate) FileName() string {
	name := c.ArtifactID + "-" + c.Version
	if c.Classifier != "" {
		name += "-" + c.Classifier
	}
	return name + "." + c.typeOrDefault()
}

// Path returns the slash-separated location of the artifact relative
// to a repository root: the group with dots turned into directories,
// then artifact, version, and FileName.
//
//	org.example:lib:1.0 -> org/example/lib/1.0/lib-1.0.jar
func (c Coordinate) Path() string {
	return path.Join(strings.ReplaceAll(c.GroupID, ".", "/"), c.ArtifactID, c.Version, c.FileName())
}

func (c Coordinate) typeOrDefault() string {
	if c.Type == "" {
		return DefaultType
	}
	return c.Type
}
