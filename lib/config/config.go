// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/concat/lib/concat"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "BUREAU_CONCAT_CONFIG"

// Config is the configuration of a concatenation run.
type Config struct {
	// OutputDirectory is the root destinations are written under.
	OutputDirectory string `yaml:"output_directory" json:"output_directory"`

	// BaseDirectory anchors relative file parts.
	// Default: the directory holding the config file.
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`

	// ArtifactScheme is the URI scheme token for artifact references.
	// Default: maven
	ArtifactScheme string `yaml:"artifact_scheme" json:"artifact_scheme"`

	// EnvFile is a dotenv file loaded before variable expansion.
	// Variables already set in the environment win.
	EnvFile string `yaml:"env_file" json:"env_file"`

	// Repositories configures where artifacts come from.
	Repositories RepositoriesConfig `yaml:"repositories" json:"repositories"`

	// Files lists the files to build. Absent means nothing to do.
	Files []FileConfig `yaml:"files" json:"files"`
}

// RepositoriesConfig lists artifact sources in lookup order: local,
// then each remote, then object storage.
type RepositoriesConfig struct {
	// Local is a Maven local repository, read-only.
	// Default: ${HOME}/.m2/repository
	Local string `yaml:"local" json:"local"`

	// Cache holds artifacts downloaded from remotes.
	// Default: ${HOME}/.cache/bureau-concat/repository
	Cache string `yaml:"cache" json:"cache"`

	// Remote lists HTTP(S) Maven repositories.
	Remote []RemoteConfig `yaml:"remote" json:"remote"`

	// Object is an optional S3-compatible bucket.
	Object *ObjectConfig `yaml:"object,omitempty" json:"object,omitempty"`
}

// RemoteConfig configures one HTTP(S) Maven repository.
type RemoteConfig struct {
	ID       string `yaml:"id" json:"id"`
	URL      string `yaml:"url" json:"url"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// ObjectConfig configures an S3-compatible artifact bucket.
type ObjectConfig struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	Bucket    string `yaml:"bucket" json:"bucket"`
	Prefix    string `yaml:"prefix" json:"prefix"`
	Region    string `yaml:"region" json:"region"`
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" json:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl" json:"use_ssl"`
}

// FileConfig describes one file to build.
type FileConfig struct {
	File         string   `yaml:"file" json:"file"`
	Parts        []string `yaml:"parts" json:"parts"`
	SkipExisting bool     `yaml:"skip_existing" json:"skip_existing"`
	Append       bool     `yaml:"append" json:"append"`
}

// Default returns the configuration values applied before the file is
// read.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		ArtifactScheme: "maven",
		Repositories: RepositoriesConfig{
			Local: filepath.Join(homeDir, ".m2", "repository"),
			Cache: filepath.Join(homeDir, ".cache", "bureau-concat", "repository"),
		},
	}
}

// Load loads configuration from the file named by BUREAU_CONCAT_CONFIG.
// There is no discovery: if the variable is unset, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your concat config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path. Files ending in .yaml or
// .yml are YAML; .json and .jsonc are JSON with comments and trailing
// commas allowed. Unknown keys are errors in both.
//
// After decoding, the env file (if any) is loaded, ${VAR} and
// ${VAR:-default} are expanded in directory, repository, and
// credential fields, and relative directories are resolved against
// the directory holding the config file.
func LoadFile(path string) (*Config, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path %s: %w", path, err)
	}
	data, err := os.ReadFile(absolute)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := cfg.decode(absolute, data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	directory := filepath.Dir(absolute)
	vars := map[string]string{
		"HOME":       os.Getenv("HOME"),
		"CONFIG_DIR": directory,
	}

	if cfg.EnvFile != "" {
		cfg.EnvFile = resolvePath(directory, expandVars(cfg.EnvFile, vars))
		if err := LoadEnvFile(cfg.EnvFile); err != nil {
			return nil, err
		}
	}
	cfg.expandVariables(vars)

	if cfg.BaseDirectory == "" {
		cfg.BaseDirectory = directory
	}
	cfg.BaseDirectory = resolvePath(directory, cfg.BaseDirectory)
	cfg.OutputDirectory = resolvePath(directory, cfg.OutputDirectory)
	cfg.Repositories.Local = resolvePath(directory, cfg.Repositories.Local)
	cfg.Repositories.Cache = resolvePath(directory, cfg.Repositories.Cache)

	return cfg, nil
}

// LoadEnvFile adds the variables in a dotenv file to the process
// environment. Variables that are already set keep their values.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case ".json", ".jsonc":
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		return decoder.Decode(c)
	default:
		return fmt.Errorf("unsupported config format %q (want .yaml, .yml, .json, or .jsonc)", filepath.Ext(path))
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in
// fields that name places or credentials. Part URIs are left alone.
func (c *Config) expandVariables(vars map[string]string) {
	c.OutputDirectory = expandVars(c.OutputDirectory, vars)
	c.BaseDirectory = expandVars(c.BaseDirectory, vars)
	c.Repositories.Local = expandVars(c.Repositories.Local, vars)
	c.Repositories.Cache = expandVars(c.Repositories.Cache, vars)
	for i := range c.Repositories.Remote {
		remote := &c.Repositories.Remote[i]
		remote.URL = expandVars(remote.URL, vars)
		remote.Username = expandVars(remote.Username, vars)
		remote.Password = expandVars(remote.Password, vars)
	}
	if object := c.Repositories.Object; object != nil {
		object.Endpoint = expandVars(object.Endpoint, vars)
		object.Bucket = expandVars(object.Bucket, vars)
		object.Prefix = expandVars(object.Prefix, vars)
		object.Region = expandVars(object.Region, vars)
		object.AccessKey = expandVars(object.AccessKey, vars)
		object.SecretKey = expandVars(object.SecretKey, vars)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, looking in
// vars first and then the environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// resolvePath anchors a relative path at directory. Empty stays empty.
func resolvePath(directory, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(directory, path)
}

var schemeTokenPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*$`)

// Validate checks the configuration for errors. Task-level problems
// (empty destinations, malformed parts, missing output directory) are
// left to the engine, which reports them per task.
func (c *Config) Validate() error {
	var errs []error

	switch {
	case !schemeTokenPattern.MatchString(c.ArtifactScheme):
		errs = append(errs, fmt.Errorf("artifact_scheme %q is not a valid URI scheme", c.ArtifactScheme))
	case strings.EqualFold(c.ArtifactScheme, "file"), strings.EqualFold(c.ArtifactScheme, "data"):
		errs = append(errs, fmt.Errorf("artifact_scheme %q collides with a built-in scheme", c.ArtifactScheme))
	}

	seen := make(map[string]bool)
	for i, remote := range c.Repositories.Remote {
		if remote.URL == "" {
			errs = append(errs, fmt.Errorf("repositories.remote[%d].url is required", i))
		} else if parsed, err := url.Parse(remote.URL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			errs = append(errs, fmt.Errorf("repositories.remote[%d].url %q must be an http or https URL", i, remote.URL))
		}
		if remote.ID != "" {
			if seen[remote.ID] {
				errs = append(errs, fmt.Errorf("repositories.remote[%d].id %q is not unique", i, remote.ID))
			}
			seen[remote.ID] = true
		}
	}
	if len(c.Repositories.Remote) > 0 && c.Repositories.Cache == "" {
		errs = append(errs, fmt.Errorf("repositories.cache is required when remote repositories are configured"))
	}

	if object := c.Repositories.Object; object != nil {
		if object.Endpoint == "" {
			errs = append(errs, fmt.Errorf("repositories.object.endpoint is required"))
		}
		if object.Bucket == "" {
			errs = append(errs, fmt.Errorf("repositories.object.bucket is required"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Tasks converts Files to engine tasks. A nil Files gives a nil slice,
// which the engine treats as nothing to do.
func (c *Config) Tasks() []concat.Task {
	if c.Files == nil {
		return nil
	}
	tasks := make([]concat.Task, 0, len(c.Files))
	for _, file := range c.Files {
		tasks = append(tasks, concat.Task{
			Destination:  file.File,
			Parts:        file.Parts,
			SkipExisting: file.SkipExisting,
			Append:       file.Append,
		})
	}
	return tasks
}
