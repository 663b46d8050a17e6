// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/concat/cmd/bureau-concat/cli"
	"github.com/bureau-foundation/concat/lib/clock"
	"github.com/bureau-foundation/concat/lib/config"
	"github.com/bureau-foundation/concat/lib/mavenrepo"
	"github.com/bureau-foundation/concat/lib/parturi"
)

// options are the flags shared by commands that resolve parts.
type options struct {
	configPath string
	envFile    string
	baseDir    string
	offline    bool
	logLevel   string
}

func (o *options) bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&o.configPath, "config", "", "config file, YAML or JSONC (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&o.envFile, "env-file", "", "dotenv file loaded before the config is expanded")
	flagSet.StringVar(&o.baseDir, "base-dir", "", "directory relative file parts resolve against (overrides base_directory)")
	flagSet.BoolVar(&o.offline, "offline", false, "resolve artifacts from the local repository only")
	flagSet.StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn, or error")
}

func (o *options) logger(command string) (*slog.Logger, error) {
	level, err := cli.ParseLogLevel(o.logLevel)
	if err != nil {
		return nil, err
	}
	return cli.NewCommandLogger(level).With("command", command), nil
}

// loadConfig loads and validates the configuration. When required is
// false and neither --config nor BUREAU_CONCAT_CONFIG names a file,
// the defaults are used.
func (o *options) loadConfig(required bool) (*config.Config, error) {
	if o.envFile != "" {
		if err := config.LoadEnvFile(o.envFile); err != nil {
			return nil, err
		}
	}

	var cfg *config.Config
	var err error
	switch {
	case o.configPath != "":
		cfg, err = config.LoadFile(o.configPath)
	case required || os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}

	if o.baseDir != "" {
		if cfg.BaseDirectory, err = filepath.Abs(o.baseDir); err != nil {
			return nil, fmt.Errorf("resolving --base-dir %s: %w", o.baseDir, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// openStore builds the artifact lookup chain: the local repository,
// then each remote in order, then object storage. Offline keeps only
// the local repository.
func openStore(cfg *config.Config, offline bool, logger *slog.Logger) (mavenrepo.Chain, error) {
	repositories := cfg.Repositories
	chain := mavenrepo.Chain{mavenrepo.NewLocalRepository(repositories.Local)}
	if offline {
		logger.Debug("offline, using the local repository only", "local", repositories.Local)
		return chain, nil
	}

	for _, remote := range repositories.Remote {
		chain = append(chain, mavenrepo.NewRemoteRepository(mavenrepo.RemoteConfig{
			ID:       remote.ID,
			URL:      remote.URL,
			Username: remote.Username,
			Password: remote.Password,
		}, repositories.Cache, nil, clock.Real(), logger))
	}

	if object := repositories.Object; object != nil {
		store, err := mavenrepo.NewObjectRepository(mavenrepo.ObjectConfig{
			Endpoint:  object.Endpoint,
			Bucket:    object.Bucket,
			Prefix:    object.Prefix,
			Region:    object.Region,
			AccessKey: object.AccessKey,
			SecretKey: object.SecretKey,
			UseSSL:    object.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		chain = append(chain, store)
	}

	logger.Debug("artifact repositories configured",
		"local", repositories.Local,
		"remote", len(repositories.Remote),
		"object", repositories.Object != nil,
	)
	return chain, nil
}

// newResolver builds the part resolver for cfg.
func (o *options) newResolver(cfg *config.Config, logger *slog.Logger) (*parturi.Resolver, error) {
	store, err := openStore(cfg, o.offline, logger)
	if err != nil {
		return nil, err
	}
	return parturi.New(parturi.Config{
		BaseDirectory:  cfg.BaseDirectory,
		Store:          store,
		ArtifactScheme: cfg.ArtifactScheme,
		Logger:         logger,
	}), nil
}
