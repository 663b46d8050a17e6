// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The concatenation step reads the wall clock in two places: stamping
// remote-repository download records and measuring task durations for
// the result log. Both accept a [Clock] so tests can pin the time with
// [Fake] instead of comparing against time.Now.
//
//	store := mavenrepo.NewRemoteRepository(config, cache, clock.Real(), logger)
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	fake.Advance(5 * time.Second)
package clock
