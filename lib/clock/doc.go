// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock lets time-dependent code take its notion of "now" as
// a dependency. The consent policy and the control server read the
// time through [Clock]; production passes [Real], tests pass a
// [FakeClock] and step it with [FakeClock.Advance] or [FakeClock.Set].
package clock
