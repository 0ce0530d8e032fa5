// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestFakeStandsStill(t *testing.T) {
	fake := Fake(epoch)
	if !fake.Now().Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", fake.Now(), epoch)
	}
	if !fake.Now().Equal(fake.Now()) {
		t.Fatal("fake clock moved without Advance")
	}
}

func TestFakeAdvanceAndSet(t *testing.T) {
	fake := Fake(epoch)
	fake.Advance(61 * time.Second)
	if want := epoch.Add(61 * time.Second); !fake.Now().Equal(want) {
		t.Errorf("after Advance: %v, want %v", fake.Now(), want)
	}

	earlier := epoch.Add(-time.Hour)
	fake.Set(earlier)
	if !fake.Now().Equal(earlier) {
		t.Errorf("after Set: %v, want %v", fake.Now(), earlier)
	}
}

func TestFakeConcurrentAdvance(t *testing.T) {
	fake := Fake(epoch)
	var wait sync.WaitGroup
	for range 50 {
		wait.Add(1)
		go func() {
			defer wait.Done()
			fake.Advance(time.Second)
			_ = fake.Now()
		}()
	}
	wait.Wait()
	if want := epoch.Add(50 * time.Second); !fake.Now().Equal(want) {
		t.Errorf("Now() = %v, want %v", fake.Now(), want)
	}
}

func TestRealTracksSystemTime(t *testing.T) {
	before := time.Now()
	now := Real().Now()
	if now.Before(before) || now.Sub(before) > time.Minute {
		t.Errorf("Real().Now() = %v, system time %v", now, before)
	}
}
