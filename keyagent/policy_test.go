// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyagent

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bureau-foundation/sshield/lib/clock"
	"github.com/bureau-foundation/sshield/lib/consent"
)

var testEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// countingConsent records prompts and answers with a fixed decision.
type countingConsent struct {
	calls    atomic.Int32
	approve  bool
	err      error
	messages chan string
}

func (c *countingConsent) Confirm(ctx context.Context, message string) (bool, error) {
	c.calls.Add(1)
	if c.messages != nil {
		c.messages <- message
	}
	return c.approve, c.err
}

func newTestPolicy(t *testing.T, prompt Prompt, confirmer consent.Confirmer) (*Policy, *clock.FakeClock) {
	t.Helper()
	fake := clock.Fake(testEpoch)
	policy, err := NewPolicy(PolicyConfig{Prompt: prompt, Consent: confirmer, Clock: fake})
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	return policy, fake
}

var signRequest = Request{Kind: RequestSign, Operation: "sign"}

func TestPolicyWindow(t *testing.T) {
	confirmer := &countingConsent{approve: true}
	policy, fake := newTestPolicy(t, EveryNSeconds(60), confirmer)
	ctx := context.Background()

	if err := policy.ConfirmRequest(ctx, signRequest); err != nil {
		t.Fatalf("first sign: %v", err)
	}
	if got := confirmer.calls.Load(); got != 1 {
		t.Fatalf("first sign prompted %d times, want 1", got)
	}

	fake.Advance(20 * time.Second)
	if err := policy.ConfirmRequest(ctx, signRequest); err != nil {
		t.Fatalf("sign at +20s: %v", err)
	}
	fake.Advance(39 * time.Second)
	if err := policy.ConfirmRequest(ctx, signRequest); err != nil {
		t.Fatalf("sign at +59s: %v", err)
	}
	if got := confirmer.calls.Load(); got != 1 {
		t.Fatalf("signs inside window prompted; calls = %d, want 1", got)
	}

	fake.Advance(2 * time.Second)
	if err := policy.ConfirmRequest(ctx, signRequest); err != nil {
		t.Fatalf("sign at +61s: %v", err)
	}
	if got := confirmer.calls.Load(); got != 2 {
		t.Fatalf("sign 61s after approval: calls = %d, want 2", got)
	}
	if !policy.State().LastApproved().Equal(testEpoch.Add(61 * time.Second)) {
		t.Errorf("LastApproved = %v, want epoch+61s", policy.State().LastApproved())
	}
}

func TestPolicyFirstSignAlwaysPrompts(t *testing.T) {
	confirmer := &countingConsent{approve: true}
	policy, _ := newTestPolicy(t, EveryNSeconds(3600), confirmer)
	if !policy.State().LastApproved().IsZero() {
		t.Fatal("fresh state has an approval time")
	}
	if err := policy.ConfirmRequest(context.Background(), signRequest); err != nil {
		t.Fatal(err)
	}
	if confirmer.calls.Load() != 1 {
		t.Errorf("first sign did not prompt")
	}
}

func TestPolicyNonSignNeverPrompts(t *testing.T) {
	confirmer := &countingConsent{approve: false}
	policy, fake := newTestPolicy(t, EveryNSeconds(1), confirmer)
	ctx := context.Background()

	kinds := []RequestKind{RequestList, RequestAddIdentity, RequestRemove, RequestOther}
	for _, kind := range kinds {
		for range 3 {
			fake.Advance(time.Hour)
			if err := policy.ConfirmRequest(ctx, Request{Kind: kind}); err != nil {
				t.Errorf("%s request denied: %v", kind, err)
			}
		}
	}
	if err := policy.ConfirmIdentity(ctx, Identity{PublicKey: testPublicKey(t), Comment: "work"}); err != nil {
		t.Errorf("ConfirmIdentity: %v", err)
	}
	if got := confirmer.calls.Load(); got != 0 {
		t.Errorf("non-sign requests prompted %d times", got)
	}
}

func TestPolicyNoPrompt(t *testing.T) {
	policy, _ := newTestPolicy(t, NoPrompt(), nil)
	for range 5 {
		if err := policy.ConfirmRequest(context.Background(), signRequest); err != nil {
			t.Fatalf("NoPrompt denied a signature: %v", err)
		}
	}
	if !policy.State().LastApproved().IsZero() {
		t.Error("NoPrompt recorded an approval time")
	}
}

func TestPolicyDenial(t *testing.T) {
	confirmer := &countingConsent{approve: false}
	policy, _ := newTestPolicy(t, EveryNSeconds(60), confirmer)
	ctx := context.Background()

	for attempt := 1; attempt <= 2; attempt++ {
		err := policy.ConfirmRequest(ctx, signRequest)
		if !errors.Is(err, ErrDenied) {
			t.Fatalf("attempt %d: got %v, want ErrDenied", attempt, err)
		}
		if got := confirmer.calls.Load(); got != int32(attempt) {
			t.Errorf("attempt %d: calls = %d", attempt, got)
		}
	}
	if !policy.State().LastApproved().IsZero() {
		t.Error("denial recorded an approval time")
	}
}

func TestPolicyPromptFailureDenies(t *testing.T) {
	confirmer := &countingConsent{approve: true, err: errors.New("no display")}
	policy, _ := newTestPolicy(t, EveryNSeconds(60), confirmer)
	err := policy.ConfirmRequest(context.Background(), signRequest)
	if !errors.Is(err, ErrDenied) {
		t.Fatalf("got %v, want ErrDenied", err)
	}
	if !policy.State().LastApproved().IsZero() {
		t.Error("failed prompt recorded an approval time")
	}
}

func TestPolicyPromptMessage(t *testing.T) {
	confirmer := &countingConsent{approve: true, messages: make(chan string, 1)}
	policy, _ := newTestPolicy(t, EveryNSeconds(60), confirmer)
	if err := policy.ConfirmRequest(context.Background(), signRequest); err != nil {
		t.Fatal(err)
	}
	if message := <-confirmer.messages; message != SignPrompt {
		t.Errorf("prompt message = %q, want %q", message, SignPrompt)
	}
}

func TestPolicyConcurrentSignersPromptOnce(t *testing.T) {
	confirmer := &countingConsent{approve: true}
	policy, _ := newTestPolicy(t, EveryNSeconds(60), confirmer)

	const signers = 16
	var wait sync.WaitGroup
	errs := make(chan error, signers)
	for range signers {
		wait.Add(1)
		go func() {
			defer wait.Done()
			errs <- policy.ConfirmRequest(context.Background(), signRequest)
		}()
	}
	wait.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent sign: %v", err)
		}
	}
	if got := confirmer.calls.Load(); got != 1 {
		t.Errorf("concurrent signers prompted %d times, want 1", got)
	}
}

func TestPolicySharedState(t *testing.T) {
	state := &ApprovalState{}
	confirmer := &countingConsent{approve: true}
	fake := clock.Fake(testEpoch)
	first, err := NewPolicy(PolicyConfig{Prompt: EveryNSeconds(60), State: state, Consent: confirmer, Clock: fake})
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewPolicy(PolicyConfig{Prompt: EveryNSeconds(60), State: state, Consent: confirmer, Clock: fake})
	if err != nil {
		t.Fatal(err)
	}

	if err := first.ConfirmRequest(context.Background(), signRequest); err != nil {
		t.Fatal(err)
	}
	if err := second.ConfirmRequest(context.Background(), signRequest); err != nil {
		t.Fatal(err)
	}
	if got := confirmer.calls.Load(); got != 1 {
		t.Errorf("policies sharing state prompted %d times, want 1", got)
	}
}

func TestNewPolicyRequiresConsent(t *testing.T) {
	if _, err := NewPolicy(PolicyConfig{Prompt: EveryNSeconds(60)}); err == nil {
		t.Fatal("NewPolicy with prompting and no consent succeeded")
	}
}

func TestPromptString(t *testing.T) {
	tests := []struct {
		prompt Prompt
		want   string
	}{
		{NoPrompt(), "no-prompt"},
		{EveryNSeconds(0), "no-prompt"},
		{EveryNSeconds(-3), "no-prompt"},
		{EveryNSeconds(90), "every 90s"},
	}
	for _, test := range tests {
		if got := test.prompt.String(); got != test.want {
			t.Errorf("String() = %q, want %q", got, test.want)
		}
	}
}
