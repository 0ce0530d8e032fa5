// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyagent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/sshield/lib/clock"
	"github.com/bureau-foundation/sshield/lib/consent"
)

// SignPrompt is the question shown before a signature is allowed.
const SignPrompt = "Allow request to sign data?"

// Prompt is a configured prompting mode: NoPrompt, or EveryNSeconds
// with a confirmation window.
type Prompt struct {
	window time.Duration
}

// NoPrompt approves every request without asking.
func NoPrompt() Prompt {
	return Prompt{}
}

// EveryNSeconds prompts before a signature unless one was approved
// less than n seconds ago. n must be positive; otherwise the result is
// NoPrompt.
func EveryNSeconds(n int) Prompt {
	if n <= 0 {
		return NoPrompt()
	}
	return Prompt{window: time.Duration(n) * time.Second}
}

// Enabled reports whether this mode ever prompts.
func (p Prompt) Enabled() bool {
	return p.window > 0
}

// Window returns the confirmation window, zero for NoPrompt.
func (p Prompt) Window() time.Duration {
	return p.window
}

func (p Prompt) String() string {
	if !p.Enabled() {
		return "no-prompt"
	}
	return fmt.Sprintf("every %ds", int64(p.window/time.Second))
}

// ApprovalState is the time of the most recent explicit approval,
// shared by every connection the daemon serves. The zero value has
// never been approved.
type ApprovalState struct {
	mu   sync.Mutex
	last time.Time
}

// LastApproved returns the most recent approval time, or the zero time
// if nothing has been approved.
func (s *ApprovalState) LastApproved() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// PolicyConfig holds the parameters for NewPolicy.
type PolicyConfig struct {
	Prompt  Prompt
	State   *ApprovalState
	Consent consent.Confirmer
	Clock   clock.Clock
	Logger  *slog.Logger
}

// Policy is the daemon's Authorizer.
type Policy struct {
	prompt  Prompt
	state   *ApprovalState
	consent consent.Confirmer
	clock   clock.Clock
	logger  *slog.Logger
}

// NewPolicy creates a Policy. A nil State gets a fresh one; a nil
// Clock uses the real clock. Consent is required when Prompt is
// enabled.
func NewPolicy(cfg PolicyConfig) (*Policy, error) {
	if cfg.Prompt.Enabled() && cfg.Consent == nil {
		return nil, fmt.Errorf("keyagent: prompt %s requires a consent provider", cfg.Prompt)
	}
	state := cfg.State
	if state == nil {
		state = &ApprovalState{}
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Policy{prompt: cfg.Prompt, state: state, consent: cfg.Consent, clock: clk, logger: logger}, nil
}

// Prompt returns the configured mode.
func (p *Policy) Prompt() Prompt {
	return p.prompt
}

// State returns the shared approval state.
func (p *Policy) State() *ApprovalState {
	return p.state
}

// ConfirmIdentity always approves: adding a key is not gated, only
// using it.
func (p *Policy) ConfirmIdentity(ctx context.Context, identity Identity) error {
	p.logger.Info("identity added", "comment", identity.Comment, "type", identity.PublicKey.Type())
	return nil
}

// ConfirmRequest approves non-sign requests immediately. A sign
// request is approved silently inside the window following the last
// approval; otherwise the user is asked. The state lock is held from
// the window check until the new approval time is recorded, so
// concurrent signers see one prompt.
func (p *Policy) ConfirmRequest(ctx context.Context, request Request) error {
	if request.Kind != RequestSign || !p.prompt.Enabled() {
		return nil
	}

	p.state.mu.Lock()
	defer p.state.mu.Unlock()

	now := p.clock.Now()
	if !p.state.last.IsZero() && now.Sub(p.state.last) < p.prompt.window {
		p.logger.Debug("signature approved inside window",
			"since_approval", now.Sub(p.state.last).String())
		return nil
	}

	approved, err := p.consent.Confirm(ctx, SignPrompt)
	if err != nil {
		p.logger.Warn("consent prompt failed, denying signature", "error", err)
		return fmt.Errorf("%w: consent prompt failed: %v", ErrDenied, err)
	}
	if !approved {
		p.logger.Info("signature denied by user")
		return ErrDenied
	}

	p.state.last = p.clock.Now()
	p.logger.Info("signature approved by user", "window", p.prompt.window.String())
	return nil
}
