package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/garnizeh/rozgar/internal/events"
	"github.com/garnizeh/rozgar/internal/onboarding"
	"github.com/garnizeh/rozgar/pkg/models"
)

// SubmitPhone logs in a known phone or starts registration for a new one.
func (c *Coordinator) SubmitPhone(ctx context.Context, phone string) (View, error) {
	return c.apply(ctx, onboarding.PhoneEntered{Phone: phone})
}

func (c *Coordinator) SelectRole(ctx context.Context, role models.RoleType) (View, error) {
	return c.apply(ctx, onboarding.RoleChosen{Role: role})
}

func (c *Coordinator) SubmitName(ctx context.Context, name string) (View, error) {
	return c.apply(ctx, onboarding.NameEntered{Name: name})
}

func (c *Coordinator) SubmitPhoto(ctx context.Context, photo string) (View, error) {
	return c.apply(ctx, onboarding.PhotoChosen{Photo: photo})
}

func (c *Coordinator) SubmitAddress(ctx context.Context, address string, coords *models.Coords) (View, error) {
	return c.apply(ctx, onboarding.AddressEntered{Address: address, Coords: coords})
}

// Back returns to the previous onboarding step.
func (c *Coordinator) Back(ctx context.Context) (View, error) {
	return c.apply(ctx, onboarding.Back{})
}

// DictateName transcribes a spoken name. The caller still submits it, so the
// name stays editable.
func (c *Coordinator) DictateName(ctx context.Context) (string, error) {
	if err := c.expectStep(onboarding.StepNameInput); err != nil {
		return "", err
	}
	name, err := c.deps.Transcriber.Transcribe(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}

// LocateAddress suggests an address from one location fix.
func (c *Coordinator) LocateAddress(ctx context.Context) (onboarding.Suggestion, error) {
	if err := c.expectStep(onboarding.StepAddressInput); err != nil {
		return onboarding.Suggestion{}, err
	}
	return onboarding.LocateAddress(ctx, c.deps.Locator)
}

// expectStep checks the current step without holding the loop afterwards,
// since transcription and location fixes block.
func (c *Coordinator) expectStep(step onboarding.Step) error {
	return c.do(func() error {
		if c.flow.Step != step {
			return onboarding.ErrWrongStep
		}
		return nil
	})
}

func (c *Coordinator) apply(ctx context.Context, in onboarding.Input) (View, error) {
	var v View
	err := c.do(func() error {
		defer func() { v = c.viewLocked() }()
		return c.applyLocked(ctx, in)
	})
	return v, err
}

func (c *Coordinator) applyLocked(ctx context.Context, in onboarding.Input) error {
	var existing *models.Profile
	if pe, ok := in.(onboarding.PhoneEntered); ok && c.flow.Step == onboarding.StepLogin {
		phone := strings.TrimSpace(pe.Phone)
		if models.ValidPhone(phone) {
			p, err := c.deps.Profiles.Get(ctx, phone)
			if err != nil {
				return fmt.Errorf("look up profile: %w", err)
			}
			existing = p
			pe.Registered = p != nil
			in = pe
		}
	}

	next, err := onboarding.Next(c.flow, in)
	if err != nil {
		return err
	}

	switch next.Outcome {
	case onboarding.OutcomeResume:
		if err := c.deps.Profiles.SetSession(ctx, next.Phone); err != nil {
			return err
		}
		c.flow = next
		c.startSessionLocked(existing)
	case onboarding.OutcomeFinalize:
		p, err := onboarding.Finalize(next)
		if err != nil {
			return err
		}
		if err := c.deps.Profiles.Put(ctx, next.Phone, p); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		if err := c.deps.Profiles.SetSession(ctx, next.Phone); err != nil {
			return err
		}
		c.flow = next
		c.startSessionLocked(p)
		c.publish(ctx, events.New(events.ProfileCreated, p.Phone, 0))
	default:
		c.flow = next
	}
	c.logger.Debug("onboarding step", slog.String("step", string(c.flow.Step)))
	return nil
}

// Logout stops everything running for the session and clears the session
// pointer. The profile stays stored.
func (c *Coordinator) Logout(ctx context.Context) (View, error) {
	var v View
	err := c.do(func() error {
		defer func() { v = c.viewLocked() }()
		if c.user == nil {
			return ErrNoSession
		}
		c.stopAllLocked()
		phone := c.user.Phone
		c.user = nil
		c.flow = onboarding.Initial()
		c.board.Reset(c.deps.Seed)
		c.logger.Info("logged out", slog.String("phone", phone))
		return c.deps.Profiles.ClearSession(ctx)
	})
	return v, err
}
