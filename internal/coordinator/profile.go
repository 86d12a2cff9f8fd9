package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/garnizeh/rozgar/pkg/models"
)

var ErrInvalidUpdate = errors.New("invalid profile update")

// ProfileUpdate holds the editable fields. Nil fields are left as they are.
// The phone is the profile key and cannot change.
type ProfileUpdate struct {
	Name    *string        `json:"name,omitempty"`
	Roles   []string       `json:"roles,omitempty"`
	Photo   *string        `json:"photo,omitempty"`
	Address *string        `json:"address,omitempty"`
	Coords  *models.Coords `json:"coords,omitempty"`
}

func (c *Coordinator) Profile(ctx context.Context) (*models.Profile, error) {
	var p *models.Profile
	err := c.do(func() error {
		if err := c.requireSession(); err != nil {
			return err
		}
		p = c.user.Clone()
		return nil
	})
	return p, err
}

func (c *Coordinator) UpdateProfile(ctx context.Context, u ProfileUpdate) (*models.Profile, error) {
	var out *models.Profile
	err := c.do(func() error {
		if err := c.requireSession(); err != nil {
			return err
		}
		next := c.user.Clone()
		if u.Name != nil {
			name := strings.TrimSpace(*u.Name)
			if name == "" {
				return fmt.Errorf("%w: name is required", ErrInvalidUpdate)
			}
			next.Name = name
		}
		if u.Roles != nil {
			roles := make([]string, 0, len(u.Roles))
			for _, r := range u.Roles {
				if r = strings.TrimSpace(r); r != "" {
					roles = append(roles, r)
				}
			}
			if len(roles) == 0 {
				return fmt.Errorf("%w: at least one role label is required", ErrInvalidUpdate)
			}
			next.Roles = roles
		}
		if u.Photo != nil {
			if strings.TrimSpace(*u.Photo) == "" {
				return fmt.Errorf("%w: photo is required", ErrInvalidUpdate)
			}
			next.Photo = *u.Photo
		}
		if u.Address != nil {
			next.Address = strings.TrimSpace(*u.Address)
		}
		if u.Coords != nil {
			co := *u.Coords
			next.Coords = &co
		}
		if err := c.deps.Profiles.Put(ctx, next.Phone, next); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		c.user = next
		out = next.Clone()
		return nil
	})
	return out, err
}
