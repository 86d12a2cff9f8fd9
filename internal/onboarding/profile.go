package onboarding

import (
	"fmt"
	"net/url"

	"github.com/garnizeh/rozgar/pkg/models"
)

const (
	InitialRating       = 4.6
	InitialTotalRatings = 120
	InitialLevel        = "L1"

	initialJobsPosted   = 42
	initialWorkersHired = 85
	initialTotalPayment = 425000
)

const avatarURL = "https://api.dicebear.com/7.x/avataaars/svg?accessories=none&top=shortHair&hairColor=black&facialHair=none&clothing=shirtVNeck&clothingColor=f59e0b&seed="

// PlaceholderPhoto returns the generated avatar used when no photo was taken.
func PlaceholderPhoto(name string) string {
	return avatarURL + url.QueryEscape(name)
}

// Finalize builds the new profile for a state that reached StepApp with
// OutcomeFinalize.
func Finalize(s State) (*models.Profile, error) {
	if s.Outcome != OutcomeFinalize {
		return nil, fmt.Errorf("finalize: %w", ErrWrongStep)
	}
	if !s.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if s.Name == "" {
		return nil, ErrEmptyName
	}
	photo := s.Photo
	if photo == "" {
		photo = PlaceholderPhoto(s.Name)
	}
	p := &models.Profile{
		Name:         s.Name,
		Roles:        []string{s.Role.Label()},
		RoleType:     s.Role,
		Photo:        photo,
		Rating:       InitialRating,
		TotalRatings: InitialTotalRatings,
		Level:        InitialLevel,
		WorkHistory:  []models.WorkHistoryItem{},
		Phone:        s.Phone,
		Address:      s.Address,
	}
	if s.Coords != nil {
		c := *s.Coords
		p.Coords = &c
	}
	if s.Role != models.RoleWorker {
		posted, hired, paid := initialJobsPosted, initialWorkersHired, int64(initialTotalPayment)
		p.JobsPosted = &posted
		p.WorkersHired = &hired
		p.TotalPayment = &paid
	}
	return p, nil
}
