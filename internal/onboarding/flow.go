// Package onboarding is the registration flow as a pure state machine.
// Next never performs I/O; the caller acts on State.Outcome.
package onboarding

import (
	"errors"
	"strings"

	"github.com/garnizeh/rozgar/pkg/models"
)

type Step string

const (
	StepLogin         Step = "login"
	StepRoleSelection Step = "role-selection"
	StepNameInput     Step = "name-input"
	StepPhotoUpload   Step = "photo-upload"
	StepAddressInput  Step = "address-input"
	StepApp           Step = "app"
)

// Outcome tells the caller what to do after a transition into StepApp.
type Outcome int

const (
	OutcomeNone Outcome = iota
	// OutcomeResume loads the stored profile for State.Phone.
	OutcomeResume
	// OutcomeFinalize builds a new profile with Finalize and stores it.
	OutcomeFinalize
)

var (
	ErrInvalidPhone = errors.New("phone must be 10 digits")
	ErrInvalidRole  = errors.New("unknown role")
	ErrEmptyName    = errors.New("name is required")
	ErrEmptyPhoto   = errors.New("photo is required")
	ErrEmptyAddress = errors.New("address is required")
	ErrWrongStep    = errors.New("input does not belong to the current step")
	ErrCannotGoBack = errors.New("no previous step")
)

// IsValidation reports whether err rejects an input without changing state.
func IsValidation(err error) bool {
	for _, e := range []error{ErrInvalidPhone, ErrInvalidRole, ErrEmptyName, ErrEmptyPhoto, ErrEmptyAddress, ErrWrongStep, ErrCannotGoBack} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// State is everything collected so far.
type State struct {
	Step    Step            `json:"step"`
	Phone   string          `json:"phone,omitempty"`
	Role    models.RoleType `json:"role,omitempty"`
	Name    string          `json:"name,omitempty"`
	Photo   string          `json:"photo,omitempty"`
	Address string          `json:"address,omitempty"`
	Coords  *models.Coords  `json:"coords,omitempty"`
	Outcome Outcome         `json:"-"`
}

func Initial() State {
	return State{Step: StepLogin}
}

// Input is one user action on the current step.
type Input interface {
	step() Step
}

type PhoneEntered struct {
	Phone string
	// Registered is whether a profile already exists for Phone.
	Registered bool
}

type RoleChosen struct {
	Role models.RoleType
}

type NameEntered struct {
	Name string
}

// PhotoChosen carries an image reference or an inline data URL, stored verbatim.
type PhotoChosen struct {
	Photo string
}

type AddressEntered struct {
	Address string
	Coords  *models.Coords
}

// Back returns to the previous step.
type Back struct{}

func (PhoneEntered) step() Step   { return StepLogin }
func (RoleChosen) step() Step     { return StepRoleSelection }
func (NameEntered) step() Step    { return StepNameInput }
func (PhotoChosen) step() Step    { return StepPhotoUpload }
func (AddressEntered) step() Step { return StepAddressInput }
func (Back) step() Step           { return "" }

var previous = map[Step]Step{
	StepRoleSelection: StepLogin,
	StepNameInput:     StepRoleSelection,
	StepPhotoUpload:   StepNameInput,
	StepAddressInput:  StepPhotoUpload,
}

// Next applies in to s. On error the returned state is s unchanged.
func Next(s State, in Input) (State, error) {
	if _, ok := in.(Back); ok {
		prev, ok := previous[s.Step]
		if !ok {
			return s, ErrCannotGoBack
		}
		n := s
		n.Step = prev
		n.Outcome = OutcomeNone
		return n, nil
	}
	if in == nil || in.step() != s.Step {
		return s, ErrWrongStep
	}

	n := s
	n.Outcome = OutcomeNone
	switch v := in.(type) {
	case PhoneEntered:
		phone := strings.TrimSpace(v.Phone)
		if !models.ValidPhone(phone) {
			return s, ErrInvalidPhone
		}
		n = State{Step: StepRoleSelection, Phone: phone}
		if v.Registered {
			n.Step = StepApp
			n.Outcome = OutcomeResume
		}
	case RoleChosen:
		if !v.Role.Valid() {
			return s, ErrInvalidRole
		}
		n.Role = v.Role
		n.Step = StepNameInput
	case NameEntered:
		name := strings.TrimSpace(v.Name)
		if name == "" {
			return s, ErrEmptyName
		}
		n.Name = name
		if n.Role == models.RoleWorker {
			n.Step = StepApp
			n.Outcome = OutcomeFinalize
		} else {
			n.Step = StepPhotoUpload
		}
	case PhotoChosen:
		if strings.TrimSpace(v.Photo) == "" {
			return s, ErrEmptyPhoto
		}
		n.Photo = v.Photo
		n.Step = StepAddressInput
	case AddressEntered:
		addr := strings.TrimSpace(v.Address)
		if addr == "" {
			return s, ErrEmptyAddress
		}
		n.Address = addr
		if v.Coords != nil {
			c := *v.Coords
			n.Coords = &c
		} else {
			n.Coords = nil
		}
		n.Step = StepApp
		n.Outcome = OutcomeFinalize
	}
	return n, nil
}
