// Package profile persists profiles and the session pointer in the device
// KV store. Two records are used: SessionKey holds the bare phone of the
// active profile, UsersKey holds a JSON object mapping phone to profile.
//
// Reads never fail on malformed data: a record that does not parse or does
// not match the profile schema is treated as absent so onboarding stays
// reachable.
package profile

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qri-io/jsonschema"

	"github.com/garnizeh/rozgar/pkg/models"
	"github.com/garnizeh/rozgar/pkg/repository"
)

const (
	SessionKey = "current-session-phone"
	UsersKey   = "users-database"
)

var (
	ErrInvalidPhone   = errors.New("profile: phone must be 10 digits")
	ErrInvalidProfile = errors.New("profile: record does not match schema")
)

//go:embed profile.schema.json
var schemaJSON []byte

// Store is the Profile Store. It holds no cached state; every call goes to
// the KV backend so the last write observed by the backend always wins.
type Store struct {
	kv     repository.KVStore
	schema *jsonschema.Schema
	logger *slog.Logger
}

func NewStore(kv repository.KVStore, logger *slog.Logger) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("profile store: kv store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(schemaJSON, rs); err != nil {
		return nil, fmt.Errorf("compile profile schema: %w", err)
	}
	return &Store{kv: kv, schema: rs, logger: logger}, nil
}

// Get returns the profile stored for phone, or nil when absent or unreadable.
func (s *Store) Get(ctx context.Context, phone string) (*models.Profile, error) {
	users, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	raw, ok := users[phone]
	if !ok {
		return nil, nil
	}
	p, err := s.decode(ctx, raw)
	if err != nil {
		s.logger.Warn("profile: ignoring unreadable record", slog.String("phone", phone), slog.Any("err", err))
		return nil, nil
	}
	// the key is authoritative; the record's own phone is optional
	p.Phone = phone
	return p, nil
}

// Put overwrites the whole record for phone and persists it before returning.
// The stored record always carries phone as its own phone. Other entries of
// the database are kept byte for byte.
func (s *Store) Put(ctx context.Context, phone string, p *models.Profile) error {
	if !models.ValidPhone(phone) {
		return ErrInvalidPhone
	}
	if p == nil {
		return fmt.Errorf("profile is nil")
	}
	rec := p.Clone()
	rec.Phone = phone
	if rec.WorkHistory == nil {
		rec.WorkHistory = []models.WorkHistoryItem{}
	}
	if rec.Roles == nil {
		rec.Roles = []string{}
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.validate(ctx, b); err != nil {
		return err
	}

	users, err := s.load(ctx)
	if err != nil {
		return err
	}
	users[phone] = b
	all, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode users database: %w", err)
	}
	if err := s.kv.Put(ctx, UsersKey, string(all)); err != nil {
		return fmt.Errorf("persist profile: %w", err)
	}
	return nil
}

// CurrentSession returns the phone of the active profile. A pointer that is
// not a valid phone is reported as absent.
func (s *Store) CurrentSession(ctx context.Context) (string, bool, error) {
	v, ok, err := s.kv.Get(ctx, SessionKey)
	if err != nil {
		return "", false, fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	v = strings.TrimSpace(v)
	if !models.ValidPhone(v) {
		s.logger.Warn("profile: ignoring malformed session pointer")
		return "", false, nil
	}
	return v, true, nil
}

func (s *Store) SetSession(ctx context.Context, phone string) error {
	if !models.ValidPhone(phone) {
		return ErrInvalidPhone
	}
	if err := s.kv.Put(ctx, SessionKey, phone); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// ClearSession removes the session pointer. Profiles are never touched.
func (s *Store) ClearSession(ctx context.Context) error {
	if err := s.kv.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// load reads the users database. A malformed database is treated as empty.
func (s *Store) load(ctx context.Context) (map[string]json.RawMessage, error) {
	v, ok, err := s.kv.Get(ctx, UsersKey)
	if err != nil {
		return nil, fmt.Errorf("read users database: %w", err)
	}
	users := make(map[string]json.RawMessage)
	if !ok || strings.TrimSpace(v) == "" {
		return users, nil
	}
	if err := json.Unmarshal([]byte(v), &users); err != nil || users == nil {
		s.logger.Warn("profile: users database is malformed, treating as empty", slog.Any("err", err))
		return make(map[string]json.RawMessage), nil
	}
	return users, nil
}

func (s *Store) decode(ctx context.Context, raw json.RawMessage) (*models.Profile, error) {
	if err := s.validate(ctx, raw); err != nil {
		return nil, err
	}
	var p models.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if p.WorkHistory == nil {
		p.WorkHistory = []models.WorkHistoryItem{}
	}
	return &p, nil
}

func (s *Store) validate(ctx context.Context, b []byte) error {
	errs, err := s.schema.ValidateBytes(ctx, b)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, errs[0].Error())
	}
	return nil
}
