// Package users implements the identity core: role-specific registration
// workflows, credential verification, role-shaped profile projection, and the
// admin-gated organizer verification toggle.
//
// Registration variants share one contract: validate the draft (collecting
// every field error), enforce uniqueness, hash the password, persist, and
// issue a session token. Sign-in failures are deliberately uniform so the
// API cannot be used to enumerate accounts.
package users

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/eventuraa/server/internal/auth"
	"github.com/eventuraa/server/internal/sanitize"
)

type Service struct {
	repo     Repository
	tokens   *auth.JWTManager
	adminKey string
	logger   zerolog.Logger
	validate *validator.Validate
}

func NewService(repo Repository, tokens *auth.JWTManager, adminKey string, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		adminKey: adminKey,
		logger:   logger.With().Str("component", "users").Logger(),
		validate: validator.New(),
	}
}

type SignupParams struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone"`
}

type OrganizerSignupParams struct {
	SignupParams
	Company     string `json:"company" validate:"required"`
	Description string `json:"description"`
	Website     string `json:"website"`
}

type DoctorSignupParams struct {
	SignupParams
	RegNumber      string `json:"regNumber" validate:"required"`
	Specialization string `json:"specialization"`
	Qualification  string `json:"qualification"`
	Hospital       string `json:"hospital"`
}

type AdminSignupParams struct {
	SignupParams
	AdminSecretKey string `json:"adminSecretKey"`
}

// Signup registers a standard user account.
func (s *Service) Signup(ctx context.Context, params SignupParams) (*Identity, string, error) {
	params.normalize()
	if fields := collectFieldErrors(s.validate, params, params.Email, params.Phone); len(fields) > 0 {
		return nil, "", &ValidationError{Fields: fields}
	}
	return s.create(ctx, params, string(auth.RoleUser), nil, nil)
}

// SignupOrganizer registers an organizer. The account starts unverified and
// cannot manage events until an admin flips the verification flag.
func (s *Service) SignupOrganizer(ctx context.Context, params OrganizerSignupParams) (*Identity, string, error) {
	params.normalize()
	params.Company = strings.TrimSpace(params.Company)
	if fields := collectFieldErrors(s.validate, params, params.Email, params.Phone); len(fields) > 0 {
		return nil, "", &ValidationError{Fields: fields}
	}

	profile := &OrganizerProfile{
		Company:     sanitize.Text(params.Company),
		Description: sanitize.HTML(params.Description),
		Website:     strings.TrimSpace(params.Website),
		Verified:    false,
		MemberSince: time.Now().UTC(),
	}
	return s.create(ctx, params.SignupParams, string(auth.RoleOrganizer), profile, nil)
}

// SignupDoctor registers a doctor. The registration number must be unique
// among doctor profiles; the account starts unverified.
func (s *Service) SignupDoctor(ctx context.Context, params DoctorSignupParams) (*Identity, string, error) {
	params.normalize()
	params.RegNumber = strings.TrimSpace(params.RegNumber)
	if fields := collectFieldErrors(s.validate, params, params.Email, params.Phone); len(fields) > 0 {
		return nil, "", &ValidationError{Fields: fields}
	}

	if _, err := s.repo.FindByRegNumber(ctx, params.RegNumber); err == nil {
		return nil, "", ErrRegNumberTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, "", fmt.Errorf("check registration number: %w", err)
	}

	profile := &DoctorProfile{
		RegNumber:      params.RegNumber,
		Specialization: sanitize.Text(params.Specialization),
		Qualification:  sanitize.Text(params.Qualification),
		Hospital:       sanitize.Text(params.Hospital),
		Verified:       false,
	}
	return s.create(ctx, params.SignupParams, string(auth.RoleDoctor), nil, profile)
}

// SignupAdmin registers an administrator. The shared secret is checked
// before any validation runs; a mismatch rejects the request outright.
func (s *Service) SignupAdmin(ctx context.Context, params AdminSignupParams) (*Identity, string, error) {
	if subtle.ConstantTimeCompare([]byte(params.AdminSecretKey), []byte(s.adminKey)) != 1 {
		s.logger.Warn().Msg("admin signup rejected: wrong secret key")
		return nil, "", ErrInvalidAdminKey
	}

	params.normalize()
	if fields := collectFieldErrors(s.validate, params, params.Email, params.Phone); len(fields) > 0 {
		return nil, "", &ValidationError{Fields: fields}
	}
	return s.create(ctx, params.SignupParams, string(auth.RoleAdmin), nil, nil)
}

func (s *Service) create(ctx context.Context, params SignupParams, role string, organizer *OrganizerProfile, doctor *DoctorProfile) (*Identity, string, error) {
	if _, err := s.repo.FindByEmail(ctx, params.Email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, "", fmt.Errorf("check email: %w", err)
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	identity := &Identity{
		ID:           uuid.New(),
		Name:         sanitize.Text(params.Name),
		Email:        params.Email,
		Phone:        params.Phone,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
		Organizer:    organizer,
		Doctor:       doctor,
	}
	if err := s.repo.Create(ctx, identity); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(identity.ID.String(), identity.Role)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info().
		Str("user_id", identity.ID.String()).
		Str("role", identity.Role).
		Msg("account registered")
	return identity, token, nil
}

// Authenticate verifies email/password credentials and issues a session
// token. Unknown email and wrong password produce the identical error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Identity, string, error) {
	email = strings.TrimSpace(email)

	identity, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if !auth.CheckPassword(password, identity.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(identity.ID.String(), identity.Role)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info().
		Str("user_id", identity.ID.String()).
		Str("role", identity.Role).
		Msg("signed in")
	return identity, token, nil
}

// Profile loads the identity for the given subject id.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*Identity, error) {
	return s.repo.FindByID(ctx, id)
}

// ListOrganizers returns every organizer account, newest first.
func (s *Service) ListOrganizers(ctx context.Context) ([]Identity, error) {
	return s.repo.ListOrganizers(ctx)
}

// SetOrganizerVerified toggles the organizer verification flag. Admin-only;
// the caller enforces the role.
func (s *Service) SetOrganizerVerified(ctx context.Context, id uuid.UUID, verified bool) (*Identity, error) {
	identity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if identity.Role != string(auth.RoleOrganizer) || identity.Organizer == nil {
		return nil, ErrNotOrganizer
	}

	identity.Organizer.Verified = verified
	if err := s.repo.Save(ctx, identity); err != nil {
		return nil, fmt.Errorf("save organizer: %w", err)
	}

	s.logger.Info().
		Str("user_id", identity.ID.String()).
		Bool("verified", verified).
		Msg("organizer verification updated")
	return identity, nil
}

// RoleCounts summarizes accounts by role for the admin dashboard.
type RoleCounts struct {
	Users              int64 `json:"total"`
	Organizers         int64 `json:"organizers"`
	Admins             int64 `json:"admins"`
	VerifiedOrganizers int64 `json:"-"`
}

// CountsByRole runs the dashboard counts concurrently; each goroutine
// writes a distinct field.
func (s *Service) CountsByRole(ctx context.Context) (RoleCounts, error) {
	var counts RoleCounts
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountByRole(ctx, string(auth.RoleUser))
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		counts.Users = n
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.CountByRole(ctx, string(auth.RoleOrganizer))
		if err != nil {
			return fmt.Errorf("count organizers: %w", err)
		}
		counts.Organizers = n
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.CountByRole(ctx, string(auth.RoleAdmin))
		if err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		counts.Admins = n
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.CountVerifiedOrganizers(ctx)
		if err != nil {
			return fmt.Errorf("count verified organizers: %w", err)
		}
		counts.VerifiedOrganizers = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return RoleCounts{}, err
	}
	return counts, nil
}

func (p *SignupParams) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
}
