package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eventuraa/server/internal/auth"
)

type fakeRepo struct {
	byEmail map[string]*Identity
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byEmail: map[string]*Identity{}}
}

func (f *fakeRepo) FindByEmail(_ context.Context, email string) (*Identity, error) {
	if identity, ok := f.byEmail[email]; ok {
		return identity, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*Identity, error) {
	for _, identity := range f.byEmail {
		if identity.ID == id {
			return identity, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) FindByRegNumber(_ context.Context, regNumber string) (*Identity, error) {
	for _, identity := range f.byEmail {
		if identity.Doctor != nil && identity.Doctor.RegNumber == regNumber {
			return identity, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) Create(_ context.Context, identity *Identity) error {
	if _, ok := f.byEmail[identity.Email]; ok {
		return ErrEmailTaken
	}
	f.byEmail[identity.Email] = identity
	return nil
}

func (f *fakeRepo) Save(_ context.Context, identity *Identity) error {
	f.byEmail[identity.Email] = identity
	return nil
}

func (f *fakeRepo) ListOrganizers(_ context.Context) ([]Identity, error) {
	var out []Identity
	for _, identity := range f.byEmail {
		if identity.Role == "organizer" {
			out = append(out, *identity)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountByRole(_ context.Context, role string) (int64, error) {
	var n int64
	for _, identity := range f.byEmail {
		if identity.Role == role {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CountVerifiedOrganizers(_ context.Context) (int64, error) {
	var n int64
	for _, identity := range f.byEmail {
		if identity.Organizer != nil && identity.Organizer.Verified {
			n++
		}
	}
	return n, nil
}

func newTestService(repo Repository) *Service {
	tokens := auth.NewJWTManager("test-secret", time.Hour, "eventuraa")
	return NewService(repo, tokens, "admin-key", zerolog.Nop())
}

func validDraft() SignupParams {
	return SignupParams{
		Name:     "Nimal Perera",
		Email:    "nimal@example.com",
		Password: "longenough",
	}
}

func TestSignupIssuesTokenAndHashesPassword(t *testing.T) {
	svc := newTestService(newFakeRepo())

	identity, token, err := svc.Signup(context.Background(), validDraft())
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if token == "" {
		t.Fatal("expected a session token")
	}
	if identity.Role != "user" {
		t.Fatalf("expected role user, got %q", identity.Role)
	}
	if identity.PasswordHash == "longenough" {
		t.Fatal("password stored unhashed")
	}
	if !auth.CheckPassword("longenough", identity.PasswordHash) {
		t.Fatal("stored hash does not verify")
	}
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	svc := newTestService(newFakeRepo())

	if _, _, err := svc.Signup(context.Background(), validDraft()); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, _, err := svc.Signup(context.Background(), validDraft()); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignupCollectsAllFieldErrors(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, _, err := svc.Signup(context.Background(), SignupParams{
		Name:     "",
		Email:    "not-an-email",
		Password: "short",
		Phone:    "0771234567",
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	params := map[string]string{}
	for _, f := range verr.Fields {
		params[f.Param] = f.Msg
	}
	for _, want := range []string{"name", "email", "password", "phone"} {
		if _, ok := params[want]; !ok {
			t.Fatalf("expected a field error for %q, got %v", want, params)
		}
	}
	if params["password"] != "Password must be at least 8 characters" {
		t.Fatalf("unexpected password message: %q", params["password"])
	}
}

func TestSignupAcceptsValidPhone(t *testing.T) {
	svc := newTestService(newFakeRepo())

	draft := validDraft()
	draft.Phone = "+94 77 123 4567"
	if _, _, err := svc.Signup(context.Background(), draft); err != nil {
		t.Fatalf("signup with valid phone: %v", err)
	}
}

func TestOrganizerSignupRequiresCompany(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, _, err := svc.SignupOrganizer(context.Background(), OrganizerSignupParams{
		SignupParams: validDraft(),
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Param != "company" {
		t.Fatalf("expected single company error, got %v", verr.Fields)
	}
}

func TestOrganizerSignupStartsUnverified(t *testing.T) {
	svc := newTestService(newFakeRepo())

	identity, _, err := svc.SignupOrganizer(context.Background(), OrganizerSignupParams{
		SignupParams: validDraft(),
		Company:      "Island Events Ltd",
	})
	if err != nil {
		t.Fatalf("organizer signup: %v", err)
	}
	if identity.Organizer == nil {
		t.Fatal("expected organizer profile")
	}
	if identity.Organizer.Verified {
		t.Fatal("new organizers must start unverified")
	}
	if identity.Organizer.MemberSince.IsZero() {
		t.Fatal("expected memberSince to be set")
	}
}

func TestDoctorSignupDuplicateRegNumber(t *testing.T) {
	svc := newTestService(newFakeRepo())

	first := DoctorSignupParams{SignupParams: validDraft(), RegNumber: "SLMC-9001"}
	if _, _, err := svc.SignupDoctor(context.Background(), first); err != nil {
		t.Fatalf("first doctor signup: %v", err)
	}

	second := DoctorSignupParams{SignupParams: validDraft(), RegNumber: "SLMC-9001"}
	second.Email = "other@example.com"
	if _, _, err := svc.SignupDoctor(context.Background(), second); !errors.Is(err, ErrRegNumberTaken) {
		t.Fatalf("expected ErrRegNumberTaken, got %v", err)
	}
}

func TestAdminSignupChecksKeyBeforeValidation(t *testing.T) {
	svc := newTestService(newFakeRepo())

	// Draft is invalid on every field; the key mismatch must win.
	_, _, err := svc.SignupAdmin(context.Background(), AdminSignupParams{
		AdminSecretKey: "wrong",
	})
	if !errors.Is(err, ErrInvalidAdminKey) {
		t.Fatalf("expected ErrInvalidAdminKey, got %v", err)
	}
}

func TestAdminSignupWithKey(t *testing.T) {
	svc := newTestService(newFakeRepo())

	identity, _, err := svc.SignupAdmin(context.Background(), AdminSignupParams{
		SignupParams:   validDraft(),
		AdminSecretKey: "admin-key",
	})
	if err != nil {
		t.Fatalf("admin signup: %v", err)
	}
	if identity.Role != "admin" {
		t.Fatalf("expected admin role, got %q", identity.Role)
	}
}

func TestAuthenticateUniformFailure(t *testing.T) {
	svc := newTestService(newFakeRepo())

	if _, _, err := svc.Signup(context.Background(), validDraft()); err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, _, unknownErr := svc.Authenticate(context.Background(), "missing@example.com", "whatever")
	_, _, wrongErr := svc.Authenticate(context.Background(), "nimal@example.com", "badpassword")

	if !errors.Is(unknownErr, ErrInvalidCredentials) || !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", unknownErr, wrongErr)
	}
	// Externally observable failure must be byte-identical.
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("failure messages differ: %q vs %q", unknownErr.Error(), wrongErr.Error())
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	svc := newTestService(newFakeRepo())

	if _, _, err := svc.Signup(context.Background(), validDraft()); err != nil {
		t.Fatalf("signup: %v", err)
	}
	identity, token, err := svc.Authenticate(context.Background(), "nimal@example.com", "longenough")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if token == "" || identity.Email != "nimal@example.com" {
		t.Fatalf("unexpected result: %v %q", identity, token)
	}
}

func TestSetOrganizerVerified(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	identity, _, err := svc.SignupOrganizer(context.Background(), OrganizerSignupParams{
		SignupParams: validDraft(),
		Company:      "Island Events Ltd",
	})
	if err != nil {
		t.Fatalf("organizer signup: %v", err)
	}

	updated, err := svc.SetOrganizerVerified(context.Background(), identity.ID, true)
	if err != nil {
		t.Fatalf("verify organizer: %v", err)
	}
	if !updated.Organizer.Verified {
		t.Fatal("expected organizer to be verified")
	}
}

func TestSetOrganizerVerifiedRejectsOtherRoles(t *testing.T) {
	svc := newTestService(newFakeRepo())

	identity, _, err := svc.Signup(context.Background(), validDraft())
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.SetOrganizerVerified(context.Background(), identity.ID, true); !errors.Is(err, ErrNotOrganizer) {
		t.Fatalf("expected ErrNotOrganizer, got %v", err)
	}
}

func TestCountsByRole(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	repo.byEmail["a@example.com"] = &Identity{ID: uuid.New(), Role: "user"}
	repo.byEmail["b@example.com"] = &Identity{ID: uuid.New(), Role: "user"}
	repo.byEmail["c@example.com"] = &Identity{ID: uuid.New(), Role: "organizer",
		Organizer: &OrganizerProfile{Company: "C Events", Verified: true}}
	repo.byEmail["d@example.com"] = &Identity{ID: uuid.New(), Role: "admin"}

	counts, err := svc.CountsByRole(context.Background())
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts.Users != 2 || counts.Organizers != 1 || counts.Admins != 1 {
		t.Fatalf("counts = %+v", counts)
	}
	if counts.VerifiedOrganizers != 1 {
		t.Fatalf("verified organizers = %d, want 1", counts.VerifiedOrganizers)
	}
}

func TestProjectionShapesByRole(t *testing.T) {
	identity := &Identity{
		ID:           uuid.New(),
		Name:         "Dr. Silva",
		Email:        "silva@example.com",
		Role:         "doctor",
		PasswordHash: "secret-hash",
		Doctor:       &DoctorProfile{RegNumber: "SLMC-1"},
		Organizer:    &OrganizerProfile{Company: "should-not-appear"},
	}
	p := Project(identity)
	if p.Doctor == nil || p.Doctor.RegNumber != "SLMC-1" {
		t.Fatal("expected doctor profile in projection")
	}
	if p.Organizer != nil {
		t.Fatal("organizer profile must not leak into a doctor projection")
	}
}
