package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/eventuraa/server/internal/domain/users"
	"github.com/eventuraa/server/internal/metrics"
)

var _ users.Repository = (*UserRepository)(nil)

const userColumns = `
u.id, u.name, u.email, u.phone, u.password_hash, u.role, u.created_at,
op.company, op.description, op.website, op.verified, op.member_since,
op.facebook, op.instagram, op.twitter,
dp.reg_number, dp.specialization, dp.qualification, dp.hospital, dp.verified,
dp.video_consultation_fee, dp.in_person_fee`

const userJoins = `
  FROM users u
  LEFT JOIN organizer_profiles op ON op.user_id = u.id
  LEFT JOIN doctor_profiles dp ON dp.user_id = u.id`

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*users.Identity, error) {
	start := time.Now()
	row := r.queryer().QueryRow(ctx, "SELECT"+userColumns+userJoins+" WHERE u.email = $1", email)
	identity, err := scanIdentity(row)
	metrics.RecordQuery("find_user_by_email", start, err)
	return identity, err
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*users.Identity, error) {
	start := time.Now()
	row := r.queryer().QueryRow(ctx, "SELECT"+userColumns+userJoins+" WHERE u.id = $1", id)
	identity, err := scanIdentity(row)
	metrics.RecordQuery("find_user_by_id", start, err)
	return identity, err
}

func (r *UserRepository) FindByRegNumber(ctx context.Context, regNumber string) (*users.Identity, error) {
	start := time.Now()
	row := r.queryer().QueryRow(ctx, "SELECT"+userColumns+userJoins+" WHERE dp.reg_number = $1", regNumber)
	identity, err := scanIdentity(row)
	metrics.RecordQuery("find_user_by_reg_number", start, err)
	return identity, err
}

func (r *UserRepository) Create(ctx context.Context, identity *users.Identity) error {
	start := time.Now()

	err := inTx(ctx, r.pool, r.tx, func(q queryer) error {
		_, err := q.Exec(ctx, `
INSERT INTO users (id, name, email, phone, password_hash, role, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			identity.ID, identity.Name, identity.Email, nullableString(identity.Phone),
			identity.PasswordHash, identity.Role, identity.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return users.ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}
		return r.upsertProfiles(ctx, q, identity)
	})
	metrics.RecordQuery("create_user", start, err)
	return err
}

func (r *UserRepository) Save(ctx context.Context, identity *users.Identity) error {
	start := time.Now()

	err := inTx(ctx, r.pool, r.tx, func(q queryer) error {
		tag, err := q.Exec(ctx, `
UPDATE users SET name = $2, email = $3, phone = $4, password_hash = $5, role = $6
 WHERE id = $1`,
			identity.ID, identity.Name, identity.Email, nullableString(identity.Phone),
			identity.PasswordHash, identity.Role,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return users.ErrEmailTaken
			}
			return fmt.Errorf("save user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return users.ErrNotFound
		}
		return r.upsertProfiles(ctx, q, identity)
	})
	metrics.RecordQuery("save_user", start, err)
	return err
}

func (r *UserRepository) ListOrganizers(ctx context.Context) ([]users.Identity, error) {
	start := time.Now()
	rows, err := r.queryer().Query(ctx,
		"SELECT"+userColumns+userJoins+" WHERE u.role = 'organizer' ORDER BY u.created_at DESC")
	if err != nil {
		metrics.RecordQuery("list_organizers", start, err)
		return nil, fmt.Errorf("list organizers: %w", err)
	}
	defer rows.Close()

	var out []users.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			metrics.RecordQuery("list_organizers", start, err)
			return nil, err
		}
		out = append(out, *identity)
	}
	err = rows.Err()
	metrics.RecordQuery("list_organizers", start, err)
	if err != nil {
		return nil, fmt.Errorf("iterate organizers: %w", err)
	}
	return out, nil
}

func (r *UserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	start := time.Now()
	var n int64
	err := r.queryer().QueryRow(ctx, "SELECT count(*) FROM users WHERE role = $1", role).Scan(&n)
	metrics.RecordQuery("count_users_by_role", start, err)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *UserRepository) CountVerifiedOrganizers(ctx context.Context) (int64, error) {
	start := time.Now()
	var n int64
	err := r.queryer().QueryRow(ctx,
		"SELECT count(*) FROM organizer_profiles WHERE verified").Scan(&n)
	metrics.RecordQuery("count_verified_organizers", start, err)
	if err != nil {
		return 0, fmt.Errorf("count verified organizers: %w", err)
	}
	return n, nil
}

func (r *UserRepository) upsertProfiles(ctx context.Context, q queryer, identity *users.Identity) error {
	if identity.Organizer != nil {
		_, err := q.Exec(ctx, `
INSERT INTO organizer_profiles (user_id, company, description, website, verified, member_since, facebook, instagram, twitter)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (user_id) DO UPDATE SET
  company = EXCLUDED.company, description = EXCLUDED.description,
  website = EXCLUDED.website, verified = EXCLUDED.verified,
  facebook = EXCLUDED.facebook, instagram = EXCLUDED.instagram, twitter = EXCLUDED.twitter`,
			identity.ID, identity.Organizer.Company, nullableString(identity.Organizer.Description),
			nullableString(identity.Organizer.Website), identity.Organizer.Verified,
			identity.Organizer.MemberSince, nullableString(identity.Organizer.Social.Facebook),
			nullableString(identity.Organizer.Social.Instagram), nullableString(identity.Organizer.Social.Twitter),
		)
		if err != nil {
			return fmt.Errorf("upsert organizer profile: %w", err)
		}
	}

	if identity.Doctor != nil {
		_, err := q.Exec(ctx, `
INSERT INTO doctor_profiles (user_id, reg_number, specialization, qualification, hospital, verified, video_consultation_fee, in_person_fee)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (user_id) DO UPDATE SET
  reg_number = EXCLUDED.reg_number, specialization = EXCLUDED.specialization,
  qualification = EXCLUDED.qualification, hospital = EXCLUDED.hospital,
  verified = EXCLUDED.verified, video_consultation_fee = EXCLUDED.video_consultation_fee,
  in_person_fee = EXCLUDED.in_person_fee`,
			identity.ID, nullableString(identity.Doctor.RegNumber),
			nullableString(identity.Doctor.Specialization), nullableString(identity.Doctor.Qualification),
			nullableString(identity.Doctor.Hospital), identity.Doctor.Verified,
			identity.Doctor.VideoConsultationFee, identity.Doctor.InPersonFee,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return users.ErrRegNumberTaken
			}
			return fmt.Errorf("upsert doctor profile: %w", err)
		}
	}

	return nil
}

func (r *UserRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func scanIdentity(row pgx.Row) (*users.Identity, error) {
	var (
		identity users.Identity
		phone    *string

		company, opDescription, website   *string
		opVerified                        *bool
		memberSince                       *time.Time
		facebook, instagram, twitter      *string
		regNumber, specialization         *string
		qualification, hospital           *string
		dpVerified                        *bool
		videoConsultationFee, inPersonFee *float64
	)

	err := row.Scan(
		&identity.ID, &identity.Name, &identity.Email, &phone,
		&identity.PasswordHash, &identity.Role, &identity.CreatedAt,
		&company, &opDescription, &website, &opVerified, &memberSince,
		&facebook, &instagram, &twitter,
		&regNumber, &specialization, &qualification, &hospital, &dpVerified,
		&videoConsultationFee, &inPersonFee,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	identity.Phone = derefString(phone)

	// A non-nil verified flag marks presence of the joined profile row;
	// it is NOT NULL in the profile tables.
	if opVerified != nil {
		identity.Organizer = &users.OrganizerProfile{
			Company:     derefString(company),
			Description: derefString(opDescription),
			Website:     derefString(website),
			Verified:    *opVerified,
			Social: users.SocialLinks{
				Facebook:  derefString(facebook),
				Instagram: derefString(instagram),
				Twitter:   derefString(twitter),
			},
		}
		if memberSince != nil {
			identity.Organizer.MemberSince = *memberSince
		}
	}

	if dpVerified != nil {
		identity.Doctor = &users.DoctorProfile{
			RegNumber:      derefString(regNumber),
			Specialization: derefString(specialization),
			Qualification:  derefString(qualification),
			Hospital:       derefString(hospital),
			Verified:       *dpVerified,
		}
		if videoConsultationFee != nil {
			identity.Doctor.VideoConsultationFee = *videoConsultationFee
		}
		if inPersonFee != nil {
			identity.Doctor.InPersonFee = *inPersonFee
		}
	}

	return &identity, nil
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}
