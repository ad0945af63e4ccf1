package users

import (
	"time"

	"github.com/google/uuid"
)

// Identity is one account. Role-specific data lives in the typed profile
// matching the role; the other profile pointers stay nil.
type Identity struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time

	Organizer *OrganizerProfile
	Doctor    *DoctorProfile
}

type OrganizerProfile struct {
	Company     string      `json:"company"`
	Description string      `json:"description,omitempty"`
	Website     string      `json:"website,omitempty"`
	Verified    bool        `json:"verified"`
	MemberSince time.Time   `json:"memberSince"`
	Social      SocialLinks `json:"social"`
}

type SocialLinks struct {
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
}

type DoctorProfile struct {
	RegNumber            string  `json:"regNumber"`
	Specialization       string  `json:"specialization,omitempty"`
	Qualification        string  `json:"qualification,omitempty"`
	Hospital             string  `json:"hospital,omitempty"`
	Verified             bool    `json:"verified"`
	VideoConsultationFee float64 `json:"videoConsultationFee,omitempty"`
	InPersonFee          float64 `json:"inPersonFee,omitempty"`
}

// Projection is the externally visible shape of an Identity. The password
// hash is structurally absent, and only the profile matching the role is
// included.
type Projection struct {
	ID        string            `json:"_id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone,omitempty"`
	Role      string            `json:"role"`
	Organizer *OrganizerProfile `json:"organizerProfile,omitempty"`
	Doctor    *DoctorProfile    `json:"doctorProfile,omitempty"`
}

// Project builds the role-shaped projection of an identity.
func Project(identity *Identity) Projection {
	p := Projection{
		ID:    identity.ID.String(),
		Name:  identity.Name,
		Email: identity.Email,
		Phone: identity.Phone,
		Role:  identity.Role,
	}
	switch identity.Role {
	case "organizer":
		p.Organizer = identity.Organizer
	case "doctor":
		p.Doctor = identity.Doctor
	}
	return p
}
