package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinic-service/internal/domain"
)

// ErrIdentityNotFound means no record backs the subject under the requested role.
var ErrIdentityNotFound = errors.New("identity not found")

// IdentityLookup resolves a token subject against one identity store.
type IdentityLookup interface {
	Lookup(ctx context.Context, subject string) (domain.Identity, error)
}

// AdminFinder is the admin store capability the resolver needs.
type AdminFinder interface {
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
}

// DoctorFinder is the doctor store capability the resolver needs.
type DoctorFinder interface {
	GetByEmail(ctx context.Context, email string) (*domain.Doctor, error)
}

// PatientFinder is the patient store capability the resolver needs.
type PatientFinder interface {
	GetByEmail(ctx context.Context, email string) (*domain.Patient, error)
}

// AdminLookup finds administrators by username.
type AdminLookup struct{ Admins AdminFinder }

func (l AdminLookup) Lookup(ctx context.Context, subject string) (domain.Identity, error) {
	admin, err := l.Admins.GetByUsername(ctx, subject)
	if err = notFound(err, admin == nil); err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{ID: admin.ID, Subject: admin.Username, Role: domain.RoleAdmin, ObjectType: "Admin"}, nil
}

// DoctorLookup finds doctors by email.
type DoctorLookup struct{ Doctors DoctorFinder }

func (l DoctorLookup) Lookup(ctx context.Context, subject string) (domain.Identity, error) {
	doctor, err := l.Doctors.GetByEmail(ctx, subject)
	if err = notFound(err, doctor == nil); err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{ID: doctor.ID, Subject: doctor.Email, Role: domain.RoleDoctor, ObjectType: "Doctor"}, nil
}

// PatientLookup finds patients by email.
type PatientLookup struct{ Patients PatientFinder }

func (l PatientLookup) Lookup(ctx context.Context, subject string) (domain.Identity, error) {
	patient, err := l.Patients.GetByEmail(ctx, subject)
	if err = notFound(err, patient == nil); err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{ID: patient.ID, Subject: patient.Email, Role: domain.RolePatient, ObjectType: "Patient"}, nil
}

func notFound(err error, missing bool) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrIdentityNotFound
	}
	if err != nil {
		return err
	}
	if missing {
		return ErrIdentityNotFound
	}
	return nil
}

// Resolver routes a subject to the identity store selected by role.
// It holds no cache; every call hits the store.
type Resolver struct {
	lookups map[domain.Role]IdentityLookup
}

// NewResolver wires the three role stores.
func NewResolver(admins AdminFinder, doctors DoctorFinder, patients PatientFinder) *Resolver {
	return NewResolverFromLookups(map[domain.Role]IdentityLookup{
		domain.RoleAdmin:   AdminLookup{Admins: admins},
		domain.RoleDoctor:  DoctorLookup{Doctors: doctors},
		domain.RolePatient: PatientLookup{Patients: patients},
	})
}

// NewResolverFromLookups builds a resolver over an arbitrary role table.
func NewResolverFromLookups(lookups map[domain.Role]IdentityLookup) *Resolver {
	table := make(map[domain.Role]IdentityLookup, len(lookups))
	for role, lookup := range lookups {
		if lookup != nil {
			table[role] = lookup
		}
	}
	return &Resolver{lookups: table}
}

// Resolve returns the identity backing subject under role.
func (r *Resolver) Resolve(ctx context.Context, subject string, role domain.Role) (domain.Identity, error) {
	lookup, ok := r.lookups[role]
	if !ok || subject == "" {
		return domain.Identity{}, ErrIdentityNotFound
	}
	return lookup.Lookup(ctx, subject)
}
