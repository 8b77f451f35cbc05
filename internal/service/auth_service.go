package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinic-service/internal/auth"
	"github.com/spec-kit/clinic-service/internal/domain"
)

// LoginResult is returned to a caller that presented valid credentials.
type LoginResult struct {
	Identity  domain.Identity
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates login flows for the three roles.
type AuthService struct {
	admins   auth.AdminFinder
	doctors  auth.DoctorFinder
	patients auth.PatientFinder
	tokens   *auth.TokenManager
	throttle *auth.LoginThrottle
	writer   AdminWriter
	cost     int
}

// AdminWriter stores new administrators.
type AdminWriter interface {
	Create(ctx context.Context, admin *domain.Admin) error
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	Admins   auth.AdminFinder
	Doctors  auth.DoctorFinder
	Patients auth.PatientFinder
	Tokens   *auth.TokenManager
	Throttle *auth.LoginThrottle
	// AdminWriter and BcryptCost are only needed by EnsureAdmin.
	AdminWriter AdminWriter
	BcryptCost  int
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		admins:   deps.Admins,
		doctors:  deps.Doctors,
		patients: deps.Patients,
		tokens:   deps.Tokens,
		throttle: deps.Throttle,
		writer:   deps.AdminWriter,
		cost:     deps.BcryptCost,
	}
}

// EnsureAdmin creates the administrator if the username is free.
// It reports whether a record was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || s.writer == nil {
		return false, nil
	}
	existing, err := s.admins.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	hashed, err := auth.HashPassword(password, s.cost)
	if err != nil {
		return false, err
	}
	if err := s.writer.Create(ctx, &domain.Admin{Username: username, PasswordHash: hashed}); err != nil {
		return false, err
	}
	return true, nil
}

type credential struct {
	identity domain.Identity
	hash     string
	claims   []auth.IssueOption
}

// LoginAdmin authenticates an administrator by username.
func (s *AuthService) LoginAdmin(ctx context.Context, username, password string) (*LoginResult, error) {
	return s.login(ctx, domain.RoleAdmin, username, password, func(ctx context.Context, username string) (*credential, error) {
		admin, err := s.admins.GetByUsername(ctx, username)
		if err != nil || admin == nil {
			return nil, err
		}
		return &credential{
			identity: domain.Identity{ID: admin.ID, Subject: admin.Username, Role: domain.RoleAdmin, ObjectType: "Admin"},
			hash:     admin.PasswordHash,
			claims:   []auth.IssueOption{auth.WithObjectType("Admin")},
		}, nil
	})
}

// LoginDoctor authenticates a doctor and embeds the doctor id in the token.
func (s *AuthService) LoginDoctor(ctx context.Context, email, password string) (*LoginResult, error) {
	return s.login(ctx, domain.RoleDoctor, email, password, func(ctx context.Context, email string) (*credential, error) {
		doctor, err := s.doctors.GetByEmail(ctx, email)
		if err != nil || doctor == nil {
			return nil, err
		}
		return &credential{
			identity: domain.Identity{ID: doctor.ID, Subject: doctor.Email, Role: domain.RoleDoctor, ObjectType: "Doctor"},
			hash:     doctor.PasswordHash,
			claims:   []auth.IssueOption{auth.WithEntity("Doctor", doctor.ID)},
		}, nil
	})
}

// LoginPatient authenticates a patient by email.
func (s *AuthService) LoginPatient(ctx context.Context, email, password string) (*LoginResult, error) {
	return s.login(ctx, domain.RolePatient, email, password, func(ctx context.Context, email string) (*credential, error) {
		patient, err := s.patients.GetByEmail(ctx, email)
		if err != nil || patient == nil {
			return nil, err
		}
		return &credential{
			identity: domain.Identity{ID: patient.ID, Subject: patient.Email, Role: domain.RolePatient, ObjectType: "Patient"},
			hash:     patient.PasswordHash,
			claims:   []auth.IssueOption{auth.WithEntity("Patient", patient.ID)},
		}, nil
	})
}

func (s *AuthService) login(
	ctx context.Context,
	role domain.Role,
	identifier, password string,
	find func(context.Context, string) (*credential, error),
) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if !s.throttle.Acquire(ctx, role, identifier) {
		return nil, ErrTooManyAttempts
	}

	cred, err := find(ctx, identifier)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if cred == nil || auth.ComparePassword(cred.hash, password) != nil {
		return nil, ErrInvalidCredentials
	}
	s.throttle.Reset(ctx, role, identifier)

	opts := append([]auth.IssueOption{auth.WithRole(role)}, cred.claims...)
	token, exp, err := s.tokens.Issue(cred.identity.Subject, opts...)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Identity: cred.identity, Token: token, ExpiresAt: exp}, nil
}
