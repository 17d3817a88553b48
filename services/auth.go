package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"campus-canteen-api/apperror"
	"campus-canteen-api/metrics"
	"campus-canteen-api/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultStaffPassword is stored for staff and owner identities provisioned without a password
const DefaultStaffPassword = "123456"

type AuthOptions struct {
	Passkey           string
	InstitutionDomain string
	// BcryptCost defaults to bcrypt.DefaultCost when zero
	BcryptCost int
}

// AuthService owns identity records: patron signup and login, and passkey-gated
// staff/owner login with first-login provisioning.
type AuthService struct {
	db      *gorm.DB
	opts    AuthOptions
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

func NewAuthService(db *gorm.DB, opts AuthOptions, log logrus.FieldLogger, m *metrics.Metrics) *AuthService {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{db: db, opts: opts, log: log, metrics: m}
}

// RegisterPatron creates a patron identity for an institutional email address
func (s *AuthService) RegisterPatron(ctx context.Context, name, email, password string) (*models.User, error) {
	if !strings.HasSuffix(email, "@"+s.opts.InstitutionDomain) {
		s.metrics.Login(string(models.RolePatron), "domain_rejected")
		return nil, apperror.New(apperror.KindDomainRejected, "Only @"+s.opts.InstitutionDomain+" emails allowed")
	}

	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RolePatron,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		s.log.WithError(err).WithField("email", email).Warn("patron signup failed")
		s.metrics.Login(string(models.RolePatron), "signup_failed")
		return nil, apperror.Wrap(apperror.KindSignupFailed, "Signup failed", err)
	}
	s.metrics.Login(string(models.RolePatron), "signup")
	return &user, nil
}

// AuthenticatePatron checks a patron's email and password
func (s *AuthService) AuthenticatePatron(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.findByEmailRole(ctx, email, models.RolePatron)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			s.metrics.Login(string(models.RolePatron), "invalid_credentials")
			return nil, apperror.New(apperror.KindInvalidCredentials, "Invalid credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.metrics.Login(string(models.RolePatron), "invalid_credentials")
		return nil, apperror.New(apperror.KindInvalidCredentials, "Invalid credentials")
	}
	s.metrics.Login(string(models.RolePatron), "success")
	return user, nil
}

// AuthenticateOrProvisionStaff admits any caller holding the shared passkey as the requested
// operator role. The first login for an (email, role) pair creates the identity; later logins
// do not check the password.
func (s *AuthService) AuthenticateOrProvisionStaff(ctx context.Context, email, password, passkey string, role models.Role) (*models.User, error) {
	if subtle.ConstantTimeCompare([]byte(passkey), []byte(s.opts.Passkey)) != 1 {
		s.metrics.Login(string(role), "forbidden")
		return nil, apperror.New(apperror.KindForbidden, "Invalid staff passkey")
	}
	if !role.IsOperator() {
		return nil, apperror.Validation("Role must be staff or owner")
	}

	user, err := s.findByEmailRole(ctx, email, role)
	if err == nil {
		s.metrics.Login(string(role), "success")
		return user, nil
	}
	if !apperror.Is(err, apperror.KindNotFound) {
		return nil, err
	}

	if password == "" {
		password = DefaultStaffPassword
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	candidate := models.User{
		Name:         strings.ToUpper(string(role)),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	// Concurrent first logins race here; the unique (email, role) index lets exactly one insert win.
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&candidate)
	if res.Error != nil {
		s.log.WithError(res.Error).WithField("email", email).Error("provisioning failed")
		return nil, apperror.Store("Login failed", res.Error)
	}
	if res.RowsAffected == 1 {
		s.metrics.Provisioned(string(role))
		s.log.WithFields(logrus.Fields{"email": email, "role": role}).Info("provisioned operator identity")
	}

	user, err = s.findByEmailRole(ctx, email, role)
	if err != nil {
		return nil, err
	}
	s.metrics.Login(string(role), "success")
	return user, nil
}

// GetUser loads an identity by id
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Store("Failed to load user", err)
	}
	return &user, nil
}

func (s *AuthService) findByEmailRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ? AND role = ?", email, role).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Store("Failed to load user", err)
	}
	return &user, nil
}

func (s *AuthService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperror.Validation("Password too long")
	}
	if err != nil {
		return "", apperror.Store("Failed to hash password", err)
	}
	return string(h), nil
}
