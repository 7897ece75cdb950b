package services

import (
	"carbon-market/internal/models"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned when login email/password do not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// NIFValidator checks a tax identification number against the external
// validation collaborator.
type NIFValidator interface {
	Validate(nif string) (bool, error)
}

// AccountService provides registration and authentication operations
type AccountService struct {
	db        *gorm.DB
	nif       NIFValidator
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAccountService creates a new account service
func NewAccountService(db *gorm.DB, nif NIFValidator, jwtSecret string) *AccountService {
	return &AccountService{
		db:        db,
		nif:       nif,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
	}
}

// Register creates a new user account. The tax ID is validated through the
// external collaborator before anything is persisted.
func (s *AccountService) Register(email, password, name, nif string) (*models.User, error) {
	if email == "" || password == "" || name == "" {
		return nil, newInvalidInput("email, password and name are required")
	}

	if s.nif != nil && nif != "" {
		valid, err := s.nif.Validate(nif)
		if err != nil {
			return nil, fmt.Errorf("%w: tax id validation: %v", ErrUpstream, err)
		}
		if !valid {
			return nil, newInvalidInput("invalid tax identification number")
		}
	}

	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, newInvalidInput("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		NIF:          nif,
		Role:         models.RoleUser,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies email and password and returns the account.
func (s *AccountService) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// IssueToken creates a signed bearer token carrying the account id and role.
func (s *AccountService) IssueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"role": string(user.Role),
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// GetUser gets a user by ID
func (s *AccountService) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
