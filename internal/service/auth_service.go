package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lingua-prep/adaptive-exam-engine/internal/config"
	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// TokenType distinguishes candidate vs proctor tokens.
type TokenType string

const (
	TokenTypeCandidate TokenType = "candidate"
	TokenTypeProctor   TokenType = "proctor"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType      TokenType  `json:"token_type"`
	CandidateID    uuid.UUID  `json:"candidate_id"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
}

// AuthService handles candidate authentication and JWT issuance. The wider
// user/organization CRUD lives in an external service; this covers only what
// the engine's endpoints need.
type AuthService struct {
	cfg        *config.Config
	candidates CandidateStore
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, candidates CandidateStore) *AuthService {
	return &AuthService{cfg: cfg, candidates: candidates}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// Login verifies candidate credentials and returns a signed JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.Candidate, error) {
	cand, err := s.candidates.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get candidate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cand.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(TokenTypeCandidate, cand.ID, cand.OrganizationID)
	if err != nil {
		return "", nil, err
	}
	return token, cand, nil
}

// GenerateProctorToken issues a token for an organization's proctor console.
// Proctor identity management is external; the engine only scopes the token.
func (s *AuthService) GenerateProctorToken(proctorID uuid.UUID, orgID *uuid.UUID) (string, error) {
	return s.generateToken(TokenTypeProctor, proctorID, orgID)
}

func (s *AuthService) generateToken(kind TokenType, subjectID uuid.UUID, orgID *uuid.UUID) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subjectID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType:      kind,
		CandidateID:    subjectID,
		OrganizationID: orgID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
