package auth

import (
	"context"
	"errors"
	"time"

	"backend-pathtracker/internal/db"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenTTL = 12 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrNoRegistry         = errors.New("tracker registry unavailable")
)

type Service struct {
	secret []byte
	db     db.Querier
}

type Claims struct {
	TrackerID string `json:"tracker_id"`
	jwt.RegisteredClaims
}

func NewService(secret string, db db.Querier) *Service {
	return &Service{
		secret: []byte(secret),
		db:     db,
	}
}

var hashPasswordFn = bcrypt.GenerateFromPassword

func (s *Service) Register(ctx context.Context, req Credentials) (Tracker, TokenResponse, error) {
	if req.Name == "" || req.Password == "" {
		return Tracker{}, TokenResponse{}, errors.New("name and password required")
	}
	if s.db == nil {
		return Tracker{}, TokenResponse{}, ErrNoRegistry
	}
	hash, err := hashPasswordFn([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Tracker{}, TokenResponse{}, err
	}

	tracker := Tracker{
		ID:           uuid.NewString(),
		Name:         req.Name,
		PasswordHash: string(hash),
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO trackers (id, name, password_hash)
		VALUES ($1,$2,$3)
		RETURNING created_at
	`, tracker.ID, tracker.Name, tracker.PasswordHash)
	if err := row.Scan(&tracker.CreatedAt); err != nil {
		return Tracker{}, TokenResponse{}, err
	}

	tokens, err := s.IssueToken(tracker.ID)
	if err != nil {
		return Tracker{}, TokenResponse{}, err
	}
	return tracker, tokens, nil
}

func (s *Service) Login(ctx context.Context, req Credentials) (Tracker, TokenResponse, error) {
	if s.db == nil {
		return Tracker{}, TokenResponse{}, ErrNoRegistry
	}
	var tracker Tracker
	row := s.db.QueryRow(ctx, `
		SELECT id, name, password_hash, created_at
		FROM trackers WHERE name = $1
	`, req.Name)
	if err := row.Scan(&tracker.ID, &tracker.Name, &tracker.PasswordHash, &tracker.CreatedAt); err != nil {
		return Tracker{}, TokenResponse{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(tracker.PasswordHash), []byte(req.Password)); err != nil {
		return Tracker{}, TokenResponse{}, ErrInvalidCredentials
	}

	tokens, err := s.IssueToken(tracker.ID)
	if err != nil {
		return Tracker{}, TokenResponse{}, err
	}
	return tracker, tokens, nil
}

// IssueToken signs an access token for trackerID.
func (s *Service) IssueToken(trackerID string) (TokenResponse, error) {
	token, err := signToken(s.secret, trackerID, accessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(accessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) ValidateAccessToken(token string) (string, error) {
	claims, err := parseToken(s.secret, token)
	if err != nil {
		return "", err
	}
	return claims.TrackerID, nil
}

var signingMethod jwt.SigningMethod = jwt.SigningMethodHS256

func signToken(secret []byte, trackerID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TrackerID: trackerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(signingMethod, claims).SignedString(secret)
}

func parseToken(secret []byte, token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.TrackerID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
