package auth

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// linkAudience marks tokens that only grant read access to one stored object.
const linkAudience = "report-link"

// ActionRead is the only action a link token can grant.
const ActionRead = "read"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongObject  = errors.New("link token does not match the requested object")
)

// Claims defines what is inside the token (The "ID Card")
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// LinkClaims authorize reading a single object until they expire.
type LinkClaims struct {
	Action string `json:"act"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates both bearer tokens and download links.
type TokenManager struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

func NewTokenManager(secret string, expiration time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), expiration: expiration, now: time.Now}, nil
}

// GenerateToken creates a signed JWT for a user
func (m *TokenManager) GenerateToken(userID uint, role string) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken checks if a token is fake or expired. Link tokens are rejected.
func (m *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if slices.Contains(claims.Audience, linkAudience) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SignLink issues a token granting read access to key until expiresAt.
func (m *TokenManager) SignLink(key string, expiresAt time.Time) (string, error) {
	claims := &LinkClaims{
		Action: ActionRead,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   key,
			Audience:  jwt.ClaimStrings{linkAudience},
			IssuedAt:  jwt.NewNumericDate(m.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ValidateLink checks that tokenString grants reading key.
func (m *TokenManager) ValidateLink(tokenString, key string) error {
	claims := &LinkClaims{}
	if err := m.parse(tokenString, claims, jwt.WithAudience(linkAudience), jwt.WithExpirationRequired()); err != nil {
		return err
	}
	if claims.Action != ActionRead || claims.Subject != key {
		return ErrWrongObject
	}
	return nil
}

func (m *TokenManager) parse(tokenString string, claims jwt.Claims, opts ...jwt.ParserOption) error {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
