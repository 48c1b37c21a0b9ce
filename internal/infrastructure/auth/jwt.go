package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rentledger/backend/internal/domain/identity"
	"github.com/rentledger/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingOrgID     = errors.New("missing org_id in claims")
	ErrMissingUserID    = errors.New("missing user_id in claims")
)

// Claims represents custom JWT claims
type Claims struct {
	jwt.RegisteredClaims
	OrgID    string `json:"org_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	// TenantID pins renter-role tokens to their own tenant record
	TenantID string `json:"tenant_id,omitempty"`
	// PropertyIDs carries property-manager assignments. Empty means
	// all properties in the org for manager roles.
	PropertyIDs []string `json:"property_ids,omitempty"`
}

// JWTService handles JWT token operations
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.AccessTokenExpiration,
		issuer:     cfg.Issuer,
	}
}

// GenerateTokenInput contains input for token generation
type GenerateTokenInput struct {
	OrgID       uuid.UUID
	UserID      uuid.UUID
	Username    string
	Role        identity.Role
	TenantID    *uuid.UUID
	PropertyIDs []uuid.UUID
}

// IssuedToken is a signed token with its expiry
type IssuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenType string    `json:"token_type"` // Bearer
}

// GenerateToken signs an access token carrying the caller's identity
func (s *JWTService) GenerateToken(input GenerateTokenInput) (*IssuedToken, error) {
	now := time.Now()

	propertyIDs := make([]string, len(input.PropertyIDs))
	for i, pid := range input.PropertyIDs {
		propertyIDs[i] = pid.String()
	}

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   input.UserID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OrgID:       input.OrgID.String(),
		UserID:      input.UserID.String(),
		Username:    input.Username,
		Role:        string(input.Role),
		PropertyIDs: propertyIDs,
	}
	if input.TenantID != nil {
		claims.TenantID = input.TenantID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &IssuedToken{
		Token:     signed,
		ExpiresAt: now.Add(s.expiration),
		TokenType: "Bearer",
	}, nil
}

// ValidateToken validates a token and returns its claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if claims.OrgID == "" {
		return nil, ErrMissingOrgID
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}

	return claims, nil
}

// AccessScope resolves the claims into the scope consulted by the data
// access layers. Capabilities come from the role, never from the token
// itself, so a stale token cannot carry revoked permissions forward.
func (c *Claims) AccessScope() (identity.AccessScope, error) {
	orgID, err := uuid.Parse(c.OrgID)
	if err != nil {
		return identity.AccessScope{}, ErrInvalidClaims
	}
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return identity.AccessScope{}, ErrInvalidClaims
	}

	role := identity.Role(c.Role)
	caps := identity.CapabilitiesFor(role)
	if len(caps) == 0 {
		return identity.AccessScope{}, ErrInvalidClaims
	}

	if role == identity.RoleTenant {
		tenantID, err := uuid.Parse(c.TenantID)
		if err != nil {
			return identity.AccessScope{}, ErrInvalidClaims
		}
		return identity.NewTenantAccessScope(orgID, userID, tenantID), nil
	}

	scope := identity.NewAccessScope(orgID, userID, caps...)
	for _, pid := range c.PropertyIDs {
		propertyID, err := uuid.Parse(pid)
		if err != nil {
			return identity.AccessScope{}, ErrInvalidClaims
		}
		scope.PropertyIDs = append(scope.PropertyIDs, propertyID)
	}
	return scope, nil
}

// GetExpiresAtTime returns the token's expiration time as time.Time
func (c *Claims) GetExpiresAtTime() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}

// GetExpiration returns the configured access token lifetime
func (s *JWTService) GetExpiration() time.Duration {
	return s.expiration
}
