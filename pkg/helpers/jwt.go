package helpers

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"

	"github.com/oksasatya/go-board-chat/internal/domain/entity"
)

// BearerPrefix is the scheme marker prepended to issued tokens and expected
// in the Authorization header.
const BearerPrefix = "Bearer "

// AuthorizationHeader carries the bearer token on requests and on the login response.
const AuthorizationHeader = "Authorization"

var (
	// ErrMalformedToken covers unparsable tokens, bad signatures, foreign
	// algorithms and claim mismatches.
	ErrMalformedToken = errors.New("malformed token")
	// ErrTokenExpired is returned for a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Claims are the token payload: subject is the username.
type Claims struct {
	Role entity.Role `json:"role"`
	jwt.RegisteredClaims
}

// Username returns the token subject.
func (c *Claims) Username() string { return c.Subject }

// TokenService issues and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret, issuer string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the lifetime applied to new tokens.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// CreateToken signs a token for subject and returns it with the Bearer prefix.
func (s *TokenService) CreateToken(subject string, role entity.Role) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, oops.Code("TOKEN_SUBJECT_EMPTY").Errorf("token subject cannot be empty")
	}
	if !role.Valid() {
		return "", time.Time{}, oops.Code("TOKEN_ROLE_INVALID").With("role", string(role)).Errorf("invalid role %q", role)
	}
	now := s.now()
	exp := now.Add(s.ttl)
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return BearerPrefix + signed, exp, nil
}

// ValidateToken reports whether token is well formed, correctly signed and
// unexpired. It never returns an error; malformed input is simply false.
func (s *TokenService) ValidateToken(token string) bool {
	_, err := s.ExtractClaims(token)
	return err == nil
}

// ExtractClaims verifies token and returns its claims. The Bearer prefix is optional.
func (s *TokenService) ExtractClaims(token string) (*Claims, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(token, BearerPrefix))
	if raw == "" {
		return nil, oops.Code("TOKEN_MALFORMED").With("reason", "empty").Wrap(ErrMalformedToken)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	claims := &Claims{}
	tkn, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, oops.Code("TOKEN_EXPIRED").Wrap(ErrTokenExpired)
		}
		return nil, oops.Code("TOKEN_MALFORMED").With("reason", err.Error()).Wrap(ErrMalformedToken)
	}
	if !tkn.Valid || claims.Subject == "" || !claims.Role.Valid() {
		return nil, oops.Code("TOKEN_MALFORMED").With("reason", "claims").Wrap(ErrMalformedToken)
	}
	return claims, nil
}

// BearerToken pulls the credential out of an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.Contains(token, " ") {
		return "", false
	}
	return token, true
}
