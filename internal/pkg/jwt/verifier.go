package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const TokenTypeAccess = "access"

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims match the access tokens issued by the auth service.
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	TokenType string    `json:"token_type"`

	IssuedAt  time.Time `json:"issued_at"`
	ExpiredAt time.Time `json:"expired_at"`

	jwtlib.RegisteredClaims
}

type Verifier interface {
	Verify(tokenString string) (Claims, error)
}

// HMACVerifier checks HS256 access tokens. Tokens are issued elsewhere; this
// service only reads them.
type HMACVerifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewHMACVerifier(secret, issuer string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret), issuer: issuer, now: time.Now}
}

func (v *HMACVerifier) Verify(tokenString string) (Claims, error) {
	if len(v.secret) == 0 || tokenString == "" {
		return Claims{}, ErrTokenInvalid
	}

	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(v.issuer))
	}

	var c Claims
	tok, err := jwtlib.NewParser(opts...).ParseWithClaims(tokenString, &c, func(*jwtlib.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if tok == nil || !tok.Valid {
		return Claims{}, ErrTokenInvalid
	}

	if !c.ExpiredAt.IsZero() && v.now().UTC().After(c.ExpiredAt.UTC()) {
		return Claims{}, ErrTokenExpired
	}
	if c.TokenType != TokenTypeAccess || c.UserID == uuid.Nil {
		return Claims{}, ErrTokenInvalid
	}

	return c, nil
}
