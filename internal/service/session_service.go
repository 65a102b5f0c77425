package service

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"filedrive/internal/domain"
)

// SessionService valida los tokens de sesion emitidos por el proveedor de identidad
// y los traduce a una domain.Identity.
type SessionService struct {
	provider string
	issuer   string
	method   jwt.SigningMethod
	key      any
}

// SessionOptions admite una clave publica RSA en PEM (RS256) o un secreto HMAC (HS256).
// Si ambos estan presentes se usa la clave publica.
type SessionOptions struct {
	PublicKeyPEM string
	Secret       string
	Issuer       string
}

var (
	ErrSessionInvalid       = errors.New("session token invalid")
	ErrSessionExpired       = errors.New("session token expired")
	ErrSessionNotConfigured = errors.New("session verification not configured")
)

func NewSessionService(provider string, opts SessionOptions) (*SessionService, error) {
	svc := &SessionService{
		provider: strings.TrimSpace(provider),
		issuer:   strings.TrimSpace(opts.Issuer),
	}
	switch {
	case strings.TrimSpace(opts.PublicKeyPEM) != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(opts.PublicKeyPEM))
		if err != nil {
			return nil, err
		}
		svc.method = jwt.SigningMethodRS256
		svc.key = key
	case opts.Secret != "":
		svc.method = jwt.SigningMethodHS256
		svc.key = []byte(opts.Secret)
	}
	return svc, nil
}

// Configured indica si hay clave para validar tokens.
func (s *SessionService) Configured() bool {
	return s != nil && s.key != nil
}

// ParseSessionToken valida firma, expiracion y emisor, y devuelve la identidad del caller.
func (s *SessionService) ParseSessionToken(token string) (domain.Identity, error) {
	if !s.Configured() {
		return domain.Identity{}, ErrSessionNotConfigured
	}
	if strings.TrimSpace(token) == "" {
		return domain.Identity{}, ErrSessionInvalid
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, ErrSessionExpired
		}
		return domain.Identity{}, ErrSessionInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return domain.Identity{}, ErrSessionInvalid
	}

	return domain.Identity{
		Provider: s.provider,
		Subject:  claims.Subject,
	}, nil
}
