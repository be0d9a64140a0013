package capability

import (
	"context"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kbukum/apikit/request"
	"github.com/kbukum/apikit/resource"
)

// JWTConfig describes a short-lived HS256 token minted per request.
type JWTConfig struct {
	// SecretResource names the resource holding the signing secret.
	SecretResource string `validate:"required"`
	Issuer         string
	Subject        string
	Audience       []string
	// TTL is the token lifetime. Defaults to one minute.
	TTL time.Duration
	// Claims are merged into the registered claims.
	Claims map[string]any
}

// JWT signs a token with the secret resolved from the registry and sends it
// as a bearer token.
func JWT(cfg JWTConfig, reg *resource.Registry) Capability {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Minute
	}
	return New("jwt", func(ctx context.Context, b *request.Builder) error {
		r := reg
		if r == nil {
			r = resource.Default()
		}
		secret, err := r.Resolve(ctx, cfg.SecretResource)
		if err != nil {
			return err
		}
		token, err := signJWT(cfg, []byte(secret), time.Now())
		if err != nil {
			return err
		}
		b.BearerAuth(token)
		return nil
	})
}

func signJWT(cfg JWTConfig, secret []byte, now time.Time) (string, error) {
	claims := gojwt.MapClaims{}
	for k, v := range cfg.Claims {
		claims[k] = v
	}
	claims["iat"] = gojwt.NewNumericDate(now)
	claims["exp"] = gojwt.NewNumericDate(now.Add(cfg.TTL))
	claims["jti"] = uuid.NewString()
	if cfg.Issuer != "" {
		claims["iss"] = cfg.Issuer
	}
	if cfg.Subject != "" {
		claims["sub"] = cfg.Subject
	}
	if len(cfg.Audience) > 0 {
		claims["aud"] = gojwt.ClaimStrings(cfg.Audience)
	}

	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}
