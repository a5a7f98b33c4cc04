package validators

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/quarrydb/quarry/internal/authn"
)

// BearerTokenName identifies the bearer-token validator in configuration.
const BearerTokenName = "bearer-token"

// bearerConfig is the typed shape of the bearer-token realm properties.
type bearerConfig struct {
	// Secret is the HMAC key verifying token signatures. An empty secret
	// leaves the realm configured but denying every attempt, the fail-safe
	// default until an operator supplies a key.
	Secret string `mapstructure:"secret"`

	Issuer    string `mapstructure:"issuer"`
	Audience  string `mapstructure:"audience"`
	CacheSize int    `mapstructure:"cacheSize"`
}

// BearerToken validates a JWT presented as the attempt's password: HMAC
// signature, expiry, optional issuer/audience, and that the token subject
// matches the claimed user name. Verified claims are stored in the attempt's
// nested-identity slot for downstream role mappers.
//
// Verified tokens are cached in a bounded LRU keyed by token digest, so a
// client reusing one token across rapid connections skips re-verification.
type BearerToken struct {
	cfg   bearerConfig
	cache *lru.Cache[string, jwt.MapClaims]
}

// Configure applies the realm properties.
func (v *BearerToken) Configure(props *authn.ConfigProperties) error {
	cfg := bearerConfig{CacheSize: 128}
	if err := props.Decode(&cfg); err != nil {
		return fmt.Errorf("decode bearer-token properties: %w", err)
	}
	cache, err := lru.New[string, jwt.MapClaims](cfg.CacheSize)
	if err != nil {
		return fmt.Errorf("token cache: %w", err)
	}
	v.cfg = cfg
	v.cache = cache
	return nil
}

// ValidateCredentials verifies the presented token.
func (v *BearerToken) ValidateCredentials(_ context.Context, info *authn.Info) (bool, error) {
	if v.cfg.Secret == "" {
		return false, fmt.Errorf("bearer-token realm has no verification secret")
	}
	raw := info.Password()
	if raw == "" {
		return false, nil
	}

	digest := sha256.Sum256([]byte(raw))
	key := hex.EncodeToString(digest[:])
	if claims, ok := v.cache.Get(key); ok && claimsFresh(claims) {
		if !v.subjectMatches(claims, info.UserName()) {
			return false, nil
		}
		info.SetNestedIdentity(claims)
		return true, nil
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}
	if v.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience))
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(v.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return false, err
	}
	if !v.subjectMatches(claims, info.UserName()) {
		return false, nil
	}

	v.cache.Add(key, claims)
	info.SetNestedIdentity(claims)
	return true, nil
}

// subjectMatches requires the token subject to equal the claimed user name,
// case-insensitively to match the case-normalized catalog identifier.
func (v *BearerToken) subjectMatches(claims jwt.MapClaims, userName string) bool {
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return false
	}
	return strings.EqualFold(subject, userName)
}

// claimsFresh re-checks expiry for cache hits; the cache may outlive the
// token.
func claimsFresh(claims jwt.MapClaims) bool {
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.After(time.Now())
}
