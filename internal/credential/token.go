// Package credential issues and checks every secret the API hands out:
// bcrypt password hashes, signed access tokens and one-time password reset
// tokens.
package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PurposeAccess is the purpose claim carried by access tokens.
const PurposeAccess = "access"

// resetTokenBytes is the entropy of a password reset token.
const resetTokenBytes = 32

// ErrInvalidToken is the only error ValidateAccessToken returns.  Signature,
// expiry and claim failures are deliberately indistinguishable.
var ErrInvalidToken = errors.New("invalid or expired token")

// Service holds the server secret and tuning knobs.  It is safe for
// concurrent use.
type Service struct {
	secret    []byte
	method    jwt.SigningMethod
	accessTTL time.Duration
	cost      int
	now       func() time.Time
}

// Options configures a Service.
type Options struct {
	Secret     string
	Algorithm  string        // HS256, HS384 or HS512
	AccessTTL  time.Duration // default lifetime of access tokens
	BcryptCost int
}

// New validates opts and returns a Service.
func New(opts Options) (*Service, error) {
	if opts.Secret == "" {
		return nil, errors.New("credential: empty signing secret")
	}
	m := jwt.GetSigningMethod(opts.Algorithm)
	if _, ok := m.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("credential: unsupported algorithm %q", opts.Algorithm)
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 30 * time.Minute
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = 12
	}
	return &Service{
		secret:    []byte(opts.Secret),
		method:    m,
		accessTTL: opts.AccessTTL,
		cost:      opts.BcryptCost,
		now:       time.Now,
	}, nil
}

// AccessToken is a signed access JWT and its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// accessClaims is the claim set of an access token.
type accessClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// AccessTTL returns the default access token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// IssueAccessToken signs a token for subjectID valid for ttl, or for the
// default lifetime when ttl is zero.
func (s *Service) IssueAccessToken(subjectID uint64, ttl time.Duration) (AccessToken, error) {
	if ttl <= 0 {
		ttl = s.accessTTL
	}
	now := s.now().UTC()
	exp := now.Add(ttl)
	claims := accessClaims{
		Purpose: PurposeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(subjectID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ValidateAccessToken checks signature, algorithm, expiry and purpose and
// returns the subject id.  Any failure yields ErrInvalidToken.
func (s *Service) ValidateAccessToken(raw string) (uint64, error) {
	var claims accessClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}
	if claims.Purpose != PurposeAccess {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// ResetToken is a freshly generated password reset secret.  Raw goes to the
// user; only Hash is persisted.
type ResetToken struct {
	Raw  string
	Hash string
	Exp  time.Time
}

// NewResetToken returns a URL-safe random token valid for ttl.
func (s *Service) NewResetToken(ttl time.Duration) (ResetToken, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return ResetToken{}, err
	}
	raw := base64.RawURLEncoding.EncodeToString(buf)
	return ResetToken{
		Raw:  raw,
		Hash: HashResetToken(raw),
		Exp:  s.now().UTC().Add(ttl),
	}, nil
}

// HashResetToken returns the SHA-256 hex digest under which a reset token is
// stored and looked up.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
