// Package token implements the capability token: a signed, expiring
// bearer credential embedding the subject's identity, admin flag and
// group memberships. Verification is a pure function of the secret key;
// the codec never consults storage, so the group claims are exactly as
// fresh as the caller made them at issuance.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/wishgifthub/wishgifthub/internal/domain"
)

// ErrInvalid covers signature mismatch, malformed structure and expiry.
// Callers must not distinguish further: all three mean re-authenticate.
var ErrInvalid = errors.New("invalid token")

type claims struct {
	IsAdmin  bool     `json:"isAdmin"`
	GroupIDs []string `json:"groupIds,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies capability tokens with a shared HS256 secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL returns the fixed expiry window applied at issuance.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue produces a signed token asserting the subject's identity, admin
// flag and group set, expiring ttl after now.
func (c *Codec) Issue(subject uuid.UUID, isAdmin bool, groupIDs []uuid.UUID, now time.Time) (string, error) {
	groups := make([]string, 0, len(groupIDs))
	for _, id := range groupIDs {
		groups = append(groups, id.String())
	}

	cl := claims{
		IsAdmin:  isAdmin,
		GroupIDs: groups,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
	if err != nil {
		return "", errors.Wrap(err, "token: signing failed")
	}
	return signed, nil
}

// Verify decodes raw into a Requester. Any failure, including expiry at
// or after the embedded deadline, yields ErrInvalid.
func (c *Codec) Verify(raw string, now time.Time) (domain.Requester, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.Requester{}, errors.Wrap(ErrInvalid, err.Error())
	}

	subject, err := uuid.Parse(cl.Subject)
	if err != nil {
		return domain.Requester{}, errors.Wrap(ErrInvalid, "malformed subject")
	}

	groups := make([]uuid.UUID, 0, len(cl.GroupIDs))
	for _, s := range cl.GroupIDs {
		id, err := uuid.Parse(s)
		if err != nil {
			return domain.Requester{}, errors.Wrap(ErrInvalid, "malformed group id")
		}
		groups = append(groups, id)
	}

	return domain.Requester{
		UserID:   subject,
		IsAdmin:  cl.IsAdmin,
		GroupIDs: domain.NewGroupSet(groups),
	}, nil
}
