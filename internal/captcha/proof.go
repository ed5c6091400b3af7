// internal/captcha/proof.go
package captcha

import (
	"fmt"
	"strconv"
	"time"

	"captcha-rewards/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Proof is the verified content of a proof token.
type Proof struct {
	ID     string // unique per issued challenge; used for single-use enforcement
	Answer string
}

// proofClaims carries the expected answer inside the signed token.
type proofClaims struct {
	Answer string `json:"ans"`
	jwt.RegisteredClaims
}

// Prover issues and verifies stateless challenge proofs: HS256-signed tokens
// embedding the expected answer and an expiry. No server-side session state
// is needed, so any process behind the load balancer can verify a proof it
// did not issue.
type Prover struct {
	secret []byte
	ttl    time.Duration
}

// NewProver creates a Prover with the given signing secret and token lifetime.
func NewProver(secret string, ttl time.Duration) *Prover {
	return &Prover{secret: []byte(secret), ttl: ttl}
}

// Issue signs a proof for the given user and expected answer.
func (p *Prover) Issue(userID int64, answer string) (token string, proofID string, err error) {
	now := time.Now().UTC()
	proofID = uuid.NewString()
	claims := proofClaims{
		Answer: answer,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        proofID,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign proof: %w", err)
	}
	return token, proofID, nil
}

// Verify authenticates a proof token for the given user. Expired tokens,
// tampered tokens and tokens issued to a different user all fail with
// util.ErrProofInvalid; callers do not need to tell these apart.
func (p *Prover) Verify(token string, userID int64) (*Proof, error) {
	var claims proofClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, util.ErrProofInvalid
	}
	if claims.Subject != strconv.FormatInt(userID, 10) {
		return nil, util.ErrProofInvalid
	}
	if claims.ID == "" || claims.Answer == "" {
		return nil, util.ErrProofInvalid
	}
	return &Proof{ID: claims.ID, Answer: claims.Answer}, nil
}
