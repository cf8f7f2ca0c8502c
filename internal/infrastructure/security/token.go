package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sirpyerre/incident-tracker/internal/core/domain"
)

const claimUserID = "user_id"

// JWTIssuer implements ports.TokenService with HS256-signed JWTs carrying a
// user_id claim. Tokens carry no expiry and stay valid until the secret
// changes.
type JWTIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewJWTIssuer(secret string) (*JWTIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt: empty signing secret")
	}
	return &JWTIssuer{secret: []byte(secret), now: time.Now}, nil
}

func (j *JWTIssuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("jwt: empty user id")
	}
	claims := jwt.MapClaims{
		claimUserID: userID,
		"iat":       j.now().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(j.secret)
}

// Verify collapses every failure (signature, encoding, algorithm, missing
// claim) into domain.ErrInvalidToken.
func (j *JWTIssuer) Verify(token string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid {
		return "", domain.ErrInvalidToken
	}

	userID, ok := claims[claimUserID].(string)
	if !ok || userID == "" {
		return "", domain.ErrInvalidToken
	}
	return userID, nil
}
