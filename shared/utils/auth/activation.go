package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"orgaccount-backend/shared/database/models"
)

// ErrInvalidActivationTicket is returned when a ticket does not verify
// against the account's current state.
var ErrInvalidActivationTicket = errors.New("invalid or expired activation ticket")

// activationKey derives the per-account HMAC signing key from the server
// secret, the current password digest and the last-login timestamp. Any
// password or login change therefore invalidates outstanding tickets
// without keeping ticket state around.
func activationKey(secret string, user *models.User) []byte {
	var lastLogin int64
	if user.LastLogin != nil {
		lastLogin = user.LastLogin.Unix()
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s:%s:%d", user.ID, user.Password, lastLogin)
	return mac.Sum(nil)
}

// MakeActivationTicket issues a signed, time-limited activation ticket for
// the account's current state. The ticket is URL-safe.
func MakeActivationTicket(secret string, user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(activationKey(secret, user))
}

// VerifyActivationTicket recomputes the signing key over the account's
// current stored state and checks the ticket against it.
func VerifyActivationTicket(secret string, user *models.User, ticket string) error {
	parsed, err := jwt.ParseWithClaims(ticket, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return activationKey(secret, user), nil
	})
	if err != nil {
		return ErrInvalidActivationTicket
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject != user.ID.String() {
		return ErrInvalidActivationTicket
	}
	return nil
}
