// Package adminauth issues and verifies the bearer token that gates the
// admin surface. One shared admin credential, no sessions.
package adminauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
)

var ErrUnauthorized = errors.New("unauthorized")

type Authenticator struct {
	username string
	password string
	secret   []byte
}

func New(username, password, secret string) *Authenticator {
	return &Authenticator{
		username: username,
		password: password,
		secret:   []byte(secret),
	}
}

// Login exchanges credentials for the admin token. The token is stable for
// a given secret, so restarting the server does not log the admin out.
func (a *Authenticator) Login(username, password string) (string, error) {
	if a.password == "" || len(a.secret) == 0 {
		return "", ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) != 1 ||
		subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) != 1 {
		return "", ErrUnauthorized
	}
	return a.token(), nil
}

// Require checks the Authorization header of an admin request.
func (a *Authenticator) Require(r *http.Request) error {
	if a.password == "" || len(a.secret) == 0 {
		return ErrUnauthorized
	}
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.token())) != 1 {
		return ErrUnauthorized
	}
	return nil
}

func (a *Authenticator) token() string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(a.username))
	return hex.EncodeToString(mac.Sum(nil))
}
