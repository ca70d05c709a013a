package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims identify an anonymous browsing session.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}
