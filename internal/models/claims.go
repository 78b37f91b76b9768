package models

import "github.com/golang-jwt/jwt/v4"

// Claims is the session token payload. Subject carries the user id.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}
