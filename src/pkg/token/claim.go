package token

import "github.com/golang-jwt/jwt/v5"

type Claim struct {
	Metadata Metadata `json:"metadata"`
	jwt.RegisteredClaims
}

type Metadata struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}
