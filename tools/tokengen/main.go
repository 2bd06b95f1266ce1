package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/pflag"
)

// Mints operator tokens for the protected routes:
//
//	go run ./tools/tokengen --user ops-1 --role operator --ttl 12h
func main() {
	user := pflag.String("user", "operator", "user_id claim")
	role := pflag.String("role", "operator", "role claim (operator or admin)")
	ttl := pflag.Duration("ttl", 24*time.Hour, "token lifetime")
	secret := pflag.String("secret", "", "HS256 secret (defaults to OPERATOR_JWT_SECRET)")
	pflag.Parse()

	key := strings.TrimSpace(*secret)
	if key == "" {
		key = strings.TrimSpace(os.Getenv("OPERATOR_JWT_SECRET"))
	}
	if key == "" {
		log.Fatalf("no secret: pass --secret or set OPERATOR_JWT_SECRET")
	}

	token, err := mint([]byte(key), *user, *role, *ttl, time.Now())
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}
	fmt.Println(token)
}

func mint(secret []byte, user, role string, ttl time.Duration, now time.Time) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive, got %s", ttl)
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user,
		"role":    strings.ToLower(strings.TrimSpace(role)),
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	})
	return tok.SignedString(secret)
}
