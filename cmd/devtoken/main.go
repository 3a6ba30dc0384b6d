// Command devtoken mints an access token signed with the configured JWT
// secret, for exercising signed-in and admin routes locally.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
)

func main() {
	var (
		userID string
		email  string
		name   string
		admin  bool
		ttl    time.Duration
	)
	flag.StringVar(&userID, "user", "", "User ID (default: a new random UUID)")
	flag.StringVar(&email, "email", "dev@example.com", "Email claim")
	flag.StringVar(&name, "name", "Dev User", "Name claim")
	flag.BoolVar(&admin, "admin", false, "Grant the admin role")
	flag.DurationVar(&ttl, "ttl", 0, "Token lifetime (default: jwt.access_token_expiration)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	id := uuid.New()
	if userID != "" {
		id, err = uuid.Parse(userID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -user: %v\n", err)
			os.Exit(2)
		}
	}

	jwtCfg := cfg.JWT
	if ttl > 0 {
		jwtCfg.AccessTokenExpiration = ttl
	}

	roles := []string{auth.RoleCustomer}
	if admin {
		roles = append(roles, auth.RoleAdmin)
	}

	token, expiresAt, err := auth.NewJWTService(jwtCfg).GenerateAccessToken(auth.GenerateTokenInput{
		UserID: id,
		Email:  email,
		Name:   name,
		Roles:  roles,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "user %s, roles %v, expires %s\n", id, roles, expiresAt.Format(time.RFC3339))
	fmt.Println(token)
}
