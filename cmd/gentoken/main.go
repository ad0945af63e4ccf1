// Test program to generate JWT tokens for local development.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/eventuraa/server/internal/auth"
	"github.com/eventuraa/server/internal/config"
)

func main() {
	role := flag.String("role", "user", "role claim (user, organizer, doctor, property-owner, admin)")
	subject := flag.String("subject", "", "subject claim (defaults to a random UUID)")
	secret := flag.String("secret", "", "signing secret (defaults to JWT_SECRET env or the development fallback)")
	expiry := flag.Duration("expiry", 24*time.Hour, "token lifetime")
	flag.Parse()

	if !auth.ValidRole(*role) {
		fmt.Fprintf(os.Stderr, "Error: unknown role %q\n", *role)
		os.Exit(1)
	}

	signingSecret := *secret
	if signingSecret == "" {
		signingSecret = os.Getenv("JWT_SECRET")
	}
	if signingSecret == "" {
		signingSecret = config.DevJWTSecret
	}

	sub := *subject
	if sub == "" {
		sub = uuid.NewString()
	}

	tokens := auth.NewJWTManager(signingSecret, *expiry, "eventuraa")
	token, err := tokens.Generate(sub, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("JWT Token:")
	fmt.Println(token)
	fmt.Println("\nTest with:")
	fmt.Printf("curl -H 'Authorization: Bearer %s' http://localhost:8080/api/auth/profile\n", token)
}
