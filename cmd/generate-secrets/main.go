package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/tourdesk/backoffice-api/internal/config"
	"github.com/tourdesk/backoffice-api/internal/utils"
	"github.com/tourdesk/backoffice-api/pkg/jwt"
)

// Prints a fresh token secret, or with -user a development access token
// signed with the configured SUPABASE_JWT_SECRET.
func main() {
	userID := flag.String("user", "", "profile id to issue a development token for")
	email := flag.String("email", "dev@localhost", "email claim of the development token")
	ttl := flag.Duration("ttl", 12*time.Hour, "lifetime of the development token")
	flag.Parse()

	fmt.Println("===========================================")
	fmt.Println("Back-office secret generator")
	fmt.Println("===========================================")
	fmt.Println()

	if *userID == "" {
		secret, err := utils.GenerateSecret(32)
		if err != nil {
			log.Fatalf("Failed to generate secret: %v", err)
		}
		fmt.Println("Add this to your .env file for local development:")
		fmt.Println()
		fmt.Printf("SUPABASE_JWT_SECRET=%s\n", secret)
		fmt.Println()
		fmt.Println("Production tokens are issued by the hosted auth service; use its secret there.")
		return
	}

	id, err := uuid.Parse(*userID)
	if err != nil {
		log.Fatalf("Invalid -user: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Server.Environment == "production" {
		log.Fatal("Refusing to issue development tokens in production")
	}

	token, err := jwt.NewService(cfg.Auth.JWTSecret, cfg.Auth.Issuer).GenerateAccessToken(id, *email, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Printf("Authorization: Bearer %s\n", token)
	fmt.Println()
	fmt.Printf("Valid for %s. The profile must exist for admin-only routes.\n", ttl.String())
}
