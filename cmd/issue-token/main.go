// Command issue-token prints a signed access token for a user. It exists for
// local development and smoke tests; production tokens come from the
// identity provider that shares the signing secret.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/heartmarshall/learnsync/internal/app"
	"github.com/heartmarshall/learnsync/internal/auth"
	"github.com/heartmarshall/learnsync/internal/config"
)

func main() {
	userFlag := flag.String("user", "", "user id (random when empty)")
	device := flag.String("device", "", "device name embedded in the token")
	ttl := flag.Duration("ttl", 0, "token lifetime (config default when zero)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log, os.Stderr)

	userID := uuid.New()
	if *userFlag != "" {
		if userID, err = uuid.Parse(*userFlag); err != nil {
			log.Fatalf("invalid -user: %v", err)
		}
	}

	manager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL, nil)
	token, err := manager.GenerateAccessToken(userID, *device, *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	logger.Debug("token issued", "user_id", userID.String())
	fmt.Println(token)
}
