package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"eventsapi/config"
	"eventsapi/internal/adapters/auth"
)

func main() {
	subject := flag.String("subject", "admin", "Subject (sub claim) for the token")
	expiry := flag.Duration("exp", 7*24*time.Hour, "Token lifetime")
	outputJSON := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.AuthJWTSecret == "" {
		fmt.Fprintln(os.Stderr, "AUTH_JWT_SECRET is not set; the API accepts writes without a token.")
		os.Exit(1)
	}
	if *expiry <= 0 {
		fmt.Fprintln(os.Stderr, "-exp must be positive")
		os.Exit(1)
	}

	token, err := auth.NewJWTIssuer(cfg.AuthJWTSecret).Issue(*subject, *expiry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		os.Exit(1)
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   int64(expiry.Seconds()),
			"subject":      *subject,
		})
		return
	}

	fmt.Println("Admin Token Generated")
	fmt.Println("=====================")
	fmt.Printf("Subject:  %s\n", *subject)
	fmt.Printf("Expires:  %s\n", time.Now().Add(*expiry).Format(time.RFC3339))
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  curl -X DELETE -H 'Authorization: Bearer %s' http://localhost:%s/events/1\n", token, cfg.Port)
}
