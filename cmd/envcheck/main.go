// envcheck verifies a deployment's environment before it goes live.
// It prints a verdict per key and exits non-zero if anything required
// is missing or malformed.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type check struct {
	key      string
	required bool
	verify   func(v string) string // empty string means ok
}

var checks = []check{
	{"DATABASE_URL", true, func(v string) string {
		if !strings.HasPrefix(v, "postgres://") && !strings.HasPrefix(v, "postgresql://") {
			return "must be a postgres:// DSN"
		}
		return ""
	}},
	{"JWT_SECRET", true, func(v string) string {
		if len(v) < 32 {
			return fmt.Sprintf("must be at least 32 characters, got %d", len(v))
		}
		return ""
	}},
	{"GOOGLE_CLIENT_ID", false, func(v string) string {
		if !strings.HasSuffix(v, ".apps.googleusercontent.com") {
			return "must end with .apps.googleusercontent.com"
		}
		return ""
	}},
	{"SITE_URL", true, func(v string) string {
		if !strings.HasPrefix(v, "https://") {
			return "must use https"
		}
		return ""
	}},
	{"SMTP_HOST", true, nil},
	{"SMTP_FROM", true, nil},
}

func main() {
	// .env fills the gaps; real environment variables win
	if err := godotenv.Load(); err == nil {
		fmt.Println("loaded .env")
	} else {
		fmt.Println("no .env file, checking the environment only")
	}

	failed := false
	for _, c := range checks {
		v := os.Getenv(c.key)
		switch {
		case v == "" && c.required:
			fmt.Printf("FAIL %-18s missing\n", c.key)
			failed = true
		case v == "":
			fmt.Printf("skip %-18s not set\n", c.key)
		case c.verify != nil:
			if msg := c.verify(v); msg != "" {
				fmt.Printf("FAIL %-18s %s\n", c.key, msg)
				failed = true
			} else {
				fmt.Printf("ok   %-18s\n", c.key)
			}
		default:
			fmt.Printf("ok   %-18s\n", c.key)
		}
	}

	if failed {
		fmt.Println("\nenvironment is not production-ready")
		os.Exit(1)
	}
	fmt.Println("\nenvironment looks good")
}
