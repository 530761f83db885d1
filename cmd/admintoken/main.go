// Command admintoken prints a signed bearer token for the admin dashboard.
//
//	ADMIN_JWT_SECRET=... go run ./cmd/admintoken -subject dr.rivera -role admin -name "Dr. Rivera"
package main

import (
	"flag"
	"fmt"
	"os"

	appconfig "github.com/wolfman30/telepsych-site/internal/config"
	"github.com/wolfman30/telepsych-site/internal/identity"
)

func main() {
	subject := flag.String("subject", "admin", "token subject (staff account id)")
	role := flag.String("role", string(identity.RoleAdmin), "role claim: visitor, staff or admin")
	name := flag.String("name", "", "display name shown in the dashboard")
	flag.Parse()

	cfg := appconfig.Load()
	if cfg.AdminJWTSecret == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_JWT_SECRET environment variable not set")
		os.Exit(1)
	}

	token, err := identity.NewAuthorizer(cfg.AdminJWTSecret, cfg.AdminTokenTTL).Issue(*subject, identity.Role(*role), *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
