// Command tokengen mints an access token for an employee so the attendance API
// can be exercised without an upstream identity provider.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
)

func main() {
	employeeID := flag.String("employee", "", "employee id (required)")
	name := flag.String("name", "", "employee display name")
	email := flag.String("email", "", "employee email")
	mobile := flag.String("mobile", "", "employee mobile number")
	flag.Parse()

	if *employeeID == "" {
		fmt.Fprintln(os.Stderr, "tokengen: -employee is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).GenerateAccessToken(jwt.Identity{
		EmployeeID: *employeeID,
		Name:       *name,
		Email:      *email,
		Mobile:     *mobile,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "tokengen:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
}
