package main

import (
	"flag"
	"fmt"
	"io"

	"booking-users/internal/core/auth"
	"booking-users/internal/core/config"
)

// token 签发 admin token，供运维调用 /admin/v1
func token(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(out)
	sub := fs.String("sub", "ops", "token subject (operator id)")
	ttl := fs.Duration("ttl", 0, "token lifetime, defaults to jwt.accessTokenTTLMin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	j, err := jwterFrom(cfg)
	if err != nil {
		return fmt.Errorf("jwt config: %w", err)
	}
	if *ttl > 0 {
		j.TTL = *ttl
	}
	tok, err := j.Issue(*sub, auth.RoleAdmin)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	_, err = fmt.Fprintln(out, tok)
	return err
}
