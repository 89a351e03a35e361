package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"habittracker/pkg/util"
)

// HashPasswordCmd prints a bcrypt hash for auth.password_hash.
type HashPasswordCmd struct {
	Password string `arg:"" optional:"" help:"Password to hash. Prompted for (or read from piped stdin) when omitted."`
}

func (c *HashPasswordCmd) Run(app *Context) error {
	password := c.Password
	if password == "" {
		var err error
		if password, err = readSecret(os.Stdin, os.Stderr); err != nil {
			return err
		}
	}
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(app.Out, hash)
	return nil
}

// TokenCmd signs an owner token with auth.jwt_secret, for scripts.
type TokenCmd struct {
	TTL time.Duration `help:"Token lifetime; defaults to auth.token_ttl."`
}

func (c *TokenCmd) Run(app *Context) error {
	secret := app.Config.Auth.JWTSecret
	if secret == "" {
		return fmt.Errorf("auth.jwt_secret is not configured")
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = app.Config.Auth.TokenTTL
	}

	token, err := util.GenerateJWT("owner", secret, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(app.Out, token)
	return nil
}

// readSecret prompts on a terminal without echo; piped input is read as one line.
func readSecret(f *os.File, prompt io.Writer) (string, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return readLine(f)
	}

	fmt.Fprint(prompt, "Password: ")
	pass, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(pass), "\r\n"), nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
