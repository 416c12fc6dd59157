// Command jwtctl mints and verifies JSON Web Tokens and serves a small API
// protected by the JWT middleware.
//
// Usage:
//
//	jwtctl sign [flags]
//	jwtctl verify [flags] [token]
//	jwtctl serve [flags]
//
// Keys and claims come from JWT_* environment variables, or a .env file, and
// may be overridden by flags.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	jwt "github.com/auth0/go-jwt"
)

var (
	errUsage        = errors.New("usage: jwtctl <sign|verify|serve> [flags]")
	errInvalidToken = errors.New("token is invalid")
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], nil, os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logrus.WithError(err).Fatal("jwtctl failed")
	}
}

// run executes one command. environ replaces the process environment when it
// is not nil.
func run(ctx context.Context, args []string, environ map[string]string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := loadConfig(environ)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	switch args[0] {
	case "sign":
		return runSign(cfg, args[1:], stdout)
	case "verify":
		return runVerify(ctx, cfg, args[1:], stdin, stdout, logger)
	case "serve":
		return runServe(ctx, cfg, args[1:], logger)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func newLogger(level string) (*logrus.Logger, error) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(parsed)
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger, nil
}

func runSign(cfg config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	cfg.bindFlags(fs)
	subject := fs.String("sub", "", "subject claim")
	var claims []string
	fs.Var(&listFlag{values: &claims}, "claim", "extra claim as name=value, repeatable; JSON values are decoded")
	if err := fs.Parse(args); err != nil {
		return err
	}

	signer, err := cfg.newSigner()
	if err != nil {
		return err
	}

	opts := []jwt.Option{jwt.WithGeneratedID()}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if *subject != "" {
		opts = append(opts, jwt.WithSubject(*subject))
	}
	if len(cfg.Audience) > 0 {
		opts = append(opts, jwt.WithAudience(cfg.Audience...))
	}
	if cfg.ExpiresIn > 0 {
		opts = append(opts, jwt.WithExpiresIn(cfg.ExpiresIn))
	}
	if cfg.KeyID != "" {
		opts = append(opts, jwt.WithKeyID(cfg.KeyID))
	}
	for _, claim := range claims {
		name, value, err := parseClaim(claim)
		if err != nil {
			return err
		}
		opts = append(opts, jwt.WithClaim(name, value))
	}

	token, err := jwt.Build(signer, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout, token.String())
	return err
}

// parseClaim splits name=value. A value that is valid JSON is decoded, so
// admin=true yields a boolean and admin="true" a string.
func parseClaim(claim string) (string, any, error) {
	name, raw, ok := strings.Cut(claim, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid claim %q, expected name=value", claim)
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return name, raw, nil
	}
	return name, value, nil
}

type verifyOutput struct {
	Valid  bool       `json:"valid"`
	Header jwt.Header `json:"header"`
	Claims jwt.Claims `json:"claims"`
}

func runVerify(ctx context.Context, cfg config, args []string, stdin io.Reader, stdout io.Writer, logger *logrus.Logger) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	cfg.bindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	compact := fs.Arg(0)
	if compact == "" {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read token: %w", err)
		}
		compact = strings.TrimSpace(line)
	}

	verifier, err := cfg.newVerifier(logger, nil)
	if err != nil {
		return err
	}

	token, valid, err := verifier.VerifyCompact(ctx, compact)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(verifyOutput{
		Valid:  valid,
		Header: token.Header(),
		Claims: token.Claims(),
	}); err != nil {
		return err
	}

	if !valid {
		return errInvalidToken
	}
	return nil
}
