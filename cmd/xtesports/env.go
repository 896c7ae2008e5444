package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/xtesports/xtesports/internal/storage"
)

// loadDotEnv reads .env into the process environment. Variables that are already set win.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

type envLookup func(key string) (string, bool)

// applyEnv overrides options and secrets with the environment of a typical hosting platform.
func applyEnv(o *Options, s *Secrets, lookup envLookup) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("bad PORT %q", v)
		}
		o.Port = port
		o.Host = "0.0.0.0"
	}
	str("ADMIN_USER", &o.Admin.Username)
	str("ADMIN_PASS", &s.AdminPassword)
	str("SESSION_SECRET", &s.sessionSecret)
	str("STRIPE_SECRET_KEY", &s.StripeKey)
	str("PUBLIC_URL", &o.WebUI.PublicURL)

	str("SMTP_HOST", &o.Mail.SMTP.Host)
	if v, ok := lookup("SMTP_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("bad SMTP_PORT %q", v)
		}
		o.Mail.SMTP.Port = port
	}
	if v, ok := lookup("SMTP_SECURE"); ok && v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("bad SMTP_SECURE %q", v)
		}
		o.Mail.SMTP.Secure = secure
	}
	str("SMTP_USER", &o.Mail.SMTP.Username)
	str("SMTP_PASS", &s.SMTPPassword)
	str("SMTP_FROM", &o.Mail.From)
	str("ADMIN_EMAIL", &o.Mail.AdminEmail)
	str("RESEND_KEY", &s.ResendKey)

	if v, ok := lookup("S3_BUCKET"); ok && v != "" {
		o.Storage.Kind = "s3"
		if o.Storage.S3 == nil {
			o.Storage.S3 = &storage.S3Options{}
		}
		o.Storage.S3.Bucket = v
	}
	if o.Storage.S3 != nil {
		str("S3_REGION", &o.Storage.S3.Region)
		str("S3_ENDPOINT", &o.Storage.S3.Endpoint)
		str("S3_PUBLIC_URL", &o.Storage.S3.PublicURL)
		str("S3_ACCESS_KEY_ID", &o.Storage.S3.AccessKeyID)
	}
	str("S3_SECRET_ACCESS_KEY", &s.S3SecretAccessKey)
	return nil
}

func osLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}
