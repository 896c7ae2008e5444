package main

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/xtesports/xtesports/internal/database"
	"github.com/xtesports/xtesports/internal/notify"
	"github.com/xtesports/xtesports/internal/payment"
	"github.com/xtesports/xtesports/internal/storage"
	"github.com/xtesports/xtesports/internal/userauth"
	"github.com/xtesports/xtesports/internal/webui"
)

type HTTPSOptions struct {
	Port                 int      `toml:"port"`
	CachePath            string   `toml:"cache-path"`
	AllowedSecureDomains []string `toml:"allowed-secure-domains"`
	ExposeInsecure       bool     `toml:"expose-insecure"`
}

func (o *HTTPSOptions) FillDefaults() {
	if o.Port == 0 {
		o.Port = 443
	}
}

type AdminOptions struct {
	// Username of the admin created or updated on startup. Nothing is done if the password is
	// not set in secrets or in the environment.
	Username string `toml:"username"`
	Password string `toml:"-"`
}

type Options struct {
	Host     string        `toml:"host"`
	Port     int           `toml:"port"`
	HTTPS    *HTTPSOptions `toml:"https"`
	LogLevel slog.Level    `toml:"log-level"`

	SessionCleanupInterval time.Duration `toml:"session-cleanup-interval"`

	DB      database.Options        `toml:"db"`
	WebUI   webui.Options           `toml:"webui"`
	Users   userauth.ManagerOptions `toml:"users"`
	Admin   AdminOptions            `toml:"admin"`
	Payment payment.Options         `toml:"payment"`
	Mail    notify.Options          `toml:"mail"`
	Storage storage.Options         `toml:"storage"`
}

func (o *Options) FillDefaults() {
	if o.Host == "" {
		o.Host = "127.0.0.1"
	}
	if o.Port == 0 {
		o.Port = 3000
	}
	if o.HTTPS != nil {
		o.HTTPS.FillDefaults()
	}
	if o.SessionCleanupInterval == 0 {
		o.SessionCleanupInterval = time.Hour
	}
	if o.Admin.Username == "" {
		o.Admin.Username = "admin"
	}
	o.DB.FillDefaults()
	o.WebUI.FillDefaults()
	o.Users.FillDefaults()
	o.Payment.FillDefaults()
	o.Mail.FillDefaults()
	o.Storage.FillDefaults()
}

func (o *Options) AddrWithPort() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

func (o *Options) SecureAddrWithPort() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.HTTPS.Port))
}

func (o *Options) MixSecrets(s *Secrets) error {
	var err error
	if o.WebUI.SessionKey, err = s.sessionKey(); err != nil {
		return fmt.Errorf("session key: %w", err)
	}
	if o.WebUI.CSRFKey, err = s.csrfKey(); err != nil {
		return fmt.Errorf("csrf key: %w", err)
	}
	o.Payment.StripeKey = s.StripeKey
	o.Mail.SMTP.Password = s.SMTPPassword
	o.Mail.ResendKey = s.ResendKey
	o.Admin.Password = s.AdminPassword
	if s.S3SecretAccessKey != "" {
		if o.Storage.S3 == nil {
			o.Storage.S3 = &storage.S3Options{}
		}
		o.Storage.S3.SecretAccessKey = s.S3SecretAccessKey
	}
	return nil
}
