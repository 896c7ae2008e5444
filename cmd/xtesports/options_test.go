package main

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) envLookup {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestGenerateMissing(t *testing.T) {
	var s Secrets
	changed, err := s.GenerateMissing()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, s.SessionKey, 2*secretKeyLen)
	assert.NotEqual(t, s.SessionKey, s.CSRFKey)

	old := s
	changed, err = s.GenerateMissing()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, old, s)
}

func TestApplyEnv(t *testing.T) {
	var o Options
	var s Secrets
	require.NoError(t, applyEnv(&o, &s, lookupFrom(map[string]string{
		"PORT":              "8081",
		"ADMIN_USER":        "root",
		"ADMIN_PASS":        "hunter22",
		"STRIPE_SECRET_KEY": "sk_test_1",
		"SMTP_HOST":         "smtp.example.com",
		"SMTP_PORT":         "465",
		"SMTP_SECURE":       "true",
		"SMTP_FROM":         "XT <no-reply@example.com>",
		"ADMIN_EMAIL":       "owner@example.com",
		"PUBLIC_URL":        "https://xt.example",
		"S3_BUCKET":         "uploads",
		"S3_ENDPOINT":       "https://r2.example",
	})))
	assert.Equal(t, 8081, o.Port)
	assert.Equal(t, "0.0.0.0", o.Host)
	assert.Equal(t, "root", o.Admin.Username)
	assert.Equal(t, "hunter22", s.AdminPassword)
	assert.Equal(t, "sk_test_1", s.StripeKey)
	assert.Equal(t, "smtp.example.com", o.Mail.SMTP.Host)
	assert.Equal(t, 465, o.Mail.SMTP.Port)
	assert.True(t, o.Mail.SMTP.Secure)
	assert.Equal(t, "XT <no-reply@example.com>", o.Mail.From)
	assert.Equal(t, "owner@example.com", o.Mail.AdminEmail)
	assert.Equal(t, "https://xt.example", o.WebUI.PublicURL)
	assert.Equal(t, "s3", o.Storage.Kind)
	require.NotNil(t, o.Storage.S3)
	assert.Equal(t, "uploads", o.Storage.S3.Bucket)
	assert.Equal(t, "https://r2.example", o.Storage.S3.Endpoint)

	assert.Error(t, applyEnv(&o, &s, lookupFrom(map[string]string{"PORT": "http"})))
	assert.Error(t, applyEnv(&o, &s, lookupFrom(map[string]string{"SMTP_SECURE": "maybe"})))
}

func TestMixSecrets(t *testing.T) {
	s := Secrets{StripeKey: "sk", SMTPPassword: "pw", AdminPassword: "admin-pw"}
	_, err := s.GenerateMissing()
	require.NoError(t, err)

	var o Options
	require.NoError(t, o.MixSecrets(&s))
	o.FillDefaults()
	assert.Len(t, o.WebUI.CSRFKey, secretKeyLen)
	want, err := hex.DecodeString(s.SessionKey)
	require.NoError(t, err)
	assert.Equal(t, want, o.WebUI.SessionKey)
	assert.Equal(t, "sk", o.Payment.StripeKey)
	assert.Equal(t, "pw", o.Mail.SMTP.Password)
	assert.Equal(t, "admin-pw", o.Admin.Password)
	assert.Equal(t, "127.0.0.1:3000", o.AddrWithPort())

	s.sessionSecret = "from-env"
	require.NoError(t, o.MixSecrets(&s))
	assert.Equal(t, []byte("from-env"), o.WebUI.SessionKey)

	s.CSRFKey = "zz"
	assert.Error(t, o.MixSecrets(&s))
}
