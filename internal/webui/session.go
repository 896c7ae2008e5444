package webui

import (
	"encoding/gob"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/xtesports/xtesports/internal/userauth"
)

const (
	sessionName     = "xtesports_session"
	sessionIdentity = "identity"
)

type SessionOptions struct {
	MaxAge time.Duration `toml:"max-age"`
	Secure bool          `toml:"secure"`
	Domain string        `toml:"domain"`
}

func (o *SessionOptions) FillDefaults() {
	if o.MaxAge == 0 {
		o.MaxAge = 7 * 24 * time.Hour
	}
}

func (o *SessionOptions) SetupSession(s *sessions.Options) {
	s.Path = "/"
	s.Domain = o.Domain
	s.MaxAge = int(o.MaxAge.Seconds())
	s.Secure = o.Secure
	s.HttpOnly = true
	s.SameSite = http.SameSiteLaxMode
}

func identityFromSession(s *sessions.Session) *userauth.Identity {
	if s == nil {
		return nil
	}
	raw, ok := s.Values[sessionIdentity]
	if !ok {
		return nil
	}
	id, ok := raw.(userauth.Identity)
	if !ok {
		return nil
	}
	return &id
}

func init() {
	gob.Register(userauth.Identity{})
}
