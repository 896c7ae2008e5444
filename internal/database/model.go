package database

import (
	"github.com/xtesports/xtesports/internal/tournament"
	"github.com/xtesports/xtesports/internal/userauth"
)

var models = []any{
	&tournament.Tournament{},
	&tournament.Participant{},
	&tournament.Payment{},
	&tournament.Upload{},
	&tournament.Setting{},
	&userauth.User{},
}
