package admin

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xtesports/xtesports/internal/tournament"
)

var ErrInvalidForm = errors.New("invalid form")

// Asset is an image sent along with an admin form.
type Asset struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type TournamentForm struct {
	Name     string
	Game     string
	EntryFee string
	MaxTeams string
	Details  string
}

func parseCount(field, s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %v must be a non-negative integer", ErrInvalidForm, field)
	}
	return v, nil
}

func (f TournamentForm) toTournament() (tournament.Tournament, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: name is required", ErrInvalidForm)
	}
	fee, err := parseCount("entry fee", f.EntryFee)
	if err != nil {
		return tournament.Tournament{}, err
	}
	maxTeams, err := parseCount("max teams", f.MaxTeams)
	if err != nil {
		return tournament.Tournament{}, err
	}
	if maxTeams > int64(^uint32(0)>>1) {
		return tournament.Tournament{}, fmt.Errorf("%w: max teams is too large", ErrInvalidForm)
	}
	return tournament.Tournament{
		Name:     name,
		Game:     tournament.ParseGameKind(f.Game),
		EntryFee: fee,
		MaxTeams: int(maxTeams),
		Details:  strings.TrimSpace(f.Details),
	}, nil
}

// SettingsForm carries the site settings edited by an admin. Empty fields leave the stored
// values untouched.
type SettingsForm struct {
	UPI        string
	PaymentQR  *Asset
	SiteBanner *Asset
}
