package tournament

import (
	"strings"

	"github.com/xtesports/xtesports/internal/util/timeutil"
)

type GameKind string

const (
	GameBGMI  GameKind = "BGMI"
	GameFF    GameKind = "FF"
	GameOther GameKind = "other"
)

// FormName selects the registration form. Everything that is not BGMI gets the Free Fire one.
func (k GameKind) FormName() string {
	if k == GameBGMI {
		return "register_bgmi"
	}
	return "register_ff"
}

func (k GameKind) PrettyString() string {
	switch k {
	case GameBGMI:
		return "BGMI"
	case GameFF:
		return "Free Fire"
	default:
		if k == "" {
			return "?"
		}
		return string(k)
	}
}

func ParseGameKind(s string) GameKind {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BGMI":
		return GameBGMI
	case "FF":
		return GameFF
	case "":
		return GameOther
	default:
		return GameKind(strings.TrimSpace(s))
	}
}

type Tournament struct {
	ID       uint `gorm:"primaryKey"`
	Name     string
	Game     GameKind
	EntryFee int64
	MaxTeams int
	Details  string
	Banner   *string
}

// Column names follow the layout of the database the site started with, so that an existing
// data file can be opened as-is.
type Participant struct {
	ID                uint        `gorm:"primaryKey"`
	TournamentID      uint        `gorm:"index;not null"`
	Tournament        *Tournament `gorm:"foreignKey:TournamentID"`
	TeamName          string
	LeaderName        string
	LeaderPhone       string
	LeaderEmail       string
	Members           string
	InGame            string           `gorm:"column:ingame"`
	Paid              bool             `gorm:"not null;default:false"`
	CheckoutSessionID *string          `gorm:"column:stripe_session_id"`
	CreatedAt         timeutil.UTCTime `gorm:"index"`
	Payments          []Payment        `gorm:"foreignKey:ParticipantID"`
}

const (
	PaymentPending   = "pending"
	PaymentConfirmed = "confirmed"
	PaymentPaid      = "paid"
)

// Payment belongs to a participant. ProviderRef is unset for manual payments.
type Payment struct {
	ID            uint `gorm:"primaryKey"`
	ParticipantID uint `gorm:"index;not null"`
	Amount        int64
	Currency      string
	ProviderRef   *string `gorm:"column:stripe_id;uniqueIndex"`
	Status        string
	CreatedAt     timeutil.UTCTime
}

type Upload struct {
	ID            uint `gorm:"primaryKey"`
	Filename      string
	OriginalName  string
	ParticipantID *uint `gorm:"index"`
	PaymentID     *uint `gorm:"index"`
	UploadedAt    timeutil.UTCTime
}

const (
	SettingUPI        = "upi"
	SettingPaymentQR  = "payment_qr"
	SettingSiteBanner = "site_banner"
)

type Setting struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// Settings is the typed view of the well-known setting keys. Missing keys stay empty.
type Settings struct {
	UPI        string
	PaymentQR  string
	SiteBanner string
}

func SettingsFromRows(rows []Setting) Settings {
	var s Settings
	for _, r := range rows {
		switch r.Key {
		case SettingUPI:
			s.UPI = r.Value
		case SettingPaymentQR:
			s.PaymentQR = r.Value
		case SettingSiteBanner:
			s.SiteBanner = r.Value
		}
	}
	return s
}
