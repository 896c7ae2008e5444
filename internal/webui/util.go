package webui

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/xtesports/xtesports/internal/admin"
	"github.com/xtesports/xtesports/internal/payment"
	"github.com/xtesports/xtesports/internal/tournament"
	"github.com/xtesports/xtesports/internal/util/httputil"
	"github.com/xtesports/xtesports/internal/util/slogx"
)

func writeHTTPErr(log *slog.Logger, w http.ResponseWriter, err error) {
	if err = httputil.WriteErrorResponse(err, w); err != nil {
		log.Info("error writing error response", slogx.Err(err))
	}
}

// plainError converts domain errors into short plain-text responses. It returns nil for errors
// that are not meant to be shown.
func plainError(log *slog.Logger, err error) error {
	switch {
	case errors.Is(err, tournament.ErrTournamentNotFound):
		return httputil.MakeError(http.StatusNotFound, "Tournament not found")
	case errors.Is(err, tournament.ErrParticipantNotFound):
		return httputil.MakeError(http.StatusNotFound, "Participant not found")
	case errors.Is(err, payment.ErrBadRequest):
		return httputil.MakeError(http.StatusBadRequest, err.Error())
	case errors.Is(err, admin.ErrInvalidForm):
		return httputil.MakeError(http.StatusBadRequest, err.Error())
	case errors.Is(err, payment.ErrPayment):
		log.Error("payment provider failed", slogx.Err(err))
		return httputil.MakeError(http.StatusInternalServerError, "Error processing payment")
	default:
		return nil
	}
}

// parseID parses a positive decimal id. Empty and malformed values give zero.
func parseID(s string) uint {
	v, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return 0
	}
	return uint(v)
}

func pathID(req *http.Request) (uint, error) {
	id := parseID(req.PathValue("id"))
	if id == 0 {
		return 0, httputil.MakeError(http.StatusNotFound, "page not found")
	}
	return id, nil
}

func isInvalidForm(err error) bool {
	return errors.Is(err, admin.ErrInvalidForm)
}
