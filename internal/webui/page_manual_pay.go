package webui

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/xtesports/xtesports/internal/payment"
	"github.com/xtesports/xtesports/internal/tournament"
	"github.com/xtesports/xtesports/internal/util/httputil"
)

const manualPayDoneMessage = "Payment proof uploaded. Admin will verify soon."

// formFile returns the uploaded file for the field, or nil if the field is missing or empty.
func formFile(req *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	f, h, err := req.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, httputil.MakeError(http.StatusBadRequest, "bad file upload")
	}
	if h.Size == 0 || h.Filename == "" {
		_ = f.Close()
		return nil, nil, nil
	}
	return f, h, nil
}

// parseMultipart parses an upload form. Plain url-encoded forms are accepted too.
func parseMultipart(bc *builderCtx) error {
	req := bc.Req
	if err := req.ParseMultipartForm(bc.Config.opts.MaxUploadSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			if err := req.ParseForm(); err != nil {
				return httputil.MakeError(http.StatusBadRequest, "bad form data")
			}
			return nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return httputil.MakeError(http.StatusRequestEntityTooLarge, "upload is too large")
		}
		return httputil.MakeError(http.StatusBadRequest, "bad form data")
	}
	return nil
}

type manualPayDataBuilder struct{}

func (manualPayDataBuilder) Build(ctx context.Context, bc *builderCtx) (any, error) {
	req := bc.Req
	flow := bc.Config.Payments
	tid := parseID(req.PathValue("id"))
	if tid == 0 {
		return nil, tournament.ErrTournamentNotFound
	}

	switch req.Method {
	case http.MethodGet, http.MethodHead:
		return flow.ManualPayPage(ctx, tid, parseID(req.URL.Query().Get("participant")))
	case http.MethodPost:
		if err := parseMultipart(bc); err != nil {
			return nil, err
		}
		pid := req.FormValue("participant_id")
		if pid == "" {
			pid = req.FormValue("participant")
		}
		proof := payment.ManualProof{ParticipantID: parseID(pid)}
		f, h, err := formFile(req, "proof")
		if err != nil {
			return nil, err
		}
		if f != nil {
			defer f.Close()
			proof.File = &payment.ProofFile{
				Name:        h.Filename,
				ContentType: h.Header.Get("Content-Type"),
				Body:        f,
			}
		}
		if _, err := flow.SubmitManualProof(ctx, tid, proof, bc.BaseURL()); err != nil {
			return nil, err
		}
		return mainWithMessage(ctx, bc, manualPayDoneMessage)
	default:
		return nil, httputil.MakeError(http.StatusMethodNotAllowed, "method not allowed")
	}
}

func manualPayPage(log *slog.Logger, cfg *Config, templ *templator) (http.Handler, error) {
	return newPage(log, cfg, pageOptions{}, templ, manualPayDataBuilder{}, "manual_pay")
}
