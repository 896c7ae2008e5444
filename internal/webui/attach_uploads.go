package webui

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xtesports/xtesports/internal/util/httputil"
	"github.com/xtesports/xtesports/internal/util/slogx"
)

type uploadsAttach struct {
	log *slog.Logger
	cfg *Config
}

func (a *uploadsAttach) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	log := a.log.With(slog.String("rid", httputil.RequestID(ctx)))

	session, _ := a.cfg.sessionStore.Get(req, sessionName)
	id := identityFromSession(session)
	if id == nil || !id.IsAdmin {
		http.Redirect(w, req, a.cfg.prefix+"/auth/login", http.StatusSeeOther)
		return
	}

	files, err := a.cfg.Admin.ListUploads(ctx)
	if err != nil {
		log.Error("could not list uploads", slogx.Err(err))
		writeHTTPErr(log, w, fmt.Errorf("list uploads"))
		return
	}
	data, err := json.Marshal(files)
	if err != nil {
		log.Error("could not marshal uploads", slogx.Err(err))
		writeHTTPErr(log, w, fmt.Errorf("marshal uploads"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Info("could not write uploads", slogx.Err(err))
	}
}

func adminUploadsAttach(log *slog.Logger, cfg *Config) (http.Handler, error) {
	return &uploadsAttach{
		log: log.With(slog.String("attach", "uploads")),
		cfg: cfg,
	}, nil
}
