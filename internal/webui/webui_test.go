package webui_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xtesports/xtesports/internal/admin"
	"github.com/xtesports/xtesports/internal/database"
	"github.com/xtesports/xtesports/internal/notify"
	"github.com/xtesports/xtesports/internal/payment"
	"github.com/xtesports/xtesports/internal/storage"
	"github.com/xtesports/xtesports/internal/tournament"
	"github.com/xtesports/xtesports/internal/userauth"
	"github.com/xtesports/xtesports/internal/util/slogx"
	"github.com/xtesports/xtesports/internal/webui"
)

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (n *fakeNotifier) Notify(msgs ...notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msgs...)
}

func (n *fakeNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.msgs)
}

type testEnv struct {
	srv      *httptest.Server
	db       *database.DB
	notifier *fakeNotifier
	cup      tournament.Tournament
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slogx.DiscardLogger()
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	db, err := database.New(log, database.Options{
		Path:        filepath.Join(dir, "database.db"),
		SessionPath: filepath.Join(dir, "sessions.db"),
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	uploads, err := storage.NewLocal(filepath.Join(dir, "uploads"), "/uploads/images")
	require.NoError(t, err)

	n := &fakeNotifier{}
	users := userauth.NewManager(log, db, userauth.ManagerOptions{
		Password: userauth.PasswordOptions{Cost: 4},
	})
	_, err = users.EnsureAdmin(ctx, "admin", "secret123")
	require.NoError(t, err)

	cup := tournament.Tournament{Name: "Cup", Game: tournament.GameBGMI, EntryFee: 100}
	require.NoError(t, db.CreateTournament(ctx, &cup))

	mux := http.NewServeMux()
	err = webui.Handle(ctx, log, mux, "", webui.Config{
		Registrar: tournament.NewRegistrar(log, db),
		Payments: payment.NewFlow(log, payment.Config{
			DB:         db,
			Notifier:   n,
			Uploads:    uploads,
			AdminEmail: "admin@example.com",
		}, payment.Options{}),
		Admin:               admin.NewService(log, db, uploads),
		UserManager:         users,
		SessionStoreFactory: db,
		Uploads:             uploads,
	}, webui.Options{
		SessionKey: bytes.Repeat([]byte{1}, 32),
		CSRFKey:    bytes.Repeat([]byte{2}, 32),
	})
	require.NoError(t, err)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, db: db, notifier: n, cup: cup}
}

type browser struct {
	t    *testing.T
	base string
	c    *http.Client
}

func (e *testEnv) browser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: e.srv.URL,
		c: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type response struct {
	Code     int
	Body     string
	Location string
}

func (b *browser) do(req *http.Request) response {
	b.t.Helper()
	resp, err := b.c.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return response{
		Code:     resp.StatusCode,
		Body:     string(body),
		Location: resp.Header.Get("Location"),
	}
}

func (b *browser) get(path string) response {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

var csrfRe = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// token loads the page and returns the form token embedded into it.
func (b *browser) token(path string) string {
	b.t.Helper()
	resp := b.get(path)
	require.Equal(b.t, http.StatusOK, resp.Code, resp.Body)
	m := csrfRe.FindStringSubmatch(resp.Body)
	require.NotNil(b.t, m, "no form token on %v", path)
	return m[1]
}

func (b *browser) post(from, path string, form url.Values) response {
	b.t.Helper()
	form.Set("csrf_token", b.token(from))
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) postMultipart(from, path string, fields map[string]string, fileField, fileName string, file []byte) response {
	b.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(b.t, w.WriteField("csrf_token", b.token(from)))
	for k, v := range fields {
		require.NoError(b.t, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		require.NoError(b.t, err)
		_, err = fw.Write(file)
		require.NoError(b.t, err)
	}
	require.NoError(b.t, w.Close())
	req, err := http.NewRequest(http.MethodPost, b.base+path, &body)
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.do(req)
}

func (b *browser) login(username, password string) response {
	b.t.Helper()
	return b.post("/auth/login", "/auth/login", url.Values{
		"username": {username},
		"password": {password},
	})
}

func registrationForm(payMethod string) url.Values {
	return url.Values{
		"team_name":    {"Alpha"},
		"leader_name":  {"Lead"},
		"leader_phone": {"9876543210"},
		"leader_email": {"lead@example.com"},
		"members":      {"a\nb\nc"},
		"ingame":       {"5123"},
		"pay_method":   {payMethod},
	}
}

func TestMainPage(t *testing.T) {
	e := newTestEnv(t)
	b := e.browser(t)

	resp := b.get("/")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body, "Cup")
	assert.Contains(t, resp.Body, "/tournaments/1")

	resp = b.get("/no/such/page")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body, "page not found")
}

func TestTournamentPage(t *testing.T) {
	e := newTestEnv(t)
	b := e.browser(t)

	resp := b.get("/tournaments/1")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body, "BGMI")
	assert.Contains(t, resp.Body, `name="ingame"`)

	resp = b.get("/tournaments/999")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Tournament not found", resp.Body)
}

func TestRegisterAndPayManually(t *testing.T) {
	e := newTestEnv(t)
	b := e.browser(t)
	ctx := context.Background()

	resp := b.post("/tournaments/1", "/tournaments/1/register", registrationForm("manual"))
	require.Equal(t, http.StatusSeeOther, resp.Code, resp.Body)
	assert.Equal(t, "/tournaments/1/manual-pay?participant=1", resp.Location)

	resp = b.get(resp.Location)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body, `name="participant_id" value="1"`)

	resp = b.postMultipart(
		"/tournaments/1/manual-pay?participant=1",
		"/tournaments/1/manual-pay",
		map[string]string{"participant_id": "1"},
		"proof", "Screen Shot.png", []byte("png bytes"),
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)
	assert.Contains(t, resp.Body, "Payment proof uploaded. Admin will verify soon.")

	payments, err := e.db.ListPayments(ctx, 1)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, tournament.PaymentPending, payments[0].Status)
	assert.Nil(t, payments[0].ProviderRef)
	assert.Equal(t, 2, e.notifier.Count())

	p, err := e.db.GetParticipant(ctx, 1)
	require.NoError(t, err)
	assert.False(t, p.Paid)
}

func TestManualPayFormFields(t *testing.T) {
	e := newTestEnv(t)
	b := e.browser(t)
	ctx := context.Background()

	resp := b.post("/tournaments/1", "/tournaments/1/register", registrationForm("manual"))
	require.Equal(t, http.StatusSeeOther, resp.Code, resp.Body)

	resp = b.postMultipart("/tournaments/1/manual-pay?participant=1", "/tournaments/1/manual-pay",
		nil, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Missing participant id", resp.Body)

	resp = b.postMultipart("/tournaments/1/manual-pay?participant=1", "/tournaments/1/manual-pay",
		map[string]string{"participant": "1"}, "", "", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)

	payments, err := e.db.ListPayments(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestUploadsAreNotListed(t *testing.T) {
	e := newTestEnv(t)
	b := e.browser(t)
	ctx := context.Background()

	resp := b.post("/tournaments/1", "/tournaments/1/register", registrationForm("manual"))
	require.Equal(t, http.StatusSeeOther, resp.Code, resp.Body)
	resp = b.postMultipart("/tournaments/1/manual-pay?participant=1", "/tournaments/1/manual-pay",
		map[string]string{"participant_id": "1"}, "proof", "bank receipt.png", []byte("png bytes"))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)

	uploads, err := e.db.ListUploadRecords(ctx)
	require.NoError(t, err)
	require.Len(t, uploads, 1)

	anon := e.browser(t)
	resp = anon.get("/uploads/images/")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.NotContains(t, resp.Body, uploads[0].Filename)

	resp = anon.get("/uploads/images/" + uploads[0].Filename)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "png bytes", resp.Body)
}

func TestRegisterHostedWithoutProvider(t *testing.T) {
	e := newTestEnv(t)
	b := e.browser(t)

	resp := b.post("/tournaments/1", "/tournaments/1/register", registrationForm("hosted"))
	require.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/payments/create-checkout?participant=1&tournament=1", resp.Location)

	resp = b.get(resp.Location)
	require.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/tournaments/1/manual-pay?participant=1", resp.Location)
}

func TestRegisterInvalid(t *testing.T) {
	e := newTestEnv(t)
	b := e.browser(t)

	form := registrationForm("manual")
	form.Set("leader_email", "not-an-email")
	resp := b.post("/tournaments/1", "/tournaments/1/register", form)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body, "Valid email required")
	assert.Contains(t, resp.Body, `value="Alpha"`)

	ps, err := e.db.ListParticipantsFull(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ps)
}

func TestManualPayErrors(t *testing.T) {
	e := newTestEnv(t)
	b := e.browser(t)

	resp := b.get("/tournaments/999/manual-pay?participant=1")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Tournament not found", resp.Body)

	resp = b.get("/tournaments/1/manual-pay")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = b.get("/tournaments/1/manual-pay?participant=42")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Participant not found", resp.Body)
}

func TestCheckoutPagesWithoutProvider(t *testing.T) {
	e := newTestEnv(t)
	b := e.browser(t)

	resp := b.get("/payments/create-checkout")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = b.get("/payments/success?participant=1")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = b.get("/payments/cancel?participant=1")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body, "Payment canceled.")
}

func TestPostWithoutToken(t *testing.T) {
	e := newTestEnv(t)
	b := e.browser(t)

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/tournaments/1/register",
		strings.NewReader(registrationForm("manual").Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := b.do(req)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestAdminRequiresLogin(t *testing.T) {
	e := newTestEnv(t)
	b := e.browser(t)

	for _, path := range []string{"/admin", "/admin/tournaments", "/admin/participants", "/admin/users", "/admin/uploads"} {
		resp := b.get(path)
		assert.Equal(t, http.StatusSeeOther, resp.Code, path)
		assert.Equal(t, "/auth/login", resp.Location, path)
	}
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	b := e.browser(t)

	resp := b.login("admin", "wrong-password")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body, "Invalid credentials")

	resp = b.login("admin", "secret123")
	require.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/admin", resp.Location)

	resp = b.get("/admin")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body, "Cup")

	resp = b.get("/admin/users")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body, "admin")

	resp = b.post("/admin", "/auth/logout", url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/", resp.Location)

	resp = b.get("/admin")
	assert.Equal(t, http.StatusSeeOther, resp.Code)
}

func TestAdminManagesTournaments(t *testing.T) {
	e := newTestEnv(t)
	b := e.browser(t)
	ctx := context.Background()

	require.Equal(t, http.StatusSeeOther, b.login("admin", "secret123").Code)

	resp := b.postMultipart("/admin/tournaments", "/admin/tournaments", map[string]string{
		"name":      "Free Fire Clash",
		"game":      "FF",
		"entry_fee": "50",
		"max_teams": "12",
	}, "banner", "Clash.jpg", []byte("jpeg"))
	require.Equal(t, http.StatusSeeOther, resp.Code, resp.Body)
	assert.Equal(t, "/admin/tournaments", resp.Location)

	ts, err := e.db.ListTournaments(ctx)
	require.NoError(t, err)
	require.Len(t, ts, 2)
	assert.Equal(t, "Free Fire Clash", ts[0].Name)
	assert.Equal(t, tournament.GameFF, ts[0].Game)
	require.NotNil(t, ts[0].Banner)
	assert.True(t, strings.HasPrefix(*ts[0].Banner, "/uploads/images/"))

	resp = b.get(*ts[0].Banner)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "jpeg", resp.Body)

	resp = b.postMultipart("/admin/tournaments", "/admin/tournaments", map[string]string{
		"name":      "",
		"entry_fee": "10",
	}, "", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body, `class="error"`)

	resp = b.postMultipart("/admin/tournaments", "/admin/settings", map[string]string{
		"upi": "xt@upi",
	}, "payment_qr", "qr.png", []byte("qr"))
	require.Equal(t, http.StatusSeeOther, resp.Code, resp.Body)

	resp = b.get("/tournaments/1/manual-pay?participant=1")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = b.get("/admin/uploads")
	require.Equal(t, http.StatusOK, resp.Code)
	var files []storage.File
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &files))
	assert.Len(t, files, 2)
}

func TestAdminVerifiesParticipant(t *testing.T) {
	e := newTestEnv(t)
	b := e.browser(t)
	ctx := context.Background()

	resp := b.post("/tournaments/1", "/tournaments/1/register", registrationForm("manual"))
	require.Equal(t, http.StatusSeeOther, resp.Code)
	resp = b.postMultipart(
		"/tournaments/1/manual-pay?participant=1",
		"/tournaments/1/manual-pay",
		map[string]string{"participant_id": "1"},
		"", "", nil,
	)
	require.Equal(t, http.StatusOK, resp.Code)

	require.Equal(t, http.StatusSeeOther, b.login("admin", "secret123").Code)

	resp = b.get("/admin/participants")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body, "Alpha")
	assert.Contains(t, resp.Body, "100 INR")

	resp = b.post("/admin/participants", "/admin/participants/1/verify", url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/admin/participants", resp.Location)

	p, err := e.db.GetParticipant(ctx, 1)
	require.NoError(t, err)
	assert.True(t, p.Paid)
	payments, err := e.db.ListPayments(ctx, 1)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, tournament.PaymentConfirmed, payments[0].Status)

	resp = b.post("/admin/participants", "/admin/participants/77/verify", url.Values{})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
