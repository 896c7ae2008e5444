package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xtesports/xtesports/internal/tournament"
	"github.com/xtesports/xtesports/internal/userauth"
	"github.com/xtesports/xtesports/internal/util/slogx"
	"github.com/xtesports/xtesports/internal/util/timeutil"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := New(slogx.DiscardLogger(), Options{
		Path:        filepath.Join(dir, "database.db"),
		SessionPath: filepath.Join(dir, "sessions.db"),
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func seed(t *testing.T, db *DB) (tournament.Tournament, tournament.Participant) {
	t.Helper()
	ctx := context.Background()
	tt := tournament.Tournament{Name: "Cup", Game: tournament.GameBGMI, EntryFee: 100, MaxTeams: 16}
	require.NoError(t, db.CreateTournament(ctx, &tt))
	p := tournament.Participant{
		TournamentID: tt.ID,
		TeamName:     "Alpha",
		LeaderName:   "Lead",
		LeaderPhone:  "1234567",
		LeaderEmail:  "lead@example.com",
		CreatedAt:    timeutil.NowUTC(),
	}
	require.NoError(t, db.CreateParticipant(ctx, &p))
	return tt, p
}

func strPtr(s string) *string { return &s }

func TestTournamentsAndParticipants(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	tt, p := seed(t, db)

	got, err := db.GetTournament(ctx, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cup", got.Name)
	assert.Equal(t, tournament.GameBGMI, got.Game)

	_, err = db.GetTournament(ctx, 999)
	assert.ErrorIs(t, err, tournament.ErrTournamentNotFound)

	gp, err := db.GetParticipant(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", gp.TeamName)
	assert.False(t, gp.Paid)
	assert.Nil(t, gp.CheckoutSessionID)

	_, err = db.GetParticipant(ctx, 999)
	assert.ErrorIs(t, err, tournament.ErrParticipantNotFound)

	second := tournament.Tournament{Name: "Second"}
	require.NoError(t, db.CreateTournament(ctx, &second))
	list, err := db.ListTournaments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Second", list[0].Name)

	orphan := tournament.Participant{TournamentID: 12345, TeamName: "Ghost", CreatedAt: timeutil.NowUTC()}
	assert.Error(t, db.CreateParticipant(ctx, &orphan))
}

func TestRecordHostedPaymentIdempotent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	_, p := seed(t, db)

	require.NoError(t, db.SetCheckoutSession(ctx, p.ID, "cs_1"))
	gp, err := db.GetParticipant(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, gp.CheckoutSessionID)
	assert.Equal(t, "cs_1", *gp.CheckoutSessionID)

	pay := tournament.Payment{
		ParticipantID: p.ID,
		Amount:        100,
		Currency:      "usd",
		ProviderRef:   strPtr("pi_1"),
		Status:        tournament.PaymentPaid,
		CreatedAt:     timeutil.NowUTC(),
	}
	created, err := db.RecordHostedPayment(ctx, &pay)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, pay.ID)

	again := tournament.Payment{
		ParticipantID: p.ID,
		Amount:        100,
		Currency:      "usd",
		ProviderRef:   strPtr("pi_1"),
		Status:        tournament.PaymentPaid,
		CreatedAt:     timeutil.NowUTC(),
	}
	created, err = db.RecordHostedPayment(ctx, &again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, pay.ID, again.ID)

	pays, err := db.ListPayments(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, pays, 1)

	gp, err = db.GetParticipant(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, gp.Paid)

	assert.ErrorIs(t, db.SetCheckoutSession(ctx, 999, "cs_2"), tournament.ErrParticipantNotFound)
}

func TestRecordManualPaymentWithUpload(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	_, p := seed(t, db)

	pay := tournament.Payment{
		ParticipantID: p.ID,
		Amount:        100,
		Currency:      "INR",
		Status:        tournament.PaymentPending,
		CreatedAt:     timeutil.NowUTC(),
	}
	upload := tournament.Upload{Filename: "1-proof.png", OriginalName: "proof.png", UploadedAt: timeutil.NowUTC()}
	require.NoError(t, db.RecordManualPayment(ctx, &pay, &upload))

	uploads, err := db.ListUploadRecords(ctx)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	require.NotNil(t, uploads[0].PaymentID)
	require.NotNil(t, uploads[0].ParticipantID)
	assert.Equal(t, pay.ID, *uploads[0].PaymentID)
	assert.Equal(t, p.ID, *uploads[0].ParticipantID)

	gp, err := db.GetParticipant(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, gp.Paid)
}

func TestVerifyParticipant(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	_, p := seed(t, db)

	for _, st := range []string{tournament.PaymentPending, tournament.PaymentPaid} {
		pay := tournament.Payment{ParticipantID: p.ID, Amount: 100, Currency: "INR", Status: st, CreatedAt: timeutil.NowUTC()}
		require.NoError(t, db.RecordManualPayment(ctx, &pay, nil))
	}

	for range 2 {
		require.NoError(t, db.VerifyParticipant(ctx, p.ID))
		gp, err := db.GetParticipant(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, gp.Paid)
		pays, err := db.ListPayments(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, pays, 2)
		for _, pay := range pays {
			assert.Equal(t, tournament.PaymentConfirmed, pay.Status)
		}
	}

	assert.ErrorIs(t, db.VerifyParticipant(ctx, 999), tournament.ErrParticipantNotFound)
}

func TestListParticipantsFull(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	tt, first := seed(t, db)

	second := tournament.Participant{
		TournamentID: tt.ID,
		TeamName:     "Beta",
		CreatedAt:    first.CreatedAt.Add(time.Second),
	}
	require.NoError(t, db.CreateParticipant(ctx, &second))
	pay := tournament.Payment{ParticipantID: first.ID, Amount: 100, Currency: "INR", Status: tournament.PaymentPending, CreatedAt: timeutil.NowUTC()}
	require.NoError(t, db.RecordManualPayment(ctx, &pay, nil))

	list, err := db.ListParticipantsFull(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Beta", list[0].TeamName)
	assert.Equal(t, "Alpha", list[1].TeamName)
	require.NotNil(t, list[1].Tournament)
	assert.Equal(t, "Cup", list[1].Tournament.Name)
	assert.Len(t, list[1].Payments, 1)
	assert.Empty(t, list[0].Payments)
}

func TestUpsertSettings(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	require.NoError(t, db.UpsertSettings(ctx, []tournament.Setting{{Key: tournament.SettingUPI, Value: "a@upi"}}))
	require.NoError(t, db.UpsertSettings(ctx, []tournament.Setting{
		{Key: tournament.SettingUPI, Value: "b@upi"},
		{Key: tournament.SettingPaymentQR, Value: "/uploads/images/qr.png"},
	}))
	require.NoError(t, db.UpsertSettings(ctx, nil))

	rows, err := db.ListSettings(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []tournament.Setting{
		{Key: tournament.SettingUPI, Value: "b@upi"},
		{Key: tournament.SettingPaymentQR, Value: "/uploads/images/qr.png"},
	}, rows)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	cnt, err := db.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, cnt)

	u := userauth.User{Username: "admin", PasswordHash: "x", IsAdmin: true}
	require.NoError(t, db.SaveUser(ctx, &u))
	assert.NotZero(t, u.ID)

	got, err := db.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.IsAdmin)

	_, err = db.GetUser(ctx, 999)
	assert.ErrorIs(t, err, userauth.ErrUserNotFound)

	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
	assert.Empty(t, users[0].PasswordHash)
}

func TestSessionStore(t *testing.T) {
	db := newTestDB(t)
	db.CleanupSessions()
	s := db.NewSessionStore([]byte("0123456789abcdef0123456789abcdef"))
	require.NotNil(t, s)
	db.CleanupSessions()
}
