package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/repository"
	"github.com/havenwelfare/haven-backend/internal/worker"
)

func strPtr(s string) *string { return &s }

type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func TestComposer_FormatAmount(t *testing.T) {
	c := NewComposer("http://localhost:3000")
	assert.Equal(t, "$1,234.50", c.FormatAmount(1234.5))
	assert.Equal(t, "$50.00", c.FormatAmount(50))
}

func TestComposer_PasswordResetLink(t *testing.T) {
	c := NewComposer("https://haven.example/")
	msg, err := c.PasswordReset("a@x", "Ana", "tok-123")
	require.NoError(t, err)

	assert.Equal(t, "Password Reset Request - HavenWelfare", msg.Subject)
	assert.Contains(t, msg.HTML, `href="https://haven.example/reset-password?token=tok-123"`)
	assert.Contains(t, msg.HTML, "<h1>Password Reset</h1>")
}

func TestComposer_UserStatusSkipsActive(t *testing.T) {
	c := NewComposer("http://localhost:3000")

	_, ok, err := c.UserStatus("a@x", "Ana", models.RoleDoctor, models.UserActive)
	require.NoError(t, err)
	assert.False(t, ok)

	msg, ok, err := c.UserStatus("a@x", "Ana", models.RoleDoctor, models.UserApproved)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, msg.HTML, "doctor account has been approved")
}

func TestComposer_DonationRejectedIncludesRemarks(t *testing.T) {
	c := NewComposer("http://localhost:3000")

	msg, err := c.DonationStatus("d@x", "", "Pat", 1500, models.DonationRejected, "transaction id not found")
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "$1,500.00")
	assert.Contains(t, msg.HTML, "Admin remarks: transaction id not found")
	assert.Contains(t, msg.HTML, "Hello Donor")
}

func TestComposer_DropsRawHTML(t *testing.T) {
	c := NewComposer("http://localhost:3000")
	msg, err := c.PasswordReset("a@x", "<script>alert(1)</script>", "t")
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestComposer_UserValuesCannotInjectLinks(t *testing.T) {
	c := NewComposer("http://localhost:3000")

	msg, err := c.DonationStatus("d@x", "![x](http://evil.example/pixel.png)", "Pat", 10,
		models.DonationRejected, "[Verify here](http://evil.example) or visit http://evil.example/now\n\n[ref]: http://evil.example")
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, `href="http://evil.example`)
	assert.NotContains(t, msg.HTML, `<img`)
	assert.Contains(t, msg.HTML, "[Verify here](http://evil.example)")
	assert.Contains(t, msg.HTML, `href="http://localhost:3000/donate"`)

	msg, _, err = c.UserStatus("a@x", "<http://evil.example>", models.RoleDoctor, models.UserApproved)
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, `href="http://evil.example`)
	assert.Contains(t, msg.HTML, `href="http://localhost:3000/login"`)
}

func TestNotifier_DonationStatus(t *testing.T) {
	mailer := &recordingMailer{}
	n := NewNotifier(mailer, NewComposer("http://localhost:3000"), worker.Inline{})

	n.DonationStatus(&models.Donation{Amount: 10}, models.DonationApproved, nil)
	assert.Empty(t, mailer.sent)

	n.DonationStatus(&models.Donation{Amount: 10, DonorEmail: strPtr("d@x"), PatientName: "Pat"}, models.DonationApproved, nil)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "d@x", mailer.sent[0].To)
	assert.Equal(t, "Donation Approved - HavenWelfare", mailer.sent[0].Subject)
}

func TestSendGridMailer_NotConfigured(t *testing.T) {
	repos := repository.NewMemory()
	m := NewSendGridMailer("http://127.0.0.1:1", repos.Settings, "noreply@x", "Haven")

	err := m.Send(context.Background(), Message{To: "a@x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendGridMailer_Send(t *testing.T) {
	var got sendGridRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	repos := repository.NewMemory()
	require.NoError(t, repos.Settings.Upsert(context.Background(), &models.AdminSetting{
		Type:           models.SettingSMTP,
		SendGridAPIKey: strPtr("SG.key"),
		SenderName:     strPtr("Haven Team"),
	}))

	m := NewSendGridMailer(srv.URL, repos.Settings, "noreply@havenwelfare.com", "HavenWelfare")
	err := m.Send(context.Background(), Message{To: "a@x", Subject: "Hi", HTML: "<p>Hi</p>"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer SG.key", auth)
	assert.Equal(t, "noreply@havenwelfare.com", got.From.Email)
	assert.Equal(t, "Haven Team", got.From.Name)
	require.Len(t, got.Personalizations, 1)
	assert.Equal(t, "a@x", got.Personalizations[0].To[0].Email)
	require.Len(t, got.Content, 1)
	assert.Equal(t, "text/html", got.Content[0].Type)
}

func TestSendGridMailer_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"The provided authorization grant is invalid"}]}`))
	}))
	defer srv.Close()

	repos := repository.NewMemory()
	require.NoError(t, repos.Settings.Upsert(context.Background(), &models.AdminSetting{
		Type: models.SettingSMTP, SendGridAPIKey: strPtr("bad"),
	}))

	m := NewSendGridMailer(srv.URL, repos.Settings, "noreply@x", "")
	err := m.Send(context.Background(), Message{To: "a@x", HTML: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authorization grant is invalid")
}
