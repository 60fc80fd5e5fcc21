//go:build !integration

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartrunai-edge/internal/domain"
	"smartrunai-edge/internal/domain/ports/adapter"
	"smartrunai-edge/internal/infra/worker"
)

func nop() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestResendSend(t *testing.T) {
	var got resendRequest
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth, path = r.Header.Get("Authorization"), r.URL.Path
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"email_123"}`)
	}))
	defer srv.Close()

	m := NewResendMailer("re_key", srv.URL+"/", nop())
	out, err := m.Send(context.Background(), adapter.Email{
		From:    "SmartRunAI <onboarding@resend.dev>",
		To:      []string{"info@smartrunai.com"},
		ReplyTo: "jane@example.com",
		Subject: "New lead",
		HTML:    "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "email_123", out["id"])
	assert.Equal(t, "/emails", path)
	assert.Equal(t, "Bearer re_key", auth)
	assert.Equal(t, []string{"info@smartrunai.com"}, got.To)
	assert.Equal(t, "jane@example.com", got.ReplyTo)
	assert.Equal(t, "<p>hi</p>", got.HTML)
}

func TestResendErrors(t *testing.T) {
	_, err := NewResendMailer("", "https://api.resend.com", nop()).Send(context.Background(), adapter.Email{})
	assert.True(t, errors.Is(err, domain.ErrMissingConfig))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"message":"invalid from"}`)
	}))
	defer srv.Close()
	_, err = NewResendMailer("k", srv.URL, nop()).Send(context.Background(), adapter.Email{})
	assert.True(t, errors.Is(err, domain.ErrNotifyFailed))
}

func fakeBotAPI(t *testing.T, texts chan<- string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/botTOKEN/getMe":
			_, _ = io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Leads","username":"leads_bot"}}`)
		case "/botTOKEN/sendMessage":
			texts <- r.FormValue("text")
			_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":5,"date":0,"chat":{"id":42,"type":"private"}}}`)
		default:
			_, _ = io.WriteString(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
		}
	}))
}

func TestTelegramNotify(t *testing.T) {
	texts := make(chan string, 1)
	srv := fakeBotAPI(t, texts)
	defer srv.Close()

	n, err := NewTelegramNotifier("TOKEN", 42, srv.URL+"/bot%s/%s", nop())
	require.NoError(t, err)
	require.NoError(t, n.Notify(context.Background(), "New lead: Jane"))
	assert.Equal(t, "New lead: Jane", <-texts)
}

func TestTelegramMissingConfig(t *testing.T) {
	_, err := NewTelegramNotifier("", 42, "", nop())
	assert.True(t, errors.Is(err, domain.ErrMissingConfig))
	_, err = NewTelegramNotifier("TOKEN", 0, "", nop())
	assert.True(t, errors.Is(err, domain.ErrMissingConfig))
}

type failing struct{ calls int }

func (f *failing) Notify(context.Context, string) error {
	f.calls++
	return domain.ErrNotifyFailed
}

func TestMultiNotifiesAll(t *testing.T) {
	a, b := &failing{}, &failing{}
	err := Multi{a, &Noop{Log: nop()}, b}.Notify(context.Background(), "x")
	assert.True(t, errors.Is(err, domain.ErrNotifyFailed))
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)

	assert.NoError(t, Multi{&Noop{}}.Notify(context.Background(), "x"))
}

type recording struct {
	mu    sync.Mutex
	texts []string
}

func (r *recording) Notify(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return nil
}

func TestAsyncSurvivesCallerCancel(t *testing.T) {
	pool := worker.NewPool(1, nop())
	rec := &recording{}
	a := NewAsync(rec, pool)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, a.Notify(ctx, "lead 1"))
	cancel()

	pool.Start(context.Background())
	pool.Stop()
	assert.Equal(t, []string{"lead 1"}, rec.texts)
}
