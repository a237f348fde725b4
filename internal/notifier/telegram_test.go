package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// fakeBotAPI answers getMe and records sendMessage calls.
type fakeBotAPI struct {
	mu   sync.Mutex
	sent []map[string]string
	fail bool
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Wayne","username":"wayne_bot"}}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		if f.fail {
			fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.sent = append(f.sent, map[string]string{
			"chat_id":    r.PostForm.Get("chat_id"),
			"text":       r.PostForm.Get("text"),
			"parse_mode": r.PostForm.Get("parse_mode"),
		})
		f.mu.Unlock()
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`)
	default:
		http.NotFound(w, r)
	}
}

func newTestNotifier(t *testing.T, api *fakeBotAPI) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	n, err := newTelegramNotifier("TOKEN", "42", srv.URL+"/bot%s/%s", srv.Client())
	if err != nil {
		t.Fatalf("newTelegramNotifier: %v", err)
	}
	return n
}

func TestNewTelegramNotifierRejectsChatID(t *testing.T) {
	if _, err := newTelegramNotifier("TOKEN", "abc", "http://127.0.0.1:1/bot%s/%s", http.DefaultClient); err == nil {
		t.Fatal("expected chat id error")
	}
}

func TestSend(t *testing.T) {
	api := &fakeBotAPI{}
	n := newTestNotifier(t, api)

	if err := n.Send("<b>hello</b>"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(api.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(api.sent))
	}
	got := api.sent[0]
	if got["chat_id"] != "42" || got["text"] != "<b>hello</b>" || got["parse_mode"] != tgbotapi.ModeHTML {
		t.Errorf("sent %+v", got)
	}
}

func TestSendAPIError(t *testing.T) {
	api := &fakeBotAPI{}
	n := newTestNotifier(t, api)
	api.fail = true
	if err := n.Send("hello"); err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("Send error = %v", err)
	}
}

func TestSendWithRetry(t *testing.T) {
	calls := 0
	flaky := func(string) error {
		calls++
		if calls < 3 {
			return errors.New("timeout")
		}
		return nil
	}
	if err := sendWithRetry(context.Background(), flaky, "x", 3, time.Millisecond); err != nil {
		t.Fatalf("sendWithRetry: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestSendWithRetryExhausted(t *testing.T) {
	calls := 0
	broken := func(string) error {
		calls++
		return errors.New("down")
	}
	err := sendWithRetry(context.Background(), broken, "x", 2, time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "all 3 retries exhausted") {
		t.Fatalf("sendWithRetry error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestSendWithRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sendWithRetry(ctx, func(string) error { return errors.New("down") }, "x", 5, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("sendWithRetry error = %v, want context.Canceled", err)
	}
}

func TestDispatch(t *testing.T) {
	api := &fakeBotAPI{}
	n := newTestNotifier(t, api)
	var handled []string
	handler := func(_ context.Context, cmd string) string {
		handled = append(handled, cmd)
		return "ok " + cmd
	}

	n.dispatch(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Text: "  /rank ",
		Chat: &tgbotapi.Chat{ID: 42},
	}}, handler)
	n.dispatch(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Text: "/rank",
		Chat: &tgbotapi.Chat{ID: 99},
	}}, handler)
	n.dispatch(context.Background(), tgbotapi.Update{}, handler)

	if len(handled) != 1 || handled[0] != "/rank" {
		t.Errorf("handled = %v, want [/rank]", handled)
	}
	if len(api.sent) != 1 || api.sent[0]["text"] != "ok /rank" {
		t.Errorf("replies = %+v", api.sent)
	}
}
