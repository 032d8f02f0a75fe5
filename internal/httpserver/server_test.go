package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/tinytelemetry/cards/internal/appmsg"
	"github.com/tinytelemetry/cards/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeWatch struct {
	state      model.WatchState
	delivered  []model.Dictionary
	nexts      int
	connection []bool
	refreshErr error
	err        error
}

func (w *fakeWatch) State(context.Context) (model.WatchState, error) { return w.state, w.err }

func (w *fakeWatch) Next(context.Context) error {
	w.nexts++
	return w.err
}

func (w *fakeWatch) Deliver(_ context.Context, d model.Dictionary) error {
	w.delivered = append(w.delivered, d)
	return w.err
}

func (w *fakeWatch) SetConnection(_ context.Context, connected bool) error {
	w.connection = append(w.connection, connected)
	return w.err
}

func (w *fakeWatch) Refresh(context.Context) error { return w.refreshErr }

func newTestServer(t *testing.T, hub *appmsg.Hub) (*fakeWatch, *gin.Engine) {
	t.Helper()
	watch := &fakeWatch{
		state: model.WatchState{
			Values:  model.Values{Location: "Paris", Conditions: "Cloudy", Temperature: "15"},
			Battery: 80,
		},
	}
	srv := NewServer("", watch, hub)
	srv.startTime = time.Now()
	t.Cleanup(func() { _ = srv.Stop() })
	return watch, srv.routes()
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	_, r := newTestServer(t, nil)

	w := do(r, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d, want %d", w.Code, http.StatusOK)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("health status = %v, want ok", body["status"])
	}
}

func TestHealthEndpoint_WrongMethod(t *testing.T) {
	_, r := newTestServer(t, nil)

	w := do(r, http.MethodPost, "/api/health", "")
	if w.Code != http.StatusMethodNotAllowed && w.Code != http.StatusNotFound {
		t.Errorf("health POST status = %d, want 405 or 404", w.Code)
	}
}

func TestStateEndpoint(t *testing.T) {
	_, r := newTestServer(t, nil)

	w := do(r, http.MethodGet, "/api/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("state status = %d; body: %s", w.Code, w.Body.String())
	}
	var st model.WatchState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if st.Values.Location != "Paris" || st.Battery != 80 {
		t.Errorf("state = %+v", st)
	}
}

func TestStateEndpoint_WatchStopped(t *testing.T) {
	watch, r := newTestServer(t, nil)
	watch.err = errors.New("loop: stopped")

	if w := do(r, http.MethodGet, "/api/state", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("state status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestMessageEndpoint_DeliversDictionary(t *testing.T) {
	watch, r := newTestServer(t, nil)

	w := do(r, http.MethodPost, "/api/message", `{"0":"Oslo","2":-3}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("message status = %d; body: %s", w.Code, w.Body.String())
	}
	if len(watch.delivered) != 1 {
		t.Fatalf("delivered %d dictionaries, want 1", len(watch.delivered))
	}
	d := watch.delivered[0]
	if len(d) != 2 || d[0].Value.Str != "Oslo" || d[1].Value.Int != -3 {
		t.Errorf("dictionary = %+v", d)
	}
}

func TestMessageEndpoint_RejectsInvalidFrame(t *testing.T) {
	watch, r := newTestServer(t, nil)

	for _, body := range []string{`not json`, `{"0":true}`, `[]`} {
		if w := do(r, http.MethodPost, "/api/message", body); w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want %d", body, w.Code, http.StatusBadRequest)
		}
	}
	if len(watch.delivered) != 0 {
		t.Errorf("delivered %d dictionaries, want 0", len(watch.delivered))
	}
}

func TestNextEndpoint(t *testing.T) {
	watch, r := newTestServer(t, nil)

	if w := do(r, http.MethodPost, "/api/next", ""); w.Code != http.StatusAccepted {
		t.Fatalf("next status = %d", w.Code)
	}
	if watch.nexts != 1 {
		t.Errorf("nexts = %d, want 1", watch.nexts)
	}
}

func TestConnectionEndpoint(t *testing.T) {
	watch, r := newTestServer(t, nil)

	if w := do(r, http.MethodPost, "/api/connection", `{"connected":false}`); w.Code != http.StatusAccepted {
		t.Fatalf("connection status = %d; body: %s", w.Code, w.Body.String())
	}
	if len(watch.connection) != 1 || watch.connection[0] {
		t.Errorf("connection calls = %v, want [false]", watch.connection)
	}

	if w := do(r, http.MethodPost, "/api/connection", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing field status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestRefreshEndpoint_NoPhone(t *testing.T) {
	watch, r := newTestServer(t, nil)
	watch.refreshErr = appmsg.ErrNoPeers

	if w := do(r, http.MethodPost, "/api/refresh", ""); w.Code != http.StatusConflict {
		t.Errorf("refresh status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestWebSocketEndpoint_AttachesPhone(t *testing.T) {
	hub := appmsg.NewHub(1)
	_, r := newTestServer(t, hub)

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"1":"Snow"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case env := <-hub.Lines():
		if env.Line != `{"1":"Snow"}` {
			t.Errorf("line = %q", env.Line)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for phone frame")
	}
}

func TestNewServer_DefaultAddress(t *testing.T) {
	srv := NewServer("", &fakeWatch{}, nil)
	if got := srv.Addr(); got != DefaultAddr {
		t.Errorf("Addr() = %q, want %q", got, DefaultAddr)
	}
}
