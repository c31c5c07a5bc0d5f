package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewAddsServiceName(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", ServiceName: "live-chat", Output: &buf})
	logger.Info().Msg("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if entry[FieldService] != "live-chat" {
		t.Errorf("service = %v, want live-chat", entry[FieldService])
	}
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), zerolog.New(&buf))

	l := Ctx(ctx)
	l.Info().Msg("scoped")
	if buf.Len() == 0 {
		t.Error("context logger not used")
	}

	var out bytes.Buffer
	prev := global
	global = zerolog.New(&out)
	defer func() { global = prev }()

	l = Ctx(context.Background())
	l.Info().Msg("global")
	if out.Len() == 0 {
		t.Error("global logger not used without a context logger")
	}
}

func TestHTTPMiddlewareLogsRequest(t *testing.T) {
	var buf bytes.Buffer
	mw := HTTPMiddleware(zerolog.New(&buf))

	var sawLogger bool
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := Ctx(r.Context())
		l.Info().Msg("inside")
		sawLogger = true
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set(headerRequestID, "req-1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if !sawLogger {
		t.Fatal("handler not called")
	}
	if got := w.Header().Get(headerRequestID); got != "req-1" {
		t.Errorf("request id header = %q, want req-1", got)
	}

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2:\n%s", len(lines), buf.String())
	}
	var entry map[string]interface{}
	if err := json.Unmarshal(lines[1], &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry[FieldStatus] != float64(http.StatusTeapot) || entry[FieldRequestID] != "req-1" {
		t.Errorf("completion entry = %v", entry)
	}
}

type hijackableRecorder struct {
	*httptest.ResponseRecorder
}

func (r hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	server, client := net.Pipe()
	client.Close()
	return server, bufio.NewReadWriter(bufio.NewReader(server), bufio.NewWriter(server)), nil
}

func TestHTTPMiddlewareLogsUpgrade(t *testing.T) {
	var buf bytes.Buffer
	mw := HTTPMiddleware(zerolog.New(&buf))

	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Fatalf("Hijack() error = %v", err)
		}
		conn.Close()
	}))
	h.ServeHTTP(hijackableRecorder{httptest.NewRecorder()}, httptest.NewRequest(http.MethodGet, "/ws", nil))

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if entry["upgraded"] != true {
		t.Errorf("upgraded = %v, want true", entry["upgraded"])
	}
	if _, ok := entry[FieldStatus]; ok {
		t.Errorf("upgraded request logged status %v", entry[FieldStatus])
	}
}

func TestGinMiddlewareSkipsPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	r := gin.New()
	r.Use(GinMiddleware(zerolog.New(&buf), "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	if buf.Len() != 0 {
		t.Fatalf("skipped path logged: %s", buf.String())
	}

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if entry["level"] != "error" {
		t.Errorf("level = %v, want error for 5xx", entry["level"])
	}
}
