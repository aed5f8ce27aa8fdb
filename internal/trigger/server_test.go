package trigger

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/triggerd/internal/logger"
)

func alwaysOK(ctx context.Context, cmd string, params Params) (bool, error) {
	return true, nil
}

func startTestServer(t *testing.T, cfg Config, h Handler) *Server {
	t.Helper()
	srv := NewServer(cfg, logger.Discard)
	require.True(t, srv.Start(0, h))
	t.Cleanup(srv.Stop)
	return srv
}

func TestNewServer_Defaults(t *testing.T) {
	srv := NewServer(Config{}, nil)

	assert.Equal(t, DefaultShutdownTimeout, srv.cfg.ShutdownTimeout)
	assert.Equal(t, DefaultMaxBodyBytes, srv.cfg.MaxBodyBytes)
	assert.Equal(t, int64(1_000_000), srv.cfg.MaxBodyBytes)
	assert.NotNil(t, srv.log)
	assert.False(t, srv.Running())
	assert.Equal(t, 0, srv.Port())
	assert.Equal(t, "", srv.Addr())
}

func TestServer_StartIsIdempotent(t *testing.T) {
	srv := startTestServer(t, Config{}, alwaysOK)
	port := srv.Port()
	require.NotZero(t, port)

	assert.True(t, srv.Start(0, alwaysOK))
	assert.Equal(t, port, srv.Port(), "second start must not rebind")

	assert.True(t, srv.Start(port+1, alwaysOK), "a different port is ignored while listening")
	assert.Equal(t, port, srv.Port())
	assert.True(t, srv.Running())
}

func TestServer_BindsLoopbackOnly(t *testing.T) {
	srv := startTestServer(t, Config{}, alwaysOK)

	assert.True(t, strings.HasPrefix(srv.Addr(), "http://127.0.0.1:"))

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(LoopbackHost, strconv.Itoa(srv.Port())), time.Second)
	require.NoError(t, err)
	conn.Close()
}

func TestServer_StartFailsWhenPortTaken(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	ml := &logger.MockLogger{}
	ml.On("Warn", "Failed to start HTTP trigger server", mock.Anything).Once()

	srv := NewServer(Config{}, ml)
	assert.False(t, srv.Start(port, alwaysOK))
	assert.False(t, srv.Running())
	assert.Equal(t, 0, srv.Port())
	ml.AssertExpectations(t)

	ln.Close()
	ml.On("Info", mock.Anything, mock.Anything)
	assert.True(t, srv.Start(port, alwaysOK), "state is cleared after a failed bind")
	srv.Stop()
}

func TestServer_StartRejectsNilHandler(t *testing.T) {
	srv := NewServer(Config{}, logger.Discard)
	assert.False(t, srv.Start(0, nil))
	assert.False(t, srv.Running())
}

func TestServer_StopIsIdempotent(t *testing.T) {
	srv := NewServer(Config{}, logger.Discard)
	assert.NotPanics(t, srv.Stop, "stop before start")

	require.True(t, srv.Start(0, alwaysOK))
	base := srv.Addr()

	srv.Stop()
	assert.False(t, srv.Running())
	assert.Equal(t, 0, srv.Port())
	assert.NotPanics(t, srv.Stop, "second stop")

	_, err := http.Get(base + "/health")
	assert.Error(t, err, "listener must be closed")
}

func TestServer_RestartAfterStop(t *testing.T) {
	srv := NewServer(Config{}, logger.Discard)
	require.True(t, srv.Start(0, alwaysOK))
	srv.Stop()

	require.True(t, srv.Start(0, alwaysOK))
	defer srv.Stop()

	ok, err := NewClient(srv.Addr(), time.Second).Health(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestServer_OversizedBodyDropsConnection(t *testing.T) {
	var calls int32
	h := func(ctx context.Context, cmd string, params Params) (bool, error) {
		atomic.AddInt32(&calls, 1)
		return true, nil
	}
	srv := startTestServer(t, Config{}, h)

	body := bytes.Repeat([]byte("a"), int(DefaultMaxBodyBytes)+1)

	t.Run("declared length", func(t *testing.T) {
		resp, err := http.Post(srv.Addr()+"/trigger", "application/json", bytes.NewReader(body))
		if err == nil {
			resp.Body.Close()
		}
		assert.Error(t, err)
	})

	t.Run("chunked", func(t *testing.T) {
		reader := struct{ io.Reader }{bytes.NewReader(body)}
		resp, err := http.Post(srv.Addr()+"/trigger", "application/json", reader)
		if err == nil {
			resp.Body.Close()
		}
		assert.Error(t, err)
	})

	assert.Zero(t, atomic.LoadInt32(&calls))

	ok, err := NewClient(srv.Addr(), time.Second).Health(context.Background())
	require.NoError(t, err)
	assert.True(t, ok, "listener survives dropped connections")
}

func TestServer_BodyAtLimitIsAccepted(t *testing.T) {
	spy := &handlerSpy{}
	srv := startTestServer(t, Config{}, spy.Handle)

	prefix, suffix := `{"cmd":"big","text":"`, `"}`
	pad := int(DefaultMaxBodyBytes) - len(prefix) - len(suffix)
	text := strings.Repeat("x", pad)
	body := prefix + text + suffix
	require.Len(t, body, int(DefaultMaxBodyBytes))

	spy.On("Handle", "big", Params{Text: text}).Return(true, nil).Once()

	resp, err := http.Post(srv.Addr()+"/trigger", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	spy.AssertExpectations(t)
}

func TestServer_SurvivesHandlerPanic(t *testing.T) {
	h := func(ctx context.Context, cmd string, params Params) (bool, error) {
		if cmd == "crash" {
			panic("boom")
		}
		return true, nil
	}
	srv := startTestServer(t, Config{}, h)
	client := NewClient(srv.Addr(), time.Second)

	res, err := client.Trigger(context.Background(), "crash", Params{})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, err = client.Trigger(context.Background(), "fine", Params{})
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestServer_HandlerContextCancelledOnDisconnect(t *testing.T) {
	entered := make(chan struct{})
	cancelled := make(chan struct{})
	h := func(ctx context.Context, cmd string, params Params) (bool, error) {
		close(entered)
		<-ctx.Done()
		close(cancelled)
		return false, ctx.Err()
	}
	srv := startTestServer(t, Config{}, h)

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.Addr()+"/trigger?cmd=slow", nil)
	require.NoError(t, err)

	go func() {
		<-entered
		cancel()
	}()

	_, err = http.DefaultClient.Do(req)
	assert.Error(t, err)

	select {
	case <-cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("handler context was not cancelled after the client went away")
	}
}

func TestServer_StopDoesNotWaitForeverOnHungHandler(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	h := func(ctx context.Context, cmd string, params Params) (bool, error) {
		close(entered)
		select {
		case <-ctx.Done():
		case <-release:
		}
		return false, nil
	}

	srv := NewServer(Config{ShutdownTimeout: 100 * time.Millisecond}, logger.Discard)
	require.True(t, srv.Start(0, h))

	go func() {
		resp, err := http.Get(srv.Addr() + "/trigger?cmd=hang")
		if err == nil {
			resp.Body.Close()
		}
	}()
	<-entered

	stopped := make(chan struct{})
	go func() {
		srv.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop blocked on a hung handler")
	}
	assert.False(t, srv.Running())
}

func TestServeErrorWriter(t *testing.T) {
	ml := &logger.MockLogger{}
	ml.On("Debug", "HTTP server notice", mock.Anything).Once()
	ml.On("Warn", "HTTP server error", map[string]interface{}{"detail": "http: Accept error: boom"}).Once()

	w := serveErrorWriter{log: ml}

	msg := []byte("http: URL query contains semicolon, which is no longer a supported separator\n")
	n, err := w.Write(msg)
	require.NoError(t, err)
	assert.Equal(t, len(msg), n)

	_, err = w.Write([]byte("http: Accept error: boom\n"))
	require.NoError(t, err)

	ml.AssertExpectations(t)
}

func TestServer_SemicolonQueryReachesHandler(t *testing.T) {
	spy := &handlerSpy{}
	spy.On("Handle", "a;b", Params{Text: "x;y"}).Return(true, nil).Once()
	srv := startTestServer(t, Config{}, spy.Handle)

	resp, err := http.Get(srv.Addr() + "/trigger?cmd=a;b&text=x;y")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	spy.AssertExpectations(t)
}
