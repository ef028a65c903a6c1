package fetch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const sampleResponse = "HTTP/1.0 200 OK\r\nContent-Type: text/html\r\n\r\n<html><head><title>Example</title></head></html>"

// MockDialer は Dialer インターフェースのモックです。
type MockDialer struct {
	mock.Mock
}

func (m *MockDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	args := m.Called(ctx, network, address)
	if conn := args.Get(0); conn != nil {
		return conn.(net.Conn), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestFetch_ReturnsRawBytesUntilClose(t *testing.T) {
	srv := newTestServer(t, respondWith([]byte(sampleResponse)))
	f := New(WithPort(srv.Port()))

	res := f.FetchResult(context.Background(), "127.0.0.1")

	require.NoError(t, res.Err)
	assert.Equal(t, "127.0.0.1", res.Host)
	assert.Equal(t, []byte(sampleResponse), res.Body)
	require.Len(t, srv.Requests(), 1)
	assert.Equal(t, string(BuildRequest("127.0.0.1")), srv.Requests()[0])
}

func TestFetch_LargeResponseAcrossManyReads(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789abcdef"), 4096)
	srv := newTestServer(t, respondWith(payload))
	f := New(WithPort(srv.Port()), WithReadChunkSize(100))

	assert.Equal(t, payload, f.Fetch(context.Background(), "127.0.0.1"))
}

func TestFetch_ConnectionRefusedYieldsEmpty(t *testing.T) {
	ep := closedEndpoint(t)
	f := New(WithResolver(StaticResolver{"refused.test": {ep}}))

	res := f.FetchResult(context.Background(), "refused.test")

	assert.Empty(t, res.Body)
	require.Error(t, res.Err)
	stage, ok := StageOf(res.Err)
	require.True(t, ok)
	assert.Equal(t, StageConnect, stage)
	assert.Empty(t, f.Fetch(context.Background(), "refused.test"))
}

func TestFetch_FallsBackToLastReachableEndpoint(t *testing.T) {
	srv := newTestServer(t, respondWith([]byte(sampleResponse)))
	resolver := StaticResolver{
		"multi.test": {closedEndpoint(t), closedEndpoint(t), srv.Endpoint()},
	}
	f := New(WithResolver(resolver))

	res := f.FetchResult(context.Background(), "multi.test")

	require.NoError(t, res.Err)
	assert.Equal(t, []byte(sampleResponse), res.Body)
	require.Len(t, srv.Requests(), 1)
	assert.Contains(t, srv.Requests()[0], "Host: multi.test\r\n")
}

func TestFetch_PeerClosesImmediately(t *testing.T) {
	srv := newTestServer(t, func(conn net.Conn) {})
	f := New(WithPort(srv.Port()))

	res := f.FetchResult(context.Background(), "127.0.0.1")

	assert.NoError(t, res.Err)
	assert.Empty(t, res.Body)
}

func TestFetch_ResolutionFailureYieldsEmpty(t *testing.T) {
	f := New(WithResolver(StaticResolver{}))

	res := f.FetchResult(context.Background(), "unknown.test")

	assert.Empty(t, res.Body)
	assert.ErrorIs(t, res.Err, ErrHostNotFound)
	stage, ok := StageOf(res.Err)
	require.True(t, ok)
	assert.Equal(t, StageResolve, stage)
}

func TestFetch_RepeatedRunsAreIdentical(t *testing.T) {
	srv := newTestServer(t, respondWith([]byte(sampleResponse)))
	f := New(WithPort(srv.Port()))

	first := f.Fetch(context.Background(), "127.0.0.1")
	second := f.Fetch(context.Background(), "127.0.0.1")

	assert.Equal(t, first, second)
	assert.Len(t, srv.Requests(), 2)
}

func TestFetch_TimeoutReturnsPartialBytes(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(conn net.Conn) {
		conn.Write([]byte("HTTP/1.0 200 OK\r\n"))
		<-release
	})
	// クリーンアップは登録の逆順に実行されるため、サーバー停止より先にハンドラを解放する
	t.Cleanup(func() { close(release) })

	f := New(WithPort(srv.Port()), WithTimeout(200*time.Millisecond))
	res := f.FetchResult(context.Background(), "127.0.0.1")

	assert.Equal(t, "HTTP/1.0 200 OK\r\n", string(res.Body))
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	stage, ok := StageOf(res.Err)
	require.True(t, ok)
	assert.Equal(t, StageRead, stage)
}

func TestFetch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(WithResolver(StaticResolver{"a.test": {closedEndpoint(t)}}))
	res := f.FetchResult(ctx, "a.test")

	assert.Empty(t, res.Body)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestFetch_MockDialerTriesEndpointsInOrder(t *testing.T) {
	client, server := net.Pipe()
	go func() {
		defer server.Close()
		readRequest(server)
		server.Write([]byte(sampleResponse))
	}()

	dialer := new(MockDialer)
	dialer.On("DialContext", mock.Anything, "tcp", "10.0.0.1:80").Return(nil, errors.New("no route to host")).Once()
	dialer.On("DialContext", mock.Anything, "tcp", "10.0.0.2:80").Return(client, nil).Once()

	resolver := StaticResolver{"pipe.test": {{Addr: "10.0.0.1", Port: "80"}, {Addr: "10.0.0.2", Port: "80"}}}
	f := New(WithResolver(resolver), WithDialer(dialer))

	res := f.FetchResult(context.Background(), "pipe.test")

	require.NoError(t, res.Err)
	assert.Equal(t, []byte(sampleResponse), res.Body)
	dialer.AssertExpectations(t)
}

func TestConnectAny(t *testing.T) {
	t.Run("no_endpoints", func(t *testing.T) {
		conn, err := connectAny(context.Background(), &net.Dialer{}, nil)
		assert.Nil(t, conn)
		assert.ErrorIs(t, err, ErrNoEndpoints)
	})

	t.Run("all_refused_joins_errors", func(t *testing.T) {
		a, b := closedEndpoint(t), closedEndpoint(t)
		conn, err := connectAny(context.Background(), &net.Dialer{}, []Endpoint{a, b})
		assert.Nil(t, conn)
		require.Error(t, err)
		assert.Contains(t, err.Error(), a.String())
		assert.Contains(t, err.Error(), b.String())
	})
}

// shortWriter は一回の Write で最大 max バイトしか書き込まないライターです。
type shortWriter struct {
	bytes.Buffer
	max   int
	calls int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	w.calls++
	if len(p) > w.max {
		p = p[:w.max]
	}
	return w.Buffer.Write(p)
}

type stuckWriter struct{}

func (stuckWriter) Write(p []byte) (int, error) { return 0, nil }

type failingWriter struct{ err error }

func (w failingWriter) Write(p []byte) (int, error) { return 1, w.err }

func TestWriteFull(t *testing.T) {
	req := BuildRequest("example.org")

	t.Run("retries_partial_writes", func(t *testing.T) {
		w := &shortWriter{max: 5}
		require.NoError(t, writeFull(w, req))
		assert.Equal(t, req, w.Bytes())
		assert.Greater(t, w.calls, 1)
	})

	t.Run("zero_progress_is_short_write", func(t *testing.T) {
		assert.ErrorIs(t, writeFull(stuckWriter{}, req), io.ErrShortWrite)
	})

	t.Run("write_error", func(t *testing.T) {
		boom := errors.New("broken pipe")
		assert.ErrorIs(t, writeFull(failingWriter{err: boom}, req), boom)
	})
}

// errAfterReader は data を返した後に err を返すリーダーです。
type errAfterReader struct {
	data *strings.Reader
	err  error
}

func (r *errAfterReader) Read(p []byte) (int, error) {
	if r.data.Len() > 0 {
		return r.data.Read(p)
	}
	return 0, r.err
}

func TestReadUntilClose(t *testing.T) {
	t.Run("eof_is_success", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, readUntilClose(strings.NewReader("hello world"), &buf, 3))
		assert.Equal(t, "hello world", buf.String())
	})

	t.Run("failure_keeps_partial_bytes", func(t *testing.T) {
		reset := errors.New("connection reset by peer")
		var buf bytes.Buffer
		err := readUntilClose(&errAfterReader{data: strings.NewReader("partial"), err: reset}, &buf, 4)
		assert.ErrorIs(t, err, reset)
		assert.Equal(t, "partial", buf.String())
	})
}

func TestStageError(t *testing.T) {
	inner := errors.New("boom")
	err := &StageError{Stage: StageWrite, Host: "example.org", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "ホスト example.org の write 段階で失敗しました: boom", err.Error())

	_, ok := StageOf(errors.New("plain"))
	assert.False(t, ok)
}
