package fetch

import (
	"bufio"
	"net"
	"net/textproto"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// testServer は、リクエストヘッダを読み終えた後に handler を実行する TCP サーバーです。
type testServer struct {
	ln       net.Listener
	mu       sync.Mutex
	requests []string
	wg       sync.WaitGroup
}

// newTestServer は 127.0.0.1 の空きポートで待ち受けを開始します。
// handler の実行後、接続は閉じられます。
func newTestServer(t *testing.T, handler func(conn net.Conn)) *testServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &testServer{ln: ln}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer conn.Close()
				s.record(readRequest(conn))
				handler(conn)
			}()
		}
	}()

	t.Cleanup(func() {
		ln.Close()
		s.wg.Wait()
	})
	return s
}

// respondWith は、固定のバイト列を返して接続を閉じるハンドラです。
func respondWith(body []byte) func(net.Conn) {
	return func(conn net.Conn) {
		conn.Write(body)
	}
}

func (s *testServer) record(req string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
}

// Requests は受信したリクエストを受信順に返します。
func (s *testServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Port は待ち受けポートを返します。
func (s *testServer) Port() string {
	return strconv.Itoa(s.ln.Addr().(*net.TCPAddr).Port)
}

// Endpoint は待ち受けアドレスを Endpoint として返します。
func (s *testServer) Endpoint() Endpoint {
	return Endpoint{Addr: "127.0.0.1", Port: s.Port()}
}

// readRequest は空行までのリクエストを読み込み、そのまま文字列で返します。
func readRequest(conn net.Conn) string {
	r := textproto.NewReader(bufio.NewReader(conn))
	var raw string
	for {
		line, err := r.ReadLine()
		if err != nil {
			return raw
		}
		raw += line + "\r\n"
		if line == "" {
			return raw
		}
	}
}

// closedEndpoint は、接続を拒否するエンドポイントを返します。
func closedEndpoint(t *testing.T) Endpoint {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
	require.NoError(t, ln.Close())
	return Endpoint{Addr: "127.0.0.1", Port: port}
}
