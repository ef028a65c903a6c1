package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

const (
	// DefaultPort は接続先ポートです。平文 HTTP のみを扱います。
	DefaultPort = "80"
	// DefaultReadChunkSize は一回の Read で使うバッファサイズです。
	DefaultReadChunkSize = 4096
)

// Dialer は、エンドポイントへの接続を確立する機能のインターフェースです。
// *net.Dialer はこのインターフェースを満たします。
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Result は一つのホストに対するフェッチ結果です。
// Body は受信した生のバイト列 (ヘッダを含む) で、Err は診断用のエラーです。
// ピアが接続を閉じて正常に終了した場合、Err は nil です。
type Result struct {
	Host string
	Body []byte
	Err  error
}

// Fetcher は、名前解決・接続・リクエスト送信・EOFまでの読み込みを行います。
type Fetcher struct {
	resolver  Resolver
	dialer    Dialer
	port      string
	timeout   time.Duration
	chunkSize int
}

// Option は Fetcher の設定を行うための関数型です。
type Option func(*Fetcher)

// WithResolver はカスタムの Resolver を設定します。
func WithResolver(r Resolver) Option {
	return func(f *Fetcher) {
		if r != nil {
			f.resolver = r
		}
	}
}

// WithDialer はカスタムの Dialer を設定します。
func WithDialer(d Dialer) Option {
	return func(f *Fetcher) {
		if d != nil {
			f.dialer = d
		}
	}
}

// WithPort は接続先ポートを上書きします。テスト用であり、CLIからは設定できません。
func WithPort(port string) Option {
	return func(f *Fetcher) {
		if port != "" {
			f.port = port
		}
	}
}

// WithTimeout はフェッチ全体のタイムアウトを設定します。0 はタイムアウトなしです。
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

// WithReadChunkSize は Read に使うバッファサイズを設定します。
func WithReadChunkSize(size int) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.chunkSize = size
		}
	}
}

// New は新しい Fetcher を初期化します。
func New(options ...Option) *Fetcher {
	f := &Fetcher{
		resolver:  NewNetResolver(nil),
		dialer:    &net.Dialer{},
		port:      DefaultPort,
		chunkSize: DefaultReadChunkSize,
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// Fetch はホストのルートドキュメントを取得し、受信した生のバイト列を返します。
// 失敗してもエラーは返さず、その時点までにバッファされたバイト列 (通常は空) を返します。
func (f *Fetcher) Fetch(ctx context.Context, host string) []byte {
	return f.FetchResult(ctx, host).Body
}

// FetchResult は Fetch と同じ処理を行い、診断用のエラーを Result に保持します。
func (f *Fetcher) FetchResult(ctx context.Context, host string) Result {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	var buf bytes.Buffer
	err := f.fetch(ctx, host, &buf)
	return Result{
		Host: host,
		Body: buf.Bytes(),
		Err:  err,
	}
}

// fetch は一つのホストに対する resolve → connect → write → read を実行します。
func (f *Fetcher) fetch(ctx context.Context, host string, buf *bytes.Buffer) error {
	// 1. リクエストの生成
	req := BuildRequest(host)

	// 2. 名前解決
	endpoints, err := f.resolver.Resolve(ctx, asciiHost(host), f.port)
	if err != nil {
		return &StageError{Stage: StageResolve, Host: host, Err: withContextErr(ctx, err)}
	}

	// 3. 最初に接続を受け付けたエンドポイントを使う
	conn, err := connectAny(ctx, f.dialer, endpoints)
	if err != nil {
		return &StageError{Stage: StageConnect, Host: host, Err: withContextErr(ctx, err)}
	}
	defer conn.Close()

	// コンテキストが終了したら接続を閉じ、ブロック中の Read/Write を解除する
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	// 4. リクエストの送信
	if err := writeFull(conn, req); err != nil {
		return &StageError{Stage: StageWrite, Host: host, Err: withContextErr(ctx, err)}
	}

	// 5. ピアが接続を閉じるまで読み込む
	if err := readUntilClose(conn, buf, f.chunkSize); err != nil {
		return &StageError{Stage: StageRead, Host: host, Err: withContextErr(ctx, err)}
	}
	return nil
}

// connectAny は、エンドポイントを順に試し、最初に成功した接続を返します。
func connectAny(ctx context.Context, d Dialer, endpoints []Endpoint) (net.Conn, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	var errs []error
	for _, ep := range endpoints {
		conn, err := d.DialContext(ctx, "tcp", ep.String())
		if err == nil {
			return conn, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", ep, err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}

// writeFull は p をすべて書き込むまで Write を繰り返します。
func writeFull(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		p = p[n:]
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
	}
	return nil
}

// readUntilClose は、EOF またはエラーまで r から読み込み、buf に追記します。
// EOF は正常終了として nil を返します。
func readUntilClose(r io.Reader, buf *bytes.Buffer, chunkSize int) error {
	chunk := make([]byte, chunkSize)
	for {
		n, err := r.Read(chunk)
		buf.Write(chunk[:n])

		switch ClassifyRead(err) {
		case ReadEOF:
			return nil
		case ReadFailure:
			return err
		}
	}
}

// withContextErr は、コンテキストの終了が原因の場合にそのエラーを併記します。
// errors.Is(err, context.DeadlineExceeded) などで判定できるようになります。
func withContextErr(ctx context.Context, err error) error {
	ctxErr := ctx.Err()
	if ctxErr == nil || errors.Is(err, ctxErr) {
		return err
	}
	return fmt.Errorf("%w: %w", ctxErr, err)
}
