package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/shouni/go-raw-fetch/pkg/fetch"
	"github.com/shouni/go-raw-fetch/pkg/types"
)

const (
	// DefaultConcurrency は同時実行数のデフォルトです。1 は逐次実行を意味します。
	DefaultConcurrency = 1
)

// DefaultHosts は、ホストが指定されなかった場合に取得するホストの一覧です。
var DefaultHosts = []string{"example.org", "example.net"}

// Fetcher は、ホストのフェッチを非同期に開始する機能のインターフェースです。
// *fetch.Fetcher はこのインターフェースを満たします。
type Fetcher interface {
	Start(ctx context.Context, host string) *fetch.Pending
}

// Runner は、ホスト一覧に対してフェッチを実行し、入力順に結果を返します。
type Runner struct {
	fetcher     Fetcher
	concurrency int
}

// New は Runner を初期化します。
// concurrency が 0 以下の場合は DefaultConcurrency (逐次実行) になります。
func New(fetcher Fetcher, concurrency int) (*Runner, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("runner.New: Fetcher cannot be nil")
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Runner{
		fetcher:     fetcher,
		concurrency: concurrency,
	}, nil
}

// Concurrency は最大同時実行数を返します。
func (r *Runner) Concurrency() int {
	return r.concurrency
}

// Run は hosts の各ホストを一度ずつフェッチします。
// 戻り値の i 番目の要素は常に hosts[i] に対応します。
func (r *Runner) Run(ctx context.Context, hosts []string) []types.HostResult {
	results := make([]types.HostResult, len(hosts))

	if r.concurrency == 1 {
		// 前のフェッチが完了してから次を開始する
		for i, host := range hosts {
			results[i] = r.fetchOne(ctx, host)
		}
		return results
	}

	var wg sync.WaitGroup

	// バッファ付きチャネルをセマフォとして使用し、同時実行数を制限する
	semaphore := make(chan struct{}, r.concurrency)

	for i, host := range hosts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, host string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			// 完了順ではなくインデックスで格納し、ホストとの対応を保つ
			results[i] = r.fetchOne(ctx, host)
		}(i, host)
	}

	wg.Wait()
	return results
}

// fetchOne は一つのホストをフェッチし、完了を待ちます。
func (r *Runner) fetchOne(ctx context.Context, host string) types.HostResult {
	if err := ctx.Err(); err != nil {
		return types.HostResult{Host: host, Error: err}
	}

	res := r.fetcher.Start(ctx, host).Wait()
	return types.HostResult{
		Host:  host,
		Body:  res.Body,
		Error: res.Err,
	}
}
