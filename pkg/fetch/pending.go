package fetch

import "context"

// Pending は実行中のフェッチを表します。
// Wait または Await で完了を待ち、Result を取り出します。
type Pending struct {
	done   chan struct{}
	result Result
}

// Go は fn を新しいゴルーチンで実行し、その完了を表す Pending を返します。
func Go(fn func() Result) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.result = fn()
	}()
	return p
}

// Start はホストのフェッチを非同期に開始します。
func (f *Fetcher) Start(ctx context.Context, host string) *Pending {
	return Go(func() Result {
		return f.FetchResult(ctx, host)
	})
}

// Done はフェッチ完了時に閉じられるチャネルを返します。
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait はフェッチの完了を待ち、結果を返します。
func (p *Pending) Wait() Result {
	<-p.done
	return p.result
}

// Await は Wait と同様ですが、ctx が先に終了した場合は待機をやめてそのエラーを返します。
// フェッチ自体は止めません。止めるには Start に渡したコンテキストをキャンセルします。
func (p *Pending) Await(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		return p.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
