package pipeline

import (
	"context"
	"fmt"

	"github.com/shouni/go-raw-fetch/pkg/runner"
	"github.com/shouni/go-raw-fetch/pkg/store"
)

// Config は取得と保存の設定です。
type Config struct {
	Hosts       []string // 取得対象のホスト (空の場合は runner.DefaultHosts)
	OutDir      string   // 出力ディレクトリ
	Ext         string   // 出力ファイルの拡張子
	Concurrency int      // 最大同時実行数 (1 は逐次実行)
}

// Output は、一つのホストについて保存した内容です。
type Output struct {
	Index int    // 1 始まりの連番
	Host  string // 対象ホスト
	Path  string // 保存先のパス
	Bytes int    // 保存したバイト数
	Err   error  // フェッチ時の診断用エラー
}

// FetchAndStore は、ホスト一覧を取得し、結果を連番のファイルに保存するメインの処理パイプラインです。
// 個々のホストの失敗はエラーにならず、空のファイルとして保存されます。
// エラーを返すのは、依存性の初期化やファイル書き込みに失敗した場合のみです。
func FetchAndStore(ctx context.Context, fetcher runner.Fetcher, cfg Config) ([]Output, error) {
	hosts := cfg.Hosts
	if len(hosts) == 0 {
		hosts = runner.DefaultHosts
	}

	// 1. 依存性の初期化
	r, err := runner.New(fetcher, cfg.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("Runnerの初期化エラー: %w", err)
	}
	st, err := store.New(cfg.OutDir, cfg.Ext)
	if err != nil {
		return nil, fmt.Errorf("Storeの初期化エラー: %w", err)
	}

	// 2. 取得の実行
	results := r.Run(ctx, hosts)

	// 3. 結果の保存
	paths, err := st.WriteAll(results)
	if err != nil {
		return nil, fmt.Errorf("結果の保存エラー: %w", err)
	}

	outputs := make([]Output, len(results))
	for i, res := range results {
		outputs[i] = Output{
			Index: i + 1,
			Host:  res.Host,
			Path:  paths[i],
			Bytes: len(res.Body),
			Err:   res.Error,
		}
	}
	return outputs, nil
}
