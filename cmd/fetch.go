package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-raw-fetch/internal/pipeline"
	"github.com/shouni/go-raw-fetch/pkg/runner"
	"github.com/shouni/go-raw-fetch/pkg/store"
)

// コマンドラインフラグ変数を定義
var (
	inputHosts  string // --hosts フラグで受け取るカンマ区切りのホストリスト
	outDir      string // --out-dir 出力ディレクトリ
	outExt      string // --ext 出力ファイルの拡張子
	concurrency int    // --concurrency 最大同時実行数
)

// parseHosts はカンマ区切りのホストリストを分割します。空の要素は無視します。
func parseHosts(raw string) []string {
	var hosts []string
	for _, h := range strings.Split(raw, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "各ホストのルートドキュメントを取得し、連番のファイルに保存します",
	Long: `各ホストに HTTP/1.0 の GET / リクエストを送信し、接続が閉じられるまでに受信した生のレスポンスを
1.html, 2.html, ... の順にそのまま保存します。取得に失敗したホストは空のファイルになります。`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 依存性の取得
		fetcher := GetGlobalFetcher()
		if fetcher == nil {
			return fmt.Errorf("フェッチャーが初期化されていません")
		}

		// 2. 処理対象ホストの決定
		hosts := runner.DefaultHosts
		if inputHosts != "" {
			hosts = parseHosts(inputHosts)
			if len(hosts) == 0 {
				return fmt.Errorf("処理対象のホストが一つも指定されていません")
			}
		}

		if clibase.Flags.Verbose {
			log.Printf("取得開始 (対象ホスト数: %d, 最大同時実行数: %d, 出力先: %s)", len(hosts), concurrency, outDir)
		}

		// 3. メインロジックの実行
		outputs, err := pipeline.FetchAndStore(context.Background(), fetcher, pipeline.Config{
			Hosts:       hosts,
			OutDir:      outDir,
			Ext:         outExt,
			Concurrency: concurrency,
		})
		if err != nil {
			return fmt.Errorf("取得パイプラインの実行エラー: %w", err)
		}

		// 4. 結果の出力
		// 失敗の詳細は --verbose の場合のみログに出す
		for _, out := range outputs {
			fmt.Printf("[%d] %s -> %s (%d バイト)\n", out.Index, out.Host, out.Path, out.Bytes)
			if out.Err != nil && clibase.Flags.Verbose {
				log.Printf("[%d] %s: %v", out.Index, out.Host, out.Err)
			}
		}

		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&inputHosts, "hosts", "H", "",
		fmt.Sprintf("取得対象のカンマ区切りホストリスト (デフォルト: %s)", strings.Join(runner.DefaultHosts, ",")))
	fetchCmd.Flags().StringVarP(&outDir, "out-dir", "o", ".", "出力ディレクトリ")
	fetchCmd.Flags().StringVar(&outExt, "ext", store.DefaultExt, "出力ファイルの拡張子")
	fetchCmd.Flags().IntVarP(&concurrency, "concurrency", "c",
		runner.DefaultConcurrency,
		"最大同時実行数 (1 は逐次実行)")
}
