package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shouni/go-raw-fetch/pkg/inspect"
	"github.com/shouni/go-raw-fetch/pkg/store"
)

var (
	inspectDir string
	inspectExt string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "保存済みのレスポンスファイルの概要を表示します",
	Long:  `fetch が保存した連番のファイルを番号順に読み込み、サイズ、ステータス行、HTMLタイトルを表示します。`,
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		summaries, err := inspect.SummarizeDir(inspectDir, store.NormalizeExt(inspectExt))
		if err != nil {
			return fmt.Errorf("保存済みファイルの解析エラー: %w", err)
		}
		if len(summaries) == 0 {
			fmt.Printf("%s に対象のファイルがありません\n", inspectDir)
			return nil
		}

		fmt.Println("--- 保存済みレスポンス ---")
		for _, s := range summaries {
			fmt.Printf("%s (%d バイト)\n", s.Path, s.Size)
			if s.Size == 0 {
				fmt.Println("    (空)")
				continue
			}
			fmt.Printf("    ステータス: %s\n", s.StatusLine)
			fmt.Printf("    ヘッダ: %d バイト, ボディ: %d バイト\n", s.HeaderBytes, s.BodyBytes)
			if s.Title != "" {
				fmt.Printf("    タイトル: %s\n", s.Title)
			}
		}
		fmt.Println("-------------------------")

		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectDir, "dir", "d", ".", "保存済みファイルのディレクトリ")
	inspectCmd.Flags().StringVar(&inspectExt, "ext", store.DefaultExt, "保存済みファイルの拡張子")
}
