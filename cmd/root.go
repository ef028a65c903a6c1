package cmd

import (
	"log"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-raw-fetch/pkg/fetch"
)

// --- グローバル定数 ---

const (
	appName           = "raw-fetch"
	defaultTimeoutSec = 0 // 秒。0 はタイムアウトなし
)

// --- グローバル変数とフラグ構造体 ---

// AppFlags はこのアプリケーション固有の永続フラグを保持
type AppFlags struct {
	TimeoutSec int // --timeout 一件あたりのフェッチのタイムアウト
}

var Flags AppFlags               // アプリケーション固有フラグにアクセスするためのグローバル変数
var globalFetcher *fetch.Fetcher // PersistentPreRunE で初期化される共有フェッチャー

// --- 初期化とロジック (clibaseへのコールバックとして利用) ---

// addAppPersistentFlags は、アプリケーション固有の永続フラグをルートコマンドに追加します。
func addAppPersistentFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().IntVar(
		&Flags.TimeoutSec,
		"timeout",
		defaultTimeoutSec,
		"一件あたりのフェッチのタイムアウト時間（秒）。0 の場合はタイムアウトしません",
	)
}

// initAppPreRunE は、clibase共通処理の後に実行される、アプリケーション固有のPersistentPreRunEです。
// NOTE: clibaseの PersistentPreRunE チェーンにより、clibase.Flags.Verbose はこの関数実行前に設定済み
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	timeout := time.Duration(Flags.TimeoutSec) * time.Second

	if clibase.Flags.Verbose {
		if timeout > 0 {
			log.Printf("フェッチのタイムアウトを設定しました (Timeout: %s)。", timeout)
		} else {
			log.Printf("フェッチのタイムアウトは設定されていません。応答しないホストでは処理が終了しません。")
		}
	}

	// 共有フェッチャーの初期化
	globalFetcher = fetch.New(fetch.WithTimeout(timeout))

	return nil
}

// GetGlobalFetcher は、初期化されたフェッチャーを返す関数 (DIの代わり)
func GetGlobalFetcher() *fetch.Fetcher {
	return globalFetcher
}

// --- エントリポイント ---

// Execute は、ルートコマンドを実行するメイン関数です。clibaseのExecuteを使用する。
func Execute() {
	clibase.Execute(
		appName,
		addAppPersistentFlags,
		initAppPreRunE,
		fetchCmd,
		inspectCmd,
	)
}
