package types

// HostResult は、特定のホストから取得した結果、またはその処理中に発生したエラーを保持します。
// これは、Runner の出力、Store の入力として利用されます。
type HostResult struct {
	Host  string // 処理対象のホスト
	Body  []byte // 受信した生のレスポンス (ヘッダを含む)。失敗時は空の場合がある
	Error error  // 診断用のエラー。ファイル出力には影響しない
}
