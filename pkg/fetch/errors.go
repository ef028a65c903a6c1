package fetch

import (
	"errors"
	"fmt"
)

// Stage は、フェッチ処理のどの段階で失敗したかを表します。
type Stage string

const (
	StageResolve Stage = "resolve"
	StageConnect Stage = "connect"
	StageWrite   Stage = "write"
	StageRead    Stage = "read"
)

var (
	// ErrNoEndpoints は、名前解決の結果が空だった場合に返されます。
	ErrNoEndpoints = errors.New("接続先エンドポイントがありません")
	// ErrHostNotFound は、StaticResolver に登録されていないホストに対して返されます。
	ErrHostNotFound = errors.New("ホストが見つかりません")
)

// StageError は、失敗した段階と対象ホストを元のエラーに付加します。
type StageError struct {
	Stage Stage
	Host  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("ホスト %s の %s 段階で失敗しました: %v", e.Host, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf は、エラーチェーン中の StageError から失敗段階を取り出します。
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
