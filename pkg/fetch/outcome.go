package fetch

import (
	"errors"
	"io"
)

// ReadOutcome は、一回の Read 呼び出しの結果を分類します。
//
// ReadMore:    データを受信した (またはまだ受信できる)。読み込みを続行する。
// ReadEOF:     ピアが接続を閉じた。これは正常な終端です。
// ReadFailure: それ以外のI/Oエラー。
type ReadOutcome uint8

const (
	ReadFailure ReadOutcome = iota
	ReadMore
	ReadEOF
)

func (o ReadOutcome) String() string {
	switch o {
	case ReadMore:
		return "More"
	case ReadEOF:
		return "EOF"
	default:
		return "Failure"
	}
}

// ClassifyRead は Read が返したエラーを ReadOutcome に変換します。
// io.EOF (ラップされたものを含む) は失敗ではなく ReadEOF として扱います。
func ClassifyRead(err error) ReadOutcome {
	if err == nil {
		return ReadMore
	}
	if errors.Is(err, io.EOF) {
		return ReadEOF
	}
	return ReadFailure
}
