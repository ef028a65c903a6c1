package fetch

import (
	"fmt"

	"golang.org/x/net/idna"
)

// requestFormat は送信する唯一のリクエストです。
// Connection: close により、ピアはレスポンス送信後に接続を閉じます。
// そのため「EOFまで読む」ことがレスポンスの終端判定になります。
const requestFormat = "GET / HTTP/1.0\r\nHost: %s\r\nConnection: close\r\n\r\n"

// BuildRequest は、指定されたホストに対する HTTP/1.0 の GET リクエストを生成します。
// パスは常に "/" です。
func BuildRequest(host string) []byte {
	return []byte(fmt.Sprintf(requestFormat, asciiHost(host)))
}

// asciiHost は、国際化ドメイン名を ASCII (Punycode) 形式に変換します。
// 変換できない場合は入力をそのまま返します (検証は名前解決に任せる)。
func asciiHost(host string) string {
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil || ascii == "" {
		return host
	}
	return ascii
}
