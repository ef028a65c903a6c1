package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shouni/go-raw-fetch/pkg/types"
)

const (
	// DefaultExt は出力ファイルの拡張子です。
	DefaultExt = ".html"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Store は、結果を 1 から始まる連番のファイルとして保存します。
type Store struct {
	dir string
	ext string
}

// New は Store を初期化し、出力ディレクトリを作成します。
func New(dir, ext string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("出力ディレクトリの作成に失敗しました (%s): %w", dir, err)
	}
	return &Store{
		dir: dir,
		ext: NormalizeExt(ext),
	}, nil
}

// NormalizeExt は拡張子を "." 始まりに揃えます。空の場合は DefaultExt を返します。
func NormalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return DefaultExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Dir は出力ディレクトリを返します。
func (s *Store) Dir() string {
	return s.dir
}

// Ext は出力ファイルの拡張子を返します。
func (s *Store) Ext() string {
	return s.ext
}

// FileName は i 番目 (1 始まり) のファイル名を返します。
func (s *Store) FileName(i int) string {
	return strconv.Itoa(i) + s.ext
}

// Path は i 番目 (1 始まり) のファイルのパスを返します。
func (s *Store) Path(i int) string {
	return filepath.Join(s.dir, s.FileName(i))
}

// WriteAll は results[i].Body を i+1 番目のファイルにそのまま書き込み、書き込んだパスを順に返します。
// ボディが空の結果も空のファイルとして書き込みます。
func (s *Store) WriteAll(results []types.HostResult) ([]string, error) {
	paths := make([]string, 0, len(results))
	for i, res := range results {
		path := s.Path(i + 1)
		if err := os.WriteFile(path, res.Body, filePerm); err != nil {
			return paths, fmt.Errorf("ファイルの書き込みに失敗しました (host: %s, path: %s): %w", res.Host, path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
