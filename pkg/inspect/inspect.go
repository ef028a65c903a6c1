package inspect

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	textUtils "github.com/shouni/go-utils/text"
)

// headerTerminator はヘッダとボディの境界です。
var headerTerminator = []byte("\r\n\r\n")

// Summary は、保存済みの生レスポンス一件の概要です。
type Summary struct {
	Path        string // 読み込んだファイルのパス (Summarize の場合は空)
	Size        int    // 全体のバイト数
	StatusLine  string // 先頭行 (例: "HTTP/1.0 200 OK")
	HeaderBytes int    // ヘッダ部 (終端の空行を含む) のバイト数
	BodyBytes   int    // ボディ部のバイト数
	Title       string // HTML の <title>。見つからない場合は空
}

// Summarize は、生レスポンスからステータス行とHTMLタイトルを取り出します。
// 空のレスポンスは、エラーではなくゼロ値の Summary になります。
func Summarize(raw []byte) (Summary, error) {
	s := Summary{Size: len(raw)}
	if len(raw) == 0 {
		return s, nil
	}

	// 1. 先頭行をステータス行とする
	firstLine, _, _ := bytes.Cut(raw, []byte("\n"))
	s.StatusLine = strings.TrimRight(string(firstLine), "\r")

	// 2. ヘッダとボディを分割
	idx := bytes.Index(raw, headerTerminator)
	if idx < 0 {
		s.HeaderBytes = len(raw)
		return s, nil
	}
	s.HeaderBytes = idx + len(headerTerminator)
	body := raw[s.HeaderBytes:]
	s.BodyBytes = len(body)
	if len(body) == 0 {
		return s, nil
	}

	// 3. ボディをHTMLとして解析し、タイトルを抽出
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return s, fmt.Errorf("HTML解析に失敗しました: %w", err)
	}
	s.Title = textUtils.NormalizeText(doc.Find("title").First().Text())

	return s, nil
}

// SummarizeFile はファイルを読み込み、Summarize の結果を返します。
func SummarizeFile(path string) (Summary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Summary{Path: path}, fmt.Errorf("ファイルの読み込みに失敗しました (%s): %w", path, err)
	}
	s, err := Summarize(raw)
	s.Path = path
	return s, err
}

// SummarizeDir は、dir 内の "<番号><ext>" 形式のファイルを番号順に要約します。
// 番号で始まらないファイルは無視します。
func SummarizeDir(dir, ext string) ([]Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ディレクトリの読み込みに失敗しました (%s): %w", dir, err)
	}

	type numbered struct {
		index int
		name  string
	}
	var files []numbered
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		index, err := strconv.Atoi(strings.TrimSuffix(entry.Name(), ext))
		if err != nil || index < 1 {
			continue
		}
		files = append(files, numbered{index: index, name: entry.Name()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].index < files[j].index })

	summaries := make([]Summary, 0, len(files))
	for _, f := range files {
		s, err := SummarizeFile(filepath.Join(dir, f.name))
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
