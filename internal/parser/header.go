package parser

import (
	"fmt"
	"strings"
)

// HeaderMatch 表头识别结果
type HeaderMatch struct {
	Row     int      // 表头所在行（0 起）
	Matched []string // 命中的关键词
}

// DetectHeaderRow 在前 maxScan 行中查找表头行
// 行内非空单元格拼接后，至少包含 2 个关键词（子串、忽略大小写）即视为表头，取第一行
func DetectHeaderRow(rows [][]string, keyTerms []string, maxScan int) (HeaderMatch, error) {
	if maxScan <= 0 {
		maxScan = DefaultHeaderScanRows
	}
	terms := make([]string, 0, len(keyTerms))
	for _, k := range keyTerms {
		if k = NormalizeColumnName(k); k != "" {
			terms = append(terms, k)
		}
	}

	for i, row := range rows {
		if i >= maxScan {
			break
		}
		text := joinRow(row)
		if text == "" {
			continue
		}
		var matched []string
		for _, term := range terms {
			if strings.Contains(text, term) {
				matched = append(matched, term)
			}
		}
		if len(matched) >= 2 {
			return HeaderMatch{Row: i, Matched: matched}, nil
		}
	}
	return HeaderMatch{Row: -1}, fmt.Errorf("%w in first %d rows (key terms: %s)", ErrHeaderNotFound, maxScan, strings.Join(keyTerms, ", "))
}

// joinRow 拼接非空单元格（小写）
func joinRow(row []string) string {
	parts := make([]string, 0, len(row))
	for _, cell := range row {
		if c := cleanSpaces(cell); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// HeaderNames 规范化表头：去空白，空列命名为 Unnamed: i，重复列追加 .1/.2 后缀
func HeaderNames(row []string, width int) []string {
	if width < len(row) {
		width = len(row)
	}
	names := make([]string, width)
	seen := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(row) {
			name = cleanSpaces(row[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}
