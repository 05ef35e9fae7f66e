package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"bsrqc/internal/model"
)

var (
	annotationPattern = regexp.MustCompile(`\(.*?\)|\[.*?\]`)
	dashPattern       = regexp.MustCompile(`[-–—]`)
	nonAlnumPattern   = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// NormalizeColumnName 规范化列名：NFC、去首尾空白、转小写
func NormalizeColumnName(name string) string {
	return strings.ToLower(cleanSpaces(name))
}

func cleanSpaces(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(s)
}

// IsPresent 判断单元格是否有值
// 数值（包括 0）视为有值；字符串去空白后为空或为 nan/none 视为无值
func IsPresent(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case float64, float32, int, int64, bool:
		return true
	case model.Verdict:
		return true
	case string:
		s := strings.ToLower(cleanSpaces(x))
		return s != "" && s != "nan" && s != "none"
	default:
		s := strings.ToLower(model.CellText(x))
		return s != "" && s != "nan" && s != "none"
	}
}

// NormalizeText 比较用文本：NFC、去空白、小写；无值返回空串
func NormalizeText(v any) string {
	if !IsPresent(v) {
		return ""
	}
	return strings.ToLower(cleanSpaces(model.CellText(v)))
}

// NormalizeChannel 频道名规范化
// 去掉括号/方括号注释，取第一个破折号之前的部分，非字母数字替换为空格
func NormalizeChannel(v any) string {
	s := NormalizeText(v)
	if s == "" {
		return ""
	}
	s = annotationPattern.ReplaceAllString(s, "")
	s = dashPattern.Split(s, 2)[0]
	s = nonAlnumPattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ContainsAny 判断文本是否包含任一关键词（忽略大小写，空关键词忽略）
func ContainsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// InList 判断规范化后的值是否在列表中
func InList(value string, list []string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), value) {
			return true
		}
	}
	return false
}
