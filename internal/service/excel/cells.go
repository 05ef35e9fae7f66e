package excel

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// cellKind 由数字格式决定的单元格类别
type cellKind int8

const (
	kindNumber cellKind = iota
	kindDate
	kindTime
	kindDateTime
)

// 内置数字格式中的日期/时间格式
var builtinKinds = map[int]cellKind{
	14: kindDate, 15: kindDate, 16: kindDate, 17: kindDate,
	18: kindTime, 19: kindTime, 20: kindTime, 21: kindTime,
	22: kindDateTime,
	27: kindDate, 28: kindDate, 29: kindDate, 30: kindDate, 31: kindDate,
	32: kindTime, 33: kindTime,
	34: kindDate, 35: kindDate, 36: kindDate,
	45: kindTime, 46: kindTime, 47: kindTime,
	50: kindDate, 51: kindDate, 52: kindDate, 53: kindDate, 54: kindDate,
	55: kindDate, 56: kindDate, 57: kindDate, 58: kindDate,
}

var elapsedToken = regexp.MustCompile(`^[hms]+$`)

// numFmtKind 按格式代码判断类别，只看第一段
// 引号内文字、转义字符、[Red]/[$-409] 之类的方括号段不参与判断，[h] 等累计时间保留
func numFmtKind(code string) cellKind {
	var b strings.Builder
	quoted := false
scan:
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case ch == '"':
			quoted = !quoted
		case quoted:
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		case ch == ';':
			break scan
		case ch == '[':
			end := strings.IndexByte(code[i:], ']')
			if end < 0 {
				break scan
			}
			if inner := strings.ToLower(code[i+1 : i+end]); elapsedToken.MatchString(inner) {
				b.WriteString(inner)
			}
			i += end
		default:
			b.WriteByte(ch)
		}
	}

	s := strings.ToLower(b.String())
	hasDate := strings.ContainsAny(s, "yd")
	hasTime := strings.ContainsAny(s, "hs")
	switch {
	case hasDate && hasTime:
		return kindDateTime
	case hasDate:
		return kindDate
	case hasTime:
		return kindTime
	default:
		return kindNumber
	}
}

// styleKind 样式对应的类别（按样式 ID 缓存）
func (w *Workbook) styleKind(id int) cellKind {
	if k, ok := w.kinds[id]; ok {
		return k
	}
	k := kindNumber
	if style, err := w.file.GetStyle(id); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			k = numFmtKind(*style.CustomNumFmt)
		} else {
			k = builtinKinds[style.NumFmt]
		}
	}
	w.kinds[id] = k
	return k
}

// storedText 显示值与存储值不同的单元格：日期/时刻按存储值输出 ISO 文本，其余保留显示值
func (w *Workbook) storedText(sheet string, col, row int, shown, stored string) string {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return shown
	}
	styleID, err := w.file.GetCellStyle(sheet, cell)
	if err != nil {
		return shown
	}
	kind := w.styleKind(styleID)
	if kind == kindNumber {
		return shown
	}

	serial, err := strconv.ParseFloat(stored, 64)
	if err != nil {
		// t="d" 单元格直接存 ISO 时间
		if t, ok := parseStoredTime(stored); ok {
			return formatKind(t, kind)
		}
		return shown
	}
	if serial < 0 || math.IsNaN(serial) || math.IsInf(serial, 0) {
		return shown
	}

	if kind == kindTime || serial < 1 {
		return formatClock(serial)
	}
	t, err := excelize.ExcelDateToTime(serial, w.date1904)
	if err != nil {
		return shown
	}
	return formatKind(t, kind)
}

func formatKind(t time.Time, kind cellKind) string {
	switch kind {
	case kindDateTime:
		return t.Format("2006-01-02 15:04:05")
	case kindTime:
		return t.Format("15:04:05")
	default:
		return t.Format("2006-01-02")
	}
}

// formatClock 一天的比例转 H:MM:SS；累计时间可超过 24 小时
func formatClock(serial float64) string {
	secs := int64(math.Round(serial * 86400))
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}

func parseStoredTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
