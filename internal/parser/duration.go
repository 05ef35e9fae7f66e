package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var nonDigitPattern = regexp.MustCompile(`[^0-9]`)

// ParseDurationMinutes 将时长转换为分钟
// 数值直接视为分钟；"H:MM" / "H:MM:SS" 按时分秒换算；纯数字字符串视为分钟
// 无法解析时返回 ok=false，不会 panic
func ParseDurationMinutes(v any) (minutes float64, ok bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case time.Duration:
		return x.Minutes(), true
	case time.Time:
		// Excel 时长单元格被读成当天的时刻
		return float64(x.Hour()*60+x.Minute()) + float64(x.Second())/60, true
	case string:
		return parseDurationText(x)
	default:
		return 0, false
	}
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseDurationText(s string) (float64, bool) {
	s = cleanSpaces(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "none") {
		return 0, false
	}
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return 0, false
		}
		nums := make([]float64, 3)
		for i, p := range parts {
			digits := nonDigitPattern.ReplaceAllString(p, "")
			if digits == "" {
				return 0, false
			}
			n, err := strconv.Atoi(digits)
			if err != nil {
				return 0, false
			}
			nums[i] = float64(n)
		}
		return nums[0]*60 + nums[1] + nums[2]/60, true
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}
