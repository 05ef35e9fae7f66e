package parser

import "errors"

var (
	// ErrHeaderNotFound 在扫描窗口内找不到表头行
	ErrHeaderNotFound = errors.New("could not detect header row")
	// ErrPeriodNotFound 找不到可解析的监测周期
	ErrPeriodNotFound = errors.New("could not parse monitoring period dates")
)

// DefaultHeaderScanRows 表头识别默认扫描行数
const DefaultHeaderScanRows = 200

// HeaderKeyFields 用于识别 BSR 表头的逻辑字段
var HeaderKeyFields = []string{"market", "tv_channel", "date", "start_time"}
