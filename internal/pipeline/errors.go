package pipeline

import (
	"errors"
	"fmt"
)

// ErrReferenceMissing 必需的输入文件未提供或不存在
var ErrReferenceMissing = errors.New("required reference file missing")

// 致命错误所在阶段
const (
	StageInput = "input"
	StageRosco = "rosco"
	StageBSR   = "bsr"
	StageMacro = "macro"
	StageCheck = "check"
)

// Error 流水线致命错误
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func stageError(stage string, err error) error {
	return &Error{Stage: stage, Err: err}
}
