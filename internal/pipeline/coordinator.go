// Package pipeline 按变体顺序串联各项质检，负责加载输入工作簿与汇总结果
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bsrqc/internal/config"
	"bsrqc/internal/model"
	"bsrqc/internal/service/excel"
)

// 事件类型
const (
	EventStart      = "start"
	EventCheckStart = "check_start"
	EventCheckDone  = "check_done"
	EventDone       = "done"
	EventError      = "error"
)

// Event 进度事件
type Event struct {
	Type      string    `json:"type"`            // start/check_start/check_done/done/error
	Check     string    `json:"check,omitempty"` // 当前检查名
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"` // check_done: []model.CheckSummary；done: *Result
	Timestamp time.Time `json:"timestamp"`
}

// Options 协调器选项
type Options struct {
	Rules    *config.Rules
	Observer func(Event)
}

// Input 一次运行的输入文件
type Input struct {
	Variant   Variant
	BSRPath   string
	RoscoPath string
	MacroPath string // 仅 league 变体需要
}

// Result 运行结果
type Result struct {
	Variant   Variant              `json:"variant"`
	Period    model.Period         `json:"period"`
	BSRSheet  string               `json:"bsr_sheet"`
	HeaderRow int                  `json:"header_row"`
	Checks    []string             `json:"checks"`
	Summaries []model.CheckSummary `json:"summaries"`
	Duration  time.Duration        `json:"duration"`
	Table     *model.Table         `json:"-"`
}

// Rows 结果表行数
func (r *Result) Rows() int {
	return r.Table.Len()
}

// Coordinator 质检协调器，不在两次运行之间保存状态
type Coordinator struct {
	rules    *config.Rules
	observer func(Event)
}

// NewCoordinator 创建协调器；未提供规则时使用默认规则
func NewCoordinator(opts Options) *Coordinator {
	rules := opts.Rules
	if rules == nil {
		rules = config.DefaultRules()
	}
	return &Coordinator{rules: rules, observer: opts.Observer}
}

// Rules 当前生效的规则
func (c *Coordinator) Rules() *config.Rules {
	return c.rules
}

// Run 同步执行一次质检
func (c *Coordinator) Run(in Input) (*Result, error) {
	return c.RunContext(context.Background(), in)
}

// RunContext 执行质检；ctx 取消时放弃当前运行并返回 ctx 的错误
func (c *Coordinator) RunContext(ctx context.Context, in Input) (*Result, error) {
	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := c.run(ctx, in)
		done <- outcome{res, err}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		return nil, stageError(StageCheck, ctx.Err())
	}
}

func (c *Coordinator) run(ctx context.Context, in Input) (*Result, error) {
	started := time.Now()
	variant, err := ParseVariant(string(in.Variant))
	if err != nil {
		return nil, c.fail(stageError(StageInput, err))
	}

	c.emit(Event{
		Type:    EventStart,
		Message: fmt.Sprintf("starting %s QC", variant),
		Data: map[string]string{
			"bsr":   filepath.Base(in.BSRPath),
			"rosco": filepath.Base(in.RoscoPath),
		},
	})

	refs := &references{rules: c.rules}
	res := &Result{Variant: variant}

	if err := c.loadRosco(in.RoscoPath, refs); err != nil {
		return nil, c.fail(err)
	}
	res.Period = refs.period

	bsr, err := c.loadBSR(in.BSRPath, refs)
	if err != nil {
		return nil, c.fail(err)
	}
	res.BSRSheet = bsr.Sheet
	res.HeaderRow = bsr.Header.Row

	if variant == VariantLeague {
		if err := c.loadMacro(in.MacroPath, refs); err != nil {
			return nil, c.fail(err)
		}
	}

	t := bsr.Table
	for _, s := range sequence(variant) {
		if err := ctx.Err(); err != nil {
			return nil, c.fail(stageError(StageCheck, err))
		}
		c.emit(Event{Type: EventCheckStart, Check: s.name, Message: fmt.Sprintf("running %s", s.name)})
		t = s.apply(t, refs)

		summaries := make([]model.CheckSummary, 0, len(s.concerns))
		for _, concern := range s.concerns {
			summaries = append(summaries, model.SummarizeColumn(t, concern.OK))
		}
		c.emit(Event{Type: EventCheckDone, Check: s.name, Message: fmt.Sprintf("%s finished", s.name), Data: summaries})
		res.Checks = append(res.Checks, s.name)
	}

	res.Table = t
	res.Summaries = model.Summarize(t)
	res.Duration = time.Since(started)
	c.emit(Event{Type: EventDone, Message: fmt.Sprintf("QC finished: %d rows", t.Len()), Data: res})
	return res, nil
}

func (c *Coordinator) loadRosco(path string, refs *references) error {
	wb, err := openInput(path)
	if err != nil {
		return stageError(StageRosco, err)
	}
	defer wb.Close()

	rosco, err := excel.LoadRosco(wb, c.rules)
	if err != nil {
		return stageError(StageRosco, err)
	}
	refs.period = rosco.Period
	refs.rosco = rosco.Roster
	return nil
}

func (c *Coordinator) loadBSR(path string, refs *references) (*excel.BSRSheet, error) {
	wb, err := openInput(path)
	if err != nil {
		return nil, stageError(StageBSR, err)
	}
	defer wb.Close()

	bsr, err := excel.LoadBSR(wb, c.rules)
	if err != nil {
		return nil, stageError(StageBSR, err)
	}
	refs.fixtures = excel.LoadFixtures(wb, c.rules)
	return bsr, nil
}

func (c *Coordinator) loadMacro(path string, refs *references) error {
	wb, err := openInput(path)
	if err != nil {
		return stageError(StageMacro, err)
	}
	defer wb.Close()

	refs.macro = excel.LoadMacro(wb, c.rules)
	return nil
}

// openInput 路径为空或文件不存在时返回 ErrReferenceMissing
func openInput(path string) (*excel.Workbook, error) {
	if path == "" {
		return nil, ErrReferenceMissing
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrReferenceMissing, filepath.Base(path))
		}
		return nil, err
	}
	return excel.Open(path)
}

func (c *Coordinator) fail(err error) error {
	c.emit(Event{Type: EventError, Message: err.Error()})
	return err
}

func (c *Coordinator) emit(evt Event) {
	if c.observer == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	c.observer(evt)
}
