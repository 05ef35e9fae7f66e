// Package qcrun 把一次质检运行串起来：执行流水线、导出报告、写运行日志
package qcrun

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"bsrqc/internal/config"
	"bsrqc/internal/pipeline"
	"bsrqc/internal/service/excel"
	"bsrqc/internal/store"
)

// Runner 质检运行服务
type Runner struct {
	rules      *config.Rules
	store      *store.Store // 可为 nil：不记录运行日志
	exportsDir string
	timeout    time.Duration
}

// Options 运行服务选项
type Options struct {
	Rules      *config.Rules
	Store      *store.Store
	ExportsDir string
	Timeout    time.Duration
}

// NewRunner 创建运行服务
func NewRunner(opts Options) *Runner {
	rules := opts.Rules
	if rules == nil {
		rules = config.DefaultRules()
	}
	dir := opts.ExportsDir
	if dir == "" {
		dir = os.TempDir()
	}
	return &Runner{rules: rules, store: opts.Store, exportsDir: dir, timeout: opts.Timeout}
}

// Rules 生效的规则
func (r *Runner) Rules() *config.Rules {
	return r.rules
}

// File 一个输入文件：磁盘路径与用户可见的文件名
type File struct {
	Path string
	Name string
}

func (f File) displayName() string {
	if f.Name != "" {
		return f.Name
	}
	return filepath.Base(f.Path)
}

// Request 一次运行请求
type Request struct {
	Variant  pipeline.Variant
	BSR      File
	Rosco    File
	Macro    File
	Observer func(pipeline.Event)
	// ReportPath 指定报告输出路径；为空时写入导出目录
	ReportPath string
}

// Outcome 运行结果
type Outcome struct {
	RunID      string           `json:"runId,omitempty"`
	Result     *pipeline.Result `json:"result"`
	ReportPath string           `json:"-"`
	ReportName string           `json:"reportName"`
}

// Execute 执行质检并导出报告
func (r *Runner) Execute(ctx context.Context, req Request) (*Outcome, error) {
	started := time.Now()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	runID, err := r.beginRun(req)
	if err != nil {
		return nil, err
	}

	coord := pipeline.NewCoordinator(pipeline.Options{Rules: r.rules, Observer: req.Observer})
	res, err := coord.RunContext(ctx, pipeline.Input{
		Variant:   req.Variant,
		BSRPath:   req.BSR.Path,
		RoscoPath: req.Rosco.Path,
		MacroPath: req.Macro.Path,
	})
	if err != nil {
		r.failRun(runID, err, time.Since(started))
		return nil, err
	}

	reportPath := req.ReportPath
	if reportPath == "" {
		reportPath = filepath.Join(r.exportsDir, fmt.Sprintf("bsrqc_%s_%s.xlsx", res.Variant, uuid.New().String()))
	}
	if err := excel.NewReport(r.rules.FileRules).Save(reportPath, res.Table, res.Summaries); err != nil {
		r.failRun(runID, err, time.Since(started))
		return nil, err
	}

	if r.store != nil {
		if err := r.store.FinishRun(runID, store.RunOutcome{
			TotalRows:  res.Rows(),
			Period:     res.Period,
			ReportFile: filepath.Base(reportPath),
			Duration:   time.Since(started),
			Checks:     res.Summaries,
		}); err != nil {
			return nil, err
		}
	}

	return &Outcome{
		RunID:      runID,
		Result:     res,
		ReportPath: reportPath,
		ReportName: ReportName(req.BSR.displayName(), res.Variant),
	}, nil
}

func (r *Runner) beginRun(req Request) (string, error) {
	if r.store == nil {
		return "", nil
	}
	variant, err := pipeline.ParseVariant(string(req.Variant))
	if err != nil {
		variant = req.Variant
	}
	run := &store.Run{
		Variant:   string(variant),
		BSRFile:   req.BSR.displayName(),
		RoscoFile: req.Rosco.displayName(),
	}
	if req.Macro.Path != "" {
		run.MacroFile = req.Macro.displayName()
	}
	if err := r.store.CreateRun(run); err != nil {
		return "", err
	}
	return run.ID, nil
}

func (r *Runner) failRun(runID string, err error, d time.Duration) {
	if r.store == nil || runID == "" {
		return
	}
	stage := "report"
	var perr *pipeline.Error
	if errors.As(err, &perr) {
		stage = perr.Stage
	}
	_ = r.store.FailRun(runID, stage, err.Error(), d)
}

// ReportName 下载时使用的报告文件名
func ReportName(bsrName string, variant pipeline.Variant) string {
	base := bsrName[:len(bsrName)-len(filepath.Ext(bsrName))]
	if base == "" {
		base = "bsr"
	}
	return fmt.Sprintf("%s_%s_qc.xlsx", base, variant)
}
