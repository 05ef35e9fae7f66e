package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"bsrqc/internal/model"
)

// 运行状态
const (
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// ErrRunNotFound 运行记录不存在
var ErrRunNotFound = errors.New("run not found")

// Run 一次质检运行的记录
type Run struct {
	ID           string               `json:"id"`
	Variant      string               `json:"variant"`
	BSRFile      string               `json:"bsrFile"`
	RoscoFile    string               `json:"roscoFile"`
	MacroFile    string               `json:"macroFile,omitempty"`
	Status       string               `json:"status"`
	TotalRows    int                  `json:"totalRows"`
	PeriodStart  string               `json:"periodStart,omitempty"`
	PeriodEnd    string               `json:"periodEnd,omitempty"`
	ReportFile   string               `json:"reportFile,omitempty"`
	ErrorStage   string               `json:"errorStage,omitempty"`
	ErrorMessage string               `json:"errorMessage,omitempty"`
	DurationMS   int64                `json:"durationMs"`
	StartedAt    time.Time            `json:"startedAt"`
	CompletedAt  *time.Time           `json:"completedAt,omitempty"`
	Checks       []model.CheckSummary `json:"checks,omitempty"`
}

// RunOutcome 成功运行的结果
type RunOutcome struct {
	TotalRows  int
	Period     model.Period
	ReportFile string
	Duration   time.Duration
	Checks     []model.CheckSummary
}

// NewRunID 生成按时间排序的运行 ID
func NewRunID() string {
	return ulid.Make().String()
}

// CreateRun 写入一条运行中记录，ID 为空时自动生成
func (s *Store) CreateRun(run *Run) error {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Status = RunRunning
	_, err := s.db.Exec(`
		INSERT INTO qc_runs (id, variant, bsr_file, rosco_file, macro_file, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Variant, run.BSRFile, run.RoscoFile, run.MacroFile, run.Status, run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// FinishRun 标记运行成功并写入每列汇总
func (s *Store) FinishRun(id string, out RunOutcome) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE qc_runs SET
			status = ?,
			total_rows = ?,
			period_start = ?,
			period_end = ?,
			report_file = ?,
			duration_ms = ?,
			completed_at = ?
		WHERE id = ?
	`, RunSucceeded, out.TotalRows, formatDay(out.Period.Start), formatDay(out.Period.End),
		out.ReportFile, out.Duration.Milliseconds(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO qc_run_checks (run_id, check_column, total, passed, failed, not_applicable)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare check insert: %w", err)
	}
	defer stmt.Close()
	for _, c := range out.Checks {
		if _, err := stmt.Exec(id, c.Check, c.Total, c.Passed, c.Failed, c.NotApplicable); err != nil {
			return fmt.Errorf("failed to insert check %s: %w", c.Check, err)
		}
	}
	return tx.Commit()
}

// FailRun 标记运行失败
func (s *Store) FailRun(id, stage, message string, duration time.Duration) error {
	_, err := s.db.Exec(`
		UPDATE qc_runs SET status = ?, error_stage = ?, error_message = ?, duration_ms = ?, completed_at = ?
		WHERE id = ?
	`, RunFailed, stage, message, duration.Milliseconds(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}
	return nil
}

const runColumns = `id, variant, bsr_file, rosco_file, macro_file, status, total_rows, period_start, period_end,
	report_file, error_stage, error_message, duration_ms, started_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(sc rowScanner) (*Run, error) {
	var r Run
	var completed sql.NullTime
	if err := sc.Scan(&r.ID, &r.Variant, &r.BSRFile, &r.RoscoFile, &r.MacroFile, &r.Status, &r.TotalRows,
		&r.PeriodStart, &r.PeriodEnd, &r.ReportFile, &r.ErrorStage, &r.ErrorMessage, &r.DurationMS,
		&r.StartedAt, &completed); err != nil {
		return nil, err
	}
	if completed.Valid {
		t := completed.Time
		r.CompletedAt = &t
	}
	return &r, nil
}

// GetRun 读取单次运行及其检查汇总
func (s *Store) GetRun(id string) (*Run, error) {
	run, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM qc_runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query run failed: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT check_column, total, passed, failed, not_applicable
		FROM qc_run_checks WHERE run_id = ? ORDER BY rowid
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query run checks failed: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c model.CheckSummary
		if err := rows.Scan(&c.Check, &c.Total, &c.Passed, &c.Failed, &c.NotApplicable); err != nil {
			return nil, fmt.Errorf("scan run check failed: %w", err)
		}
		run.Checks = append(run.Checks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run checks failed: %w", err)
	}
	return run, nil
}

// ListRuns 最近的运行记录（新的在前）
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM qc_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs failed: %w", err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run failed: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs failed: %w", err)
	}
	return out, nil
}

// ClearReport 报告文件被清理后去掉引用
func (s *Store) ClearReport(reportFile string) error {
	if _, err := s.db.Exec(`UPDATE qc_runs SET report_file = '' WHERE report_file = ?`, reportFile); err != nil {
		return fmt.Errorf("failed to clear report reference: %w", err)
	}
	return nil
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
