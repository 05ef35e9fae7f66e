package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bsrqc/internal/model"
	"bsrqc/internal/pipeline"
	"bsrqc/internal/service/qcrun"
)

type runFlags struct {
	variant string
	bsr     string
	rosco   string
	macro   string
	out     string
	asJSON  bool
}

func newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run QC checks on a BSR workbook and write the report",
		Example: `  bsrqc run --bsr january.xlsx --rosco rosco.xlsx
  bsrqc run --variant league --bsr week3.xlsx --rosco rosco.xlsx --macro macro.xlsx --out week3_qc.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQC(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.variant, "variant", string(pipeline.VariantGeneral), "pipeline variant: general or league")
	cmd.Flags().StringVar(&f.bsr, "bsr", "", "BSR workbook (required)")
	cmd.Flags().StringVar(&f.rosco, "rosco", "", "Rosco workbook (required)")
	cmd.Flags().StringVar(&f.macro, "macro", "", "market duplication macro workbook (league variant)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "report path (default: <bsr>_<variant>_qc.xlsx next to the BSR)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the result summary as JSON")
	_ = cmd.MarkFlagRequired("bsr")
	_ = cmd.MarkFlagRequired("rosco")
	return cmd
}

func runQC(cmd *cobra.Command, f runFlags) error {
	variant, err := pipeline.ParseVariant(f.variant)
	if err != nil {
		return err
	}
	cfg, _, rules, err := loadSettings()
	if err != nil {
		return err
	}

	out := f.out
	if out == "" {
		out = filepath.Join(filepath.Dir(f.bsr), qcrun.ReportName(filepath.Base(f.bsr), variant))
	}

	runner := qcrun.NewRunner(qcrun.Options{
		Rules:   rules,
		Timeout: time.Duration(cfg.QC.TimeoutSeconds) * time.Second,
	})

	progress := newProgress(cmd.ErrOrStderr(), !f.asJSON && term.IsTerminal(int(os.Stderr.Fd())))
	defer progress.stop()

	outcome, err := runner.Execute(cmd.Context(), qcrun.Request{
		Variant:    variant,
		BSR:        qcrun.File{Path: f.bsr},
		Rosco:      qcrun.File{Path: f.rosco},
		Macro:      qcrun.File{Path: f.macro},
		Observer:   progress.observe,
		ReportPath: out,
	})
	progress.stop()
	if err != nil {
		return err
	}

	if f.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(runSummary{
			Variant:   outcome.Result.Variant,
			Rows:      outcome.Result.Rows(),
			Period:    outcome.Result.Period,
			Report:    out,
			Summaries: outcome.Result.Summaries,
		})
	}

	color.NoColor = color.NoColor || noColor
	printSummary(cmd.OutOrStdout(), outcome.Result, out)
	return nil
}

type runSummary struct {
	Variant   pipeline.Variant     `json:"variant"`
	Rows      int                  `json:"rows"`
	Period    model.Period         `json:"period"`
	Report    string               `json:"report"`
	Summaries []model.CheckSummary `json:"summaries"`
}

func printSummary(w io.Writer, res *pipeline.Result, report string) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(w, "%s %s variant, %d rows", bold("QC finished:"), res.Variant, res.Rows())
	if !res.Period.Start.IsZero() {
		fmt.Fprintf(w, ", period %s to %s", res.Period.Start.Format("2006-01-02"), res.Period.End.Format("2006-01-02"))
	}
	fmt.Fprintf(w, " (%s)\n\n", res.Duration.Round(time.Millisecond))

	fmt.Fprintf(w, "%-30s %8s %8s %8s %8s\n", "Check", "Total", "Passed", "Failed", "N/A")
	for _, s := range res.Summaries {
		failed := fmt.Sprintf("%8d", s.Failed)
		if s.Failed > 0 {
			failed = red(failed)
		} else {
			failed = green(failed)
		}
		fmt.Fprintf(w, "%-30s %8d %8d %s %s\n", s.Check, s.Total, s.Passed, failed, dim(fmt.Sprintf("%8d", s.NotApplicable)))
	}
	fmt.Fprintf(w, "\nReport: %s\n", report)
}

// progress 终端上用 spinner 显示当前检查，否则不输出
type progress struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
}

func newProgress(w io.Writer, enabled bool) *progress {
	if !enabled {
		return &progress{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = w
	s.Suffix = " loading workbooks"
	s.Start()
	return &progress{spinner: s}
}

func (p *progress) observe(evt pipeline.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner == nil || evt.Type != pipeline.EventCheckStart {
		return
	}
	p.spinner.Lock()
	p.spinner.Suffix = " " + evt.Check
	p.spinner.Unlock()
}

func (p *progress) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner != nil {
		p.spinner.Stop()
		p.spinner = nil
	}
}
