package qcrun

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"bsrqc/internal/pipeline"
	"bsrqc/internal/store"
)

func saveSheet(t *testing.T, dir, name string, sheets map[string][][]any, order []string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, sheet := range order {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				t.Fatalf("SetSheetName: %v", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("NewSheet: %v", err)
		}
		for r, row := range sheets[sheet] {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			values := row
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				t.Fatalf("SetSheetRow: %v", err)
			}
		}
	}
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func inputs(t *testing.T) (bsr, rosco string) {
	t.Helper()
	dir := t.TempDir()
	bsr = saveSheet(t, dir, "january.xlsx", map[string][][]any{
		"BSR": {
			{"Market", "TV-Channel", "Channel ID", "Date", "Start", "End"},
			{"Spain", "DAZN 1", "C1", "2025-01-10", "20:00", "22:00"},
		},
	}, []string{"BSR"})
	rosco = saveSheet(t, dir, "rosco.xlsx", map[string][][]any{
		"General":  {{"Monitoring Period", "2025-01-01 - 2025-01-31"}},
		"Channels": {{"ChannelCountry", "ChannelName"}, {"Spain", "DAZN 1"}},
	}, []string{"General", "Channels"})
	return bsr, rosco
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), store.DBFile))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestExecute_WritesReportAndRunLog(t *testing.T) {
	t.Parallel()
	st := openStore(t)
	exports := t.TempDir()
	bsr, rosco := inputs(t)

	r := NewRunner(Options{Store: st, ExportsDir: exports})
	out, err := r.Execute(context.Background(), Request{
		Variant: pipeline.VariantGeneral,
		BSR:     File{Path: bsr, Name: "January BSR.xlsx"},
		Rosco:   File{Path: rosco},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if filepath.Dir(out.ReportPath) != exports {
		t.Fatalf("report path=%s", out.ReportPath)
	}
	if _, err := os.Stat(out.ReportPath); err != nil {
		t.Fatalf("report missing: %v", err)
	}
	if out.ReportName != "January BSR_general_qc.xlsx" {
		t.Fatalf("report name=%s", out.ReportName)
	}

	run, err := st.GetRun(out.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != store.RunSucceeded || run.TotalRows != 1 || run.BSRFile != "January BSR.xlsx" {
		t.Fatalf("run=%+v", run)
	}
	if len(run.Checks) != len(out.Result.Summaries) {
		t.Fatalf("checks=%d summaries=%d", len(run.Checks), len(out.Result.Summaries))
	}
}

func TestExecute_FailureIsLogged(t *testing.T) {
	t.Parallel()
	st := openStore(t)
	bsr, rosco := inputs(t)

	r := NewRunner(Options{Store: st, ExportsDir: t.TempDir()})
	_, err := r.Execute(context.Background(), Request{
		Variant: pipeline.VariantLeague,
		BSR:     File{Path: bsr},
		Rosco:   File{Path: rosco},
	})
	if !errors.Is(err, pipeline.ErrReferenceMissing) {
		t.Fatalf("err=%v want ErrReferenceMissing", err)
	}

	runs, err := st.ListRuns(1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("runs=%v err=%v", runs, err)
	}
	if runs[0].Status != store.RunFailed || runs[0].ErrorStage != pipeline.StageMacro || runs[0].Variant != "league" {
		t.Fatalf("run=%+v", runs[0])
	}
}

func TestReportName(t *testing.T) {
	t.Parallel()
	if got := ReportName("week 3.xlsx", pipeline.VariantLeague); got != "week 3_league_qc.xlsx" {
		t.Fatalf("got=%s", got)
	}
	if got := ReportName(".xlsx", pipeline.VariantGeneral); got != "bsr_general_qc.xlsx" {
		t.Fatalf("got=%s", got)
	}
}
