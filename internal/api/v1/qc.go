package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bsrqc/internal/model"
	"bsrqc/internal/parser"
	"bsrqc/internal/pipeline"
	"bsrqc/internal/service/qcrun"
)

// 上传字段名
const (
	FieldBSR   = "bsr_file"
	FieldRosco = "rosco_file"
	FieldMacro = "macro_file"
)

// QCResponse 质检完成后的响应
type QCResponse struct {
	RunID       string               `json:"runId,omitempty"`
	Variant     pipeline.Variant     `json:"variant"`
	Rows        int                  `json:"rows"`
	PeriodStart string               `json:"periodStart"`
	PeriodEnd   string               `json:"periodEnd"`
	HeaderRow   int                  `json:"headerRow"`
	Checks      []string             `json:"checks"`
	Summaries   []model.CheckSummary `json:"summaries"`
	DurationMS  int64                `json:"durationMs"`
	ReportName  string               `json:"reportName"`
	DownloadURL string               `json:"downloadUrl"`
}

// RunGeneral 通用质检
// POST /api/v1/qc/general (multipart: rosco_file, bsr_file)
func (h *Handler) RunGeneral(c *gin.Context) {
	h.runQC(c, pipeline.VariantGeneral)
}

// RunLeague 联赛质检
// POST /api/v1/qc/league (multipart: rosco_file, bsr_file, macro_file)
func (h *Handler) RunLeague(c *gin.Context) {
	h.runQC(c, pipeline.VariantLeague)
}

func (h *Handler) runQC(c *gin.Context, variant pipeline.Variant) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	var saved []string
	defer func() {
		for _, p := range saved {
			_ = os.Remove(p)
		}
	}()

	files := make(map[string]qcrun.File, 3)
	for _, field := range []string{FieldRosco, FieldBSR, FieldMacro} {
		fh := firstFile(form, field)
		if fh == nil {
			continue
		}
		path, err := h.saveUpload(c, fh)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save upload"})
			return
		}
		saved = append(saved, path)
		files[field] = qcrun.File{Path: path, Name: filepath.Base(fh.Filename)}
	}
	if files[FieldRosco].Path == "" || files[FieldBSR].Path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rosco_file and bsr_file are required"})
		return
	}

	req := qcrun.Request{
		Variant: variant,
		BSR:     files[FieldBSR],
		Rosco:   files[FieldRosco],
		Macro:   files[FieldMacro],
	}

	if c.Query("stream") == "true" {
		h.streamQC(c, req)
		return
	}

	out, err := h.runner.Execute(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.respond(c, out))
}

// streamQC 以 SSE 推送进度事件，最后一个事件带下载地址
func (h *Handler) streamQC(c *gin.Context, req qcrun.Request) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	var mu sync.Mutex
	closed := false
	send := func(evt pipeline.Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		b, err := json.Marshal(evt)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}
	defer func() {
		mu.Lock()
		closed = true
		mu.Unlock()
	}()

	req.Observer = func(evt pipeline.Event) {
		// done 事件由下面带下载地址重新发送
		if evt.Type == pipeline.EventDone {
			return
		}
		send(evt)
	}

	out, err := h.runner.Execute(c.Request.Context(), req)
	if err != nil {
		// 流水线内部的失败已经通过观察者推送过
		var perr *pipeline.Error
		if !errors.As(err, &perr) || perr.Stage == pipeline.StageCheck {
			send(pipeline.Event{Type: pipeline.EventError, Message: err.Error(), Timestamp: time.Now()})
		}
		return
	}
	send(pipeline.Event{
		Type:      pipeline.EventDone,
		Message:   "QC finished",
		Data:      h.respond(c, out),
		Timestamp: time.Now(),
	})
}

func (h *Handler) respond(c *gin.Context, out *qcrun.Outcome) QCResponse {
	res := out.Result
	token := h.downloads.put(reportDownload{
		filePath: out.ReportPath,
		fileName: out.ReportName,
		runID:    out.RunID,
	}, h.downloadTTL)

	prefix := strings.TrimSuffix(c.FullPath(), "/qc/"+string(res.Variant))
	resp := QCResponse{
		RunID:       out.RunID,
		Variant:     res.Variant,
		Rows:        res.Rows(),
		HeaderRow:   res.HeaderRow,
		Checks:      res.Checks,
		Summaries:   res.Summaries,
		DurationMS:  res.Duration.Milliseconds(),
		ReportName:  out.ReportName,
		DownloadURL: fmt.Sprintf("%s/qc/download/%s", prefix, token),
	}
	if !res.Period.Start.IsZero() {
		resp.PeriodStart = res.Period.Start.Format("2006-01-02")
		resp.PeriodEnd = res.Period.End.Format("2006-01-02")
	}
	return resp
}

// DownloadReport 下载质检报告（一次性）
// GET /api/v1/qc/download/:token
func (h *Handler) DownloadReport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}

	item, ok := h.downloads.get(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download link expired"})
		return
	}
	if _, err := os.Stat(item.filePath); err != nil {
		h.downloads.delete(token)
		c.JSON(http.StatusNotFound, gin.H{"error": "report file not found"})
		return
	}

	c.Header("Content-Disposition", contentDisposition(item.fileName))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.File(item.filePath)

	h.downloads.delete(token)
	_ = os.Remove(item.filePath)
	if h.store != nil {
		_ = h.store.ClearReport(filepath.Base(item.filePath))
	}
}

func (h *Handler) saveUpload(c *gin.Context, fh *multipart.FileHeader) (string, error) {
	dir := h.uploadsDir
	if dir == "" {
		dir = os.TempDir()
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		ext = ".xlsx"
	}
	path := filepath.Join(dir, fmt.Sprintf("bsrqc_upload_%s%s", uuid.New().String(), ext))
	if err := c.SaveUploadedFile(fh, path); err != nil {
		return "", err
	}
	return path, nil
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if files := form.File[field]; len(files) > 0 {
		return files[0]
	}
	return nil
}

// statusFor 将运行错误映射为 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrReferenceMissing):
		return http.StatusBadRequest
	case errors.Is(err, parser.ErrHeaderNotFound), errors.Is(err, parser.ErrPeriodNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		var perr *pipeline.Error
		if errors.As(err, &perr) && perr.Stage != pipeline.StageCheck {
			return http.StatusUnprocessableEntity
		}
		return http.StatusInternalServerError
	}
}

func contentDisposition(name string) string {
	ascii := strings.Map(func(r rune) rune {
		if r > 127 || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, ascii, url.PathEscape(name))
}
