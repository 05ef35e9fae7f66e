package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bsrqc/internal/pipeline"
	"bsrqc/internal/store"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Status           string              `json:"status"`
	Version          string              `json:"version"`
	RulesPath        string              `json:"rulesPath"`
	RunLog           bool                `json:"runLog"`
	PendingDownloads int                 `json:"pendingDownloads"`
	UptimeSeconds    int64               `json:"uptimeSeconds"`
	Variants         map[string][]string `json:"variants"`
	LastRun          *store.Run          `json:"lastRun,omitempty"`
}

// GetStatus 获取系统状态
// GET /api/v1/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		Status:           "ok",
		Version:          h.version,
		RulesPath:        h.rulesPath,
		RunLog:           h.store != nil,
		PendingDownloads: h.downloads.len(),
		UptimeSeconds:    int64(time.Since(h.startedAt).Seconds()),
		Variants: map[string][]string{
			string(pipeline.VariantGeneral): pipeline.CheckNames(pipeline.VariantGeneral),
			string(pipeline.VariantLeague):  pipeline.CheckNames(pipeline.VariantLeague),
		},
	}
	if h.store != nil {
		if runs, err := h.store.ListRuns(1); err == nil && len(runs) > 0 {
			resp.LastRun = runs[0]
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetRules 返回生效的质检规则
// GET /api/v1/rules
func (h *Handler) GetRules(c *gin.Context) {
	data, err := h.runner.Rules().JSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode rules"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// ListRuns 最近的运行记录
// GET /api/v1/runs?limit=20
func (h *Handler) ListRuns(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []*store.Run{}})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := h.store.ListRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun 单次运行详情（含每列汇总）
// GET /api/v1/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run log disabled"})
		return
	}
	run, err := h.store.GetRun(c.Param("id"))
	if errors.Is(err, store.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}
