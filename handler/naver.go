package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fredoxntz/store-automation/config"
	"github.com/fredoxntz/store-automation/middleware"
	"github.com/fredoxntz/store-automation/model"
	"github.com/fredoxntz/store-automation/pkg/logger"
	"github.com/fredoxntz/store-automation/service"
)

// naverRawHeaderRow skips the notice line Naver prepends to its order
// exports.
const naverRawHeaderRow = 1

type NaverHandler struct {
	store   *service.Store
	archive *service.ArchiveService
	dates   *service.DateNormalizer
	config  *config.Config
}

func NewNaverHandler(archive *service.ArchiveService, dates *service.DateNormalizer, cfg *config.Config) *NaverHandler {
	return &NaverHandler{
		store:   service.GetStore(),
		archive: archive,
		dates:   dates,
		config:  cfg,
	}
}

// UploadCJ starts a Naver CJ order workflow: decode the raw export,
// split the option-description strings, and hold the intermediate table
// for review.
func (h *NaverHandler) UploadCJ(c *gin.Context) {
	raw, ok := readTableUpload(c, "file", naverRawHeaderRow)
	if !ok {
		return
	}

	rows, err := service.BuildNaverIntermediate(raw)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	wf := &model.Workflow{
		ID:           uuid.New().String(),
		Shop:         model.ShopNaver,
		State:        model.StateReview,
		Username:     middleware.GetUsername(c),
		Intermediate: rows,
		CreatedAt:    time.Now(),
	}
	h.store.SaveWorkflow(wf)

	logger.Info(c.Request.Context(), "naver workflow created",
		"workflow_id", wf.ID,
		"rows", len(rows),
	)

	c.JSON(http.StatusOK, gin.H{
		"id":    wf.ID,
		"state": wf.State,
		"rows":  rows,
		"count": len(rows),
	})
}

// debugEvent is one normalizer side-channel event, collected and
// returned so the caller can render the batch log.
type debugEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// NormalizeDates runs the AI date normalizer over the workflow's
// intermediate rows. Phrases that could not be normalized carry inline
// error markers for the operator to correct during review.
func (h *NaverHandler) NormalizeDates(c *gin.Context) {
	wf, ok := h.reviewWorkflow(c)
	if !ok {
		return
	}

	var events []debugEvent
	var batches int
	progress := func(batch, total int) {
		batches = total
	}
	debug := func(event string, data any) {
		events = append(events, debugEvent{Event: event, Data: data})
	}

	h.dates.NormalizeIntermediate(c.Request.Context(), wf.Intermediate, progress, debug)
	h.store.SaveWorkflow(wf)

	logger.Info(c.Request.Context(), "naver dates normalized",
		"workflow_id", wf.ID,
		"batches", batches,
	)

	c.JSON(http.StatusOK, gin.H{
		"id":      wf.ID,
		"state":   wf.State,
		"rows":    wf.Intermediate,
		"batches": batches,
		"debug":   events,
	})
}

type dateEdit struct {
	Row  int    `json:"row"`
	Date string `json:"date"`
}

type updateDatesRequest struct {
	Edits []dateEdit `json:"edits" binding:"required"`
}

// UpdateDates applies manual review corrections to normalized dates.
func (h *NaverHandler) UpdateDates(c *gin.Context) {
	wf, ok := h.reviewWorkflow(c)
	if !ok {
		return
	}

	var req updateDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	for _, edit := range req.Edits {
		if edit.Row < 0 || edit.Row >= len(wf.Intermediate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Row index %d out of range", edit.Row)})
			return
		}
		wf.Intermediate[edit.Row].NormalizedDate = edit.Date
	}
	h.store.SaveWorkflow(wf)

	c.JSON(http.StatusOK, gin.H{
		"id":    wf.ID,
		"state": wf.State,
		"rows":  wf.Intermediate,
	})
}

// GenerateCJ assembles the final sorted CJ order file from the reviewed
// intermediate rows and moves the workflow to its terminal state.
func (h *NaverHandler) GenerateCJ(c *gin.Context) {
	wf, ok := h.reviewWorkflow(c)
	if !ok {
		return
	}

	sender := service.LoadSenderDefaults(&h.config.Sender)
	table := service.GenerateNaverOrders(wf.Intermediate, sender)

	filename := fmt.Sprintf("네이버_CJ발주서_%s.xlsx", datestamp())
	download, ok := storeResult(c, h.store, h.archive, model.ShopNaver, filename, table)
	if !ok {
		return
	}

	wf.State = model.StateGenerate
	wf.DownloadID = download.ID
	h.store.SaveWorkflow(wf)

	logger.Info(c.Request.Context(), "naver cj orders generated",
		"workflow_id", wf.ID,
		"download_id", download.ID,
		"count", download.RowCount,
	)

	c.JSON(http.StatusOK, gin.H{
		"id":          wf.ID,
		"state":       wf.State,
		"download_id": download.ID,
		"filename":    download.Filename,
		"count":       download.RowCount,
		"archive_url": download.ArchiveURL,
	})
}

// GetWorkflow returns the workflow state and intermediate rows.
func (h *NaverHandler) GetWorkflow(c *gin.Context) {
	wf := h.store.GetWorkflow(c.Param("id"))
	if wf == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workflow not found"})
		return
	}
	c.JSON(http.StatusOK, wf)
}

// DeleteWorkflow discards a workflow so the operator can start over.
func (h *NaverHandler) DeleteWorkflow(c *gin.Context) {
	wf := h.store.GetWorkflow(c.Param("id"))
	if wf == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workflow not found"})
		return
	}
	h.store.DeleteWorkflow(wf.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Workflow deleted"})
}

// Bulk reconciles a raw Naver export with the carrier receipt export
// into the bulk tracking-number upload file.
func (h *NaverHandler) Bulk(c *gin.Context) {
	raw, ok := readTableUpload(c, "raw", naverRawHeaderRow)
	if !ok {
		return
	}
	receipt, ok := readTableUpload(c, "receipt", 0)
	if !ok {
		return
	}

	columns := service.LoadBulkColumns(h.config.Schema.NaverBulkExample, nil)
	table, diag, err := service.ReconcileNaverBulk(raw, receipt, columns)
	if err != nil {
		if errors.Is(err, service.ErrNoMatches) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":       err.Error(),
				"diagnostics": diag,
			})
			return
		}
		respondServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("네이버_대량등록_%s.xlsx", datestamp())
	download, ok := storeResult(c, h.store, h.archive, model.ShopNaver, filename, table)
	if !ok {
		return
	}

	logger.Info(c.Request.Context(), "naver bulk reconciled",
		"download_id", download.ID,
		"matched", diag.MatchedCount,
		"filled", diag.FilledCount,
		"total", diag.TotalCount,
	)

	c.JSON(http.StatusOK, gin.H{
		"download_id": download.ID,
		"filename":    download.Filename,
		"count":       download.RowCount,
		"archive_url": download.ArchiveURL,
		"diagnostics": diag,
	})
}

// reviewWorkflow loads the workflow from the path and requires it to be
// in the review state.
func (h *NaverHandler) reviewWorkflow(c *gin.Context) (*model.Workflow, bool) {
	wf := h.store.GetWorkflow(c.Param("id"))
	if wf == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workflow not found"})
		return nil, false
	}
	if wf.State != model.StateReview {
		c.JSON(http.StatusConflict, gin.H{"error": "Workflow is not in review state", "state": wf.State})
		return nil, false
	}
	return wf, true
}
