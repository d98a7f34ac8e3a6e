package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fredoxntz/store-automation/config"
	"github.com/fredoxntz/store-automation/model"
	"github.com/fredoxntz/store-automation/pkg/logger"
	"github.com/fredoxntz/store-automation/service"
)

type CoupangHandler struct {
	store   *service.Store
	archive *service.ArchiveService
	config  *config.Config
}

func NewCoupangHandler(archive *service.ArchiveService, cfg *config.Config) *CoupangHandler {
	return &CoupangHandler{
		store:   service.GetStore(),
		archive: archive,
		config:  cfg,
	}
}

// OrderForm converts a raw Coupang export into the CJ order-submission
// file in one step; Coupang has no option-review workflow.
func (h *CoupangHandler) OrderForm(c *gin.Context) {
	raw, ok := readTableUpload(c, "file", 0)
	if !ok {
		return
	}

	sender := service.LoadSenderDefaults(&h.config.Sender)
	table, err := service.BuildCoupangOrderForm(raw, sender)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("쿠팡_CJ발주서_%s.xlsx", datestamp())
	download, ok := storeResult(c, h.store, h.archive, model.ShopCoupang, filename, table)
	if !ok {
		return
	}

	logger.Info(c.Request.Context(), "coupang cj orders generated",
		"download_id", download.ID,
		"count", download.RowCount,
	)

	c.JSON(http.StatusOK, gin.H{
		"download_id": download.ID,
		"filename":    download.Filename,
		"count":       download.RowCount,
		"archive_url": download.ArchiveURL,
	})
}

// Bulk reconciles a raw Coupang export with the carrier receipt export
// into the bulk tracking-number upload file.
func (h *CoupangHandler) Bulk(c *gin.Context) {
	raw, ok := readTableUpload(c, "raw", 0)
	if !ok {
		return
	}
	receipt, ok := readTableUpload(c, "receipt", 0)
	if !ok {
		return
	}

	columns := service.LoadBulkColumns(h.config.Schema.CoupangBulkExample, nil)
	table, diag, err := service.ReconcileCoupangBulk(raw, receipt, columns)
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

	filename := fmt.Sprintf("쿠팡_대량등록_%s.xlsx", datestamp())
	download, ok := storeResult(c, h.store, h.archive, model.ShopCoupang, filename, table)
	if !ok {
		return
	}

	logger.Info(c.Request.Context(), "coupang bulk reconciled",
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
