package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fredoxntz/store-automation/model"
	"github.com/fredoxntz/store-automation/pkg/logger"
	"github.com/fredoxntz/store-automation/service"
)

// readTableUpload reads one multipart file field and decodes it into a
// table. The password form field of the same name with a "_password"
// suffix unlocks protected workbooks; headerRow is the zero-based
// header index (Naver raw exports keep a notice line above the header).
func readTableUpload(c *gin.Context, field string, headerRow int) (*model.Table, bool) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No " + field + " file provided"})
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return nil, false
	}

	password := c.PostForm(field + "_password")
	table, err := service.DecodeTable(data, password, headerRow)
	if err != nil {
		logger.Warn(c.Request.Context(), "failed to decode upload",
			"field", field,
			"filename", header.Filename,
			"error", err,
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return table, true
}

// respondServiceError translates service-layer errors to HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "missing_columns": vErr.Missing})
	case errors.Is(err, service.ErrDecryptFailed), errors.Is(err, service.ErrMissingKeyColumn):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// storeResult encodes a table, saves it as a download, and archives a
// copy. Archive failures are logged and ignored; the download is always
// served from memory.
func storeResult(c *gin.Context, store *service.Store, archive *service.ArchiveService, shop, filename string, table *model.Table) (*model.Download, bool) {
	data, err := service.EncodeTable(table)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to serialize result: " + err.Error()})
		return nil, false
	}

	download := &model.Download{
		ID:          uuid.New().String(),
		Filename:    filename,
		ContentType: model.XLSXContentType,
		Data:        data,
		RowCount:    table.Len(),
		CreatedAt:   time.Now(),
	}

	if archive != nil {
		url, err := archive.ArchiveFile(c.Request.Context(), shop, filename, data)
		if err != nil {
			logger.Warn(c.Request.Context(), "failed to archive result",
				"shop", shop,
				"filename", filename,
				"error", err,
			)
		} else {
			download.ArchiveURL = url
		}
	}

	store.SaveDownload(download)
	return download, true
}

// datestamp is the two-digit-year stamp embedded in result filenames.
func datestamp() string {
	return time.Now().Format("060102")
}
