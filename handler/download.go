package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fredoxntz/store-automation/service"
)

type DownloadHandler struct {
	store *service.Store
}

func NewDownloadHandler() *DownloadHandler {
	return &DownloadHandler{store: service.GetStore()}
}

// Get serves a generated spreadsheet by download id.
func (h *DownloadHandler) Get(c *gin.Context) {
	d := h.store.GetDownload(c.Param("id"))
	if d == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Download not found"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", escapeFilename(d.Filename)))
	c.Data(http.StatusOK, d.ContentType, d.Data)
}

// GetInfo returns download metadata without the file body.
func (h *DownloadHandler) GetInfo(c *gin.Context) {
	d := h.store.GetDownload(c.Param("id"))
	if d == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Download not found"})
		return
	}
	c.JSON(http.StatusOK, d)
}

// escapeFilename percent-encodes a filename for the RFC 5987
// Content-Disposition parameter; result filenames carry Korean labels.
func escapeFilename(name string) string {
	const hex = "0123456789ABCDEF"
	var out []byte
	for i := 0; i < len(name); i++ {
		b := name[i]
		if (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') ||
			b == '.' || b == '-' || b == '_' {
			out = append(out, b)
			continue
		}
		out = append(out, '%', hex[b>>4], hex[b&0x0f])
	}
	return string(out)
}
