package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/use-agent/partscout/models"
	"github.com/use-agent/partscout/store"
)

// SavePDFInfo returns a handler for POST /api/save_pdf_info. An entry with
// a known id is replaced; one without an id gets a new one.
func SavePDFInfo(db *store.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var info models.PDFInfo
		if err := c.ShouldBindJSON(&info); err != nil {
			fail(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "no data provided", err)
			return
		}

		if err := db.PDFInfo().Put(&info); err != nil {
			fail(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to save PDF info", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "id": info.ID})
	}
}

// LoadPDFInfo returns a handler for GET /api/load_pdf_info. Entries are
// returned as a bare array with omitted fields defaulted.
func LoadPDFInfo(db *store.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := db.PDFInfo().List()
		if err != nil {
			fail(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to load PDF info", err)
			return
		}

		now := time.Now().Format(time.RFC3339)
		for i := range items {
			items[i].ApplyDefaults(now, uuid.NewString)
		}
		c.JSON(http.StatusOK, items)
	}
}

// DeletePDFInfo returns a handler for DELETE /api/delete_pdf_info/:id.
func DeletePDFInfo(db *store.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := db.PDFInfo().Delete(c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, models.ErrCodeNotFound, "PDF info not found", nil)
			return
		}
		if err != nil {
			fail(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to delete PDF info", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
