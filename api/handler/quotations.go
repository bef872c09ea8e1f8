package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/partscout/models"
	"github.com/use-agent/partscout/store"
)

type quotationInput struct {
	PDFData         *string `json:"pdfData"`
	CustomerName    *string `json:"customerName"`
	Phone           *string `json:"phone"`
	QuotationNumber *string `json:"quotationNumber"`
}

// SaveQuotation returns a handler for POST /api/quotations. pdfData is
// base64, optionally prefixed with a data: URI header.
func SaveQuotation(q *store.Quotations) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in quotationInput
		if err := c.ShouldBindJSON(&in); err != nil || in.PDFData == nil {
			fail(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "no PDF data provided", err)
			return
		}

		var missing []string
		if in.CustomerName == nil {
			missing = append(missing, "customerName")
		}
		if in.Phone == nil {
			missing = append(missing, "phone")
		}
		if in.QuotationNumber == nil {
			missing = append(missing, "quotationNumber")
		}
		if len(missing) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "missing required fields",
				"code":    models.ErrCodeInvalidInput,
				"missing": missing,
			})
			return
		}

		pdf, err := store.DecodePDF(*in.PDFData)
		if err != nil {
			fail(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "invalid PDF data", err)
			return
		}

		quotation := &models.Quotation{
			CustomerName:    *in.CustomerName,
			Phone:           *in.Phone,
			QuotationNumber: *in.QuotationNumber,
		}
		if err := q.Save(quotation, pdf); err != nil {
			fail(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to save quotation", err)
			return
		}

		slog.Info("quotation saved", "id", quotation.ID, "number", quotation.QuotationNumber, "bytes", len(pdf))
		c.JSON(http.StatusCreated, gin.H{"success": true, "quotation": quotation})
	}
}

// ListQuotations returns a handler for GET /api/quotations, newest first.
func ListQuotations(q *store.Quotations) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := q.List()
		if err != nil {
			fail(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to list quotations", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "quotations": items})
	}
}

// GetQuotation returns a handler for GET /api/quotations/:id that streams
// the stored PDF inline.
func GetQuotation(q *store.Quotations) gin.HandlerFunc {
	return func(c *gin.Context) {
		quotation, path, err := q.File(c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, models.ErrCodeNotFound, "quotation not found", nil)
			return
		}
		if err != nil {
			fail(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to read quotation", err)
			return
		}

		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", `inline; filename="`+quotation.Filename+`"`)
		c.File(path)
	}
}

// DeleteQuotation returns a handler for DELETE /api/quotations/:id.
func DeleteQuotation(q *store.Quotations) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := q.Delete(c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, models.ErrCodeNotFound, "quotation not found", nil)
			return
		}
		if err != nil {
			fail(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to delete quotation", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "quotation deleted"})
	}
}
