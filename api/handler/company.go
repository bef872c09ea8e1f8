package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/partscout/models"
	"github.com/use-agent/partscout/store"
)

// GetCompany returns a handler for GET /api/company.
func GetCompany(db *store.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		company, err := db.Company()
		if err != nil {
			fail(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to read company info", err)
			return
		}
		c.JSON(http.StatusOK, company)
	}
}

// SaveCompany returns a handler for POST /api/company. Name and GSTIN are
// required.
func SaveCompany(db *store.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var company models.Company
		if err := c.ShouldBindJSON(&company); err != nil {
			fail(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "no data provided", err)
			return
		}
		if strings.TrimSpace(company.Name) == "" || strings.TrimSpace(company.GSTIN) == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success":  false,
				"error":    "company name and GSTIN are required",
				"code":     models.ErrCodeInvalidInput,
				"received": company,
			})
			return
		}

		if err := db.SaveCompany(company); err != nil {
			fail(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to save company info", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "company info saved",
			"data":    company,
		})
	}
}
