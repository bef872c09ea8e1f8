package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/partscout/models"
	"github.com/use-agent/partscout/store"
)

// componentInput is the body of a create or update. Price is decoded
// separately so that numeric strings are accepted.
type componentInput struct {
	ID        string          `json:"id"`
	Category  string          `json:"category"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand"`
	Price     json.RawMessage `json:"price"`
	Warranty  string          `json:"warranty"`
	CreatedAt string          `json:"created_at"`
}

// price parses the raw price as a JSON number or a numeric string.
func (in componentInput) price() (float64, bool) {
	if len(in.Price) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(in.Price, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(in.Price, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

// missing lists the required fields that are absent.
func (in componentInput) missing() []string {
	var out []string
	if strings.TrimSpace(in.Category) == "" {
		out = append(out, "category")
	}
	if strings.TrimSpace(in.Name) == "" {
		out = append(out, "name")
	}
	if strings.TrimSpace(in.Brand) == "" {
		out = append(out, "brand")
	}
	if len(in.Price) == 0 {
		out = append(out, "price")
	}
	return out
}

// ListComponents returns a handler for GET /api/components. The optional
// category parameter filters case-insensitively.
func ListComponents(db *store.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := db.Components().List()
		if err != nil {
			fail(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to retrieve components", err)
			return
		}

		if category := strings.TrimSpace(c.Query("category")); category != "" {
			filtered := items[:0]
			for _, item := range items {
				if strings.EqualFold(item.Category, category) {
					filtered = append(filtered, item)
				}
			}
			items = filtered
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt < items[j].CreatedAt
		})

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"count":      len(items),
			"components": items,
		})
	}
}

// CreateComponent returns a handler for POST /api/components.
func CreateComponent(db *store.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in componentInput
		if err := c.ShouldBindJSON(&in); err != nil {
			fail(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "no data provided", err)
			return
		}
		if missing := in.missing(); len(missing) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "missing required fields",
				"code":    models.ErrCodeInvalidInput,
				"missing": missing,
			})
			return
		}
		price, ok := in.price()
		if !ok {
			fail(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "invalid price format", nil)
			return
		}
		if price <= 0 {
			fail(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "price must be a positive number", nil)
			return
		}

		now := time.Now().Format(time.RFC3339)
		comp := &models.Component{
			Category:  strings.TrimSpace(in.Category),
			Name:      strings.TrimSpace(in.Name),
			Brand:     strings.TrimSpace(in.Brand),
			Price:     price,
			Warranty:  in.Warranty,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := db.Components().Put(comp); err != nil {
			fail(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to create component", err)
			return
		}

		slog.Info("component created", "id", comp.ID, "category", comp.Category)
		c.JSON(http.StatusCreated, gin.H{"success": true, "component": comp})
	}
}

// UpdateComponent returns a handler for PUT /api/components/:id. Fields
// present in the body replace the stored ones; created_at is preserved.
func UpdateComponent(db *store.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var in componentInput
		if err := c.ShouldBindJSON(&in); err != nil {
			fail(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "no data provided", err)
			return
		}
		price, hasPrice := in.price()
		if len(in.Price) > 0 && (!hasPrice || price <= 0) {
			fail(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "price must be a positive number", nil)
			return
		}

		updated, err := db.Components().Update(id, func(cur *models.Component) error {
			if v := strings.TrimSpace(in.Category); v != "" {
				cur.Category = v
			}
			if v := strings.TrimSpace(in.Name); v != "" {
				cur.Name = v
			}
			if v := strings.TrimSpace(in.Brand); v != "" {
				cur.Brand = v
			}
			if hasPrice {
				cur.Price = price
			}
			if in.Warranty != "" {
				cur.Warranty = in.Warranty
			}
			cur.UpdatedAt = time.Now().Format(time.RFC3339)
			return nil
		})
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success":      false,
				"error":        "component not found",
				"code":         models.ErrCodeNotFound,
				"component_id": id,
			})
			return
		}
		if err != nil {
			fail(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to update component", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "component": updated})
	}
}

// DeleteComponent returns a handler for DELETE /api/components/:id.
func DeleteComponent(db *store.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		err := db.Components().Delete(id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success":      false,
				"error":        "component not found",
				"code":         models.ErrCodeNotFound,
				"component_id": id,
			})
			return
		}
		if err != nil {
			fail(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to delete component", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "component deleted"})
	}
}

// ImportComponents returns a handler for POST /api/components/import.
// The catalog is replaced by the valid entries of the body; entries that
// are not objects, lack a required field or have an unparseable price are
// skipped.
func ImportComponents(db *store.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Components []json.RawMessage `json:"components"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.Components == nil {
			fail(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "no components data provided", err)
			return
		}

		now := time.Now().Format(time.RFC3339)
		valid := make([]models.Component, 0, len(body.Components))
		for i, raw := range body.Components {
			var in componentInput
			if err := json.Unmarshal(raw, &in); err != nil || len(in.missing()) > 0 {
				slog.Debug("skipping import entry", "index", i, "error", err)
				continue
			}
			price, ok := in.price()
			if !ok {
				slog.Debug("skipping import entry", "index", i, "reason", "invalid price")
				continue
			}
			created := in.CreatedAt
			if created == "" {
				created = now
			}
			valid = append(valid, models.Component{
				ID:        in.ID,
				Category:  in.Category,
				Name:      in.Name,
				Brand:     in.Brand,
				Price:     price,
				Warranty:  in.Warranty,
				CreatedAt: created,
				UpdatedAt: now,
			})
		}

		if err := db.Components().Replace(valid); err != nil {
			fail(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to import components", err)
			return
		}

		slog.Info("components imported", "count", len(valid), "skipped", len(body.Components)-len(valid))
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"count":   len(valid),
			"message": "imported " + strconv.Itoa(len(valid)) + " components",
		})
	}
}

// fail writes the flat error envelope used by the record endpoints.
func fail(c *gin.Context, status int, code, message string, err error) {
	body := gin.H{
		"success": false,
		"error":   message,
		"code":    code,
	}
	if err != nil {
		body["details"] = err.Error()
	}
	if status >= http.StatusInternalServerError {
		slog.Error(message, "code", code, "error", err)
	}
	c.JSON(status, body)
}
