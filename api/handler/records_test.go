package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/partscout/models"
	"github.com/use-agent/partscout/store"
)

func openStore(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func recordsRouter(t *testing.T) (*gin.Engine, *store.DB) {
	t.Helper()
	db := openStore(t)
	quotations := db.Quotations(filepath.Join(t.TempDir(), "quotations"))

	r := gin.New()
	r.GET("/api/components", ListComponents(db))
	r.POST("/api/components", CreateComponent(db))
	r.POST("/api/components/import", ImportComponents(db))
	r.PUT("/api/components/:id", UpdateComponent(db))
	r.DELETE("/api/components/:id", DeleteComponent(db))
	r.POST("/api/quotations", SaveQuotation(quotations))
	r.GET("/api/quotations", ListQuotations(quotations))
	r.GET("/api/quotations/:id", GetQuotation(quotations))
	r.DELETE("/api/quotations/:id", DeleteQuotation(quotations))
	r.POST("/api/save_pdf_info", SavePDFInfo(db))
	r.GET("/api/load_pdf_info", LoadPDFInfo(db))
	r.DELETE("/api/delete_pdf_info/:id", DeletePDFInfo(db))
	r.GET("/api/company", GetCompany(db))
	r.POST("/api/company", SaveCompany(db))
	return r, db
}

func do(r *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestComponents_CRUD(t *testing.T) {
	r, _ := recordsRouter(t)

	w := do(r, http.MethodPost, "/api/components", map[string]any{
		"category": "GPU", "name": "RTX 4060 Twin Edge", "brand": "ZOTAC", "price": 29999,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var created struct {
		Component models.Component `json:"component"`
	}
	json.Unmarshal(w.Body.Bytes(), &created)
	id := created.Component.ID
	if id == "" || created.Component.CreatedAt == "" {
		t.Fatalf("component = %+v", created.Component)
	}

	do(r, http.MethodPost, "/api/components", map[string]any{
		"category": "CPU", "name": "Ryzen 5 5600X", "brand": "AMD", "price": "13499",
	})

	t.Run("filter by category", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/components?category=gpu", nil)
		body := decode(t, w)
		if body["count"].(float64) != 1 {
			t.Errorf("count = %v, want 1", body["count"])
		}
	})

	t.Run("update preserves created_at", func(t *testing.T) {
		w := do(r, http.MethodPut, "/api/components/"+id, map[string]any{"price": 27999, "created_at": "1999-01-01"})
		if w.Code != http.StatusOK {
			t.Fatalf("update status = %d, body %s", w.Code, w.Body.String())
		}
		var updated struct {
			Component models.Component `json:"component"`
		}
		json.Unmarshal(w.Body.Bytes(), &updated)
		if updated.Component.Price != 27999 || updated.Component.CreatedAt != created.Component.CreatedAt {
			t.Errorf("updated = %+v", updated.Component)
		}
		if updated.Component.Name != "RTX 4060 Twin Edge" {
			t.Errorf("unset fields should be kept, got name %q", updated.Component.Name)
		}
	})

	t.Run("update missing", func(t *testing.T) {
		w := do(r, http.MethodPut, "/api/components/nope", map[string]any{"price": 1})
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if w := do(r, http.MethodDelete, "/api/components/"+id, nil); w.Code != http.StatusOK {
			t.Fatalf("delete status = %d", w.Code)
		}
		if w := do(r, http.MethodDelete, "/api/components/"+id, nil); w.Code != http.StatusNotFound {
			t.Errorf("second delete status = %d, want 404", w.Code)
		}
	})
}

func TestCreateComponent_Validation(t *testing.T) {
	r, _ := recordsRouter(t)

	tests := []struct {
		name string
		body any
	}{
		{"not json", "{"},
		{"missing fields", map[string]any{"name": "x"}},
		{"zero price", map[string]any{"category": "RAM", "name": "x", "brand": "y", "price": 0}},
		{"negative price", map[string]any{"category": "RAM", "name": "x", "brand": "y", "price": -5}},
		{"bad price", map[string]any{"category": "RAM", "name": "x", "brand": "y", "price": "cheap"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/components", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestImportComponents(t *testing.T) {
	r, db := recordsRouter(t)
	db.Components().Put(&models.Component{Name: "old", Brand: "old", Category: "Other", Price: 1})

	w := do(r, http.MethodPost, "/api/components/import", map[string]any{
		"components": []any{
			map[string]any{"name": "Vengeance 16GB", "brand": "Corsair", "category": "RAM", "price": 5250, "id": "ram-1"},
			map[string]any{"name": "SN770", "brand": "WD", "category": "Storage", "price": "6199"},
			map[string]any{"name": "no price", "brand": "x", "category": "Other"},
			map[string]any{"name": "bad price", "brand": "x", "category": "Other", "price": "n/a"},
			"not an object",
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["count"].(float64) != 2 {
		t.Errorf("count = %v, want 2", body["count"])
	}
	if n := db.Components().Count(); n != 2 {
		t.Errorf("catalog size = %d, want 2 (import replaces)", n)
	}
	if _, err := db.Components().Get("ram-1"); err != nil {
		t.Errorf("supplied id not kept: %v", err)
	}

	if w := do(r, http.MethodPost, "/api/components/import", map[string]any{}); w.Code != http.StatusBadRequest {
		t.Errorf("empty import status = %d, want 400", w.Code)
	}
}

func TestQuotations(t *testing.T) {
	r, _ := recordsRouter(t)
	pdf := []byte("%PDF-1.4 quotation")

	w := do(r, http.MethodPost, "/api/quotations", map[string]any{"customerName": "Asha"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing pdf status = %d, want 400", w.Code)
	}
	w = do(r, http.MethodPost, "/api/quotations", map[string]any{"pdfData": "data:application/pdf;base64,AAAA", "customerName": "Asha"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing fields status = %d, want 400", w.Code)
	}

	w = do(r, http.MethodPost, "/api/quotations", map[string]any{
		"pdfData":         "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(pdf),
		"customerName":    "Asha",
		"phone":           "98300 00000",
		"quotationNumber": "Q-2026-001",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("save status = %d, body %s", w.Code, w.Body.String())
	}
	var saved struct {
		Quotation models.Quotation `json:"quotation"`
	}
	json.Unmarshal(w.Body.Bytes(), &saved)
	id := saved.Quotation.ID

	w = do(r, http.MethodGet, "/api/quotations", nil)
	var list struct {
		Quotations []models.Quotation `json:"quotations"`
	}
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Quotations) != 1 || list.Quotations[0].QuotationNumber != "Q-2026-001" {
		t.Errorf("list = %+v", list.Quotations)
	}

	w = do(r, http.MethodGet, "/api/quotations/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/pdf" {
		t.Errorf("content type = %q", w.Header().Get("Content-Type"))
	}
	if !bytes.Equal(w.Body.Bytes(), pdf) {
		t.Errorf("body = %q", w.Body.Bytes())
	}

	if w := do(r, http.MethodDelete, "/api/quotations/"+id, nil); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/quotations/"+id, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}

func TestPDFInfo(t *testing.T) {
	r, _ := recordsRouter(t)

	w := do(r, http.MethodPost, "/api/save_pdf_info", map[string]any{
		"customer":   map[string]any{"name": "Ravi"},
		"components": []any{map[string]any{"name": "Ryzen 5", "price": 13499}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d, body %s", w.Code, w.Body.String())
	}
	id := decode(t, w)["id"].(string)
	if id == "" {
		t.Fatal("expected generated id")
	}

	// Saving with the same id replaces the entry.
	do(r, http.MethodPost, "/api/save_pdf_info", map[string]any{"id": id, "notes": "revised", "gstRate": 12})

	w = do(r, http.MethodGet, "/api/load_pdf_info", nil)
	var items []models.PDFInfo
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("load body: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(items))
	}
	got := items[0]
	if got.Notes != "revised" || got.GSTRate == nil || *got.GSTRate != 12 {
		t.Errorf("entry = %+v", got)
	}
	if got.Type != "quotation" || got.Date == "" || got.Components == nil {
		t.Errorf("defaults not applied: %+v", got)
	}

	if w := do(r, http.MethodDelete, "/api/delete_pdf_info/"+id, nil); w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/api/delete_pdf_info/"+id, nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestCompany(t *testing.T) {
	r, _ := recordsRouter(t)

	w := do(r, http.MethodGet, "/api/company", nil)
	var company models.Company
	json.Unmarshal(w.Body.Bytes(), &company)
	if company != models.DefaultCompany {
		t.Errorf("expected default profile, got %+v", company)
	}

	if w := do(r, http.MethodPost, "/api/company", map[string]any{"name": "Parts Hub"}); w.Code != http.StatusBadRequest {
		t.Errorf("missing gstin status = %d, want 400", w.Code)
	}

	want := models.Company{Name: "Parts Hub", GSTIN: "19ABCDE1234F1Z5", Phone: "033 0000"}
	if w := do(r, http.MethodPost, "/api/company", want); w.Code != http.StatusOK {
		t.Fatalf("save status = %d", w.Code)
	}
	w = do(r, http.MethodGet, "/api/company", nil)
	json.Unmarshal(w.Body.Bytes(), &company)
	if company != want {
		t.Errorf("got %+v, want %+v", company, want)
	}
}
