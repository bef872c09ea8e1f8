package store

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/use-agent/partscout/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCollection(t *testing.T) {
	db := openTestDB(t)
	components := db.Components()

	t.Run("Put assigns id", func(t *testing.T) {
		c := &models.Component{Name: "Ryzen 5 5600X", Brand: "AMD", Category: "CPU", Price: 13499}
		if err := components.Put(c); err != nil {
			t.Fatalf("Failed to put: %v", err)
		}
		if c.ID == "" {
			t.Fatal("expected an id to be assigned")
		}

		got, err := components.Get(c.ID)
		if err != nil {
			t.Fatalf("Failed to get: %v", err)
		}
		if got.Name != c.Name || got.Price != c.Price {
			t.Errorf("got %+v, want %+v", got, *c)
		}
	})

	t.Run("Get non-existent", func(t *testing.T) {
		if _, err := components.Get("missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		c := &models.Component{Name: "RTX 4060", Brand: "ZOTAC", Category: "GPU", Price: 29999, CreatedAt: "2026-01-01T00:00:00Z"}
		if err := components.Put(c); err != nil {
			t.Fatalf("Failed to put: %v", err)
		}

		updated, err := components.Update(c.ID, func(cur *models.Component) error {
			cur.Price = 27999
			cur.ID = "ignored"
			return nil
		})
		if err != nil {
			t.Fatalf("Failed to update: %v", err)
		}
		if updated.Price != 27999 || updated.ID != c.ID || updated.CreatedAt != c.CreatedAt {
			t.Errorf("updated = %+v", updated)
		}

		if _, err := components.Update("missing", func(*models.Component) error { return nil }); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		c := &models.Component{Name: "to delete", Brand: "x", Category: "Other", Price: 1}
		components.Put(c)

		if err := components.Delete(c.ID); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if _, err := components.Get(c.ID); !errors.Is(err, ErrNotFound) {
			t.Error("expected deleted record to be gone")
		}
		if err := components.Delete(c.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second delete should be ErrNotFound, got %v", err)
		}
	})

	t.Run("Replace", func(t *testing.T) {
		err := components.Replace([]models.Component{
			{ID: "keep-id", Name: "A", Brand: "a", Category: "RAM", Price: 1},
			{Name: "B", Brand: "b", Category: "RAM", Price: 2},
		})
		if err != nil {
			t.Fatalf("Failed to replace: %v", err)
		}
		list, err := components.List()
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(list) != 2 || components.Count() != 2 {
			t.Fatalf("expected 2 records after replace, got %d", len(list))
		}
		if _, err := components.Get("keep-id"); err != nil {
			t.Errorf("supplied id should be kept: %v", err)
		}
	})
}

func TestCompany(t *testing.T) {
	db := openTestDB(t)

	got, err := db.Company()
	if err != nil {
		t.Fatalf("Failed to read company: %v", err)
	}
	if got != models.DefaultCompany {
		t.Errorf("expected default company, got %+v", got)
	}

	want := models.Company{Name: "Parts Hub", GSTIN: "19ABCDE1234F1Z5"}
	if err := db.SaveCompany(want); err != nil {
		t.Fatalf("Failed to save company: %v", err)
	}
	got, _ = db.Company()
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestQuotations(t *testing.T) {
	db := openTestDB(t)
	dir := filepath.Join(t.TempDir(), "quotations")
	q := db.Quotations(dir)

	first := &models.Quotation{CustomerName: "Asha", Phone: "98300", QuotationNumber: "Q-1"}
	if err := q.Save(first, []byte("%PDF-1.4 first")); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if first.ID == "" || first.Filename != first.ID+".pdf" || first.Date == "" {
		t.Fatalf("metadata not filled: %+v", first)
	}

	second := &models.Quotation{CustomerName: "Ravi", Phone: "98301", QuotationNumber: "Q-2"}
	q.Save(second, []byte("%PDF-1.4 second"))
	// Force a later date so ordering is deterministic.
	q.meta.Update(second.ID, func(cur *models.Quotation) error {
		cur.Date = "2999-01-01T00:00:00Z"
		return nil
	})

	list, err := q.List()
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Errorf("expected newest first, got %+v", list)
	}

	_, path, err := q.File(first.ID)
	if err != nil {
		t.Fatalf("Failed to get file: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "%PDF-1.4 first" {
		t.Errorf("file contents = %q", data)
	}

	if err := q.Delete(first.ID); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected PDF file removed")
	}
	if _, _, err := q.File(first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDecodePDF(t *testing.T) {
	raw := []byte("%PDF-1.7")
	enc := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"plain base64", enc, false},
		{"data uri", "data:application/pdf;base64," + enc, false},
		{"bad base64", "not base64!", true},
		{"data uri without comma", "data:application/pdf;base64", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodePDF(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && string(got) != string(raw) {
				t.Errorf("got %q", got)
			}
		})
	}
}
