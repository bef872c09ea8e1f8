package store

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/use-agent/partscout/models"
)

// Components is the saved component catalog.
func (d *DB) Components() *Collection[models.Component, *models.Component] {
	return newCollection[models.Component](d, bucketComponents)
}

// PDFInfo holds generated document metadata.
func (d *DB) PDFInfo() *Collection[models.PDFInfo, *models.PDFInfo] {
	return newCollection[models.PDFInfo](d, bucketPDFInfo)
}

var companyKey = []byte("profile")

// Company returns the stored company profile, seeding models.DefaultCompany
// on first read.
func (d *DB) Company() (models.Company, error) {
	var c models.Company
	err := d.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCompany)
		data := b.Get(companyKey)
		if data == nil {
			c = models.DefaultCompany
			encoded, err := json.Marshal(c)
			if err != nil {
				return err
			}
			return b.Put(companyKey, encoded)
		}
		return json.Unmarshal(data, &c)
	})
	if err != nil {
		return models.Company{}, fmt.Errorf("store: company: %w", err)
	}
	return c, nil
}

// SaveCompany overwrites the company profile.
func (d *DB) SaveCompany(c models.Company) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("store: encode company: %w", err)
	}
	return d.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCompany).Put(companyKey, data)
	})
}

// Quotations stores quotation PDFs as files in dir and their metadata in
// the database.
type Quotations struct {
	meta *Collection[models.Quotation, *models.Quotation]
	dir  string
}

// Quotations returns the quotation archive rooted at dir.
func (d *DB) Quotations(dir string) *Quotations {
	return &Quotations{
		meta: newCollection[models.Quotation](d, bucketQuotations),
		dir:  dir,
	}
}

// Save writes pdf to <id>.pdf and records q with a fresh id, date and
// filename. q is updated in place.
func (s *Quotations) Save(q *models.Quotation, pdf []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("store: create quotations dir: %w", err)
	}

	q.ID = uuid.New().String()
	q.Date = time.Now().Format(time.RFC3339)
	q.Filename = q.ID + ".pdf"

	path := filepath.Join(s.dir, q.Filename)
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	if err := s.meta.Put(q); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// List returns all quotations, newest first.
func (s *Quotations) List() ([]models.Quotation, error) {
	items, err := s.meta.List()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date > items[j].Date
	})
	return items, nil
}

// File returns the metadata and PDF path for id. It returns ErrNotFound
// when either the record or its file is missing.
func (s *Quotations) File(id string) (models.Quotation, string, error) {
	q, err := s.meta.Get(id)
	if err != nil {
		return q, "", err
	}
	path := filepath.Join(s.dir, filepath.Base(q.Filename))
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return q, "", ErrNotFound
		}
		return q, "", fmt.Errorf("store: stat %s: %w", path, err)
	}
	return q, path, nil
}

// Delete removes the quotation's file and metadata. A file that is
// already gone is not an error.
func (s *Quotations) Delete(id string) error {
	q, err := s.meta.Get(id)
	if err != nil {
		return err
	}
	path := filepath.Join(s.dir, filepath.Base(q.Filename))
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: remove %s: %w", path, err)
	}
	return s.meta.Delete(id)
}

// DecodePDF decodes base64 PDF data, with or without a data: URI prefix.
func DecodePDF(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	if strings.HasPrefix(data, "data:") {
		_, after, ok := strings.Cut(data, ",")
		if !ok {
			return nil, errors.New("store: malformed data URI")
		}
		data = after
	}
	pdf, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("store: decode pdf: %w", err)
	}
	if len(pdf) == 0 {
		return nil, errors.New("store: empty pdf")
	}
	return pdf, nil
}
