package models

// Component is one entry in the saved component catalog.
type Component struct {
	ID        string  `json:"id"`
	Category  string  `json:"category"`
	Name      string  `json:"name"`
	Brand     string  `json:"brand"`
	Price     float64 `json:"price"`
	Warranty  string  `json:"warranty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func (c *Component) RecordID() string      { return c.ID }
func (c *Component) SetRecordID(id string) { c.ID = id }

// Quotation is the metadata stored alongside a saved quotation PDF.
type Quotation struct {
	ID              string `json:"id"`
	Date            string `json:"date"`
	CustomerName    string `json:"customerName"`
	Phone           string `json:"phone"`
	QuotationNumber string `json:"quotationNumber"`
	Filename        string `json:"filename"`
}

func (q *Quotation) RecordID() string      { return q.ID }
func (q *Quotation) SetRecordID(id string) { q.ID = id }

// Customer is the billing party on a PDF info entry.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// LineItem is one component line on a PDF info entry.
type LineItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Category string  `json:"category"`
}

// PDFInfo is a generated document's metadata (quotation or invoice).
type PDFInfo struct {
	ID           string     `json:"id"`
	Date         string     `json:"date"`
	Customer     Customer   `json:"customer"`
	Components   []LineItem `json:"components"`
	GSTRate      *float64   `json:"gstRate,omitempty"`
	DiscountRate float64    `json:"discountRate"`
	Notes        string     `json:"notes"`
	PDFData      string     `json:"pdfData"`
	Type         string     `json:"type"`
}

func (p *PDFInfo) RecordID() string      { return p.ID }
func (p *PDFInfo) SetRecordID(id string) { p.ID = id }

// DefaultGSTRate is applied to PDF info entries saved without one.
const DefaultGSTRate = 18.0

// ApplyDefaults fills the fields a client may omit. now is used for a
// missing date and newID for missing line item ids.
func (p *PDFInfo) ApplyDefaults(now string, newID func() string) {
	if p.Date == "" {
		p.Date = now
	}
	if p.GSTRate == nil {
		rate := DefaultGSTRate
		p.GSTRate = &rate
	}
	if p.Type == "" {
		p.Type = "quotation"
	}
	if p.Components == nil {
		p.Components = []LineItem{}
	}
	for i := range p.Components {
		c := &p.Components[i]
		if c.ID == "" {
			c.ID = newID()
		}
		if c.Quantity <= 0 {
			c.Quantity = 1
		}
		if c.Category == "" {
			c.Category = "Other"
		}
	}
}

// Company is the single company profile printed on quotations.
type Company struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	GSTIN   string `json:"gstin"`
	Website string `json:"website"`
	Logo    string `json:"logo"`
}

// DefaultCompany seeds the profile on first read.
var DefaultCompany = Company{
	Name:    "IT SERVICE WORLD",
	Address: "Siliguri, West Bengal, India",
	Phone:   "+91 XXXXX XXXXX",
	Email:   "info@itserviceworld.com",
	GSTIN:   "XXXXXXXXXXXXXXX",
	Website: "www.itserviceworld.com",
}
