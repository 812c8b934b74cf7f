// Package quote assembles priced quote/invoice document models from selected
// parts and supplier offers. Rendering the model (PDF layout, page output) is
// the consumer's job; the text quote is produced here because it is plain
// string assembly, not layout.
package quote

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sort"
	"strings"
	"time"

	"partsdesk/internal/records"
)

// Kind selects the document flavor.
type Kind string

const (
	KindQuote   Kind = "quote"
	KindInvoice Kind = "invoice"
)

// InStock is the synthetic delivery label always offered alongside the
// suppliers' own delivery-time labels.
const InStock = "IN STOCK"

// Company is the header/identity block stamped on every document.
type Company struct {
	Name            string   `yaml:"name" json:"name"`
	DistributorLine string   `yaml:"distributor_line" json:"distributor_line"`
	AddressLines    []string `yaml:"address_lines" json:"address_lines"`
	Specialties     []string `yaml:"specialties" json:"specialties"`
	Phones          []string `yaml:"phones" json:"phones"`
	Email           string   `yaml:"email" json:"email"`
	Website         string   `yaml:"website" json:"website"`
	DocPrefix       string   `yaml:"doc_prefix" json:"doc_prefix"`
	TermsOfSale     string   `yaml:"terms_of_sale" json:"terms_of_sale"`
	DepositNote     string   `yaml:"deposit_note" json:"deposit_note"`
}

// Party is a bill-to or ship-to block. Address may span multiple lines.
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// SelectedPart pairs a part with the supplier offer chosen for it. A nil
// Supplier means "no supplier": the line prices at 0.00. Condition tags the
// line in text quotes (New, Used, Refurbished).
type SelectedPart struct {
	Part      records.Part          `json:"part"`
	Supplier  *records.SupplierOffer `json:"supplier,omitempty"`
	Condition string                `json:"condition,omitempty"`
}

// Line is one priced document row.
type Line struct {
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	Total        float64 `json:"total"`
	Supplier     string  `json:"supplier,omitempty"`
	DeliveryTime string  `json:"delivery_time,omitempty"`
	Condition    string  `json:"condition,omitempty"`
}

// Document is the renderer input contract: everything a PDF or text renderer
// needs, with all pricing already resolved.
type Document struct {
	Kind         Kind    `json:"kind"`
	Title        string  `json:"title"`
	Number       string  `json:"number"`
	Date         string  `json:"date"`
	Company      Company `json:"company"`
	BillTo       Party   `json:"bill_to"`
	ShipTo       Party   `json:"ship_to"`
	VIN          string  `json:"vin,omitempty"`
	Lines        []Line  `json:"lines"`
	Total        float64 `json:"total"`
	HasDeposit   bool    `json:"has_deposit"`
	Deposit      float64 `json:"deposit,omitempty"`
	Balance      float64 `json:"balance,omitempty"`
	DeliveryTime string  `json:"delivery_time"`
	DeliveryNote string  `json:"delivery_note"`
	DepositNote  string  `json:"deposit_note"`
	TermsOfSale  string  `json:"terms_of_sale"`
}

// Params are the inputs to Assemble.
type Params struct {
	Kind          Kind
	Company       Company
	Client        records.Client
	VIN           string // empty means "all parts", no VIN block on the document
	Parts         []SelectedPart
	ManualDeposit float64
	BillTo        *Party // nil uses the client name and phone
	ShipTo        *Party // nil leaves the block empty
	DeliveryTime  string // empty picks DefaultDelivery over the selection
}

// Assemble computes line totals, the grand total, deposit/balance, and the
// delivery/terms wording, producing the document model.
func Assemble(p Params) (*Document, error) {
	if len(p.Parts) == 0 {
		return nil, fmt.Errorf("no parts selected")
	}
	if p.ManualDeposit < 0 {
		return nil, fmt.Errorf("deposit must be non-negative")
	}
	if p.Kind != KindQuote && p.Kind != KindInvoice {
		return nil, fmt.Errorf("unknown document kind %q", p.Kind)
	}

	doc := &Document{
		Kind:        p.Kind,
		Title:       "QUOTATION",
		Number:      NewDocumentNumber(p.Company.DocPrefix, p.Kind),
		Date:        time.Now().Format("2006-01-02"),
		Company:     p.Company,
		VIN:         p.VIN,
		DepositNote: p.Company.DepositNote,
		TermsOfSale: p.Company.TermsOfSale,
	}
	if p.Kind == KindInvoice {
		doc.Title = "INVOICE"
	}

	doc.BillTo = Party{Name: p.Client.Name, Address: "Phone: " + p.Client.Phone}
	if p.BillTo != nil {
		doc.BillTo = *p.BillTo
	}
	if p.ShipTo != nil {
		doc.ShipTo = *p.ShipTo
	}

	for _, sel := range p.Parts {
		unit := 0.0
		supplier := ""
		delivery := ""
		if sel.Supplier != nil {
			unit = sel.Supplier.SellingPrice
			supplier = sel.Supplier.Name
			delivery = sel.Supplier.DeliveryTime
		}
		line := Line{
			Name:         sel.Part.Name,
			Quantity:     sel.Part.Quantity,
			UnitPrice:    unit,
			Total:        float64(sel.Part.Quantity) * unit,
			Supplier:     supplier,
			DeliveryTime: delivery,
			Condition:    sel.Condition,
		}
		if line.Condition == "" {
			line.Condition = "New"
		}
		doc.Total += line.Total
		doc.Lines = append(doc.Lines, line)
	}

	if p.ManualDeposit > 0 {
		doc.HasDeposit = true
		doc.Deposit = p.ManualDeposit
		doc.Balance = doc.Total - p.ManualDeposit
	}

	doc.DeliveryTime = p.DeliveryTime
	if doc.DeliveryTime == "" {
		doc.DeliveryTime = DefaultDelivery(DeliveryOptions(p.Parts))
	}
	if doc.DeliveryTime == InStock {
		doc.DeliveryNote = "* IN STOCK - Available for immediate pickup/shipment"
	} else {
		doc.DeliveryNote = fmt.Sprintf("* DELIVERY WITHIN %s BUSINESS DAYS AFTER ORDER CONFIRMATION", doc.DeliveryTime)
	}

	return doc, nil
}

// DeliveryOptions collects the distinct non-empty delivery-time labels across
// the chosen supplier offers, always including the synthetic IN STOCK option,
// sorted. When more than one option exists the caller must pick one: the
// ambiguity is pushed to the user, not resolved here.
func DeliveryOptions(parts []SelectedPart) []string {
	set := map[string]bool{InStock: true}
	for _, sel := range parts {
		if sel.Supplier == nil {
			continue
		}
		if d := strings.TrimSpace(sel.Supplier.DeliveryTime); d != "" {
			set[d] = true
		}
	}
	options := make([]string, 0, len(set))
	for d := range set {
		options = append(options, d)
	}
	sort.Strings(options)
	return options
}

// DefaultDelivery prefers IN STOCK, else the first option.
func DefaultDelivery(options []string) string {
	for _, o := range options {
		if o == InStock {
			return o
		}
	}
	if len(options) > 0 {
		return options[0]
	}
	return InStock
}

// NewDocumentNumber generates a random 4-digit document number with a kind
// suffix, e.g. BJM-4821-Q. Informational only: not a primary key, collisions
// are accepted.
func NewDocumentNumber(prefix string, kind Kind) string {
	suffix := "Q"
	if kind == KindInvoice {
		suffix = "I"
	}
	n := rand.IntN(9000) + 1000
	if prefix == "" {
		return fmt.Sprintf("%d-%s", n, suffix)
	}
	return fmt.Sprintf("%s-%d-%s", prefix, n, suffix)
}

var daysPattern = regexp.MustCompile(`(?i)(\d+)\s*(business\s+)?days?`)

// RenderText produces the plain-text quote in the shop's message format.
// Free-text delivery labels are reduced to their digit run when one exists;
// otherwise the literal label is used.
func (d *Document) RenderText() string {
	var b strings.Builder
	b.WriteString("*SEE PRICES BELOW*\n\n")

	if d.DeliveryTime == InStock {
		b.WriteString("*IN STOCK*\n\n")
	} else if m := daysPattern.FindStringSubmatch(d.DeliveryTime); m != nil {
		fmt.Fprintf(&b, "*DELIVERY WITHIN %s BUSINESS DAYS*\n\n", m[1])
	} else {
		fmt.Fprintf(&b, "*DELIVERY WITHIN %s BUSINESS DAYS*\n\n", d.DeliveryTime)
	}

	b.WriteString("*CASH (At Our Office) OR ONLINE BANK TRANSFER ONLY*\n\n")
	b.WriteString("*Upon Confirmation An Official Quote Will Be Sent With Payment Details.*\n\n")

	if d.VIN != "" {
		fmt.Fprintf(&b, "*Vin #* %s\n\n", d.VIN)
	}

	for i, line := range d.Lines {
		fmt.Fprintf(&b, "%d) %s - %d - $%.2f (%s item)\n",
			i+1, line.Name, line.Quantity, line.UnitPrice, strings.ToLower(line.Condition))
	}

	fmt.Fprintf(&b, "\n*TOTAL: $%.2f*", d.Total)
	return b.String()
}
