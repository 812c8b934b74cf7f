package records

// Client is keyed by normalized phone number.
type Client struct {
	Phone         string `json:"phone"`
	Name          string `json:"client_name"`
	CreatedDate   string `json:"created_date"`
	LastUpdated   string `json:"last_updated"`
	CreatedBy     string `json:"created_by"`
	LastUpdatedBy string `json:"last_updated_by"`
}

// VIN is a vehicle record owned by a client. VIN keys are global.
type VIN struct {
	VIN           string `json:"vin_number"`
	ClientPhone   string `json:"client_phone"`
	Model         string `json:"model"`
	ProdYear      string `json:"prod_yr"`
	Body          string `json:"body"`
	Engine        string `json:"engine"`
	Code          string `json:"code"`
	Transmission  string `json:"transmission"`
	CreatedDate   string `json:"created_date"`
	LastUpdated   string `json:"last_updated"`
	CreatedBy     string `json:"created_by"`
	LastUpdatedBy string `json:"last_updated_by"`
}

// Part belongs to a client and optionally to one of that client's VINs.
type Part struct {
	ID          int64           `json:"id"`
	VIN         string          `json:"vin_number,omitempty"`
	ClientPhone string          `json:"client_phone"`
	Name        string          `json:"part_name"`
	Number      string          `json:"part_number"`
	Quantity    int             `json:"quantity"`
	Notes       string          `json:"notes"`
	DateAdded   string          `json:"date_added"`
	Suppliers   []SupplierOffer `json:"suppliers,omitempty"`
}

// SupplierOffer is one supplier's pricing for a part.
type SupplierOffer struct {
	ID           int64   `json:"id"`
	PartID       int64   `json:"part_id"`
	Name         string  `json:"supplier_name"`
	BuyingPrice  float64 `json:"buying_price"`
	SellingPrice float64 `json:"selling_price"`
	DeliveryTime string  `json:"delivery_time"`
}

// VINInput carries the writable fields of a VIN record.
type VINInput struct {
	ClientPhone  string `json:"client_phone"`
	VIN          string `json:"vin_number"`
	Model        string `json:"model"`
	ProdYear     string `json:"prod_yr"`
	Body         string `json:"body"`
	Engine       string `json:"engine"`
	Code         string `json:"code"`
	Transmission string `json:"transmission"`
}

// SupplierInput carries the writable fields of a supplier offer.
type SupplierInput struct {
	Name         string  `json:"supplier_name"`
	BuyingPrice  float64 `json:"buying_price"`
	SellingPrice float64 `json:"selling_price"`
	DeliveryTime string  `json:"delivery_time"`
}

// PartInput carries a new part plus its initial supplier offers. The part and
// all offers are inserted in one atomic unit.
type PartInput struct {
	VIN         string          `json:"vin_number"`
	ClientPhone string          `json:"client_phone"`
	Name        string          `json:"part_name"`
	Number      string          `json:"part_number"`
	Quantity    int             `json:"quantity"`
	Notes       string          `json:"notes"`
	Suppliers   []SupplierInput `json:"suppliers"`
}

// PartUpdate replaces a part's scalar fields and its entire supplier set.
type PartUpdate struct {
	Name      string          `json:"part_name"`
	Number    string          `json:"part_number"`
	Quantity  int             `json:"quantity"`
	Notes     string          `json:"notes"`
	Suppliers []SupplierInput `json:"suppliers"`
}
