package main

// Request shapes shared across handlers. Response envelopes live in
// internal/response; core domain types in internal/records.

// DocumentPartSelection names one part and the supplier offer chosen to
// price it. SupplierID 0 means "no supplier", pricing the line at 0.00.
type DocumentPartSelection struct {
	PartID     int64  `json:"part_id"`
	SupplierID int64  `json:"supplier_id,omitempty"`
	Condition  string `json:"condition,omitempty"`
}

// DocumentRequest assembles a quote or invoice from stored records.
type DocumentRequest struct {
	Kind         string                  `json:"kind"` // quote | invoice
	ClientPhone  string                  `json:"client_phone"`
	VIN          string                  `json:"vin_number,omitempty"`
	Parts        []DocumentPartSelection `json:"parts"`
	Deposit      float64                 `json:"deposit,omitempty"`
	DeliveryTime string                  `json:"delivery_time,omitempty"`
	BillToName   string                  `json:"bill_to_name,omitempty"`
	BillToAddr   string                  `json:"bill_to_address,omitempty"`
	ShipToName   string                  `json:"ship_to_name,omitempty"`
	ShipToAddr   string                  `json:"ship_to_address,omitempty"`
}

// UserRequest creates or updates an account. Password is ignored on update
// when empty.
type UserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	CreatedDate string `json:"created_date"`
	LastLogin   string `json:"last_login,omitempty"`
}
