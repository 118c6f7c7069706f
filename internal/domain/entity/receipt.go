package entity

// ReceiptHeader is the business block at the top of a receipt
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	TaxID     string `json:"tax_id,omitempty"`
}

// ReceiptItem is a single printed line
type ReceiptItem struct {
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice Money  `json:"unit_price"`
	Total     Money  `json:"total"`
}

// Receipt is composed from a bill at print time; it is not persisted.
type Receipt struct {
	Header        ReceiptHeader `json:"header"`
	BillNo        string        `json:"bill_no"`
	Date          string        `json:"date"`
	Cashier       string        `json:"cashier,omitempty"`
	Payer         string        `json:"payer,omitempty"`
	PaymentMethod string        `json:"payment_method,omitempty"`
	Items         []ReceiptItem `json:"items"`
	SubTotal      Money         `json:"sub_total"`
	GSTLabel      string        `json:"gst_label"`
	GST           Money         `json:"gst"`
	Discount      Money         `json:"discount"`
	Total         Money         `json:"total"`
	Paid          Money         `json:"paid"`
	Due           Money         `json:"due"`
	Footer        string        `json:"footer,omitempty"`
}
