package service

import (
	"strconv"

	"github.com/sangkips/ledgerpos-api/internal/domain/checkout"
	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

// CheckoutService prices carts without persisting anything
type CheckoutService struct {
	calc *checkout.Calculator
	gst  checkout.GstPolicy
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(calc *checkout.Calculator, gst checkout.GstPolicy) *CheckoutService {
	return &CheckoutService{calc: calc, gst: gst}
}

// QuoteItem is a single line to price
type QuoteItem struct {
	ID       string
	Price    entity.Money
	Quantity int64
	Type     enum.ItemType
}

// QuoteInput overrides the configured bill policy when Mode or Rate is set
type QuoteInput struct {
	Items    []QuoteItem
	Discount entity.Money
	Mode     *enum.GstMode
	Rate     *checkout.Percent
}

// Quote is the priced cart in cents
type Quote struct {
	SubTotal entity.Money     `json:"sub_total"`
	Base     entity.Money     `json:"base"`
	GST      entity.Money     `json:"gst"`
	Discount entity.Money     `json:"discount"`
	Total    entity.Money     `json:"total"`
	GstMode  enum.GstMode     `json:"gst_mode"`
	GstRate  checkout.Percent `json:"gst_rate"`
}

// Quote prices the items under the bill policy or the requested override
func (s *CheckoutService) Quote(input *QuoteInput) (*Quote, error) {
	mode, rate := s.gst.Mode(), s.gst.GstRate()
	if input.Mode != nil {
		mode = *input.Mode
	}
	if input.Rate != nil {
		rate = *input.Rate
	}
	policy := checkout.NewPolicy(mode, rate)

	items := make([]checkout.LineItem, 0, len(input.Items))
	for i, it := range input.Items {
		id := it.ID
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		itemType := it.Type
		if itemType == "" {
			itemType = enum.ItemTypeBasic
		}
		items = append(items, checkout.LineItem{
			ID:       id,
			Price:    it.Price.Decimal(),
			Quantity: it.Quantity,
			Type:     itemType,
		})
	}

	totals, err := s.calc.Checkout(items, input.Discount.Decimal(), policy)
	if err != nil {
		return nil, domainError(err)
	}

	return &Quote{
		SubTotal: entity.NewMoney(totals.Subtotal),
		Base:     entity.NewMoney(totals.Base),
		GST:      entity.NewMoney(totals.GST),
		Discount: entity.NewMoney(totals.Discount),
		Total:    entity.NewMoney(totals.FinalTotal),
		GstMode:  mode,
		GstRate:  rate,
	}, nil
}
