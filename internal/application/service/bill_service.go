package service

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/ledgerpos-api/internal/domain/checkout"
	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/internal/infrastructure/cache"
	"github.com/sangkips/ledgerpos-api/pkg/apperror"
	"github.com/sangkips/ledgerpos-api/pkg/pagination"
	"github.com/sangkips/ledgerpos-api/pkg/utils"
)

// BillService runs carts from opening through checkout and later payments.
// Every mutation locks the bill, recomputes totals from the current items and
// saves in one transaction.
type BillService struct {
	billRepo    repository.BillRepository
	productRepo repository.ProductRepository
	payerRepo   repository.PayerRepository
	tx          repository.Transactor
	cache       cache.BillCache
	calc        *checkout.Calculator
	gst         checkout.GstPolicy
	products    *ProductService
	ledger      *LedgerService
	payers      *PayerService
	now         func() time.Time
}

// BillServiceDeps groups the collaborators of BillService
type BillServiceDeps struct {
	BillRepo    repository.BillRepository
	ProductRepo repository.ProductRepository
	PayerRepo   repository.PayerRepository
	Tx          repository.Transactor
	Cache       cache.BillCache
	Calculator  *checkout.Calculator
	GST         checkout.GstPolicy
	Products    *ProductService
	Ledger      *LedgerService
	Payers      *PayerService
}

// NewBillService creates a new bill service
func NewBillService(d BillServiceDeps) *BillService {
	c := d.Cache
	if c == nil {
		c = cache.NoopBillCache{}
	}
	return &BillService{
		billRepo:    d.BillRepo,
		productRepo: d.ProductRepo,
		payerRepo:   d.PayerRepo,
		tx:          d.Tx,
		cache:       c,
		calc:        d.Calculator,
		gst:         d.GST,
		products:    d.Products,
		ledger:      d.Ledger,
		payers:      d.Payers,
		now:         time.Now,
	}
}

// BillView is a bill with its resolved payment status
type BillView struct {
	*entity.Bill
	PaymentStatus enum.PaymentStatus `json:"payment_status"`
	DueDate       *time.Time         `json:"due_date,omitempty"`
}

// OpenBillInput represents the open bill input
type OpenBillInput struct {
	PayerID   *uuid.UUID
	Notes     string
	CreatedBy uuid.UUID
}

// OpenBill starts an empty active bill priced under the configured GST policy
func (s *BillService) OpenBill(ctx context.Context, input *OpenBillInput) (*entity.Bill, error) {
	sourceID, err := requireSource(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	bill := &entity.Bill{
		SourceID:  sourceID,
		BillNo:    utils.GenerateBillNo(now),
		Status:    enum.BillStatusActive,
		GstMode:   s.gst.Mode(),
		GstRate:   s.gst.GstRate().Decimal(),
		Notes:     strings.TrimSpace(input.Notes),
		BillDate:  now,
		CreatedBy: input.CreatedBy,
		Items:     []entity.BillItem{},
	}
	if input.PayerID != nil {
		payer, err := s.getPayer(ctx, *input.PayerID)
		if err != nil {
			return nil, err
		}
		bill.PayerID = &payer.ID
		bill.Payer = payer
	}

	if err := s.billRepo.Create(ctx, bill); err != nil {
		return nil, domainError(err)
	}
	s.syncCache(ctx, bill)
	return bill, nil
}

func (s *BillService) getPayer(ctx context.Context, id uuid.UUID) (*entity.Payer, error) {
	payer, err := s.payerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payer == nil {
		return nil, apperror.NewNotFoundError("Payer")
	}
	return payer, nil
}

// GetBill retrieves a bill. Open bills are served from the cache when present.
func (s *BillService) GetBill(ctx context.Context, id uuid.UUID) (*BillView, error) {
	sourceID, err := requireSource(ctx)
	if err != nil {
		return nil, err
	}

	bill, err := s.cache.Get(ctx, id)
	if err != nil || bill.SourceID != sourceID {
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("Bill cache read failed (bill %s): %v", id, err)
		}
		bill, err = s.billRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if bill == nil {
			return nil, apperror.NewNotFoundError("Bill")
		}
		s.syncCache(ctx, bill)
	}

	return s.view(ctx, bill)
}

func (s *BillService) view(ctx context.Context, bill *entity.Bill) (*BillView, error) {
	status, due, err := s.payers.PaymentStatus(ctx, bill)
	if err != nil {
		return nil, err
	}
	return &BillView{Bill: bill, PaymentStatus: status, DueDate: due}, nil
}

// ListBills lists bills with filtering
func (s *BillService) ListBills(ctx context.Context, params *repository.BillFilterParams) (*pagination.PaginatedResult[entity.Bill], error) {
	if _, err := requireSource(ctx); err != nil {
		return nil, err
	}
	for _, st := range params.Statuses {
		if !st.IsValid() {
			return nil, apperror.NewBadRequestError("Invalid bill status " + string(st))
		}
	}
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	bills, total, err := s.billRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(bills, pag), nil
}

// mutate is the single-writer section for one bill
func (s *BillService) mutate(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, bill *entity.Bill) error) (*entity.Bill, error) {
	if _, err := requireSource(ctx); err != nil {
		return nil, err
	}

	var out *entity.Bill
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if bill == nil {
			return apperror.NewNotFoundError("Bill")
		}
		if err := fn(ctx, bill); err != nil {
			return err
		}
		if err := s.billRepo.Save(ctx, bill); err != nil {
			return err
		}
		out = bill
		return nil
	})
	if err != nil {
		return nil, domainError(err)
	}

	s.syncCache(ctx, out)
	return out, nil
}

// recalc prices the bill's current items and stores the totals on it
func (s *BillService) recalc(bill *entity.Bill) error {
	totals, err := s.calc.Checkout(bill.LineItems(), bill.Discount.Decimal(), bill.Policy())
	if err != nil {
		return err
	}
	bill.ApplyTotals(totals)
	return nil
}

// syncCache mirrors editable bills and evicts everything else. Cache failures never fail a request.
func (s *BillService) syncCache(ctx context.Context, bill *entity.Bill) {
	var err error
	switch bill.Status {
	case enum.BillStatusActive, enum.BillStatusOnHold:
		err = s.cache.Set(ctx, bill)
	default:
		err = s.cache.Delete(ctx, bill.ID)
	}
	if err != nil {
		log.Printf("Bill cache sync failed (bill %s): %v", bill.ID, err)
	}
}

// AddItemInput adds a catalog product or a custom line. Price overrides the
// catalog price when set.
type AddItemInput struct {
	ProductID *uuid.UUID
	Name      string
	Price     *entity.Money
	Quantity  int64
	ItemType  enum.ItemType
}

// AddItem adds a line. Adding a product already on the bill increases that line's quantity.
func (s *BillService) AddItem(ctx context.Context, billID uuid.UUID, input *AddItemInput) (*entity.Bill, error) {
	if input.Quantity < 1 {
		return nil, domainError(checkout.ErrInvalidQuantity)
	}
	if input.Price != nil && *input.Price < 0 {
		return nil, domainError(checkout.ErrInvalidPrice)
	}

	return s.mutate(ctx, billID, func(ctx context.Context, bill *entity.Bill) error {
		if err := checkout.EnsureItemsMutable(bill.Status); err != nil {
			return err
		}

		line, err := s.newLine(ctx, input)
		if err != nil {
			return err
		}

		if line.ProductID != nil {
			if i := bill.FindProduct(*line.ProductID); i >= 0 {
				bill.Items[i].Quantity += line.Quantity
				if input.Price != nil {
					bill.Items[i].Price = line.Price
				}
				return s.recalc(bill)
			}
		}

		line.ID = uuid.New()
		line.BillID = bill.ID
		line.CreatedAt = s.now()
		bill.Items = append(bill.Items, *line)
		return s.recalc(bill)
	})
}

func (s *BillService) newLine(ctx context.Context, input *AddItemInput) (*entity.BillItem, error) {
	if input.ProductID == nil {
		name := strings.TrimSpace(input.Name)
		if name == "" || input.Price == nil {
			return nil, apperror.NewBadRequestError("Custom items need a name and a price")
		}
		itemType := input.ItemType
		if itemType == "" {
			itemType = enum.ItemTypeService
		}
		if !itemType.IsValid() {
			return nil, apperror.NewBadRequestError("Invalid item type")
		}
		return &entity.BillItem{Name: name, ItemType: itemType, Price: *input.Price, Quantity: input.Quantity}, nil
	}

	product, err := s.productRepo.GetByID(ctx, *input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	if !product.IsActive {
		return nil, apperror.NewConflictError(product.Name + " is not active")
	}
	if product.Category != nil && !product.Category.Enabled {
		return nil, apperror.NewConflictError(product.Category.Name + " is disabled")
	}

	line := &entity.BillItem{
		ProductID: &product.ID,
		Name:      product.Name,
		ItemType:  product.Type,
		Price:     product.Price,
		Quantity:  input.Quantity,
	}
	if product.Category != nil {
		line.Category = product.Category.Name
	}
	if input.Price != nil {
		line.Price = *input.Price
	}
	return line, nil
}

// UpdateItemInput changes a line. A quantity of zero removes the line.
type UpdateItemInput struct {
	Quantity *int64
	Price    *entity.Money
}

// UpdateItem changes a line's quantity or price
func (s *BillService) UpdateItem(ctx context.Context, billID, itemID uuid.UUID, input *UpdateItemInput) (*entity.Bill, error) {
	if input.Quantity != nil && *input.Quantity < 0 {
		return nil, domainError(&checkout.ItemError{ItemID: itemID.String(), Err: checkout.ErrInvalidQuantity})
	}
	if input.Price != nil && *input.Price < 0 {
		return nil, domainError(&checkout.ItemError{ItemID: itemID.String(), Err: checkout.ErrInvalidPrice})
	}

	return s.mutate(ctx, billID, func(ctx context.Context, bill *entity.Bill) error {
		if err := checkout.EnsureItemsMutable(bill.Status); err != nil {
			return err
		}
		i := bill.FindItem(itemID)
		if i < 0 {
			return apperror.NewNotFoundError("Bill item")
		}

		if input.Quantity != nil && *input.Quantity == 0 {
			bill.Items = append(bill.Items[:i], bill.Items[i+1:]...)
			return s.recalc(bill)
		}
		if input.Quantity != nil {
			bill.Items[i].Quantity = *input.Quantity
		}
		if input.Price != nil {
			bill.Items[i].Price = *input.Price
		}
		return s.recalc(bill)
	})
}

// RemoveItem deletes a line
func (s *BillService) RemoveItem(ctx context.Context, billID, itemID uuid.UUID) (*entity.Bill, error) {
	zero := int64(0)
	return s.UpdateItem(ctx, billID, itemID, &UpdateItemInput{Quantity: &zero})
}

// SetDiscount sets the bill-level discount
func (s *BillService) SetDiscount(ctx context.Context, billID uuid.UUID, discount entity.Money) (*entity.Bill, error) {
	if discount < 0 {
		return nil, domainError(checkout.ErrInvalidDiscount)
	}

	return s.mutate(ctx, billID, func(ctx context.Context, bill *entity.Bill) error {
		if err := checkout.EnsureItemsMutable(bill.Status); err != nil {
			return err
		}
		previous := bill.Discount
		bill.Discount = discount
		if err := s.recalc(bill); err != nil {
			bill.Discount = previous
			return err
		}
		return nil
	})
}

// SetPayer attaches a payer, or detaches it when payerID is nil
func (s *BillService) SetPayer(ctx context.Context, billID uuid.UUID, payerID *uuid.UUID) (*entity.Bill, error) {
	return s.mutate(ctx, billID, func(ctx context.Context, bill *entity.Bill) error {
		if err := checkout.EnsureItemsMutable(bill.Status); err != nil {
			return err
		}
		if payerID == nil {
			bill.PayerID = nil
			bill.Payer = nil
			return nil
		}
		payer, err := s.getPayer(ctx, *payerID)
		if err != nil {
			return err
		}
		bill.PayerID = &payer.ID
		bill.Payer = payer
		return nil
	})
}

func (s *BillService) transition(ctx context.Context, billID uuid.UUID, to enum.BillStatus) (*entity.Bill, error) {
	return s.mutate(ctx, billID, func(ctx context.Context, bill *entity.Bill) error {
		if err := checkout.Transition(bill.Status, to); err != nil {
			return err
		}
		bill.Status = to
		return nil
	})
}

// Hold parks an active bill
func (s *BillService) Hold(ctx context.Context, billID uuid.UUID) (*entity.Bill, error) {
	return s.transition(ctx, billID, enum.BillStatusOnHold)
}

// Resume reactivates a held bill
func (s *BillService) Resume(ctx context.Context, billID uuid.UUID) (*entity.Bill, error) {
	return s.transition(ctx, billID, enum.BillStatusActive)
}

// Cancel abandons an active bill. A held bill is resumed first.
func (s *BillService) Cancel(ctx context.Context, billID uuid.UUID) (*entity.Bill, error) {
	return s.transition(ctx, billID, enum.BillStatusCancelled)
}

// CheckoutInput represents the checkout input
type CheckoutInput struct {
	Paid          entity.Money
	PaymentMethod string
	UserID        uuid.UUID
}

// CheckoutResult is the finished bill and the change owed to the customer
type CheckoutResult struct {
	*entity.Bill
	Change entity.Money `json:"change"`
}

// Checkout settles an active bill. Paying at least the total completes it;
// paying less leaves it partially-paid, which needs a payer to collect from.
// Stock is deducted and the money received is booked as income.
func (s *BillService) Checkout(ctx context.Context, billID uuid.UUID, input *CheckoutInput) (*CheckoutResult, error) {
	if input.Paid < 0 {
		return nil, apperror.NewBadRequestError("Paid amount must not be negative")
	}

	var change entity.Money
	bill, err := s.mutate(ctx, billID, func(ctx context.Context, bill *entity.Bill) error {
		if err := checkout.EnsureItemsMutable(bill.Status); err != nil {
			return err
		}
		if len(bill.Items) == 0 {
			return apperror.NewBadRequestError("Cannot check out an empty bill")
		}
		if err := s.recalc(bill); err != nil {
			return err
		}

		received := input.Paid
		next := enum.BillStatusCompleted
		if input.Paid < bill.Total {
			if bill.PayerID == nil {
				return apperror.Wrap(http.StatusUnprocessableEntity, errPayerRequired)
			}
			next = enum.BillStatusPartiallyPaid
		} else {
			received = bill.Total
			change = input.Paid - bill.Total
		}
		if err := checkout.Transition(bill.Status, next); err != nil {
			return err
		}

		adjustments, err := s.products.Consumption(ctx, bill.Items)
		if err != nil {
			return err
		}
		if len(adjustments) > 0 {
			if err := s.productRepo.AdjustStock(ctx, adjustments); err != nil {
				return err
			}
		}

		if received < 0 {
			received = 0
		}
		bill.Status = next
		bill.PaymentMethod = input.PaymentMethod
		bill.Paid = 0
		bill.RecordPayment(received)
		if next == enum.BillStatusCompleted {
			now := s.now()
			bill.CompletedAt = &now
		}

		_, err = s.ledger.RecordSale(ctx, bill, received, input.PaymentMethod, input.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{Bill: bill, Change: change}, nil
}

// PayDueInput represents a later payment against a partially-paid bill
type PayDueInput struct {
	Amount        entity.Money
	PaymentMethod string
	UserID        uuid.UUID
}

// PayDue records a payment towards a bill's outstanding balance. Clearing the
// balance completes the bill.
func (s *BillService) PayDue(ctx context.Context, billID uuid.UUID, input *PayDueInput) (*entity.Bill, error) {
	if input.Amount <= 0 {
		return nil, apperror.NewBadRequestError("Amount must be greater than zero")
	}

	return s.mutate(ctx, billID, func(ctx context.Context, bill *entity.Bill) error {
		if bill.Status != enum.BillStatusPartiallyPaid {
			return apperror.NewConflictError("Only partially-paid bills take due payments")
		}
		if input.Amount > bill.Due {
			return apperror.NewBadRequestError("Amount exceeds the outstanding balance of " + bill.Due.String())
		}

		bill.RecordPayment(input.Amount)
		if input.PaymentMethod != "" {
			bill.PaymentMethod = input.PaymentMethod
		}
		if bill.Due == 0 {
			if err := checkout.Transition(bill.Status, enum.BillStatusCompleted); err != nil {
				return err
			}
			now := s.now()
			bill.Status = enum.BillStatusCompleted
			bill.CompletedAt = &now
		}

		_, err := s.ledger.RecordSale(ctx, bill, input.Amount, input.PaymentMethod, input.UserID)
		return err
	})
}
