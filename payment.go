package upag

import (
	"context"
	"time"
)

// Currency is an ISO currency code in lower case.
type Currency string

const (
	CurrencyBRL Currency = "brl"
	CurrencyUSD Currency = "usd"
)

// PaymentStatus is owned by the Upag API; the client only reports it.
type PaymentStatus string

const (
	PaymentStatusIncomplete PaymentStatus = "incomplete"
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusApproved   PaymentStatus = "approved"
	PaymentStatusRefused    PaymentStatus = "refused"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// RefuseReason explains a refused payment.
type RefuseReason string

const (
	RefuseReasonInsufficientFunds RefuseReason = "insufficient_funds"
	RefuseReasonInvalidCard       RefuseReason = "invalid_card"
	RefuseReasonExpiredCard       RefuseReason = "expired_card"
	RefuseReasonFraud             RefuseReason = "fraud"
	RefuseReasonOther             RefuseReason = "other"
)

// Payment charges a customer's payment method. Monetary fields are in minor
// units (cents).
type Payment struct {
	ID            string        `json:"id"`
	Customer      Customer      `json:"customer"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Amount        int64         `json:"amount"`
	Currency      Currency      `json:"currency"`
	Status        PaymentStatus `json:"status"`
	Gross         int64         `json:"gross"`
	MDR           int64         `json:"mdr"`
	Net           int64         `json:"net"`
	Interest      int64         `json:"interest"`
	Installments  int           `json:"installments"`
	PixQRCode     *string       `json:"pixQrCode,omitempty"`
	RefuseReason  *RefuseReason `json:"refuseReason,omitempty"`
	DueAt         *time.Time    `json:"dueAt,omitempty"`
	Livemode      bool          `json:"livemode"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// CustomerInput selects the customer of a new payment: an existing
// CustomerID, or *CustomerParams to find or create one.
type CustomerInput interface {
	isCustomerInput()
}

// CustomerID references an existing customer.
type CustomerID string

func (CustomerID) isCustomerInput()      {}
func (*CustomerParams) isCustomerInput() {}

// PaymentCreateParams creates a payment. Customer and PaymentMethod are
// resolved by the server, so inline params may match existing records.
type PaymentCreateParams struct {
	Customer      CustomerInput      `json:"customer"`
	PaymentMethod PaymentMethodInput `json:"paymentMethod"`
	Amount        int64              `json:"amount"`
	Currency      Currency           `json:"currency"`
	Installments  *int               `json:"installments,omitempty"`
}

// PaymentListParams filters the payment list.
type PaymentListParams struct {
	ListParams
	Customer *string
	Status   *PaymentStatus
}

const paymentsPath = "/payments"

// PaymentService calls the /payments endpoints.
type PaymentService struct {
	backend Backend
}

// Create submits a payment. Creates are not idempotent unless an
// idempotency key is passed with WithIdempotencyKey.
func (s *PaymentService) Create(ctx context.Context, params *PaymentCreateParams, opts ...RequestOption) (*Payment, error) {
	var payment Payment
	if err := s.backend.Post(ctx, paymentsPath, params, &payment, opts...); err != nil {
		return nil, err
	}
	return &payment, nil
}

// Retrieve fetches a payment by id.
func (s *PaymentService) Retrieve(ctx context.Context, id string, opts ...RequestOption) (*Payment, error) {
	var payment Payment
	if err := s.backend.Get(ctx, resourcePath(paymentsPath, id), &payment, opts...); err != nil {
		return nil, err
	}
	return &payment, nil
}

// List returns one page of payments. params may be nil.
func (s *PaymentService) List(ctx context.Context, params *PaymentListParams, opts ...RequestOption) (*ListResponse[Payment], error) {
	q := newQuery()
	if params != nil {
		params.ListParams.apply(q).setString("customer", params.Customer)
		if params.Status != nil {
			q.setString("status", (*string)(params.Status))
		}
	}

	var page ListResponse[Payment]
	if err := s.backend.Get(ctx, paymentsPath+q.encode(), &page, opts...); err != nil {
		return nil, err
	}
	return &page, nil
}
