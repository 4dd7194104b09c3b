package upag

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// PaymentMethodType tags the variant of a payment method.
type PaymentMethodType string

const (
	PaymentMethodTypeCreditCard PaymentMethodType = "credit_card"
	PaymentMethodTypePix        PaymentMethodType = "pix"
)

// PaymentMethod is a stored instrument belonging to exactly one customer.
// Exactly one of Card or Pix is set, matching Type.
type PaymentMethod struct {
	ID         string
	CustomerID string
	Type       PaymentMethodType
	Card       *CardDetails
	Pix        *PixDetails
	Metadata   map[string]any
	Livemode   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// CardDetails is the masked card of a credit_card payment method.
type CardDetails struct {
	Brand       string
	FirstDigits string
	LastDigits  string
	ExpiryMonth int
	ExpiryYear  int
	HolderName  string
}

// PixDetails is the pix key of a pix payment method.
type PixDetails struct {
	Key       string
	ExpiresAt *time.Time
}

// paymentMethodWire is the flat record exchanged with the API.
type paymentMethodWire struct {
	ID           string            `json:"id"`
	CustomerID   string            `json:"customerId"`
	Type         PaymentMethodType `json:"type"`
	Brand        string            `json:"brand,omitempty"`
	FirstDigits  string            `json:"firstDigits,omitempty"`
	LastDigits   string            `json:"lastDigits,omitempty"`
	ExpiryMonth  int               `json:"expiryMonth,omitempty"`
	ExpiryYear   int               `json:"expiryYear,omitempty"`
	HolderName   string            `json:"holderName,omitempty"`
	PixKey       string            `json:"pixKey,omitempty"`
	PixExpiresAt *time.Time        `json:"pixExpiresAt,omitempty"`
	Metadata     map[string]any    `json:"metadata,omitempty"`
	Livemode     bool              `json:"livemode"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	DeletedAt    *time.Time        `json:"deletedAt,omitempty"`
}

// UnmarshalJSON fills only the variant named by the type tag. Fields of the
// other variant are dropped.
func (pm *PaymentMethod) UnmarshalJSON(data []byte) error {
	var w paymentMethodWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*pm = PaymentMethod{
		ID:         w.ID,
		CustomerID: w.CustomerID,
		Type:       w.Type,
		Metadata:   w.Metadata,
		Livemode:   w.Livemode,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
		DeletedAt:  w.DeletedAt,
	}

	switch w.Type {
	case PaymentMethodTypeCreditCard:
		pm.Card = &CardDetails{
			Brand:       w.Brand,
			FirstDigits: w.FirstDigits,
			LastDigits:  w.LastDigits,
			ExpiryMonth: w.ExpiryMonth,
			ExpiryYear:  w.ExpiryYear,
			HolderName:  w.HolderName,
		}
	case PaymentMethodTypePix:
		pm.Pix = &PixDetails{
			Key:       w.PixKey,
			ExpiresAt: w.PixExpiresAt,
		}
	}
	return nil
}

// MarshalJSON writes the flat wire record back.
func (pm PaymentMethod) MarshalJSON() ([]byte, error) {
	w := paymentMethodWire{
		ID:         pm.ID,
		CustomerID: pm.CustomerID,
		Type:       pm.Type,
		Metadata:   pm.Metadata,
		Livemode:   pm.Livemode,
		CreatedAt:  pm.CreatedAt,
		UpdatedAt:  pm.UpdatedAt,
		DeletedAt:  pm.DeletedAt,
	}
	if c := pm.Card; c != nil {
		w.Brand = c.Brand
		w.FirstDigits = c.FirstDigits
		w.LastDigits = c.LastDigits
		w.ExpiryMonth = c.ExpiryMonth
		w.ExpiryYear = c.ExpiryYear
		w.HolderName = c.HolderName
	}
	if p := pm.Pix; p != nil {
		w.PixKey = p.Key
		w.PixExpiresAt = p.ExpiresAt
	}
	return json.Marshal(w)
}

// PaymentMethodInput selects the payment method of a new payment: either an
// existing PaymentMethodID or creation params (CardParams, PixParams).
type PaymentMethodInput interface {
	isPaymentMethodInput()
}

// PaymentMethodParams are the creation params of one payment method variant.
// Implemented by CardParams and PixParams.
type PaymentMethodParams interface {
	PaymentMethodInput
	Type() PaymentMethodType
}

// PaymentMethodID references an existing payment method.
type PaymentMethodID string

func (PaymentMethodID) isPaymentMethodInput() {}

// CardParams creates a credit_card payment method.
type CardParams struct {
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	CVV         string `json:"cvv"`
	HolderName  string `json:"holderName"`
}

func (CardParams) isPaymentMethodInput() {}

// Type implements PaymentMethodParams.
func (CardParams) Type() PaymentMethodType { return PaymentMethodTypeCreditCard }

// MarshalJSON encodes {"type":"credit_card","card":{...}}.
func (p CardParams) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelopeOf(p))
}

// PixParams creates a pix payment method. ExpiresIn is in seconds.
type PixParams struct {
	ExpiresIn *int `json:"expiresIn,omitempty"`
}

func (PixParams) isPaymentMethodInput() {}

// Type implements PaymentMethodParams.
func (PixParams) Type() PaymentMethodType { return PaymentMethodTypePix }

// MarshalJSON encodes {"type":"pix","pix":{...}}.
func (p PixParams) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelopeOf(p))
}

// cardFields and pixFields drop the MarshalJSON methods of their params.
type (
	cardFields CardParams
	pixFields  PixParams
)

type paymentMethodEnvelope struct {
	Type PaymentMethodType `json:"type"`
	Card *cardFields       `json:"card,omitempty"`
	Pix  *pixFields        `json:"pix,omitempty"`
}

func envelopeOf(p PaymentMethodParams) paymentMethodEnvelope {
	env := paymentMethodEnvelope{Type: p.Type()}
	switch v := p.(type) {
	case CardParams:
		f := cardFields(v)
		env.Card = &f
	case *CardParams:
		f := cardFields(*v)
		env.Card = &f
	case PixParams:
		f := pixFields(v)
		env.Pix = &f
	case *PixParams:
		f := pixFields(*v)
		env.Pix = &f
	}
	return env
}

var errPaymentMethodRequired = errors.New("payment method params are required")

// PaymentMethodCreateParams creates a payment method for a customer.
type PaymentMethodCreateParams struct {
	CustomerID string
	Method     PaymentMethodParams
}

// MarshalJSON encodes {"customerId":...,"type":...,"card"|"pix":{...}}.
func (p PaymentMethodCreateParams) MarshalJSON() ([]byte, error) {
	if p.Method == nil {
		return nil, errPaymentMethodRequired
	}
	return json.Marshal(struct {
		CustomerID string `json:"customerId"`
		paymentMethodEnvelope
	}{
		CustomerID:            p.CustomerID,
		paymentMethodEnvelope: envelopeOf(p.Method),
	})
}

// PaymentMethodListParams filters the payment method list.
type PaymentMethodListParams struct {
	ListParams
	CustomerID *string
}

const paymentMethodsPath = "/payment-methods"

// PaymentMethodService calls the /payment-methods endpoints.
type PaymentMethodService struct {
	backend Backend
}

// Create stores a new payment method.
func (s *PaymentMethodService) Create(ctx context.Context, params *PaymentMethodCreateParams, opts ...RequestOption) (*PaymentMethod, error) {
	var pm PaymentMethod
	if err := s.backend.Post(ctx, paymentMethodsPath, params, &pm, opts...); err != nil {
		return nil, err
	}
	return &pm, nil
}

// Retrieve fetches a payment method by id.
func (s *PaymentMethodService) Retrieve(ctx context.Context, id string, opts ...RequestOption) (*PaymentMethod, error) {
	var pm PaymentMethod
	if err := s.backend.Get(ctx, resourcePath(paymentMethodsPath, id), &pm, opts...); err != nil {
		return nil, err
	}
	return &pm, nil
}

// Delete soft deletes a payment method.
func (s *PaymentMethodService) Delete(ctx context.Context, id string, opts ...RequestOption) (*PaymentMethod, error) {
	var pm PaymentMethod
	if err := s.backend.Delete(ctx, resourcePath(paymentMethodsPath, id), &pm, opts...); err != nil {
		return nil, err
	}
	return &pm, nil
}

// List returns one page of payment methods. params may be nil.
func (s *PaymentMethodService) List(ctx context.Context, params *PaymentMethodListParams, opts ...RequestOption) (*ListResponse[PaymentMethod], error) {
	q := newQuery()
	if params != nil {
		params.ListParams.apply(q).setString("customerId", params.CustomerID)
	}

	var page ListResponse[PaymentMethod]
	if err := s.backend.Get(ctx, paymentMethodsPath+q.encode(), &page, opts...); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListByCustomer lists the payment methods of one customer; it is List with
// the customerId filter merged into params.
func (s *PaymentMethodService) ListByCustomer(ctx context.Context, customerID string, params *ListParams, opts ...RequestOption) (*ListResponse[PaymentMethod], error) {
	merged := &PaymentMethodListParams{CustomerID: &customerID}
	if params != nil {
		merged.ListParams = *params
	}
	return s.List(ctx, merged, opts...)
}
