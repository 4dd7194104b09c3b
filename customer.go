package upag

import (
	"context"
	"time"
)

// Customer is a payer registered with Upag. Deleted customers keep their
// record with DeletedAt set.
type Customer struct {
	ID        string         `json:"id"`
	AccountID string         `json:"accountId"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Phone     *string        `json:"phone,omitempty"`
	TaxID     *string        `json:"taxId,omitempty"`
	Line1     *string        `json:"line1,omitempty"`
	Line2     *string        `json:"line2,omitempty"`
	City      *string        `json:"city,omitempty"`
	State     *string        `json:"state,omitempty"`
	Country   *string        `json:"country,omitempty"`
	ZipCode   *string        `json:"zipCode,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Livemode  bool           `json:"livemode"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt *time.Time     `json:"deletedAt,omitempty"`
}

// Deleted reports whether the customer was soft deleted.
func (c *Customer) Deleted() bool {
	return c.DeletedAt != nil
}

// CustomerParams creates a customer, standalone or inline in a payment.
type CustomerParams struct {
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Phone   *string `json:"phone,omitempty"`
	TaxID   *string `json:"taxId,omitempty"`
	Line1   *string `json:"line1,omitempty"`
	Line2   *string `json:"line2,omitempty"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	Country *string `json:"country,omitempty"`
	ZipCode *string `json:"zipCode,omitempty"`
}

// CustomerUpdateParams changes only the fields that are set.
type CustomerUpdateParams struct {
	Email   *string `json:"email,omitempty"`
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	TaxID   *string `json:"taxId,omitempty"`
	Line1   *string `json:"line1,omitempty"`
	Line2   *string `json:"line2,omitempty"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	Country *string `json:"country,omitempty"`
	ZipCode *string `json:"zipCode,omitempty"`
}

const customersPath = "/customers"

// CustomerService calls the /customers endpoints.
type CustomerService struct {
	backend Backend
}

// Create registers a new customer.
func (s *CustomerService) Create(ctx context.Context, params *CustomerParams, opts ...RequestOption) (*Customer, error) {
	var customer Customer
	if err := s.backend.Post(ctx, customersPath, params, &customer, opts...); err != nil {
		return nil, err
	}
	return &customer, nil
}

// Retrieve fetches a customer by id.
func (s *CustomerService) Retrieve(ctx context.Context, id string, opts ...RequestOption) (*Customer, error) {
	var customer Customer
	if err := s.backend.Get(ctx, resourcePath(customersPath, id), &customer, opts...); err != nil {
		return nil, err
	}
	return &customer, nil
}

// Update changes the set fields of a customer.
func (s *CustomerService) Update(ctx context.Context, id string, params *CustomerUpdateParams, opts ...RequestOption) (*Customer, error) {
	var customer Customer
	if err := s.backend.Put(ctx, resourcePath(customersPath, id), params, &customer, opts...); err != nil {
		return nil, err
	}
	return &customer, nil
}

// Delete soft deletes a customer and returns the record with DeletedAt set.
func (s *CustomerService) Delete(ctx context.Context, id string, opts ...RequestOption) (*Customer, error) {
	var customer Customer
	if err := s.backend.Delete(ctx, resourcePath(customersPath, id), &customer, opts...); err != nil {
		return nil, err
	}
	return &customer, nil
}

// List returns one page of customers. params may be nil.
func (s *CustomerService) List(ctx context.Context, params *ListParams, opts ...RequestOption) (*ListResponse[Customer], error) {
	var page ListResponse[Customer]
	path := customersPath + params.apply(newQuery()).encode()
	if err := s.backend.Get(ctx, path, &page, opts...); err != nil {
		return nil, err
	}
	return &page, nil
}
