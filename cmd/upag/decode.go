package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	upag "github.com/upag-io/upag-go"
)

// methodEnvelope is the {"type":...,"card"|"pix":{...}} shape of new payment methods.
type methodEnvelope struct {
	Type upag.PaymentMethodType `json:"type"`
	Card *upag.CardParams       `json:"card"`
	Pix  *upag.PixParams        `json:"pix"`
}

func (e methodEnvelope) params() (upag.PaymentMethodParams, error) {
	switch e.Type {
	case upag.PaymentMethodTypeCreditCard:
		if e.Card == nil {
			return nil, errors.New("credit_card payment method requires a card object")
		}
		return *e.Card, nil
	case upag.PaymentMethodTypePix:
		if e.Pix == nil {
			return upag.PixParams{}, nil
		}
		return *e.Pix, nil
	case "":
		return nil, errors.New("payment method type is required")
	}
	return nil, fmt.Errorf("unsupported payment method type %q", e.Type)
}

func decodePaymentMethodCreate(raw []byte) (*upag.PaymentMethodCreateParams, error) {
	var payload struct {
		CustomerID string `json:"customerId"`
		methodEnvelope
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode --data: %w", err)
	}

	method, err := payload.params()
	if err != nil {
		return nil, err
	}
	return &upag.PaymentMethodCreateParams{CustomerID: payload.CustomerID, Method: method}, nil
}

func decodePaymentCreate(raw []byte) (*upag.PaymentCreateParams, error) {
	var payload struct {
		Customer      json.RawMessage `json:"customer"`
		PaymentMethod json.RawMessage `json:"paymentMethod"`
		Amount        int64           `json:"amount"`
		Currency      upag.Currency   `json:"currency"`
		Installments  *int            `json:"installments"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode --data: %w", err)
	}

	customer, err := decodeCustomerInput(payload.Customer)
	if err != nil {
		return nil, err
	}
	method, err := decodePaymentMethodInput(payload.PaymentMethod)
	if err != nil {
		return nil, err
	}

	return &upag.PaymentCreateParams{
		Customer:      customer,
		PaymentMethod: method,
		Amount:        payload.Amount,
		Currency:      payload.Currency,
		Installments:  payload.Installments,
	}, nil
}

// decodeCustomerInput accepts a customer id string or customer params object.
func decodeCustomerInput(raw json.RawMessage) (upag.CustomerInput, error) {
	switch kindOf(raw) {
	case '"':
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return nil, fmt.Errorf("decode customer: %w", err)
		}
		return upag.CustomerID(id), nil
	case '{':
		var params upag.CustomerParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, fmt.Errorf("decode customer: %w", err)
		}
		return &params, nil
	}
	return nil, errors.New("customer must be an id or an object")
}

// decodePaymentMethodInput accepts a payment method id string or a typed envelope.
func decodePaymentMethodInput(raw json.RawMessage) (upag.PaymentMethodInput, error) {
	switch kindOf(raw) {
	case '"':
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return nil, fmt.Errorf("decode paymentMethod: %w", err)
		}
		return upag.PaymentMethodID(id), nil
	case '{':
		var env methodEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decode paymentMethod: %w", err)
		}
		return env.params()
	}
	return nil, errors.New("paymentMethod must be an id or an object")
}

func kindOf(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
