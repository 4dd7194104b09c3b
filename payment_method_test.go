package upag

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upag-io/upag-go/internal/testutil"
)

const cardMethodJSON = `{
	"id": "pm_card",
	"customerId": "cus_1",
	"type": "credit_card",
	"brand": "visa",
	"firstDigits": "411111",
	"lastDigits": "1111",
	"expiryMonth": 12,
	"expiryYear": 2030,
	"holderName": "JANE DOE",
	"livemode": false,
	"createdAt": "2024-01-01T00:00:00Z",
	"updatedAt": "2024-01-01T00:00:00Z"
}`

const pixMethodJSON = `{
	"id": "pm_pix",
	"customerId": "cus_1",
	"type": "pix",
	"pixKey": "00020126580014br.gov.bcb.pix",
	"pixExpiresAt": "2024-01-01T01:00:00Z",
	"livemode": true,
	"createdAt": "2024-01-01T00:00:00Z",
	"updatedAt": "2024-01-01T00:00:00Z"
}`

func TestPaymentMethodUnmarshalCard(t *testing.T) {
	var pm PaymentMethod
	require.NoError(t, json.Unmarshal([]byte(cardMethodJSON), &pm))

	assert.Equal(t, PaymentMethodTypeCreditCard, pm.Type)
	assert.Nil(t, pm.Pix)
	require.NotNil(t, pm.Card)
	assert.Equal(t, CardDetails{
		Brand:       "visa",
		FirstDigits: "411111",
		LastDigits:  "1111",
		ExpiryMonth: 12,
		ExpiryYear:  2030,
		HolderName:  "JANE DOE",
	}, *pm.Card)
}

func TestPaymentMethodUnmarshalPix(t *testing.T) {
	var pm PaymentMethod
	require.NoError(t, json.Unmarshal([]byte(pixMethodJSON), &pm))

	assert.Equal(t, PaymentMethodTypePix, pm.Type)
	assert.Nil(t, pm.Card)
	require.NotNil(t, pm.Pix)
	assert.Equal(t, "00020126580014br.gov.bcb.pix", pm.Pix.Key)
	require.NotNil(t, pm.Pix.ExpiresAt)
	assert.Equal(t, time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), *pm.Pix.ExpiresAt)
	assert.True(t, pm.Livemode)
}

func TestPaymentMethodUnmarshalDropsOtherVariant(t *testing.T) {
	var pm PaymentMethod
	require.NoError(t, json.Unmarshal([]byte(`{"id":"pm_1","type":"pix","pixKey":"k","brand":"visa"}`), &pm))

	assert.Nil(t, pm.Card)
	require.NotNil(t, pm.Pix)
	assert.Equal(t, "k", pm.Pix.Key)
}

func TestPaymentMethodUnmarshalUnknownType(t *testing.T) {
	var pm PaymentMethod
	require.NoError(t, json.Unmarshal([]byte(`{"id":"pm_1","type":"boleto"}`), &pm))

	assert.Equal(t, PaymentMethodType("boleto"), pm.Type)
	assert.Nil(t, pm.Card)
	assert.Nil(t, pm.Pix)
}

func TestPaymentMethodRoundTrip(t *testing.T) {
	for _, raw := range []string{cardMethodJSON, pixMethodJSON} {
		var pm PaymentMethod
		require.NoError(t, json.Unmarshal([]byte(raw), &pm))

		encoded, err := json.Marshal(pm)
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(encoded))
	}
}

func TestPaymentMethodCreateParamsMarshal(t *testing.T) {
	tests := []struct {
		name   string
		params PaymentMethodCreateParams
		want   string
	}{
		{
			name: "card",
			params: PaymentMethodCreateParams{
				CustomerID: "cus_1",
				Method: CardParams{
					Number:      "4111111111111111",
					ExpiryMonth: "12",
					ExpiryYear:  "2030",
					CVV:         "123",
					HolderName:  "JANE DOE",
				},
			},
			want: `{"customerId":"cus_1","type":"credit_card","card":{"number":"4111111111111111","expiryMonth":"12","expiryYear":"2030","cvv":"123","holderName":"JANE DOE"}}`,
		},
		{
			name:   "card pointer",
			params: PaymentMethodCreateParams{CustomerID: "cus_1", Method: &CardParams{Number: "4111"}},
			want:   `{"customerId":"cus_1","type":"credit_card","card":{"number":"4111","expiryMonth":"","expiryYear":"","cvv":"","holderName":""}}`,
		},
		{
			name:   "pix with expiry",
			params: PaymentMethodCreateParams{CustomerID: "cus_1", Method: PixParams{ExpiresIn: Int(3600)}},
			want:   `{"customerId":"cus_1","type":"pix","pix":{"expiresIn":3600}}`,
		},
		{
			name:   "pix without expiry",
			params: PaymentMethodCreateParams{CustomerID: "cus_1", Method: PixParams{}},
			want:   `{"customerId":"cus_1","type":"pix","pix":{}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.params)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestPaymentMethodCreateWithoutMethodIsClientError(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	client, err := NewWithConfig(Config{APIKey: "sk", BaseURL: api.BaseURL()})
	require.NoError(t, err)

	pm, err := client.PaymentMethods.Create(context.Background(), &PaymentMethodCreateParams{CustomerID: "cus_1"})

	assert.Nil(t, pm)
	assert.True(t, IsClientError(err))
	assert.ErrorIs(t, err, errPaymentMethodRequired)
	assert.Empty(t, api.Requests())
}

func TestPaymentMethodServiceCreate(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Respond("POST", "/v1/payment-methods", http.StatusCreated, cardMethodJSON)
	client, err := NewWithConfig(Config{APIKey: "sk", BaseURL: api.BaseURL()})
	require.NoError(t, err)

	pm, err := client.PaymentMethods.Create(context.Background(), &PaymentMethodCreateParams{
		CustomerID: "cus_1",
		Method:     CardParams{Number: "4111111111111111", ExpiryMonth: "12", ExpiryYear: "2030", CVV: "123", HolderName: "JANE DOE"},
	})
	require.NoError(t, err)

	assert.Equal(t, "pm_card", pm.ID)
	assert.Equal(t, "1111", pm.Card.LastDigits)

	req := api.LastRequest(t)
	assert.Equal(t, "/v1/payment-methods", req.Path)
	assert.JSONEq(t,
		`{"customerId":"cus_1","type":"credit_card","card":{"number":"4111111111111111","expiryMonth":"12","expiryYear":"2030","cvv":"123","holderName":"JANE DOE"}}`,
		string(req.Body))
}

func TestPaymentMethodServiceRetrieveAndDelete(t *testing.T) {
	backend := &recordingBackend{response: pixMethodJSON}
	svc := &PaymentMethodService{backend: backend}

	pm, err := svc.Retrieve(context.Background(), "pm_pix")
	require.NoError(t, err)
	assert.Equal(t, "GET", backend.lastCall().Method)
	assert.Equal(t, "/payment-methods/pm_pix", backend.lastCall().Path)
	assert.Equal(t, "pm_pix", pm.ID)

	_, err = svc.Delete(context.Background(), "pm_pix")
	require.NoError(t, err)
	assert.Equal(t, "DELETE", backend.lastCall().Method)
	assert.Equal(t, "/payment-methods/pm_pix", backend.lastCall().Path)
}

func TestPaymentMethodServiceList(t *testing.T) {
	tests := []struct {
		name   string
		params *PaymentMethodListParams
		path   string
	}{
		{"nil params", nil, "/payment-methods"},
		{"paging", &PaymentMethodListParams{ListParams: ListParams{Limit: Int(5), Page: Int(1)}}, "/payment-methods?limit=5&page=1"},
		{"customer filter", &PaymentMethodListParams{CustomerID: String("cus_1")}, "/payment-methods?customerId=cus_1"},
		{
			"customer filter and paging",
			&PaymentMethodListParams{ListParams: ListParams{Limit: Int(10)}, CustomerID: String("cus 1")},
			"/payment-methods?customerId=cus+1&limit=10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &recordingBackend{response: `{"data":[` + cardMethodJSON + `,` + pixMethodJSON + `],"hasMore":false}`}
			svc := &PaymentMethodService{backend: backend}

			page, err := svc.List(context.Background(), tt.params)
			require.NoError(t, err)

			assert.Equal(t, tt.path, backend.lastCall().Path)
			require.Len(t, page.Data, 2)
			assert.NotNil(t, page.Data[0].Card)
			assert.NotNil(t, page.Data[1].Pix)
		})
	}
}

func TestPaymentMethodServiceListByCustomer(t *testing.T) {
	listBackend := &recordingBackend{response: `{"data":[],"hasMore":false}`}
	byCustomerBackend := &recordingBackend{response: `{"data":[],"hasMore":false}`}

	paging := ListParams{Limit: Int(10), Page: Int(2)}

	_, err := (&PaymentMethodService{backend: listBackend}).List(context.Background(),
		&PaymentMethodListParams{ListParams: paging, CustomerID: String("cus_1")})
	require.NoError(t, err)

	_, err = (&PaymentMethodService{backend: byCustomerBackend}).ListByCustomer(context.Background(), "cus_1", &paging)
	require.NoError(t, err)

	assert.Equal(t, listBackend.lastCall().Path, byCustomerBackend.lastCall().Path)
	assert.Equal(t, "/payment-methods?customerId=cus_1&limit=10&page=2", byCustomerBackend.lastCall().Path)

	_, err = (&PaymentMethodService{backend: byCustomerBackend}).ListByCustomer(context.Background(), "cus_1", nil)
	require.NoError(t, err)
	assert.Equal(t, "/payment-methods?customerId=cus_1", byCustomerBackend.lastCall().Path)
}
