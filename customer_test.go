package upag

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customerJSON = `{
	"id": "cus_1",
	"accountId": "acc_1",
	"email": "jane@example.com",
	"name": "Jane Doe",
	"phone": "+5511999999999",
	"metadata": {"plan": "pro"},
	"livemode": false,
	"createdAt": "2024-01-01T00:00:00Z",
	"updatedAt": "2024-01-02T00:00:00Z"
}`

func TestCustomerServiceCreate(t *testing.T) {
	backend := &recordingBackend{response: customerJSON}
	svc := &CustomerService{backend: backend}

	params := &CustomerParams{Email: "jane@example.com", Name: "Jane Doe", Phone: String("+5511999999999")}
	customer, err := svc.Create(context.Background(), params, WithIdempotencyKey("k1"))
	require.NoError(t, err)

	call := backend.lastCall()
	assert.Equal(t, "POST", call.Method)
	assert.Equal(t, "/customers", call.Path)
	assert.Same(t, params, call.Body)
	assert.Len(t, call.Opts, 1)

	assert.Equal(t, "cus_1", customer.ID)
	assert.Equal(t, "acc_1", customer.AccountID)
	require.NotNil(t, customer.Phone)
	assert.Equal(t, "+5511999999999", *customer.Phone)
	assert.Equal(t, map[string]any{"plan": "pro"}, customer.Metadata)
}

func TestCustomerParamsOmitUnsetFields(t *testing.T) {
	data, err := json.Marshal(&CustomerParams{Email: "jane@example.com", Name: "Jane"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"jane@example.com","name":"Jane"}`, string(data))

	data, err = json.Marshal(&CustomerUpdateParams{City: String("São Paulo")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"city":"São Paulo"}`, string(data))
}

func TestCustomerServiceRetrieveUpdateDelete(t *testing.T) {
	backend := &recordingBackend{response: customerJSON}
	svc := &CustomerService{backend: backend}
	ctx := context.Background()

	_, err := svc.Retrieve(ctx, "cus_1")
	require.NoError(t, err)
	assert.Equal(t, recordedCall{Method: "GET", Path: "/customers/cus_1"}, backend.lastCall())

	update := &CustomerUpdateParams{Name: String("Janet")}
	_, err = svc.Update(ctx, "cus_1", update)
	require.NoError(t, err)
	assert.Equal(t, "PUT", backend.lastCall().Method)
	assert.Equal(t, "/customers/cus_1", backend.lastCall().Path)
	assert.Same(t, update, backend.lastCall().Body)

	backend.response = `{"id":"cus_1","deletedAt":"2024-02-01T00:00:00Z"}`
	deleted, err := svc.Delete(ctx, "cus_1")
	require.NoError(t, err)
	assert.Equal(t, "DELETE", backend.lastCall().Method)
	assert.Equal(t, "/customers/cus_1", backend.lastCall().Path)
	assert.True(t, deleted.Deleted())
}

func TestCustomerServiceEscapesID(t *testing.T) {
	backend := &recordingBackend{}
	svc := &CustomerService{backend: backend}

	_, err := svc.Retrieve(context.Background(), "cus/../1")
	require.NoError(t, err)
	assert.Equal(t, "/customers/cus%2F..%2F1", backend.lastCall().Path)
}

func TestCustomerServiceList(t *testing.T) {
	tests := []struct {
		name   string
		params *ListParams
		path   string
	}{
		{"nil params", nil, "/customers"},
		{"empty params", &ListParams{}, "/customers"},
		{"limit only", &ListParams{Limit: Int(10)}, "/customers?limit=10"},
		{"limit and page", &ListParams{Limit: Int(10), Page: Int(2)}, "/customers?limit=10&page=2"},
		{"zero is sent", &ListParams{Page: Int(0)}, "/customers?page=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &recordingBackend{response: `{"data":[{"id":"cus_1"},{"id":"cus_2"}],"hasMore":false}`}
			svc := &CustomerService{backend: backend}

			page, err := svc.List(context.Background(), tt.params)
			require.NoError(t, err)

			assert.Equal(t, tt.path, backend.lastCall().Path)
			require.Len(t, page.Data, 2)
			assert.Equal(t, "cus_2", page.Data[1].ID)
			assert.False(t, page.HasMore)
			assert.Nil(t, page.Total)
		})
	}
}

func TestCustomerServicePropagatesErrors(t *testing.T) {
	want := &Error{Type: ErrorTypeAPI, StatusCode: 404, Message: "customer not found"}
	svc := &CustomerService{backend: &recordingBackend{err: want}}

	customer, err := svc.Retrieve(context.Background(), "cus_missing")

	assert.Nil(t, customer)
	assert.Same(t, want, err)
}
