package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	upag "github.com/upag-io/upag-go"
)

// invocation is one parsed "upag <resource> <action>" call.
type invocation struct {
	resource string
	action   string
	args     []string

	data           string
	limit          optionalInt
	page           optionalInt
	customer       optionalString
	status         optionalString
	correlationID  string
	idempotencyKey string
}

func parseInvocation(args []string) (*invocation, error) {
	if len(args) < 2 {
		return nil, errors.New("usage: upag <resource> <action> [flags] [id]")
	}

	inv := &invocation{resource: args[0], action: args[1]}

	fs := flag.NewFlagSet(inv.resource+" "+inv.action, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&inv.data, "data", "", "request body as JSON, or @file")
	fs.Var(&inv.limit, "limit", "page size")
	fs.Var(&inv.page, "page", "page number")
	fs.Var(&inv.customer, "customer", "filter by customer id")
	fs.Var(&inv.status, "status", "filter by payment status")
	fs.StringVar(&inv.correlationID, "correlation-id", "", "X-Correlation-ID to send")
	fs.StringVar(&inv.idempotencyKey, "idempotency-key", "", "Idempotency-Key to send")

	// Flags and positional arguments may be interleaved.
	rest := args[2:]
	for {
		if err := fs.Parse(rest); err != nil {
			return nil, fmt.Errorf("%s %s: %w", inv.resource, inv.action, err)
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		inv.args = append(inv.args, rest[0])
		rest = rest[1:]
	}

	return inv, nil
}

// id returns the single positional id of get/update/delete.
func (inv *invocation) id() (string, error) {
	if len(inv.args) != 1 || strings.TrimSpace(inv.args[0]) == "" {
		return "", fmt.Errorf("%s %s: exactly one ID argument is required", inv.resource, inv.action)
	}
	return inv.args[0], nil
}

// body reads --data, either inline JSON or @path.
func (inv *invocation) body() ([]byte, error) {
	if inv.data == "" {
		return nil, fmt.Errorf("%s %s: --data is required", inv.resource, inv.action)
	}

	raw := []byte(inv.data)
	if path, ok := strings.CutPrefix(inv.data, "@"); ok {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read --data file: %w", err)
		}
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%s %s: --data is not valid JSON", inv.resource, inv.action)
	}
	return raw, nil
}

func (inv *invocation) listParams() upag.ListParams {
	return upag.ListParams{Limit: inv.limit.v, Page: inv.page.v}
}

func (inv *invocation) options() []upag.RequestOption {
	if inv.idempotencyKey == "" {
		return nil
	}
	return []upag.RequestOption{upag.WithIdempotencyKey(inv.idempotencyKey)}
}

// execute runs one command against client and prints the result to out.
func execute(ctx context.Context, client *upag.Client, args []string, out io.Writer) error {
	inv, err := parseInvocation(args)
	if err != nil {
		return err
	}
	if inv.correlationID != "" {
		ctx = upag.WithCorrelationID(ctx, inv.correlationID)
	}

	var result any
	switch inv.resource {
	case "customers":
		result, err = runCustomers(ctx, client.Customers, inv)
	case "payment-methods":
		result, err = runPaymentMethods(ctx, client.PaymentMethods, inv)
	case "payments":
		result, err = runPayments(ctx, client.Payments, inv)
	default:
		return fmt.Errorf("unknown resource %q", inv.resource)
	}
	if err != nil {
		return err
	}

	return printJSON(out, result)
}

func runCustomers(ctx context.Context, svc *upag.CustomerService, inv *invocation) (any, error) {
	switch inv.action {
	case "create":
		var params upag.CustomerParams
		if err := decodeBody(inv, &params); err != nil {
			return nil, err
		}
		return svc.Create(ctx, &params, inv.options()...)
	case "get":
		id, err := inv.id()
		if err != nil {
			return nil, err
		}
		return svc.Retrieve(ctx, id)
	case "update":
		id, err := inv.id()
		if err != nil {
			return nil, err
		}
		var params upag.CustomerUpdateParams
		if err := decodeBody(inv, &params); err != nil {
			return nil, err
		}
		return svc.Update(ctx, id, &params)
	case "delete":
		id, err := inv.id()
		if err != nil {
			return nil, err
		}
		return svc.Delete(ctx, id)
	case "list":
		params := inv.listParams()
		return svc.List(ctx, &params)
	}
	return nil, unknownAction(inv)
}

func runPaymentMethods(ctx context.Context, svc *upag.PaymentMethodService, inv *invocation) (any, error) {
	switch inv.action {
	case "create":
		raw, err := inv.body()
		if err != nil {
			return nil, err
		}
		params, err := decodePaymentMethodCreate(raw)
		if err != nil {
			return nil, err
		}
		return svc.Create(ctx, params, inv.options()...)
	case "get":
		id, err := inv.id()
		if err != nil {
			return nil, err
		}
		return svc.Retrieve(ctx, id)
	case "delete":
		id, err := inv.id()
		if err != nil {
			return nil, err
		}
		return svc.Delete(ctx, id)
	case "list":
		return svc.List(ctx, &upag.PaymentMethodListParams{
			ListParams: inv.listParams(),
			CustomerID: inv.customer.v,
		})
	}
	return nil, unknownAction(inv)
}

func runPayments(ctx context.Context, svc *upag.PaymentService, inv *invocation) (any, error) {
	switch inv.action {
	case "create":
		raw, err := inv.body()
		if err != nil {
			return nil, err
		}
		params, err := decodePaymentCreate(raw)
		if err != nil {
			return nil, err
		}
		return svc.Create(ctx, params, inv.options()...)
	case "get":
		id, err := inv.id()
		if err != nil {
			return nil, err
		}
		return svc.Retrieve(ctx, id)
	case "list":
		params := &upag.PaymentListParams{
			ListParams: inv.listParams(),
			Customer:   inv.customer.v,
		}
		if inv.status.v != nil {
			status := upag.PaymentStatus(*inv.status.v)
			params.Status = &status
		}
		return svc.List(ctx, params)
	}
	return nil, unknownAction(inv)
}

func decodeBody(inv *invocation, v any) error {
	raw, err := inv.body()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode --data: %w", err)
	}
	return nil
}

func unknownAction(inv *invocation) error {
	return fmt.Errorf("unknown action %q for %s", inv.action, inv.resource)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// optionalInt is an int flag that stays nil unless given.
type optionalInt struct{ v *int }

func (o *optionalInt) String() string {
	if o.v == nil {
		return ""
	}
	return strconv.Itoa(*o.v)
}

func (o *optionalInt) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	o.v = &n
	return nil
}

// optionalString is a string flag that stays nil unless given.
type optionalString struct{ v *string }

func (o *optionalString) String() string {
	if o.v == nil {
		return ""
	}
	return *o.v
}

func (o *optionalString) Set(s string) error {
	o.v = &s
	return nil
}
