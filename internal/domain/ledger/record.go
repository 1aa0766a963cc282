package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
)

// Record is one flat document as returned by the store
type Record map[string]any

// String returns the field as a string, or "" when absent
func (r Record) String(key string) string {
	return coerceString(r[key])
}

// Amount returns the field as a decimal, or zero when absent or unparsable
func (r Record) Amount(key string) decimal.Decimal {
	return CoerceAmount(r[key])
}

// Bool returns the field as a bool, or false when absent or unparsable
func (r Record) Bool(key string) bool {
	return coerceBool(r[key])
}

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
)

// recordHook applies the lenient field rules: amounts never fail, booleans
// never fail, timestamps are kept as RFC3339 strings.
func recordHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	switch {
	case to == decimalType:
		return CoerceAmount(data), nil
	case to.Kind() == reflect.Bool:
		return coerceBool(data), nil
	case to.Kind() == reflect.String && (from == timeType || from == reflect.PointerTo(timeType)):
		return coerceString(data), nil
	}
	return data, nil
}

func decodeRecord(r Record, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.DecodeHookFuncType(recordHook),
	})
	if err != nil {
		return err
	}
	return dec.Decode(r)
}

// DecodeEntities decodes vendor or project records
func DecodeEntities(kind EntityKind, records []Record) ([]LedgerEntity, error) {
	entities := make([]LedgerEntity, 0, len(records))
	for i, r := range records {
		var e LedgerEntity
		if err := decodeRecord(r, &e); err != nil {
			return nil, malformed(i, err)
		}
		e.Kind = kind
		entities = append(entities, e)
	}
	return entities, nil
}

// DecodeOrders decodes purchase order or work order records. The invoice_lines
// field holds a JSON object keyed by date key.
func DecodeOrders(kind OrderKind, records []Record) ([]OrderDocument, error) {
	orders := make([]OrderDocument, 0, len(records))
	for i, r := range records {
		fields := make(Record, len(r))
		for k, v := range r {
			if k != FieldInvoiceLines {
				fields[k] = v
			}
		}

		var o OrderDocument
		if err := decodeRecord(fields, &o); err != nil {
			return nil, malformed(i, err)
		}
		lines, err := DecodeInvoiceLines(r[FieldInvoiceLines])
		if err != nil {
			return nil, malformed(i, err)
		}
		for key, line := range lines {
			line.OrderID = o.ID
			lines[key] = line
		}
		o.Kind = kind
		o.Status = ParseOrderStatus(string(o.Status))
		o.InvoiceLines = lines
		orders = append(orders, o)
	}
	return orders, nil
}

// DecodeInvoiceLines accepts the invoice line map as raw JSON text or as an
// already decoded object. Absent or blank input means no lines.
func DecodeInvoiceLines(raw any) (map[string]InvoiceLine, error) {
	var obj map[string]any
	switch v := raw.(type) {
	case nil:
		return map[string]InvoiceLine{}, nil
	case map[string]any:
		obj = v
	case Record:
		obj = v
	case string:
		return decodeInvoiceLinesJSON([]byte(v))
	case []byte:
		return decodeInvoiceLinesJSON(v)
	case json.RawMessage:
		return decodeInvoiceLinesJSON(v)
	default:
		return nil, fmt.Errorf("invoice_lines: unexpected type %T", raw)
	}

	lines := make(map[string]InvoiceLine, len(obj))
	for key, value := range obj {
		fields, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invoice_lines[%s]: expected object, got %T", key, value)
		}
		var line InvoiceLine
		if err := decodeRecord(fields, &line); err != nil {
			return nil, fmt.Errorf("invoice_lines[%s]: %w", key, err)
		}
		line.DateKey = key
		line.ReconciliationStatus = ParseReconciliationStatus(string(line.ReconciliationStatus))
		lines[key] = line
	}
	return lines, nil
}

func decodeInvoiceLinesJSON(data []byte) (map[string]InvoiceLine, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return map[string]InvoiceLine{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("invoice_lines: %w", err)
	}
	return DecodeInvoiceLines(obj)
}

// DecodePayments decodes payment records
func DecodePayments(records []Record) ([]PaymentDocument, error) {
	payments := make([]PaymentDocument, 0, len(records))
	for i, r := range records {
		var p PaymentDocument
		if err := decodeRecord(r, &p); err != nil {
			return nil, malformed(i, err)
		}
		payments = append(payments, p)
	}
	return payments, nil
}

// DecodeInflows decodes project inflow records
func DecodeInflows(records []Record) ([]InflowDocument, error) {
	inflows := make([]InflowDocument, 0, len(records))
	for i, r := range records {
		var d InflowDocument
		if err := decodeRecord(r, &d); err != nil {
			return nil, malformed(i, err)
		}
		inflows = append(inflows, d)
	}
	return inflows, nil
}

// DecodeExpenses decodes project expense records
func DecodeExpenses(records []Record) ([]ExpenseDocument, error) {
	expenses := make([]ExpenseDocument, 0, len(records))
	for i, r := range records {
		var d ExpenseDocument
		if err := decodeRecord(r, &d); err != nil {
			return nil, malformed(i, err)
		}
		expenses = append(expenses, d)
	}
	return expenses, nil
}

// DecodeAttachments decodes attachment records. Unknown attachment types are
// kept with their raw type and are ignored by the counters.
func DecodeAttachments(records []Record) ([]AttachmentDocument, error) {
	attachments := make([]AttachmentDocument, 0, len(records))
	for i, r := range records {
		var a AttachmentDocument
		if err := decodeRecord(r, &a); err != nil {
			return nil, malformed(i, err)
		}
		a.Type, _ = ParseAttachmentType(string(a.Type))
		attachments = append(attachments, a)
	}
	return attachments, nil
}

func malformed(index int, err error) error {
	return ErrMalformedCollection.WithDetail("record %d", index).Wrap(err)
}

func coerceString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func coerceBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return err == nil && b
	case []byte:
		b, err := strconv.ParseBool(strings.TrimSpace(string(x)))
		return err == nil && b
	case int, int32, int64, float32, float64, json.Number:
		return !CoerceAmount(x).IsZero()
	default:
		return false
	}
}
