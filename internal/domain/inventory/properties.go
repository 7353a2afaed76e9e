package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Well-known property keys.
const (
	PropStatus              = "status"
	PropType                = "type"
	PropHouseholdID         = "householdId"
	PropAccountNumber       = "accountNumber"
	PropContactName         = "contactName"
	PropContactPhone        = "contactPhone"
	PropServiceID           = "serviceID"
	PropServiceLink         = "serviceLink"
	PropServiceSubType      = "serviceSubType"
	PropSerialNo            = "serialNo"
	PropMACAddress          = "macAddress"
	PropQoSProfile          = "qosProfile"
	PropProductType         = "productType"
	PropServiceStatus       = "serviceStatus"
	PropServiceType         = "serviceType"
	PropTransactionID       = "transactionId"
	PropTransactionType     = "transactionType"
	PropModel               = "model"
	PropAdministrativeState = "administrativeState"
	PropOperationalState    = "operationalState"
	PropVoipPort1           = "voipPort1"
	PropVoipPort2           = "voipPort2"
	PropPotsPort1Number     = "potsPort1Number"
	PropPotsPort2Number     = "potsPort2Number"
	PropVoipNumber1         = "voipNumber1"
	PropVoipNumber2         = "voipNumber2"
	PropVLANID              = "vlanId"
	PropMENM                = "menm"
	PropPort                = "port"
	PropSlot                = "slot"
	PropTemplateRef         = "templateRef"
	PropPortState           = "portState"
)

// PortCounterKey is the device property holding the usage counter of a port.
func PortCounterKey(port int) string {
	return fmt.Sprintf("port%dCounter", port)
}

// ValueKind enumerates the closed set of property value types.
type ValueKind uint8

const (
	ValueString ValueKind = iota + 1
	ValueInt
	ValueBool
)

// Value is a property value: a string, an integer or a boolean.
type Value struct {
	kind ValueKind
	s    string
	i    int64
	b    bool
}

func StringValue(s string) Value { return Value{kind: ValueString, s: s} }
func IntValue(i int64) Value     { return Value{kind: ValueInt, i: i} }
func BoolValue(b bool) Value     { return Value{kind: ValueBool, b: b} }

func (v Value) Kind() ValueKind { return v.kind }

// String renders any value kind as text.
func (v Value) String() string {
	switch v.kind {
	case ValueInt:
		return strconv.FormatInt(v.i, 10)
	case ValueBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// Int returns the value as an integer. Strings are parsed; ok is false when that fails.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case ValueInt:
		return v.i, true
	case ValueString:
		n, err := strconv.ParseInt(v.s, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func (v Value) Bool() (bool, bool) {
	switch v.kind {
	case ValueBool:
		return v.b, true
	case ValueString:
		b, err := strconv.ParseBool(v.s)
		return b, err == nil
	default:
		return false, false
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueInt:
		return json.Marshal(v.i)
	case ValueBool:
		return json.Marshal(v.b)
	default:
		return json.Marshal(v.s)
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ValueOf converts a loosely typed value (JSON, YAML, request bodies) into a Value.
func ValueOf(raw any) (Value, error) {
	switch x := raw.(type) {
	case string:
		return StringValue(x), nil
	case bool:
		return BoolValue(x), nil
	case int:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return IntValue(n), nil
		}
		return StringValue(x.String()), nil
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return IntValue(int64(x)), nil
		}
		return StringValue(strconv.FormatFloat(x, 'f', -1, 64)), nil
	case nil:
		return StringValue(""), nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported property value type %T", ErrInvalidProperty, raw)
	}
}

// Properties is the open property bag of an entity.
type Properties map[string]Value

func (p Properties) Get(key string) (Value, bool) {
	v, ok := p[key]
	return v, ok
}

// GetString returns the textual value of key, or "" when absent.
func (p Properties) GetString(key string) string {
	if v, ok := p[key]; ok {
		return v.String()
	}
	return ""
}

// GetInt returns the integer value of key. Absent or unparsable values yield 0.
func (p Properties) GetInt(key string) int {
	if v, ok := p[key]; ok {
		if n, ok := v.Int(); ok {
			return int(n)
		}
	}
	return 0
}

func (p Properties) SetString(key, value string) {
	p[key] = StringValue(value)
}

func (p Properties) SetInt(key string, value int) {
	p[key] = IntValue(int64(value))
}

func (p Properties) SetBool(key string, value bool) {
	p[key] = BoolValue(value)
}

func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Keys returns the property keys in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToMap flattens the bag to plain Go values, for JSON responses.
func (p Properties) ToMap() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		switch v.kind {
		case ValueInt:
			out[k] = v.i
		case ValueBool:
			out[k] = v.b
		default:
			out[k] = v.s
		}
	}
	return out
}

// PropertiesFromMap builds a bag from loosely typed values.
func PropertiesFromMap(m map[string]any) (Properties, error) {
	out := make(Properties, len(m))
	for k, raw := range m {
		v, err := ValueOf(raw)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}
