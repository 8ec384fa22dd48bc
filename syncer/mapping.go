package syncer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldKind tells the mapping engine how to convert a column value when it
// crosses the local/remote boundary.
type FieldKind int

const (
	KindString FieldKind = iota
	KindInt
	KindDecimal
	KindDate
	KindBool
)

// FieldMapping binds a local column to a remote field name. Every driver
// declares one table of these per entity; the conversion itself is done by
// this shared engine, never per driver.
type FieldMapping struct {
	Local  string
	Remote string
	Kind   FieldKind
}

// SnakeMappings keeps remote names identical to the local snake_case
// columns (relational backends).
func SnakeMappings(table Table) []FieldMapping {
	fields := Schema(table)
	mappings := make([]FieldMapping, 0, len(fields))
	for _, f := range fields {
		mappings = append(mappings, FieldMapping{Local: f.Column, Remote: f.Column, Kind: f.Kind})
	}
	return mappings
}

// CamelMappings renames columns to camelCase on the remote side (document
// backends).
func CamelMappings(table Table) []FieldMapping {
	fields := Schema(table)
	mappings := make([]FieldMapping, 0, len(fields))
	for _, f := range fields {
		mappings = append(mappings, FieldMapping{Local: f.Column, Remote: camelize(f.Column), Kind: f.Kind})
	}
	return mappings
}

func camelize(snake string) string {
	parts := strings.Split(snake, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}
		parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
	}
	return strings.Join(parts, "")
}

// ToRemoteRow converts a local row into the remote field space with
// JSON-friendly values: dates become RFC3339 strings, decimals become
// strings (lossless), ints and bools stay native.
func ToRemoteRow(row map[string]any, mappings []FieldMapping) map[string]any {
	out := make(map[string]any, len(mappings))
	for _, m := range mappings {
		v, ok := row[m.Local]
		if !ok {
			continue
		}
		out[m.Remote] = encodeValue(v, m.Kind)
	}
	return out
}

// ToLocalRow converts a remote row back into local column space with typed
// values ready for a bulk insert.
func ToLocalRow(row map[string]any, mappings []FieldMapping) map[string]any {
	out := make(map[string]any, len(mappings))
	for _, m := range mappings {
		v, ok := row[m.Remote]
		if !ok {
			continue
		}
		out[m.Local] = decodeValue(v, m.Kind)
	}
	return out
}

func ToRemoteRows(rows []map[string]any, mappings []FieldMapping) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToRemoteRow(row, mappings))
	}
	return out
}

func ToLocalRows(rows []map[string]any, mappings []FieldMapping) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToLocalRow(row, mappings))
	}
	return out
}

func encodeValue(v any, kind FieldKind) any {
	if v == nil {
		return nil
	}
	switch kind {
	case KindDate:
		if t, ok := AsTime(v); ok {
			return t.UTC().Format(time.RFC3339Nano)
		}
		return nil
	case KindDecimal:
		return AsDecimal(v).String()
	case KindInt:
		return AsInt(v)
	case KindBool:
		return AsBool(v)
	default:
		return AsString(v)
	}
}

func decodeValue(v any, kind FieldKind) any {
	if v == nil {
		return nil
	}
	switch kind {
	case KindDate:
		if t, ok := AsTime(v); ok {
			return t.UTC()
		}
		return nil
	case KindDecimal:
		return AsDecimal(v)
	case KindInt:
		return AsInt(v)
	case KindBool:
		return AsBool(v)
	default:
		return AsString(v)
	}
}

/* Value normalization. Remote payloads arrive as whatever the transport
   produced (json numbers, quoted numerics, spreadsheet cell strings), and
   sqlite scans produce a different mix again, so every converter accepts
   all plausible representations. */

func AsString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

func AsInt(v any) int64 {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	case uint:
		return int64(t)
	case uint64:
		return int64(t)
	case float64:
		return int64(t)
	case float32:
		return int64(t)
	case json.Number:
		n, _ := t.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n
	case []byte:
		n, _ := strconv.ParseInt(strings.TrimSpace(string(t)), 10, 64)
		return n
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func AsDecimal(v any) decimal.Decimal {
	switch t := v.(type) {
	case decimal.Decimal:
		return t
	case float64:
		return decimal.NewFromFloat(t)
	case float32:
		return decimal.NewFromFloat32(t)
	case int64:
		return decimal.NewFromInt(t)
	case int:
		return decimal.NewFromInt(int64(t))
	case json.Number:
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return d
		}
		return decimal.Zero
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(t)); err == nil {
			return d
		}
		return decimal.Zero
	case []byte:
		if d, err := decimal.NewFromString(strings.TrimSpace(string(t))); err == nil {
			return d
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

func AsBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case int:
		return t != 0
	case float64:
		return t != 0
	case json.Number:
		n, _ := t.Int64()
		return n != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "1" || s == "yes"
	default:
		return false
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func AsTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case []byte:
		return AsTime(string(t))
	default:
		return time.Time{}, false
	}
}
