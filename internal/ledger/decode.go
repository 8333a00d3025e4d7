package ledger

import (
	"encoding/json"

	"bookkeeping/internal/core"
)

// Decoded is the result of narrowing a stored payload to records.
type Decoded struct {
	Records []core.Record
	// Dropped counts array entries that could not be read as a record.
	Dropped int
	// Corrupt is set when the payload as a whole was not a JSON array.
	Corrupt bool
}

// DecodeRecords reads a stored payload without ever failing. A payload that
// is not a JSON array yields no records. Entries that are not objects or
// whose id is not a string are dropped and counted; any other field with an
// unexpected type is coerced to its zero value.
func DecodeRecords(raw []byte) Decoded {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return Decoded{Records: []core.Record{}, Corrupt: true}
	}

	out := Decoded{Records: make([]core.Record, 0, len(items))}
	for _, item := range items {
		rec, ok := decodeRecord(item)
		if !ok {
			out.Dropped++
			continue
		}
		out.Records = append(out.Records, rec)
	}
	return out
}

func decodeRecord(item json.RawMessage) (core.Record, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
		return core.Record{}, false
	}

	var id string
	raw, ok := fields["id"]
	if !ok || len(raw) == 0 || raw[0] != '"' || json.Unmarshal(raw, &id) != nil {
		return core.Record{}, false
	}

	return core.Record{
		ID:        id,
		Type:      core.RecordType(stringField(fields, "type")),
		Amount:    numberField(fields, "amount"),
		Category:  stringField(fields, "category"),
		Note:      stringField(fields, "note"),
		Date:      stringField(fields, "date"),
		CreatedAt: int64(numberField(fields, "createdAt")),
	}, true
}

func stringField(fields map[string]json.RawMessage, name string) string {
	var s string
	if raw, ok := fields[name]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

func numberField(fields map[string]json.RawMessage, name string) float64 {
	var f float64
	if raw, ok := fields[name]; ok {
		_ = json.Unmarshal(raw, &f)
	}
	return f
}
