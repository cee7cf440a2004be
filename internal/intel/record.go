package intel

// Kind names a class of extracted artifact.
type Kind string

const (
	KindBankAccount Kind = "bank_accounts"
	KindIFSC        Kind = "ifsc_codes"
	KindUPI         Kind = "upi_ids"
	KindPhone       Kind = "phone_numbers"
	KindEmail       Kind = "emails"
	KindURL         Kind = "urls"
	KindName        Kind = "names"
)

// Entity is one extracted artifact with a confidence score and optional
// associated attributes (an account entry carries its IFSC and holder name
// when they were found alongside it).
type Entity struct {
	Value      string            `json:"value"`
	Confidence float64           `json:"confidence"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Record accumulates every artifact harvested from a conversation, keyed by
// kind. A normalized value appears at most once per kind; re-observing a
// value keeps the higher confidence and unions attributes.
type Record map[Kind][]Entity

// NewRecord returns an empty intelligence record.
func NewRecord() Record {
	return make(Record)
}

// Add inserts an entity, deduplicating by exact value within the kind.
// Confidence never decreases for a value already present.
func (r Record) Add(kind Kind, e Entity) {
	entries := r[kind]
	for i := range entries {
		if entries[i].Value != e.Value {
			continue
		}
		if e.Confidence > entries[i].Confidence {
			entries[i].Confidence = e.Confidence
		}
		for k, v := range e.Attributes {
			if entries[i].Attributes == nil {
				entries[i].Attributes = make(map[string]string)
			}
			if _, exists := entries[i].Attributes[k]; !exists {
				entries[i].Attributes[k] = v
			}
		}
		return
	}
	r[kind] = append(entries, e)
}

// Merge unions other into a copy of r, applying the same dedup and
// max-confidence rules as Add. Neither input is mutated.
func (r Record) Merge(other Record) Record {
	out := r.Clone()
	for kind, entries := range other {
		for _, e := range entries {
			out.Add(kind, cloneEntity(e))
		}
	}
	return out
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for kind, entries := range r {
		copied := make([]Entity, len(entries))
		for i, e := range entries {
			copied[i] = cloneEntity(e)
		}
		out[kind] = copied
	}
	return out
}

// Count returns the total number of entities across all kinds.
func (r Record) Count() int {
	n := 0
	for _, entries := range r {
		n += len(entries)
	}
	return n
}

// Has reports whether any entity of the given kind was recorded.
func (r Record) Has(kind Kind) bool {
	return len(r[kind]) > 0
}

func cloneEntity(e Entity) Entity {
	if e.Attributes == nil {
		return e
	}
	attrs := make(map[string]string, len(e.Attributes))
	for k, v := range e.Attributes {
		attrs[k] = v
	}
	e.Attributes = attrs
	return e
}
