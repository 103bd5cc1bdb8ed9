package model

// Document is a flexible map representing a JSON document.
// The documentID is the only required field for document identification.
// Searchable fields hold a string or an array of strings, e.g. doc["first"].
type Document map[string]interface{}

// GetDocumentID returns the documentID if it's stored in the document map under "documentID" key.
func (d Document) GetDocumentID() (string, bool) {
	if id, ok := d["documentID"]; ok {
		if str, sok := id.(string); sok {
			if str != "" {
				return str, true
			}
		}
	}
	return "", false
}

// FieldValues returns the text values of field. An array yields one value
// per string element; non-string elements are skipped. ok is false when the
// field is missing or has an unsupported type.
func (d Document) FieldValues(field string) (values []string, ok bool) {
	raw, exists := d[field]
	if !exists {
		return nil, false
	}
	switch v := raw.(type) {
	case string:
		return []string{v}, true
	case []interface{}: // JSON arrays are unmarshalled to []interface{}
		for _, item := range v {
			if s, isStr := item.(string); isStr {
				values = append(values, s)
			}
		}
		return values, true
	case []string:
		return v, true
	default:
		return nil, false
	}
}

// Project returns a copy of d restricted to fields. The documentID is always kept.
// An empty fields list returns d itself.
func (d Document) Project(fields []string) Document {
	if len(fields) == 0 {
		return d
	}
	out := make(Document, len(fields)+1)
	for _, f := range fields {
		if v, ok := d[f]; ok {
			out[f] = v
		}
	}
	if id, ok := d["documentID"]; ok {
		out["documentID"] = id
	}
	return out
}
