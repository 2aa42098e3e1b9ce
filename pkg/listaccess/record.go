package listaccess

// Record is one row of a remote list, flattened from the wire shape
// {id, fields:{...}} into an identifier plus its field mapping. The
// identifier is assigned by the remote store, is immutable, and is never
// part of a write payload.
type Record struct {
	ID     string
	Fields map[string]interface{}
}

// Field returns a field value, or nil when absent.
func (r Record) Field(name string) interface{} {
	if r.Fields == nil {
		return nil
	}
	return r.Fields[name]
}

// StringField returns a field value as a string, or "" when the field is
// absent or not a string.
func (r Record) StringField(name string) string {
	if s, ok := r.Field(name).(string); ok {
		return s
	}
	return ""
}

// itemEnvelope is the remote wire shape of a single list item.
type itemEnvelope struct {
	ID     string                 `json:"id"`
	Fields map[string]interface{} `json:"fields"`
}

func (e itemEnvelope) record() Record {
	fields := e.Fields
	if fields == nil {
		fields = map[string]interface{}{}
	}
	return Record{ID: e.ID, Fields: fields}
}

// listEnvelope is the remote wire shape of a collection response.
type listEnvelope struct {
	Value []itemEnvelope `json:"value"`
}
