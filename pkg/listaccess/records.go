package listaccess

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"

	"golang.org/x/sync/singleflight"

	"github.com/stepup-hq/stepup/pkg/config"
	"github.com/stepup-hq/stepup/pkg/observability"
)

// Doer issues one request against the remote list store. Satisfied by
// *listclient.Client.
type Doer interface {
	Do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error)
}

// Records maps semantic list keys to remote lists and performs record-shaped
// CRUD with schema-aware write filtering. The remote store is
// schema-flexible and will reject or corrupt state if read-only or system
// fields are echoed back in a write, so every write passes through a
// blacklist (create) or a two-tier whitelist (update) first.
type Records struct {
	client      Doer
	lists       map[string]string
	log         *observability.Logger
	columnGroup singleflight.Group
}

// NewRecords creates the list access layer for a configured site.
func NewRecords(client Doer, site config.SiteConfig, log *observability.Logger) *Records {
	if log == nil {
		log = observability.NewNopLogger()
	}
	return &Records{
		client: client,
		lists:  site.Lists,
		log:    log.Named("listaccess"),
	}
}

// createBlacklist holds field names the store owns outright; they are
// stripped from create payloads no matter what the caller supplied.
var createBlacklist = map[string]struct{}{
	"id":                   {},
	"ID":                   {},
	"Id":                   {},
	"Modified":             {},
	"Created":              {},
	"Author":               {},
	"Editor":               {},
	"createdDateTime":      {},
	"lastModifiedDateTime": {},
	"odata.etag":           {},
	"_etag":                {},
	"fields":               {},
}

// updateBlacklist holds system/audit fields excluded from updates even when
// column metadata reports them.
var updateBlacklist = map[string]struct{}{
	"Modified":       {},
	"Created":        {},
	"Author":         {},
	"Editor":         {},
	"AuthorLookupId": {},
	"EditorLookupId": {},
	"ID":             {},
	"Id":             {},
	"odata.etag":     {},
	"_etag":          {},
}

// Degraded-mode heuristic: with no column metadata available, any field
// whose name ends in a common system/audit suffix is refused. Deliberately
// conservative; it must never admit a field it cannot positively clear.
var fallbackBlacklistPattern = regexp.MustCompile(`(?i)(author|editor|created|modified|odata|etag|_etag|lookupid|lookup|id)$`)

var idFieldPattern = regexp.MustCompile(`(?i)^id$`)

func (r *Records) listID(key string) (string, error) {
	if id, ok := r.lists[key]; ok && id != "" {
		return id, nil
	}
	return "", &ListNotConfiguredError{Key: key}
}

// FetchAll retrieves every record of a list. extraQuery is appended to the
// item query verbatim; build it with FilterEq and TopN.
func (r *Records) FetchAll(ctx context.Context, listKey, extraQuery string) ([]Record, error) {
	listID, err := r.listID(listKey)
	if err != nil {
		return nil, err
	}

	raw, err := r.client.Do(ctx, "GET", "lists/"+listID+"/items?$expand=fields"+extraQuery, nil)
	if err != nil {
		return nil, err
	}

	var envelope listEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}

	records := make([]Record, 0, len(envelope.Value))
	for _, item := range envelope.Value {
		records = append(records, item.record())
	}
	return records, nil
}

// FetchOne retrieves a single record by its identifier.
func (r *Records) FetchOne(ctx context.Context, listKey, id string) (Record, error) {
	listID, err := r.listID(listKey)
	if err != nil {
		return Record{}, err
	}

	raw, err := r.client.Do(ctx, "GET", "lists/"+listID+"/items/"+id+"?$expand=fields", nil)
	if err != nil {
		return Record{}, err
	}

	var item itemEnvelope
	if err := json.Unmarshal(raw, &item); err != nil {
		return Record{}, fmt.Errorf("failed to decode item response: %w", err)
	}
	return item.record(), nil
}

// Create inserts a new record. Server-owned metadata fields are stripped
// from the payload regardless of what the caller supplied, so a client bug
// can never attempt to set them.
func (r *Records) Create(ctx context.Context, listKey string, fields map[string]interface{}) (Record, error) {
	listID, err := r.listID(listKey)
	if err != nil {
		return Record{}, err
	}

	cleaned := map[string]interface{}{}
	for name, value := range fields {
		if _, blocked := createBlacklist[name]; blocked {
			continue
		}
		cleaned[name] = value
	}

	raw, err := r.client.Do(ctx, "POST", "lists/"+listID+"/items", map[string]interface{}{"fields": cleaned})
	if err != nil {
		return Record{}, err
	}

	var item itemEnvelope
	if err := json.Unmarshal(raw, &item); err != nil {
		return Record{}, fmt.Errorf("failed to decode create response: %w", err)
	}
	return item.record(), nil
}

// Update patches a record's fields under the two-tier write policy:
//
//  1. Column metadata available: admit only fields whose descriptor is
//     non-read-only and non-hidden and which are not system/audit fields.
//  2. Metadata unavailable (degraded mode): fall back to the conservative
//     name-pattern blacklist.
//
// In both tiers the identifier and nested object values (lookups, person
// references) are refused; relations need a different write shape this
// layer does not support. An empty admitted set fails with
// ErrNoWritableFields before any network write is issued.
func (r *Records) Update(ctx context.Context, listKey, id string, fields map[string]interface{}) (Record, error) {
	listID, err := r.listID(listKey)
	if err != nil {
		return Record{}, err
	}

	allowed := map[string]struct{}{}
	cols, err := r.fetchColumns(ctx, listID)
	if err != nil {
		r.log.WithError(err).WithField("list", listKey).
			Warn("column metadata unavailable, falling back to name-pattern blacklist")
	} else {
		for _, col := range cols {
			if col.Name == "" || col.ReadOnly || col.Hidden {
				continue
			}
			if _, blocked := updateBlacklist[col.Name]; blocked {
				continue
			}
			allowed[col.Name] = struct{}{}
		}
	}

	patch := map[string]interface{}{}
	for name, value := range fields {
		if idFieldPattern.MatchString(name) {
			continue
		}
		if isNestedValue(value) {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[name]; ok {
				patch[name] = value
			}
			continue
		}
		if fallbackBlacklistPattern.MatchString(name) {
			continue
		}
		patch[name] = value
	}

	if len(patch) == 0 {
		return Record{}, fmt.Errorf("update of item %s in %q: %w", id, listKey, ErrNoWritableFields)
	}

	raw, err := r.client.Do(ctx, "PATCH", "lists/"+listID+"/items/"+id+"/fields", patch)
	if err != nil {
		return Record{}, err
	}

	updated := map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &updated); err != nil {
			return Record{}, fmt.Errorf("failed to decode update response: %w", err)
		}
	}
	delete(updated, "id")
	return Record{ID: id, Fields: updated}, nil
}

// Remove deletes a record by its identifier.
func (r *Records) Remove(ctx context.Context, listKey, id string) error {
	listID, err := r.listID(listKey)
	if err != nil {
		return err
	}
	_, err = r.client.Do(ctx, "DELETE", "lists/"+listID+"/items/"+id, nil)
	return err
}

// isNestedValue reports whether a value is object-shaped. Lookup and person
// references arrive as nested objects and cannot be written through the
// simple fields PATCH.
func isNestedValue(value interface{}) bool {
	if value == nil {
		return false
	}
	switch reflect.TypeOf(value).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}
