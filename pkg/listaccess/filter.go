package listaccess

import (
	"fmt"
	"strings"
)

// FilterEq builds a query fragment restricting results to records whose
// field equals value, in the store's filter syntax:
//
//	fields/{FieldName} eq '{value}'
//
// Single quotes in the value are escaped by doubling. The fragment is ready
// to append to FetchAll's extraQuery.
func FilterEq(field, value string) string {
	escaped := strings.ReplaceAll(value, "'", "''")
	return fmt.Sprintf("&$filter=fields/%s eq '%s'", field, escaped)
}

// TopN builds a query fragment bounding the page size.
func TopN(n int) string {
	return fmt.Sprintf("&$top=%d", n)
}
