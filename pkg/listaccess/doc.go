// Package listaccess maps semantic list keys to remote lists and performs
// record-shaped CRUD with schema-aware write filtering.
//
// # Overview
//
// The remote store is schema-flexible: echoing read-only or system fields
// back in a write gets the request rejected or, worse, corrupts
// server-managed metadata. Every write therefore passes a safety filter
// before anything goes on the wire:
//
//   - Create strips a fixed blacklist of server-owned fields (identifier,
//     audit stamps, concurrency tokens) from the payload unconditionally.
//   - Update runs a two-tier whitelist. Tier one fetches column metadata and
//     admits only writable, visible, non-system columns. When metadata
//     access itself fails (it can be permission-gated), tier two falls back
//     to a conservative name-pattern blacklist. An update whose admitted set
//     comes out empty fails with ErrNoWritableFields instead of issuing a
//     vacuous request.
//
// Reads flatten the wire shape {id, fields:{...}} into Record. Nothing is
// cached; state is re-fetched per view.
//
//	records := listaccess.NewRecords(client, env.Site, log)
//	students, err := records.FetchAll(ctx, config.ListStudents,
//		listaccess.FilterEq("Grade", "5")+listaccess.TopN(200))
//
// # Errors
//
// An unmapped list key yields ErrListNotConfigured (fatal for that screen,
// never swallowed). Transport failures surface as *listclient.RemoteError.
// Create, update and delete failures always propagate; this layer has no
// safe fallback for writes.
package listaccess
