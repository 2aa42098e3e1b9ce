// Package listclient is the HTTP boundary to the remote list store.
//
// # Overview
//
// The Client resolves relative paths against {base}/sites/{siteID}, attaches
// a freshly acquired bearer token to every request (it always delegates to
// its TokenSource, never caching credentials itself), tags each request with
// a client-request-id, and maps every non-2xx response to *RemoteError with
// the numeric status and the parsed response body.
//
//	raw, err := client.Get(ctx, "lists/"+listID+"/items?$expand=fields")
//	if rerr, ok := listclient.AsRemoteError(err); ok && rerr.IsForbidden() {
//		// access denied, show required roles
//	}
//
// The client never retries and defines no timeout policy beyond the
// transport default; both belong to callers, which also control
// cancellation through the request context.
package listclient
