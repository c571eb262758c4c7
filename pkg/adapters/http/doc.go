// Package http serves a running tree over HTTP: its status snapshot, its
// blackboard, a halt endpoint and a server-sent event stream of status changes.
//
// The routes are described by api/openapi.yaml. Requests are validated
// against that document before they reach a handler, and the document itself
// is served on GET /openapi.yaml.
package http
