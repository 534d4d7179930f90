// Package http provides HTTP handlers and middleware for the time tracker API.
//
// The router exposes the following endpoints:
//   - GET /sessions, POST /sessions: session history (most recent start first)
//     and session start, exchanging the `sessionDTO` payload defined in
//     session_handler.go. Starting while a session is running yields 409.
//   - GET /sessions/current: the running session or `{"session":null}`.
//   - POST /sessions/current/stop: closes the running session; 404 when nothing
//     is running.
//   - PUT /sessions/{id}, DELETE /sessions/{id}: session edit and delete.
//     Deleting the running session yields 409; it must be stopped first.
//   - GET /categories (`?active=true` filters soft-deleted entries),
//     POST /categories, PUT /categories/{id}, DELETE /categories/{id}: category
//     management exchanging the `categoryDTO` payload defined in
//     category_handler.go. DELETE is a soft delete.
//   - GET /export.csv: full session history as a text/csv attachment with
//     columns ID, Category, Description, Start Time, End Time, Duration.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
