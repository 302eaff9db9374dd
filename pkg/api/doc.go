// Package api defines the wire messages of the settleup.v1.ExpenseService
// Connect service.
//
// Messages are plain Go structs encoded as JSON. Money travels as JSON
// numbers; the service converts to decimal at the boundary. Request structs
// carry validate tags checked by the service before anything is stored.
package api
