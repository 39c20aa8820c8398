// Package proxy implements the request pipeline between the HTTP layer and
// the inference provider: normalize the image reference, stage inline data
// into a fetchable URL, dispatch one prediction call, relay the result.
//
// The service is stateless; every invocation is independent and nothing is
// retried. Failures carry types from errors.go so the HTTP layer can map them
// to statuses in one place.
package proxy
