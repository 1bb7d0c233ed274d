// Package api implements the typed resource-loading pipeline: a declarative
// Resource descriptor, an HTTP transport that executes it, and the wire DTOs
// of the grocery backend.
//
// A Resource names an endpoint, an HTTP method with its payload, and, via
// its type parameter, the shape the response must decode into. Load executes
// a Resource and returns either the decoded value or one of a small closed
// set of transport failures (see errors.go). HTTP status codes are not
// inspected for business signaling; the backend embeds error/reason fields in
// the payloads themselves.
package api

import "net/url"

// Method describes how a Resource is sent over the wire.
// Use Get, Post, or Delete to construct one.
type Method struct {
	name  string
	query url.Values
	body  []byte
}

// Get builds a GET method; query parameters are appended to the endpoint URL.
func Get(query url.Values) Method {
	return Method{name: "GET", query: query}
}

// Post builds a POST method with a pre-encoded JSON body.
func Post(body []byte) Method {
	return Method{name: "POST", body: body}
}

// Delete builds a DELETE method with no body.
func Delete() Method {
	return Method{name: "DELETE"}
}

// Name returns the HTTP verb.
func (m Method) Name() string {
	return m.name
}

// Resource declares one network call: the endpoint, the method with its
// payload, and through T the expected response shape. The decoder is
// bound at compile time by instantiating Load with the same T.
// A Resource is immutable once built.
type Resource[T any] struct {
	URL    string
	Method Method
}

// NewResource builds a Resource for the given endpoint. The zero Method
// defaults to GET with no parameters, mirroring the common case.
func NewResource[T any](endpoint string, method Method) Resource[T] {
	if method.name == "" {
		method = Get(nil)
	}
	return Resource[T]{URL: endpoint, Method: method}
}
