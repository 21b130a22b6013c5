// Package testutil contains helper builders and fixtures used across tests
// to reduce boilerplate when constructing page records and conversation
// turns. These helpers are intentionally minimal and avoid adding
// third-party dependencies. They are not intended for production usage.
package testutil
