// Package testutil contains helper builders and testify mocks used across
// tests to reduce boilerplate when constructing sessions, task states and
// domain plans. They are not intended for production usage.
package testutil
