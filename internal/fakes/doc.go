// Package fakes holds counterfeiter-generated test doubles for the
// interfaces marked with go:generate directives. Regenerate with:
//
//	go generate ./...
package fakes
