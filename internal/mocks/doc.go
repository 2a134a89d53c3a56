// Package mocks provides hand-written test doubles shared by several packages.
//
// Each mock records its calls and lets a test override behavior through a
// function field, falling back to canned return values.
package mocks
