// Package ciutil inspects the environment tests run in: whether they run
// under a CI provider and which external database, if any, they should use.
package ciutil
