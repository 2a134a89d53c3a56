// Package task runs background work, such as filling in the translation of a
// card the learner saved with only its front, off the request path.
//
// Tasks live in an in-memory queue consumed by a fixed pool of workers. Work
// lost on shutdown is rebuilt from the data at the next start through the
// runner's recovery hook.
package task
