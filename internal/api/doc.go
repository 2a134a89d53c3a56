// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between the learner's
// client and the review, collection and dashboard services, translating
// HTTP concerns to service operations.
package api
