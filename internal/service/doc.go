// Package service contains the application use cases. It coordinates the
// domain model, the scheduler and the stores defined in internal/store.
//
// Services receive their dependencies through constructor injection and read
// the clock once per call through an injectable function, so every
// scheduling decision in one call sees the same instant.
//
// Operations that touch several records (a review session, an import) run
// inside store.RunInTransaction with transaction-scoped stores.
//
// Errors:
//   - ErrItemNotFound, ErrInvalidInput and ErrEmptySession mark expected
//     conditions and are checked with errors.Is.
//   - Unexpected failures are wrapped in *ServiceError, which names the
//     operation and keeps the cause for errors.Is/As.
package service
