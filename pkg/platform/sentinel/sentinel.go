package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, collaborator clients, and
// the renderer return these (optionally wrapped) so services can translate
// them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist in store
// - ErrConflict: resource already claimed by someone else
// - ErrExpired: license expiry has passed
// - ErrUnavailable: collaborator temporarily unreachable
// - ErrNoTemplate: the render template asset cannot be loaded
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
	ErrNoTemplate  = errors.New("template asset unavailable")
)
