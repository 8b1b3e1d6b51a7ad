package rule

import "errors"

var (
	// ErrRuleNotFound means no sector default nor override matched a
	// (sector, category, date) lookup. Fatal for the whole cycle - the
	// engine never silently falls back to a default.
	ErrRuleNotFound = errors.New("no compliance rule matches the reference date")

	// ErrInvalidRuleConfiguration means a rule payload failed shape or
	// range validation. Fatal for the affected tenant.
	ErrInvalidRuleConfiguration = errors.New("invalid rule configuration")

	ErrSectorNotFound   = errors.New("industry sector not found")
	ErrOverrideNotFound = errors.New("tenant rule override not found")
)
