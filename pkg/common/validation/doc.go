// Package validation provides common validation utilities for configuration
// parameters across the tokenbucket module.
//
// This package offers reusable validation functions that help ensure
// consistent error messages and reduce boilerplate code in constructors
// and configuration parsers. Every failure is a *errors.ValidationError
// wrapping errors.ErrInvalidConfiguration.
package validation
