// Package validation provides request input validation for the vaani API.
//
// It offers two styles: a fluent Validator for hand-checked multipart form
// fields, and struct-tag validation via go-playground/validator for JSON
// bodies. Both produce *errors.AppError values with per-field details so
// handlers can return them directly.
package validation
