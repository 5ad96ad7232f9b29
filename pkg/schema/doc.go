// Package schema reads the feedback form description from an OpenAPI 3
// document using kin-openapi. The request body of the submit operation lists
// the fields; `x-formgen-*` extensions carry labels, placeholders, widgets,
// option labels and ordering.
package schema
