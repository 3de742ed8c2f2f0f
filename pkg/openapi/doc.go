// Package openapi describes the settings payload of a page as an OpenAPI 3
// document and checks submitted payloads against it. kin-openapi types stay
// inside this package; callers get the encoded document and plain errors.
package openapi
