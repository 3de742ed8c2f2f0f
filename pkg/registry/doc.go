// Package registry turns a settings schema into the registrations a host
// settings subsystem needs: one options page, one section per schema section
// and one option plus one field row per schema field.
//
// Plan computes the registrations without side effects. Install replays a
// plan against a Host. Registry is an in-memory Host whose tables are keyed
// by id so installing the same plan twice leaves the same state.
package registry
