// Package orchestrator is the plugin side of a settings page. It builds the
// schema from the default plus extensions, registers it with a host, renders
// the page through the renderer registry and applies submissions to the
// option store.
package orchestrator
