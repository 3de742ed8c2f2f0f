// Package schema declares the settings page model: ordered sections holding
// typed fields, the values those fields store, and the extension point other
// packages use to add or replace sections before the schema is registered.
//
// A Schema is a plain value. Build returns a fresh copy on every call and
// extensions receive a pointer to that copy only, so callers can thread the
// result through registration and rendering without sharing mutable state.
//
//	s, err := schema.Build(schema.Extra(), schema.FromFS(os.DirFS("settings")))
//	if err != nil {
//		return err
//	}
//	if err := schema.Check(s); err != nil {
//		log.Fatal(err)
//	}
package schema
