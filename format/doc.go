// Package format implements the placeholder language used for endpoint paths
// and text bodies.
//
// A format string is literal text with named references in angle brackets:
//
//	/users/<user_id>/repos?per_page=<page_size>
//
// Doubled brackets escape themselves, so "a<<b>>c" is the literal "a<b>c".
// Strings are parsed once into segments and resolved at call time against a
// resource.Registry.
package format
