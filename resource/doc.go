// Package resource holds named values that format strings can reference.
//
// A Resource has a stable identifier and produces its value on demand, which
// may involve I/O (reading a secret, refreshing a token). Resources live in a
// Registry, a concurrent set keyed solely by identifier: inserting a second
// resource with an identifier already present keeps the first.
//
//	reg := resource.NewRegistry()
//	reg.Insert(resource.Static("region", "eu-west-1"))
//	reg.Insert(resource.Env("token", "API_TOKEN"))
//
// Registries are passed explicitly to the components that need them. Code
// that prefers an ambient handle can use Default, which is created once per
// process.
package resource
