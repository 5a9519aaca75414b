// README: Common identifier type shared across modules.
package types

// ID is an opaque entity identifier (UUID string in practice).
type ID string
