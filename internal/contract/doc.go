// Package contract implements the greeting contract state machine.
//
// The contract owns five persisted fields, all kept in an injected key-value
// Store under discriminated keys:
//
//	Admin                    -> Address   (instance, singleton)
//	GreetingCount            -> uint32    (instance, singleton)
//	CharacterLimit           -> uint32    (instance, singleton, default 32)
//	LastGreeting(addr)       -> string    (persistent, one per caller)
//	UserGreetingCount(addr)  -> uint32    (persistent, one per caller)
//
// State is Uninitialized until Initialize stores an Admin; there is no path
// back. Reads return defaults before initialization, privileged operations
// fail with ErrNotInitialized.
//
// The package performs no locking. Callers run each operation against a Store
// that is scoped to one atomic unit (a database transaction or a serialized
// section) and commit or discard it as a whole; an operation that returns an
// error has written nothing.
//
// Caller identities are claimed, not proven. Privileged operations compare the
// claimed caller against the stored Admin, while Greet records whatever caller
// it is given. Authenticate callers upstream if spoofed per-caller records
// matter.
package contract
