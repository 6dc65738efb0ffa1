// Package session provides the per-user conversation store and the closed
// set of conversation states.
//
// Every mutation runs inside the critical section of the user's shard.
// Mutation closures must not block on I/O (database, Telegram, network):
// a slow closure stalls every user hashed to the same shard. Handlers read
// the session, release it, perform I/O and then write the outcome back.
package session
