/*
Package session implements the session context shared by every flow.

A Manager serializes access to a SessionStore per profile, optionally across
processes through a DistributedLocker. Flows never touch the store directly:
they receive a Profile, which exposes the three-call API GetSession,
SetSession and ClearSession and re-reads the store on every call.
*/
package session
