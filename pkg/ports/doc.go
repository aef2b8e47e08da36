/*
Package ports defines the driven ports (interfaces) of the assist client.

# Key Interfaces

  - SessionStore: persists the signed-in session of a profile.
  - DistributedLocker: serializes session writes across processes sharing a backend.
*/
package ports
