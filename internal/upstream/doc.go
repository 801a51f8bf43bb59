// Package upstream owns the live feed sockets. The Manager keeps at most one
// connection per (feed kind, environment), created lazily by the first
// subscribe and removed from its registry on close or error. There is no
// retry loop: a dead connection is replaced only when the next subscribe call
// asks for it.
package upstream
