// Package domain holds the core types shared across the feed bridge: feed
// kinds, cache keys, decoded records and the delta frames pushed downstream.
package domain
