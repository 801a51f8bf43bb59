// Package decode turns raw upstream payloads into typed feed records.
//
// Decoding never panics and never fails the ingestion loop: a malformed
// payload is returned as an explicit error so the caller can count and log it,
// and individually broken entries inside an otherwise valid payload are
// skipped rather than failing the whole message.
package decode
