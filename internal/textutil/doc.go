// Package textutil provides small text helpers for turning catalogue labels
// and locale tags into safe filesystem path segments.
package textutil
