package pk1

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/imacdo2212/EdTech/internal/schema"
)

// Limits bounds what the kernel accepts.
type Limits struct {
	// MaxRecordBytes bounds the canonical size of a payload and of the merged record.
	MaxRecordBytes int

	// MaxFragmentBytes bounds the canonical size of each topic-state fragment.
	MaxFragmentBytes int

	// FreshnessWindow is how old a write may be and still earn the freshness bonus.
	FreshnessWindow time.Duration
}

// DefaultLimits returns the standard PK1 bounds: 32 KiB records, 1 KiB
// fragments and a 30 day freshness window.
func DefaultLimits() Limits {
	return Limits{
		MaxRecordBytes:   32 * 1024,
		MaxFragmentBytes: 1024,
		FreshnessWindow:  30 * 24 * time.Hour,
	}
}

// Kernel runs PK1 operations. It holds only immutable configuration and is
// safe for concurrent use.
type Kernel struct {
	schemas *schema.Set
	limits  Limits
	logger  zerolog.Logger
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithLimits overrides DefaultLimits.
func WithLimits(l Limits) Option {
	return func(k *Kernel) {
		k.limits = l
	}
}

// WithLogger sets the logger. Refusals and commits are logged at debug level.
//
// Default: zerolog.Nop()
func WithLogger(l zerolog.Logger) Option {
	return func(k *Kernel) {
		k.logger = l
	}
}

// WithSchemas replaces the embedded delta and record schemas.
func WithSchemas(s *schema.Set) Option {
	return func(k *Kernel) {
		k.schemas = s
	}
}

// New creates a Kernel using the embedded schemas unless WithSchemas is given.
func New(opts ...Option) (*Kernel, error) {
	k := &Kernel{
		limits: DefaultLimits(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(k)
	}

	if k.schemas == nil {
		s, err := schema.Builtin()
		if err != nil {
			return nil, fmt.Errorf("pk1: load schemas: %w", err)
		}
		k.schemas = s
	}
	if k.limits.MaxRecordBytes <= 0 || k.limits.MaxFragmentBytes <= 0 {
		return nil, fmt.Errorf("pk1: limits must be positive (record=%d, fragment=%d)",
			k.limits.MaxRecordBytes, k.limits.MaxFragmentBytes)
	}
	return k, nil
}

// Limits returns the kernel's bounds.
func (k *Kernel) Limits() Limits {
	return k.limits
}
