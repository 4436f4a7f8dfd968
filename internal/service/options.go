package service

import "github.com/google/uuid"

type options struct {
	maxAttempts int
	newID       func() string
}

type Option func(*options)

// WithMaxAttempts bounds how many times a write is retried after a version conflict.
func WithMaxAttempts(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithIDGenerator overrides how new event and booking ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		maxAttempts: DefaultMaxAttempts,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
