package xorfuse

// buildConfig holds the resolved settings for a single New* call.
type buildConfig struct {
	maxAttempts int
	randomFill  bool
}

// BuildOption configures an optional, non-default behavior of a New*
// constructor.
type BuildOption func(*buildConfig)

// WithMaxAttempts overrides the default number of seed-rotation retries
// a build will attempt before returning ErrBuildFailed. n must be at
// least 1.
func WithMaxAttempts(n int) BuildOption {
	return func(c *buildConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithUniformRandomFill fills fingerprint cells that the back-assignment
// step never touches with uniformly random bits instead of zero. This
// has no effect on correctness (an untouched cell is never the unique
// cell distinguishing a true key from a false positive) and exists
// only to avoid leaking the count of untouched cells to an observer of
// the raw fingerprint array.
func WithUniformRandomFill() BuildOption {
	return func(c *buildConfig) {
		c.randomFill = true
	}
}

func newBuildConfig(opts []BuildOption) buildConfig {
	c := buildConfig{maxAttempts: defaultMaxAttempts}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
