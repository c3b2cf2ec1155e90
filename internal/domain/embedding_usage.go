package domain

import "context"

type embeddingUsageKey struct{}

// EmbeddingUsage collects provider tokens spent while serving one request.
// The HTTP handler installs it, the embedding layer adds to it, and the
// handler reports it back in a response header.
type EmbeddingUsage struct {
	TotalTokens int
	Used        bool // embedding was consulted, even if every vector was cached
}

// NewContextWithUsage returns a context carrying a fresh usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext returns the collector, or nil when none was installed.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records consumed tokens. Safe on a nil receiver.
func (u *EmbeddingUsage) AddTokens(n int) {
	if u != nil {
		u.TotalTokens += n
		u.Used = true
	}
}
