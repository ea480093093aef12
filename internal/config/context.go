package config

import "context"

// ConfigContextKey is the key used to store the config in the context.
type ConfigContextKey struct{}

// Get returns the configuration stored in the context.
func Get(ctx context.Context) *Configuration {
	if v := ctx.Value(ConfigContextKey{}); v != nil {
		return v.(*Configuration)
	}
	panic("No config in context")
}

// Set returns a new context carrying c.
func Set(ctx context.Context, c *Configuration) context.Context {
	return context.WithValue(ctx, ConfigContextKey{}, c)
}
