// Copyright 2022 bnb-chain. All Rights Reserved.
//
// Distributed under MIT license.
// See file LICENSE for detail or copy at https://opensource.org/licenses/MIT

package redis

import (
	"github.com/go-redis/redis/v8"
)

// Option configures a *Backend.
type Option func(*Backend)

func WithHooks(hooks ...redis.Hook) Option {
	return func(b *Backend) {
		for _, hook := range hooks {
			b.client.AddHook(hook)
		}
	}
}

// WithNamespace prefixes every key with namespace and a colon.
func WithNamespace(namespace string) Option {
	return func(b *Backend) {
		b.namespace = []byte(namespace)
	}
}
