package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"
)

// PubSubMessage re-exports the valkey pub/sub message so consumers of the
// cache do not import the driver directly.
type PubSubMessage = valkey.PubSubMessage

// CacheBuilder is a small fluent helper over a valkey client for the
// cache-aside pattern used by the repositories. All failures are returned to
// the caller, which is expected to degrade to a database read.
type CacheBuilder struct {
	client CacheClient
	key    string
	value  any
	ttl    time.Duration
	ctx    context.Context
}

func NewCacheBuilder(client CacheClient, key string) *CacheBuilder {
	return &CacheBuilder{
		client: client,
		key:    key,
		ctx:    context.Background(),
	}
}

func (b *CacheBuilder) WithStruct(value any) *CacheBuilder {
	b.value = value
	return b
}

func (b *CacheBuilder) WithTTL(ttl time.Duration) *CacheBuilder {
	b.ttl = ttl
	return b
}

func (b *CacheBuilder) WithContext(ctx context.Context) *CacheBuilder {
	b.ctx = ctx
	return b
}

func (b *CacheBuilder) Set() error {
	if b.client == nil {
		return nil
	}

	payload, err := json.Marshal(b.value)
	if err != nil {
		return err
	}

	cmd := b.client.B().Set().Key(b.key).Value(string(payload))
	if b.ttl > 0 {
		return b.client.Do(b.ctx, cmd.Ex(b.ttl).Build()).Error()
	}
	return b.client.Do(b.ctx, cmd.Build()).Error()
}

// Get unmarshals the cached value into dest. The boolean reports whether the
// key existed; a missing key is not an error.
func (b *CacheBuilder) Get(dest any) (bool, error) {
	if b.client == nil {
		return false, nil
	}

	resp := b.client.Do(b.ctx, b.client.B().Get().Key(b.key).Build())
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, err
	}

	payload, err := resp.AsBytes()
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, err
	}

	return true, nil
}

func (b *CacheBuilder) Delete() error {
	if b.client == nil {
		return nil
	}
	return b.client.Do(b.ctx, b.client.B().Del().Key(b.key).Build()).Error()
}
