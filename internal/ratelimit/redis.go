// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces ledger keys in Redis.
const keyPrefix = "intake:rl:"

// allowScript implements prune-count-append atomically on the server so
// concurrent gateway replicas cannot both take the last slot.
//
// KEYS[1] = ledger key, ARGV = cutoff score, max, now score, member, TTL ms.
var allowScript = redis.NewScript(`
redis.call("ZREMRANGEBYSCORE", KEYS[1], 0, ARGV[1])
if redis.call("ZCARD", KEYS[1]) >= tonumber(ARGV[2]) then
	return 0
end
redis.call("ZADD", KEYS[1], ARGV[3], ARGV[4])
redis.call("PEXPIRE", KEYS[1], ARGV[5])
return 1
`)

// Redis is a sliding-window limiter backed by a per-origin Redis sorted set,
// scored by request time. It is the shared-store swap for the in-memory
// ledger when the gateway runs behind a Redis deployment.
type Redis struct {
	rdb    *redis.Client
	window time.Duration
	max    int
}

// NewRedis creates a Redis-backed limiter with the given window and per-origin
// maximum.
func NewRedis(rdb *redis.Client, window time.Duration, max int) *Redis {
	return &Redis{
		rdb:    rdb,
		window: window,
		max:    max,
	}
}

// Allow runs the ledger update as a single server-side script. Errors are
// returned to the caller, which decides the degradation policy.
func (r *Redis) Allow(ctx context.Context, key string, now time.Time) (bool, error) {
	ledgerKey := keyPrefix + key
	cutoff := now.Add(-r.window).UnixNano()

	res, err := allowScript.Run(ctx, r.rdb, []string{ledgerKey},
		strconv.FormatInt(cutoff, 10),
		strconv.Itoa(r.max),
		strconv.FormatInt(now.UnixNano(), 10),
		uuid.NewString(),
		strconv.FormatInt(r.window.Milliseconds(), 10),
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit script: %w", err)
	}

	return res == 1, nil
}
