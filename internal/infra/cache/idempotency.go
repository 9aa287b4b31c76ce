// Package cache stores public booking idempotency keys.
package cache

import "time"

// pending marks a key whose booking is still being written.
const pending = "pending"

const keyPrefix = "idempotency:booking:"

const DefaultTTL = 24 * time.Hour
