// File: utils/constants.go
package utils

import "time"

// LockKeyPrefix is the prefix used for Redis provider lock keys.
const LockKeyPrefix = "lock:provider:"

// LockTTL bounds how long a crashed holder can keep a provider locked.
const LockTTL = 10 * time.Second

// DateLayout is the calendar date format used on the HTTP surface.
const DateLayout = "2006-01-02"
