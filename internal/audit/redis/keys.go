package redis

import "fmt"

// Key prefix for all arena data
const keyPrefix = "arena"

// streamKey returns the Redis key of the audit stream
func streamKey(stream string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, stream)
}
