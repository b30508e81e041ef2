package snapshot

import "fmt"

const keyPrefix = "drawpoker"

// tableKey returns the Redis key for a table's public snapshot
func tableKey(tableUUID string) string {
	return fmt.Sprintf("%s:table:%s", keyPrefix, tableUUID)
}
