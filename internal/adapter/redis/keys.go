package redis

import "strconv"

const (
	spinIndexKey    = "spins:by_time"
	distributionKey = "stats:prizeDistribution"
	spinKeyPrefix   = "spin:"
)

func spinKey(id string) string {
	return spinKeyPrefix + id
}

func keyspaceChannel(db int, key string) string {
	return "__keyspace@" + strconv.Itoa(db) + "__:" + key
}
