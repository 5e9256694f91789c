package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
// Must be called once at process start before any ID is generated.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a new unique int64 ID. IDs are time-ordered, which gives
// report IDs the monotonic assignment the lifecycle relies on.
func New() int64 {
	return node.Generate().Int64()
}
