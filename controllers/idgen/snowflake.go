package idgen

import (
	"log"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init sets the snowflake node. Only the first call wins; GenerateID falls
// back to node 1 when Init was never called (tests, seeders).
func Init(nodeID int64) {
	once.Do(func() {
		var err error
		node, err = snowflake.NewNode(nodeID)
		if err != nil {
			log.Fatalf("Failed to init Snowflake: %v", err)
		}
	})
}

func GenerateID() int64 {
	Init(1)
	return node.Generate().Int64()
}
