package idgen

import (
	"fmt"
	"hash/fnv"
	"os"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// SetNodeID pins the snowflake node (0-1023). Call once at startup; otherwise
// the node is derived from the hostname.
func SetNodeID(id int64) error {
	n, err := snowflake.NewNode(id & 0x3FF)
	if err != nil {
		return err
	}
	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

func current() *snowflake.Node {
	mu.Lock()
	defer mu.Unlock()
	if node != nil {
		return node
	}
	host, _ := os.Hostname()
	h := fnv.New32a()
	_, _ = h.Write([]byte(host))
	n, err := snowflake.NewNode(int64(h.Sum32()) & 0x3FF)
	if err != nil {
		n, _ = snowflake.NewNode(1)
	}
	node = n
	return node
}

// Next returns a new snowflake id.
func Next() int64 {
	return current().Generate().Int64()
}

// OutfitID returns a recommendation identifier such as "outfit_1798...".
func OutfitID() string {
	return fmt.Sprintf("outfit_%d", Next())
}
