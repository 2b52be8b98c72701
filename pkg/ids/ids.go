// Package ids provides the id generators used across the service: snowflake
// for user primary keys (sortable int64) and KSUID for audit and session rows.
package ids

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
	nodeErr  error
)

func snowflakeNode() (*snowflake.Node, error) {
	nodeOnce.Do(func() {
		nodeID := int64(1)
		if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
			if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
				nodeID = parsed
			}
		}
		node, nodeErr = snowflake.NewNode(nodeID)
	})
	return node, nodeErr
}

// NewUserID generates a snowflake id for a new user row.
func NewUserID() (int64, error) {
	n, err := snowflakeNode()
	if err != nil {
		return 0, err
	}
	return n.Generate().Int64(), nil
}

// NewKSUID generates a globally unique, time-sortable string id.
func NewKSUID() string {
	return ksuid.New().String()
}
