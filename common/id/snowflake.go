// Package id hands out the snowflake ids used as primary keys for
// workspaces and event records.
package id

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

var ErrInvalid = errors.New("invalid id")

var (
	node     *snowflake.Node
	initOnce sync.Once
	initErr  error
)

// Init binds this process to a snowflake node. Only the first call counts;
// later calls return the first call's error.
func Init(nodeID int64) error {
	initOnce.Do(func() {
		node, initErr = snowflake.NewNode(nodeID)
	})
	return initErr
}

// New returns a time-ordered id. Without a prior Init it runs as node 0.
func New() int64 {
	if err := Init(0); err != nil {
		panic(fmt.Sprintf("id: snowflake node unavailable: %v", err))
	}
	return node.Generate().Int64()
}

// Parse reads a decimal id as it appears in URLs and JSON strings.
func Parse(s string) (int64, error) {
	sf, err := snowflake.ParseString(s)
	if err != nil || sf.Int64() <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return sf.Int64(), nil
}

// Time reports when id was generated.
func Time(id int64) time.Time {
	return time.UnixMilli(snowflake.ID(id).Time()).UTC()
}
