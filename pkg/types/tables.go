package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "lm_"

const (
	TABLE_CONTENT      = TableName("content")
	TABLE_ENTITY       = TableName("entity")
	TABLE_TOPIC        = TableName("topic")
	TABLE_RELATIONSHIP = TableName("relationship")
	TABLE_SUGGESTION   = TableName("suggestion")
	TABLE_JOB          = TableName("job")
	TABLE_VECTORS      = TableName("vectors")
)
