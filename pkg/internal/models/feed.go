package models

import "gorm.io/datatypes"

const (
	ChangeOpInsert = "insert"
	ChangeOpUpdate = "update"
)

// ChangeRecord is the durable half of the dual-path delivery. Every
// state-mutating write appends one of these, the feed dispatcher replays them
// past a cursor so a dropped broadcast can never lose a transition.
type ChangeRecord struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	Table     string            `json:"table" gorm:"column:table_name"`
	Op        string            `json:"op"`
	RowID     uint              `json:"row_id"`
	Payload   datatypes.JSONMap `json:"payload"`
	CreatedAt int64             `json:"created_at" gorm:"autoCreateTime:milli"`
}
