package entities

import (
	"encoding/json"
	"time"
)

type WriteOp string

const (
	WriteInsert WriteOp = "insert"
	WriteUpdate WriteOp = "update"
	WriteDelete WriteOp = "delete"
)

type WriteState string

const (
	WritePending  WriteState = "PENDING"
	WriteInFlight WriteState = "IN_FLIGHT"
	WriteDead     WriteState = "DEAD"
)

// PendingWrite — принятая локально мутация, ещё не подтверждённая
// удалённым хранилищем. Принадлежит очереди до подтверждения.
type PendingWrite struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	TargetID   string          `json:"target_id,omitempty"`
	Op         WriteOp         `json:"op"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
	Retries    int             `json:"retries"`
	State      WriteState      `json:"state"`
}
