package world

import "craftage.ai/internal/sim/world/feature/session/eat"

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

const (
	AuditJoin     = "JOIN"
	AuditCraft    = "CRAFT"
	AuditConsume  = "CONSUME"
	AuditGather   = "GATHER"
	AuditSetAge   = "SET_AGE"
	AuditStarving = "STARVING"
	AuditDowned   = "DOWNED"
	AuditReject   = "REJECT"
)

type AuditEntry struct {
	Tick      uint64         `json:"tick"`
	PlayerID  string         `json:"player_id"`
	Kind      string         `json:"kind"`
	Ref       string         `json:"ref,omitempty"` // recipe, consumable or node id
	Consumed  map[string]int `json:"consumed,omitempty"`
	Produced  map[string]int `json:"produced,omitempty"`
	Delta     *eat.Delta     `json:"delta,omitempty"`
	Code      string         `json:"code,omitempty"`
	Shortfall map[string]int `json:"shortfall,omitempty"`
	Reason    string         `json:"reason,omitempty"`
}

func (w *World) audit(e AuditEntry) {
	if w.auditLogger == nil {
		return
	}
	_ = w.auditLogger.WriteAudit(e)
}
