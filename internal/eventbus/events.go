package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Типы событий просмотрщика
const (
	TypeRotationStarted  = "rotation.started"
	TypeRotationFinished = "rotation.finished"
	TypeAgentSpawned     = "agent.spawned"
	TypeAgentDied        = "agent.died"
)

// PayloadVersion версия схемы полезной нагрузки
const PayloadVersion = 1

// RotationEvent поворот 4D камеры
type RotationEvent struct {
	Generator string `json:"generator"`
	Inverse   bool   `json:"inverse"`
}

// AgentEvent появление или гибель агента
type AgentEvent struct {
	AgentID  string     `json:"agent_id"`
	Position [3]float64 `json:"position"`
	Crushed  bool       `json:"crushed,omitempty"`
}

// NewEnvelope создаёт конверт с новым UUID и JSON полезной нагрузкой
func NewEnvelope(source, eventType string, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Version:   PayloadVersion,
		Payload:   data,
	}, nil
}

// Decode разбирает полезную нагрузку конверта
func (e *Envelope) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}
