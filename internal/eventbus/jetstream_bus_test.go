package eventbus

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// subjectMatches сопоставление subject'а с шаблоном по правилам NATS:
// * заменяет один токен, > хвост из одного и более токенов
func subjectMatches(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")
	for i, p := range pt {
		if p == ">" {
			return len(st) > i
		}
		if i >= len(st) || (p != "*" && p != st[i]) {
			return false
		}
	}
	return len(pt) == len(st)
}

func TestSubjectFor_StreamCoversEveryType(t *testing.T) {
	for _, typ := range []string{TypeRotationStarted, TypeRotationFinished, TypeAgentSpawned, TypeAgentDied} {
		subj := subjectFor(typ)
		assert.Equal(t, "events."+typ, subj)
		assert.True(t, subjectMatches(streamSubject, subj), subj)
	}
	assert.False(t, subjectMatches(streamSubject, "events"), "голый префикс не событие")
	assert.False(t, subjectMatches(streamSubject, "audit.agent.died"))
}

func TestSubscribeSubject(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{"без фильтра", Filter{}, "events.>"},
		{"один тип", Filter{Types: []string{TypeAgentDied}}, "events.agent.died"},
		{"несколько типов", Filter{Types: []string{TypeAgentDied, TypeAgentSpawned}}, "events.>"},
		{"только источник", Filter{Sources: []string{"engine"}}, "events.>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, subscribeSubject(tt.filter))
		})
	}

	// Подписка на один тип не ловит соседние
	subj := subscribeSubject(Filter{Types: []string{TypeAgentDied}})
	assert.True(t, subjectMatches(subj, subjectFor(TypeAgentDied)))
	assert.False(t, subjectMatches(subj, subjectFor(TypeAgentSpawned)))
}

func TestDecodeMatching(t *testing.T) {
	ev, err := NewEnvelope("engine", TypeAgentDied, AgentEvent{AgentID: "a1", Crushed: true})
	require.NoError(t, err)
	data, err := json.Marshal(ev)
	require.NoError(t, err)

	got := decodeMatching(data, Filter{})
	require.NotNil(t, got)
	assert.Equal(t, ev.ID, got.ID)
	var payload AgentEvent
	require.NoError(t, got.Decode(&payload))
	assert.True(t, payload.Crushed)

	assert.NotNil(t, decodeMatching(data, Filter{Types: []string{TypeAgentSpawned, TypeAgentDied}}))
	assert.NotNil(t, decodeMatching(data, Filter{Sources: []string{"engine"}}))
	assert.Nil(t, decodeMatching(data, Filter{Types: []string{TypeRotationStarted, TypeRotationFinished}}))
	assert.Nil(t, decodeMatching(data, Filter{Sources: []string{"bridge"}}))
	assert.Nil(t, decodeMatching([]byte("не json"), Filter{}))
}

func TestMatchFilter(t *testing.T) {
	ev := &Envelope{Source: "engine", EventType: TypeRotationStarted}
	assert.True(t, matchFilter(ev, Filter{}))
	assert.True(t, matchFilter(ev, Filter{Types: []string{TypeRotationStarted}, Sources: []string{"engine"}}))
	assert.False(t, matchFilter(ev, Filter{Types: []string{TypeRotationStarted}, Sources: []string{"cli"}}))
	assert.False(t, matchFilter(ev, Filter{Types: []string{TypeRotationFinished}}))
}
