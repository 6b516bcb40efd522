package graph

import (
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
)

// Placement region for freshly created nodes: [100,500) on both axes.
const (
	placementMin  = 100.0
	placementSpan = 400.0
)

// seq breaks ties between nodes created within the same nanosecond.
var seq atomic.Int64

// NewNode creates a well-formed node for the given type and kind: fresh
// time-based identifier, randomized placement inside the palette drop
// region, and a human-readable label derived from the type.
//
// The palette only offers matching (type, kind) pairs, so no cross-check is
// performed here; the publish-time validator catches mismatches from
// programmatic callers.
func NewNode(nodeType string, kind models.NodeKind) *models.FlowNode {
	return &models.FlowNode{
		ID:    fmt.Sprintf("node-%d-%d", time.Now().UnixNano(), seq.Add(1)),
		Kind:  kind,
		Type:  nodeType,
		Label: Label(nodeType),
		Position: models.Position{
			X: placementMin + rand.Float64()*placementSpan,
			Y: placementMin + rand.Float64()*placementSpan,
		},
		Config:  make(map[string]any),
		Enabled: true,
	}
}

// Label derives a display label from a taxonomy key: underscores become
// spaces and each word is title-cased ("send_email" -> "Send Email").
func Label(nodeType string) string {
	words := strings.Split(nodeType, "_")
	for i, word := range words {
		if word == "" {
			continue
		}

		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}

	return strings.Join(words, " ")
}

// Palette returns the node types offered for the given kind. The returned
// slice is a copy.
func Palette(kind models.NodeKind) []string {
	switch kind {
	case models.NodeKindTrigger:
		return append([]string(nil), models.TriggerTypes...)
	case models.NodeKindAction:
		return append([]string(nil), models.ActionTypes...)
	case models.NodeKindCondition:
		return append([]string(nil), models.ConditionTypes...)
	default:
		return nil
	}
}
