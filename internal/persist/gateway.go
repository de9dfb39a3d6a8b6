package persist

import (
	"encoding/json"
	"fmt"
	"strings"

	"plan-annotator/internal/document"
	"plan-annotator/internal/logger"
)

// OversizedRef is the marker stored in place of a sourceRef whose payload
// exceeds the configured embed threshold. Snapshots are written on every
// mutation, so inlining multi-megabyte data URLs would grow the store
// without bound.
const OversizedRef = "oversized:omitted"

// Snapshot is the persisted view of a project.
type Snapshot struct {
	Documents        []*document.Document `json:"documents"`
	ActiveDocumentID string               `json:"activeDocumentId"`
}

// Gateway serializes project snapshots to a KV store under keys
// namespaced by project id. A failed save leaves the in-memory state
// authoritative; nothing is rolled back.
type Gateway struct {
	kv            KV
	maxEmbedBytes int
}

// NewGateway creates a gateway over the given store. maxEmbedBytes bounds
// the sourceRef payload size written into snapshots; zero or negative
// disables the guard.
func NewGateway(kv KV, maxEmbedBytes int) *Gateway {
	return &Gateway{kv: kv, maxEmbedBytes: maxEmbedBytes}
}

func documentsKey(projectID string) string {
	return fmt.Sprintf("project:%s:documents", projectID)
}

func activeKey(projectID string) string {
	return fmt.Sprintf("project:%s:activeDocumentId", projectID)
}

// Save writes the document collection and active document id for a
// project. Oversized embedded payloads are replaced by OversizedRef.
func (g *Gateway) Save(projectID string, docs []*document.Document, activeDocumentID string) error {
	guarded := make([]*document.Document, len(docs))
	for i, d := range docs {
		if g.maxEmbedBytes > 0 && len(d.SourceRef) > g.maxEmbedBytes && isEmbedded(d.SourceRef) {
			cp := *d
			cp.SourceRef = OversizedRef
			guarded[i] = &cp
			logger.Debug("persist: dropping oversized sourceRef of %q (%d bytes)", d.Name, len(d.SourceRef))
			continue
		}
		guarded[i] = d
	}

	data, err := json.Marshal(guarded)
	if err != nil {
		return fmt.Errorf("encoding documents: %w", err)
	}
	if err := g.kv.Set(documentsKey(projectID), string(data)); err != nil {
		return fmt.Errorf("saving documents: %w", err)
	}
	if err := g.kv.Set(activeKey(projectID), activeDocumentID); err != nil {
		return fmt.Errorf("saving active document id: %w", err)
	}
	return nil
}

// Load reads a project snapshot. Missing or malformed data yields
// (nil, false) so the caller can fall back to an empty or seeded state.
func (g *Gateway) Load(projectID string) (*Snapshot, bool) {
	raw, ok := g.kv.Get(documentsKey(projectID))
	if !ok {
		return nil, false
	}
	var docs []*document.Document
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		logger.Warn("persist: malformed snapshot for project %s: %v", projectID, err)
		return nil, false
	}
	activeID, _ := g.kv.Get(activeKey(projectID))
	return &Snapshot{Documents: docs, ActiveDocumentID: activeID}, true
}

// Clear removes all persisted state for a project.
func (g *Gateway) Clear(projectID string) error {
	if err := g.kv.Delete(documentsKey(projectID)); err != nil {
		return err
	}
	return g.kv.Delete(activeKey(projectID))
}

// isEmbedded reports whether a sourceRef carries inline content rather
// than pointing at an external resource.
func isEmbedded(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}
