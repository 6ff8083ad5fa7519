package roadmap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/pathwise/internal/store"
)

var (
	// ErrRoadmapNotFound is returned when no roadmap was saved for a session.
	ErrRoadmapNotFound = errors.New("roadmap not found")
	// ErrNodeNotFound is returned when a node id is not part of the roadmap.
	ErrNodeNotFound = errors.New("roadmap node not found")
)

// Repository persists one roadmap per session. Every save replaces the
// whole roadmap.
type Repository struct {
	kv store.KV
}

func NewRepository(kv store.KV) *Repository {
	return &Repository{kv: kv}
}

func key(session string) string { return "roadmap:" + session }

// Save overwrites the roadmap stored for session.
func (r *Repository) Save(ctx context.Context, session string, nodes []Node) error {
	b, err := json.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("marshal roadmap: %w", err)
	}
	if err := r.kv.Put(ctx, key(session), b); err != nil {
		return fmt.Errorf("save roadmap %q: %w", session, err)
	}
	return nil
}

// Load returns the roadmap stored for session.
func (r *Repository) Load(ctx context.Context, session string) ([]Node, error) {
	b, err := r.kv.Get(ctx, key(session))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrRoadmapNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load roadmap %q: %w", session, err)
	}

	var nodes []Node
	if err := json.Unmarshal(b, &nodes); err != nil {
		return nil, fmt.Errorf("decode roadmap %q: %w", session, err)
	}
	return nodes, nil
}

// SetCompleted flips the completed flag on one node and saves the roadmap.
func (r *Repository) SetCompleted(ctx context.Context, session, nodeID string, done bool) ([]Node, error) {
	nodes, err := r.Load(ctx, session)
	if err != nil {
		return nil, err
	}

	node, _ := Find(nodes, nodeID)
	if node == nil {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, nodeID)
	}
	node.Completed = done

	if err := r.Save(ctx, session, nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// Delete removes the roadmap for session. Deleting a missing roadmap is
// not an error.
func (r *Repository) Delete(ctx context.Context, session string) error {
	if err := r.kv.Delete(ctx, key(session)); err != nil {
		return fmt.Errorf("delete roadmap %q: %w", session, err)
	}
	return nil
}
