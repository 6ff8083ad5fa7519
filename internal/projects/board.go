package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/pathwise/internal/roadmap"
	"github.com/abhisek/pathwise/internal/store"
)

var (
	// ErrProjectNotFound is returned for an unknown project id.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidTransition is returned when a status change is not allowed
	// from the project's current status.
	ErrInvalidTransition = errors.New("invalid project status transition")
	// ErrIdeaNotFound is returned when a node has no project idea at the
	// requested index.
	ErrIdeaNotFound = errors.New("project idea not found")
)

const collectionKey = "projects"

// Board stores all projects as one collection. Mutations are serialized
// within a Board; separate processes sharing a backend are last-writer-wins.
type Board struct {
	kv  store.KV
	now func() time.Time

	mu sync.Mutex
}

// Option configures a Board.
type Option func(*Board)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

func NewBoard(kv store.KV, opts ...Option) *Board {
	b := &Board{kv: kv, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CreateDraft adopts the idea at ideaIndex of node as a new draft project.
func (b *Board) CreateDraft(ctx context.Context, node roadmap.Node, ideaIndex int) (*Project, error) {
	if ideaIndex < 0 || ideaIndex >= len(node.ProjectIdeas) {
		return nil, fmt.Errorf("%w: node %q has %d ideas, index %d",
			ErrIdeaNotFound, node.ID, len(node.ProjectIdeas), ideaIndex)
	}
	return b.CreateDraftFromIdea(ctx, node.ID, node.Subject, node.ProjectIdeas[ideaIndex])
}

// CreateDraftFromIdea stores idea as a new draft project.
func (b *Board) CreateDraftFromIdea(ctx context.Context, nodeID, subject string, idea roadmap.ProjectIdea) (*Project, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	all, err := b.load(ctx)
	if err != nil {
		return nil, err
	}

	now := b.now().UTC()
	p := Project{
		ID:          uuid.NewString(),
		SourceNode:  nodeID,
		Subject:     subject,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
		ProjectIdea: idea,
	}
	all = append(all, p)

	if err := b.save(ctx, all); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns the project with id.
func (b *Board) Get(ctx context.Context, id string) (*Project, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	all, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(all, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return &all[i], nil
}

// List returns all projects ordered by creation time, then id.
func (b *Board) List(ctx context.Context) ([]Project, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	all, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}

// MarkActive moves a draft project to active.
func (b *Board) MarkActive(ctx context.Context, id string) (*Project, error) {
	return b.mutate(ctx, id, func(p *Project) error {
		if p.Status != StatusDraft {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, StatusActive)
		}
		p.Status = StatusActive
		return nil
	})
}

// MarkCompleted moves an active project to completed.
func (b *Board) MarkCompleted(ctx context.Context, id string) (*Project, error) {
	return b.mutate(ctx, id, func(p *Project) error {
		if p.Status != StatusActive {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, StatusCompleted)
		}
		p.Status = StatusCompleted
		return nil
	})
}

// Update applies patch to the project's idea fields. Status is unchanged.
// An invalid patch returns a *PatchError and leaves the project as it was.
func (b *Board) Update(ctx context.Context, id string, patch Patch) (*Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return b.mutate(ctx, id, func(p *Project) error {
		patch.apply(&p.ProjectIdea)
		return nil
	})
}

// Delete removes the project with id.
func (b *Board) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	all, err := b.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(all, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	all = append(all[:i], all[i+1:]...)
	return b.save(ctx, all)
}

func (b *Board) mutate(ctx context.Context, id string, fn func(*Project) error) (*Project, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	all, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(all, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}

	if err := fn(&all[i]); err != nil {
		return nil, err
	}
	all[i].UpdatedAt = b.now().UTC()

	if err := b.save(ctx, all); err != nil {
		return nil, err
	}
	p := all[i]
	return &p, nil
}

func (b *Board) load(ctx context.Context) ([]Project, error) {
	raw, err := b.kv.Get(ctx, collectionKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}

	var all []Project
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	return all, nil
}

func (b *Board) save(ctx context.Context, all []Project) error {
	if all == nil {
		all = []Project{}
	}
	raw, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode projects: %w", err)
	}
	if err := b.kv.Put(ctx, collectionKey, raw); err != nil {
		return fmt.Errorf("save projects: %w", err)
	}
	return nil
}

func indexOf(all []Project, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}
