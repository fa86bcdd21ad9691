package settings

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/koustreak/dbee/internal/database"
	"github.com/koustreak/dbee/internal/errs"
	"github.com/koustreak/dbee/internal/filestore"
)

type connectionsDoc struct {
	Connections []database.Descriptor `json:"connections"`
}

// Profiles stores saved connection descriptors as an ordered list.
type Profiles struct {
	mu    sync.Mutex
	store filestore.Store
}

func NewProfiles(store filestore.Store) *Profiles {
	return &Profiles{store: store}
}

// List returns every saved profile in insertion order.
func (p *Profiles) List(ctx context.Context) ([]database.Descriptor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.read(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Connections, nil
}

// Get returns the profile with the given id.
func (p *Profiles) Get(ctx context.Context, id string) (*database.Descriptor, error) {
	list, err := p.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, errs.New(errs.ErrKindNotFound, "no saved connection with id "+id)
}

// Save stores d and returns it as saved. An empty id gets a fresh UUID
// and is appended; a known id is replaced in place; an unknown id is
// appended as is.
func (p *Profiles) Save(ctx context.Context, d database.Descriptor) (*database.Descriptor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.read(ctx)
	if err != nil {
		return nil, err
	}

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if i := slices.IndexFunc(doc.Connections, func(c database.Descriptor) bool { return c.ID == d.ID }); i >= 0 {
		doc.Connections[i] = d
	} else {
		doc.Connections = append(doc.Connections, d)
	}

	if err := writeJSON(ctx, p.store, connectionsFile, doc); err != nil {
		return nil, err
	}
	return &d, nil
}

// Delete removes the profile with the given id. Unknown ids are not an
// error.
func (p *Profiles) Delete(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.read(ctx)
	if err != nil {
		return err
	}
	doc.Connections = slices.DeleteFunc(doc.Connections, func(c database.Descriptor) bool { return c.ID == id })
	return writeJSON(ctx, p.store, connectionsFile, doc)
}

func (p *Profiles) read(ctx context.Context) (*connectionsDoc, error) {
	doc := &connectionsDoc{}
	if _, err := readJSON(ctx, p.store, connectionsFile, doc); err != nil {
		return nil, err
	}
	if doc.Connections == nil {
		doc.Connections = []database.Descriptor{}
	}
	return doc, nil
}
