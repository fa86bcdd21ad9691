package settings

import (
	"context"
	"sync"

	"github.com/koustreak/dbee/internal/filestore"
)

// Tab is one SQL editor tab.
type Tab struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// EditorState is the set of open tabs for one connection.
type EditorState struct {
	Tabs        []Tab   `json:"tabs"`
	ActiveTabID *string `json:"activeTabId"`
}

type editorTabsDoc struct {
	Connections map[string]EditorState `json:"connections"`
}

// EditorTabs stores editor state keyed by connection id.
type EditorTabs struct {
	mu    sync.Mutex
	store filestore.Store
}

func NewEditorTabs(store filestore.Store) *EditorTabs {
	return &EditorTabs{store: store}
}

// Load returns the state saved for connectionID, or nil if none was.
func (e *EditorTabs) Load(ctx context.Context, connectionID string) (*EditorState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc, err := e.read(ctx)
	if err != nil {
		return nil, err
	}
	state, ok := doc.Connections[connectionID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

// Save replaces the state saved for connectionID.
func (e *EditorTabs) Save(ctx context.Context, connectionID string, state EditorState) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc, err := e.read(ctx)
	if err != nil {
		return err
	}
	if state.Tabs == nil {
		state.Tabs = []Tab{}
	}
	doc.Connections[connectionID] = state
	return writeJSON(ctx, e.store, editorTabsFile, doc)
}

func (e *EditorTabs) read(ctx context.Context) (*editorTabsDoc, error) {
	doc := &editorTabsDoc{}
	if _, err := readJSON(ctx, e.store, editorTabsFile, doc); err != nil {
		return nil, err
	}
	if doc.Connections == nil {
		doc.Connections = map[string]EditorState{}
	}
	return doc, nil
}
