// Package settings persists the user's connection profiles, editor tabs
// and assistant settings as JSON documents in a filestore.Store.
//
// Each document is read in full and rewritten in full. A store-level mutex
// serialises the read-modify-write cycle of one document.
package settings

import (
	"context"
	"encoding/json"

	"github.com/koustreak/dbee/internal/errs"
	"github.com/koustreak/dbee/internal/filestore"
)

const (
	connectionsFile = "connections.json"
	editorTabsFile  = "editor-tabs.json"
	aiSettingsFile  = "ai-settings.json"
)

// readJSON decodes key into v. It reports false, with v untouched, when
// the document does not exist yet.
func readJSON(ctx context.Context, store filestore.Store, key string, v any) (bool, error) {
	data, err := store.Get(ctx, key)
	if errs.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, errs.Wrap(errs.ErrKindSerialization, "failed to parse "+key, err)
	}
	return true, nil
}

func writeJSON(ctx context.Context, store filestore.Store, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errs.Wrap(errs.ErrKindSerialization, "failed to serialize "+key, err)
	}
	return store.Put(ctx, key, data)
}
