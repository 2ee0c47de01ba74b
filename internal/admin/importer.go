package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ISTE-SCTCE/Admin/internal/cryptox"
	"github.com/ISTE-SCTCE/Admin/internal/logging"
	"github.com/ISTE-SCTCE/Admin/internal/server/policy"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/members"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/repomanager"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/users"
	"github.com/ISTE-SCTCE/Admin/internal/server/store"
)

// ImportOptions control ImportDir.
type ImportOptions struct {
	// HashPasswords replaces plaintext user passwords with argon2id hashes.
	HashPasswords bool
	// Logger receives a warning for every role that maps to no known role.
	Logger logging.Logger
}

// ImportDir copies the legacy <collection>.json arrays found in dir into b,
// keeping every record's id. Missing files are skipped. It returns the number
// of records written per collection. User and member roles are rewritten to
// the known role they name; roles naming none are kept and logged.
func ImportDir(ctx context.Context, b store.Backend, dir string, opts ImportOptions) (map[string]int, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	counts := make(map[string]int)

	for _, name := range repomanager.Collections() {
		data, err := os.ReadFile(filepath.Join(dir, name+".json"))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return counts, fmt.Errorf("read %s: %w", name, err)
		}

		docs, err := decodeLegacy(ctx, name, data, opts)
		if err != nil {
			return counts, err
		}

		for _, d := range docs {
			if err := b.Put(ctx, name, d); err != nil {
				return counts, fmt.Errorf("import %s %d: %w", name, d.ID, err)
			}
		}
		counts[name] = len(docs)
	}

	return counts, nil
}

func decodeLegacy(ctx context.Context, collection string, data []byte, opts ImportOptions) ([]store.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}

	docs := make([]store.Document, 0, len(raw))
	seen := make(map[int64]bool, len(raw))
	for i, r := range raw {
		var head struct {
			ID *int64 `json:"id"`
		}
		if err := json.Unmarshal(r, &head); err != nil {
			return nil, fmt.Errorf("decode %s[%d]: %w", collection, i, err)
		}
		if head.ID == nil || *head.ID <= 0 {
			return nil, fmt.Errorf("%s[%d]: missing or invalid id", collection, i)
		}
		if seen[*head.ID] {
			return nil, fmt.Errorf("%s[%d]: duplicate id %d", collection, i, *head.ID)
		}
		seen[*head.ID] = true

		if collection == users.Collection || collection == members.Collection {
			var err error
			r, err = normalizeAccount(ctx, collection, *head.ID, r, opts)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", collection, i, err)
			}
		}

		var buf bytes.Buffer
		if err := json.Compact(&buf, r); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", collection, i, err)
		}
		docs = append(docs, store.Document{ID: *head.ID, Data: buf.Bytes()})
	}
	return docs, nil
}

// normalizeAccount maps the role of a user or member record to a known role
// and, for users, hashes a plaintext password when asked. Unrelated fields
// are kept as they are.
func normalizeAccount(ctx context.Context, collection string, id int64, r json.RawMessage, opts ImportOptions) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r, &fields); err != nil {
		return nil, err
	}
	changed := false

	if raw, ok := fields["role"]; ok {
		var role string
		if err := json.Unmarshal(raw, &role); err != nil {
			return nil, fmt.Errorf("role: %w", err)
		}
		switch known := policy.ParseLegacyRole(role); {
		case known == policy.RoleUnknown:
			opts.Logger.Warn(ctx, "unknown role kept as is", "collection", collection, "id", id, "role", role)
		case known.String() != role:
			fields["role"] = jsonString(known.String())
			changed = true
		}
	}

	if collection == users.Collection && opts.HashPasswords {
		var pw string
		if raw, ok := fields["password"]; ok {
			if err := json.Unmarshal(raw, &pw); err != nil {
				return nil, fmt.Errorf("password: %w", err)
			}
		}
		if pw != "" && !cryptox.IsHashed(pw) {
			fields["password"] = jsonString(cryptox.HashPassword(pw))
			changed = true
		}
	}

	if !changed {
		return r, nil
	}
	return json.Marshal(fields)
}

func jsonString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
