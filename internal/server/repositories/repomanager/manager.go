// Package repomanager vends the per-entity repositories bound to one store
// backend, so services depend on a single handle.
package repomanager

import (
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/events"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/files"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/members"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/messages"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/users"
	"github.com/ISTE-SCTCE/Admin/internal/server/store"
)

type RepositoryManager interface {
	Users() users.Repository
	Members() members.Repository
	Messages() messages.Repository
	Files() files.Repository
	Events() events.Repository
}

type StoreRepositoryManager struct {
	users    *users.StoreRepository
	members  *members.StoreRepository
	messages *messages.StoreRepository
	files    *files.StoreRepository
	events   *events.StoreRepository
}

// NewStoreRepositoryManager binds every repository to b. The options apply
// to each repository's collection.
func NewStoreRepositoryManager(b store.Backend, opts ...store.CollectionOption) *StoreRepositoryManager {
	return &StoreRepositoryManager{
		users:    users.NewStoreRepository(b, opts...),
		members:  members.NewStoreRepository(b, opts...),
		messages: messages.NewStoreRepository(b, opts...),
		files:    files.NewStoreRepository(b, opts...),
		events:   events.NewStoreRepository(b, opts...),
	}
}

func (m *StoreRepositoryManager) Users() users.Repository       { return m.users }
func (m *StoreRepositoryManager) Members() members.Repository   { return m.members }
func (m *StoreRepositoryManager) Messages() messages.Repository { return m.messages }
func (m *StoreRepositoryManager) Files() files.Repository       { return m.files }
func (m *StoreRepositoryManager) Events() events.Repository     { return m.events }

// Collections lists every collection the repositories use.
func Collections() []string {
	return []string{users.Collection, members.Collection, messages.Collection, files.Collection, events.Collection}
}
