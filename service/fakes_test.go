package service

import (
	"context"
	"errors"
	"sync"

	"github.com/layer-3/freelance/core"
)

type fakeUsers struct {
	mu        sync.Mutex
	byAddress map[string]*core.User
	createErr error
	findErr   error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byAddress: make(map[string]*core.User)}
}

func (f *fakeUsers) add(u *core.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byAddress[u.Address] = u
}

func (f *fakeUsers) FindByAddress(ctx context.Context, address string) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.byAddress[core.CanonicalAddress(address)]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByID(ctx context.Context, id string) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.byAddress {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrUserNotFound
}

func (f *fakeUsers) Create(ctx context.Context, user *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byAddress[user.Address]; ok {
		return core.ErrUserExists
	}
	cp := *user
	f.byAddress[user.Address] = &cp
	return nil
}

type fakeBlobs struct {
	mu        sync.Mutex
	blobs     map[string]core.Blob
	deleted   []string
	failAfter int // Put fails once this many blobs were stored; -1 never fails
	deleteErr error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{blobs: make(map[string]core.Blob), failAfter: -1}
}

func (f *fakeBlobs) Put(ctx context.Context, blob core.Blob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter >= 0 && len(f.blobs) >= f.failAfter {
		return errors.New("bucket unavailable")
	}
	f.blobs[blob.ID] = blob
	return nil
}

func (f *fakeBlobs) Get(ctx context.Context, id string) (*core.Blob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blobs[id]
	if !ok {
		return nil, core.ErrBlobNotFound
	}
	return &b, nil
}

func (f *fakeBlobs) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.blobs, id)
	return nil
}

func (f *fakeBlobs) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.blobs)
}

type fakeEvents struct {
	mu     sync.Mutex
	events []core.AuthEvent
	err    error
}

func (f *fakeEvents) Publish(ctx context.Context, event core.AuthEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func (f *fakeEvents) types() []core.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.EventType, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}
