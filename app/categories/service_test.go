package categories

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sportcore/catalog/app/events"
	"github.com/sportcore/catalog/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// --- In-memory doubles ---

type fakeCategoryStore struct {
	rows   map[uint]*models.Category
	nextID uint
	err    error
}

func newFakeCategoryStore(names ...string) *fakeCategoryStore {
	s := &fakeCategoryStore{rows: map[uint]*models.Category{}, nextID: 1}
	for _, n := range names {
		_ = s.Create(context.Background(), &models.Category{Name: n})
	}
	return s
}

func (s *fakeCategoryStore) List(ctx context.Context) ([]models.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Category
	for id := uint(1); id < s.nextID; id++ {
		if c, ok := s.rows[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *fakeCategoryStore) SearchByName(ctx context.Context, name string) ([]models.Category, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Category
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(name)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeCategoryStore) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.rows[id]
	if !ok {
		return nil, models.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *fakeCategoryStore) Exists(ctx context.Context, id uint) (bool, error) {
	_, ok := s.rows[id]
	return ok, s.err
}

func (s *fakeCategoryStore) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	for id, c := range s.rows {
		if id != excludeID && strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, s.err
}

func (s *fakeCategoryStore) Create(ctx context.Context, category *models.Category) error {
	if s.err != nil {
		return s.err
	}
	category.ID = s.nextID
	s.nextID++
	cp := *category
	s.rows[category.ID] = &cp
	return nil
}

func (s *fakeCategoryStore) Update(ctx context.Context, category *models.Category) error {
	if _, ok := s.rows[category.ID]; !ok {
		return models.ErrCategoryNotFound
	}
	cp := *category
	s.rows[category.ID] = &cp
	return nil
}

func (s *fakeCategoryStore) Delete(ctx context.Context, id uint) error {
	if _, ok := s.rows[id]; !ok {
		return models.ErrCategoryNotFound
	}
	delete(s.rows, id)
	return nil
}

type fakeProductCounter map[uint]int64

func (f fakeProductCounter) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	return f[categoryID], nil
}

type passthroughTx struct{ calls int }

func (t *passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newTestService(store *fakeCategoryStore, counts fakeProductCounter) (*Service, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewService(store, counts, &passthroughTx{}, pub, zap.NewNop()), pub
}

// --- Tests ---

func TestServiceCreate(t *testing.T) {
	testCases := []struct {
		name          string
		existing      []string
		req           CategoryRequest
		expectedErr   error
		expectedMsg   string
		expectedName  string
		expectedEvent bool
	}{
		{
			name:          "Creates trimmed category",
			req:           CategoryRequest{Name: "  Vitamins ", Description: " Essential vitamins "},
			expectedName:  "Vitamins",
			expectedEvent: true,
		},
		{
			name:        "Blank name is rejected",
			req:         CategoryRequest{Name: "   "},
			expectedErr: models.ErrValidation,
			expectedMsg: "validation failed: name is required",
		},
		{
			name:        "Name too long",
			req:         CategoryRequest{Name: strings.Repeat("a", 101)},
			expectedErr: models.ErrValidation,
			expectedMsg: "validation failed: name must not exceed 100 characters",
		},
		{
			name:        "Duplicate name ignores case",
			existing:    []string{"Proteins"},
			req:         CategoryRequest{Name: "PROTEINS"},
			expectedErr: models.ErrDuplicate,
			expectedMsg: "category with name 'PROTEINS' already exists",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeCategoryStore(tc.existing...)
			svc, pub := newTestService(store, nil)

			resp, err := svc.Create(context.Background(), tc.req)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.EqualError(t, err, tc.expectedMsg)
				assert.Nil(t, resp)
				assert.Empty(t, pub.events)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedName, resp.Name)
			assert.Equal(t, "Essential vitamins", resp.Description)
			assert.NotZero(t, resp.ID)
			if tc.expectedEvent {
				require.Len(t, pub.events, 1)
				assert.Equal(t, events.CategoryCreated, pub.events[0].Type)
				assert.Equal(t, resp.ID, pub.events[0].ID)
			}
		})
	}
}

func TestServiceGet(t *testing.T) {
	store := newFakeCategoryStore("Proteins")
	svc, _ := newTestService(store, nil)

	resp, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Proteins", resp.Name)

	_, err = svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.EqualError(t, err, "category not found with id: 42")
}

func TestServiceListAndSearch(t *testing.T) {
	store := newFakeCategoryStore("Pre-Workout", "Vitamins", "Post-Workout")
	svc, _ := newTestService(store, nil)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := svc.Search(context.Background(), "workout")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Pre-Workout", found[0].Name)
	assert.Equal(t, "Post-Workout", found[1].Name)

	store.err = errors.New("connection reset")
	_, err = svc.List(context.Background())
	assert.EqualError(t, err, "connection reset")
}

func TestServiceUpdate(t *testing.T) {
	testCases := []struct {
		name        string
		id          uint
		req         CategoryRequest
		expectedErr error
	}{
		{name: "Renames category", id: 1, req: CategoryRequest{Name: "Protein Powders", Description: "All powders"}},
		{name: "Keeping own name is allowed", id: 1, req: CategoryRequest{Name: "proteins"}},
		{name: "Name owned by another category", id: 1, req: CategoryRequest{Name: "Creatine"}, expectedErr: models.ErrDuplicate},
		{name: "Unknown category", id: 9, req: CategoryRequest{Name: "Anything"}, expectedErr: models.ErrNotFound},
		{name: "Invalid payload", id: 1, req: CategoryRequest{Description: strings.Repeat("d", 501)}, expectedErr: models.ErrValidation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeCategoryStore("Proteins", "Creatine")
			svc, pub := newTestService(store, nil)

			resp, err := svc.Update(context.Background(), tc.id, tc.req)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Empty(t, pub.events)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.id, resp.ID)
			assert.Equal(t, tc.req.Name, store.rows[tc.id].Name)
			assert.Equal(t, tc.req.Description, store.rows[tc.id].Description)
			require.Len(t, pub.events, 1)
			assert.Equal(t, events.CategoryUpdated, pub.events[0].Type)
		})
	}
}

func TestServiceDelete(t *testing.T) {
	testCases := []struct {
		name        string
		id          uint
		counts      fakeProductCounter
		expectedErr error
	}{
		{name: "Deletes empty category", id: 2},
		{name: "Category with products is kept", id: 1, counts: fakeProductCounter{1: 3}, expectedErr: models.ErrCategoryInUse},
		{name: "Unknown category", id: 7, expectedErr: models.ErrCategoryNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeCategoryStore("Proteins", "Creatine")
			svc, pub := newTestService(store, tc.counts)

			err := svc.Delete(context.Background(), tc.id)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Len(t, store.rows, 2)
				assert.Empty(t, pub.events)
				return
			}
			require.NoError(t, err)
			assert.NotContains(t, store.rows, tc.id)
			require.Len(t, pub.events, 1)
			assert.Equal(t, events.CategoryDeleted, pub.events[0].Type)
			assert.Equal(t, tc.id, pub.events[0].ID)
		})
	}
}

func TestServicePublishFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := newFakeCategoryStore()
	pub := &recordingPublisher{err: errors.New("broker unavailable")}
	svc := NewService(store, nil, &passthroughTx{}, pub, zap.New(core))

	resp, err := svc.Create(context.Background(), CategoryRequest{Name: "Fat Burners"})

	require.NoError(t, err)
	assert.Equal(t, "Fat Burners", resp.Name)
	entries := logs.FilterMessage("failed to publish category event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, events.CategoryCreated, entries[0].ContextMap()["type"])
}
