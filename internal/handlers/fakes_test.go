package handlers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/property-listing/backend/internal/filters"
	"github.com/anonto42/property-listing/backend/internal/models"
	"github.com/anonto42/property-listing/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]models.User{}}
}

func (f *fakeUsers) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range f.users {
		if u.Email == user.Email {
			return repositories.ErrEmailTaken
		}
	}
	user.ID = primitive.NewObjectID().Hex()
	user.CreatedAt = time.Now()
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %w", repositories.ErrNotFound)
	}
	return &u, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %w", repositories.ErrNotFound)
}

func (f *fakeUsers) GetUsersByIDs(_ context.Context, ids []string) (map[string]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]models.User{}
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

type fakeProperties struct {
	mu         sync.Mutex
	properties map[primitive.ObjectID]models.Property
	order      []primitive.ObjectID
	finds      int
}

func newFakeProperties() *fakeProperties {
	return &fakeProperties{properties: map[primitive.ObjectID]models.Property{}}
}

func (f *fakeProperties) CreateProperty(_ context.Context, p *models.Property) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = primitive.NewObjectID()
	f.properties[p.ID] = *p
	f.order = append(f.order, p.ID)
	return nil
}

func (f *fakeProperties) InsertProperties(ctx context.Context, ps []models.Property) (int, error) {
	for i := range ps {
		if err := f.CreateProperty(ctx, &ps[i]); err != nil {
			return i, err
		}
	}
	return len(ps), nil
}

func (f *fakeProperties) FindProperties(_ context.Context, filter filters.Filter) ([]models.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++
	out := []models.Property{}
	if filter.Unsatisfiable() {
		return out, nil
	}
	for _, id := range f.order {
		p, ok := f.properties[id]
		if ok && filter.Match(&p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProperties) GetPropertyByID(_ context.Context, id string) (*models.Property, error) {
	objID, err := repositories.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.properties[objID]
	if !ok {
		return nil, fmt.Errorf("property %w", repositories.ErrNotFound)
	}
	return &p, nil
}

func (f *fakeProperties) GetPropertiesByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[primitive.ObjectID]models.Property{}
	for _, id := range ids {
		if p, ok := f.properties[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// UpdateProperty round-trips through bson so $set keys behave as they do on the server
func (f *fakeProperties) UpdateProperty(ctx context.Context, id string, set bson.M) (*models.Property, error) {
	current, err := f.GetPropertyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	raw, err := bson.Marshal(current)
	if err != nil {
		return nil, err
	}
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for k, v := range set {
		doc[k] = v
	}
	raw, err = bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var updated models.Property
	if err := bson.Unmarshal(raw, &updated); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.properties[updated.ID] = updated
	f.mu.Unlock()
	return &updated, nil
}

func (f *fakeProperties) DeleteProperty(_ context.Context, id string) error {
	objID, err := repositories.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.properties[objID]; !ok {
		return fmt.Errorf("property %w", repositories.ErrNotFound)
	}
	delete(f.properties, objID)
	return nil
}

func (f *fakeProperties) findCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finds
}

type fakeFavorites struct {
	mu        sync.Mutex
	favorites []models.Favorite
}

func (f *fakeFavorites) CreateFavorite(_ context.Context, fav *models.Favorite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fav.ID = primitive.NewObjectID()
	fav.CreatedAt = time.Now()
	f.favorites = append(f.favorites, *fav)
	return nil
}

func (f *fakeFavorites) GetFavoritesByUser(_ context.Context, userID string) ([]models.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Favorite{}
	for i := len(f.favorites) - 1; i >= 0; i-- {
		if f.favorites[i].UserID == userID {
			out = append(out, f.favorites[i])
		}
	}
	return out, nil
}

func (f *fakeFavorites) GetFavoriteByID(_ context.Context, id string) (*models.Favorite, error) {
	objID, err := repositories.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fav := range f.favorites {
		if fav.ID == objID {
			fav := fav
			return &fav, nil
		}
	}
	return nil, fmt.Errorf("favorite %w", repositories.ErrNotFound)
}

func (f *fakeFavorites) DeleteFavorite(_ context.Context, id string) error {
	objID, err := repositories.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, fav := range f.favorites {
		if fav.ID == objID {
			f.favorites = append(f.favorites[:i], f.favorites[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("favorite %w", repositories.ErrNotFound)
}

type fakeRecommendations struct {
	mu   sync.Mutex
	recs []models.Recommendation
}

func (f *fakeRecommendations) CreateRecommendation(_ context.Context, rec *models.Recommendation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.ID = primitive.NewObjectID()
	f.recs = append(f.recs, *rec)
	return nil
}

func (f *fakeRecommendations) GetRecommendationsForUser(_ context.Context, userID string) ([]models.Recommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Recommendation{}
	for _, r := range f.recs {
		if r.ToUserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecommendedAt.After(out[j].RecommendedAt) })
	return out, nil
}

func (f *fakeRecommendations) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.recs)
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	fail bool
}

func (p *recordingPublisher) PublishJSON(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.keys = append(p.keys, key)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}
