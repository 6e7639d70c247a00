package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/lingora/lingora/modules/library/domain/entities/speech"
	"github.com/lingora/lingora/modules/library/domain/entities/tag"
	"github.com/lingora/lingora/modules/library/infrastructure/persistence"
)

// memTagRepo is an in-memory tag.Repository. Setting raceOn for a name
// makes the next Create behave as if a concurrent import won the insert
// race: the tag appears, but Create reports a duplicate.
type memTagRepo struct {
	mu     sync.Mutex
	nextID uint
	tags   map[string]*tag.Tag
	raceOn map[string]bool
}

func newMemTagRepo() *memTagRepo {
	return &memTagRepo{
		tags:   map[string]*tag.Tag{},
		raceOn: map[string]bool{},
	}
}

func (r *memTagRepo) GetByName(_ context.Context, name string) (*tag.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tags[name]
	if !ok {
		return nil, persistence.ErrTagNotFound
	}
	return t, nil
}

func (r *memTagRepo) GetAll(_ context.Context) ([]*tag.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*tag.Tag, 0, len(r.tags))
	for _, t := range r.tags {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result, nil
}

func (r *memTagRepo) Create(_ context.Context, entity *tag.Tag) (*tag.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := entity.Name()
	if _, exists := r.tags[name]; exists {
		return nil, persistence.ErrTagDuplicate
	}
	if r.raceOn[name] {
		delete(r.raceOn, name)
		r.insert(entity)
		return nil, persistence.ErrTagDuplicate
	}
	return r.insert(entity), nil
}

func (r *memTagRepo) insert(entity *tag.Tag) *tag.Tag {
	r.nextID++
	created := tag.New(
		entity.Name(),
		tag.WithID(r.nextID),
		tag.WithCategory(entity.Category()),
		tag.WithCreatedAt(entity.CreatedAt()),
	)
	r.tags[entity.Name()] = created
	return created
}

func (r *memTagRepo) snapshot() map[string]*tag.Tag {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := make(map[string]*tag.Tag, len(r.tags))
	for name, t := range r.tags {
		snap[name] = t
	}
	return snap
}

func (r *memTagRepo) restore(snap map[string]*tag.Tag) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tags = make(map[string]*tag.Tag, len(snap))
	for name, t := range snap {
		r.tags[name] = t
	}
}

// memSpeechRepo is an in-memory speech.Repository. failOnCreate makes the
// Nth Create call (1-based) return a storage fault.
type memSpeechRepo struct {
	mu           sync.Mutex
	nextID       uint
	speeches     map[uint]*speech.Speech
	links        map[uint][]uint
	creates      int
	failOnCreate int
}

func newMemSpeechRepo() *memSpeechRepo {
	return &memSpeechRepo{
		speeches: map[uint]*speech.Speech{},
		links:    map[uint][]uint{},
	}
}

func (r *memSpeechRepo) GetByID(_ context.Context, id uint) (*speech.Speech, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.speeches[id]
	if !ok {
		return nil, persistence.ErrSpeechNotFound
	}
	return s, nil
}

func (r *memSpeechRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.speeches)), nil
}

func (r *memSpeechRepo) Create(_ context.Context, entity *speech.Speech) (*speech.Speech, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.creates++
	if r.failOnCreate > 0 && r.creates == r.failOnCreate {
		return nil, errors.New("storage fault")
	}

	r.nextID++
	created := speech.New(
		entity.Text(),
		entity.Level(),
		entity.SpeechType(),
		entity.AudioRef(),
		speech.WithID(r.nextID),
		speech.WithTags(entity.Tags()),
	)
	r.speeches[r.nextID] = created
	return created, nil
}

func (r *memSpeechRepo) LinkTags(_ context.Context, speechID uint, tagIDs []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.links[speechID] = append([]uint{}, tagIDs...)
	return nil
}

type speechRepoSnapshot struct {
	nextID   uint
	speeches map[uint]*speech.Speech
	links    map[uint][]uint
}

func (r *memSpeechRepo) snapshot() speechRepoSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := speechRepoSnapshot{
		nextID:   r.nextID,
		speeches: make(map[uint]*speech.Speech, len(r.speeches)),
		links:    make(map[uint][]uint, len(r.links)),
	}
	for id, s := range r.speeches {
		snap.speeches[id] = s
	}
	for id, tags := range r.links {
		snap.links[id] = append([]uint{}, tags...)
	}
	return snap
}

func (r *memSpeechRepo) restore(snap speechRepoSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID = snap.nextID
	r.speeches = make(map[uint]*speech.Speech, len(snap.speeches))
	for id, s := range snap.speeches {
		r.speeches[id] = s
	}
	r.links = make(map[uint][]uint, len(snap.links))
	for id, tags := range snap.links {
		r.links[id] = append([]uint{}, tags...)
	}
}

// fakeTransactor mirrors database transaction semantics over the fakes:
// an error from fn restores both repositories to their pre-call state.
type fakeTransactor struct {
	speeches *memSpeechRepo
	tags     *memTagRepo
}

func (t *fakeTransactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	speechSnap := t.speeches.snapshot()
	tagSnap := t.tags.snapshot()
	if err := fn(ctx); err != nil {
		t.speeches.restore(speechSnap)
		t.tags.restore(tagSnap)
		return err
	}
	return nil
}
