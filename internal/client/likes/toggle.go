package likes

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/gophdraft/internal/client/models"
	"github.com/dmitrijs2005/gophdraft/internal/logging"
)

var ErrInFlight = errors.New("like toggle already in progress")

// Client is the part of the backend API the toggle needs.
type Client interface {
	ToggleLike(ctx context.Context, id models.PostID) (models.LikeState, error)
}

// Toggler keeps the like state of the posts a user interacts with.
type Toggler struct {
	client Client
	log    logging.Logger

	mu       sync.Mutex
	states   map[models.PostID]Optimistic[models.LikeState]
	inFlight map[models.PostID]bool
}

func NewToggler(client Client, log logging.Logger) *Toggler {
	if log == nil {
		log = logging.Nop()
	}
	return &Toggler{
		client:   client,
		log:      log,
		states:   make(map[models.PostID]Optimistic[models.LikeState]),
		inFlight: make(map[models.PostID]bool),
	}
}

// Seed records the state of a post as loaded from the backend.
func (t *Toggler) Seed(id models.PostID, st models.LikeState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[id] = Settled(st)
}

func (t *Toggler) State(id models.PostID) Optimistic[models.LikeState] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[id]
}

// Toggle flips the like locally, then asks the backend. The backend answer
// replaces the prediction; on failure the prediction is rolled back.
func (t *Toggler) Toggle(ctx context.Context, id models.PostID) (models.LikeState, error) {
	t.mu.Lock()
	if t.inFlight[id] {
		t.mu.Unlock()
		return models.LikeState{}, ErrInFlight
	}
	t.inFlight[id] = true
	cur := t.states[id]
	next := cur.Predict(flip(cur.Value))
	t.states[id] = next
	t.mu.Unlock()

	st, err := t.client.ToggleLike(ctx, id)

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inFlight, id)

	if err != nil {
		t.log.Warn(ctx, "toggle like failed, rolling back", "post_id", id, "error", err)
		rolled := next.Rollback()
		t.states[id] = rolled
		return rolled.Value, err
	}

	t.states[id] = next.Confirm(st)
	return st, nil
}

func flip(st models.LikeState) models.LikeState {
	if st.Liked {
		st.Likes--
		if st.Likes < 0 {
			st.Likes = 0
		}
	} else {
		st.Likes++
	}
	st.Liked = !st.Liked
	return st
}
