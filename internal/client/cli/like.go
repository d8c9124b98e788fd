package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdraft/internal/client/models"
)

// Like toggles the like of a post and prints the state the backend confirmed.
func (a *App) Like(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("usage: like <post-id>")
	}
	postID := models.PostID(id)

	st, err := a.likes.Toggle(ctx, postID)
	if err != nil {
		return fmt.Errorf("like %s: %w", id, err)
	}

	verb := "unliked"
	if st.Liked {
		verb = "liked"
	}
	a.println(fmt.Sprintf("Post %s %s, %d like(s)", id, verb, st.Likes))
	return nil
}
