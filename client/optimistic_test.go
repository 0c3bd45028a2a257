package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI beantwortet Interaktionsaufrufe aus vorgegebenen Feldern, ohne
// einen Server zu brauchen.
type fakeAPI struct {
	liked   bool
	likes   int
	saved   bool
	comment AddCommentResult
	err     error

	calls int
}

func (f *fakeAPI) AddLike(ctx context.Context, articleID, userID string) (bool, int, error) {
	f.calls++
	return f.liked, f.likes, f.err
}

func (f *fakeAPI) ToggleSaveArticle(ctx context.Context, articleID, userID string) (bool, error) {
	f.calls++
	return f.saved, f.err
}

func (f *fakeAPI) AddComment(ctx context.Context, articleID, userID, text string) (AddCommentResult, error) {
	f.calls++
	return f.comment, f.err
}

func TestToggleLikeCommitsServerState(t *testing.T) {
	api := &fakeAPI{liked: true, likes: 8}
	st := &InteractionState{Liked: false, LikesCount: 7}

	err := st.ToggleLike(context.Background(), api, "a1", "u1")
	require.NoError(t, err)
	assert.True(t, st.Liked)
	assert.Equal(t, 8, st.LikesCount)
	assert.Equal(t, 1, api.calls)
}

func TestToggleLikeRollsBackOnError(t *testing.T) {
	api := &fakeAPI{err: errors.New("network error")}
	st := &InteractionState{Liked: true, LikesCount: 3}

	err := st.ToggleLike(context.Background(), api, "a1", "u1")
	require.Error(t, err)
	assert.True(t, st.Liked)
	assert.Equal(t, 3, st.LikesCount)
}

func TestToggleSaveRollsBackOnError(t *testing.T) {
	api := &fakeAPI{err: errors.New("network error")}
	st := &InteractionState{Saved: false}

	err := st.ToggleSave(context.Background(), api, "a1", "u1")
	require.Error(t, err)
	assert.False(t, st.Saved)

	api.err = nil
	api.saved = true
	require.NoError(t, st.ToggleSave(context.Background(), api, "a1", "u1"))
	assert.True(t, st.Saved)
}

func TestPostCommentReplacesTemporaryID(t *testing.T) {
	api := &fakeAPI{comment: AddCommentResult{CommentID: "c42", CommentsCount: 5}}
	st := &InteractionState{CommentsCount: 4}

	err := st.PostComment(context.Background(), api, "a1", "u1", "reader", "gut geschrieben")
	require.NoError(t, err)
	require.Len(t, st.Comments, 1)
	assert.Equal(t, "c42", st.Comments[0].ID)
	assert.Equal(t, "gut geschrieben", st.Comments[0].Comment.Comment)
	assert.Equal(t, "reader", st.Comments[0].AuthorView.Username)
	assert.Equal(t, 5, st.CommentsCount)
}

func TestPostCommentRemovesTemporaryOnError(t *testing.T) {
	api := &fakeAPI{err: errors.New("network error")}
	st := &InteractionState{CommentsCount: 4}

	err := st.PostComment(context.Background(), api, "a1", "u1", "reader", "weg damit")
	require.Error(t, err)
	assert.Empty(t, st.Comments)
	assert.Equal(t, 4, st.CommentsCount)
}
