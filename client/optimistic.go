package client

import (
	"context"
	"fmt"
	"time"

	"newsdesk/models"
)

// InteractionAPI ist der Ausschnitt des Clients, den optimistische
// Interaktionen brauchen. Als Interface gehalten, damit Aufrufer den
// Server in Tests ersetzen können.
type InteractionAPI interface {
	AddLike(ctx context.Context, articleID, userID string) (bool, int, error)
	ToggleSaveArticle(ctx context.Context, articleID, userID string) (bool, error)
	AddComment(ctx context.Context, articleID, userID, text string) (AddCommentResult, error)
}

// InteractionState ist der lokal angezeigte Stand der Interaktionen eines
// Artikels. Jede Mutation läuft optimistisch: erst wird der Stand sofort
// umgestellt, dann der Server gefragt. Bei Erfolg ersetzt die Serverantwort
// den geratenen Stand, bei Fehlschlag wird der vorherige Stand vollständig
// wiederhergestellt. InteractionState ist nicht nebenläufigkeitsfest; pro
// Artikelansicht gehört genau eine Instanz in genau eine Goroutine.
type InteractionState struct {
	Liked         bool
	Saved         bool
	LikesCount    int
	CommentsCount int
	Comments      []models.CommentView
}

// ToggleLike stellt das Like sofort um und gleicht anschließend mit dem
// Server ab.
func (st *InteractionState) ToggleLike(ctx context.Context, api InteractionAPI, articleID, userID string) error {
	prevLiked, prevCount := st.Liked, st.LikesCount

	st.Liked = !prevLiked
	if st.Liked {
		st.LikesCount++
	} else if st.LikesCount > 0 {
		st.LikesCount--
	}

	liked, likes, err := api.AddLike(ctx, articleID, userID)
	if err != nil {
		st.Liked, st.LikesCount = prevLiked, prevCount
		return err
	}
	st.Liked = liked
	st.LikesCount = likes
	return nil
}

// ToggleSave stellt den Merkstatus sofort um und gleicht anschließend mit
// dem Server ab.
func (st *InteractionState) ToggleSave(ctx context.Context, api InteractionAPI, articleID, userID string) error {
	prev := st.Saved
	st.Saved = !prev

	saved, err := api.ToggleSaveArticle(ctx, articleID, userID)
	if err != nil {
		st.Saved = prev
		return err
	}
	st.Saved = saved
	return nil
}

// PostComment hängt den Kommentar sofort sichtbar an und ersetzt ihn nach
// der Serverantwort durch die endgültige Fassung. Schlägt der Request fehl,
// verschwindet der vorläufige Kommentar wieder.
func (st *InteractionState) PostComment(ctx context.Context, api InteractionAPI, articleID, userID, username, text string) error {
	tempID := fmt.Sprintf("temp_%d", time.Now().UnixNano())
	st.Comments = append(st.Comments, models.CommentView{
		Comment: models.Comment{
			ID:        tempID,
			ArticleID: articleID,
			Comment:   text,
			CreatedAt: time.Now(),
		},
		AuthorView: models.Author{ID: userID, Username: username},
	})
	st.CommentsCount++

	res, err := api.AddComment(ctx, articleID, userID, text)
	if err != nil {
		st.removeComment(tempID)
		st.CommentsCount--
		return err
	}
	for i := range st.Comments {
		if st.Comments[i].ID == tempID {
			st.Comments[i].ID = res.CommentID
			break
		}
	}
	st.CommentsCount = res.CommentsCount
	return nil
}

func (st *InteractionState) removeComment(id string) {
	for i := range st.Comments {
		if st.Comments[i].ID == id {
			st.Comments = append(st.Comments[:i], st.Comments[i+1:]...)
			return
		}
	}
}
