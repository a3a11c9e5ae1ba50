package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"newsmentor/internal/model"
)

const (
	discussionCollection = "discussions"
	bookmarkCollection   = "bookmarks"
	quizCollection       = "quizResults"
)

// FirestoreStore implements the discussion, bookmark and quiz stores on a
// single Firestore client.
type FirestoreStore struct {
	client *firestore.Client
	now    func() time.Time
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client, now: time.Now}
}

func (s *FirestoreStore) SaveDiscussion(ctx context.Context, d *model.DiscussionSummary) error {
	ref, _, err := s.client.Collection(discussionCollection).Add(ctx, d)
	if err != nil {
		return fmt.Errorf("save discussion: %w", err)
	}
	d.ID = ref.ID
	return nil
}

func (s *FirestoreStore) RecentDiscussions(ctx context.Context, userID string, limit int) ([]model.DiscussionSummary, error) {
	iter := s.client.Collection(discussionCollection).
		Where("userId", "==", userID).
		OrderBy("timestamp", firestore.Desc).
		Limit(limit).
		Documents(ctx)

	summaries := []model.DiscussionSummary{}
	err := eachDoc(iter, func(doc *firestore.DocumentSnapshot) error {
		var d model.DiscussionSummary
		if err := doc.DataTo(&d); err != nil {
			return err
		}
		d.ID = doc.Ref.ID
		summaries = append(summaries, d)
		return nil
	})
	return summaries, err
}

// bookmarkDocID keys bookmarks by user and text so a second Create of the
// same pair fails with AlreadyExists.
func bookmarkDocID(userID, text string) string {
	sum := sha256.Sum256([]byte(userID + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func (s *FirestoreStore) Add(ctx context.Context, b *model.Bookmark) error {
	b.CreatedAt = s.now().UTC()
	ref := s.client.Collection(bookmarkCollection).Doc(bookmarkDocID(b.UserID, b.Text))

	if _, err := ref.Create(ctx, b); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrDuplicate
		}
		return err
	}
	b.ID = ref.ID
	return nil
}

func (s *FirestoreStore) List(ctx context.Context, userID string) ([]model.Bookmark, error) {
	iter := s.client.Collection(bookmarkCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)

	bookmarks := []model.Bookmark{}
	err := eachDoc(iter, func(doc *firestore.DocumentSnapshot) error {
		var b model.Bookmark
		if err := doc.DataTo(&b); err != nil {
			return err
		}
		b.ID = doc.Ref.ID
		bookmarks = append(bookmarks, b)
		return nil
	})
	return bookmarks, err
}

func (s *FirestoreStore) Find(ctx context.Context, userID, text string) (*model.Bookmark, error) {
	b, err := s.bookmark(ctx, bookmarkDocID(userID, text))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return b, err
}

func (s *FirestoreStore) Remove(ctx context.Context, userID, id string) error {
	b, err := s.bookmark(ctx, id)
	if err != nil {
		return err
	}
	if b.UserID != userID {
		return ErrNotFound
	}
	_, err = s.client.Collection(bookmarkCollection).Doc(id).Delete(ctx)
	return err
}

func (s *FirestoreStore) Count(ctx context.Context, userID string) (int, error) {
	iter := s.client.Collection(bookmarkCollection).
		Where("userId", "==", userID).
		Select().
		Documents(ctx)

	n := 0
	err := eachDoc(iter, func(*firestore.DocumentSnapshot) error {
		n++
		return nil
	})
	return n, err
}

func (s *FirestoreStore) bookmark(ctx context.Context, id string) (*model.Bookmark, error) {
	doc, err := s.client.Collection(bookmarkCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var b model.Bookmark
	if err := doc.DataTo(&b); err != nil {
		return nil, err
	}
	b.ID = doc.Ref.ID
	return &b, nil
}

func (s *FirestoreStore) SaveResult(ctx context.Context, result *model.QuizResult) error {
	result.CreatedAt = s.now().UTC()
	ref, _, err := s.client.Collection(quizCollection).Add(ctx, result)
	if err != nil {
		return err
	}
	result.ID = ref.ID
	return nil
}

func (s *FirestoreStore) Results(ctx context.Context, userID string) ([]model.QuizResult, error) {
	iter := s.client.Collection(quizCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)

	results := []model.QuizResult{}
	err := eachDoc(iter, func(doc *firestore.DocumentSnapshot) error {
		var q model.QuizResult
		if err := doc.DataTo(&q); err != nil {
			return err
		}
		q.ID = doc.Ref.ID
		results = append(results, q)
		return nil
	})
	return results, err
}

func eachDoc(iter *firestore.DocumentIterator, fn func(*firestore.DocumentSnapshot) error) error {
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
}
