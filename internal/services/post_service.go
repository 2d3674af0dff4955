package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Dias221467/Veritas_Network/internal/jobs"
	"github.com/Dias221467/Veritas_Network/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostStore is the content storage contract for posts, verdicts, likes and
// comments.
type PostStore interface {
	CreatePost(ctx context.Context, post *models.Post) (*models.Post, error)
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	ListUserPosts(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error)
	UpdateVerdict(ctx context.Context, postID primitive.ObjectID, verdict models.Verdict) error
	LikePost(ctx context.Context, postID, userID primitive.ObjectID) (bool, error)
	UnlikePost(ctx context.Context, postID, userID primitive.ObjectID) (bool, error)
	AddComment(ctx context.Context, postID, userID primitive.ObjectID, text string) (primitive.ObjectID, error)
	DeleteComment(ctx context.Context, postID, commentID, userID primitive.ObjectID) (bool, error)
}

// PostService creates posts and coordinates the moderation pipeline around
// them. A new post is persisted and answered immediately; credibility
// analysis runs as a deferred task and reconciles its verdict onto the post
// afterwards. Two analysis paths may race for the same post (the deferred
// task and the read-time backfill); that race is benign, last write wins.
// The in-flight set only exists to avoid paying for duplicate classifier
// calls.
type PostService struct {
	store      PostStore
	classifier Classifier
	runner     *jobs.Runner

	// trustClientVerdicts accepts a caller-supplied verdict on create,
	// bypassing analysis entirely. Policy decision, off by default.
	trustClientVerdicts bool

	mu       sync.Mutex
	inflight map[primitive.ObjectID]struct{}
}

// NewPostService creates a new PostService.
func NewPostService(store PostStore, classifier Classifier, runner *jobs.Runner, trustClientVerdicts bool) *PostService {
	return &PostService{
		store:               store,
		classifier:          classifier,
		runner:              runner,
		trustClientVerdicts: trustClientVerdicts,
		inflight:            make(map[primitive.ObjectID]struct{}),
	}
}

// CreatePost persists the post and returns it immediately. When no trusted
// client verdict applies, the post starts Pending and analysis is scheduled
// to run after this call returns; its result is only observable on a later
// read.
func (s *PostService) CreatePost(ctx context.Context, userID, content, mediaURL string, clientVerdict *models.Verdict) (*models.Post, error) {
	authorID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}
	if strings.TrimSpace(content) == "" && mediaURL == "" {
		return nil, fmt.Errorf("post must have content or media")
	}

	verdict := models.PendingVerdict()
	if clientVerdict != nil && s.trustClientVerdicts {
		verdict = NormalizeClientVerdict(*clientVerdict)
	}

	post := &models.Post{
		UserID:   authorID,
		Content:  content,
		MediaURL: mediaURL,
		AI:       verdict,
	}

	created, err := s.store.CreatePost(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %v", err)
	}

	if created.AI.Tag == models.TagPending {
		s.scheduleAnalysis(created.ID, content, mediaURL)
	}

	logrus.WithFields(logrus.Fields{
		"postID": created.ID.Hex(),
		"userID": userID,
		"tag":    created.AI.Tag,
	}).Info("Post created")
	return created, nil
}

// scheduleAnalysis submits the deferred moderation task. All failures are
// swallowed inside the task: the triggering request has already completed, so
// there is nobody left to report them to. The post simply stays Pending.
func (s *PostService) scheduleAnalysis(postID primitive.ObjectID, content, mediaURL string) {
	if !s.beginAnalysis(postID) {
		return
	}
	s.runner.Submit("post-analysis", func(ctx context.Context) {
		defer s.endAnalysis(postID)

		verdict := AnalyzePost(ctx, s.classifier, content, mediaURL)
		if err := s.store.UpdateVerdict(ctx, postID, verdict); err != nil {
			logrus.WithFields(logrus.Fields{
				"postID": postID.Hex(),
				"error":  err,
			}).Error("Failed to write post verdict")
			return
		}
		logrus.WithFields(logrus.Fields{
			"postID": postID.Hex(),
			"tag":    verdict.Tag,
		}).Info("Post analysis completed")
	})
}

// ListUserPosts returns the user's posts, newest first, eagerly re-running
// analysis for any post still Pending. The backfill may race an in-flight
// deferred task; whichever verdict lands last is authoritative.
func (s *PostService) ListUserPosts(ctx context.Context, userID string) ([]models.Post, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}

	posts, err := s.store.ListUserPosts(ctx, id)
	if err != nil {
		return nil, err
	}

	for i := range posts {
		if posts[i].AI.Tag != models.TagPending {
			continue
		}
		if !s.beginAnalysis(posts[i].ID) {
			// Analysis already running for this post; leave it Pending.
			continue
		}
		verdict := AnalyzePost(ctx, s.classifier, posts[i].Content, posts[i].MediaURL)
		if err := s.store.UpdateVerdict(ctx, posts[i].ID, verdict); err != nil {
			logrus.WithFields(logrus.Fields{
				"postID": posts[i].ID.Hex(),
				"error":  err,
			}).Warn("Backfill verdict write failed")
		} else {
			posts[i].AI = verdict
		}
		s.endAnalysis(posts[i].ID)
	}

	return posts, nil
}

// GetPost fetches a single post. Returns (nil, nil) when missing.
func (s *PostService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	id, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID: %v", err)
	}
	return s.store.GetPostByID(ctx, id)
}

// UpdatePostAI replaces the post's verdict. Idempotent, last write wins; no
// field-level merging across writers.
func (s *PostService) UpdatePostAI(ctx context.Context, postID string, verdict models.Verdict) error {
	id, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("invalid post ID: %v", err)
	}
	return s.store.UpdateVerdict(ctx, id, verdict)
}

// LikePost adds the user's like. Returns false when the user already liked
// the post; a repeated like never double-counts.
func (s *PostService) LikePost(ctx context.Context, postID, userID string) (bool, error) {
	pid, uid, err := parsePostUser(postID, userID)
	if err != nil {
		return false, err
	}
	return s.store.LikePost(ctx, pid, uid)
}

// UnlikePost removes the user's like, symmetric to LikePost.
func (s *PostService) UnlikePost(ctx context.Context, postID, userID string) (bool, error) {
	pid, uid, err := parsePostUser(postID, userID)
	if err != nil {
		return false, err
	}
	return s.store.UnlikePost(ctx, pid, uid)
}

// AddComment appends a comment and returns its generated ID.
func (s *PostService) AddComment(ctx context.Context, postID, userID, text string) (primitive.ObjectID, error) {
	pid, uid, err := parsePostUser(postID, userID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return primitive.NilObjectID, fmt.Errorf("comment text required")
	}

	commentID, err := s.store.AddComment(ctx, pid, uid, text)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if commentID.IsZero() {
		return primitive.NilObjectID, fmt.Errorf("post not found")
	}
	return commentID, nil
}

// DeleteComment removes a comment when the requesting user authored it.
// Returns false when the post, the comment or the authorship does not match.
func (s *PostService) DeleteComment(ctx context.Context, postID, commentID, userID string) (bool, error) {
	pid, uid, err := parsePostUser(postID, userID)
	if err != nil {
		return false, err
	}
	cid, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return false, fmt.Errorf("invalid comment ID: %v", err)
	}
	return s.store.DeleteComment(ctx, pid, cid, uid)
}

func (s *PostService) beginAnalysis(postID primitive.ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, running := s.inflight[postID]; running {
		return false
	}
	s.inflight[postID] = struct{}{}
	return true
}

func (s *PostService) endAnalysis(postID primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, postID)
}

func parsePostUser(postID, userID string) (primitive.ObjectID, primitive.ObjectID, error) {
	pid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, fmt.Errorf("invalid post ID: %v", err)
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, fmt.Errorf("invalid user ID: %v", err)
	}
	return pid, uid, nil
}
