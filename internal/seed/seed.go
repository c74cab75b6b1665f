// Package seed provides helpers to create demo data for the board database.
// Development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"campusboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options controls the size and shape of the generated dataset.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// MaxDays spreads created_at timestamps over this many past days.
	MaxDays int
}

// Seeder builds domain entities and persists them.
type Seeder struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run populates the database: users, posts, comments, then the interaction
// rows with their denormalized counters.
func (s *Seeder) Run() error {
	log.Printf("Seeding %d users and %d posts...", s.opts.NumUsers, s.opts.NumPosts)

	if s.opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}

	users, err := s.createUsers()
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	posts, err := s.createPosts(users)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	comments, err := s.createComments(users, posts)
	if err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}
	log.Printf("created %d comments", len(comments))

	if err := s.createInteractions(users, posts, comments); err != nil {
		return fmt.Errorf("failed to create interactions: %w", err)
	}

	return s.reconcileCounters()
}

// ClearAll removes seeded data. Deletion order respects foreign keys.
func (s *Seeder) ClearAll() error {
	tables := []string{"comment_likes", "comments", "post_likes", "post_scraps", "posts", "users"}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) createUsers() ([]*models.User, error) {
	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		first := gofakeit.FirstName()
		last := gofakeit.LastName()
		user := &models.User{
			ID:        "usr_" + strings.ReplaceAll(gofakeit.UUID(), "-", "")[:24],
			Username:  strings.ToLower(fmt.Sprintf("%s%s%d", first[:1], last, i)),
			Nickname:  first + " " + last,
			Email:     fmt.Sprintf("%s.%s.%d@campus.example", strings.ToLower(first), strings.ToLower(last), i),
			CreatedAt: s.pastTime(),
		}
		user.UpdatedAt = user.CreatedAt
		users = append(users, user)
	}
	if err := s.db.CreateInBatches(users, 100).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Seeder) createPosts(users []*models.User) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, s.opts.NumPosts)
	for i := 0; i < s.opts.NumPosts; i++ {
		author := users[s.rng.Intn(len(users))]
		post := &models.Post{
			Title:     strings.TrimSuffix(gofakeit.Sentence(s.rng.Intn(6)+3), "."),
			Content:   gofakeit.Paragraph(1, 3, 8, "\n"),
			AuthorID:  author.ID,
			CreatedAt: s.pastTime(),
		}
		post.UpdatedAt = post.CreatedAt
		// Roughly a third of posts carry an image.
		if s.rng.Intn(3) == 0 {
			post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())
		}
		posts = append(posts, post)
	}
	if err := s.db.CreateInBatches(posts, 100).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Seeder) createComments(users []*models.User, posts []*models.Post) ([]*models.Comment, error) {
	var comments []*models.Comment
	for _, post := range posts {
		for i := 0; i < s.rng.Intn(6); i++ {
			author := users[s.rng.Intn(len(users))]
			comment := &models.Comment{
				PostID:    post.ID,
				AuthorID:  author.ID,
				Content:   gofakeit.Sentence(s.rng.Intn(12) + 3),
				CreatedAt: post.CreatedAt.Add(time.Duration(s.rng.Intn(72)) * time.Hour),
			}
			comment.UpdatedAt = comment.CreatedAt
			comments = append(comments, comment)
		}
	}
	if len(comments) == 0 {
		return comments, nil
	}
	if err := s.db.CreateInBatches(comments, 200).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// createInteractions writes like/scrap membership rows. Per-user-per-target
// uniqueness comes from picking users without replacement.
func (s *Seeder) createInteractions(users []*models.User, posts []*models.Post, comments []*models.Comment) error {
	var postLikes []*models.PostLike
	var postScraps []*models.PostScrap
	var commentLikes []*models.CommentLike

	for _, post := range posts {
		// Skewed like counts so the hot/best views have content: most posts
		// get a handful, a few get a crowd.
		n := s.rng.Intn(5)
		if s.rng.Intn(10) == 0 {
			n = s.rng.Intn(len(users))
		}
		for _, u := range s.pickUsers(users, n) {
			postLikes = append(postLikes, &models.PostLike{PostID: post.ID, UserID: u.ID})
		}
		for _, u := range s.pickUsers(users, s.rng.Intn(3)) {
			postScraps = append(postScraps, &models.PostScrap{PostID: post.ID, UserID: u.ID})
		}
	}
	for _, comment := range comments {
		for _, u := range s.pickUsers(users, s.rng.Intn(3)) {
			commentLikes = append(commentLikes, &models.CommentLike{CommentID: comment.ID, UserID: u.ID})
		}
	}

	if len(postLikes) > 0 {
		if err := s.db.CreateInBatches(postLikes, 500).Error; err != nil {
			return err
		}
	}
	if len(postScraps) > 0 {
		if err := s.db.CreateInBatches(postScraps, 500).Error; err != nil {
			return err
		}
	}
	if len(commentLikes) > 0 {
		if err := s.db.CreateInBatches(commentLikes, 500).Error; err != nil {
			return err
		}
	}
	log.Printf("created %d post likes, %d scraps, %d comment likes",
		len(postLikes), len(postScraps), len(commentLikes))
	return nil
}

// reconcileCounters sets each denormalized counter to the true row count, the
// invariant the interaction repository maintains at runtime.
func (s *Seeder) reconcileCounters() error {
	if err := s.db.Exec(`UPDATE posts SET likes_count =
		(SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id)`).Error; err != nil {
		return fmt.Errorf("reconciling post counters: %w", err)
	}
	if err := s.db.Exec(`UPDATE comments SET likes_count =
		(SELECT COUNT(*) FROM comment_likes WHERE comment_likes.comment_id = comments.id)`).Error; err != nil {
		return fmt.Errorf("reconciling comment counters: %w", err)
	}
	return nil
}

// pickUsers returns n distinct users.
func (s *Seeder) pickUsers(users []*models.User, n int) []*models.User {
	if n > len(users) {
		n = len(users)
	}
	picked := make([]*models.User, len(users))
	copy(picked, users)
	s.rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked[:n]
}

func (s *Seeder) pastTime() time.Time {
	daysBack := s.rng.Intn(s.opts.MaxDays)
	return time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour).
		Add(-time.Duration(s.rng.Intn(24)) * time.Hour).
		Add(-time.Duration(s.rng.Intn(60)) * time.Minute)
}
