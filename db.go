package main

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"chirp/feed"
)

//go:embed schema.sql
var schema string

const postColumns = `
	post.post_id, post.text, post.image_url, post.created_at,
	post.reply_count, post.repost_count, post.like_count,
	post.liked, post.reposted, post.bookmarked, post.parent_id,
	user.user_id, user.handle, user.name, user.avatar_url, user.verified, user.bio,
	user.followers_count, user.following_count`

const userColumns = `user_id, handle, name, avatar_url, verified, bio, followers_count, following_count`

// sqliteStore keeps the feed in SQLite. The default DSN is in-memory, so
// nothing outlives the process. Only one connection is opened, which both
// keeps the in-memory database alive and serializes toggles.
type sqliteStore struct {
	db *sql.DB
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

func newSQLiteStore(dsn string, seed *Seed) (*sqliteStore, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	s := &sqliteStore{db: db}
	if err := s.init(context.Background(), seed); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *sqliteStore) init(ctx context.Context, seed *Seed) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	for _, u := range seed.Users {
		_, err := tx.ExecContext(ctx, "INSERT INTO user ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			u.ID, u.Handle, u.Name, u.AvatarURL, u.Verified, u.Bio, u.FollowersCount, u.FollowingCount)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}
	seq := 0
	for i, p := range seed.Posts {
		if err := insertPost(ctx, tx, p, i); err != nil {
			return err
		}
		if p.Bookmarked {
			seq++
			if _, err := tx.ExecContext(ctx, "INSERT INTO bookmark (post_id, seq) VALUES (?, ?)", p.ID, seq); err != nil {
				return fmt.Errorf("seed bookmark %s: %w", p.ID, err)
			}
		}
	}
	for _, n := range seed.Notifications {
		postID := ""
		if n.Post != nil {
			postID = n.Post.ID
		}
		_, err := tx.ExecContext(ctx, "INSERT INTO notification (notification_id, kind, actor_id, post_id, created_at) VALUES (?, ?, ?, ?, ?)",
			n.ID, string(n.Kind), n.Actor.ID, postID, n.CreatedAt)
		if err != nil {
			return fmt.Errorf("seed notification %s: %w", n.ID, err)
		}
	}
	for _, t := range seed.Trending {
		_, err := tx.ExecContext(ctx, "INSERT INTO trend (trend_id, name, category, post_count) VALUES (?, ?, ?, ?)",
			t.ID, t.Name, t.Category, t.PostCount)
		if err != nil {
			return fmt.Errorf("seed trend %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

func insertPost(ctx context.Context, tx *sql.Tx, p feed.Post, position int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO post (post_id, position, author_id, text, image_url, created_at,
			reply_count, repost_count, like_count, liked, reposted, bookmarked, parent_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, position, p.Author.ID, p.Text, p.ImageURL, p.CreatedAt,
		p.ReplyCount, p.RepostCount, p.LikeCount, p.Liked, p.Reposted, p.Bookmarked, p.ParentID)
	if err != nil {
		return fmt.Errorf("insert post %s: %w", p.ID, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (feed.Post, error) {
	var p feed.Post
	a := &p.Author
	err := row.Scan(&p.ID, &p.Text, &p.ImageURL, &p.CreatedAt,
		&p.ReplyCount, &p.RepostCount, &p.LikeCount,
		&p.Liked, &p.Reposted, &p.Bookmarked, &p.ParentID,
		&a.ID, &a.Handle, &a.Name, &a.AvatarURL, &a.Verified, &a.Bio,
		&a.FollowersCount, &a.FollowingCount)
	return p, err
}

func scanUser(row scanner) (feed.User, error) {
	var u feed.User
	err := row.Scan(&u.ID, &u.Handle, &u.Name, &u.AvatarURL, &u.Verified, &u.Bio,
		&u.FollowersCount, &u.FollowingCount)
	return u, err
}

func (s *sqliteStore) queryPosts(ctx context.Context, query string, args ...any) ([]feed.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []feed.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *sqliteStore) Users(ctx context.Context) ([]feed.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM user ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []feed.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *sqliteStore) UserByHandle(ctx context.Context, handle string) (feed.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM user WHERE handle = ?", handle))
	if errors.Is(err, sql.ErrNoRows) {
		return feed.User{}, fmt.Errorf("user %q: %w", handle, feed.ErrNotFound)
	}
	return u, err
}

func (s *sqliteStore) Posts(ctx context.Context) ([]feed.Post, error) {
	return s.queryPosts(ctx, `
		SELECT`+postColumns+`
		FROM post JOIN user ON post.author_id = user.user_id
		ORDER BY post.position`)
}

func (s *sqliteStore) PostByID(ctx context.Context, id string) (feed.Post, error) {
	return getPost(ctx, s.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getPost(ctx context.Context, q queryRower, id string) (feed.Post, error) {
	p, err := scanPost(q.QueryRowContext(ctx, `
		SELECT`+postColumns+`
		FROM post JOIN user ON post.author_id = user.user_id
		WHERE post.post_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return feed.Post{}, fmt.Errorf("post %q: %w", id, feed.ErrNotFound)
	}
	return p, err
}

// Engage runs the toggle as read, transition, write inside one transaction.
func (s *sqliteStore) Engage(ctx context.Context, id string, e feed.Engagement) (feed.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return feed.Post{}, err
	}
	defer tx.Rollback()

	p, err := getPost(ctx, tx, id)
	if err != nil {
		return feed.Post{}, err
	}
	flag := p.Engage(e)

	switch e {
	case feed.Like:
		_, err = tx.ExecContext(ctx, "UPDATE post SET liked = ?, like_count = ? WHERE post_id = ?", p.Liked, p.LikeCount, id)
	case feed.Repost:
		_, err = tx.ExecContext(ctx, "UPDATE post SET reposted = ?, repost_count = ? WHERE post_id = ?", p.Reposted, p.RepostCount, id)
	case feed.Bookmark:
		_, err = tx.ExecContext(ctx, "UPDATE post SET bookmarked = ? WHERE post_id = ?", p.Bookmarked, id)
		if err == nil {
			err = applyBookmark(ctx, tx, id, flag)
		}
	default:
		err = fmt.Errorf("unknown engagement %v", e)
	}
	if err != nil {
		return feed.Post{}, err
	}
	return p, tx.Commit()
}

func applyBookmark(ctx context.Context, tx *sql.Tx, id string, bookmarked bool) error {
	if !bookmarked {
		_, err := tx.ExecContext(ctx, "DELETE FROM bookmark WHERE post_id = ?", id)
		return err
	}
	_, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO bookmark (post_id, seq)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM bookmark))`, id)
	return err
}

// AddPost puts p at the top of the timeline.
func (s *sqliteStore) AddPost(ctx context.Context, p feed.Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var top int
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MIN(position), 0) FROM post").Scan(&top); err != nil {
		return err
	}
	if err := insertPost(ctx, tx, p, top-1); err != nil {
		return err
	}
	if p.Bookmarked {
		if err := applyBookmark(ctx, tx, p.ID, true); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) Bookmarks(ctx context.Context) ([]feed.Post, error) {
	return s.queryPosts(ctx, `
		SELECT`+postColumns+`
		FROM bookmark
		JOIN post ON bookmark.post_id = post.post_id
		JOIN user ON post.author_id = user.user_id
		ORDER BY bookmark.seq`)
}

func (s *sqliteStore) Notifications(ctx context.Context) ([]feed.Notification, error) {
	type row struct {
		n       feed.Notification
		actorID string
		postID  string
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT notification_id, kind, actor_id, post_id, created_at FROM notification ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	var pending []row
	for rows.Next() {
		var r row
		var kind string
		if err := rows.Scan(&r.n.ID, &kind, &r.actorID, &r.postID, &r.n.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		r.n.Kind = feed.NotificationKind(kind)
		pending = append(pending, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// The single connection is free again, so references can be resolved.
	out := make([]feed.Notification, 0, len(pending))
	for _, r := range pending {
		actor, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM user WHERE user_id = ?", r.actorID))
		if err != nil {
			return nil, fmt.Errorf("notification %s actor: %w", r.n.ID, err)
		}
		r.n.Actor = actor
		if r.postID != "" {
			p, err := s.PostByID(ctx, r.postID)
			if err != nil {
				return nil, fmt.Errorf("notification %s: %w", r.n.ID, err)
			}
			r.n.Post = &p
		}
		out = append(out, r.n)
	}
	return out, nil
}

func (s *sqliteStore) Trending(ctx context.Context) ([]feed.TrendingTopic, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT trend_id, name, category, post_count FROM trend ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []feed.TrendingTopic
	for rows.Next() {
		var t feed.TrendingTopic
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.PostCount); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func (s *sqliteStore) IsFollowing(ctx context.Context, handle string) (bool, error) {
	var followed bool
	err := s.db.QueryRowContext(ctx, "SELECT followed FROM user WHERE handle = ?", handle).Scan(&followed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("user %q: %w", handle, feed.ErrNotFound)
	}
	return followed, err
}

// ToggleFollow flips the follow flag only; follower counts are left alone.
func (s *sqliteStore) ToggleFollow(ctx context.Context, handle string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE user SET followed = 1 - followed WHERE handle = ?", handle)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, fmt.Errorf("user %q: %w", handle, feed.ErrNotFound)
	}
	return s.IsFollowing(ctx, handle)
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
