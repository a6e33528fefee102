package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	PostKeyPrefix     = "post:%d"
	PostSlugKeyPrefix = "post:%s:%s"
	PostsListPrefix   = "posts:list:%s"
	CategoryKeyPrefix = "category:%s"
	CommentTreePrefix = "post:%d:comments"
)

const (
	UserTTL        = 5 * time.Minute
	PostTTL        = 30 * time.Minute
	ListTTL        = 2 * time.Minute
	CategoryTTL    = 10 * time.Minute
	CommentTreeTTL = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// PostSlugKey keys a published post by its date and slug. The date string is
// the YYYY-MM-DD publish day, matching the permalink.
func PostSlugKey(day, slug string) string {
	return fmt.Sprintf(PostSlugKeyPrefix, day, slug)
}

// PostsListKey keys one page of a post listing. The qualifier encodes the
// filter set and page, e.g. "category:go:p2" or "index:p1".
func PostsListKey(qualifier string) string {
	return fmt.Sprintf(PostsListPrefix, qualifier)
}

func CategoryKey(slug string) string {
	return fmt.Sprintf(CategoryKeyPrefix, slug)
}

func CommentTreeKey(postID uint) string {
	return fmt.Sprintf(CommentTreePrefix, postID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
	Invalidate(ctx, CommentTreeKey(postID))
}

// InvalidatePostsList drops every cached listing page. Listing keys share the
// posts:list: prefix so a SCAN walk covers all filter combinations.
func InvalidatePostsList(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, fmt.Sprintf(PostsListPrefix, "*"), 0).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
