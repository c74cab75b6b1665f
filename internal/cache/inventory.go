package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%s"
	PostKeyPrefix      = "post:%d"
	PostCommentsPrefix = "post:%d:comments"
	BoardPagePrefix    = "board:page:"
)

const (
	UserTTL         = 5 * time.Minute
	PostTTL         = 2 * time.Minute
	PostCommentsTTL = 1 * time.Minute
	BoardPageTTL    = 30 * time.Second
)

func UserKey(userID string) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func PostCommentsKey(postID uint) string {
	return fmt.Sprintf(PostCommentsPrefix, postID)
}

// BoardPageKey identifies one cached anonymous board page. Pages are keyed
// by the likes filter and the pagination window; viewer-specific pages are
// never cached.
func BoardPageKey(minLikes, limit, offset int) string {
	return fmt.Sprintf("%s%d:%d:%d", BoardPagePrefix, minLikes, limit, offset)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID string) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
	Invalidate(ctx, PostCommentsKey(postID))
}

// InvalidateBoardPages drops every cached board page. Pages embed like and
// comment counts, so any post mutation touches an unknown subset of them.
func InvalidateBoardPages(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, BoardPagePrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
