package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix     = "post:%d"
	CommentsKeyPrefix = "post:%d:comments"
	PublishedListKey  = "posts:published"
)

const (
	PostTTL     = 30 * time.Minute
	CommentsTTL = 5 * time.Minute
	ListTTL     = 1 * time.Minute
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func CommentsKey(postID uint) string {
	return fmt.Sprintf(CommentsKeyPrefix, postID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
	Invalidate(ctx, CommentsKey(postID))
}

func InvalidatePublishedList(ctx context.Context) {
	Invalidate(ctx, PublishedListKey)
}
