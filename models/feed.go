package models

import "time"

// Post is a feed entry written by a member.
type Post struct {
	ID           string    `bson:"id" json:"id"`
	AuthorID     string    `bson:"authorId" json:"authorId"`
	Text         string    `bson:"text" json:"text"`
	ImageURL     string    `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ServiceID    string    `bson:"serviceId,omitempty" json:"serviceId,omitempty"`
	LikeCount    int       `bson:"likeCount" json:"likeCount"`
	CommentCount int       `bson:"commentCount" json:"commentCount"`
	LikedBy      []string  `bson:"likedBy" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// PostView is a post decorated for the requesting member.
type PostView struct {
	Post
	Author      PublicProfile `json:"author"`
	LikedByMe   bool          `json:"likedByMe"`
	ServiceName string        `json:"serviceName,omitempty"`
}

type Comment struct {
	ID        string    `bson:"id" json:"id"`
	PostID    string    `bson:"postId" json:"postId"`
	AuthorID  string    `bson:"authorId" json:"authorId"`
	Text      string    `bson:"text" json:"text"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

type CreatePostRequest struct {
	Text      string `json:"text" binding:"required"`
	ImageURL  string `json:"imageUrl"`
	ServiceID string `json:"serviceId"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// FeedPage is one page of a cursor-paginated feed. NextBefore is empty on the last page.
type FeedPage struct {
	Posts      []PostView `json:"posts"`
	NextBefore string     `json:"nextBefore,omitempty"`
}
