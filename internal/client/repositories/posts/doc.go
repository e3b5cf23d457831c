// Package posts provides the Postgres persistence layer for feed posts.
//
// Feed and author listings are ordered by created_at descending. Listings
// join the author's current name and avatar from "users" and fall back to
// the snapshot stored on the post row when the author row is missing.
package posts
