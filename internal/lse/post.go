// Package lse parses share-chat pages from the London South East forum.
package lse

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
)

// Opinion tags emitted by the site itself, distinct from the lexical
// sentiment classifier's output.
var Opinions = []string{
	"No Opinion", "Strong Buy", "Weak Buy", "Buy", "Hold", "Sell", "Weak Sell", "Strong Sell",
}

// KnownOpinion reports whether tag is one of the site's opinion tags
func KnownOpinion(tag string) bool {
	return slices.Contains(Opinions, tag)
}

// Post is a single share-chat message
type Post struct {
	Username string `json:"username"`
	Ticker   string `json:"ticker"`
	Price    string `json:"price"`
	Opinion  string `json:"opinion,omitempty"`
	Date     string `json:"date"`
	Title    string `json:"title"`
	Text     string `json:"text"`
}

// Fingerprint returns the post's dedup identity: a hash over date, username,
// title, and text. Ticker and price are deliberately excluded, so the same
// message seen via a profile page and a ticker page collides.
func (p *Post) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(p.Date))
	h.Write([]byte{0})
	h.Write([]byte(p.Username))
	h.Write([]byte{0})
	h.Write([]byte(p.Title))
	h.Write([]byte{0})
	h.Write([]byte(p.Text))
	return hex.EncodeToString(h.Sum(nil))
}
