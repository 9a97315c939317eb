// Package misskey holds the wire-level note/user/attachment model the
// streaming client decodes notes into, ahead of rendering.
package misskey

import "time"

// User is the subset of a Misskey account record the client displays.
type User struct {
	ID          string
	Username    string
	Host        string // empty for local users
	DisplayName string
	AvatarURL   string
	IsBot       bool
	IsCat       bool
}

// Acct renders the user as "@name" or "@name@host" for remote users.
func (u User) Acct() string {
	if u.Host == "" {
		return "@" + u.Username
	}
	return "@" + u.Username + "@" + u.Host
}

// Visibility mirrors Misskey's note visibility enum.
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityHome
	VisibilityFollowers
	VisibilitySpecified
)

// Attachment is one drive file attached to a note.
type Attachment struct {
	ID         string
	URL        string
	ThumbURL   string
	Type       string // MIME type
	IsSensitive bool
	Blurhash   string
	Name       string
	Width      int // declared pixel dimensions, for sizing a blurhash placeholder
	Height     int
}

// Note is one timeline/streaming note event, already unwrapped from its
// transport envelope.
type Note struct {
	ID          string
	CreatedAt   time.Time
	Author      User
	Text        string // raw MFM source
	CW          string // content-warning summary text, empty if none
	Visibility  Visibility
	Files       []Attachment
	Renote      *Note // non-nil for a (quote-)renote
	IsQuote     bool  // true when Renote is set AND Text is non-empty
	RenoteCount int
	RepliesTo   *Note
	ReactionMap map[string]int
	MentionedUserIDs []string
	Tags        []string
	URL         string
}

// IsPureRenote reports whether this note is a bare boost with no added
// commentary.
func (n Note) IsPureRenote() bool {
	return n.Renote != nil && !n.IsQuote && n.Text == ""
}
