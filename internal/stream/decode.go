package stream

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sayaka-go/sayaka/internal/misskey"
)

// wireNote mirrors the JSON shape a Misskey streaming "note" frame
// body carries; only the fields the renderer needs are decoded.
type wireNote struct {
	ID          string     `json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	Text        string     `json:"text"`
	CW          string     `json:"cw"`
	User        wireUser   `json:"user"`
	Files       []wireFile `json:"files"`
	Renote      *wireNote  `json:"renote"`
	RenoteCount int        `json:"renoteCount"`
	Tags        []string   `json:"tags"`
}

type wireUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Host     string `json:"host"`
	Name     string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	IsBot    bool   `json:"isBot"`
	IsCat    bool   `json:"isCat"`
}

type wireFile struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Type        string `json:"type"`
	IsSensitive bool   `json:"isSensitive"`
	Blurhash    string `json:"blurhash"`
	Name        string `json:"name"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// decodeNote unwraps a "note" frame into the internal Note model.
// Frames of any other type return (nil, nil): not every streaming
// frame is a note (pings, ack envelopes, notifications).
func decodeNote(fr Frame) (*misskey.Note, error) {
	if fr.Type != "note" && fr.Type != "channel" {
		return nil, nil
	}
	if fr.Type == "channel" {
		var inner Frame
		if err := json.Unmarshal(fr.Body, &inner); err != nil {
			return nil, fmt.Errorf("stream: decode channel body: %w", err)
		}
		if inner.Type != "note" {
			return nil, nil
		}
		fr = inner
	}
	var wn wireNote
	if err := json.Unmarshal(fr.Body, &wn); err != nil {
		return nil, fmt.Errorf("stream: decode note body: %w", err)
	}
	n := toNote(wn)
	return &n, nil
}

func toNote(wn wireNote) misskey.Note {
	n := misskey.Note{
		ID:          wn.ID,
		CreatedAt:   wn.CreatedAt,
		Text:        wn.Text,
		CW:          wn.CW,
		RenoteCount: wn.RenoteCount,
		Tags:        wn.Tags,
		Author: misskey.User{
			ID:          wn.User.ID,
			Username:    wn.User.Username,
			Host:        wn.User.Host,
			DisplayName: wn.User.Name,
			AvatarURL:   wn.User.AvatarURL,
			IsBot:       wn.User.IsBot,
			IsCat:       wn.User.IsCat,
		},
	}
	for _, f := range wn.Files {
		n.Files = append(n.Files, misskey.Attachment{
			ID: f.ID, URL: f.URL, ThumbURL: f.ThumbnailURL, Type: f.Type,
			IsSensitive: f.IsSensitive, Blurhash: f.Blurhash, Name: f.Name,
			Width: f.Width, Height: f.Height,
		})
	}
	if wn.Renote != nil {
		rn := toNote(*wn.Renote)
		n.Renote = &rn
		n.IsQuote = wn.Text != ""
	}
	return n
}
