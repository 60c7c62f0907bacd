// Package bottest provides an in-memory bot.Client for tests.
package bottest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Sent is one recorded outbound call.
type Sent struct {
	ChannelID string
	MessageID string // set for edits
	Content   string
	Embeds    []*discordgo.MessageEmbed
}

// Client records outbound calls and answers permission lookups from a map.
type Client struct {
	ID      string
	Latency time.Duration

	// Perms maps guildID/channelID/userID to permission bits.
	Perms   map[string]int64
	PermErr error
	SendErr error

	mu        sync.Mutex
	sent      []Sent
	edits     []Sent
	permCalls int
	nextID    int
}

func New(selfID string) *Client {
	return &Client{ID: selfID, Perms: map[string]int64{}}
}

func PermKey(guildID, channelID, userID string) string {
	return guildID + "/" + channelID + "/" + userID
}

func (c *Client) SelfID() string { return c.ID }

func (c *Client) HeartbeatLatency() time.Duration { return c.Latency }

func (c *Client) SendMessage(_ context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendErr != nil {
		return nil, c.SendErr
	}
	c.nextID++
	id := fmt.Sprintf("m%d", c.nextID)
	c.sent = append(c.sent, Sent{ChannelID: channelID, MessageID: id, Content: msg.Content, Embeds: msg.Embeds})
	return &discordgo.Message{ID: id, ChannelID: channelID, Content: msg.Content, Timestamp: time.Now()}, nil
}

func (c *Client) EditMessage(_ context.Context, channelID, messageID string, edit *discordgo.MessageEdit) (*discordgo.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendErr != nil {
		return nil, c.SendErr
	}
	s := Sent{ChannelID: channelID, MessageID: messageID}
	if edit.Content != nil {
		s.Content = *edit.Content
	}
	if edit.Embeds != nil {
		s.Embeds = *edit.Embeds
	}
	c.edits = append(c.edits, s)
	return &discordgo.Message{ID: messageID, ChannelID: channelID, Content: s.Content}, nil
}

func (c *Client) MemberPermissions(_ context.Context, guildID, channelID, userID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.permCalls++
	if c.PermErr != nil {
		return 0, c.PermErr
	}
	return c.Perms[PermKey(guildID, channelID, userID)], nil
}

func (c *Client) Sent() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.sent...)
}

func (c *Client) Edits() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.edits...)
}

func (c *Client) PermissionCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.permCalls
}
