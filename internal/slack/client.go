// Package slack wraps the Slack Web API behind the small surface the
// pairing pipeline needs: member listing, channel posts, and direct
// messages. The rest of the pipeline stays platform-agnostic.
package slack

import (
	"context"
	"fmt"
	"strings"

	slackapi "github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/systemdevart/random-coffee/internal/domain"
)

const pageLimit = 200

type Client struct {
	api *slackapi.Client
	log *zap.Logger
}

// New builds a client and verifies the token with an auth.test call, so an
// invalid token fails at startup rather than at the first scheduled run.
func New(token string, log *zap.Logger) (*Client, error) {
	api := slackapi.New(token)
	auth, err := api.AuthTest()
	if err != nil {
		return nil, fmt.Errorf("slack auth: %w", err)
	}
	log.Info("slack auth ok",
		zap.String("team", auth.Team),
		zap.String("bot_user", auth.User),
	)
	return &Client{api: api, log: log}, nil
}

// ListMembers resolves the channel and returns every member's profile,
// flags included. Filtering is the caller's concern.
func (c *Client) ListMembers(ctx context.Context, channel string) ([]domain.Member, error) {
	channelID, err := c.resolveChannel(ctx, channel)
	if err != nil {
		return nil, err
	}

	ids, err := c.memberIDs(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("list members of %s: %w", channel, err)
	}
	if len(ids) == 0 {
		return nil, &domain.NotFoundError{Kind: "members", Name: channel}
	}

	members := make([]domain.Member, 0, len(ids))
	for _, id := range ids {
		user, err := c.api.GetUserInfoContext(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("user info %s: %w", id, err)
		}
		name := user.RealName
		if name == "" {
			name = user.Name
		}
		members = append(members, domain.Member{
			ID:      user.ID,
			Name:    name,
			IsBot:   user.IsBot,
			IsAdmin: user.IsAdmin,
			Deleted: user.Deleted,
		})
	}
	c.log.Info("fetched channel members",
		zap.String("channel", channel),
		zap.Int("count", len(members)),
	)
	return members, nil
}

// PostMessage posts text to a channel (name or ID).
func (c *Client) PostMessage(ctx context.Context, channel, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channel, slackapi.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("post to %s: %w", channel, err)
	}
	return nil
}

// SendDirectMessage delivers text to a recipient given as "@handle" or a
// user/channel ID. chat.postMessage accepts either form directly.
func (c *Client) SendDirectMessage(ctx context.Context, recipient, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, recipient, slackapi.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("dm %s: %w", recipient, err)
	}
	return nil
}

// resolveChannel maps a channel name (with or without "#") to its ID by
// walking the paginated conversations list. A value that is already an ID
// still resolves, since Slack channel names never collide with IDs.
func (c *Client) resolveChannel(ctx context.Context, channel string) (string, error) {
	name := strings.TrimPrefix(channel, "#")

	params := &slackapi.GetConversationsParameters{
		Types: []string{"public_channel", "private_channel"},
		Limit: pageLimit,
	}
	for {
		channels, cursor, err := c.api.GetConversationsContext(ctx, params)
		if err != nil {
			return "", fmt.Errorf("list conversations: %w", err)
		}
		for _, ch := range channels {
			if ch.Name == name || ch.ID == name {
				return ch.ID, nil
			}
		}
		if cursor == "" {
			return "", &domain.NotFoundError{Kind: "channel", Name: channel}
		}
		params.Cursor = cursor
	}
}

// memberIDs collects the channel's member IDs across pagination cursors.
func (c *Client) memberIDs(ctx context.Context, channelID string) ([]string, error) {
	var ids []string
	params := &slackapi.GetUsersInConversationParameters{
		ChannelID: channelID,
		Limit:     pageLimit,
	}
	for {
		page, cursor, err := c.api.GetUsersInConversationContext(ctx, params)
		if err != nil {
			return nil, err
		}
		ids = append(ids, page...)
		if cursor == "" {
			return ids, nil
		}
		params.Cursor = cursor
	}
}
