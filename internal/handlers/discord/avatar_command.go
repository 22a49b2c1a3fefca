package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	avatarDomain "github.com/KirkDiggler/avatar-forge/internal/domain/avatar"
	"github.com/KirkDiggler/avatar-forge/internal/domain/cosmetic"
	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
	avatarService "github.com/KirkDiggler/avatar-forge/internal/services/avatar"
)

// variationSeparator joins item and key in variation picker values
const variationSeparator = "|"

var channelNames = map[avatarDomain.Channel]string{
	avatarDomain.ChannelRed:   "Red",
	avatarDomain.ChannelGreen: "Green",
	avatarDomain.ChannelBlue:  "Blue",
}

// Execute runs a parsed /avatar command and builds the response
func (h *Handler) Execute(ctx context.Context, req *CommandRequest) (*discordgo.InteractionResponse, error) {
	if req.UserID == "" {
		return nil, apperr.InvalidArgument("could not tell who sent the command")
	}
	if err := h.checkRate(ctx, req.UserID); err != nil {
		return nil, err
	}

	switch req.Subcommand {
	case SubcommandShow:
		a, err := h.avatarService.Get(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		return h.avatarMessage(ctx, a, &viewOptions{public: req.Public})

	case SubcommandName:
		a, err := h.avatarService.SetName(ctx, req.UserID, req.Text)
		if err != nil {
			return nil, err
		}
		note := "Name cleared"
		if req.Text != "" {
			note = fmt.Sprintf("Name set to %s", req.Text)
		}
		return h.avatarMessage(ctx, a, &viewOptions{note: note})

	case SubcommandColor:
		channel := avatarDomain.Channel(req.Channel)
		a, err := h.avatarService.SetColor(ctx, req.UserID, channel, req.Value)
		if err != nil {
			return nil, err
		}
		note := fmt.Sprintf("%s set to %d", channelNames[channel], channelValue(a.Character.Color, channel))
		return h.avatarMessage(ctx, a, &viewOptions{note: note})

	case SubcommandToggle:
		a, err := h.toggle(ctx, req.UserID, req.Category, req.Item)
		if err != nil {
			return nil, err
		}
		return h.avatarMessage(ctx, a, &viewOptions{
			note:   h.toggleNote(a, req.Category, req.Item),
			picker: req.Category,
		})

	case SubcommandVariation:
		a, err := h.avatarService.ChooseVariation(ctx, req.UserID, req.Item, req.Key)
		if err != nil {
			return nil, err
		}
		cat, _, _ := h.avatarService.Catalog().FindVariationItem(req.Item)
		return h.avatarMessage(ctx, a, &viewOptions{
			note:   h.variationNote(req.Item, req.Key),
			picker: cat.ID,
		})

	case SubcommandItems:
		if _, err := h.avatarService.Catalog().Category(req.Category); err != nil {
			return nil, err
		}
		a, err := h.avatarService.Get(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		return h.avatarMessage(ctx, a, &viewOptions{picker: req.Category})

	case SubcommandDone:
		err := h.avatarService.End(ctx, req.UserID)
		if err != nil && !apperr.IsNotFound(err) {
			return nil, err
		}
		content := "Your avatar is saved. Run /avatar show to pick up where you left off."
		if err != nil {
			content = "You have no avatar open."
		}
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		}, nil

	default:
		return nil, apperr.InvalidArgumentf("unknown subcommand '%s'", req.Subcommand)
	}
}

// Select applies the value chosen in an item picker and updates the picker message in place
func (h *Handler) Select(ctx context.Context, userID string, state *SelectState, values []string) (*discordgo.InteractionResponse, error) {
	if userID == "" {
		return nil, apperr.InvalidArgument("could not tell who made the selection")
	}
	if err := h.checkRate(ctx, userID); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, apperr.InvalidArgument("nothing was selected")
	}

	var (
		a    *avatarService.Avatar
		note string
		err  error
	)
	switch state.Action {
	case ActionToggle:
		a, err = h.toggle(ctx, userID, state.Category, values[0])
		if err == nil {
			note = h.toggleNote(a, state.Category, values[0])
		}
	case ActionVariation:
		itemID, key, ok := strings.Cut(values[0], variationSeparator)
		if !ok {
			return nil, apperr.InvalidArgumentf("malformed variation choice '%s'", values[0])
		}
		a, err = h.avatarService.ChooseVariation(ctx, userID, itemID, key)
		if err == nil {
			note = h.variationNote(itemID, key)
		}
	default:
		return nil, apperr.InvalidArgumentf("unknown picker action '%s'", state.Action)
	}
	if err != nil {
		return nil, err
	}

	resp, err := h.avatarMessage(ctx, a, &viewOptions{note: note, picker: state.Category})
	if err != nil {
		return nil, err
	}
	resp.Type = discordgo.InteractionResponseUpdateMessage
	// Drop the previous render so only the new attachment is shown
	resp.Data.Attachments = &[]*discordgo.MessageAttachment{}
	return resp, nil
}

func (h *Handler) toggle(ctx context.Context, userID, categoryID, itemID string) (*avatarService.Avatar, error) {
	if categoryID == "" || itemID == "" {
		return nil, apperr.InvalidArgument("category and item are required")
	}
	return h.avatarService.Toggle(ctx, userID, categoryID, itemID)
}

func (h *Handler) toggleNote(a *avatarService.Avatar, categoryID, itemID string) string {
	name := itemID
	if item, err := h.avatarService.Catalog().Item(categoryID, itemID); err == nil {
		name = displayName(item)
	}
	if a.Character.IsEquipped(categoryID, itemID) {
		return fmt.Sprintf("Equipped %s", name)
	}
	return fmt.Sprintf("Removed %s", name)
}

func (h *Handler) variationNote(itemID, key string) string {
	_, item, err := h.avatarService.Catalog().FindVariationItem(itemID)
	if err != nil {
		return fmt.Sprintf("%s set to %s", itemID, key)
	}
	return fmt.Sprintf("%s set to %s", displayName(item), variationName(item, key))
}

func channelValue(c avatarDomain.Color, channel avatarDomain.Channel) int {
	switch channel {
	case avatarDomain.ChannelRed:
		return c.R
	case avatarDomain.ChannelGreen:
		return c.G
	default:
		return c.B
	}
}

func displayName(item cosmetic.Item) string {
	if item.DisplayName != "" {
		return item.DisplayName
	}
	return item.ID
}

func variationName(item cosmetic.Item, key string) string {
	if v, ok := item.Variation(key); ok && v.DisplayName != "" {
		return v.DisplayName
	}
	return key
}
