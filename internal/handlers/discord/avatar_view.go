package discord

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/avatar-forge/internal/domain/cosmetic"
	avatarService "github.com/KirkDiggler/avatar-forge/internal/services/avatar"
)

// AvatarFileName is the name of the rendered attachment
const AvatarFileName = "avatar.png"

type viewOptions struct {
	public bool
	note   string
	picker string // category to offer a picker for, empty for none
}

// avatarMessage renders the avatar and wraps it in an embed
func (h *Handler) avatarMessage(ctx context.Context, a *avatarService.Avatar, opts *viewOptions) (*discordgo.InteractionResponse, error) {
	data, err := h.avatarService.Render(ctx, a.OwnerID)
	if err != nil {
		return nil, err
	}

	resp := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{h.avatarEmbed(a, opts.note)},
		Files: []*discordgo.File{
			{
				Name:        AvatarFileName,
				ContentType: "image/png",
				Reader:      bytes.NewReader(data),
			},
		},
	}
	if !opts.public {
		resp.Flags = discordgo.MessageFlagsEphemeral
	}

	if opts.picker != "" {
		components, err := h.pickerComponents(a, opts.picker)
		if err != nil {
			return nil, err
		}
		resp.Components = components
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: resp,
	}, nil
}

func (h *Handler) avatarEmbed(a *avatarService.Avatar, note string) *discordgo.MessageEmbed {
	c := a.Character
	r, g, b := c.Color.RGB()

	title := c.Name
	if title == "" {
		title = "Unnamed avatar"
	}

	fields := []*discordgo.MessageEmbedField{
		{
			Name:   "Color",
			Value:  fmt.Sprintf("R %d · G %d · B %d", c.Color.R, c.Color.G, c.Color.B),
			Inline: true,
		},
	}

	catalog := h.avatarService.Catalog()
	for _, cat := range catalog.Categories() {
		equipped := c.EquippedIn(cat.ID)
		if len(equipped) == 0 {
			continue
		}
		names := make([]string, 0, len(equipped))
		for _, itemID := range equipped {
			item, err := catalog.Item(cat.ID, itemID)
			if err != nil {
				names = append(names, itemID)
				continue
			}
			name := displayName(item)
			if key, ok := c.ActiveVariation[itemID]; ok && cat.HasVariations {
				name = fmt.Sprintf("%s (%s)", name, variationName(item, key))
			}
			names = append(names, name)
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   cat.ID,
			Value:  strings.Join(names, ", "),
			Inline: true,
		})
	}

	embed := &discordgo.MessageEmbed{
		Title:  title,
		Color:  int(r)<<16 | int(g)<<8 | int(b),
		Fields: fields,
		Image: &discordgo.MessageEmbedImage{
			URL: "attachment://" + AvatarFileName,
		},
	}
	if note != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: note}
	}
	return embed
}

// pickerComponents builds a select menu for one category. Categories with variations
// list one option per item and variation.
func (h *Handler) pickerComponents(a *avatarService.Avatar, categoryID string) ([]discordgo.MessageComponent, error) {
	catalog := h.avatarService.Catalog()
	cat, err := catalog.Category(categoryID)
	if err != nil {
		return nil, err
	}
	items, err := catalog.OrderedItemsOf(categoryID)
	if err != nil {
		return nil, err
	}

	state := &SelectState{Action: ActionToggle, Category: categoryID}
	var options []discordgo.SelectMenuOption
	if cat.HasVariations {
		state.Action = ActionVariation
		options = variationOptions(a, cat, items)
	} else {
		options = toggleOptions(a, cat, items)
	}
	if len(options) == 0 {
		return nil, nil
	}

	customID, err := state.CustomID()
	if err != nil {
		return nil, err
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.StringSelectMenu,
					CustomID:    customID,
					Placeholder: fmt.Sprintf("Choose from %s...", cat.ID),
					Options:     options,
				},
			},
		},
	}, nil
}

func toggleOptions(a *avatarService.Avatar, cat cosmetic.Category, items []cosmetic.Item) []discordgo.SelectMenuOption {
	options := make([]discordgo.SelectMenuOption, 0, min(len(items), maxChoices))
	for _, item := range items {
		if len(options) == maxChoices {
			break
		}
		description := "Equip"
		if a.Character.IsEquipped(cat.ID, item.ID) {
			description = "Equipped, pick to remove"
		}
		options = append(options, discordgo.SelectMenuOption{
			Label:       displayName(item),
			Value:       item.ID,
			Description: description,
		})
	}
	return options
}

func variationOptions(a *avatarService.Avatar, cat cosmetic.Category, items []cosmetic.Item) []discordgo.SelectMenuOption {
	var options []discordgo.SelectMenuOption
	for _, item := range items {
		vr, ok := item.Render.(cosmetic.VariantRender)
		if !ok {
			continue
		}
		for _, key := range vr.Keys {
			if len(options) == maxChoices {
				return options
			}
			description := "Wear this"
			if a.Character.IsEquipped(cat.ID, item.ID) && a.Character.ActiveVariation[item.ID] == key {
				description = "Wearing"
			}
			options = append(options, discordgo.SelectMenuOption{
				Label:       fmt.Sprintf("%s (%s)", displayName(item), variationName(item, key)),
				Value:       item.ID + variationSeparator + key,
				Description: description,
			})
		}
	}
	return options
}
