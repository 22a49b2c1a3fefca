package discord

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"

	avatarDomain "github.com/KirkDiggler/avatar-forge/internal/domain/avatar"
	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
	"github.com/KirkDiggler/avatar-forge/internal/handlers/discord/utils"
	"github.com/KirkDiggler/avatar-forge/internal/ratelimit"
	avatarService "github.com/KirkDiggler/avatar-forge/internal/services/avatar"
)

// Command and subcommand names
const (
	CommandName = "avatar"

	SubcommandShow      = "show"
	SubcommandName      = "name"
	SubcommandColor     = "color"
	SubcommandToggle    = "toggle"
	SubcommandVariation = "variation"
	SubcommandItems     = "items"
	SubcommandDone      = "done"
)

// Discord caps choices and select options at 25
const maxChoices = 25

// Longer names do not fit under the sprite
const maxNameLength = 32

// Handler handles the /avatar command and its item pickers
type Handler struct {
	avatarService avatarService.Service
	rateLimiter   *ratelimit.Limiter
}

// HandlerConfig holds configuration for the Discord handler
type HandlerConfig struct {
	AvatarService avatarService.Service // Required
	RateLimiter   *ratelimit.Limiter    // Optional, no limit if nil
}

// NewHandler creates a new Discord handler
func NewHandler(cfg *HandlerConfig) *Handler {
	if cfg == nil || cfg.AvatarService == nil {
		panic("avatar service is required")
	}
	return &Handler{
		avatarService: cfg.AvatarService,
		rateLimiter:   cfg.RateLimiter,
	}
}

// CommandRequest is a parsed /avatar invocation
type CommandRequest struct {
	UserID     string
	Subcommand string
	Text       string
	Channel    string
	Value      string
	Category   string
	Item       string
	Key        string
	Public     bool
}

// Commands returns the application commands to register
func (h *Handler) Commands() []*discordgo.ApplicationCommand {
	categoryChoices := h.categoryChoices()

	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandName,
			Description: "Dress up your avatar",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandShow,
					Description: "Show your avatar",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "public",
							Description: "Post it in the channel instead of only to you",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandName,
					Description: "Set the name drawn under your avatar",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "text",
							Description: "The name, leave empty to clear it",
							MaxLength:   maxNameLength,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandColor,
					Description: "Set one channel of your tint",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "channel",
							Description: "Which channel to set",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Red", Value: string(avatarDomain.ChannelRed)},
								{Name: "Green", Value: string(avatarDomain.ChannelGreen)},
								{Name: "Blue", Value: string(avatarDomain.ChannelBlue)},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "value",
							Description: "0 to 9",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandToggle,
					Description: "Equip or unequip an item",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "category",
							Description: "Item category",
							Required:    true,
							Choices:     categoryChoices,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "item",
							Description: "Item ID, see /avatar items",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandVariation,
					Description: "Pick a variation of an item",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "item",
							Description: "Item ID",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "key",
							Description: "Variation key, e.g. left",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandItems,
					Description: "Browse a category and pick items",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "category",
							Description: "Item category",
							Required:    true,
							Choices:     categoryChoices,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandDone,
					Description: "Close your editing session",
				},
			},
		},
	}
}

func (h *Handler) categoryChoices() []*discordgo.ApplicationCommandOptionChoice {
	categories := h.avatarService.Catalog().Categories()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(categories))
	for _, cat := range categories {
		if len(choices) == maxChoices {
			break
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  cat.ID,
			Value: cat.ID,
		})
	}
	return choices
}

// RegisterCommands registers all slash commands with Discord
func (h *Handler) RegisterCommands(s *discordgo.Session, guildID string) error {
	for _, cmd := range h.Commands() {
		_, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd)
		if err != nil {
			return apperr.Wrapf(err, "failed to register command '%s'", cmd.Name)
		}
		log.Printf("Registered command: %s", cmd.Name)
	}
	return nil
}

// HandleInteraction handles all Discord interactions
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		h.handleComponent(s, i)
	}
}

func (h *Handler) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.ApplicationCommandData().Name != CommandName {
		return
	}

	req := ParseCommand(i)
	resp, err := h.Execute(context.Background(), req)
	if err != nil {
		log.Printf("Error handling /%s %s for %s: %v", CommandName, req.Subcommand, req.UserID, err)
		respondWithError(s, i, userMessage(err))
		return
	}

	if err := s.InteractionRespond(i.Interaction, resp); err != nil {
		log.Printf("Error responding to /%s %s: %v", CommandName, req.Subcommand, err)
	}
}

func (h *Handler) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	state, ok, err := ParseSelectCustomID(data.CustomID)
	if !ok {
		return
	}
	if err != nil {
		log.Printf("Error decoding picker %s: %v", data.CustomID, err)
		respondWithError(s, i, "This picker has expired, run /avatar items again.")
		return
	}

	userID := utils.GetUserID(i)
	resp, err := h.Select(context.Background(), userID, state, data.Values)
	if err != nil {
		log.Printf("Error handling %s picker for %s: %v", state.Action, userID, err)
		respondWithError(s, i, userMessage(err))
		return
	}

	if err := s.InteractionRespond(i.Interaction, resp); err != nil {
		log.Printf("Error updating picker message: %v", err)
	}
}

// ParseCommand reads a /avatar interaction into a CommandRequest
func ParseCommand(i *discordgo.InteractionCreate) *CommandRequest {
	return &CommandRequest{
		UserID:     utils.GetUserID(i),
		Subcommand: utils.GetSubcommand(i),
		Text:       utils.GetStringOption(i, "text"),
		Channel:    utils.GetStringOption(i, "channel"),
		Value:      utils.GetStringOption(i, "value"),
		Category:   utils.GetStringOption(i, "category"),
		Item:       utils.GetStringOption(i, "item"),
		Key:        utils.GetStringOption(i, "key"),
		Public:     utils.GetBoolOption(i, "public"),
	}
}

// checkRate counts one request against the user's limit
func (h *Handler) checkRate(ctx context.Context, userID string) error {
	if h.rateLimiter == nil || h.rateLimiter.Allow(ctx, userID) {
		return nil
	}
	return apperr.Newf(apperr.CodeRateLimited,
		"You're doing that too fast! Please wait %v before trying again.", h.rateLimiter.Window()).
		WithMeta("user_id", userID)
}

// userMessage turns an error into something safe to show the user
func userMessage(err error) string {
	switch apperr.GetCode(err) {
	case apperr.CodeInvalidArgument, apperr.CodeNotFound, apperr.CodeValidation, apperr.CodeRateLimited:
		return err.Error()
	default:
		return "Something went wrong with your avatar, please try again."
	}
}
