package utils

import "github.com/bwmarrin/discordgo"

// GetCommandOption safely retrieves a command option by name from interaction data
func GetCommandOption(i *discordgo.InteractionCreate, name string) *discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options

	// Navigate through subcommand groups and subcommands
	for len(options) > 0 {
		for _, opt := range options {
			if opt.Name == name {
				return opt
			}
		}

		// If the first option has sub-options (it's a subcommand group or subcommand), drill down
		if len(options[0].Options) > 0 {
			options = options[0].Options
		} else {
			break
		}
	}

	return nil
}

// GetSubcommand returns the name of the invoked subcommand, or "" if there is none
func GetSubcommand(i *discordgo.InteractionCreate) string {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return ""
	}
	if options[0].Type != discordgo.ApplicationCommandOptionSubCommand {
		return ""
	}
	return options[0].Name
}

// GetStringOption safely retrieves a string option value by name
func GetStringOption(i *discordgo.InteractionCreate, name string) string {
	opt := GetCommandOption(i, name)
	if opt == nil {
		return ""
	}
	return opt.StringValue()
}

// GetBoolOption safely retrieves a boolean option value by name
func GetBoolOption(i *discordgo.InteractionCreate, name string) bool {
	opt := GetCommandOption(i, name)
	if opt == nil {
		return false
	}
	return opt.BoolValue()
}

// GetUserID returns the invoking user for guild and DM interactions alike
func GetUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
