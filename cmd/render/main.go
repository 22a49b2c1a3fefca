package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/KirkDiggler/avatar-forge/internal/config"
	avatarDomain "github.com/KirkDiggler/avatar-forge/internal/domain/avatar"
	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
	"github.com/KirkDiggler/avatar-forge/internal/services"
	avatarService "github.com/KirkDiggler/avatar-forge/internal/services/avatar"
)

const ownerID = "render-cli"

// pairList collects repeated "a:b" flags
type pairList [][2]string

func (p *pairList) String() string {
	parts := make([]string, 0, len(*p))
	for _, pair := range *p {
		parts = append(parts, pair[0]+":"+pair[1])
	}
	return strings.Join(parts, ",")
}

func (p *pairList) Set(value string) error {
	left, right, ok := strings.Cut(value, ":")
	if !ok || left == "" || right == "" {
		return apperr.InvalidArgumentf("expected a:b, got %q", value)
	}
	*p = append(*p, [2]string{left, right})
	return nil
}

type options struct {
	name       string
	color      string
	equip      pairList
	variations pairList
	out        string
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	assets, err := config.LoadAssets()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var opts options
	flag.StringVar(&assets.Manifest, "manifest", assets.Manifest, "Path to the asset manifest")
	flag.StringVar(&assets.Dir, "assets", assets.Dir, "Directory relative refs resolve against")
	flag.StringVar(&assets.BaseURL, "base-url", assets.BaseURL, "Fetch assets from this URL instead of -assets")
	flag.StringVar(&opts.name, "name", "", "Name drawn under the avatar")
	flag.StringVar(&opts.color, "color", "", "Tint as r,g,b with each channel 0-9")
	flag.Var(&opts.equip, "equip", "category:item to equip, repeatable")
	flag.Var(&opts.variations, "variation", "item:key to wear, repeatable")
	flag.StringVar(&opts.out, "out", "avatar.png", "Output PNG path")
	flag.Parse()

	ctx := context.Background()
	provider, err := services.NewProvider(ctx, &services.ProviderConfig{Assets: assets})
	if err != nil {
		log.Fatalf("Failed to load assets: %v", err)
	}

	if err := apply(ctx, provider.AvatarService, &opts); err != nil {
		log.Fatalf("Failed to build avatar: %v", err)
	}

	data, err := provider.AvatarService.Render(ctx, ownerID)
	if err != nil {
		log.Fatalf("Failed to render avatar: %v", err)
	}

	if err := os.WriteFile(opts.out, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", opts.out, err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", opts.out, len(data))
}

// apply replays the command line selections through the avatar service
func apply(ctx context.Context, svc avatarService.Service, opts *options) error {
	if _, err := svc.Start(ctx, ownerID); err != nil {
		return err
	}

	if opts.name != "" {
		if _, err := svc.SetName(ctx, ownerID, opts.name); err != nil {
			return err
		}
	}

	if opts.color != "" {
		values := strings.Split(opts.color, ",")
		if len(values) != 3 {
			return apperr.InvalidArgumentf("color must be r,g,b, got %q", opts.color)
		}
		channels := []avatarDomain.Channel{avatarDomain.ChannelRed, avatarDomain.ChannelGreen, avatarDomain.ChannelBlue}
		for i, channel := range channels {
			if _, err := svc.SetColor(ctx, ownerID, channel, values[i]); err != nil {
				return err
			}
		}
	}

	for _, pair := range opts.equip {
		if _, err := svc.Toggle(ctx, ownerID, pair[0], pair[1]); err != nil {
			return err
		}
	}

	for _, pair := range opts.variations {
		if _, err := svc.ChooseVariation(ctx, ownerID, pair[0], pair[1]); err != nil {
			return err
		}
	}

	return nil
}
