package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Pull          PullCmd          `cmd:"" help:"Pull a feed and print every page."`
	Watch         WatchCmd         `cmd:"" help:"Poll feeds and print changes until interrupted."`
	Accounts      AccountsCmd      `cmd:"" help:"List the accounts hosted by the server."`
	Follows       FollowsCmd       `cmd:"" help:"List the feeds followed by a feed."`
	CreateAccount CreateAccountCmd `cmd:"" help:"Create a feed protected by a password."`
	UpdateFeed    UpdateFeedCmd    `cmd:"" help:"Update the title, subtitle, base, author, icon or logo of your feed."`
	Post          PostCmd          `cmd:"" help:"Publish an entry or a reply."`
	Follow        FollowCmd        `cmd:"" help:"Follow a feed."`
	Unfollow      UnfollowCmd      `cmd:"" help:"Unfollow a feed."`
	Like          LikeCmd          `cmd:"" help:"Like an entry."`
	Unlike        UnlikeCmd        `cmd:"" help:"Remove your likes of an entry."`
	Repost        RepostCmd        `cmd:"" help:"Repost an entry."`
	Unrepost      UnrepostCmd      `cmd:"" help:"Remove your reposts of an entry."`
	Delete        DeleteCmd        `cmd:"" help:"Delete one of your entries."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("trsst"),
		kong.Description("Client for trsst feed servers. The server is configured with TRSST_SERVER_URL."),
		kong.UsageOnError(),
	)

	config, err := LoadConfig()
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	ConfigureLogging(config.LogLevel)
	log.Printf("[DEBUG] running VERSION %s against %s", config.Version, config.ServerURL)

	env, err := NewEnvironment(config, os.Stdout)
	if err != nil {
		log.Fatalf("[FATAL] failed to initialize: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	kctx.BindTo(ctx, (*context.Context)(nil))

	err = kctx.Run(env)
	stop()
	env.Close()
	kctx.FatalIfErrorf(err)
}
