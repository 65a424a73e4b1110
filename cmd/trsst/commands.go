package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/trsst/client/internal/handlers"
	"github.com/trsst/client/pkg/new/domain"
	"github.com/trsst/client/pkg/new/domain/feed"
	"github.com/trsst/client/pkg/new/ports"
)

// Credentials sign in before a command runs. Reading commands use them
// only to decrypt entries.
type Credentials struct {
	ID       string `help:"Feed id to sign in as." env:"TRSST_ID"`
	Password string `help:"Password of the feed." env:"TRSST_PASSWORD"`
}

func (c Credentials) signIn(ctx context.Context, env *Environment) error {
	if c.ID == "" || c.Password == "" {
		return errors.New("this command needs --id and --password (or TRSST_ID and TRSST_PASSWORD)")
	}
	return c.maybeSignIn(ctx, env)
}

func (c Credentials) maybeSignIn(ctx context.Context, env *Environment) error {
	if c.ID == "" || c.Password == "" {
		return nil
	}
	id, err := feed.NewFeedID(c.ID)
	if err != nil {
		return errors.Wrap(err, "invalid id")
	}
	password, err := domain.NewPassword(c.Password)
	if err != nil {
		return errors.Wrap(err, "invalid password")
	}
	if _, err := env.app.SignIn.Handle(ctx, id, password); err != nil {
		return err
	}
	log.Printf("[INFO] signed in as %s", id)
	return nil
}

type PullCmd struct {
	Feed    string `arg:"" help:"Feed id, with or without the urn:feed: prefix."`
	Entry   string `help:"Only this entry (urn:entry:...)."`
	Verb    string `help:"Only entries with this verb." enum:"none,follow,like,repost,reply,delete" default:"none"`
	Mention string `help:"Only entries mentioning this id."`
	Count   int    `help:"Page size hint, 0 pulls feed metadata only." default:"-1"`

	Credentials `embed:""`
}

func (c *PullCmd) Run(ctx context.Context, env *Environment) error {
	filter, err := c.filter()
	if err != nil {
		return err
	}
	if err := c.maybeSignIn(ctx, env); err != nil {
		return err
	}

	first := true
	show := func(page *feed.Page) bool {
		if page == nil {
			return false
		}
		if first {
			_, _ = fmt.Fprintf(env.out, "%s\n\n", env.converter.ConvertFeed(page))
			first = false
		}
		for _, entry := range page.Entries() {
			_, _ = fmt.Fprintf(env.out, "%s\n\n", env.converter.ConvertEntry(page, entry))
		}
		return true
	}

	return env.app.Pull.Handle(ctx, filter, show, show)
}

func (c *PullCmd) filter() (feed.Filter, error) {
	var filter feed.Filter

	id, err := feed.NewFeedID(c.Feed)
	if err != nil {
		return filter, errors.Wrap(err, "invalid feed")
	}
	filter.FeedID = id

	if c.Entry != "" {
		entryID, err := feed.NewEntryID(c.Entry)
		if err != nil {
			return filter, errors.Wrap(err, "invalid entry")
		}
		filter.EntryID = entryID
	}

	verb, err := feed.ParseVerb(c.Verb)
	if err != nil {
		return filter, err
	}
	filter.Verb = verb
	filter.Mention = c.Mention

	if c.Count >= 0 {
		filter = filter.WithCount(c.Count)
	}
	return filter, nil
}

type WatchCmd struct {
	Feeds   []string `arg:"" help:"Feeds to watch."`
	Follows bool     `help:"Also watch the entries of every feed the watched feeds follow."`

	Credentials `embed:""`
}

func (c *WatchCmd) Run(ctx context.Context, env *Environment) error {
	ids, err := parseFeedIDs(c.Feeds)
	if err != nil {
		return err
	}
	if err := c.maybeSignIn(ctx, env); err != nil {
		return err
	}

	target := newPrintTarget(env.out)
	feeds := env.NewPollster(ports.FeedPollster, target)
	entries := env.NewPollster(ports.EntryPollster, target)
	env.pollsters.Replace(feeds, entries)

	for _, id := range ids {
		feeds.AddFeed(id)
		entries.AddFeed(id)
		if c.Follows {
			if err := entries.AddFeedFollows(id); err != nil {
				log.Printf("[WARN] not watching follows of %s: %v", id, err)
			}
		}
	}

	if env.config.StatusAddr != "" {
		go serveStatus(ctx, env)
	}

	<-ctx.Done()
	log.Printf("[INFO] stopping")
	return nil
}

func serveStatus(ctx context.Context, env *Environment) {
	server := &http.Server{
		Addr:              env.config.StatusAddr,
		Handler:           handlers.NewStatusRouter(env.healthCheck, env.session, env.pollsters),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("[INFO] status server listening on %s", env.config.StatusAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[ERROR] status server terminated: %v", err)
	}
}

type AccountsCmd struct{}

func (c *AccountsCmd) Run(ctx context.Context, env *Environment) error {
	accounts, err := env.app.GetAccounts.Handle(ctx)
	if err != nil {
		return err
	}
	for _, account := range accounts {
		_, _ = fmt.Fprintln(env.out, account)
	}
	return nil
}

type FollowsCmd struct {
	Feed string `arg:"" help:"Feed whose follows are listed."`

	Credentials `embed:""`
}

func (c *FollowsCmd) Run(ctx context.Context, env *Environment) error {
	id, err := feed.NewFeedID(c.Feed)
	if err != nil {
		return errors.Wrap(err, "invalid feed")
	}
	if err := c.maybeSignIn(ctx, env); err != nil {
		return err
	}

	follows, err := env.app.GetFollows.Handle(ctx, id)
	if err != nil {
		return err
	}
	for _, follow := range follows {
		_, _ = fmt.Fprintln(env.out, follow)
	}
	return nil
}

type CreateAccountCmd struct {
	Password string `help:"Password of the new feed." env:"TRSST_PASSWORD" required:""`
}

func (c *CreateAccountCmd) Run(ctx context.Context, env *Environment) error {
	password, err := domain.NewPassword(c.Password)
	if err != nil {
		return err
	}
	id, err := env.app.CreateAccount.Handle(ctx, password)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(env.out, id)
	return nil
}

type UpdateFeedCmd struct {
	Title    string `help:"New title."`
	Subtitle string `help:"New subtitle."`
	Base     string `help:"Base url of the feed."`
	Name     string `help:"Author name."`
	Email    string `help:"Author email."`
	Icon     string `help:"Icon image file." type:"existingfile"`
	Logo     string `help:"Logo image file." type:"existingfile"`

	Credentials `embed:""`
}

func (c *UpdateFeedCmd) Run(ctx context.Context, env *Environment) error {
	if err := c.signIn(ctx, env); err != nil {
		return err
	}

	post := feed.Post{Title: c.Title, Subtitle: c.Subtitle, Base: c.Base, Fields: map[string]string{}}
	if c.Name != "" {
		post.Fields["name"] = c.Name
	}
	if c.Email != "" {
		post.Fields["email"] = c.Email
	}

	attachments, closeAll, err := openAttachments([2]string{feed.IconField, c.Icon}, [2]string{feed.LogoField, c.Logo})
	if err != nil {
		return err
	}
	defer closeAll()
	post.Attachments = attachments

	page, err := env.app.UpdateFeed.Handle(ctx, post)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(env.out, env.converter.ConvertFeed(page))
	return nil
}

type PostCmd struct {
	Status  string   `short:"s" help:"Status text of the entry."`
	Content string   `short:"c" help:"Content of the entry."`
	URL     string   `short:"u" name:"url" help:"Url the entry links to."`
	Reply   string   `help:"Entry to reply to (urn:entry:...)."`
	Tag     []string `short:"g" help:"Tag of the entry, can be repeated."`
	Attach  string   `short:"a" help:"File attached as the entry content." type:"existingfile"`

	Credentials `embed:""`
}

func (c *PostCmd) Run(ctx context.Context, env *Environment) error {
	post := feed.Post{Status: c.Status, Content: c.Content, URL: c.URL, Tags: c.Tag}
	if c.Reply != "" {
		replyTo, err := feed.NewEntryID(c.Reply)
		if err != nil {
			return errors.Wrap(err, "invalid reply")
		}
		post.Verb = feed.VerbReply
		post.Mention = replyTo.String()
	}

	if err := c.signIn(ctx, env); err != nil {
		return err
	}

	attachments, closeAll, err := openAttachments([2]string{feed.AttachmentField, c.Attach})
	if err != nil {
		return err
	}
	defer closeAll()
	post.Attachments = attachments

	page, err := env.app.PostEntry.Handle(ctx, post)
	if err != nil {
		return err
	}

	// the server returns the feed with the new entry first
	if entries := page.Entries(); len(entries) > 0 {
		_, _ = fmt.Fprintln(env.out, env.converter.ConvertEntry(page, entries[0]))
	}
	return nil
}

// openAttachments opens the files given as field/path pairs, skipping
// empty paths.
func openAttachments(files ...[2]string) ([]feed.Attachment, func(), error) {
	var attachments []feed.Attachment
	var opened []*os.File
	closeAll := func() {
		for _, file := range opened {
			_ = file.Close()
		}
	}

	for _, f := range files {
		field, path := f[0], f[1]
		if path == "" {
			continue
		}
		file, err := os.Open(path)
		if err != nil {
			closeAll()
			return nil, nil, errors.Wrapf(err, "error opening %s", path)
		}
		opened = append(opened, file)
		attachments = append(attachments, feed.Attachment{
			Field:    field,
			Filename: filepath.Base(path),
			Body:     file,
		})
	}

	return attachments, closeAll, nil
}

type FollowCmd struct {
	Feed string `arg:"" help:"Feed to follow."`

	Credentials `embed:""`
}

func (c *FollowCmd) Run(ctx context.Context, env *Environment) error {
	return runFeedAction(ctx, env, c.Credentials, c.Feed, env.app.FollowFeed.Handle)
}

type UnfollowCmd struct {
	Feed string `arg:"" help:"Feed to unfollow."`

	Credentials `embed:""`
}

func (c *UnfollowCmd) Run(ctx context.Context, env *Environment) error {
	return runFeedAction(ctx, env, c.Credentials, c.Feed, env.app.UnfollowFeed.Handle)
}

type LikeCmd struct {
	Entry string `arg:"" help:"Entry to like (urn:entry:...)."`

	Credentials `embed:""`
}

func (c *LikeCmd) Run(ctx context.Context, env *Environment) error {
	return runEntryAction(ctx, env, c.Credentials, c.Entry, env.app.LikeEntry.Handle)
}

type UnlikeCmd struct {
	Entry string `arg:"" help:"Entry to unlike (urn:entry:...)."`

	Credentials `embed:""`
}

func (c *UnlikeCmd) Run(ctx context.Context, env *Environment) error {
	return runEntryAction(ctx, env, c.Credentials, c.Entry, env.app.UnlikeEntry.Handle)
}

type RepostCmd struct {
	Entry string `arg:"" help:"Entry to repost (urn:entry:...)."`

	Credentials `embed:""`
}

func (c *RepostCmd) Run(ctx context.Context, env *Environment) error {
	return runEntryAction(ctx, env, c.Credentials, c.Entry, env.app.RepostEntry.Handle)
}

type UnrepostCmd struct {
	Entry string `arg:"" help:"Entry to stop reposting (urn:entry:...)."`

	Credentials `embed:""`
}

func (c *UnrepostCmd) Run(ctx context.Context, env *Environment) error {
	return runEntryAction(ctx, env, c.Credentials, c.Entry, env.app.UnrepostEntry.Handle)
}

type DeleteCmd struct {
	Entry string `arg:"" help:"Entry to delete (urn:entry:...)."`

	Credentials `embed:""`
}

func (c *DeleteCmd) Run(ctx context.Context, env *Environment) error {
	return runEntryAction(ctx, env, c.Credentials, c.Entry, env.app.DeleteEntry.Handle)
}

func runFeedAction(ctx context.Context, env *Environment, credentials Credentials, raw string, action func(context.Context, feed.FeedID) error) error {
	id, err := feed.NewFeedID(raw)
	if err != nil {
		return errors.Wrap(err, "invalid feed")
	}
	if err := credentials.signIn(ctx, env); err != nil {
		return err
	}
	return action(ctx, id)
}

func runEntryAction(ctx context.Context, env *Environment, credentials Credentials, raw string, action func(context.Context, feed.EntryID) error) error {
	id, err := feed.NewEntryID(raw)
	if err != nil {
		return errors.Wrap(err, "invalid entry")
	}
	if err := credentials.signIn(ctx, env); err != nil {
		return err
	}
	return action(ctx, id)
}

func parseFeedIDs(raw []string) ([]feed.FeedID, error) {
	var ids []feed.FeedID
	for _, s := range raw {
		id, err := feed.NewFeedID(s)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid feed '%s'", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
