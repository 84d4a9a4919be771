package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"yt-sub/internal/models"
	"yt-sub/internal/notify"
	"yt-sub/internal/poll"
	"yt-sub/internal/youtube"
)

const localAccount = "local"

func (c *cli) cmdInit(ctx context.Context, args []string) error {
	fs, f := c.newFlagSet("init")
	if done, err := parse(fs, args); done || err != nil {
		return err
	}
	store, err := f.store()
	if err != nil {
		return err
	}

	if _, err := store.Init(); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Config file created at: %s\n", store.Path)
	return nil
}

func (c *cli) cmdSettings(ctx context.Context, args []string) error {
	fs, f := c.newFlagSet("settings")
	if done, err := parse(fs, args); done || err != nil {
		return err
	}
	store, err := f.store()
	if err != nil {
		return err
	}

	s, err := store.Read()
	if err != nil {
		return err
	}
	out, err := store.Render(s)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, out)
	return nil
}

func (c *cli) cmdRun(ctx context.Context, args []string) error {
	fs, f := c.newFlagSet("run")
	cron := fs.Bool("cron", false, "Produce cron-style std logs")
	hoursOffset := fs.Uint("hours-offset", 0, "Fresh videos hours offset")
	if done, err := parse(fs, args); done || err != nil {
		return err
	}
	store, err := f.store()
	if err != nil {
		return err
	}

	dispatcher := notify.NewDispatcher(c.httpClient, c.logger).WithOutput(c.stdout)
	cycle := poll.New(store, youtube.NewFetcher(c.httpClient, f.feedHost), dispatcher, c.logger)
	cycle.Policy = poll.AdvanceAlways
	// Local settings are not bound by the stored-account limits.
	cycle.EnforceCaps = false
	cycle.CronMode = *cron
	if *hoursOffset > 0 {
		cycle.Lookback = time.Duration(*hoursOffset) * time.Hour
	}

	report, err := cycle.Run(ctx, localAccount)
	if err != nil {
		return err
	}
	c.logger.Debugw("Run finished",
		"fresh", report.FreshVideos,
		"failed_channels", report.FailedChannels,
		"failed_notifiers", report.FailedNotifiers)
	return nil
}

func (c *cli) cmdChannelData(ctx context.Context, args []string) error {
	fs, f := c.newFlagSet("channel-data")
	handle := fs.String("handle", "", "Channel handle, e.g. @channel")
	if done, err := parse(fs, args); done || err != nil {
		return err
	}
	if *handle == "" {
		return errors.New("--handle is required")
	}

	data, err := c.channelData(ctx, f, *handle)
	if err != nil {
		return err
	}

	channel := models.Channel{Handle: *handle, Description: data.ChannelName, ChannelID: data.ChannelID}
	fmt.Fprintf(c.stdout, "%s\n\nRun:\n\nytsub follow --handle %s --channel-id %s --desc '%s'\n\nto subscribe to this channel.\n",
		channel, channel.Handle, channel.ChannelID, channel.Description)
	return nil
}

func (c *cli) channelData(ctx context.Context, f *commonFlags, handle string) (youtube.ChannelData, error) {
	data, err := c.remote(f).ChannelData(ctx, handle)
	switch {
	case errors.Is(err, youtube.ErrChannelNotFound):
		return data, fmt.Errorf("Channel with handle '%s' not found!", handle)
	case errors.Is(err, youtube.ErrThrottled):
		return data, errors.New("It looks like YouTube API calls are currently throttled.\n\nYou can try again later or find the channel data manually.")
	}
	return data, err
}

func (c *cli) cmdFollow(ctx context.Context, args []string) error {
	fs, f := c.newFlagSet("follow")
	handle := fs.String("handle", "", "Channel handle, e.g. @channel")
	channelID := fs.String("channel-id", "", "Channel id, skips the remote lookup")
	desc := fs.String("desc", "", "Channel description")
	if done, err := parse(fs, args); done || err != nil {
		return err
	}
	if *handle == "" {
		return errors.New("--handle is required")
	}
	if (*channelID == "") != (*desc == "") {
		return errors.New("You must provide only --handle or both --channel-id and --desc")
	}

	if *channelID == "" {
		data, err := c.channelData(ctx, f, *handle)
		if err != nil {
			return err
		}
		*channelID, *desc = data.ChannelID, data.ChannelName
	}

	store, err := f.store()
	if err != nil {
		return err
	}
	s, err := store.Read()
	if err != nil {
		return err
	}

	following, ok := s.ChannelByID(*channelID)
	if !ok {
		following, ok = s.ChannelByHandle(*handle)
	}
	if ok {
		return fmt.Errorf("You are already following this channel!\n\n%s", following)
	}

	valid, err := youtube.NewFetcher(c.httpClient, f.feedHost).ValidateID(ctx, *channelID)
	if err != nil {
		return err
	}
	if !valid {
		return errors.New("Provided channel-id is invalid!")
	}

	channel := models.Channel{Handle: *handle, Description: *desc, ChannelID: *channelID}
	s.Channels = append(s.Channels, channel)
	if len(s.Channels) > models.MaxChannels {
		return fmt.Errorf("You can follow at most %d channels", models.MaxChannels)
	}
	if err := store.Save(s); err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "You are now following:\n\n%s!\n", channel)
	return nil
}

func (c *cli) cmdUnfollow(ctx context.Context, args []string) error {
	fs, f := c.newFlagSet("unfollow")
	handle := fs.String("handle", "", "Channel handle, e.g. @channel")
	if done, err := parse(fs, args); done || err != nil {
		return err
	}
	store, err := f.store()
	if err != nil {
		return err
	}
	s, err := store.Read()
	if err != nil {
		return err
	}

	target, ok := s.ChannelByHandle(*handle)
	if !ok {
		return errors.New("You are not following a channel with the provided handle!")
	}

	kept := s.Channels[:0]
	for _, ch := range s.Channels {
		if ch.Handle != *handle {
			kept = append(kept, ch)
		}
	}
	s.Channels = kept
	if err := store.Save(s); err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "You've unfollowed %s!\n", target.Description)
	return nil
}

func (c *cli) cmdList(ctx context.Context, args []string) error {
	fs, f := c.newFlagSet("list")
	if done, err := parse(fs, args); done || err != nil {
		return err
	}
	store, err := f.store()
	if err != nil {
		return err
	}
	s, err := store.Read()
	if err != nil {
		return err
	}

	if len(s.Channels) == 0 {
		fmt.Fprintln(c.stdout, "Currently you are not following any channels.")
		return nil
	}

	lines := make([]string, 0, len(s.Channels))
	for _, ch := range s.Channels {
		lines = append(lines, ch.String())
	}
	fmt.Fprintf(c.stdout, "You are following:\n\n%s\n", strings.Join(lines, "\n\n"))
	return nil
}

func (c *cli) cmdRegister(ctx context.Context, args []string) error {
	fs, f := c.newFlagSet("register")
	if done, err := parse(fs, args); done || err != nil {
		return err
	}
	store, err := f.store()
	if err != nil {
		return err
	}
	s, err := store.Read()
	if err != nil {
		return err
	}
	if s.APIKey != "" {
		return errors.New("Remote account is already registered, use 'ytsub sync' to update it")
	}

	key, err := c.remote(f).Register(ctx, s)
	if err != nil {
		return err
	}
	s.APIKey = key
	if err := store.Save(s); err != nil {
		return err
	}

	fmt.Fprintln(c.stdout, "Registered successfully! You'll receive notifications about new videos to your configured Slack channel.")
	return nil
}

func (c *cli) cmdSync(ctx context.Context, args []string) error {
	fs, f := c.newFlagSet("sync")
	if done, err := parse(fs, args); done || err != nil {
		return err
	}
	store, err := f.store()
	if err != nil {
		return err
	}
	s, err := store.Read()
	if err != nil {
		return err
	}

	if err := c.remote(f).Sync(ctx, s); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "Remote account data was updated.")
	return nil
}

func (c *cli) cmdUnregister(ctx context.Context, args []string) error {
	fs, f := c.newFlagSet("unregister")
	if done, err := parse(fs, args); done || err != nil {
		return err
	}
	store, err := f.store()
	if err != nil {
		return err
	}
	s, err := store.Read()
	if err != nil {
		return err
	}

	if err := c.remote(f).Unregister(ctx, s.APIKey); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "Your remote account has been removed.")

	s.APIKey = ""
	return store.Save(s)
}
