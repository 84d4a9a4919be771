package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"yt-sub/internal/logger"
	"yt-sub/internal/models"
	"yt-sub/internal/remote"
	"yt-sub/internal/settings"
)

func main() {
	_ = godotenv.Load()
	if err := logger.Init(logger.Config{Level: os.Getenv("LOG_LEVEL")}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.Named("ytsub"),
	}
	if err := app.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type cli struct {
	stdout     io.Writer
	stderr     io.Writer
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

type command struct {
	name    string
	alias   string
	summary string
	run     func(c *cli, ctx context.Context, args []string) error
}

var commands = []command{
	{"init", "i", "Initialize config file", (*cli).cmdInit},
	{"settings", "s", "Display current settings", (*cli).cmdSettings},
	{"run", "r", "Check and notify about fresh videos", (*cli).cmdRun},
	{"channel-data", "d", "Get a channel data based on its handle", (*cli).cmdChannelData},
	{"follow", "f", "Subscribe to a channel", (*cli).cmdFollow},
	{"unfollow", "u", "Unsubscribe", (*cli).cmdUnfollow},
	{"list", "l", "List followed channels", (*cli).cmdList},
	{"register", "re", "Register remote account", (*cli).cmdRegister},
	{"sync", "sy", "Upload settings to the remote account", (*cli).cmdSync},
	{"unregister", "un", "Remove remote account", (*cli).cmdUnregister},
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.printUsage()
		return errors.New("missing command")
	}

	name := args[0]
	if name == "help" || name == "-h" || name == "--help" {
		c.printUsage()
		return nil
	}
	for _, cmd := range commands {
		if cmd.name == name || cmd.alias == name {
			return cmd.run(c, ctx, args[1:])
		}
	}
	c.printUsage()
	return fmt.Errorf("unknown command %q", name)
}

func (c *cli) printUsage() {
	fmt.Fprintf(c.stderr, "ytsub - notifications about new YouTube videos\n\nUsage:\n  ytsub <command> [flags]\n\nCommands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(c.stderr, "  %-14s (%s)\t%s\n", cmd.name, cmd.alias, cmd.summary)
	}
	fmt.Fprintf(c.stderr, "\nFor help on specific command: ytsub <command> -h\n")
}

// commonFlags are accepted by every command.
type commonFlags struct {
	config   string
	lastRun  string
	apiHost  string
	feedHost string
}

func (c *cli) newFlagSet(name string) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)

	apiHost := os.Getenv("YTSUB_API_HOST")
	if apiHost == "" {
		apiHost = remote.DefaultHost
	}

	f := &commonFlags{}
	fs.StringVar(&f.config, "config", "", "Path to config file, default '~/.config/yt-sub/config.yaml'")
	fs.StringVar(&f.lastRun, "last-run", "", "Path to last run file, default '~/.yt-sub/last_run_at.txt'")
	fs.StringVar(&f.apiHost, "api-host", apiHost, "Remote API host")
	fs.StringVar(&f.feedHost, "feed-host", models.DefaultFeedHost, "Host serving channel feeds")
	return fs, f
}

func (f *commonFlags) store() (*settings.FileStore, error) {
	return settings.New(f.config, f.lastRun)
}

func (c *cli) remote(f *commonFlags) *remote.Client {
	return remote.NewClient(f.apiHost, c.httpClient)
}

// parse returns done=true when only help was requested.
func parse(fs *flag.FlagSet, args []string) (done bool, err error) {
	err = fs.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		return true, nil
	}
	return false, err
}
