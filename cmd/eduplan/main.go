package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	// Packages
	kong "github.com/alecthomas/kong"
	client "github.com/mutablelogic/go-client"
	credential "github.com/mutablelogic/go-eduplan/pkg/credential"
	httpclient "github.com/mutablelogic/go-eduplan/pkg/httpclient"
	ui "github.com/mutablelogic/go-eduplan/pkg/ui"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type Globals struct {
	// Debugging
	Debug   bool `name:"debug" help:"Enable debug output"`
	Verbose bool `name:"verbose" help:"Enable verbose output"`

	// Service
	URL   string `env:"EDUPLAN_URL" default:"http://localhost:8080/api/v1" help:"Service endpoint"`
	Token string `env:"EDUPLAN_TOKEN" help:"Bearer credential from a previous login"`

	// Context
	ctx     context.Context
	session *credential.Store
	client  *httpclient.Client
	config  *Config
	display *ui.Display
}

type CLI struct {
	Globals

	// Authentication
	Login    LoginCmd    `cmd:"" help:"Authenticate and print a bearer credential"`
	Register RegisterCmd `cmd:"" help:"Create an account"`
	Logout   LogoutCmd   `cmd:"" help:"Invalidate the current session"`
	Whoami   WhoamiCmd   `cmd:"" help:"Show the authenticated user"`
	Settings SettingsCmd `cmd:"" help:"Show or update generation defaults"`

	// Generation
	Outline    OutlineCmd    `cmd:"" help:"Generate a course outline"`
	Lesson     LessonCmd     `cmd:"" help:"Generate a lesson plan"`
	Slides     SlidesCmd     `cmd:"" help:"Generate a slide deck"`
	Assessment AssessmentCmd `cmd:"" help:"Generate an assessment"`

	// Conversations
	Conversations ListConversationsCmd  `cmd:"" help:"List saved conversations"`
	Show          ShowConversationCmd   `cmd:"" help:"Show a conversation history"`
	Delete        DeleteConversationCmd `cmd:"" help:"Delete a conversation"`

	// Version
	Version VersionCmd `cmd:"" help:"Show version information"`
}

////////////////////////////////////////////////////////////////////////////////
// MAIN

func main() {
	// Create a cli parser
	cli := CLI{}
	cmd := kong.Parse(&cli,
		kong.Name(execName()),
		kong.Description("Educational content generation client"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{},
	)

	// Create a context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	cli.Globals.ctx = ctx

	// Logging
	level := slog.LevelInfo
	if cli.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Load persisted state
	config, err := NewConfig(execName())
	cmd.FatalIfErrorf(err)
	cli.Globals.config = config

	// The bearer credential lives in memory only; clearing it also
	// removes any credential file left behind by earlier releases
	session := credential.NewStore(credential.WithPurge(config.PurgeCredential))
	if cli.Token != "" {
		session.Set(cli.Token)
	}
	cli.Globals.session = session

	// Client options
	clientopts := []client.ClientOpt{}
	if cli.Debug || cli.Verbose {
		clientopts = append(clientopts, client.OptTrace(os.Stderr, cli.Verbose))
	}

	// Create the client
	eduplan, err := httpclient.New(cli.URL, session,
		httpclient.WithLogger(log),
		httpclient.WithClientOptions(clientopts...),
	)
	cmd.FatalIfErrorf(err)
	cli.Globals.client = eduplan

	// Create the display
	cli.Globals.display = ui.New(os.Stdout)

	// Run the command, then persist state regardless of the outcome
	runErr := cmd.Run(&cli.Globals)
	cmd.FatalIfErrorf(config.Close())
	if runErr != nil {
		cli.Globals.display.Error(runErr)
		os.Exit(1)
	}
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func execName() string {
	// The name of the executable
	name, err := os.Executable()
	if err != nil {
		panic(err)
	} else {
		return filepath.Base(name)
	}
}
