// Package cli implements the warbler operator command line: a thin layer
// over the credential, follow and like services for manual use.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/warbler/internal/server/models"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

type Credentials interface {
	Register(ctx context.Context, username, email, password, imageURL string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	UserIDFromToken(token string) (int64, error)
	GetUserByName(ctx context.Context, username string) (*models.User, error)
	Profile(ctx context.Context, id int64) (*models.Profile, error)
}

type Follows interface {
	FollowNow(ctx context.Context, followerID, followedID int64) error
	UnfollowNow(ctx context.Context, followerID, followedID int64) error
	Followers(ctx context.Context, userID int64) ([]*models.User, error)
	Following(ctx context.Context, userID int64) ([]*models.User, error)
}

type Likes interface {
	ToggleLike(ctx context.Context, userID, messageID int64) (models.LikeState, error)
	LikedMessages(ctx context.Context, userID int64) ([]int64, error)
}

type Messages interface {
	Post(ctx context.Context, userID int64, text string) (*models.Message, error)
}

type Migrator interface {
	Migrate(ctx context.Context) error
}

// App dispatches one command per Run.
type App struct {
	credentials Credentials
	follows     Follows
	likes       Likes
	messages    Messages
	migrator    Migrator
	reader      *bufio.Reader
	out         io.Writer
}

func NewApp(c Credentials, f Follows, l Likes, m Messages, mig Migrator, in io.Reader, out io.Writer) *App {
	return &App{
		credentials: c,
		follows:     f,
		likes:       l,
		messages:    m,
		migrator:    mig,
		reader:      bufio.NewReader(in),
		out:         out,
	}
}

type command struct {
	usage string
	args  int
	run   func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"migrate":   {usage: "migrate", run: (*App).migrate},
	"signup":    {usage: "signup <username> <email> [image_url]", args: 2, run: (*App).signup},
	"login":     {usage: "login <username>", args: 1, run: (*App).login},
	"profile":   {usage: "profile <username>", args: 1, run: (*App).profile},
	"follow":    {usage: "follow <token> <username>", args: 2, run: (*App).follow},
	"unfollow":  {usage: "unfollow <token> <username>", args: 2, run: (*App).unfollow},
	"followers": {usage: "followers <username>", args: 1, run: (*App).followers},
	"following": {usage: "following <username>", args: 1, run: (*App).following},
	"post":      {usage: "post <token> <text>", args: 2, run: (*App).post},
	"like":      {usage: "like <token> <message_id>", args: 2, run: (*App).like},
	"likes":     {usage: "likes <username>", args: 1, run: (*App).listLikes},
}

var commandOrder = []string{"migrate", "signup", "login", "profile", "follow", "unfollow", "followers", "following", "post", "like", "likes"}

// Run executes args[0] with the remaining arguments.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" {
		a.help()
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		a.help()
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	if len(args)-1 < cmd.args {
		return fmt.Errorf("%w: warbler %s", ErrUsage, cmd.usage)
	}
	return cmd.run(a, ctx, args[1:])
}

func (a *App) help() {
	fmt.Fprintln(a.out, "Usage: warbler [flags] <command> [args]")
	fmt.Fprintln(a.out, "Commands:")
	for _, name := range commandOrder {
		fmt.Fprintln(a.out, "  "+commands[name].usage)
	}
}
