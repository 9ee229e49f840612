package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/warbler/internal/common"
	"github.com/dmitrijs2005/warbler/internal/server/models"
)

func (a *App) migrate(ctx context.Context, _ []string) error {
	if err := a.migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Fprintln(a.out, "migrations applied")
	return nil
}

func (a *App) promptPassword() (string, error) {
	pw, err := GetPassword(a.reader, a.out)
	if err != nil {
		return "", fmt.Errorf("error reading password: %w", err)
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

func (a *App) signup(ctx context.Context, args []string) error {
	var imageURL string
	if len(args) > 2 {
		imageURL = args[2]
	}

	password, err := a.promptPassword()
	if err != nil {
		return err
	}

	u, err := a.credentials.Register(ctx, args[0], args[1], password, imageURL)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created user %s (id %d)\n", u.UserName, u.ID)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	password, err := a.promptPassword()
	if err != nil {
		return err
	}

	token, err := a.credentials.Login(ctx, args[0], password)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, token)
	return nil
}

func (a *App) profile(ctx context.Context, args []string) error {
	u, err := a.credentials.GetUserByName(ctx, args[0])
	if err != nil {
		return err
	}
	p, err := a.credentials.Profile(ctx, u.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s> id=%d followers=%d following=%d messages=%d\n",
		p.User.UserName, p.User.Email, p.User.ID, p.Followers, p.Following, p.Messages)
	return nil
}

// caller resolves the token to a user id and the named user to a record.
func (a *App) caller(ctx context.Context, token, username string) (int64, *models.User, error) {
	callerID, err := a.credentials.UserIDFromToken(token)
	if err != nil {
		return 0, nil, err
	}
	if username == "" {
		return callerID, nil, nil
	}
	target, err := a.credentials.GetUserByName(ctx, username)
	if err != nil {
		return 0, nil, fmt.Errorf("user %q: %w", username, err)
	}
	return callerID, target, nil
}

func (a *App) follow(ctx context.Context, args []string) error {
	callerID, target, err := a.caller(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if err := a.follows.FollowNow(ctx, callerID, target.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "now following %s\n", target.UserName)
	return nil
}

func (a *App) unfollow(ctx context.Context, args []string) error {
	callerID, target, err := a.caller(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if err := a.follows.UnfollowNow(ctx, callerID, target.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "no longer following %s\n", target.UserName)
	return nil
}

func (a *App) followers(ctx context.Context, args []string) error {
	return a.listUsers(ctx, args[0], a.follows.Followers)
}

func (a *App) following(ctx context.Context, args []string) error {
	return a.listUsers(ctx, args[0], a.follows.Following)
}

func (a *App) listUsers(ctx context.Context, username string, list func(context.Context, int64) ([]*models.User, error)) error {
	u, err := a.credentials.GetUserByName(ctx, username)
	if err != nil {
		return fmt.Errorf("user %q: %w", username, err)
	}
	users, err := list(ctx, u.ID)
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Fprintln(a.out, u.UserName)
	}
	return nil
}

func (a *App) post(ctx context.Context, args []string) error {
	callerID, _, err := a.caller(ctx, args[0], "")
	if err != nil {
		return err
	}
	m, err := a.messages.Post(ctx, callerID, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "posted message %d\n", m.ID)
	return nil
}

func (a *App) like(ctx context.Context, args []string) error {
	callerID, _, err := a.caller(ctx, args[0], "")
	if err != nil {
		return err
	}
	messageID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: message id %q is not a number", ErrUsage, args[1])
	}
	state, err := a.likes.ToggleLike(ctx, callerID, messageID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "message %d %s\n", messageID, state)
	return nil
}

func (a *App) listLikes(ctx context.Context, args []string) error {
	u, err := a.credentials.GetUserByName(ctx, args[0])
	if err != nil {
		return fmt.Errorf("user %q: %w", args[0], err)
	}
	ids, err := a.likes.LikedMessages(ctx, u.ID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(a.out, id)
	}
	return nil
}
