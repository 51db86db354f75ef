package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/coursetube/internal/models"
	"github.com/urfave/cli/v3"
)

type userJSON struct {
	ID       string `json:"id"`
	Sequence int    `json:"sequence"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

func toUserJSON(u *models.User) userJSON {
	return userJSON{ID: u.ID(), Sequence: u.Sequence(), Email: u.Email(), Name: u.Name()}
}

// UsersCreate registers a learner.
func (r *Runner) UsersCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStore(); err != nil {
		return err
	}

	email := strings.TrimSpace(cmd.String("email"))
	name := strings.TrimSpace(cmd.String("name"))

	user := models.NewUser(0, email, name)
	if err := r.users.Create(user); err != nil {
		return err
	}

	r.logger.Info("user created", "id", user.ID(), "email", email)
	return r.writePlain("✓ Created user %s (%s)\n", user.ID(), user.Email())
}

// UsersList prints every active user.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStore(); err != nil {
		return err
	}

	users, err := r.users.List(map[string]any{})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]userJSON, 0, len(users))
		for _, u := range users {
			out = append(out, toUserJSON(u))
		}
		return r.writeJSON(out, true)
	}

	if len(users) == 0 {
		return r.writePlain("No users yet. Create one with: coursetube users create --email you@example.com\n")
	}

	r.writePlain("Found %d users:\n\n", len(users))
	for _, u := range users {
		label := u.Email()
		if u.Name() != "" {
			label = fmt.Sprintf("%s <%s>", u.Name(), u.Email())
		}
		r.writePlain("%d. %s\n   ID: %s\n", u.Sequence(), label, u.ID())
	}
	return nil
}
