package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/casimir-one/casimir-go/pkg/commands"
	"github.com/casimir-one/casimir-go/pkg/messages"
	"github.com/casimir-one/casimir-go/pkg/services/user"
	"github.com/urfave/cli/v2"
)

var initiatorFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "id",
		Usage:    "Initiator user id",
		Required: true,
	},
	&cli.StringFlag{
		Name:    "priv-key",
		Usage:   "Initiator private key (hex); ignored when a wallet url is set",
		EnvVars: []string{"CASIMIR_PRIVATE_KEY"},
	},
}

func initiatorFromContext(c *cli.Context) user.Initiator {
	return user.Initiator{ID: c.String("id"), PrivKey: c.String("priv-key")}
}

func userCommand() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage portal users",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Register a new user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "pub-key", Required: true},
					&cli.StringSliceFlag{Name: "role", Usage: "Role as name or name:teamId"},
				},
				Action: createUserCommand,
			},
			{
				Name:  "update",
				Usage: "Update a user profile",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.IntFlag{Name: "status", Usage: "User status"},
					&cli.StringSliceFlag{Name: "attr", Usage: "Attribute value as id=value"},
					&cli.StringSliceFlag{Name: "file", Usage: "Attribute file as id=path"},
				}, initiatorFlags...),
				Action: updateUserCommand,
			},
			{
				Name:  "change-password",
				Usage: "Replace the signing authority of a user",
				Flags: append([]cli.Flag{
					&cli.StringSliceFlag{Name: "key", Usage: "Authority public key", Required: true},
					&cli.UintFlag{Name: "threshold", Value: 1, Usage: "Weight threshold"},
				}, initiatorFlags...),
				Action: changePasswordCommand,
			},
			{
				Name:      "get",
				Usage:     "Get a user by id or email",
				ArgsUsage: "<id|email>",
				Action:    getUserCommand,
			},
			{
				Name:  "list",
				Usage: "List users by ids, team or portal",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "ids"},
					&cli.StringFlag{Name: "team"},
					&cli.StringFlag{Name: "portal"},
				},
				Action: listUsersCommand,
			},
		},
	}
}

func parseRoles(values []string) []commands.Role {
	roles := make([]commands.Role, 0, len(values))
	for _, v := range values {
		name, team, _ := strings.Cut(v, ":")
		roles = append(roles, commands.Role{Role: name, TeamID: team})
	}
	return roles
}

// parseAttributes reads id=value pairs and id=path file attachments.
func parseAttributes(values, files []string) (map[string]interface{}, error) {
	attrs := make(map[string]interface{}, len(values)+len(files))
	for _, v := range values {
		id, value, ok := strings.Cut(v, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid attribute %q, expected id=value", v)
		}
		attrs[id] = value
	}
	for _, f := range files {
		id, path, ok := strings.Cut(f, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid file %q, expected id=path", f)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		file := &messages.File{Name: filepath.Base(path), Content: content}
		switch existing := attrs[id].(type) {
		case *messages.File:
			attrs[id] = []*messages.File{existing, file}
		case []*messages.File:
			attrs[id] = append(existing, file)
		default:
			attrs[id] = file
		}
	}
	return attrs, nil
}

func createUserCommand(c *cli.Context) error {
	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.users.CreateUser(c.Context, &user.CreateUserPayload{
		Email:  c.String("email"),
		PubKey: c.String("pub-key"),
		Roles:  parseRoles(c.StringSlice("role")),
	})
	if err != nil {
		return err
	}
	return printResult(c.App.Writer, res)
}

func updateUserCommand(c *cli.Context) error {
	attrs, err := parseAttributes(c.StringSlice("attr"), c.StringSlice("file"))
	if err != nil {
		return err
	}
	payload := &user.UpdatePayload{
		Initiator:  initiatorFromContext(c),
		Email:      c.String("email"),
		Attributes: attrs,
	}
	if c.IsSet("status") {
		payload.Status = commands.Int(c.Int("status"))
	}

	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.users.Update(c.Context, payload)
	if err != nil {
		return err
	}
	return printResult(c.App.Writer, res)
}

func changePasswordCommand(c *cli.Context) error {
	keys := c.StringSlice("key")
	auths := make([]commands.AuthorityKey, 0, len(keys))
	for _, k := range keys {
		auths = append(auths, commands.AuthorityKey{Key: k, Weight: 1})
	}

	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.users.ChangePassword(c.Context, &user.ChangePasswordPayload{
		Initiator: initiatorFromContext(c),
		Authority: &commands.Authority{Owner: commands.AuthorityOwner{
			Auths:           auths,
			WeightThreshold: uint32(c.Uint("threshold")),
		}},
	})
	if err != nil {
		return err
	}
	return printResult(c.App.Writer, res)
}

func getUserCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one user id or email")
	}
	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	resp, err := rt.users.GetOne(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	return printResponse(c.App.Writer, resp)
}

func listUsersCommand(c *cli.Context) error {
	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	switch {
	case c.IsSet("ids"):
		resp, err := rt.users.GetListByIds(c.Context, c.StringSlice("ids"))
		if err != nil {
			return err
		}
		return printResponse(c.App.Writer, resp)
	case c.IsSet("team"):
		resp, err := rt.users.GetListByTeam(c.Context, c.String("team"))
		if err != nil {
			return err
		}
		return printResponse(c.App.Writer, resp)
	case c.IsSet("portal"):
		resp, err := rt.users.GetListByPortal(c.Context, c.String("portal"))
		if err != nil {
			return err
		}
		return printResponse(c.App.Writer, resp)
	default:
		resp, err := rt.users.GetList(c.Context, nil)
		if err != nil {
			return err
		}
		return printResponse(c.App.Writer, resp)
	}
}

func proposalCommand() *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{Name: "proposal", Usage: "Proposal id", Required: true},
		&cli.StringFlag{Name: "account", Usage: "Approving account", Required: true},
	}, initiatorFlags...)

	return &cli.Command{
		Name:  "proposal",
		Usage: "Accept or decline proposals",
		Subcommands: []*cli.Command{
			{
				Name:  "accept",
				Usage: "Accept a proposal",
				Flags: append([]cli.Flag{
					&cli.Uint64Flag{Name: "batch-weight", Usage: "Batch weight of the approval", Required: true},
				}, flags...),
				Action: func(c *cli.Context) error {
					rt, err := newRuntime(c)
					if err != nil {
						return err
					}
					defer rt.Close()

					res, err := rt.users.AcceptProposal(c.Context, &user.AcceptProposalPayload{
						Initiator:   initiatorFromContext(c),
						ProposalID:  c.String("proposal"),
						Account:     c.String("account"),
						BatchWeight: commands.Uint64(c.Uint64("batch-weight")),
					})
					if err != nil {
						return err
					}
					return printResult(c.App.Writer, res)
				},
			},
			{
				Name:  "decline",
				Usage: "Decline a proposal",
				Flags: flags,
				Action: func(c *cli.Context) error {
					rt, err := newRuntime(c)
					if err != nil {
						return err
					}
					defer rt.Close()

					res, err := rt.users.DeclineProposal(c.Context, &user.DeclineProposalPayload{
						Initiator:  initiatorFromContext(c),
						ProposalID: c.String("proposal"),
						Account:    c.String("account"),
					})
					if err != nil {
						return err
					}
					return printResult(c.App.Writer, res)
				},
			},
		},
	}
}
