package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/casimir-one/casimir-go/pkg/commands"
	"github.com/urfave/cli/v2"
)

// readJSONArg decodes the JSON document at path into v; "-" reads stdin.
func readJSONArg(path string, v interface{}) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func attributesCommand() *cli.Command {
	return &cli.Command{
		Name:  "attributes",
		Usage: "Manage portal attributes",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List attributes, optionally by scope",
				Flags: []cli.Flag{&cli.StringFlag{Name: "scope"}},
				Action: func(c *cli.Context) error {
					rt, err := newRuntime(c)
					if err != nil {
						return err
					}
					defer rt.Close()

					if c.IsSet("scope") {
						resp, err := rt.attributes.GetListByScope(c.Context, c.String("scope"))
						if err != nil {
							return err
						}
						return printResponse(c.App.Writer, resp)
					}
					resp, err := rt.attributes.GetList(c.Context)
					if err != nil {
						return err
					}
					return printResponse(c.App.Writer, resp)
				},
			},
			{
				Name:      "get",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					rt, err := newRuntime(c)
					if err != nil {
						return err
					}
					defer rt.Close()

					resp, err := rt.attributes.GetOne(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					return printResponse(c.App.Writer, resp)
				},
			},
			{
				Name:      "create",
				Usage:     "Create an attribute from a JSON definition",
				ArgsUsage: "<file|->",
				Action: func(c *cli.Context) error {
					var attr commands.CreateAttribute
					if err := readJSONArg(c.Args().First(), &attr); err != nil {
						return err
					}
					rt, err := newRuntime(c)
					if err != nil {
						return err
					}
					defer rt.Close()

					res, err := rt.attributes.Create(c.Context, attr)
					if err != nil {
						return err
					}
					return printResult(c.App.Writer, res)
				},
			},
			{
				Name:      "update",
				Usage:     "Update an attribute from a JSON definition",
				ArgsUsage: "<file|->",
				Action: func(c *cli.Context) error {
					var attr commands.UpdateAttribute
					if err := readJSONArg(c.Args().First(), &attr); err != nil {
						return err
					}
					rt, err := newRuntime(c)
					if err != nil {
						return err
					}
					defer rt.Close()

					res, err := rt.attributes.Update(c.Context, attr)
					if err != nil {
						return err
					}
					return printResult(c.App.Writer, res)
				},
			},
			{
				Name:      "delete",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					rt, err := newRuntime(c)
					if err != nil {
						return err
					}
					defer rt.Close()

					res, err := rt.attributes.Delete(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					return printResult(c.App.Writer, res)
				},
			},
			{
				Name:  "mappings",
				Usage: "Show the attribute mappings, or replace them from a JSON file",
				Flags: []cli.Flag{&cli.StringFlag{Name: "set", Usage: "JSON file with the new mappings"}},
				Action: func(c *cli.Context) error {
					rt, err := newRuntime(c)
					if err != nil {
						return err
					}
					defer rt.Close()

					if !c.IsSet("set") {
						resp, err := rt.attributes.GetMappings(c.Context)
						if err != nil {
							return err
						}
						return printResponse(c.App.Writer, resp)
					}
					var mappings map[string]interface{}
					if err := readJSONArg(c.String("set"), &mappings); err != nil {
						return err
					}
					res, err := rt.attributes.UpdateMappings(c.Context, mappings)
					if err != nil {
						return err
					}
					return printResult(c.App.Writer, res)
				},
			},
		},
	}
}

func layoutsCommand() *cli.Command {
	return &cli.Command{
		Name:  "layouts",
		Usage: "Manage portal layouts",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Flags: []cli.Flag{&cli.StringFlag{Name: "scope"}},
				Action: func(c *cli.Context) error {
					rt, err := newRuntime(c)
					if err != nil {
						return err
					}
					defer rt.Close()

					if c.IsSet("scope") {
						resp, err := rt.layouts.GetLayoutsByScope(c.Context, c.String("scope"))
						if err != nil {
							return err
						}
						return printResponse(c.App.Writer, resp)
					}
					resp, err := rt.layouts.GetLayouts(c.Context)
					if err != nil {
						return err
					}
					return printResponse(c.App.Writer, resp)
				},
			},
			{
				Name:      "get",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					rt, err := newRuntime(c)
					if err != nil {
						return err
					}
					defer rt.Close()

					resp, err := rt.layouts.GetLayout(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					return printResponse(c.App.Writer, resp)
				},
			},
			{
				Name:      "create",
				ArgsUsage: "<file|->",
				Action: func(c *cli.Context) error {
					var l commands.CreateLayout
					if err := readJSONArg(c.Args().First(), &l); err != nil {
						return err
					}
					rt, err := newRuntime(c)
					if err != nil {
						return err
					}
					defer rt.Close()

					res, err := rt.layouts.CreateLayout(c.Context, l)
					if err != nil {
						return err
					}
					return printResult(c.App.Writer, res)
				},
			},
			{
				Name:      "update",
				ArgsUsage: "<file|->",
				Action: func(c *cli.Context) error {
					var l commands.UpdateLayout
					if err := readJSONArg(c.Args().First(), &l); err != nil {
						return err
					}
					rt, err := newRuntime(c)
					if err != nil {
						return err
					}
					defer rt.Close()

					res, err := rt.layouts.UpdateLayout(c.Context, l)
					if err != nil {
						return err
					}
					return printResult(c.App.Writer, res)
				},
			},
			{
				Name:      "delete",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					rt, err := newRuntime(c)
					if err != nil {
						return err
					}
					defer rt.Close()

					res, err := rt.layouts.DeleteLayout(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					return printResult(c.App.Writer, res)
				},
			},
			{
				Name:  "mappings",
				Flags: []cli.Flag{&cli.StringFlag{Name: "set", Usage: "JSON file with the new mappings"}},
				Action: func(c *cli.Context) error {
					rt, err := newRuntime(c)
					if err != nil {
						return err
					}
					defer rt.Close()

					if !c.IsSet("set") {
						resp, err := rt.layouts.GetMappings(c.Context)
						if err != nil {
							return err
						}
						return printResponse(c.App.Writer, resp)
					}
					var mappings map[string]interface{}
					if err := readJSONArg(c.String("set"), &mappings); err != nil {
						return err
					}
					res, err := rt.layouts.UpdateMappings(c.Context, mappings)
					if err != nil {
						return err
					}
					return printResult(c.App.Writer, res)
				},
			},
		},
	}
}

func journalCommand() *cli.Command {
	return &cli.Command{
		Name:      "journal",
		Usage:     "List journaled transactions of an entity",
		ArgsUsage: "<entity id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one entity id")
			}
			rt, err := newRuntime(c)
			if err != nil {
				return err
			}
			defer rt.Close()

			if rt.journal == nil {
				return fmt.Errorf("journal is disabled; set --journal")
			}
			records, err := rt.journal.ListByEntity(c.Args().First())
			if err != nil {
				return err
			}
			return printJSON(c.App.Writer, records)
		},
	}
}
