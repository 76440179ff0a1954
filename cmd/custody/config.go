package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"
)

var (
	apiServerFlag = cli.StringFlag{
		Name:  "apiserver",
		Usage: "custodyd api address",
		Value: "http://localhost:9945",
	}

	tokenFlag = cli.StringFlag{
		Name:  "token",
		Usage: "the access token of the account or of the admin",
		Value: "",
	}

	accountFlag = cli.StringFlag{
		Name:  "account",
		Usage: "the account to act as, must match the token subject",
		Value: "",
	}
)

var config = cli.Command{
	Name:   "config",
	Usage:  "Print local configuration of the custody CLI",
	Action: configAction,
	Subcommands: []*cli.Command{
		{
			Name:   "set",
			Usage:  "set a <key> <value> in the local state",
			Action: configSetAction,
		},
		{
			Name:   "init",
			Usage:  "initialize the local state with flags",
			Action: configInitAction,
			Flags: []cli.Flag{
				&apiServerFlag,
				&tokenFlag,
				&accountFlag,
			},
		},
	},
}

func configAction(ctx *cli.Context) error {
	state, err := getState()
	if err != nil {
		return err
	}

	for key, value := range state {
		if key == "token" && len(value) > 0 {
			value = "********"
		}
		fmt.Println(key + ": " + value)
	}

	return nil
}

func configInitAction(c *cli.Context) error {
	return setState(map[string]string{
		"apiserver": c.String("apiserver"),
		"token":     c.String("token"),
		"account":   c.String("account"),
	})
}

func configSetAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("key and value are missing")
	}

	key := c.Args().Get(0)
	value := c.Args().Get(1)

	if err := setState(map[string]string{key: value}); err != nil {
		return err
	}

	fmt.Printf("%s has been set\n", key)

	return nil
}

// getAccount returns the account given with the flag, or the one in the
// local state.
func getAccount(ctx *cli.Context) string {
	if account := ctx.String("account"); account != "" {
		return account
	}
	state, err := getState()
	if err != nil {
		return ""
	}
	return state["account"]
}
