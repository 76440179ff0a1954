package main

import (
	"fmt"
	"net/url"

	"github.com/urfave/cli/v2"
)

var addwebhook = cli.Command{
	Name:  "addwebhook",
	Usage: "register a webhook for a topic of ledger events",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "topic",
			Usage:    "the topic to subscribe, ie. DEPOSIT, WITHDRAWAL, ESCROW_SETTLED or * for any",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "endpoint",
			Usage:    "the url where to post the events",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "secret",
			Usage: "the secret used to sign the events",
		},
	},
	Action: addWebhookAction,
}

var removewebhook = cli.Command{
	Name:  "removewebhook",
	Usage: "unregister a webhook",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "id",
			Usage:    "the id of the webhook",
			Required: true,
		},
	},
	Action: removeWebhookAction,
}

var listwebhooks = cli.Command{
	Name:  "listwebhooks",
	Usage: "list the registered webhooks, optionally filtered by topic",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "topic",
			Usage: "the topic of the webhooks to list",
		},
	},
	Action: listWebhooksAction,
}

func addWebhookAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.post("/v1/webhooks", map[string]string{
		"topic":    ctx.String("topic"),
		"endpoint": ctx.String("endpoint"),
		"secret":   ctx.String("secret"),
	})
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func removeWebhookAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if _, err := client.delete(
		fmt.Sprintf("/v1/webhooks/%s", url.PathEscape(ctx.String("id"))),
	); err != nil {
		return err
	}

	fmt.Println("webhook removed")
	return nil
}

func listWebhooksAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	params := url.Values{}
	if topic := ctx.String("topic"); topic != "" {
		params.Set("topic", topic)
	}

	reply, err := client.get(withQuery("/v1/webhooks", params))
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}
