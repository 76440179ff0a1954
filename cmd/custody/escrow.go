package main

import (
	"fmt"
	"net/url"
	"time"

	"github.com/urfave/cli/v2"
)

const defaultEscrowDuration = 24 * time.Hour

var escrowIDFlag = cli.Uint64Flag{
	Name:     "id",
	Usage:    "the id of the escrow",
	Required: true,
}

var escrow = cli.Command{
	Name:  "escrow",
	Usage: "propose, accept, cancel and list escrows",
	Subcommands: []*cli.Command{
		{
			Name:  "propose",
			Usage: "propose an exchange of the offered assets for the requested ones",
			Flags: append(append(append([]cli.Flag{
				&accountFlag,
				&cli.StringFlag{
					Name:     "to",
					Usage:    "the counterparty account",
					Required: true,
				},
				&cli.DurationFlag{
					Name:  "expires-in",
					Usage: "the time window for the counterparty to accept",
					Value: defaultEscrowDuration,
				},
			}, assetFlags("offer-", "an offered")...),
				assetFlags("ask-", "a requested")...),
			),
			Action: proposeEscrowAction,
		},
		{
			Name:  "accept",
			Usage: "accept an escrow giving the requested assets",
			Flags: append([]cli.Flag{
				&accountFlag,
				&escrowIDFlag,
			}, assetFlags("", "a requested")...),
			Action: acceptEscrowAction,
		},
		{
			Name:  "cancel",
			Usage: "cancel an escrow, anyone can cancel after expiry",
			Flags: []cli.Flag{
				&accountFlag,
				&escrowIDFlag,
			},
			Action: cancelEscrowAction,
		},
		{
			Name:   "get",
			Usage:  "get an open escrow",
			Flags:  []cli.Flag{&escrowIDFlag},
			Action: getEscrowAction,
		},
		{
			Name:  "list",
			Usage: "list open escrows, filtered by proposer or counterparty",
			Flags: append([]cli.Flag{
				&cli.StringFlag{
					Name:  "from",
					Usage: "list escrows proposed by this account",
				},
				&cli.StringFlag{
					Name:  "to",
					Usage: "list escrows addressed to this account",
				},
			}, pageFlags...),
			Action: listEscrowsAction,
		},
	},
}

func proposeEscrowAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	offer, err := parseAssetFlags(ctx, "offer-")
	if err != nil {
		return err
	}
	ask, err := parseAssetFlags(ctx, "ask-")
	if err != nil {
		return err
	}

	reply, err := client.post("/v1/escrows", map[string]interface{}{
		"from":        getAccount(ctx),
		"to":          ctx.String("to"),
		"from_assets": offer,
		"to_assets":   ask,
		"expires_in":  ctx.Duration("expires-in").String(),
	})
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func acceptEscrowAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	ask, err := parseAssetFlags(ctx, "")
	if err != nil {
		return err
	}

	reply, err := client.post(
		fmt.Sprintf("/v1/escrows/%d/accept", ctx.Uint64("id")),
		map[string]interface{}{
			"acceptor":  getAccount(ctx),
			"to_assets": ask,
		},
	)
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func cancelEscrowAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.post(
		fmt.Sprintf("/v1/escrows/%d/cancel", ctx.Uint64("id")),
		map[string]interface{}{"canceller": getAccount(ctx)},
	)
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func getEscrowAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.get(fmt.Sprintf("/v1/escrows/%d", ctx.Uint64("id")))
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func listEscrowsAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	params := url.Values{}
	if from := ctx.String("from"); from != "" {
		params.Set("from", from)
	}
	if to := ctx.String("to"); to != "" {
		params.Set("to", to)
	}
	if len(params) <= 0 {
		params = pageParams(ctx)
	}

	reply, err := client.get(withQuery("/v1/escrows", params))
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}
