package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"
)

var allowEntryFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "name",
		Usage:    "the account or contract name",
		Required: true,
	},
	&cli.BoolFlag{
		Name:  "allowed",
		Usage: "add the name to the allow list",
	},
	&cli.BoolFlag{
		Name:  "blocked",
		Usage: "add the name to the block list",
	},
}

var admin = cli.Command{
	Name:  "admin",
	Usage: "privileged operations, the token must be an admin one",
	Subcommands: []*cli.Command{
		{
			Name:   "pause",
			Usage:  "pause withdrawals and escrows",
			Action: pauseAction,
		},
		{
			Name:   "resume",
			Usage:  "resume withdrawals and escrows",
			Action: resumeAction,
		},
		{
			Name:   "setactor",
			Usage:  "set the allow and block flags of an account",
			Flags:  allowEntryFlags,
			Action: setActorAction,
		},
		{
			Name:   "setcontract",
			Usage:  "set the allow and block flags of a token contract",
			Flags:  allowEntryFlags,
			Action: setContractAction,
		},
		{
			Name:   "listactors",
			Usage:  "list the accounts with allow or block flags",
			Action: listActorsAction,
		},
		{
			Name:   "listcontracts",
			Usage:  "list the contracts with allow or block flags",
			Action: listContractsAction,
		},
		{
			Name:  "withdraw",
			Usage: "withdraw assets of an account bypassing pause and allow lists",
			Flags: append([]cli.Flag{
				&cli.StringFlag{
					Name:     "account",
					Usage:    "the account to withdraw from",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "memo",
					Usage: "the memo of the release transfers",
				},
			}, assetFlags("", "the")...),
			Action: adminWithdrawAction,
		},
		{
			Name:  "notify",
			Usage: "notify an incoming transfer to the custody account",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "contract",
					Usage:    "the contract that executed the transfer",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "from",
					Usage:    "the sender account",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "to",
					Usage:    "the receiver account",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "quantity",
					Usage: "the transferred token quantity, ie. \"1.0000 XPR\"",
				},
				&cli.StringSliceFlag{
					Name:  "asset-id",
					Usage: "a transferred nft id",
				},
				&cli.StringFlag{
					Name:  "memo",
					Usage: "the memo of the transfer",
				},
			},
			Action: notifyAction,
		},
		{
			Name:   "sweep",
			Usage:  "cancel all expired escrows refunding the proposers",
			Action: sweepAction,
		},
		{
			Name:  "retryrelease",
			Usage: "reschedule a failed release request",
			Flags: []cli.Flag{
				&cli.Uint64Flag{
					Name:     "id",
					Usage:    "the id of the release request",
					Required: true,
				},
			},
			Action: retryReleaseAction,
		},
		{
			Name:  "token",
			Usage: "issue an access token",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "account",
					Usage:    "the subject of the token",
					Required: true,
				},
				&cli.BoolFlag{
					Name:  "admin",
					Usage: "issue an admin token",
				},
				&cli.DurationFlag{
					Name:  "ttl",
					Usage: "the validity of the token, 0 for the default",
				},
			},
			Action: tokenAction,
		},
	},
}

func pauseAction(ctx *cli.Context) error {
	return setPaused(true)
}

func resumeAction(ctx *cli.Context) error {
	return setPaused(false)
}

func setPaused(paused bool) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.post("/v1/admin/pause", map[string]bool{"paused": paused})
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func setActorAction(ctx *cli.Context) error {
	return setAllowEntry(ctx, "/v1/admin/actors")
}

func setContractAction(ctx *cli.Context) error {
	return setAllowEntry(ctx, "/v1/admin/contracts")
}

func setAllowEntry(ctx *cli.Context, path string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.post(path, map[string]interface{}{
		"name":    ctx.String("name"),
		"allowed": ctx.Bool("allowed"),
		"blocked": ctx.Bool("blocked"),
	})
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func listActorsAction(ctx *cli.Context) error {
	return getAndPrint("/v1/admin/actors")
}

func listContractsAction(ctx *cli.Context) error {
	return getAndPrint("/v1/admin/contracts")
}

func getAndPrint(path string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.get(path)
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func adminWithdrawAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	assets, err := parseAssetFlags(ctx, "")
	if err != nil {
		return err
	}
	if len(assets.Tokens) <= 0 && len(assets.Nfts) <= 0 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	reply, err := client.post("/v1/admin/withdraw", map[string]interface{}{
		"account": ctx.String("account"),
		"assets":  assets,
		"memo":    ctx.String("memo"),
	})
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func notifyAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	notification := map[string]interface{}{
		"contract": ctx.String("contract"),
		"from":     ctx.String("from"),
		"to":       ctx.String("to"),
		"memo":     ctx.String("memo"),
	}
	if quantity := ctx.String("quantity"); quantity != "" {
		notification["quantity"] = quantity
	}
	if ids := ctx.StringSlice("asset-id"); len(ids) > 0 {
		assetIDs := make([]uint64, 0, len(ids))
		for _, s := range ids {
			id, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid asset id %q", s)
			}
			assetIDs = append(assetIDs, id)
		}
		notification["asset_ids"] = assetIDs
	}

	reply, err := client.post("/v1/notifications/transfer", notification)
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func sweepAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.post("/v1/admin/sweep", nil)
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func retryReleaseAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.post(
		fmt.Sprintf("/v1/admin/releases/%d/retry", ctx.Uint64("id")), nil,
	)
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func tokenAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	req := map[string]interface{}{
		"account": ctx.String("account"),
		"admin":   ctx.Bool("admin"),
	}
	if ttl := ctx.Duration("ttl"); ttl > 0 {
		req["ttl"] = ttl.String()
	}

	reply, err := client.post("/v1/admin/tokens", req)
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}
