package main

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/urfave/cli/v2"
)

var status = cli.Command{
	Name:   "status",
	Usage:  "returns info about the status of the daemon",
	Action: statusAction,
}

var balance = cli.Command{
	Name:  "balance",
	Usage: "get the balance of an account",
	Flags: []cli.Flag{
		&accountFlag,
	},
	Action: balanceAction,
}

var withdraw = cli.Command{
	Name:  "withdraw",
	Usage: "withdraw assets from the account to the account itself",
	Flags: append([]cli.Flag{
		&accountFlag,
	}, assetFlags("", "the")...),
	Action: withdrawAction,
}

var listdeposits = cli.Command{
	Name:  "listdeposits",
	Usage: "list the deposits of an account, or of all accounts for the admin",
	Flags: append([]cli.Flag{
		&accountFlag,
	}, pageFlags...),
	Action: listDepositsAction,
}

var listwithdrawals = cli.Command{
	Name:  "listwithdrawals",
	Usage: "list the withdrawals of an account, or of all accounts for the admin",
	Flags: append([]cli.Flag{
		&accountFlag,
	}, pageFlags...),
	Action: listWithdrawalsAction,
}

var listreleases = cli.Command{
	Name:   "listreleases",
	Usage:  "list the release requests in the outbox",
	Flags:  pageFlags,
	Action: listReleasesAction,
}

func statusAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.get("/v1/status")
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func balanceAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	account := getAccount(ctx)
	if account == "" {
		return errors.New("missing account")
	}

	reply, err := client.get(fmt.Sprintf("/v1/accounts/%s/balance", url.PathEscape(account)))
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func withdrawAction(ctx *cli.Context) error {
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

	reply, err := client.post("/v1/withdraw", map[string]interface{}{
		"account": getAccount(ctx),
		"assets":  assets,
	})
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func listDepositsAction(ctx *cli.Context) error {
	return listHistory(ctx, "/v1/deposits")
}

func listWithdrawalsAction(ctx *cli.Context) error {
	return listHistory(ctx, "/v1/withdrawals")
}

func listHistory(ctx *cli.Context, path string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	params := pageParams(ctx)
	if account := getAccount(ctx); account != "" {
		params.Set("account", account)
	}

	reply, err := client.get(withQuery(path, params))
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func listReleasesAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply, err := client.get(withQuery("/v1/releases", pageParams(ctx)))
	if err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}
