package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/urfave/cli/v2"
)

var account = cli.Command{
	Name:  "account",
	Usage: "inspect the offers, profile and balances of an account",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "account",
			Usage: "the account to inspect, defaults to the configured one",
		},
	},
	Subcommands: []*cli.Command{
		{
			Name:   "offers",
			Usage:  "list the ids of the offers the account is party to",
			Action: accountAction("offers"),
		},
		{
			Name:   "profile",
			Usage:  "get the trading profile and reliability score",
			Action: accountAction("profile"),
		},
		{
			Name:   "balances",
			Usage:  "get the ledger balances and allowances",
			Action: accountAction("balances"),
		},
	},
}

var approve = cli.Command{
	Name:  "approve",
	Usage: "allow the escrow to pull an amount of a fungible token",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "asset",
			Usage:    "the token in the form token:<id>",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "amount",
			Usage:    "the allowance, in whole units",
			Required: true,
		},
	},
	Action: approveAction,
}

func accountAction(resource string) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		name := ctx.String("account")
		if name == "" {
			state, err := getState()
			if err != nil {
				return err
			}
			name = state["account"]
		}
		if name == "" {
			return errors.New("either pass --account or set it with `config set account`")
		}
		return get(fmt.Sprintf(
			"/v1/accounts/%s/%s", url.PathEscape(name), resource,
		))
	}
}

func approveAction(ctx *cli.Context) error {
	return send(http.MethodPost, "/v1/ledger/approve", map[string]string{
		"asset":  ctx.String("asset"),
		"amount": ctx.String("amount"),
	})
}
