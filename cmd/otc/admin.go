package main

import (
	"net/http"
	"net/url"

	"github.com/urfave/cli/v2"
)

var admin = cli.Command{
	Name:  "admin",
	Usage: "manage the escrow parameters, fees and webhooks",
	Subcommands: []*cli.Command{
		{
			Name:      "minstake",
			Usage:     "update the minimum native stake of new offers",
			ArgsUsage: "<amount>",
			Action: func(ctx *cli.Context) error {
				if ctx.NArg() < 1 {
					return &invalidUsageError{ctx, ctx.Command.Name}
				}
				return send(http.MethodPut, "/v1/admin/min-stake", map[string]string{
					"amount": ctx.Args().First(),
				})
			},
		},
		{
			Name:  "fee",
			Usage: "update the platform fee",
			Flags: []cli.Flag{
				&cli.Uint64Flag{
					Name:     "basis_points",
					Usage:    "the fee charged to both parties, in basis points",
					Required: true,
				},
			},
			Action: func(ctx *cli.Context) error {
				return send(http.MethodPut, "/v1/admin/fee", map[string]uint64{
					"basis_points": ctx.Uint64("basis_points"),
				})
			},
		},
		{
			Name:      "feerecipient",
			Usage:     "update the account receiving the platform fees",
			ArgsUsage: "<account>",
			Action:    accountUpdateAction("/v1/admin/fee-recipient"),
		},
		{
			Name:      "transfer",
			Usage:     "hand over the administrator role",
			ArgsUsage: "<account>",
			Action:    accountUpdateAction("/v1/admin/admin"),
		},
		{
			Name:  "withdrawfees",
			Usage: "pay the accrued native fees to the fee recipient",
			Action: func(_ *cli.Context) error {
				return send(http.MethodPost, "/v1/admin/withdraw-fees", nil)
			},
		},
		&addwebhook,
		&listwebhooks,
		&removewebhook,
	},
}

var addwebhook = cli.Command{
	Name:  "addwebhook",
	Usage: "add a webhook registered for some event",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "endpoint",
			Usage:    "the endpoint where to notify the webhook",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "secret",
			Usage: "the eventual secret to authenticate requests",
			Value: "",
		},
		&cli.StringFlag{
			Name:     "topic",
			Usage:    "the event type for which the webhook gets notified, or * for all",
			Required: true,
		},
	},
	Action: func(ctx *cli.Context) error {
		return send(http.MethodPost, "/v1/admin/webhooks", map[string]string{
			"topic":    ctx.String("topic"),
			"endpoint": ctx.String("endpoint"),
			"secret":   ctx.String("secret"),
		})
	},
}

var listwebhooks = cli.Command{
	Name:  "listwebhooks",
	Usage: "list all webhook registered for some event",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "topic",
			Usage: "the event type to filter hooks by",
		},
	},
	Action: func(ctx *cli.Context) error {
		path := "/v1/admin/webhooks"
		if topic := ctx.String("topic"); topic != "" {
			path += "?topic=" + url.QueryEscape(topic)
		}
		var resp map[string]interface{}
		if err := doRequest(http.MethodGet, path, nil, &resp, true); err != nil {
			return err
		}
		printRespJSON(resp)
		return nil
	},
}

var removewebhook = cli.Command{
	Name:      "removewebhook",
	Usage:     "remove some webhook",
	ArgsUsage: "<id>",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() < 1 {
			return &invalidUsageError{ctx, ctx.Command.Name}
		}
		return send(
			http.MethodDelete,
			"/v1/admin/webhooks/"+url.PathEscape(ctx.Args().First()), nil,
		)
	},
}

func accountUpdateAction(path string) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		if ctx.NArg() < 1 {
			return &invalidUsageError{ctx, ctx.Command.Name}
		}
		return send(http.MethodPut, path, map[string]string{
			"account": ctx.Args().First(),
		})
	}
}
