package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"
)

var offer = cli.Command{
	Name:  "offer",
	Usage: "create, accept and manage offers",
	Subcommands: []*cli.Command{
		{
			Name:  "create",
			Usage: "lock the maker asset in escrow and publish a new offer",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "maker_asset",
					Usage:    "the asset offered, either native or token:<id>",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "maker_amount",
					Usage:    "the amount offered, in whole units",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "taker_asset",
					Usage:    "the asset requested, either native or token:<id>",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "taker_amount",
					Usage:    "the amount requested, in whole units",
					Required: true,
				},
				&cli.DurationFlag{
					Name:  "lifetime",
					Usage: "the time after which the offer expires",
					Value: 24 * time.Hour,
				},
				&cli.StringFlag{
					Name:  "allowed_taker",
					Usage: "the only account allowed to accept the offer",
				},
				&cli.StringFlag{
					Name:  "value",
					Usage: "the native amount attached, covering stake and native maker amount",
				},
			},
			Action: createOfferAction,
		},
		{
			Name:      "accept",
			Usage:     "settle an open offer as taker",
			ArgsUsage: "<offer_id>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "value",
					Usage: "the native amount attached, if the taker asset is native",
				},
			},
			Action: acceptOfferAction,
		},
		{
			Name:      "cancel",
			Usage:     "request the cancellation of an offer, starting the cooldown",
			ArgsUsage: "<offer_id>",
			Action:    offerTransitionAction("cancel"),
		},
		{
			Name:      "finalize-cancel",
			Usage:     "cancel an offer once the cooldown is over",
			ArgsUsage: "<offer_id>",
			Action:    offerTransitionAction("finalize-cancel"),
		},
		{
			Name:      "reclaim",
			Usage:     "get back the assets of an expired offer",
			ArgsUsage: "<offer_id>",
			Action:    offerTransitionAction("reclaim"),
		},
		{
			Name:      "get",
			Usage:     "get an offer by id",
			ArgsUsage: "<offer_id>",
			Action:    getOfferAction,
		},
		{
			Name:  "list",
			Usage: "list the active offers",
			Flags: []cli.Flag{
				&cli.Uint64Flag{
					Name:  "offset",
					Usage: "the number of active offers to skip",
				},
				&cli.Uint64Flag{
					Name:  "limit",
					Usage: "the max number of offers returned",
					Value: 20,
				},
			},
			Action: listOffersAction,
		},
	},
}

func createOfferAction(ctx *cli.Context) error {
	return send(http.MethodPost, "/v1/offers", map[string]interface{}{
		"maker_asset":   ctx.String("maker_asset"),
		"maker_amount":  ctx.String("maker_amount"),
		"taker_asset":   ctx.String("taker_asset"),
		"taker_amount":  ctx.String("taker_amount"),
		"expiry":        time.Now().Add(ctx.Duration("lifetime")).Unix(),
		"allowed_taker": ctx.String("allowed_taker"),
		"value":         ctx.String("value"),
	})
}

func acceptOfferAction(ctx *cli.Context) error {
	id, err := offerIDArg(ctx)
	if err != nil {
		return err
	}
	return send(
		http.MethodPost, fmt.Sprintf("/v1/offers/%d/accept", id),
		map[string]string{"value": ctx.String("value")},
	)
}

func offerTransitionAction(transition string) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		id, err := offerIDArg(ctx)
		if err != nil {
			return err
		}
		return send(
			http.MethodPost, fmt.Sprintf("/v1/offers/%d/%s", id, transition), nil,
		)
	}
}

func getOfferAction(ctx *cli.Context) error {
	id, err := offerIDArg(ctx)
	if err != nil {
		return err
	}
	return get(fmt.Sprintf("/v1/offers/%d", id))
}

func listOffersAction(ctx *cli.Context) error {
	return get(fmt.Sprintf(
		"/v1/offers?offset=%d&limit=%d", ctx.Uint64("offset"), ctx.Uint64("limit"),
	))
}

func offerIDArg(ctx *cli.Context) (uint64, error) {
	if ctx.NArg() < 1 {
		return 0, &invalidUsageError{ctx, ctx.Command.Name}
	}
	id, err := strconv.ParseUint(ctx.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid offer id %q", ctx.Args().First())
	}
	return id, nil
}
