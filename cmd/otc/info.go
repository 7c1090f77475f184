package main

import (
	"github.com/urfave/cli/v2"
)

var info = cli.Command{
	Name:   "info",
	Usage:  "get version and settings of the daemon",
	Action: infoAction,
}

var params = cli.Command{
	Name:   "params",
	Usage:  "get the administrative parameters of the escrow",
	Action: paramsAction,
}

func infoAction(_ *cli.Context) error {
	return get("/v1/info")
}

func paramsAction(_ *cli.Context) error {
	return get("/v1/params")
}
