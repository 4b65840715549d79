package main

import (
	"io"
	"os"

	"github.com/fjod/takes-and-tastes/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	var rt *runtime

	return &cli.App{
		Name:      "foodcart",
		Usage:     "browse restaurants, build a cart and place orders",
		Writer:    out,
		ErrWriter: out,
		Before: func(c *cli.Context) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			config.SetupLogging(cfg.LogLevel)

			rt, err = newRuntime(c.Context, cfg, c.App.Writer)
			return err
		},
		After: func(c *cli.Context) error {
			if rt != nil {
				rt.close()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "restaurants",
				Usage: "list restaurants",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category"},
					&cli.StringFlag{Name: "search"},
					&cli.BoolFlag{Name: "popular"},
				},
				Action: func(c *cli.Context) error { return rt.listRestaurants(c) },
			},
			{
				Name:   "categories",
				Usage:  "list restaurant categories",
				Action: func(c *cli.Context) error { return rt.listCategories(c) },
			},
			{
				Name:      "menu",
				Usage:     "show a restaurant's menu",
				ArgsUsage: "<restaurant-id>",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "category"}},
				Action:    func(c *cli.Context) error { return rt.showMenu(c) },
			},
			{
				Name:  "cart",
				Usage: "inspect and change the cart",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Action: func(c *cli.Context) error { return rt.showCart(c) },
					},
					{
						Name:      "add",
						ArgsUsage: "<restaurant-id> <item-id>",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "qty", Value: 1},
							&cli.BoolFlag{Name: "replace", Usage: "start a new cart if the current one is from another restaurant"},
						},
						Action: func(c *cli.Context) error { return rt.addToCart(c) },
					},
					{
						Name:      "update",
						ArgsUsage: "<item-id> <quantity>",
						Action:    func(c *cli.Context) error { return rt.updateCart(c) },
					},
					{
						Name:      "remove",
						ArgsUsage: "<item-id>",
						Action:    func(c *cli.Context) error { return rt.removeFromCart(c) },
					},
					{
						Name:   "clear",
						Action: func(c *cli.Context) error { return rt.clearCart(c) },
					},
				},
			},
			{
				Name:  "checkout",
				Usage: "place an order for the cart",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "street"},
					&cli.StringFlag{Name: "city"},
					&cli.StringFlag{Name: "postal-code"},
					&cli.StringFlag{Name: "country"},
					&cli.StringFlag{Name: "payment", Value: "cash", Usage: "cash, card or online"},
					&cli.StringFlag{Name: "notes"},
				},
				Action: func(c *cli.Context) error { return rt.checkout(c) },
			},
			{
				Name:  "orders",
				Usage: "order history",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Action: func(c *cli.Context) error { return rt.listOrders(c) },
					},
					{
						Name:      "get",
						ArgsUsage: "<order-id>",
						Action:    func(c *cli.Context) error { return rt.getOrder(c) },
					},
				},
			},
			{
				Name: "login",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: func(c *cli.Context) error { return rt.login(c) },
			},
			{
				Name: "register",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "phone"},
				},
				Action: func(c *cli.Context) error { return rt.register(c) },
			},
			{
				Name:   "logout",
				Action: func(c *cli.Context) error { return rt.logout(c) },
			},
			{
				Name:  "profile",
				Usage: "show or update the signed-in profile",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name"},
					&cli.StringFlag{Name: "phone"},
				},
				Action: func(c *cli.Context) error { return rt.profile(c) },
			},
		},
	}
}
