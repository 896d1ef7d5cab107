// Command summon is the development CLI: serve a demo composition and
// inspect resolved configuration.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/urfave/cli/v3"

	"github.com/summonui/summon"
	"github.com/summonui/summon/lib/encoding"
)

const version = "0.1.0"

func main() {
	cmd := &cli.Command{
		Name:    "summon",
		Usage:   "Summon development tools",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve the demo composition with the callback endpoint mounted",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "listen address (overrides summon.yaml)",
					},
					&cli.StringFlag{
						Name:  "key",
						Usage: "callback binding signing key",
						Value: "summon-dev-key",
					},
				},
				Action: serve,
			},
			{
				Name:   "config",
				Usage:  "Print the resolved summon.yaml configuration",
				Action: printConfig,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := summon.LoadOptional(".")
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	if flagAddr := cmd.String("addr"); flagAddr != "" {
		addr = flagAddr
	}

	encoder, err := encoding.NewEncoder([]byte(cmd.String("key")))
	if err != nil {
		return err
	}

	var opts []summon.RegistryOption
	if cfg.Callbacks.TTL > 0 {
		opts = append(opts, summon.WithTTL(time.Duration(cfg.Callbacks.TTL)))
	}
	registry := summon.NewCallbackRegistry(opts...)
	message := summon.NewState("Hello from summon serve")

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		renderer := summon.NewHTMLRenderer(registry, summon.WithBindingEncoder(encoder))
		renderer.Begin()

		summon.Compose(func(c *summon.Composer) {
			demoRoot(c, renderer, message)
		}, summon.NewManualScheduler())

		body, _ := renderer.Finish()
		if err := summon.Render(w, r, demoPage(body)); err != nil {
			log.Printf("render: %v", err)
		}
	})
	mux.Handle("/_summon/callback", summon.NewCallbackHandler(registry,
		summon.WithCallbackEncoder(encoder)))

	log.Printf("summon serve listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func printConfig(ctx context.Context, cmd *cli.Command) error {
	cfg, err := summon.LoadOptional(".")
	if err != nil {
		return err
	}

	fmt.Printf("hydration.nearThresholdPx: %d\n", cfg.Hydration.NearThresholdPx)
	fmt.Printf("hydration.frameBudget:     %d\n", cfg.Hydration.FrameBudget)
	fmt.Printf("callbacks.ttl:             %s\n", cfg.Callbacks.TTL)
	fmt.Printf("server.addr:               %s\n", cfg.Server.Addr)
	return nil
}

func demoRoot(c *summon.Composer, r summon.Renderer, message *summon.State[string]) {
	c.StartGroup("demo")
	defer c.EndGroup()

	r.RenderColumn(summon.NewModifier().ID("demo"), func() {
		r.RenderText(message.Get(), summon.NewModifier().ID("message").Priority("visible"))
		r.RenderButton("Refresh", func() {
			message.Set("Recomposed")
		}, summon.NewModifier().Priority("critical"))
	})
}

func demoPage(body string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<!doctype html>
<html>
<head><title>Summon</title></head>
<body>
%s
</body>
</html>`, body)
		return err
	})
}
