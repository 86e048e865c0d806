package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/retree-dev/retree/pkg/desc"
	"github.com/retree-dev/retree/pkg/dispatch"
	"github.com/retree-dev/retree/pkg/el"
	"github.com/retree-dev/retree/pkg/engine"
	"github.com/retree-dev/retree/pkg/middleware"
	"github.com/retree-dev/retree/pkg/remote"
)

// counter is the demo application served by `retree serve`.
type counter struct{}

func (counter) Render(rc desc.RenderContext) any {
	count, _ := rc.Props["count"].(int)
	return el.E("div", el.Class("counter"),
		el.E("span", el.Textf("count: %d", count)),
		el.E("button",
			el.On("click", func(any) { rc.Dispatch("increment") }),
			el.Text("+1"),
		),
	)
}

func serveCmd() *cobra.Command {
	var (
		addr    string
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo counter over a websocket render target",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			opts := []engine.Option{engine.WithLogger(logger)}
			if metrics {
				opts = append(opts, engine.WithInterceptors(
					middleware.Prometheus(),
					middleware.OpenTelemetry(),
				))
			}
			eng := engine.New(opts...)
			if err := eng.Register("counter", func() desc.Component { return counter{} }); err != nil {
				return err
			}

			reducers := map[string]dispatch.Reducer{
				"increment": func(state map[string]any, args ...any) map[string]any {
					count, _ := state["count"].(int)
					state["count"] = count + 1
					return state
				},
			}

			srv := remote.NewServer(func(r *http.Request, adapter *remote.Adapter) (func(), error) {
				tree, err := eng.Mount(r.Context(),
					el.C("counter", map[string]any{"count": 0}),
					adapter, adapter.Container(),
					engine.WithReducers(reducers))
				if err != nil {
					return nil, err
				}
				return tree.Unmount, nil
			}, remote.WithLogger(logger))

			mux := http.NewServeMux()
			mux.Handle("/", srv)
			if metrics {
				mux.Handle("/metrics", promhttp.Handler())
			}

			logger.Info("listening", "addr", addr)
			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}
			return server.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "expose Prometheus metrics on /metrics")
	return cmd
}
