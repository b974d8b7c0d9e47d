package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/reflow-ui/reflow/pkg/live"
	"github.com/reflow-ui/reflow/pkg/reactive"
	"github.com/reflow-ui/reflow/pkg/render"
	"github.com/reflow-ui/reflow/pkg/runtime"
	"github.com/reflow-ui/reflow/pkg/telemetry"
	"github.com/reflow-ui/reflow/pkg/tree"
)

func serveCmd() *cobra.Command {
	var addr string
	var tick time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a demo server: streaming SSR, WebSocket patch feed, metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(addr, tick)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "listen address")
	cmd.Flags().DurationVarP(&tick, "tick", "t", time.Second, "counter update interval")
	return cmd
}

func serve(addr string, tick time.Duration) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	collector := telemetry.NewCollector()
	feed := live.NewFeed(live.WithLogger(logger))

	root := runtime.New(
		runtime.WithLogger(logger),
		runtime.WithRenderer(collector.WrapRenderer(feed.Broadcast)),
		runtime.WithFlushObserver(collector),
	)
	defer root.Dispose()

	counter := reactive.NewSignal(root.Store(), 0)
	started := time.Now()

	_, inserts, err := root.Mount(func() *tree.Node {
		return tree.El("div", []tree.Attr{tree.A("id", "app")},
			tree.El("h1", nil, tree.Text("reflow demo")),
			tree.El("p", nil,
				tree.Text("ticks: "),
				tree.El("span", []tree.Attr{tree.A("id", "count")},
					tree.Text(strconv.Itoa(counter.Get()))),
			),
			tree.El("p", nil,
				tree.Text("up since "+started.Format(time.RFC3339))),
		)
	})
	if err != nil {
		return err
	}

	// The mount snapshot is streamed once into a buffer; every request
	// gets the same initial markup and live updates over the feed.
	var snapshot bytes.Buffer
	sr := render.NewStreamRenderer(&snapshot)
	if err := sr.FeedAll(inserts); err != nil {
		return err
	}
	if err := sr.Close(); err != nil {
		return err
	}

	go func() {
		for range time.Tick(tick) {
			counter.Update(func(n int) int { return n + 1 })
			if err := root.Flush(); err != nil {
				logger.Error("flush failed", "error", err)
				return
			}
		}
	}()

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, indexPage, snapshot.String())
	})
	feed.Mount(r, "/live")
	r.Handle("/metrics", promhttp.Handler())

	logger.Info("demo server listening", "addr", addr)
	return http.ListenAndServe(addr, r)
}

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>reflow demo</title></head>
<body>
%s
<pre id="log"></pre>
<script>
const log = document.getElementById("log");
const ws = new WebSocket("ws://" + location.host + "/live");
ws.onmessage = (ev) => {
  const frame = JSON.parse(ev.data);
  log.textContent = "frame " + frame.seq + ": " +
    frame.patches.length + " patch(es)\n" + log.textContent;
  for (const p of frame.patches) {
    if (p.op === "ReplaceText") {
      document.getElementById("count").textContent = p.text;
    }
  }
};
</script>
</body>
</html>
`
