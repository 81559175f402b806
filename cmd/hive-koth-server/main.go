// Command hive-koth-server runs the King-of-the-Hill Hive engine: one
// match.State driven by a single broker.Broker, seats filled by
// internal/koth, and a seat played by internal/bot when a session asks
// for a bot match. Accepting client connections is out of scope -- this binary
// owns the engine loop and, with -watch, prints it to the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/hiveking/koth/internal/ascii"
	"github.com/hiveking/koth/internal/bot"
	"github.com/hiveking/koth/internal/broker"
	"github.com/hiveking/koth/internal/koth"
	"github.com/hiveking/koth/internal/match"
	"github.com/hiveking/koth/internal/parameters"
	"github.com/hiveking/koth/internal/profilers"
	"github.com/hiveking/koth/internal/ui/spinning"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagBotConfig = flag.String("bot_config", "max_depth=3",
		"Bot search configuration: comma-separated key=value pairs, e.g. max_depth=4")
	flagMaxMoves = flag.Int("max_moves", match.DefaultMaxMoves,
		"Max moves before a match is declared a draw.")
	flagWatch = flag.Bool("watch", false, "Print the live match to the terminal after every event.")
)

var globalCtx = context.Background()

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if *flagMaxMoves <= 0 {
		klog.Fatalf("invalid --max_moves=%d", *flagMaxMoves)
	}

	var cancel func()
	globalCtx, cancel = context.WithCancel(context.Background())
	spinning.SafeInterrupt(cancel, 3*time.Second)
	defer cancel()

	profilers.Setup(globalCtx)
	defer profilers.OnQuit()

	searcher := must.M1(createSearcher(*flagBotConfig))

	m := &match.State{MaxMoves: *flagMaxMoves}
	controller := koth.New(m)
	b := broker.New(controller, searcher)

	if *flagWatch {
		b.Sinks = append(b.Sinks, ascii.Render)
	}

	fmt.Println("hive-koth-server running; accepting engine events on the broker, no transport wired in this build.")
	b.Run(globalCtx)
}

// createSearcher builds a bot.Searcher from a "key=value,..." config
// string, the same shape internal/parameters already parses for
// command-line AI configuration flags.
func createSearcher(config string) (*bot.Searcher, error) {
	params := parameters.Params(parameters.NewFromConfigString(config))
	maxDepth, err := parameters.PopParamOr(params, "max_depth", bot.DefaultMaxDepth)
	if err != nil {
		return nil, err
	}
	for k := range params {
		klog.Warningf("unrecognized bot_config parameter %q ignored", k)
	}
	return &bot.Searcher{MaxDepth: maxDepth}, nil
}
