// Command cardsctl controls a running watch over its local socket.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tinytelemetry/cards/internal/model"
	"github.com/tinytelemetry/cards/internal/socketrpc"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

const usage = `usage: cardsctl [flags] <command> [args]

commands:
  state              print the watch state as JSON
  next               request the next card
  send <frame>       deliver a JSON frame, e.g. '{"0":"Paris","2":15}'
  connect            report the phone link as up
  disconnect         report the phone link as down
  refresh            ask the phone for fresh weather
`

// controller is the subset of the socket client the commands use.
type controller interface {
	model.Controller
	DeliverFrame(ctx context.Context, frame string) error
}

func main() {
	var socketPath string
	var timeout time.Duration
	var showVersion bool

	flag.StringVar(&socketPath, "socket", socketrpc.DefaultSocketPath(), "socket path of the cards service")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "call timeout")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("Cards CLI - Watch Control\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	client, err := socketrpc.Dial(socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot connect to cards service at %s: %v\nIs the watch running? Start it with: cards\n", socketPath, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := runCommand(ctx, client, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, c controller, args []string, out io.Writer) error {
	switch args[0] {
	case "state":
		st, err := c.State(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	case "next":
		return c.Next(ctx)
	case "send":
		if len(args) != 2 {
			return fmt.Errorf("send takes exactly one frame argument")
		}
		return c.DeliverFrame(ctx, args[1])
	case "connect":
		return c.SetConnection(ctx, true)
	case "disconnect":
		return c.SetConnection(ctx, false)
	case "refresh":
		return c.Refresh(ctx)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
