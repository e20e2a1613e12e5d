package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/acme/vapi-caller/internal/app"
	"github.com/acme/vapi-caller/internal/cli"
	callsvc "github.com/acme/vapi-caller/internal/service/call"
	"github.com/acme/vapi-caller/internal/vapi"
	apperrors "github.com/acme/vapi-caller/pkg/errors"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to configuration file (optional)")
	callID := flag.String("id", os.Getenv("CALL_ID"), "call id to inspect")
	wait := flag.Bool("wait", false, "poll until the call ends before printing")
	timeout := flag.Duration("timeout", 0, "maximum time to wait (defaults to poll.timeout)")
	flag.Parse()

	if *callID == "" && flag.NArg() > 0 {
		*callID = flag.Arg(0)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath, *callID, *wait, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, "checkcall:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, callID string, wait bool, timeout time.Duration) error {
	container, err := app.Build(ctx, configPath)
	if err != nil {
		return err
	}
	defer container.Close(context.Background())

	if wait {
		res, err := container.Calls.WaitForCall(ctx, callID, callsvc.WaitOptions{Timeout: timeout})
		if err != nil {
			return err
		}
		cli.PrintWaitResult(os.Stdout, res)
		return nil
	}

	summary, err := container.Calls.GetCallSummary(ctx, callID)
	if err != nil {
		var decodeErr *vapi.DecodeError
		if apperrors.As(err, &decodeErr) {
			cli.PrintResponse(os.Stdout, decodeErr.StatusCode, []byte(decodeErr.Body))
		}
		return err
	}

	cli.PrintSummary(os.Stdout, summary)
	return nil
}
