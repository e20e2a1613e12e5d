package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/acme/vapi-caller/internal/app"
	"github.com/acme/vapi-caller/internal/cli"
	callsvc "github.com/acme/vapi-caller/internal/service/call"
	"github.com/acme/vapi-caller/internal/vapi"
	apperrors "github.com/acme/vapi-caller/pkg/errors"
)

func main() {
	_ = godotenv.Load()

	var questions cli.StringList
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to configuration file (optional)")
	number := flag.String("to", os.Getenv("CUSTOMER_NUMBER"), "customer number in E.164 format")
	listing := flag.String("listing", os.Getenv("LISTING_NAME"), "listing name")
	address := flag.String("address", os.Getenv("LISTING_ADDRESS"), "listing address")
	assistant := flag.String("assistant", "", "assistant id (defaults to VAPI_ASSISTANT_ID)")
	phone := flag.String("phone-number-id", "", "caller phone number id (defaults to VAPI_PHONE_NUMBER_ID)")
	flag.Var(&questions, "q", "question to ask (repeatable)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath, callsvc.StartCallInput{
		AssistantID:    *assistant,
		PhoneNumberID:  *phone,
		CustomerNumber: *number,
		ListingName:    *listing,
		ListingAddress: *address,
		Questions:      questions,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "makecall:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, input callsvc.StartCallInput) error {
	container, err := app.Build(ctx, configPath)
	if err != nil {
		return err
	}
	defer container.Close(context.Background())

	res, err := container.Calls.StartCall(ctx, input)
	if err != nil {
		var statusErr *vapi.StatusError
		if apperrors.As(err, &statusErr) {
			cli.PrintResponse(os.Stdout, statusErr.StatusCode, []byte(statusErr.Body))
			return nil
		}
		var decodeErr *vapi.DecodeError
		if apperrors.As(err, &decodeErr) {
			cli.PrintResponse(os.Stdout, decodeErr.StatusCode, []byte(decodeErr.Body))
		}
		return err
	}

	cli.PrintResponse(os.Stdout, res.StatusCode, res.Raw)
	return nil
}
