package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/rs/zerolog"
)

// triggerPayload mirrors the collection function's input event
type triggerPayload struct {
	Source      string   `json:"source"`
	TriggerType string   `json:"trigger-type"`
	Keywords    []string `json:"keywords,omitempty"`
	Publish     bool     `json:"publish,omitempty"`
}

func main() {
	functionName := flag.String("function", "seongsu-popup-collector", "Lambda function name to invoke")
	publish := flag.Bool("publish", false, "ask the function to publish merged events")
	wait := flag.Bool("wait", false, "invoke synchronously and print the response")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load AWS config")
	}

	payload, err := json.Marshal(triggerPayload{
		Source:      "manual-trigger",
		TriggerType: "manual",
		Keywords:    flag.Args(),
		Publish:     *publish,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to marshal trigger payload")
	}

	invocationType := types.InvocationTypeEvent
	if *wait {
		invocationType = types.InvocationTypeRequestResponse
	}

	client := lambdasvc.NewFromConfig(awsCfg)
	result, err := client.Invoke(ctx, &lambdasvc.InvokeInput{
		FunctionName:   aws.String(*functionName),
		InvocationType: invocationType,
		Payload:        payload,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("function", *functionName).Msg("failed to invoke collection function")
	}

	logger.Info().
		Str("function", *functionName).
		Int32("status_code", result.StatusCode).
		Msg("collection run triggered")

	if *wait && len(result.Payload) > 0 {
		fmt.Println(string(result.Payload))
	}
}
