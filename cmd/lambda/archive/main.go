// History Archive Lambda entry point
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"credit-decision-engine/internal/handlers"
	"credit-decision-engine/internal/utils"
)

func main() {
	// Initialize logger
	_ = utils.InitLogger("info")
	defer utils.Sync()

	// Create handler
	handler, err := handlers.NewArchiveTriggerHandler(context.Background())
	if err != nil {
		panic("Failed to create handler: " + err.Error())
	}

	// Start Lambda
	lambda.Start(handler.Handle)
}
