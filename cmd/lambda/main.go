// Command lambda serves the proxy from AWS Lambda behind an API Gateway HTTP
// API or a function URL. Configuration comes from the environment.
package main

import (
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	geminihttp "github.com/awantoch/geminiproxy/http"
)

func main() {
	adapter := httpadapter.NewV2(http.HandlerFunc(geminihttp.ServerlessHandler))
	lambda.Start(adapter.ProxyWithContext)
}
