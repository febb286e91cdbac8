// Package aws builds the AWS service clients the concierge talks to from one
// shared SDK configuration.
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/lexruntimev2"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type Clients struct {
	Config   aws.Config
	SQS      *sqs.Client
	DynamoDB *dynamodb.Client
	SES      *ses.Client
	SNS      *sns.Client
	Lex      *lexruntimev2.Client
}

// NewClients loads credentials from the default chain for region.
func NewClients(ctx context.Context, region string) (*Clients, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Clients{
		Config:   cfg,
		SQS:      sqs.NewFromConfig(cfg),
		DynamoDB: dynamodb.NewFromConfig(cfg),
		SES:      ses.NewFromConfig(cfg),
		SNS:      sns.NewFromConfig(cfg),
		Lex:      lexruntimev2.NewFromConfig(cfg),
	}, nil
}
