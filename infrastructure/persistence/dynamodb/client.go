// Package dynamodb persists sessions, participants and notes in a single
// DynamoDB table. Items share the session's partition key so every read a
// command handler needs is a point read or a single-partition query.
//
// Key layout:
//
//	PK = SESSION#<session id>
//	SK = META | PARTICIPANT#<participant id> | NOTE#<note id>
//
// Active join codes are projected into GSI1 (GSI1PK = JOINCODE#<code>);
// the attribute is dropped when a session finishes, which frees the code.
package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

const joinCodeIndexName = "GSI1"

// NewClient creates a DynamoDB client from the default AWS config chain.
// A non-empty endpoint overrides the resolved endpoint, for local stacks.
func NewClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// Pinger reports table reachability for readiness probes.
type Pinger struct {
	client    *dynamodb.Client
	tableName string
}

// NewPinger creates a pinger for the table.
func NewPinger(client *dynamodb.Client, tableName string) *Pinger {
	return &Pinger{client: client, tableName: tableName}
}

// Ping implements ports.StorePinger.
func (p *Pinger) Ping(ctx context.Context) error {
	_, err := p.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(p.tableName),
	})
	if err != nil {
		return fmt.Errorf("dynamodb unreachable: %w", err)
	}
	return nil
}

func sessionPK(sessionID string) string {
	return fmt.Sprintf("SESSION#%s", sessionID)
}
