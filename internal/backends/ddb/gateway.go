package ddb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Gateway implements ports.Gateway with one item per key in a single PK/SK table.
type Gateway struct {
	table  string
	prefix string
	cli    *dynamodb.Client
}

type blobItem struct {
	PK    string `dynamodbav:"PK"`
	SK    string `dynamodbav:"SK"`
	Value string `dynamodbav:"value"`
}

// NewGateway creates the table when it does not exist yet.
func NewGateway(ctx context.Context, table, prefix string, cli *dynamodb.Client) (*Gateway, error) {
	if err := createTableIfNotExists(ctx, cli, table); err != nil {
		return nil, err
	}
	return &Gateway{table: table, prefix: prefix, cli: cli}, nil
}

func (g *Gateway) Get(ctx context.Context, key string) (string, bool, error) {
	out, err := g.cli.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &g.table,
		Key: map[string]ddbTypes.AttributeValue{
			"PK": &ddbTypes.AttributeValueMemberS{Value: pkBlob(g.prefix + key)},
			"SK": &ddbTypes.AttributeValueMemberS{Value: skValue()},
		},
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return "", false, err
	}
	if out.Item == nil {
		return "", false, nil
	}
	var it blobItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return "", false, err
	}
	return it.Value, true, nil
}

func (g *Gateway) Set(ctx context.Context, key string, value string) error {
	item, err := attributevalue.MarshalMap(blobItem{
		PK:    pkBlob(g.prefix + key),
		SK:    skValue(),
		Value: value,
	})
	if err != nil {
		return err
	}
	_, err = g.cli.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &g.table,
		Item:      item,
	})
	return err
}

// Delete removes the item stored under key. Used in tests only.
func (g *Gateway) Delete(ctx context.Context, key string) error {
	_, err := g.cli.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &g.table,
		Key: map[string]ddbTypes.AttributeValue{
			"PK": &ddbTypes.AttributeValueMemberS{Value: pkBlob(g.prefix + key)},
			"SK": &ddbTypes.AttributeValueMemberS{Value: skValue()},
		},
	})
	return err
}
