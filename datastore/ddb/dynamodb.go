/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/suparena/docstore/datastore"
	"github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/registry"
	"github.com/suparena/docstore/storagemodels"
)

const (
	defaultPageSize     = 100
	defaultMaxRetries   = 3
	defaultRetryBackoff = 100 * time.Millisecond
)

// Config describes a DynamoDB connection. Table is the default index.
type Config struct {
	Region         string
	AccessKey      string
	SecretKey      string
	Endpoint       string
	Table          string
	ConsistentRead bool
	MaxRetries     int
	RetryBackoff   time.Duration
}

// API is the subset of the DynamoDB client used by Client.
type API interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *sdk.UpdateItemInput, optFns ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
}

var _ API = (*sdk.Client)(nil)

// Client implements datastore.Client on DynamoDB using a single-table layout.
type Client struct {
	api    API
	cfg    Config
	logger logrus.FieldLogger
	idFunc func() string
}

var _ datastore.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for client diagnostics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithIDFunc sets the generator for ids of documents created without one.
func WithIDFunc(f func() string) Option {
	return func(c *Client) {
		c.idFunc = f
	}
}

// NewDynamoDBClient initializes a DynamoDB client. Static credentials are
// used when an access key is configured, otherwise the default chain.
func NewDynamoDBClient(ctx context.Context, cfg Config, logger logrus.FieldLogger) (*sdk.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := sdk.NewFromConfig(awsCfg, func(o *sdk.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	logger.WithFields(logrus.Fields{
		"table":  cfg.Table,
		"region": cfg.Region,
	}).Info("DynamoDB client initialized")
	return client, nil
}

// New connects to DynamoDB with cfg.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	c := newClient(nil, cfg, opts...)
	api, err := NewDynamoDBClient(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	c.api = api
	return c, nil
}

// NewWithAPI wraps an existing API implementation.
func NewWithAPI(api API, cfg Config, opts ...Option) *Client {
	return newClient(api, cfg, opts...)
}

func newClient(api API, cfg Config, opts ...Option) *Client {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	c := &Client{
		api:    api,
		cfg:    cfg,
		logger: logrus.StandardLogger(),
		idFunc: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Index returns the table named name, or the configured table.
func (c *Client) Index(name string) datastore.Index {
	if name == "" {
		name = c.cfg.Table
	}
	return &table{client: c, name: name}
}

// Close is a no-op; the SDK client holds no connections to release.
func (c *Client) Close() error {
	return nil
}

type table struct {
	client *Client
	name   string
}

func (t *table) Name() string {
	return t.name
}

func (t *table) Collection(name string) datastore.Collection {
	return &collection{
		client:   t.client,
		table:    t.name,
		name:     name,
		indexMap: registry.IndexMapFor(name),
	}
}

type collection struct {
	client   *Client
	table    string
	name     string
	indexMap map[string]string
}

// item is the stored shape of a document. Key attributes are added
// separately from the collection's templates.
type item struct {
	ID        string         `dynamodbav:"id"`
	Type      string         `dynamodbav:"_type"`
	Version   int64          `dynamodbav:"_version"`
	Fields    map[string]any `dynamodbav:"fields"`
	CreatedAt string         `dynamodbav:"created_at,omitempty"`
	UpdatedAt string         `dynamodbav:"updated_at,omitempty"`
}

func (c *collection) Name() string {
	return c.name
}

func (c *collection) log() logrus.FieldLogger {
	return c.client.logger.WithFields(logrus.Fields{
		"table":      c.table,
		"collection": c.name,
	})
}

func (c *collection) keyFor(id string, fields map[string]any) (map[string]string, map[string]types.AttributeValue, error) {
	expanded, err := expandMacros(c.indexMap, keyInput(c.table, c.name, id, fields))
	if err != nil {
		return nil, nil, err
	}
	key, err := primaryKey(expanded)
	if err != nil {
		return nil, nil, err
	}
	return expanded, key, nil
}

// GetDocument reads one item by id.
func (c *collection) GetDocument(ctx context.Context, id string, params map[string]any) (*storagemodels.RawDocument, error) {
	_, key, err := c.keyFor(id, nil)
	if err != nil {
		return nil, err
	}

	out, err := c.client.api.GetItem(ctx, &sdk.GetItemInput{
		TableName:      aws.String(c.table),
		Key:            key,
		ConsistentRead: aws.Bool(c.client.cfg.ConsistentRead),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, errors.NewNotFoundError(c.name, id)
	}

	doc, err := decodeItem(out.Item)
	if err != nil {
		return nil, err
	}
	doc.Fields = storagemodels.Project(doc.Fields, storagemodels.ProjectionParam(params))
	return doc, nil
}

// CreateDocument writes a new item, failing when the key is taken.
func (c *collection) CreateDocument(ctx context.Context, doc *storagemodels.RawDocument) (*storagemodels.WriteResult, error) {
	id := doc.ID
	if id == "" {
		id = c.client.idFunc()
	}
	fields := doc.Fields
	if fields == nil {
		fields = map[string]any{}
	}

	expanded, _, err := c.keyFor(id, fields)
	if err != nil {
		return nil, err
	}

	now := strfmt.DateTime(time.Now().UTC()).String()
	av, err := attributevalue.MarshalMap(item{
		ID:        id,
		Type:      c.name,
		Version:   1,
		Fields:    fields,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	for attr, v := range expanded {
		if v != "" {
			av[attr] = &types.AttributeValueMemberS{Value: v}
		}
	}

	_, err = c.client.api.PutItem(ctx, &sdk.PutItemInput{
		TableName:                aws.String(c.table),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": AttrPK},
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, errors.NewAlreadyExistsError(c.name, id)
		}
		return nil, fmt.Errorf("PutItem failed: %w", err)
	}

	c.log().WithField("id", id).Debug("document created")
	return &storagemodels.WriteResult{ID: id, Version: 1, Created: true}, nil
}

// UpdateDocument upserts an item and increments its version. A non-zero
// doc.Version is checked against the stored one.
func (c *collection) UpdateDocument(ctx context.Context, doc *storagemodels.RawDocument) (*storagemodels.WriteResult, error) {
	if doc.ID == "" {
		return nil, errors.NewValidationError("id", "update requires an id")
	}
	fields := doc.Fields
	if fields == nil {
		fields = map[string]any{}
	}

	expanded, key, err := c.keyFor(doc.ID, fields)
	if err != nil {
		return nil, err
	}

	fieldsAV, err := attributevalue.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fields: %w", err)
	}

	update, names, values := buildUpdateExpression(doc.ID, c.name, fieldsAV, secondaryKeys(expanded))

	input := &sdk.UpdateItemInput{
		TableName:                 aws.String(c.table),
		Key:                       key,
		UpdateExpression:          aws.String(update),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueUpdatedOld,
	}
	if doc.Version > 0 {
		input.ConditionExpression = aws.String("#version = :expected")
		values[":expected"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", doc.Version)}
	}

	out, err := c.client.api.UpdateItem(ctx, input)
	if err != nil {
		if isConditionFailed(err) {
			return nil, errors.NewConditionFailedError("update", fmt.Sprintf("_version = %d", doc.Version))
		}
		return nil, fmt.Errorf("UpdateItem failed: %w", err)
	}

	res := &storagemodels.WriteResult{ID: doc.ID, Version: 1, Created: true}
	if old, ok := out.Attributes[AttrVersion]; ok {
		var prev int64
		if err := attributevalue.Unmarshal(old, &prev); err != nil {
			return nil, fmt.Errorf("failed to unmarshal previous version: %w", err)
		}
		res.Version = prev + 1
		res.Created = false
	}

	c.log().WithFields(logrus.Fields{"id": doc.ID, "version": res.Version}).Debug("document updated")
	return res, nil
}

// DeleteDocument removes an item, failing when it does not exist.
func (c *collection) DeleteDocument(ctx context.Context, id string) error {
	_, key, err := c.keyFor(id, nil)
	if err != nil {
		return err
	}

	_, err = c.client.api.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName:                aws.String(c.table),
		Key:                      key,
		ConditionExpression:      aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": AttrPK},
	})
	if err != nil {
		if isConditionFailed(err) {
			return errors.NewNotFoundError(c.name, id)
		}
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}

	c.log().WithField("id", id).Debug("document deleted")
	return nil
}

// buildUpdateExpression assembles the SET clause of an upsert: the payload,
// identity attributes, timestamps, secondary key attributes and the version
// increment.
func buildUpdateExpression(id, docType string, fields types.AttributeValue, extra map[string]string) (string, map[string]string, map[string]types.AttributeValue) {
	now := strfmt.DateTime(time.Now().UTC()).String()

	names := map[string]string{
		"#fields":  AttrFields,
		"#id":      AttrID,
		"#type":    AttrType,
		"#created": AttrCreatedAt,
		"#updated": AttrUpdatedAt,
		"#version": AttrVersion,
	}
	values := map[string]types.AttributeValue{
		":fields": fields,
		":id":     &types.AttributeValueMemberS{Value: id},
		":type":   &types.AttributeValueMemberS{Value: docType},
		":now":    &types.AttributeValueMemberS{Value: now},
		":zero":   &types.AttributeValueMemberN{Value: "0"},
		":one":    &types.AttributeValueMemberN{Value: "1"},
	}
	clauses := []string{
		"#fields = :fields",
		"#id = :id",
		"#type = :type",
		"#updated = :now",
		"#created = if_not_exists(#created, :now)",
		"#version = if_not_exists(#version, :zero) + :one",
	}

	attrs := make([]string, 0, len(extra))
	for attr := range extra {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	for i, attr := range attrs {
		n, v := fmt.Sprintf("#k%d", i), fmt.Sprintf(":k%d", i)
		names[n] = attr
		values[v] = &types.AttributeValueMemberS{Value: extra[attr]}
		clauses = append(clauses, n+" = "+v)
	}

	return "SET " + strings.Join(clauses, ", "), names, values
}

// secondaryKeys returns expanded templates other than the primary key,
// dropping empty ones so sparse indexes stay sparse.
func secondaryKeys(expanded map[string]string) map[string]string {
	out := make(map[string]string, len(expanded))
	for attr, v := range expanded {
		if attr == AttrPK || attr == AttrSK || v == "" {
			continue
		}
		out[attr] = v
	}
	return out
}

func decodeItem(av map[string]types.AttributeValue) (*storagemodels.RawDocument, error) {
	var it item
	if err := attributevalue.UnmarshalMap(av, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	doc := &storagemodels.RawDocument{
		ID:      it.ID,
		Version: it.Version,
		Fields:  it.Fields,
	}
	if doc.Fields == nil {
		doc.Fields = map[string]any{}
	}
	if t, err := strfmt.ParseDateTime(it.CreatedAt); err == nil {
		doc.CreatedAt = t
	}
	if t, err := strfmt.ParseDateTime(it.UpdatedAt); err == nil {
		doc.UpdatedAt = t
	}
	return doc, nil
}

func isConditionFailed(err error) bool {
	var cfe *types.ConditionalCheckFailedException
	return stderrors.As(err, &cfe)
}
