/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/registry"
	"github.com/suparena/docstore/storagemodels"
)

// fakeAPI records inputs and replays scripted outputs.
type fakeAPI struct {
	getInputs    []*sdk.GetItemInput
	putInputs    []*sdk.PutItemInput
	updateInputs []*sdk.UpdateItemInput
	deleteInputs []*sdk.DeleteItemInput
	queryInputs  []*sdk.QueryInput

	getOut    *sdk.GetItemOutput
	updateOut *sdk.UpdateItemOutput
	queryOuts []*sdk.QueryOutput
	err       error
	queryErrs []error
}

func (f *fakeAPI) GetItem(ctx context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.getInputs = append(f.getInputs, in)
	if f.err != nil {
		return nil, f.err
	}
	if f.getOut == nil {
		return &sdk.GetItemOutput{}, nil
	}
	return f.getOut, nil
}

func (f *fakeAPI) PutItem(ctx context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.putInputs = append(f.putInputs, in)
	return &sdk.PutItemOutput{}, f.err
}

func (f *fakeAPI) UpdateItem(ctx context.Context, in *sdk.UpdateItemInput, _ ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error) {
	f.updateInputs = append(f.updateInputs, in)
	if f.err != nil {
		return nil, f.err
	}
	if f.updateOut == nil {
		return &sdk.UpdateItemOutput{}, nil
	}
	return f.updateOut, nil
}

func (f *fakeAPI) DeleteItem(ctx context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.deleteInputs = append(f.deleteInputs, in)
	return &sdk.DeleteItemOutput{}, f.err
}

func (f *fakeAPI) Query(ctx context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	// Snapshot the start key; Search reuses the input across pages.
	cp := *in
	f.queryInputs = append(f.queryInputs, &cp)
	if len(f.queryErrs) > 0 {
		err := f.queryErrs[0]
		f.queryErrs = f.queryErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if len(f.queryOuts) == 0 {
		return &sdk.QueryOutput{}, nil
	}
	out := f.queryOuts[0]
	f.queryOuts = f.queryOuts[1:]
	return out, nil
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestClient(api API) *Client {
	return NewWithAPI(api, Config{Table: "docs", RetryBackoff: time.Millisecond},
		WithLogger(quietLogger()),
		WithIDFunc(func() string { return "generated" }),
	)
}

func storedItem(t *testing.T, collection, id string, version int64, fields map[string]any) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(item{
		ID:        id,
		Type:      collection,
		Version:   version,
		Fields:    fields,
		CreatedAt: "2025-01-02T03:04:05.000Z",
		UpdatedAt: "2025-01-02T03:04:05.000Z",
	})
	require.NoError(t, err)
	av[AttrPK] = &types.AttributeValueMemberS{Value: collection}
	av[AttrSK] = &types.AttributeValueMemberS{Value: id}
	return av
}

func stringAttr(t *testing.T, av types.AttributeValue) string {
	t.Helper()
	s, ok := av.(*types.AttributeValueMemberS)
	require.True(t, ok, "expected string attribute, got %T", av)
	return s.Value
}

func TestIndexSelection(t *testing.T) {
	client := newTestClient(&fakeAPI{})
	assert.Equal(t, "docs", client.Index("").Name())
	assert.Equal(t, "other", client.Index("other").Name())
	assert.Equal(t, "articles", client.Index("").Collection("articles").Name())
	assert.NoError(t, client.Close())
}

func TestGetDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		api := &fakeAPI{getOut: &sdk.GetItemOutput{
			Item: storedItem(t, "articles", "foo", 3, map[string]any{"a": "b", "n": 2}),
		}}
		coll := newTestClient(api).Index("").Collection("articles")

		doc, err := coll.GetDocument(ctx, "foo", map[string]any{"bar": "baz"})
		require.NoError(t, err)
		assert.Equal(t, "foo", doc.ID)
		assert.Equal(t, int64(3), doc.Version)
		assert.Equal(t, map[string]any{"a": "b", "n": float64(2)}, doc.Fields)
		assert.False(t, doc.CreatedAt.IsZero())

		require.Len(t, api.getInputs, 1)
		in := api.getInputs[0]
		assert.Equal(t, "docs", aws.ToString(in.TableName))
		assert.Equal(t, "articles", stringAttr(t, in.Key[AttrPK]))
		assert.Equal(t, "foo", stringAttr(t, in.Key[AttrSK]))
	})

	t.Run("Projection", func(t *testing.T) {
		api := &fakeAPI{getOut: &sdk.GetItemOutput{
			Item: storedItem(t, "articles", "foo", 1, map[string]any{"a": "b", "c": "d"}),
		}}
		coll := newTestClient(api).Index("").Collection("articles")

		doc, err := coll.GetDocument(ctx, "foo", map[string]any{storagemodels.ParamFields: []string{"c"}})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"c": "d"}, doc.Fields)
	})

	t.Run("Missing", func(t *testing.T) {
		coll := newTestClient(&fakeAPI{}).Index("").Collection("articles")
		_, err := coll.GetDocument(ctx, "nope", nil)
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestCreateDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("AssignsID", func(t *testing.T) {
		api := &fakeAPI{}
		coll := newTestClient(api).Index("").Collection("articles")

		res, err := coll.CreateDocument(ctx, &storagemodels.RawDocument{Fields: map[string]any{"title": "Hello"}})
		require.NoError(t, err)
		assert.Equal(t, &storagemodels.WriteResult{ID: "generated", Version: 1, Created: true}, res)

		require.Len(t, api.putInputs, 1)
		in := api.putInputs[0]
		assert.Equal(t, "attribute_not_exists(#pk)", aws.ToString(in.ConditionExpression))
		assert.Equal(t, "articles", stringAttr(t, in.Item[AttrPK]))
		assert.Equal(t, "generated", stringAttr(t, in.Item[AttrSK]))
		assert.Equal(t, "generated", stringAttr(t, in.Item[AttrID]))
		assert.Equal(t, "articles", stringAttr(t, in.Item[AttrType]))

		doc, err := decodeItem(in.Item)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"title": "Hello"}, doc.Fields)
		assert.Equal(t, int64(1), doc.Version)
	})

	t.Run("Conflict", func(t *testing.T) {
		api := &fakeAPI{err: &types.ConditionalCheckFailedException{}}
		coll := newTestClient(api).Index("").Collection("articles")

		_, err := coll.CreateDocument(ctx, &storagemodels.RawDocument{ID: "taken"})
		assert.True(t, errors.IsAlreadyExists(err))
	})

	t.Run("SecondaryKeys", func(t *testing.T) {
		registry.RegisterIndexMap("users", map[string]string{
			"PK":     "USER",
			"SK":     "USER#{id}",
			"GSI1PK": "EMAIL#{email}",
		})
		defer registry.UnregisterIndexMap("users")

		api := &fakeAPI{}
		coll := newTestClient(api).Index("").Collection("users")

		_, err := coll.CreateDocument(ctx, &storagemodels.RawDocument{ID: "7", Fields: map[string]any{"email": "a@b.c"}})
		require.NoError(t, err)

		in := api.putInputs[0]
		assert.Equal(t, "USER", stringAttr(t, in.Item[AttrPK]))
		assert.Equal(t, "USER#7", stringAttr(t, in.Item[AttrSK]))
		assert.Equal(t, "EMAIL#a@b.c", stringAttr(t, in.Item["GSI1PK"]))
	})
}

func TestUpdateDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("Upsert", func(t *testing.T) {
		api := &fakeAPI{}
		coll := newTestClient(api).Index("").Collection("articles")

		res, err := coll.UpdateDocument(ctx, &storagemodels.RawDocument{ID: "123", Fields: map[string]any{"a": "b"}})
		require.NoError(t, err)
		assert.Equal(t, &storagemodels.WriteResult{ID: "123", Version: 1, Created: true}, res)

		in := api.updateInputs[0]
		assert.Nil(t, in.ConditionExpression)
		assert.Equal(t, types.ReturnValueUpdatedOld, in.ReturnValues)
		assert.Contains(t, aws.ToString(in.UpdateExpression), "#version = if_not_exists(#version, :zero) + :one")
		assert.Equal(t, "123", stringAttr(t, in.Key[AttrSK]))
	})

	t.Run("ExistingIncrementsVersion", func(t *testing.T) {
		api := &fakeAPI{updateOut: &sdk.UpdateItemOutput{
			Attributes: map[string]types.AttributeValue{
				AttrVersion: &types.AttributeValueMemberN{Value: "4"},
			},
		}}
		coll := newTestClient(api).Index("").Collection("articles")

		res, err := coll.UpdateDocument(ctx, &storagemodels.RawDocument{ID: "123", Version: 4, Fields: map[string]any{}})
		require.NoError(t, err)
		assert.Equal(t, int64(5), res.Version)
		assert.False(t, res.Created)

		in := api.updateInputs[0]
		assert.Equal(t, "#version = :expected", aws.ToString(in.ConditionExpression))
		assert.Equal(t, &types.AttributeValueMemberN{Value: "4"}, in.ExpressionAttributeValues[":expected"])
	})

	t.Run("VersionConflict", func(t *testing.T) {
		api := &fakeAPI{err: &types.ConditionalCheckFailedException{}}
		coll := newTestClient(api).Index("").Collection("articles")

		_, err := coll.UpdateDocument(ctx, &storagemodels.RawDocument{ID: "123", Version: 2})
		assert.True(t, errors.IsConditionFailed(err))
	})

	t.Run("RequiresID", func(t *testing.T) {
		coll := newTestClient(&fakeAPI{}).Index("").Collection("articles")
		_, err := coll.UpdateDocument(ctx, &storagemodels.RawDocument{})
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestDeleteDocument(t *testing.T) {
	ctx := context.Background()

	api := &fakeAPI{}
	coll := newTestClient(api).Index("").Collection("articles")
	require.NoError(t, coll.DeleteDocument(ctx, "foo"))
	assert.Equal(t, "attribute_exists(#pk)", aws.ToString(api.deleteInputs[0].ConditionExpression))

	api.err = &types.ConditionalCheckFailedException{}
	err := coll.DeleteDocument(ctx, "foo")
	assert.True(t, errors.IsNotFound(err))
}
