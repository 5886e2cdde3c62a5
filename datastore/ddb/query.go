/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"

	"github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/storagemodels"
)

// Search queries the collection's partition in sort key order. Equality and
// existence conditions run as a DynamoDB filter expression; glob conditions
// are applied to the returned items. The cursor is the sort key of the last
// document returned.
func (c *collection) Search(ctx context.Context, params *storagemodels.QueryParams) (*storagemodels.Page, error) {
	if params == nil {
		params = &storagemodels.QueryParams{}
	}
	for _, cond := range params.Conditions {
		if err := cond.Validate(); err != nil {
			return nil, errors.NewValidationError(cond.Field, err.Error())
		}
	}

	pkTemplate := c.indexMap[AttrPK]
	if !partitionOnly(pkTemplate) {
		return nil, errors.NewValidationError(AttrPK,
			fmt.Sprintf("partition key template %q depends on document values, collection %q cannot be searched", pkTemplate, c.name))
	}
	expanded, err := expandMacros(map[string]string{AttrPK: pkTemplate}, keyInput(c.table, c.name, "", nil))
	if err != nil {
		return nil, err
	}
	pk := expanded[AttrPK]

	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	filter, names, values, remaining, err := buildFilter(params.Conditions)
	if err != nil {
		return nil, err
	}
	names["#pk"] = AttrPK
	values[":pk"] = &types.AttributeValueMemberS{Value: pk}
	names["#type"] = AttrType
	values[":type"] = &types.AttributeValueMemberS{Value: c.name}
	filter = append([]string{"#type = :type"}, filter...)

	input := &sdk.QueryInput{
		TableName:                 aws.String(c.table),
		KeyConditionExpression:    aws.String("#pk = :pk"),
		FilterExpression:          aws.String(strings.Join(filter, " AND ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		Limit:                     aws.Int32(pageSize),
		ConsistentRead:            aws.Bool(c.client.cfg.ConsistentRead),
	}
	if params.Cursor != "" {
		input.ExclusiveStartKey = map[string]types.AttributeValue{
			AttrPK: &types.AttributeValueMemberS{Value: pk},
			AttrSK: &types.AttributeValueMemberS{Value: params.Cursor},
		}
	}

	page := &storagemodels.Page{}
	for requests := 1; ; requests++ {
		out, err := c.queryWithRetry(ctx, input)
		if err != nil {
			return nil, err
		}

		for i, raw := range out.Items {
			doc, err := decodeItem(raw)
			if err != nil {
				return nil, err
			}
			if !storagemodels.Matches(doc.ID, doc.Fields, remaining) {
				continue
			}
			doc.Fields = storagemodels.Project(doc.Fields, params.Fields)
			page.Documents = append(page.Documents, doc)

			if int32(len(page.Documents)) == pageSize {
				if i < len(out.Items)-1 || len(out.LastEvaluatedKey) > 0 {
					page.Cursor = sortKey(raw)
				}
				return page, nil
			}
		}

		if len(out.LastEvaluatedKey) == 0 {
			c.log().WithFields(logrus.Fields{
				"requests":  requests,
				"documents": len(page.Documents),
			}).Debug("search exhausted partition")
			return page, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// buildFilter turns the conditions DynamoDB can evaluate into filter
// clauses and returns the rest for client-side matching.
func buildFilter(conditions []storagemodels.Condition) ([]string, map[string]string, map[string]types.AttributeValue, []storagemodels.Condition, error) {
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	var (
		clauses   []string
		remaining []storagemodels.Condition
	)

	for i, cond := range conditions {
		if cond.Op == storagemodels.OpMatch {
			remaining = append(remaining, cond)
			continue
		}

		path := "#id"
		if cond.Field == AttrID {
			names["#id"] = AttrID
		} else {
			names["#fields"] = AttrFields
			n := fmt.Sprintf("#c%d", i)
			names[n] = cond.Field
			path = "#fields." + n
		}

		switch cond.Op {
		case storagemodels.OpExists:
			clauses = append(clauses, "attribute_exists("+path+")")
		default:
			v := fmt.Sprintf(":c%d", i)
			av, err := attributevalue.Marshal(cond.Value)
			if err != nil {
				return nil, nil, nil, nil, fmt.Errorf("failed to marshal condition on %q: %w", cond.Field, err)
			}
			values[v] = av
			clauses = append(clauses, path+" = "+v)
		}
	}
	return clauses, names, values, remaining, nil
}

func sortKey(item map[string]types.AttributeValue) string {
	if sk, ok := item[AttrSK].(*types.AttributeValueMemberS); ok {
		return sk.Value
	}
	return ""
}
