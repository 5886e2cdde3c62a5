/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/docstore/errors"
)

// Attribute names written on every item.
const (
	AttrPK        = "PK"
	AttrSK        = "SK"
	AttrID        = "id"
	AttrType      = "_type"
	AttrVersion   = "_version"
	AttrFields    = "fields"
	AttrCreatedAt = "created_at"
	AttrUpdatedAt = "updated_at"
)

// Key template macros that are not document fields.
const (
	macroIndex = "_index"
	macroType  = "_type"
	macroID    = "id"
)

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// keyInput collects the values key templates may reference.
func keyInput(index, collection, id string, fields map[string]any) map[string]any {
	in := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		in[k] = v
	}
	in[macroIndex] = index
	in[macroType] = collection
	in[macroID] = id
	return in
}

// expandMacros replaces every {name} in the templates with the matching
// scalar from keysInput. Unknown or non-scalar macros expand to "".
func expandMacros(indexMap map[string]string, keysInput any) (map[string]string, error) {
	av, err := attributevalue.MarshalMap(keysInput)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keysInput: %w", err)
	}

	res := make(map[string]string, len(indexMap))
	for attr, template := range indexMap {
		res[attr] = macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			val, ok := av[strings.Trim(macro, "{}")]
			if !ok {
				return ""
			}
			switch tv := val.(type) {
			case *types.AttributeValueMemberS:
				return tv.Value
			case *types.AttributeValueMemberN:
				return tv.Value
			case *types.AttributeValueMemberBOOL:
				return fmt.Sprintf("%v", tv.Value)
			default:
				return ""
			}
		})
	}
	return res, nil
}

// primaryKey builds the PK/SK key from expanded templates.
func primaryKey(expanded map[string]string) (map[string]types.AttributeValue, error) {
	pk, sk := expanded[AttrPK], expanded[AttrSK]
	if pk == "" || sk == "" {
		return nil, errors.NewValidationError("key", "key templates expanded to an empty PK or SK")
	}
	return map[string]types.AttributeValue{
		AttrPK: &types.AttributeValueMemberS{Value: pk},
		AttrSK: &types.AttributeValueMemberS{Value: sk},
	}, nil
}

// partitionOnly reports whether a template can be expanded without
// per-document values, so every document of a collection shares it.
func partitionOnly(template string) bool {
	for _, m := range macroPattern.FindAllStringSubmatch(template, -1) {
		if m[1] != macroIndex && m[1] != macroType {
			return false
		}
	}
	return true
}
