/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package document

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/mitchellh/mapstructure"
)

var dateTimeType = reflect.TypeOf(strfmt.DateTime{})

// Decode copies the entity's fields (id and _version included) into out,
// which must be a pointer to a struct. Fields are matched by their json tags.
func Decode(e Entity, out any) error {
	return DecodeMap(e.ToMap(), out)
}

// DecodeMap is Decode for raw field data.
func DecodeMap(fields map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToDateTimeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := decoder.Decode(fields); err != nil {
		return fmt.Errorf("failed to decode document fields: %w", err)
	}
	return nil
}

// Encode converts a struct into raw field data through its JSON form, so
// json tags and custom marshalers (strfmt.DateTime) apply. Numbers decode as float64.
func Encode(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	return out, nil
}

func stringToDateTimeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != dateTimeType {
		return data, nil
	}
	return strfmt.ParseDateTime(data.(string))
}
